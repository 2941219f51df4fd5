package loudness

import (
	"errors"
	"math"
	"testing"
)

func TestPowerLKFS(t *testing.T) {
	tests := []struct {
		name  string
		power Power
		want  float64
	}{
		{"unity", 1.0, -0.691},
		{"tenth", 0.1, -10.691},
		{"hundredth", 0.01, -20.691},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.power.LKFS()
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Power(%v).LKFS() = %v, want %v", tt.power, got, tt.want)
			}
			back := PowerFromLKFS(got)
			if math.Abs(float64(back-tt.power)) > 1e-12 {
				t.Errorf("PowerFromLKFS(%v) = %v, want %v", got, back, tt.power)
			}
		})
	}

	if got := Power(0).LKFS(); !math.IsInf(got, -1) {
		t.Errorf("Power(0).LKFS() = %v, want -Inf", got)
	}
}

func TestLoudnessString(t *testing.T) {
	if got := Floor.String(); got != "-inf LUFS" {
		t.Errorf("Floor.String() = %q, want %q", got, "-inf LUFS")
	}
	l := Loudness{Power: PowerFromLKFS(-23.0)}
	if got := l.String(); got != "-23.000 LUFS" {
		t.Errorf("String() = %q, want %q", got, "-23.000 LUFS")
	}
	if !Floor.IsFloor() || l.IsFloor() {
		t.Error("IsFloor mismatch")
	}
}

func constantWindows(n int, p Power) Windows {
	w := make(Windows, n)
	for i := range w {
		w[i] = p
	}
	return w
}

func TestGatedMean(t *testing.T) {
	t.Run("too_short", func(t *testing.T) {
		if _, ok := GatedMean(constantWindows(3, 0.1)); ok {
			t.Error("expected no result for fewer than four windows")
		}
	})

	t.Run("below_absolute_gate", func(t *testing.T) {
		quiet := PowerFromLKFS(-80)
		if _, ok := GatedMean(constantWindows(50, quiet)); ok {
			t.Error("expected no result when every block is below -70 LKFS")
		}
	})

	t.Run("constant", func(t *testing.T) {
		got, ok := GatedMean(constantWindows(20, 0.25))
		if !ok {
			t.Fatal("expected a result")
		}
		if math.Abs(float64(got-0.25)) > 1e-12 {
			t.Errorf("GatedMean = %v, want 0.25", got)
		}
	})

	t.Run("relative_gate_excludes_quiet_section", func(t *testing.T) {
		const loud = Power(0.01)
		const quiet = loud / 1000 // 30 LU down, above the absolute gate

		w := append(constantWindows(40, loud), constantWindows(40, quiet)...)
		got, ok := GatedMean(w)
		if !ok {
			t.Fatal("expected a result")
		}

		// 37 fully loud blocks plus the three blocks straddling the
		// boundary; the 37 fully quiet blocks fall under the relative gate.
		mixed := (3*loud+quiet)/4 + (2*loud+2*quiet)/4 + (loud+3*quiet)/4
		want := (37*loud + mixed) / 40
		if math.Abs(float64(got-want))/float64(want) > 1e-9 {
			t.Errorf("GatedMean = %v, want %v", got, want)
		}
	})
}

func TestReduceStereo(t *testing.T) {
	left := Windows{0.1, 0.2, 0.3, 0.4, 0.5}
	right := Windows{0.3, 0.2, 0.1, 0.0, 0.5}

	got, err := ReduceStereo(left, right)
	if err != nil {
		t.Fatalf("ReduceStereo: %v", err)
	}
	want := Windows{0.2, 0.2, 0.2, 0.2, 0.5}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-12 {
			t.Errorf("window %d = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := ReduceStereo(left, right[:4]); err == nil {
		t.Error("expected error for timelines of different length")
	}
}

func TestReduceStereoIdenticalChannels(t *testing.T) {
	w := make(Windows, 60)
	for i := range w {
		w[i] = Power(0.001 * float64(1+i%7))
	}

	reduced, err := ReduceStereo(w, w)
	if err != nil {
		t.Fatalf("ReduceStereo: %v", err)
	}

	single, ok1 := GatedMean(w)
	both, ok2 := GatedMean(reduced)
	if !ok1 || !ok2 {
		t.Fatal("expected results")
	}
	if math.Abs(float64(single-both)) > 1e-15 {
		t.Errorf("reduced gated mean = %v, single channel = %v", both, single)
	}
}

func TestChannelMeterWindows(t *testing.T) {
	m := NewChannelMeter(44100)
	m.Push(make([]float64, 4410*10+100))

	w := m.Windows()
	if len(w) != 10 {
		t.Fatalf("got %d windows, want 10 (partial window discarded)", len(w))
	}
	for i, p := range w {
		if p != 0 {
			t.Errorf("window %d = %v, want 0 for silence", i, p)
		}
	}
}

func TestEngineMeasure(t *testing.T) {
	opener := newFakeOpener(t, map[string]testSignal{
		"sine.flac":    {ToneFreq: 997, ToneLevel: -20},
		"sine44.flac":  {ToneFreq: 997, ToneLevel: -20, SampleRate: 44100, BitDepth: 24},
		"silence.flac": {},
		"mono.flac":    {ToneFreq: 997, ToneLevel: -20, Channels: 1},
	})
	e := NewEngine(opener.open)

	// A 997 Hz sine of peak amplitude A measures 20*log10(A) - 3.01 LKFS.
	for _, path := range []string{"sine.flac", "sine44.flac"} {
		t.Run(path, func(t *testing.T) {
			got, err := e.Measure(path)
			if err != nil {
				t.Fatalf("Measure: %v", err)
			}
			if math.Abs(got.LUFS()-(-23.01)) > 0.1 {
				t.Errorf("loudness = %v, want about -23.01 LUFS", got)
			}
		})
	}

	t.Run("silence", func(t *testing.T) {
		got, err := e.Measure("silence.flac")
		if err != nil {
			t.Fatalf("Measure: %v", err)
		}
		if got != Floor {
			t.Errorf("loudness = %v, want Floor", got)
		}
	})

	t.Run("mono", func(t *testing.T) {
		_, err := e.Measure("mono.flac")
		var layoutErr *UnsupportedChannelLayoutError
		if !errors.As(err, &layoutErr) {
			t.Fatalf("error = %v, want UnsupportedChannelLayoutError", err)
		}
		if layoutErr.Channels != 1 {
			t.Errorf("Channels = %d, want 1", layoutErr.Channels)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := e.Measure("missing.flac"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	for i, r := range opener.readers {
		if !r.closed {
			t.Errorf("reader %d was not closed", i)
		}
	}
}

func TestEngineAlbum(t *testing.T) {
	opener := newFakeOpener(t, map[string]testSignal{
		"loud.flac":  {ToneFreq: 997, ToneLevel: -20},
		"quiet.flac": {ToneFreq: 997, ToneLevel: -30},
		"bad.flac":   {ToneFreq: 997, ToneLevel: -20},
	})
	opener.failAt["bad.flac"] = 10
	e := NewEngine(opener.open)

	if got := e.Album(); got != Floor {
		t.Errorf("empty album = %v, want Floor", got)
	}

	analysis, err := e.Analyze([]string{"loud.flac", "quiet.flac"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.Tracks) != 2 {
		t.Fatalf("got %d track results, want 2", len(analysis.Tracks))
	}

	// Equal-length tracks 10 LU apart both clear the relative gate, so the
	// album is close to the mean of the two powers.
	loud := analysis.Tracks[0].Loudness.Power
	quiet := analysis.Tracks[1].Loudness.Power
	want := Loudness{Power: (loud + quiet) / 2}
	if math.Abs(analysis.Album.LUFS()-want.LUFS()) > 0.2 {
		t.Errorf("album = %v, want about %v", analysis.Album, want)
	}

	// Album is a pure read of the accumulated timeline.
	if again := e.Album(); again != analysis.Album {
		t.Errorf("second Album() = %v, want %v", again, analysis.Album)
	}

	// A failed track does not contribute windows.
	if _, err := e.Measure("bad.flac"); err == nil {
		t.Fatal("expected decode error")
	}
	if got := e.Album(); got != analysis.Album {
		t.Errorf("album after failed track = %v, want %v", got, analysis.Album)
	}

	e.Reset()
	if got := e.Album(); got != Floor {
		t.Errorf("album after Reset = %v, want Floor", got)
	}
}
