package loudness

import (
	"fmt"
	"math"
	"testing"

	"github.com/linuxmatters/albumprep/internal/audio"
)

// testSignal describes a synthetic track to decode
type testSignal struct {
	DurationSecs float64 // default: 5.0
	SampleRate   int     // default: 48000
	Channels     int     // default: 2
	BitDepth     int     // default: 16
	ToneFreq     float64 // Sine wave frequency in Hz (0 = silence)
	ToneLevel    float64 // Peak level in dBFS
	NoiseLevel   float64 // White noise level in dBFS (0 = no noise)
}

// fakeReader serves pre-generated samples in fixed-size frames
type fakeReader struct {
	channels  [][]int32
	frameSize int
	pos       int
	closed    bool
	failAt    int // frame index to fail on, -1 to never fail
	frame     int
}

func (r *fakeReader) ReadFrame() ([][]int32, error) {
	if r.failAt >= 0 && r.frame == r.failAt {
		return nil, fmt.Errorf("corrupt frame %d", r.frame)
	}
	if len(r.channels) == 0 || r.pos >= len(r.channels[0]) {
		return nil, nil
	}
	end := min(r.pos+r.frameSize, len(r.channels[0]))
	out := make([][]int32, len(r.channels))
	for ch := range r.channels {
		out[ch] = r.channels[ch][r.pos:end]
	}
	r.pos = end
	r.frame++
	return out, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

// generateSamples renders sig to integer PCM, identical on every channel
func generateSamples(t *testing.T, sig testSignal) ([][]int32, *audio.Metadata) {
	t.Helper()

	if sig.DurationSecs == 0 {
		sig.DurationSecs = 5.0
	}
	if sig.SampleRate == 0 {
		sig.SampleRate = 48000
	}
	if sig.Channels == 0 {
		sig.Channels = 2
	}
	if sig.BitDepth == 0 {
		sig.BitDepth = 16
	}

	total := int(sig.DurationSecs * float64(sig.SampleRate))
	fullScale := float64(uint64(1) << uint(sig.BitDepth-1))

	toneAmp := 0.0
	if sig.ToneFreq > 0 {
		toneAmp = math.Pow(10.0, sig.ToneLevel/20.0)
	}
	noiseAmp := 0.0
	if sig.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, sig.NoiseLevel/20.0)
	}

	// Deterministic LCG noise
	rngState := uint32(12345)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	mono := make([]int32, total)
	for i := range mono {
		var s float64
		if toneAmp > 0 {
			s += toneAmp * math.Sin(2*math.Pi*sig.ToneFreq*float64(i)/float64(sig.SampleRate))
		}
		if noiseAmp > 0 {
			s += noiseAmp * nextRandom()
		}
		v := math.Round(s * fullScale)
		v = math.Max(-fullScale, math.Min(fullScale-1, v))
		mono[i] = int32(v)
	}

	channels := make([][]int32, sig.Channels)
	for ch := range channels {
		channels[ch] = mono
	}

	return channels, &audio.Metadata{
		SampleRate:   sig.SampleRate,
		Channels:     sig.Channels,
		BitDepth:     sig.BitDepth,
		TotalSamples: uint64(total),
		Duration:     sig.DurationSecs,
	}
}

// fakeOpener maps paths to synthetic signals
type fakeOpener struct {
	t       *testing.T
	signals map[string]testSignal
	failAt  map[string]int
	readers []*fakeReader
}

func newFakeOpener(t *testing.T, signals map[string]testSignal) *fakeOpener {
	return &fakeOpener{t: t, signals: signals, failAt: map[string]int{}}
}

func (o *fakeOpener) open(path string) (PCMReader, *audio.Metadata, error) {
	sig, ok := o.signals[path]
	if !ok {
		return nil, nil, fmt.Errorf("no such file")
	}
	channels, meta := generateSamples(o.t, sig)
	failAt := -1
	if n, ok := o.failAt[path]; ok {
		failAt = n
	}
	r := &fakeReader{channels: channels, frameSize: 4096, failAt: failAt}
	o.readers = append(o.readers, r)
	return r, meta, nil
}
