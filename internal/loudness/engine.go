package loudness

import (
	"fmt"

	"github.com/linuxmatters/albumprep/internal/audio"
)

// PCMReader yields decoded samples one frame at a time, one slice per
// channel. ReadFrame returns nil, nil at end of stream.
type PCMReader interface {
	ReadFrame() ([][]int32, error)
	Close() error
}

// OpenFunc opens a track for decoding.
type OpenFunc func(path string) (PCMReader, *audio.Metadata, error)

// OpenFLAC is the default OpenFunc, decoding with the audio package.
func OpenFLAC(path string) (PCMReader, *audio.Metadata, error) {
	r, meta, err := audio.OpenAudioFile(path)
	if err != nil {
		return nil, nil, err
	}
	return r, meta, nil
}

// Engine measures tracks one at a time and accumulates every measured
// window into an album timeline, so the album result is the gated mean over
// all tracks rather than an average of per-track results.
type Engine struct {
	open  OpenFunc
	album Windows
}

// NewEngine returns an engine decoding with open, or OpenFLAC when nil.
func NewEngine(open OpenFunc) *Engine {
	if open == nil {
		open = OpenFLAC
	}
	return &Engine{open: open}
}

// Measure decodes the track at path and returns its integrated loudness.
// Its windows are appended to the album timeline only when the whole track
// was decoded successfully.
func (e *Engine) Measure(path string) (Loudness, error) {
	r, meta, err := e.open(path)
	if err != nil {
		return Floor, fmt.Errorf("%s: %w", path, err)
	}
	defer r.Close()

	if meta.Channels != 2 {
		return Floor, &UnsupportedChannelLayoutError{Path: path, Channels: meta.Channels}
	}
	if meta.BitDepth < 1 || meta.BitDepth > 32 {
		return Floor, fmt.Errorf("%s: unsupported bit depth %d", path, meta.BitDepth)
	}

	scale := 1.0 / float64(uint64(1)<<uint(meta.BitDepth-1))
	left := NewChannelMeter(meta.SampleRate)
	right := NewChannelMeter(meta.SampleRate)

	for {
		frame, err := r.ReadFrame()
		if err != nil {
			return Floor, fmt.Errorf("%s: %w", path, err)
		}
		if frame == nil {
			break
		}
		if len(frame) != 2 {
			return Floor, &UnsupportedChannelLayoutError{Path: path, Channels: len(frame)}
		}
		left.PushInt(frame[0], scale)
		right.PushInt(frame[1], scale)
	}

	timeline, err := ReduceStereo(left.Windows(), right.Windows())
	if err != nil {
		return Floor, fmt.Errorf("%s: %w", path, err)
	}

	e.album = append(e.album, timeline...)
	return fromTimeline(timeline), nil
}

// Album returns the integrated loudness over every track measured since
// the engine was created or last reset. It does not modify the timeline.
func (e *Engine) Album() Loudness {
	return fromTimeline(e.album)
}

// Reset discards the album timeline.
func (e *Engine) Reset() {
	e.album = nil
}

func fromTimeline(w Windows) Loudness {
	p, ok := GatedMean(w)
	if !ok {
		return Floor
	}
	return Loudness{Power: p}
}

// TrackResult is the measured loudness of one track.
type TrackResult struct {
	Path     string
	Loudness Loudness
}

// Analysis holds per-track and album loudness for a set of tracks.
type Analysis struct {
	Tracks []TrackResult
	Album  Loudness
}

// Analyze resets the engine, then measures paths in order. The first
// failure aborts the analysis.
func (e *Engine) Analyze(paths []string) (*Analysis, error) {
	e.Reset()

	result := &Analysis{Tracks: make([]TrackResult, 0, len(paths))}
	for _, p := range paths {
		l, err := e.Measure(p)
		if err != nil {
			return nil, err
		}
		result.Tracks = append(result.Tracks, TrackResult{Path: p, Loudness: l})
	}
	result.Album = e.Album()
	return result, nil
}
