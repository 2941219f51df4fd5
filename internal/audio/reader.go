// Package audio provides FLAC decoding using mewkiz/flac
package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// Reader wraps a mewkiz/flac stream for frame-by-frame PCM reading
type Reader struct {
	stream *flac.Stream
}

// Metadata contains audio stream metadata
type Metadata struct {
	Duration     float64 // seconds, 0 when the stream does not declare a length
	SampleRate   int
	Channels     int
	BitDepth     int
	TotalSamples uint64 // per channel
}

// OpenAudioFile opens a FLAC file for reading
func OpenAudioFile(filename string) (*Reader, *Metadata, error) {
	stream, err := flac.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}

	info := stream.Info
	if info == nil || info.SampleRate == 0 {
		stream.Close()
		return nil, nil, fmt.Errorf("missing stream info in file: %s", filename)
	}

	metadata := &Metadata{
		SampleRate:   int(info.SampleRate),
		Channels:     int(info.NChannels),
		BitDepth:     int(info.BitsPerSample),
		TotalSamples: info.NSamples,
	}
	if info.NSamples > 0 {
		metadata.Duration = float64(info.NSamples) / float64(info.SampleRate)
	}

	return &Reader{stream: stream}, metadata, nil
}

// ReadFrame decodes the next frame and returns its samples, one slice per
// channel. Returns nil when end of file is reached.
// The slices are only valid until the next call.
func (r *Reader) ReadFrame() ([][]int32, error) {
	frame, err := r.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil // EOF
		}
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	channels := make([][]int32, len(frame.Subframes))
	for i, sub := range frame.Subframes {
		channels[i] = sub.Samples
	}
	return channels, nil
}

// Close releases all resources
func (r *Reader) Close() error {
	return r.stream.Close()
}
