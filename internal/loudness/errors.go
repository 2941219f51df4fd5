package loudness

import "fmt"

// UnsupportedChannelLayoutError is returned for any source that is not
// two-channel.
type UnsupportedChannelLayoutError struct {
	Path     string
	Channels int
}

func (e *UnsupportedChannelLayoutError) Error() string {
	return fmt.Sprintf("%s: unsupported channel layout: %d channel(s), only stereo is supported", e.Path, e.Channels)
}
