package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// InvalidTrackNumberError is returned when a tracknumber tag is not a
// positive integer.
type InvalidTrackNumberError struct {
	Path  string
	Value string
}

func (e *InvalidTrackNumberError) Error() string {
	return fmt.Sprintf("%s: invalid track number %q", e.Path, e.Value)
}

// TrackNumberMismatchError is returned when the track numbers found are not
// exactly 1..N for N input files.
type TrackNumberMismatchError struct {
	Duplicates []int
	Missing    []int
	Unexpected []int
}

func (e *TrackNumberMismatchError) Error() string {
	var parts []string
	if len(e.Duplicates) > 0 {
		parts = append(parts, "duplicate "+joinInts(e.Duplicates))
	}
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+joinInts(e.Missing))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+joinInts(e.Unexpected))
	}
	return "track numbers are not contiguous: " + strings.Join(parts, "; ")
}

func joinInts(ns []int) string {
	s := make([]string, len(ns))
	for i, n := range ns {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ", ")
}
