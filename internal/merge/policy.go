// Package merge combines album and track metadata into the tag block each
// file is rewritten with.
package merge

import (
	"strconv"
	"strings"

	"github.com/linuxmatters/albumprep/internal/metadata"
)

// CollisionPolicy decides which block wins when the album and a track both
// set the same key.
type CollisionPolicy int

const (
	// TrackWins lets the track block overwrite album values.
	TrackWins CollisionPolicy = iota
	// AlbumWins keeps album values and ignores the track's.
	AlbumWins
)

func (c CollisionPolicy) String() string {
	switch c {
	case TrackWins:
		return "track-wins"
	case AlbumWins:
		return "album-wins"
	default:
		return "unknown"
	}
}

// Keys computed from a track's position. They always override both input
// blocks.
const (
	KeyTrackNumber = "tracknumber"
	KeyTotalTracks = "totaltracks"
)

// Policy holds the merge rules: which existing keys are dropped when
// capturing pre-existing tags, which prefixes are dropped likewise, and how
// album/track collisions resolve.
type Policy struct {
	SkippedKeys     map[string]struct{}
	SkippedPrefixes []string
	Collision       CollisionPolicy
}

// DefaultPolicy returns the policy used by the command: the positional and
// album-derived deny-list, every replaygain_* key, and TrackWins.
func DefaultPolicy() Policy {
	keys := []string{
		KeyTrackNumber,
		KeyTotalTracks,
		"tracktotal",
		"album",
		"albumartist",
		"date",
		"year",
		"genre",
		"comment",
		"copyright",
		"description",
		"discnumber",
		"disctotal",
		"encoder",
	}
	skipped := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		skipped[k] = struct{}{}
	}
	return Policy{
		SkippedKeys:     skipped,
		SkippedPrefixes: []string{"replaygain_"},
		Collision:       TrackWins,
	}
}

// Skips reports whether key is on the deny-list.
func (p Policy) Skips(key string) bool {
	key = strings.ToLower(key)
	if _, ok := p.SkippedKeys[key]; ok {
		return true
	}
	for _, prefix := range p.SkippedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Merge builds the block for the track at the 1-based index out of total:
// album pairs, then track pairs resolved by the collision policy, then the
// computed tracknumber and totaltracks. Neither input is modified.
func (p Policy) Merge(album, track metadata.Block, index, total int) metadata.Block {
	out := album.Clone()
	for k, v := range track {
		if _, exists := out[k]; exists && p.Collision == AlbumWins {
			continue
		}
		out[k] = v
	}
	out[KeyTrackNumber] = metadata.One(strconv.Itoa(index))
	out[KeyTotalTracks] = metadata.One(strconv.Itoa(total))
	return out
}
