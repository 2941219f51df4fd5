package merge

import (
	"fmt"
	"log/slog"

	"github.com/linuxmatters/albumprep/internal/discovery"
	"github.com/linuxmatters/albumprep/internal/metadata"
	"github.com/linuxmatters/albumprep/internal/tagstore"
)

// CountMismatchError is returned when the number of track blocks differs
// from the number of discovered tracks.
type CountMismatchError struct {
	Tracks int
	Blocks int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("found %d track(s) but %d track block(s)", e.Tracks, e.Blocks)
}

// Rewriter replaces the tag block of every track with its merged metadata.
type Rewriter struct {
	Opener tagstore.Opener
	Policy Policy

	// Cover, when set, is embedded as the front cover of every track.
	Cover *tagstore.Picture

	Logger *slog.Logger
}

// Rewrite merges album with each entry of blocks and writes the result
// into the matching track, in track order. Existing comments and pictures
// are discarded. The first failure aborts the batch; files already saved
// stay rewritten. Returns the merged blocks in track order.
func (r *Rewriter) Rewrite(tracks []discovery.Track, album metadata.Block, blocks metadata.BlockList) ([]metadata.Block, error) {
	if len(tracks) != len(blocks) {
		return nil, &CountMismatchError{Tracks: len(tracks), Blocks: len(blocks)}
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	total := len(tracks)
	merged := make([]metadata.Block, 0, total)

	for i, track := range tracks {
		block := r.Policy.Merge(album, blocks[i], track.Index, total)

		logger.Info("processing input file", "path", track.Path, "tracknumber", track.Index)
		if err := r.rewriteOne(track.Path, block); err != nil {
			return nil, fmt.Errorf("%s: %w", track.Path, err)
		}

		merged = append(merged, block)
	}

	return merged, nil
}

func (r *Rewriter) rewriteOne(path string, block metadata.Block) error {
	store, err := r.Opener.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open tag store: %w", err)
	}

	store.RemoveComments()
	store.RemovePictures()

	for _, key := range block.Keys() {
		store.Set(key, block[key].IntoSequence())
	}

	if r.Cover != nil {
		if err := store.AddPicture(*r.Cover); err != nil {
			return fmt.Errorf("failed to embed cover: %w", err)
		}
	}

	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to save tags: %w", err)
	}
	return nil
}
