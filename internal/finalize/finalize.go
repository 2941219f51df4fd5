package finalize

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/linuxmatters/albumprep/internal/discovery"
	"github.com/linuxmatters/albumprep/internal/metadata"
)

// Finalizer moves tagged tracks into a staging directory under their
// generated names and runs the normalizer over it.
type Finalizer struct {
	Normalizer Normalizer

	// StagingParent is where the staging directory is created. Empty
	// means the directory of the first track, which keeps the renames on
	// one filesystem.
	StagingParent string

	Logger *slog.Logger
}

// Finalize stages tracks and normalizes them into outputDir. merged holds
// the rewritten block of each track, in the same order. The staging
// directory is removed whatever the outcome; files already moved into it
// are lost on failure.
func (f *Finalizer) Finalize(tracks []discovery.Track, merged []metadata.Block, outputDir string) error {
	if len(tracks) != len(merged) {
		return fmt.Errorf("finalize: %d track(s) but %d block(s)", len(tracks), len(merged))
	}
	if len(tracks) == 0 {
		return fmt.Errorf("finalize: no tracks")
	}

	logger := f.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Resolve every name before moving anything.
	total := len(tracks)
	names := make([]string, total)
	seen := make(map[string]string, total)
	for i, t := range tracks {
		name, err := FileName(t.Index, total, merged[i], filepath.Ext(t.Path))
		if err != nil {
			return fmt.Errorf("%s: %w", t.Path, err)
		}
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("%s and %s both stage as %q", prev, t.Path, name)
		}
		seen[name] = t.Path
		names[i] = name
	}

	parent := f.StagingParent
	if parent == "" {
		parent = filepath.Dir(tracks[0].Path)
	}
	staging, err := os.MkdirTemp(parent, ".albumprep-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logger.Warn("failed to remove staging directory", "path", staging, "error", err)
		}
	}()
	logger.Info("created staging directory", "path", staging)

	for i, t := range tracks {
		dst := filepath.Join(staging, names[i])
		logger.Info("moving file to staging directory", "name", names[i])
		if err := os.Rename(t.Path, dst); err != nil {
			return fmt.Errorf("failed to stage %s: %w", t.Path, err)
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Info("running normalizer", "output", outputDir)
	if err := f.Normalizer.Normalize(staging, outputDir); err != nil {
		return err
	}
	return nil
}
