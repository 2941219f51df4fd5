// Package pipeline runs one album preparation end to end.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/linuxmatters/albumprep/internal/config"
	"github.com/linuxmatters/albumprep/internal/discovery"
	"github.com/linuxmatters/albumprep/internal/finalize"
	"github.com/linuxmatters/albumprep/internal/logging"
	"github.com/linuxmatters/albumprep/internal/loudness"
	"github.com/linuxmatters/albumprep/internal/merge"
	"github.com/linuxmatters/albumprep/internal/metadata"
	"github.com/linuxmatters/albumprep/internal/tagstore"
	"github.com/linuxmatters/albumprep/internal/ui"
)

// Runner holds the collaborators of a run. Zero-value fields fall back to
// the production implementations.
type Runner struct {
	Config config.Config

	Opener     tagstore.Opener
	Normalizer finalize.Normalizer
	Decode     loudness.OpenFunc
	Policy     *merge.Policy

	// Pause blocks after the existing-tag dump until the user continues.
	Pause func() error

	Stdout io.Writer
	Logger *slog.Logger
}

// New returns a Runner for cfg using the FLAC tag store, bs1770gain and the
// interactive prompt on stdin.
func New(cfg config.Config, logger *slog.Logger) *Runner {
	return &Runner{Config: cfg, Logger: logger}
}

func (r *Runner) defaults() {
	if r.Opener == nil {
		r.Opener = tagstore.FLACOpener
	}
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Normalizer == nil {
		r.Normalizer = &finalize.BS1770Gain{Path: r.Config.Normalizer, Stdout: r.Stdout, Stderr: os.Stderr}
	}
	if r.Policy == nil {
		p := merge.DefaultPolicy()
		r.Policy = &p
	}
	if r.Pause == nil {
		r.Pause = func() error { return ui.Pause(os.Stdin, r.Stdout) }
	}
	if r.Logger == nil {
		r.Logger = logging.Discard().Logger
	}
}

// Run performs discovery, the optional existing-tag dump, metadata load,
// the copy of the input blocks to the output directory, the tag rewrite,
// loudness analysis and finalization, stopping at the first error.
func (r *Runner) Run() error {
	r.defaults()
	cfg := r.Config
	log := r.Logger

	result, err := discovery.Scan(cfg.SourceDir, r.Opener, discovery.Options{
		Extension: cfg.Extension,
		Capture:   cfg.Capture(),
		Skip:      r.Policy,
	}, log)
	if err != nil {
		return err
	}
	if len(result.Tracks) == 0 {
		return fmt.Errorf("no %s files found in %s", cfg.Extension, cfg.SourceDir)
	}
	log.Info("discovered tracks", "count", len(result.Tracks))

	if cfg.Capture() {
		if err := discovery.Emit(r.Stdout, cfg.EmitExisting, cfg.EmitExistingTo, result.Existing); err != nil {
			return err
		}
		if !cfg.NoPause {
			if err := r.Pause(); err != nil {
				return err
			}
		}
	}

	album, tracks, err := r.loadMetadata()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := metadata.WriteBlockFiles(cfg.OutputDir, album, tracks); err != nil {
		return err
	}

	cover, err := loadCover(cfg.Cover)
	if err != nil {
		return err
	}

	rewriter := &merge.Rewriter{Opener: r.Opener, Policy: *r.Policy, Cover: cover, Logger: log}
	merged, err := rewriter.Rewrite(result.Tracks, album, tracks)
	if err != nil {
		return err
	}

	if !cfg.NoAnalyze {
		engine := loudness.NewEngine(r.Decode)
		analysis, err := engine.Analyze(result.Paths())
		if err != nil {
			return err
		}
		log.Info("measured album loudness", "album", analysis.Album.String())
		logging.DisplayAnalysisResults(r.Stdout, analysis)
	}

	finalizer := &finalize.Finalizer{
		Normalizer:    r.Normalizer,
		StagingParent: cfg.StagingDir,
		Logger:        log,
	}
	if err := finalizer.Finalize(result.Tracks, merged, cfg.OutputDir); err != nil {
		return err
	}

	log.Info("album ready", "output", cfg.OutputDir)
	return nil
}

func (r *Runner) loadMetadata() (metadata.Block, metadata.BlockList, error) {
	cfg := r.Config

	if cfg.MetadataFile != "" {
		r.Logger.Info("loading metadata file", "path", cfg.MetadataFile)
		m, err := metadata.LoadMetadata(cfg.MetadataFile)
		if err != nil {
			return nil, nil, err
		}
		return m.Album, m.Tracks, nil
	}

	r.Logger.Info("loading album file", "path", cfg.AlbumBlockFile)
	album, err := metadata.LoadBlock(cfg.AlbumBlockFile)
	if err != nil {
		return nil, nil, err
	}
	r.Logger.Info("loading track file", "path", cfg.TrackBlocksFile)
	tracks, err := metadata.LoadBlockList(cfg.TrackBlocksFile)
	if err != nil {
		return nil, nil, err
	}
	if album == nil {
		album = metadata.Block{}
	}
	return album, tracks, nil
}

// loadCover reads the front cover image, or returns nil when path is empty.
func loadCover(path string) (*tagstore.Picture, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cover: %w", err)
	}

	mtype := mimetype.Detect(data)
	if !mtype.Is("image/jpeg") && !mtype.Is("image/png") {
		return nil, fmt.Errorf("cover %s: unsupported image type %s", path, mtype.String())
	}

	return &tagstore.Picture{
		Description: "Front Cover",
		MIME:        strings.SplitN(mtype.String(), ";", 2)[0],
		Data:        data,
	}, nil
}
