package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/linuxmatters/albumprep/internal/cli"
	"github.com/linuxmatters/albumprep/internal/config"
	"github.com/linuxmatters/albumprep/internal/logging"
	"github.com/linuxmatters/albumprep/internal/pipeline"
	"github.com/linuxmatters/albumprep/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool `short:"v" help:"Show version information"`

	SourceDir string `arg:"" name:"source-dir" help:"Directory holding the album's FLAC files" type:"path" optional:""`

	AlbumBlockFile  string `help:"Album metadata JSON" type:"path" group:"metadata" env:"ALBUMPREP_ALBUM_BLOCK_FILE"`
	TrackBlocksFile string `help:"Track metadata JSON list" type:"path" group:"metadata" env:"ALBUMPREP_TRACK_BLOCKS_FILE"`
	MetadataFile    string `help:"Unified {\"album\", \"tracks\"} metadata JSON, replaces the album and track files" type:"path" group:"metadata" env:"ALBUMPREP_METADATA_FILE"`

	EmitExisting   bool   `help:"Print the existing tags before overwriting them" group:"capture"`
	EmitExistingTo string `help:"Write the existing tags to this file before overwriting them" type:"path" group:"capture"`
	NoPause        bool   `help:"Do not wait for Enter after printing existing tags" group:"capture" env:"ALBUMPREP_NO_PAUSE"`

	OutputDir  string `help:"Directory for the normalized album" type:"path" group:"output" env:"ALBUMPREP_OUTPUT_DIR"`
	Cover      string `help:"Front cover image (JPEG or PNG) to embed in every track" type:"path" group:"output" env:"ALBUMPREP_COVER"`
	Normalizer string `help:"Loudness normalizer executable" default:"bs1770gain" group:"output" env:"ALBUMPREP_NORMALIZER"`
	StagingDir string `help:"Parent of the temporary staging directory" type:"path" group:"output" env:"ALBUMPREP_STAGING_DIR"`
	NoAnalyze  bool   `help:"Skip the loudness report" group:"output" env:"ALBUMPREP_NO_ANALYZE"`

	LogLevel  string `help:"Log level" enum:"debug,info,warn,error" default:"info" group:"logging" env:"ALBUMPREP_LOG_LEVEL"`
	LogFormat string `help:"Log format" enum:"pretty,json" default:"pretty" group:"logging" env:"ALBUMPREP_LOG_FORMAT"`
}

func (c *CLI) config() config.Config {
	cfg := config.Default()
	cfg.SourceDir = c.SourceDir
	cfg.AlbumBlockFile = c.AlbumBlockFile
	cfg.TrackBlocksFile = c.TrackBlocksFile
	cfg.MetadataFile = c.MetadataFile
	cfg.EmitExisting = c.EmitExisting
	cfg.EmitExistingTo = c.EmitExistingTo
	cfg.NoPause = c.NoPause
	cfg.OutputDir = c.OutputDir
	cfg.Cover = c.Cover
	cfg.Normalizer = c.Normalizer
	cfg.StagingDir = c.StagingDir
	cfg.NoAnalyze = c.NoAnalyze
	cfg.LogLevel = c.LogLevel
	cfg.LogFormat = c.LogFormat
	cfg.Resolve()
	return cfg
}

func main() {
	// Environment from .env must be in place before kong reads env tags
	if err := config.LoadEnv(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("albumprep"),
		kong.Description("Retag, measure and loudness-normalize a FLAC album"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.ExplicitGroups(cli.FlagGroups),
		kong.Help(cli.StyledHelpPrinter(config.SourceDefaults(cli.SourceDirPlaceholder))),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if cliArgs.SourceDir == "" {
		cli.PrintError("No source directory specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	cfg := cliArgs.config()
	if err := cfg.Validate(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	cli.PrintKeyValue(os.Stdout, "Source", cfg.SourceDir)
	cli.PrintKeyValue(os.Stdout, "Output", cfg.OutputDir)
	fmt.Println()

	logger := logging.New(logging.Config{
		Format: cfg.LogFormat,
		Level:  logging.ParseLevel(cfg.LogLevel),
	}).WithRun(uuid.NewString())

	if err := pipeline.New(cfg, logger.Logger).Run(); err != nil {
		if errors.Is(err, ui.ErrAborted) {
			cli.PrintError("aborted, no files were changed")
			os.Exit(1)
		}
		logger.WithError(err).Debug("run failed")
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}
