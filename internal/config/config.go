// Package config holds the settings of one albumprep run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/linuxmatters/albumprep/internal/discovery"
	"github.com/linuxmatters/albumprep/internal/finalize"
	"github.com/linuxmatters/albumprep/internal/metadata"
)

// Config is a fully resolved run configuration.
type Config struct {
	SourceDir string `name:"source-dir" validate:"required,dir"`

	AlbumBlockFile  string `name:"album-block-file" validate:"omitempty,excluded_with=MetadataFile,file"`
	TrackBlocksFile string `name:"track-blocks-file" validate:"omitempty,excluded_with=MetadataFile,file"`
	MetadataFile    string `name:"metadata-file" validate:"omitempty,file"`

	EmitExisting   bool   `name:"emit-existing"`
	EmitExistingTo string `name:"emit-existing-to"`

	OutputDir  string `name:"output-dir" validate:"required"`
	Cover      string `name:"cover" validate:"omitempty,file"`
	Normalizer string `name:"normalizer" validate:"required"`
	StagingDir string `name:"staging-dir" validate:"omitempty,dir"`
	Extension  string `name:"extension" validate:"required,startswith=."`

	NoPause   bool `name:"no-pause"`
	NoAnalyze bool `name:"no-analyze"`

	LogLevel  string `name:"log-level" validate:"oneof=debug info warn error"`
	LogFormat string `name:"log-format" validate:"oneof=pretty json"`
}

// Default returns a Config with every optional setting at its default.
func Default() Config {
	return Config{
		Normalizer: finalize.DefaultNormalizer,
		Extension:  discovery.DefaultExtension,
		LogLevel:   "info",
		LogFormat:  "pretty",
	}
}

// LoadEnv loads a .env file from the working directory into the process
// environment. A missing file is not an error; a malformed one is.
// Variables already set are kept.
func LoadEnv() error {
	return loadEnvFile(".env")
}

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// SourceDefaults returns the defaults that are relative to sourceDir,
// keyed by flag name.
func SourceDefaults(sourceDir string) map[string]string {
	return map[string]string{
		"album-block-file":  filepath.Join(sourceDir, metadata.AlbumFileName),
		"track-blocks-file": filepath.Join(sourceDir, metadata.TrackFileName),
		"output-dir":        sourceDir,
		"staging-dir":       sourceDir,
	}
}

// Resolve fills the settings that default relative to the source
// directory: the album and track block files (unless a unified metadata
// file is used) and the output directory. The staging directory is left
// empty so finalize places it next to the tracks.
func (c *Config) Resolve() {
	defaults := SourceDefaults(c.SourceDir)
	if c.MetadataFile == "" {
		if c.AlbumBlockFile == "" {
			c.AlbumBlockFile = defaults["album-block-file"]
		}
		if c.TrackBlocksFile == "" {
			c.TrackBlocksFile = defaults["track-blocks-file"]
		}
	}
	if c.OutputDir == "" {
		c.OutputDir = defaults["output-dir"]
	}
}

// Capture reports whether existing tags should be captured and emitted.
func (c *Config) Capture() bool {
	return c.EmitExisting || c.EmitExistingTo != ""
}

// Validate checks c and reports every problem in one error.
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("name"); name != "" {
			return "--" + name
		}
		return fld.Name
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msgs = append(msgs, e.Field()+" "+friendlyMessage(e))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "dir":
		return fmt.Sprintf("must be an existing directory, got %q", e.Value())
	case "file":
		return fmt.Sprintf("must be an existing file, got %q", e.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", e.Param(), e.Value())
	case "excluded_with":
		return "cannot be combined with --metadata-file"
	case "startswith":
		return fmt.Sprintf("must start with %q", e.Param())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
