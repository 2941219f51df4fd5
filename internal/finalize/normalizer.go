package finalize

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// DefaultNormalizer is the executable looked up on PATH when none is set.
const DefaultNormalizer = "bs1770gain"

// Normalizer applies loudness normalization to every file in stagingDir and
// writes the results to outputDir.
type Normalizer interface {
	Normalize(stagingDir, outputDir string) error
}

// ExternalToolError is returned when the normalizer cannot be started or
// exits unsuccessfully. ExitCode is -1 when the process never ran.
type ExternalToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Err      error
}

func (e *ExternalToolError) Error() string {
	cmd := strings.Join(append([]string{e.Tool}, e.Args...), " ")
	if e.ExitCode >= 0 {
		return fmt.Sprintf("%s exited with status %d", cmd, e.ExitCode)
	}
	return fmt.Sprintf("failed to run %s: %v", cmd, e.Err)
}

func (e *ExternalToolError) Unwrap() error { return e.Err }

// BS1770Gain runs bs1770gain in ReplayGain mode with integrated, range and
// true-peak measurement.
type BS1770Gain struct {
	// Path is the executable, DefaultNormalizer when empty.
	Path string

	Stdout io.Writer
	Stderr io.Writer
}

// Args returns the command line arguments for one invocation.
func (b *BS1770Gain) Args(stagingDir, outputDir string) []string {
	return []string{"--replaygain", "-irt", "--output", outputDir, stagingDir}
}

// Normalize implements Normalizer.
func (b *BS1770Gain) Normalize(stagingDir, outputDir string) error {
	tool := b.Path
	if tool == "" {
		tool = DefaultNormalizer
	}
	args := b.Args(stagingDir, outputDir)

	cmd := exec.Command(tool, args...)
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &ExternalToolError{Tool: tool, Args: args, ExitCode: code, Err: err}
	}
	return nil
}
