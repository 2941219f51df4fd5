// Package discovery finds the album's tracks in a source directory and
// validates their track numbers.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/linuxmatters/albumprep/internal/metadata"
	"github.com/linuxmatters/albumprep/internal/tagstore"
)

// DefaultExtension is the only container the tool reads.
const DefaultExtension = ".flac"

// Track is one input file and its 1-based position on the album.
type Track struct {
	Path  string
	Index int
}

// Skip decides which existing keys are left out of a capture.
type Skip interface {
	Skips(key string) bool
}

// Options controls a scan.
type Options struct {
	// Extension selects files by suffix, case-insensitively. Defaults to
	// DefaultExtension.
	Extension string

	// Capture snapshots each file's existing tags into Result.Existing.
	Capture bool

	// Skip filters captured keys. Nil keeps every key.
	Skip Skip
}

// Result is the outcome of a successful scan.
type Result struct {
	// Tracks are sorted by Index and cover exactly 1..len(Tracks).
	Tracks []Track

	// Existing holds the captured tags in track order. Nil unless
	// Options.Capture was set.
	Existing metadata.BlockList
}

// Paths returns the track paths in track order.
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Tracks))
	for i, t := range r.Tracks {
		paths[i] = t.Path
	}
	return paths
}

// Scan lists dir, reads the tracknumber of every matching file and checks
// that the numbers are exactly 1..N. Nothing is written.
func Scan(dir string, opener tagstore.Opener, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	paths, err := listFiles(dir, ext)
	if err != nil {
		return nil, err
	}

	type captured struct {
		index  int
		fields map[string][]string
	}

	tracks := make([]Track, 0, len(paths))
	var snapshots []captured
	seen := make(map[int]int, len(paths))

	for _, path := range paths {
		logger.Info("found input file", "path", path)

		store, err := opener.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read tags: %s: %w", path, err)
		}

		raw, err := metadata.ExpectOne("tracknumber", store.Get("tracknumber"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		index, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || index < 1 {
			return nil, &InvalidTrackNumberError{Path: path, Value: raw}
		}
		logger.Info("detected track number", "path", path, "tracknumber", index)

		seen[index]++
		tracks = append(tracks, Track{Path: path, Index: index})

		if opts.Capture {
			snapshots = append(snapshots, captured{index: index, fields: store.Comments()})
		}
	}

	if err := checkContiguous(seen, len(paths)); err != nil {
		return nil, err
	}

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Index < tracks[j].Index })

	result := &Result{Tracks: tracks}
	if opts.Capture {
		sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].index < snapshots[j].index })
		result.Existing = make(metadata.BlockList, 0, len(snapshots))
		for _, s := range snapshots {
			result.Existing = append(result.Existing, captureBlock(s.fields, opts.Skip))
		}
	}

	return result, nil
}

// listFiles returns the files in dir with extension ext, sorted by name so
// that scans are reproducible. Symlinks are followed; dangling links and
// anything that is not a regular file are skipped.
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if e.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", path, err)
			}
			if !info.Mode().IsRegular() {
				continue
			}
		} else if !e.Type().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// checkContiguous verifies that the observed track numbers are exactly
// 1..n, each seen once.
func checkContiguous(seen map[int]int, n int) error {
	var mismatch TrackNumberMismatchError
	for idx, count := range seen {
		if count > 1 {
			mismatch.Duplicates = append(mismatch.Duplicates, idx)
		}
		if idx > n {
			mismatch.Unexpected = append(mismatch.Unexpected, idx)
		}
	}
	for idx := 1; idx <= n; idx++ {
		if seen[idx] == 0 {
			mismatch.Missing = append(mismatch.Missing, idx)
		}
	}

	if len(mismatch.Duplicates) == 0 && len(mismatch.Missing) == 0 && len(mismatch.Unexpected) == 0 {
		return nil
	}
	sort.Ints(mismatch.Duplicates)
	sort.Ints(mismatch.Missing)
	sort.Ints(mismatch.Unexpected)
	return &mismatch
}

func captureBlock(fields map[string][]string, skip Skip) metadata.Block {
	block := make(metadata.Block, len(fields))
	for key, vals := range fields {
		key = strings.ToLower(key)
		if skip != nil && skip.Skips(key) {
			continue
		}
		block.Set(key, vals)
	}
	return block
}
