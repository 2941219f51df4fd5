// This file provides the console display of loudness analysis results.

package logging

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/linuxmatters/albumprep/internal/loudness"
)

// DisplayAnalysisResults writes per-track and album integrated loudness as
// a table. Offsets are relative to the album figure.
func DisplayAnalysisResults(w io.Writer, analysis *loudness.Analysis) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "LOUDNESS: %d track(s)\n", len(analysis.Tracks))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	album := analysis.Album.LUFS()
	width := len(strconv.Itoa(len(analysis.Tracks)))

	table := NewMetricTable("Integrated", "vs Album")
	for i, tr := range analysis.Tracks {
		lufs := tr.Loudness.LUFS()
		offset := math.NaN()
		if !tr.Loudness.IsFloor() && !analysis.Album.IsFloor() {
			offset = lufs - album
		}
		table.AddRow(
			fmt.Sprintf("%0*d. %s", width, i+1, filepath.Base(tr.Path)),
			[]string{formatMetricLUFS(lufs, 2), formatMetricSigned(offset, 2)},
			"LUFS",
			interpretLoudness(tr.Loudness),
		)
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Album integrated loudness: %s\n", formatMetricWithUnit(album, 2, "LUFS"))
	if analysis.Album.IsFloor() {
		fmt.Fprintln(w, "  (no gating block above the absolute gate)")
	}
	fmt.Fprintln(w)
}

func interpretLoudness(l loudness.Loudness) string {
	if l.IsFloor() {
		return "silent, below absolute gate"
	}
	return ""
}
