// Package finalize stages the retagged tracks under generated names and
// hands them to the external loudness normalizer.
package finalize

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/linuxmatters/albumprep/internal/metadata"
)

// FileName builds the staged name of a track: the index zero-padded to the
// width of total, every artist joined with ", ", and the single title.
// Path separators are removed and the result is NFC-normalized. ext
// includes its leading dot.
func FileName(index, total int, block metadata.Block, ext string) (string, error) {
	var artists []string
	if v, ok := block["artist"]; ok {
		artists = v.AsSequence()
	}
	if len(artists) == 0 {
		return "", &metadata.AmbiguousFieldError{Field: "artist"}
	}

	var titles []string
	if v, ok := block["title"]; ok {
		titles = v.AsSequence()
	}
	title, err := metadata.ExpectOne("title", titles)
	if err != nil {
		return "", err
	}

	width := len(strconv.Itoa(total))
	name := fmt.Sprintf("%0*d. %s - %s%s", width, index, strings.Join(artists, ", "), title, ext)
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return -1
		}
		return r
	}, name)

	return norm.NFC.String(name), nil
}
