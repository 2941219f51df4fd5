package tagstore

import (
	"bytes"
	"fmt"
	_ "image/jpeg" // cover decoding for flacpicture
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

// FLACOpener opens FLAC tag stores.
var FLACOpener = OpenerFunc(func(path string) (Store, error) {
	return OpenFLAC(path)
})

// field is one KEY=VALUE comment with the key already lowercased.
type field struct {
	key   string
	value string
}

// FLAC is the Vorbis comment and picture metadata of a FLAC file.
type FLAC struct {
	path         string
	file         *flac.File
	vendor       string
	fields       []field
	added        []*flac.MetaDataBlock
	dropPictures bool
}

// OpenFLAC parses the metadata blocks of the FLAC file at path.
func OpenFLAC(path string) (*FLAC, error) {
	// Parse from memory so Save can overwrite the same path.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(data)
	f, err := flac.ParseMetadata(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC file %s: %w", path, err)
	}
	frames, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read FLAC frames in %s: %w", path, err)
	}
	if !hasSyncCode(frames) {
		return nil, fmt.Errorf("failed to parse FLAC file %s: %w", path, flac.ErrorNoSyncCode)
	}
	f.Frames = frames

	s := &FLAC{path: path, file: f}
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return nil, fmt.Errorf("failed to parse vorbis comment in %s: %w", path, err)
		}
		s.vendor = cmt.Vendor
		for _, c := range cmt.Comments {
			key, value, ok := strings.Cut(c, "=")
			if !ok {
				continue
			}
			s.fields = append(s.fields, field{key: strings.ToLower(key), value: value})
		}
	}

	return s, nil
}

// hasSyncCode reports whether frames starts with a FLAC frame header
// (0xFFF8 or 0xFFF9).
func hasSyncCode(frames []byte) bool {
	return len(frames) >= 2 && frames[0] == 0xFF && frames[1]>>2 == 0x3E
}

// Path implements Store.
func (s *FLAC) Path() string { return s.path }

// Comments implements Store.
func (s *FLAC) Comments() map[string][]string {
	out := make(map[string][]string)
	for _, f := range s.fields {
		out[f.key] = append(out[f.key], f.value)
	}
	return out
}

// Get implements Store.
func (s *FLAC) Get(key string) []string {
	key = strings.ToLower(key)
	var vals []string
	for _, f := range s.fields {
		if f.key == key {
			vals = append(vals, f.value)
		}
	}
	return vals
}

// Set implements Store.
func (s *FLAC) Set(key string, values []string) {
	key = strings.ToLower(key)
	kept := s.fields[:0]
	for _, f := range s.fields {
		if f.key != key {
			kept = append(kept, f)
		}
	}
	s.fields = kept
	for _, v := range values {
		s.fields = append(s.fields, field{key: key, value: v})
	}
}

// RemoveComments implements Store.
func (s *FLAC) RemoveComments() {
	s.fields = nil
}

// RemovePictures implements Store.
func (s *FLAC) RemovePictures() {
	s.dropPictures = true
	s.added = nil
}

// AddPicture implements Store.
func (s *FLAC) AddPicture(p Picture) error {
	pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, p.Description, p.Data, p.MIME)
	if err != nil {
		return fmt.Errorf("failed to create picture metadata: %w", err)
	}
	block := pic.Marshal()
	s.added = append(s.added, &block)
	return nil
}

// Save implements Store. The comment block is rebuilt from scratch and
// placed directly after STREAMINFO.
func (s *FLAC) Save() error {
	cmt := flacvorbis.New()
	if s.vendor != "" {
		cmt.Vendor = s.vendor
	}
	for _, f := range s.fields {
		if err := cmt.Add(strings.ToUpper(f.key), f.value); err != nil {
			return fmt.Errorf("invalid comment %q in %s: %w", f.key, s.path, err)
		}
	}
	cmtBlock := cmt.Marshal()

	meta := make([]*flac.MetaDataBlock, 0, len(s.file.Meta)+len(s.added)+1)
	placed := false
	for _, block := range s.file.Meta {
		switch block.Type {
		case flac.VorbisComment:
			continue
		case flac.Picture:
			if s.dropPictures {
				continue
			}
		}
		meta = append(meta, block)
		if block.Type == flac.StreamInfo && !placed {
			meta = append(meta, &cmtBlock)
			placed = true
		}
	}
	if !placed {
		meta = append(meta, &cmtBlock)
	}
	meta = append(meta, s.added...)
	s.file.Meta = meta

	if err := writeAtomic(s.path, s.file.Marshal()); err != nil {
		return fmt.Errorf("failed to save FLAC file %s: %w", s.path, err)
	}
	return nil
}

// renameFile is swapped out in tests.
var renameFile = os.Rename

// writeAtomic writes data to a temp file next to path, syncs it and renames
// it over path. The original is untouched until the rename.
func writeAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".albumprep-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := renameFile(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
