package tagstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPNG returns a 2x2 PNG image.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 0xA4, A: 0xFF})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// testFrame is the start of a fixed-blocksize frame header. Nothing decodes
// it; the tag store only needs the sync code.
var testFrame = []byte{0xFF, 0xF8, 0x69, 0x08, 0x00, 0x00, 0x00}

// writeTestFLAC writes a FLAC stream made of STREAMINFO, a vorbis comment
// block holding comments, optionally one picture, then testFrame.
func writeTestFLAC(t *testing.T, path string, comments [][2]string, withPicture bool) {
	t.Helper()
	data := append(testMetadata(t, comments, withPicture), testFrame...)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// testMetadata returns the "fLaC" marker and metadata blocks with no frames.
func testMetadata(t *testing.T, comments [][2]string, withPicture bool) []byte {
	t.Helper()

	type rawBlock struct {
		typ  flac.BlockType
		data []byte
	}
	blocks := []rawBlock{{typ: flac.StreamInfo, data: make([]byte, 34)}}

	cmt := flacvorbis.New()
	for _, c := range comments {
		require.NoError(t, cmt.Add(c[0], c[1]))
	}
	cmtBlock := cmt.Marshal()
	blocks = append(blocks, rawBlock{typ: flac.VorbisComment, data: cmtBlock.Data})

	if withPicture {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "old", testPNG(t), "image/png")
		require.NoError(t, err)
		picBlock := pic.Marshal()
		blocks = append(blocks, rawBlock{typ: flac.Picture, data: picBlock.Data})
	}

	var buf bytes.Buffer
	buf.WriteString("fLaC")
	for i, b := range blocks {
		header := byte(b.typ)
		if i == len(blocks)-1 {
			header |= 0x80
		}
		buf.WriteByte(header)
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], uint32(len(b.data)))
		buf.Write(size[1:])
		buf.Write(b.data)
	}
	return buf.Bytes()
}

func countBlocks(t *testing.T, path string, typ flac.BlockType) int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	f, err := flac.ParseMetadata(bytes.NewReader(data))
	require.NoError(t, err)
	n := 0
	for _, b := range f.Meta {
		if b.Type == typ {
			n++
		}
	}
	return n
}

func TestOpenFLACReadsLowercaseKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.flac")
	writeTestFLAC(t, path, [][2]string{
		{"TRACKNUMBER", "3"},
		{"Artist", "A"},
		{"ARTIST", "B"},
	}, false)

	s, err := OpenFLAC(path)
	require.NoError(t, err)

	assert.Equal(t, path, s.Path())
	assert.Equal(t, []string{"3"}, s.Get("tracknumber"))
	assert.Equal(t, []string{"3"}, s.Get("TrackNumber"))
	assert.Equal(t, []string{"A", "B"}, s.Get("artist"))
	assert.Nil(t, s.Get("title"))
	assert.Equal(t, map[string][]string{
		"tracknumber": {"3"},
		"artist":      {"A", "B"},
	}, s.Comments())
}

func TestFLACRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.flac")
	writeTestFLAC(t, path, [][2]string{
		{"TRACKNUMBER", "1"},
		{"COMMENT", "ripped"},
		{"REPLAYGAIN_TRACK_GAIN", "-3.2 dB"},
	}, true)
	require.Equal(t, 1, countBlocks(t, path, flac.Picture))

	s, err := OpenFLAC(path)
	require.NoError(t, err)

	s.RemoveComments()
	s.RemovePictures()
	s.Set("album", []string{"X"})
	s.Set("artist", []string{"A", "B"})
	s.Set("tracknumber", []string{"1"})
	s.Set("totaltracks", []string{"3"})
	require.NoError(t, s.Save())

	assert.Equal(t, 0, countBlocks(t, path, flac.Picture))
	assert.Equal(t, 1, countBlocks(t, path, flac.VorbisComment))

	reopened, err := OpenFLAC(path)
	require.NoError(t, err)
	got := reopened.Comments()
	assert.Equal(t, map[string][]string{
		"album":       {"X"},
		"artist":      {"A", "B"},
		"tracknumber": {"1"},
		"totaltracks": {"3"},
	}, got)
}

func TestFLACSetReplacesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.flac")
	writeTestFLAC(t, path, [][2]string{{"GENRE", "Pop"}, {"TITLE", "T"}}, false)

	s, err := OpenFLAC(path)
	require.NoError(t, err)

	s.Set("Genre", []string{"Latin Pop"})
	require.NoError(t, s.Save())

	reopened, err := OpenFLAC(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Latin Pop"}, reopened.Get("genre"))

	keys := make([]string, 0)
	for k := range reopened.Comments() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"genre", "title"}, keys)
}

func TestFLACAddPicture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.flac")
	writeTestFLAC(t, path, nil, true)

	s, err := OpenFLAC(path)
	require.NoError(t, err)

	s.RemovePictures()
	require.NoError(t, s.AddPicture(Picture{Description: "Front Cover", MIME: "image/png", Data: testPNG(t)}))
	require.NoError(t, s.Save())

	assert.Equal(t, 1, countBlocks(t, path, flac.Picture))
}

func TestOpenFLACRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.flac")
	require.NoError(t, os.WriteFile(path, []byte("not a flac file"), 0o644))

	_, err := FLACOpener.Open(path)
	assert.Error(t, err)
}

func TestOpenFLACRequiresFrames(t *testing.T) {
	tests := []struct {
		name   string
		frames []byte
	}{
		{"metadata only", nil},
		{"truncated", []byte{0xFF}},
		{"no sync code", []byte{0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "01.flac")
			data := append(testMetadata(t, [][2]string{{"TITLE", "T"}}, false), tt.frames...)
			require.NoError(t, os.WriteFile(path, data, 0o644))

			_, err := OpenFLAC(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, flac.ErrorNoSyncCode)
		})
	}
}

func TestFLACSaveKeepsFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01.flac")
	writeTestFLAC(t, path, [][2]string{{"TITLE", "T"}}, false)

	s, err := OpenFLAC(path)
	require.NoError(t, err)
	s.Set("album", []string{"X"})
	require.NoError(t, s.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(data, testFrame))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFLACSaveFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "01.flac")
	writeTestFLAC(t, path, [][2]string{{"TITLE", "T"}}, true)
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	s, err := OpenFLAC(path)
	require.NoError(t, err)
	s.RemoveComments()
	s.RemovePictures()
	s.Set("title", []string{"New"})

	renameFile = func(string, string) error { return errors.New("disk full") }
	t.Cleanup(func() { renameFile = os.Rename })

	err = s.Save()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must be removed")
	assert.Equal(t, "01.flac", entries[0].Name())
}
