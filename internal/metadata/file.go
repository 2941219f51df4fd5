package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File names used when copying the input blocks next to the output.
const (
	AlbumFileName = "album.json"
	TrackFileName = "track.json"
)

// LoadBlock reads a single album block from a JSON file.
func LoadBlock(path string) (Block, error) {
	var b Block
	if err := loadJSON(path, &b); err != nil {
		return nil, fmt.Errorf("load album block %s: %w", path, err)
	}
	return b, nil
}

// LoadBlockList reads a list of track blocks from a JSON file.
func LoadBlockList(path string) (BlockList, error) {
	var bl BlockList
	if err := loadJSON(path, &bl); err != nil {
		return nil, fmt.Errorf("load track blocks %s: %w", path, err)
	}
	return bl, nil
}

// LoadMetadata reads the unified {"album": ..., "tracks": [...]} form.
func LoadMetadata(path string) (*Metadata, error) {
	var md Metadata
	if err := loadJSON(path, &md); err != nil {
		return nil, fmt.Errorf("load metadata %s: %w", path, err)
	}
	if md.Album == nil {
		return nil, fmt.Errorf("load metadata %s: %w", path, &SchemaError{Key: "album", Reason: "missing"})
	}
	if md.Tracks == nil {
		return nil, fmt.Errorf("load metadata %s: %w", path, &SchemaError{Key: "tracks", Reason: "missing"})
	}
	return &md, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// WriteJSON writes v as two-space indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// SaveJSON writes v to path in the WriteJSON format.
func SaveJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteBlockFiles saves the album and track blocks used for a run into dir
// as album.json and track.json.
func WriteBlockFiles(dir string, album Block, tracks BlockList) error {
	if err := SaveJSON(filepath.Join(dir, AlbumFileName), album); err != nil {
		return fmt.Errorf("save album block: %w", err)
	}
	if err := SaveJSON(filepath.Join(dir, TrackFileName), tracks); err != nil {
		return fmt.Errorf("save track blocks: %w", err)
	}
	return nil
}
