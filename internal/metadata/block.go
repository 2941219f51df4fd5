package metadata

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Block maps lowercase field names to values. It holds either album-wide
// fields or the fields of a single track.
type Block map[string]Value

// BlockList holds one Block per track, in track order.
type BlockList []Block

// Metadata is the unified encoding of an album: the album block plus one
// block per track.
type Metadata struct {
	Album  Block     `json:"album"`
	Tracks BlockList `json:"tracks"`
}

// Keys returns the block's keys in sorted order.
func (b Block) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the block. Values are immutable so
// sharing them is safe.
func (b Block) Clone() Block {
	out := make(Block, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Set stores vals under the lowercased key. Empty vals removes the key.
func (b Block) Set(key string, vals []string) {
	key = strings.ToLower(key)
	v, ok := ValueOf(vals)
	if !ok {
		delete(b, key)
		return
	}
	b[key] = v
}

// UnmarshalJSON decodes an object of field name to string or string list.
// Field names are lowercased; two names that collide after lowercasing are
// rejected.
func (b *Block) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &SchemaError{Reason: "block must be a JSON object"}
	}

	// Sorted so that the reported key is stable when several are malformed.
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Block, len(raw))
	for _, name := range names {
		key := strings.ToLower(name)
		if _, dup := out[key]; dup {
			return &SchemaError{Key: name, Reason: "duplicate key after lowercasing"}
		}
		v, err := decodeValue(name, raw[name])
		if err != nil {
			return err
		}
		out[key] = v
	}

	*b = out
	return nil
}
