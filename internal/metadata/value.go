// Package metadata models album and track tag blocks and their JSON encoding.
//
// A tag field holds either a single string or an ordered list of strings.
// The two cases are distinct types (One and Many) behind the Value interface,
// and a list holding a single element always collapses to One: on decode,
// on construction, and on encode.
package metadata

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Value is a tag field value. It is either One or Many.
type Value interface {
	// AsSequence returns the values as a read-only slice of 1..N strings.
	// String data is never copied. For Many the backing slice itself is
	// returned; One needs a one-element slice header around its string.
	AsSequence() []string

	// IntoSequence returns an owned copy of the values, always holding at
	// least one element.
	IntoSequence() []string

	// String renders One verbatim and Many joined with ", ".
	String() string

	isValue()
}

// One is a single-valued field.
type One string

// Many is a multi-valued field. Only built for two or more values.
type Many []string

func (One) isValue()  {}
func (Many) isValue() {}

// AsSequence implements Value. The returned element shares o's bytes.
func (o One) AsSequence() []string { return []string{string(o)} }

// IntoSequence implements Value.
func (o One) IntoSequence() []string { return []string{string(o)} }

func (o One) String() string { return string(o) }

// AsSequence implements Value.
func (m Many) AsSequence() []string { return m }

// IntoSequence implements Value.
func (m Many) IntoSequence() []string {
	out := make([]string, len(m))
	copy(out, m)
	return out
}

func (m Many) String() string { return strings.Join(m, ", ") }

// MarshalJSON encodes a one-element list as a bare string.
func (m Many) MarshalJSON() ([]byte, error) {
	if len(m) == 1 {
		return json.Marshal(m[0])
	}
	return json.Marshal([]string(m))
}

// NewValue builds a collapsed Value from one or more strings.
func NewValue(first string, rest ...string) Value {
	if len(rest) == 0 {
		return One(first)
	}
	vals := make(Many, 0, len(rest)+1)
	vals = append(vals, first)
	vals = append(vals, rest...)
	return vals
}

// ValueOf builds a collapsed Value from a slice. It reports false for an
// empty slice.
func ValueOf(vals []string) (Value, bool) {
	switch len(vals) {
	case 0:
		return nil, false
	case 1:
		return One(vals[0]), true
	default:
		out := make(Many, len(vals))
		copy(out, vals)
		return out, true
	}
}

// decodeValue parses the JSON for a single field, which must be a string
// or a non-empty array of strings.
func decodeValue(key string, raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &SchemaError{Key: key, Reason: "missing value"}
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, &SchemaError{Key: key, Reason: err.Error()}
		}
		return One(s), nil
	case '[':
		var vals []string
		if err := json.Unmarshal(trimmed, &vals); err != nil {
			return nil, &SchemaError{Key: key, Reason: "list elements must be strings"}
		}
		v, ok := ValueOf(vals)
		if !ok {
			return nil, &SchemaError{Key: key, Reason: "list must not be empty"}
		}
		return v, nil
	default:
		return nil, &SchemaError{Key: key, Reason: "expected a string or a list of strings"}
	}
}
