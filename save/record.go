package save

import (
	"bytes"
	"encoding/json"
)

// record is a JSON object whose recognized fields are read and written
// through typed accessors while every other field round-trips untouched.
// Save files carry far more keys than the editor understands; the
// contract is that serializing an unedited record reproduces its field
// set and values exactly (key order is not preserved).
type record struct {
	fields map[string]json.RawMessage
}

func (r *record) UnmarshalJSON(data []byte) error {
	r.fields = map[string]json.RawMessage{}
	return json.Unmarshal(data, &r.fields)
}

func (r record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.fields)
}

// Has reports whether the field is present.
func (r record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Int returns the field as an integer, or 0 when absent or not a number.
func (r record) Int(key string) int64 {
	raw, ok := r.fields[key]
	if !ok {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return v
}

// String returns the field as a string, or "" when absent or not a string.
func (r record) String(key string) string {
	raw, ok := r.fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Text returns the field rendered as display text regardless of its JSON
// type: strings are unquoted, anything else is the compact JSON literal.
// Player ids appear as numbers in some saves and strings in others.
func (r record) Text(key string) string {
	raw, ok := r.fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func (r *record) ensure() {
	if r.fields == nil {
		r.fields = map[string]json.RawMessage{}
	}
}

// SetInt writes an integer field, creating it if absent.
func (r *record) SetInt(key string, v int64) {
	r.ensure()
	raw, _ := json.Marshal(v)
	r.fields[key] = raw
}

// SetString writes a string field, creating it if absent.
func (r *record) SetString(key, v string) {
	r.ensure()
	raw, _ := json.Marshal(v)
	r.fields[key] = raw
}
