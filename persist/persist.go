// Package persist handles the file boundary: classifying loaded JSON as
// catalog or save shaped, and writing the edited save document back to
// disk. The save is the only artifact ever written; the catalog is
// read-only input.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"empiresedit/save"
)

// Kind classifies a loaded file by its top-level shape.
type Kind int

const (
	KindUnknown Kind = iota
	KindCatalog      // has "items"
	KindSave         // has "maps"
)

// ErrUnrecognizedFormat is returned when a file is neither catalog nor
// save shaped, or ambiguously both.
var ErrUnrecognizedFormat = errors.New("unrecognized file format")

// PersistenceError reports a failed save write with its underlying cause.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Classify inspects the top-level keys of a JSON document. A document
// carrying both "items" and "maps" is ambiguous and rejected.
func Classify(data []byte) (Kind, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return KindUnknown, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}
	_, hasItems := top["items"]
	_, hasMaps := top["maps"]
	switch {
	case hasItems && hasMaps:
		return KindUnknown, fmt.Errorf("%w: both \"items\" and \"maps\" present", ErrUnrecognizedFormat)
	case hasItems:
		return KindCatalog, nil
	case hasMaps:
		return KindSave, nil
	default:
		return KindUnknown, fmt.Errorf("%w: neither \"items\" nor \"maps\" present", ErrUnrecognizedFormat)
	}
}

// WriteSave serializes the document pretty-printed and replaces path
// atomically: the bytes land in a temp file in the target directory
// first, then rename into place. A failed write never leaves a partial
// file at path.
func WriteSave(path string, doc *save.Document) error {
	data, err := doc.Serialize()
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "    "); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	pretty.WriteByte('\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".empiresedit-*")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(pretty.Bytes()); err != nil {
		_ = tmp.Close()
		return &PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	// CreateTemp made the file 0600; renaming it over the save must not
	// tighten the save's permissions.
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}
