package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// PatchDocument is one JSON-Patch file, parsed and ready to apply.
// Identity is the file name; documents are applied in name order.
type PatchDocument struct {
	Name string
	ops  jsonpatch.Patch
}

// PatchError reports a patch document that could not be parsed or applied.
// The document is skipped; the rest of the build proceeds.
type PatchError struct {
	File string
	Err  error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("patch %s: %v", e.File, e.Err)
}

func (e *PatchError) Unwrap() error { return e.Err }

// LoadPatchDir reads every .json file in dir as a PatchDocument.
//
// Files are ordered lexicographically by name. Patch application is
// order-sensitive, so the ordering is part of the contract: name your
// patch files so that they sort the way they must apply.
//
// A file that does not parse as a JSON-Patch operation array is skipped
// and reported in skipped. A missing directory is not an error: the
// catalog is simply built unpatched.
func LoadPatchDir(dir string) (docs []PatchDocument, skipped []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{fmt.Errorf("reading patch directory %s: %w", dir, err)}
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			skipped = append(skipped, &PatchError{File: name, Err: err})
			continue
		}
		ops, err := jsonpatch.DecodePatch(data)
		if err != nil {
			skipped = append(skipped, &PatchError{File: name, Err: err})
			continue
		}
		docs = append(docs, PatchDocument{Name: name, ops: ops})
	}
	return docs, skipped
}
