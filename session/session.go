// Package session holds the state of one editing session: the loaded
// catalog, the loaded save document, and the active town. All session
// state is explicit here — components below this package are pure
// transformations and know nothing about what is currently open.
package session

import (
	"errors"
	"fmt"
	"os"

	"empiresedit/catalog"
	"empiresedit/edit"
	"empiresedit/persist"
	"empiresedit/reconcile"
	"empiresedit/save"
	"empiresedit/types"
)

// Mode tracks which view the session is in, mirroring what was loaded
// last. Save-only operations are gated on ModeSave.
type Mode int

const (
	ModeConfig Mode = iota
	ModeSave
)

func (m Mode) String() string {
	if m == ModeSave {
		return "save"
	}
	return "config"
}

var (
	// ErrNoSave is returned by save-document operations before a save
	// file has been loaded.
	ErrNoSave = errors.New("no save file loaded")
	// ErrNoCatalog is returned by catalog-dependent operations before a
	// config file has been loaded.
	ErrNoCatalog = errors.New("no config loaded")
)

// Session is the single owner of the loaded documents. It is not safe
// for concurrent use; there is exactly one editing session at a time.
type Session struct {
	Catalog *catalog.Catalog
	Save    *save.Document

	CurrentFile string // last loaded file, for display
	SavePath    string // where the save document came from and goes back to
	Mode        Mode

	townIndex int
}

// New returns an empty session in config mode, like the editor starts.
func New() *Session {
	return &Session{Mode: ModeConfig}
}

// LoadResult is the outcome of one load request. Exactly one is
// delivered per request; Skipped carries the non-fatal per-file
// problems (bad patch documents, odd config entries).
type LoadResult struct {
	Path    string
	Kind    persist.Kind
	Catalog *catalog.Catalog
	Save    *save.Document
	Skipped []error
	Err     error
}

// Load reads and classifies the file at path, then either builds the
// catalog (folding in the patch directory when applyPatches is set) or
// parses the save document. Classification or parse failures on the
// primary input are fatal for the load and land in Err.
func Load(path, patchDir string, applyPatches bool) LoadResult {
	res := LoadResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", path, err)
		return res
	}
	res.Kind, err = persist.Classify(data)
	if err != nil {
		res.Err = err
		return res
	}

	switch res.Kind {
	case persist.KindCatalog:
		var patches []catalog.PatchDocument
		if applyPatches && patchDir != "" {
			var skipped []error
			patches, skipped = catalog.LoadPatchDir(patchDir)
			res.Skipped = append(res.Skipped, skipped...)
		}
		var skipped []error
		res.Catalog, skipped, err = catalog.Build(data, patches)
		res.Skipped = append(res.Skipped, skipped...)
		if err != nil {
			res.Err = err
		}
	case persist.KindSave:
		res.Save, err = save.Parse(data)
		if err != nil {
			res.Err = err
		}
	}
	return res
}

// LoadAsync issues a load request on a background goroutine and returns
// the channel its single result will arrive on. The channel is buffered:
// abandoning a pending load is just dropping the channel, nothing is
// mutated until the caller Installs the result.
func LoadAsync(path, patchDir string, applyPatches bool) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	go func() {
		ch <- Load(path, patchDir, applyPatches)
	}()
	return ch
}

// Install adopts a load result into the session: a catalog result keeps
// any loaded save and switches to config mode, a save result keeps any
// loaded catalog, switches to save mode and resets the active town. A
// failed result changes nothing.
func (s *Session) Install(res LoadResult) error {
	if res.Err != nil {
		return res.Err
	}
	s.CurrentFile = res.Path
	switch res.Kind {
	case persist.KindCatalog:
		s.Catalog = res.Catalog
		s.Mode = ModeConfig
	case persist.KindSave:
		s.Save = res.Save
		s.SavePath = res.Path
		s.Mode = ModeSave
		s.townIndex = 0
	}
	return nil
}

// TownIndex returns the active town index, always valid for the loaded
// save (0 when nothing is loaded).
func (s *Session) TownIndex() int {
	return s.clampTown(s.townIndex)
}

// SwitchTown makes index the active town, clamped into range, and
// returns the effective index.
func (s *Session) SwitchTown(index int) int {
	s.townIndex = s.clampTown(index)
	return s.townIndex
}

func (s *Session) clampTown(index int) int {
	if s.Save == nil || len(s.Save.Maps) == 0 {
		return 0
	}
	if index < 0 {
		return 0
	}
	if index >= len(s.Save.Maps) {
		return len(s.Save.Maps) - 1
	}
	return index
}

// Town returns the active town.
func (s *Session) Town() (*save.Town, error) {
	if s.Save == nil {
		return nil, ErrNoSave
	}
	return s.Save.Town(s.TownIndex())
}

// TownNames returns a display label per town, falling back to "Town N"
// when a map carries no name.
func (s *Session) TownNames() []string {
	if s.Save == nil {
		return nil
	}
	names := make([]string, len(s.Save.Maps))
	for i, t := range s.Save.Maps {
		names[i] = t.Name()
		if names[i] == "" {
			names[i] = fmt.Sprintf("Town %d", i+1)
		}
	}
	return names
}

// MissingIDs reports the instance ids in the active town that the
// catalog does not define.
func (s *Session) MissingIDs() ([]int64, error) {
	if s.Catalog == nil {
		return nil, ErrNoCatalog
	}
	t, err := s.Town()
	if err != nil {
		return nil, err
	}
	return reconcile.MissingIDs(s.Catalog, t), nil
}

// Display resolves presentation metadata for an instance of the active
// session's catalog.
func (s *Session) Display(inst save.Instance) types.DisplayInfo {
	if s.Catalog == nil {
		return types.DisplayInfo{ID: inst.ID, Name: "Unknown"}
	}
	return reconcile.ResolveDisplay(s.Catalog, inst)
}

// Find returns the active town's row indices holding the given id.
func (s *Session) Find(id int64) ([]int, error) {
	t, err := s.Town()
	if err != nil {
		return nil, err
	}
	return reconcile.FindByID(t, id), nil
}

// Add appends count instances of defID to the active town.
func (s *Session) Add(defID int64, count int, at types.Placement) error {
	t, err := s.Town()
	if err != nil {
		return err
	}
	return edit.AddInstances(t, defID, count, at)
}

// Delete removes the given rows from the active town.
func (s *Session) Delete(rows []int) error {
	t, err := s.Town()
	if err != nil {
		return err
	}
	return edit.DeleteInstances(t, rows)
}

// UpdateResources applies resource edits to the loaded save. The town
// fields go to the active town; cash and mana to their owning records.
func (s *Session) UpdateResources(values map[string]any) error {
	if s.Save == nil {
		return ErrNoSave
	}
	t, err := s.Town()
	if err != nil {
		return err
	}
	edit.UpdateResources(s.Save.Player, t, s.Save.Private, values)
	return nil
}

// WriteSave writes the save document back to disk, to path when given,
// else to where it was loaded from. Only valid in save mode.
func (s *Session) WriteSave(path string) error {
	if s.Save == nil {
		return ErrNoSave
	}
	if path == "" {
		path = s.SavePath
	}
	if path == "" {
		return fmt.Errorf("no target path for save")
	}
	if err := persist.WriteSave(path, s.Save); err != nil {
		return err
	}
	s.SavePath = path
	return nil
}
