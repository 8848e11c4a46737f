// Package reconcile cross-references the catalog against a town's item
// instances. Definitions are keyed records, instances are positional
// tuples; the only join between the two shapes is the item id, and an id
// with no definition is an expected condition, never an error.
package reconcile

import (
	"sort"

	"empiresedit/catalog"
	"empiresedit/save"
	"empiresedit/types"
)

// unknownName is the display sentinel for an instance whose id has no
// catalog definition.
const unknownName = "Unknown"

// MissingIDs returns the distinct instance ids in the town that have no
// catalog definition, in ascending order. A town with no items yields an
// empty result. Pure set difference; neither input is touched.
func MissingIDs(c *catalog.Catalog, t *save.Town) []int64 {
	seen := map[int64]bool{}
	var missing []int64
	for _, inst := range t.Items {
		if seen[inst.ID] {
			continue
		}
		seen[inst.ID] = true
		if _, ok := c.Lookup(inst.ID); !ok {
			missing = append(missing, inst.ID)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// ResolveDisplay looks up the instance's definition and returns its
// presentation metadata. Absence is handled, not raised: an unmatched id
// yields the unknown sentinel with Known false.
func ResolveDisplay(c *catalog.Catalog, inst save.Instance) types.DisplayInfo {
	def, ok := c.Lookup(inst.ID)
	if !ok {
		return types.DisplayInfo{ID: inst.ID, Name: unknownName}
	}
	name := def.Name
	if name == "" {
		name = "Unnamed"
	}
	return types.DisplayInfo{ID: def.ID, Name: name, ImgName: def.ImgName, Known: true}
}

// FindByID returns the row indices of every instance in the town whose
// id equals the query, in ascending row order. No match is an empty
// result, not an error.
func FindByID(t *save.Town, id int64) []int {
	var rows []int
	for i, inst := range t.Items {
		if inst.ID == id {
			rows = append(rows, i)
		}
	}
	return rows
}
