// Package catalog builds the effective item-definition store: a base
// config document with an ordered set of JSON-Patch overlays folded in.
// Once built, the catalog is plain indexed data; no patch state survives
// to runtime.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"empiresedit/types"
)

// Catalog is the patched, indexed set of item definitions.
// It is immutable after Build; concurrent readers are safe.
type Catalog struct {
	items []types.ItemDefinition
	index map[int64]int
}

// Build folds each patch document into the base config in order, then
// decodes the resulting item list. Each document operates on the output
// of all prior documents; a document whose operations fail leaves the
// accumulated result untouched and is reported in skipped as a
// *PatchError. A base document that cannot be decoded is fatal.
func Build(base []byte, patches []PatchDocument) (c *Catalog, skipped []error, err error) {
	effective := base
	for _, p := range patches {
		out, perr := p.ops.Apply(effective)
		if perr != nil {
			skipped = append(skipped, &PatchError{File: p.Name, Err: perr})
			continue
		}
		effective = out
	}

	items, derr, err := decodeItems(effective)
	if err != nil {
		return nil, skipped, err
	}
	skipped = append(skipped, derr...)

	c = &Catalog{index: make(map[int64]int, len(items))}
	for i, def := range items {
		if prev, dup := c.index[def.ID]; dup {
			skipped = append(skipped, fmt.Errorf(
				"duplicate item id %d (entries %d and %d, keeping the first)", def.ID, prev, i))
			continue
		}
		c.index[def.ID] = len(c.items)
		c.items = append(c.items, def)
	}
	return c, skipped, nil
}

// Lookup returns the definition for id, or false when the catalog has none.
func (c *Catalog) Lookup(id int64) (types.ItemDefinition, bool) {
	i, ok := c.index[id]
	if !ok {
		return types.ItemDefinition{}, false
	}
	return c.items[i], true
}

// All returns the definitions in config order. Callers must not mutate.
func (c *Catalog) All() []types.ItemDefinition {
	return c.items
}

// Len returns the number of distinct definitions loaded.
func (c *Catalog) Len() int {
	return len(c.items)
}

// decodeItems extracts the "items" array from the effective config.
// Entries without a usable integer id are skipped and reported.
func decodeItems(doc []byte) (items []types.ItemDefinition, skipped []error, err error) {
	var root struct {
		Items []map[string]any `json:"items"`
	}
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&root); err != nil {
		return nil, nil, fmt.Errorf("decoding config: %w", err)
	}
	if root.Items == nil {
		return nil, nil, fmt.Errorf("decoding config: no \"items\" array")
	}

	for i, raw := range root.Items {
		id, ok := attrInt(raw, "id")
		if !ok {
			skipped = append(skipped, fmt.Errorf("config item %d: missing or non-integer id", i))
			continue
		}
		def := types.ItemDefinition{
			ID:    id,
			Attrs: raw,
		}
		if s, ok := raw["name"].(string); ok {
			def.Name = s
		}
		if s, ok := raw["img_name"].(string); ok {
			def.ImgName = s
		}
		items = append(items, def)
	}
	return items, skipped, nil
}

// attrInt reads an integer attribute decoded with json.Decoder.UseNumber.
func attrInt(attrs map[string]any, key string) (int64, bool) {
	n, ok := attrs[key].(json.Number)
	if !ok {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return v, true
}
