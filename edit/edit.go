// Package edit implements the validated mutations on a save document:
// adding and deleting item instances and updating resource fields.
// Mutations either fully apply or report what failed; nothing is
// silently partial.
package edit

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"empiresedit/save"
	"empiresedit/types"
)

// ErrInvalidQuantity is returned when an add is requested with a
// non-positive count.
var ErrInvalidQuantity = errors.New("invalid quantity")

// DefaultPlacement is where newly added instances land on the board.
var DefaultPlacement = types.Placement{X: 54, Y: 54}

// AddInstances appends count fresh tuples with the given definition id
// to the town. The id is not checked against the catalog: placing an
// unknown id is allowed and will simply surface as a missing id later.
func AddInstances(t *save.Town, defID int64, count int, at types.Placement) error {
	if count < 1 {
		return fmt.Errorf("add %d instances: %w", count, ErrInvalidQuantity)
	}
	for i := 0; i < count; i++ {
		t.Items = append(t.Items, save.NewInstance(defID, at))
	}
	return nil
}

// DeleteInstances removes the instances at the given zero-based rows.
// Duplicates are collapsed. If any row is out of range the whole batch
// is rejected, naming the offending rows. An empty batch is a no-op.
// Rows are removed in descending order so earlier removals cannot shift
// the remaining targets.
func DeleteInstances(t *save.Town, rows []int) error {
	if len(rows) == 0 {
		return nil
	}

	uniq := make(map[int]bool, len(rows))
	var bad []int
	for _, r := range rows {
		if r < 0 || r >= len(t.Items) {
			bad = append(bad, r)
			continue
		}
		uniq[r] = true
	}
	if len(bad) > 0 {
		sort.Ints(bad)
		return fmt.Errorf("rows %v of %d items: %w", bad, len(t.Items), save.ErrIndexOutOfRange)
	}

	ordered := make([]int, 0, len(uniq))
	for r := range uniq {
		ordered = append(ordered, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
	for _, r := range ordered {
		t.Items = append(t.Items[:r], t.Items[r+1:]...)
	}
	return nil
}

// UpdateResources routes recognized resource keys to their owning
// records: cash to playerInfo, mana to privateState, the rest to the
// town. Unrecognized keys are ignored, as are keys whose owning record
// is absent from the save. Numeric values are clamped to be
// non-negative; a race value other than "h" or "t" is ignored.
func UpdateResources(p *save.PlayerInfo, t *save.Town, ps *save.PrivateState, values map[string]any) {
	for key, val := range values {
		switch key {
		case "cash":
			if v, ok := asInt(val); ok && p != nil {
				p.SetCash(clamp(v))
			}
		case "mana":
			if v, ok := asInt(val); ok && ps != nil {
				ps.SetMana(clamp(v))
			}
		case "coins", "xp", "level", "stone", "wood", "food", "skin":
			if v, ok := asInt(val); ok && t != nil {
				t.SetInt(key, clamp(v))
			}
		case "race":
			s, ok := val.(string)
			if ok && t != nil && (s == types.RaceHumans || s == types.RaceTrolls) {
				t.SetString("race", s)
			}
		}
	}
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// asInt accepts the integer encodings a collaborator plausibly hands us.
func asInt(val any) (int64, bool) {
	switch v := val.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
