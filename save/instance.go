package save

import (
	"encoding/json"
	"fmt"

	"empiresedit/types"
)

// tupleLen is the fixed field count of an encoded instance:
// [id, x, y, flag0, flag1, flag2, extraList, extraMap].
const tupleLen = 8

// Instance is one placed unit or building within a town. The save file
// encodes it as a fixed positional tuple, not a keyed record; only the
// id is ever cross-referenced against the catalog. The two reserved
// tail fields round-trip untouched.
type Instance struct {
	ID    int64
	X, Y  int64
	Flags [3]json.Number
	Extra json.RawMessage // reserved list
	Props json.RawMessage // reserved map
}

// NewInstance returns a fully-populated tuple for a fresh placement:
// zeroed flags, empty reserved list and map.
func NewInstance(id int64, at types.Placement) Instance {
	return Instance{
		ID:    id,
		X:     at.X,
		Y:     at.Y,
		Flags: [3]json.Number{"0", "0", "0"},
		Extra: json.RawMessage("[]"),
		Props: json.RawMessage("{}"),
	}
}

func (inst *Instance) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return &MalformedSaveError{Reason: fmt.Sprintf("item is not a tuple: %v", err)}
	}
	if len(parts) != tupleLen {
		return &MalformedSaveError{Reason: fmt.Sprintf(
			"item tuple has %d fields, want %d", len(parts), tupleLen)}
	}

	if err := tupleInt(parts[0], "id", &inst.ID); err != nil {
		return err
	}
	if err := tupleInt(parts[1], "x", &inst.X); err != nil {
		return err
	}
	if err := tupleInt(parts[2], "y", &inst.Y); err != nil {
		return err
	}
	for i := range inst.Flags {
		if err := json.Unmarshal(parts[3+i], &inst.Flags[i]); err != nil {
			return &MalformedSaveError{Reason: fmt.Sprintf("item flag %d is not a number", i)}
		}
	}
	inst.Extra = parts[6]
	inst.Props = parts[7]
	return nil
}

func (inst Instance) MarshalJSON() ([]byte, error) {
	flags := inst.Flags
	for i, f := range flags {
		if f == "" {
			flags[i] = "0"
		}
	}
	extra := inst.Extra
	if extra == nil {
		extra = json.RawMessage("[]")
	}
	props := inst.Props
	if props == nil {
		props = json.RawMessage("{}")
	}
	return json.Marshal([tupleLen]any{
		inst.ID, inst.X, inst.Y, flags[0], flags[1], flags[2], extra, props,
	})
}

func tupleInt(raw json.RawMessage, field string, dst *int64) error {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return &MalformedSaveError{Reason: fmt.Sprintf("item %s is not a number", field)}
	}
	v, err := n.Int64()
	if err != nil {
		return &MalformedSaveError{Reason: fmt.Sprintf("item %s is not an integer", field)}
	}
	*dst = v
	return nil
}
