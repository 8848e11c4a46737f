// Package save implements the player save document: parsing, structural
// round-trip serialization, and typed access to the few fields the
// editor understands. Everything it does not understand is carried
// through untouched.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MalformedSaveError reports a save document missing required structure.
type MalformedSaveError struct {
	Reason string
}

func (e *MalformedSaveError) Error() string {
	return "malformed save: " + e.Reason
}

// ErrIndexOutOfRange is returned for town or item row indices outside the
// current document.
var ErrIndexOutOfRange = errors.New("index out of range")

// PlayerInfo is the save's player record. Cash is the only field the
// editor writes.
type PlayerInfo struct {
	record
}

func (p *PlayerInfo) PID() string     { return p.Text("pid") }
func (p *PlayerInfo) Name() string    { return p.String("name") }
func (p *PlayerInfo) Cash() int64     { return p.Int("cash") }
func (p *PlayerInfo) SetCash(v int64) { p.SetInt("cash", v) }

// PrivateState is the save's private-state record. Mana lives here, not
// in the town.
type PrivateState struct {
	record
}

func (p *PrivateState) Mana() int64     { return p.Int("mana") }
func (p *PrivateState) SetMana(v int64) { p.SetInt("mana", v) }

// Town is one map within the save: its resource fields plus an ordered
// item list. Item ordering is preserved across load, mutate and
// serialize; nothing resorts it.
type Town struct {
	record
	Items []Instance

	hadItems bool // emit "items" on serialize even when empty
}

func (t *Town) Name() string { return t.String("name") }

func (t *Town) UnmarshalJSON(data []byte) error {
	if err := t.record.UnmarshalJSON(data); err != nil {
		return err
	}
	raw, ok := t.fields["items"]
	if !ok {
		return nil
	}
	t.hadItems = true
	delete(t.fields, "items")
	if err := json.Unmarshal(raw, &t.Items); err != nil {
		return err
	}
	return nil
}

func (t *Town) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(t.fields)+1)
	for k, v := range t.fields {
		m[k] = v
	}
	if t.hadItems || len(t.Items) > 0 {
		items := t.Items
		if items == nil {
			items = []Instance{}
		}
		raw, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		m["items"] = raw
	}
	return json.Marshal(m)
}

// Document is a parsed save file. Player and Private are nil when the
// save lacks those records; Maps is never nil after a successful Parse.
type Document struct {
	Player  *PlayerInfo
	Private *PrivateState
	Maps    []*Town

	fields map[string]json.RawMessage // untouched top-level fields
}

// Parse decodes a save file. A document without a "maps" array is not a
// save at all and fails with *MalformedSaveError.
func Parse(data []byte) (*Document, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &MalformedSaveError{Reason: err.Error()}
	}

	rawMaps, ok := fields["maps"]
	if !ok {
		return nil, &MalformedSaveError{Reason: `missing "maps"`}
	}
	d := &Document{fields: fields}
	if err := json.Unmarshal(rawMaps, &d.Maps); err != nil {
		var mse *MalformedSaveError
		if errors.As(err, &mse) {
			return nil, mse
		}
		return nil, &MalformedSaveError{Reason: fmt.Sprintf("decoding maps: %v", err)}
	}
	delete(fields, "maps")

	if raw, ok := fields["playerInfo"]; ok {
		d.Player = &PlayerInfo{}
		if err := json.Unmarshal(raw, d.Player); err != nil {
			return nil, &MalformedSaveError{Reason: fmt.Sprintf("decoding playerInfo: %v", err)}
		}
		delete(fields, "playerInfo")
	}
	if raw, ok := fields["privateState"]; ok {
		d.Private = &PrivateState{}
		if err := json.Unmarshal(raw, d.Private); err != nil {
			return nil, &MalformedSaveError{Reason: fmt.Sprintf("decoding privateState: %v", err)}
		}
		delete(fields, "privateState")
	}
	return d, nil
}

// Serialize re-encodes the document. The output is deep-equal to the
// parsed input when nothing was edited: every field the parser did not
// understand is re-emitted verbatim.
func (d *Document) Serialize() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(d.fields)+3)
	for k, v := range d.fields {
		m[k] = v
	}

	maps := d.Maps
	if maps == nil {
		maps = []*Town{}
	}
	raw, err := json.Marshal(maps)
	if err != nil {
		return nil, err
	}
	m["maps"] = raw

	if d.Player != nil {
		if m["playerInfo"], err = json.Marshal(d.Player); err != nil {
			return nil, err
		}
	}
	if d.Private != nil {
		if m["privateState"], err = json.Marshal(d.Private); err != nil {
			return nil, err
		}
	}
	return json.Marshal(m)
}

// Town returns the town at index.
func (d *Document) Town(index int) (*Town, error) {
	if index < 0 || index >= len(d.Maps) {
		return nil, fmt.Errorf("town %d of %d: %w", index, len(d.Maps), ErrIndexOutOfRange)
	}
	return d.Maps[index], nil
}
