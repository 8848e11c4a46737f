// Package types holds the value types shared across the editor packages.
// Definitions only; behavior lives with the packages that own it.
package types

// ItemDefinition is one catalog entry: a keyed record describing an item
// type. Attrs holds every field of the source record (including id, name
// and img_name) so collaborators can present the full stat sheet.
type ItemDefinition struct {
	ID      int64
	Name    string
	ImgName string // optional thumbnail reference, without extension
	Attrs   map[string]any
}

// DisplayInfo is the resolved presentation metadata for an item instance.
// Known is false when the instance id has no catalog definition; the
// remaining fields then carry the unknown sentinel values.
type DisplayInfo struct {
	ID      int64
	Name    string
	ImgName string
	Known   bool
}

// Placement is the board position given to newly added instances.
type Placement struct {
	X int64
	Y int64
}

// RaceHumans and RaceTrolls are the only recognized race values.
const (
	RaceHumans = "h"
	RaceTrolls = "t"
)
