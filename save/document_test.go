package save

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

const sampleSave = `{
	"playerInfo": {"pid": 100234, "name": "Alex", "cash": 42, "fb_token": "abc"},
	"privateState": {"mana": 7, "quests": [1, 2]},
	"timestamp": 1700000000,
	"maps": [
		{
			"name": "Capital",
			"level": 12,
			"coins": 500,
			"xp": 900,
			"stone": 10,
			"wood": 20,
			"food": 30,
			"race": "h",
			"skin": 2,
			"items": [
				[1, 0, 0, 0, 0, 0, [], {}],
				[5, 3, 4, 0, 1, 0, [9], {"hp": 20}]
			]
		},
		{
			"level": 1,
			"items": []
		}
	]
}`

// jsonDeepEqual compares two JSON byte slices structurally.
func jsonDeepEqual(t *testing.T, a, b []byte) bool {
	t.Helper()
	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		t.Fatalf("first operand is not JSON: %v", err)
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		t.Fatalf("second operand is not JSON: %v", err)
	}
	return reflect.DeepEqual(va, vb)
}

func TestParse_Fields(t *testing.T) {
	doc, err := Parse([]byte(sampleSave))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Player == nil {
		t.Fatal("Player is nil")
	}
	if got := doc.Player.PID(); got != "100234" {
		t.Errorf("PID = %q, want 100234", got)
	}
	if got := doc.Player.Name(); got != "Alex" {
		t.Errorf("Name = %q, want Alex", got)
	}
	if got := doc.Player.Cash(); got != 42 {
		t.Errorf("Cash = %d, want 42", got)
	}
	if doc.Private == nil || doc.Private.Mana() != 7 {
		t.Error("Mana not parsed")
	}

	if len(doc.Maps) != 2 {
		t.Fatalf("got %d maps, want 2", len(doc.Maps))
	}
	town := doc.Maps[0]
	if town.Name() != "Capital" {
		t.Errorf("town name = %q", town.Name())
	}
	if town.Int("coins") != 500 || town.String("race") != "h" {
		t.Errorf("town resources not parsed: coins=%d race=%q", town.Int("coins"), town.String("race"))
	}
	if len(town.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(town.Items))
	}
	inst := town.Items[1]
	if inst.ID != 5 || inst.X != 3 || inst.Y != 4 {
		t.Errorf("items[1] = %+v", inst)
	}
	if string(inst.Extra) != "[9]" {
		t.Errorf("Extra = %s", inst.Extra)
	}
}

func TestParse_StringPID(t *testing.T) {
	doc, err := Parse([]byte(`{"playerInfo":{"pid":"u-77"},"maps":[]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := doc.Player.PID(); got != "u-77" {
		t.Errorf("PID = %q, want u-77", got)
	}
}

func TestParse_MissingMaps(t *testing.T) {
	_, err := Parse([]byte(`{"playerInfo":{"pid":1}}`))
	if err == nil {
		t.Fatal("expected error for save without maps")
	}
	var mse *MalformedSaveError
	if !errors.As(err, &mse) {
		t.Errorf("err = %T, want *MalformedSaveError", err)
	}
}

func TestParse_NotJSON(t *testing.T) {
	var mse *MalformedSaveError
	if _, err := Parse([]byte(`[1,2,3]`)); !errors.As(err, &mse) {
		t.Errorf("array input: err = %v, want *MalformedSaveError", err)
	}
	if _, err := Parse([]byte(`{{`)); !errors.As(err, &mse) {
		t.Errorf("garbage input: err = %v, want *MalformedSaveError", err)
	}
}

func TestRoundTrip_Unmodified(t *testing.T) {
	doc, err := Parse([]byte(sampleSave))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !jsonDeepEqual(t, []byte(sampleSave), out) {
		t.Errorf("round-trip differs:\n%s", out)
	}

	// A second cycle through the parser must be stable too.
	doc2, err := Parse(out)
	if err != nil {
		t.Fatalf("re-Parse failed: %v", err)
	}
	out2, err := doc2.Serialize()
	if err != nil {
		t.Fatalf("re-Serialize failed: %v", err)
	}
	if !jsonDeepEqual(t, out, out2) {
		t.Error("second round-trip differs")
	}
}

func TestRoundTrip_PreservesUnknownFields(t *testing.T) {
	in := `{"maps":[{"items":[],"weird_field":{"a":[1,2]}}],"neighbors":[3,4],"privateState":{"mana":1,"x":"y"}}`
	doc, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !jsonDeepEqual(t, []byte(in), out) {
		t.Errorf("unknown fields not preserved:\n%s", out)
	}
}

func TestRoundTrip_TownWithoutItems(t *testing.T) {
	in := `{"maps":[{"name":"Outpost"}]}`
	doc, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	out, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !jsonDeepEqual(t, []byte(in), out) {
		t.Errorf("town without items grew one:\n%s", out)
	}
}

func TestTown_IndexValidation(t *testing.T) {
	doc, err := Parse([]byte(sampleSave))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := doc.Town(0); err != nil {
		t.Errorf("Town(0) failed: %v", err)
	}
	if _, err := doc.Town(1); err != nil {
		t.Errorf("Town(1) failed: %v", err)
	}
	for _, idx := range []int{-1, 2, 99} {
		_, err := doc.Town(idx)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Town(%d) err = %v, want ErrIndexOutOfRange", idx, err)
		}
	}
}

func TestSetters_ChangeSerializedValues(t *testing.T) {
	doc, err := Parse([]byte(sampleSave))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	doc.Player.SetCash(999)
	doc.Private.SetMana(5)
	doc.Maps[0].SetInt("coins", 1234)
	doc.Maps[0].SetString("race", "t")

	out, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	doc2, err := Parse(out)
	if err != nil {
		t.Fatalf("re-Parse failed: %v", err)
	}
	if doc2.Player.Cash() != 999 {
		t.Errorf("Cash = %d, want 999", doc2.Player.Cash())
	}
	if doc2.Private.Mana() != 5 {
		t.Errorf("Mana = %d, want 5", doc2.Private.Mana())
	}
	if doc2.Maps[0].Int("coins") != 1234 || doc2.Maps[0].String("race") != "t" {
		t.Error("town edits lost in round-trip")
	}
	// Unknown sibling fields survive the edit.
	if doc2.Player.Text("fb_token") != "abc" {
		t.Error("fb_token lost after editing playerInfo")
	}
}
