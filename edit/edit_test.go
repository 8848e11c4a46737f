package edit

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"empiresedit/save"
	"empiresedit/types"
)

func testDoc(t *testing.T, body string) *save.Document {
	t.Helper()
	doc, err := save.Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func testTown(t *testing.T, items string) *save.Town {
	t.Helper()
	return testDoc(t, `{"maps":[{"items":`+items+`}]}`).Maps[0]
}

func TestAddInstances_AppendsFullTuples(t *testing.T) {
	town := testTown(t, `[[9,1,2,0,0,0,[],{}]]`)

	if err := AddInstances(town, 1, 3, types.Placement{X: 54, Y: 54}); err != nil {
		t.Fatalf("AddInstances failed: %v", err)
	}
	if len(town.Items) != 4 {
		t.Fatalf("got %d items, want 4", len(town.Items))
	}
	for i := 1; i < 4; i++ {
		out, err := json.Marshal(town.Items[i])
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(out) != `[1,54,54,0,0,0,[],{}]` {
			t.Errorf("items[%d] = %s", i, out)
		}
	}
}

func TestAddInstances_InvalidQuantity(t *testing.T) {
	town := testTown(t, `[]`)
	for _, count := range []int{0, -1, -99} {
		err := AddInstances(town, 1, count, DefaultPlacement)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("count %d: err = %v, want ErrInvalidQuantity", count, err)
		}
	}
	if len(town.Items) != 0 {
		t.Errorf("rejected adds still appended: %d items", len(town.Items))
	}
}

func TestAddInstances_UnknownIDAllowed(t *testing.T) {
	// Adding an id with no catalog definition is allowed; it simply
	// shows up as a missing id later.
	town := testTown(t, `[]`)
	if err := AddInstances(town, 424242, 1, DefaultPlacement); err != nil {
		t.Fatalf("AddInstances failed: %v", err)
	}
	if town.Items[0].ID != 424242 {
		t.Errorf("ID = %d", town.Items[0].ID)
	}
}

func TestDeleteInstances_DescendingApplication(t *testing.T) {
	town := testTown(t, `[
		[10,0,0,0,0,0,[],{}],
		[11,0,0,0,0,0,[],{}],
		[12,0,0,0,0,0,[],{}],
		[13,0,0,0,0,0,[],{}]
	]`)

	// Ascending input must still hit the intended rows.
	if err := DeleteInstances(town, []int{0, 2}); err != nil {
		t.Fatalf("DeleteInstances failed: %v", err)
	}
	ids := instanceIDs(town)
	if !reflect.DeepEqual(ids, []int64{11, 13}) {
		t.Errorf("remaining ids = %v, want [11 13]", ids)
	}
}

func TestDeleteInstances_DuplicatesCollapsed(t *testing.T) {
	town := testTown(t, `[[10,0,0,0,0,0,[],{}],[11,0,0,0,0,0,[],{}]]`)

	if err := DeleteInstances(town, []int{1, 1, 1}); err != nil {
		t.Fatalf("DeleteInstances failed: %v", err)
	}
	if !reflect.DeepEqual(instanceIDs(town), []int64{10}) {
		t.Errorf("remaining ids = %v, want [10]", instanceIDs(town))
	}
}

func TestDeleteInstances_OutOfRangeRejectsWholeBatch(t *testing.T) {
	town := testTown(t, `[[10,0,0,0,0,0,[],{}],[11,0,0,0,0,0,[],{}]]`)

	err := DeleteInstances(town, []int{0, 5})
	if !errors.Is(err, save.ErrIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
	// Nothing was deleted: the valid row 0 must survive too.
	if len(town.Items) != 2 {
		t.Errorf("partial delete: %d items left, want 2", len(town.Items))
	}
}

func TestDeleteInstances_EmptyIsNoOp(t *testing.T) {
	town := testTown(t, `[[10,0,0,0,0,0,[],{}]]`)
	if err := DeleteInstances(town, nil); err != nil {
		t.Errorf("empty delete errored: %v", err)
	}
	if len(town.Items) != 1 {
		t.Errorf("empty delete removed items")
	}
}

func TestAddThenDeleteTailRestoresTown(t *testing.T) {
	town := testTown(t, `[[9,1,2,0,0,0,[],{}],[8,5,6,0,0,0,[],{}]]`)
	before, err := json.Marshal(town)
	if err != nil {
		t.Fatal(err)
	}

	const n = 3
	if err := AddInstances(town, 1, n, DefaultPlacement); err != nil {
		t.Fatalf("AddInstances failed: %v", err)
	}
	tail := make([]int, 0, n)
	for i := len(town.Items) - n; i < len(town.Items); i++ {
		tail = append(tail, i)
	}
	if err := DeleteInstances(town, tail); err != nil {
		t.Fatalf("DeleteInstances failed: %v", err)
	}

	after, err := json.Marshal(town)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("add+delete is not an inverse:\nbefore %s\nafter  %s", before, after)
	}
}

func TestUpdateResources_Routing(t *testing.T) {
	doc := testDoc(t, `{
		"playerInfo": {"cash": 10},
		"privateState": {"mana": 1},
		"maps": [{"coins": 5, "items": []}]
	}`)
	town := doc.Maps[0]

	UpdateResources(doc.Player, town, doc.Private, map[string]any{
		"cash":  int64(100),
		"coins": int64(200),
		"xp":    int64(300),
		"level": int64(9),
		"stone": int64(1),
		"wood":  int64(2),
		"food":  int64(3),
		"mana":  int64(50),
		"race":  "t",
		"skin":  int64(4),
	})

	if doc.Player.Cash() != 100 {
		t.Errorf("cash = %d", doc.Player.Cash())
	}
	if doc.Private.Mana() != 50 {
		t.Errorf("mana = %d", doc.Private.Mana())
	}
	for key, want := range map[string]int64{
		"coins": 200, "xp": 300, "level": 9, "stone": 1, "wood": 2, "food": 3, "skin": 4,
	} {
		if got := town.Int(key); got != want {
			t.Errorf("%s = %d, want %d", key, got, want)
		}
	}
	if town.String("race") != "t" {
		t.Errorf("race = %q", town.String("race"))
	}
}

func TestUpdateResources_ClampsNegative(t *testing.T) {
	doc := testDoc(t, `{"playerInfo":{"cash":10},"privateState":{"mana":3},"maps":[{"coins":5,"items":[]}]}`)
	town := doc.Maps[0]

	UpdateResources(doc.Player, town, doc.Private, map[string]any{
		"cash":  int64(-5),
		"coins": int64(-1),
		"mana":  int64(-100),
	})

	if doc.Player.Cash() != 0 {
		t.Errorf("cash = %d, want clamped 0", doc.Player.Cash())
	}
	if town.Int("coins") != 0 {
		t.Errorf("coins = %d, want clamped 0", town.Int("coins"))
	}
	if doc.Private.Mana() != 0 {
		t.Errorf("mana = %d, want clamped 0", doc.Private.Mana())
	}
}

func TestUpdateResources_IgnoresUnknownAndInvalid(t *testing.T) {
	doc := testDoc(t, `{"playerInfo":{"cash":10},"maps":[{"race":"h","items":[]}]}`)
	town := doc.Maps[0]

	UpdateResources(doc.Player, town, doc.Private, map[string]any{
		"diamonds": int64(9999), // unrecognized key
		"race":     "x",         // not h/t
		"cash":     "lots",      // wrong type
	})

	if doc.Player.Cash() != 10 {
		t.Errorf("cash = %d, want untouched 10", doc.Player.Cash())
	}
	if town.String("race") != "h" {
		t.Errorf("race = %q, want untouched h", town.String("race"))
	}
	if town.Has("diamonds") {
		t.Error("unrecognized key was written")
	}
}

func TestUpdateResources_AbsentRecordsSkipped(t *testing.T) {
	doc := testDoc(t, `{"maps":[{"items":[]}]}`)
	// Player and Private are nil; must not panic, town keys still apply.
	UpdateResources(doc.Player, doc.Maps[0], doc.Private, map[string]any{
		"cash":  int64(5),
		"mana":  int64(5),
		"coins": int64(7),
	})
	if doc.Maps[0].Int("coins") != 7 {
		t.Errorf("coins = %d, want 7", doc.Maps[0].Int("coins"))
	}
}

func instanceIDs(t *save.Town) []int64 {
	ids := make([]int64, 0, len(t.Items))
	for _, inst := range t.Items {
		ids = append(ids, inst.ID)
	}
	return ids
}
