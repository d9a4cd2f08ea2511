package siteforge

import "testing"

func menuItems() []any {
	return []any{
		map[string]any{"_id": "a", "name": "Home", "link": "/", "order": 0},
		map[string]any{"_id": "b", "name": "Blog", "link": "/blog", "order": 1},
		map[string]any{"_id": "c", "name": "About", "link": "/about", "order": 2},
	}
}

func orders(t *testing.T, items []any) []int {
	t.Helper()
	out := make([]int, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			t.Fatalf("item %d is not an object: %v", i, it)
		}
		n, ok := m["order"].(int)
		if !ok {
			t.Fatalf("item %d has no int order: %v", i, m["order"])
		}
		out[i] = n
	}
	return out
}

func assertDense(t *testing.T, items []any) {
	t.Helper()
	for i, n := range orders(t, items) {
		if n != i {
			t.Fatalf("order at position %d = %d, want %d", i, n, i)
		}
	}
}

func TestAppendItemGeneratesIDAndOrder(t *testing.T) {
	items := AppendItem(menuItems(), map[string]any{"name": "Contact", "link": "/contact"})
	if len(items) != 4 {
		t.Fatalf("len = %d, want 4", len(items))
	}
	last := items[3].(map[string]any)
	if ItemID(last) == "" {
		t.Error("appended item should get a generated id")
	}
	if last["order"] != 3 {
		t.Errorf("appended order = %v, want 3", last["order"])
	}
	assertDense(t, items)
}

func TestAppendItemKeepsExplicitID(t *testing.T) {
	items := AppendItem(nil, map[string]any{"_id": "x", "name": "Solo"})
	if ItemID(items[0]) != "x" {
		t.Errorf("id = %q, want x", ItemID(items[0]))
	}
}

func TestRemoveItemRenumbers(t *testing.T) {
	items := RemoveItem(menuItems(), "b")
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if ItemID(it) == "b" {
			t.Error("removed item still present")
		}
	}
	assertDense(t, items)
}

func TestRemoveItemUnknownID(t *testing.T) {
	items := RemoveItem(menuItems(), "zzz")
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	assertDense(t, items)
}

func TestUpdateItem(t *testing.T) {
	items := UpdateItem(menuItems(), "b", map[string]any{"name": "News", "_id": "evil"})
	m := items[1].(map[string]any)
	if m["name"] != "News" {
		t.Errorf("name = %v, want News", m["name"])
	}
	if ItemID(m) != "b" {
		t.Error("_id must not be overwritten")
	}
	assertDense(t, items)
}

func TestMoveItemRenumbersDense(t *testing.T) {
	// Scramble the input orders; the result must still come out 0..N-1.
	items := menuItems()
	items[0].(map[string]any)["order"] = 7
	items[2].(map[string]any)["order"] = -3

	moved := MoveItem(items, "c", 0)
	if ItemID(moved[0]) != "c" {
		t.Errorf("first item = %q, want c", ItemID(moved[0]))
	}
	assertDense(t, moved)
}

func TestMoveItemClampsTarget(t *testing.T) {
	moved := MoveItem(menuItems(), "a", 99)
	if ItemID(moved[len(moved)-1]) != "a" {
		t.Error("item should move to the end when target exceeds bounds")
	}
	assertDense(t, moved)
}

func TestItemHelpersDoNotMutateInput(t *testing.T) {
	items := menuItems()
	AppendItem(items, map[string]any{"name": "X"})
	RemoveItem(items, "a")
	MoveItem(items, "a", 2)
	UpdateItem(items, "a", map[string]any{"name": "Y"})

	if len(items) != 3 {
		t.Fatalf("input length changed: %d", len(items))
	}
	first := items[0].(map[string]any)
	if first["name"] != "Home" || first["order"] != 0 {
		t.Errorf("input item mutated: %v", first)
	}
}
