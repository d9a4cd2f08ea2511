package siteforge

import "github.com/google/uuid"

// List-item helpers for array-valued document fields (menu links, social
// links, footer columns). Items are plain objects carrying an opaque "_id"
// and a dense integer "order" that records display position. Every helper
// returns a fresh slice with fresh item maps; inputs are never mutated.

const (
	itemIDField    = "_id"
	itemOrderField = "order"
)

// AppendItem adds item at the end of items. A missing "_id" gets a generated
// identifier. Order values are renumbered 0..N-1.
func AppendItem(items []any, item map[string]any) []any {
	cp := make(map[string]any, len(item)+2)
	for k, v := range item {
		cp[k] = v
	}
	if id, _ := cp[itemIDField].(string); id == "" {
		cp[itemIDField] = uuid.NewString()
	}
	out := make([]any, 0, len(items)+1)
	out = append(out, items...)
	out = append(out, cp)
	return renumber(out)
}

// RemoveItem drops the item with the given id. Remaining items are
// renumbered 0..N-2. Unknown ids leave the list unchanged apart from
// renumbering.
func RemoveItem(items []any, id string) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		if ItemID(it) == id {
			continue
		}
		out = append(out, it)
	}
	return renumber(out)
}

// UpdateItem overwrites fields on the item with the given id and renumbers.
// The "_id" field cannot be overwritten.
func UpdateItem(items []any, id string, fields map[string]any) []any {
	out := make([]any, len(items))
	for i, it := range items {
		if ItemID(it) != id {
			out[i] = it
			continue
		}
		m, _ := it.(map[string]any)
		cp := make(map[string]any, len(m)+len(fields))
		for k, v := range m {
			cp[k] = v
		}
		for k, v := range fields {
			if k == itemIDField {
				continue
			}
			cp[k] = v
		}
		out[i] = cp
	}
	return renumber(out)
}

// MoveItem moves the item with the given id to position to (clamped to the
// list bounds) and renumbers so order values are a contiguous permutation of
// the final positions.
func MoveItem(items []any, id string, to int) []any {
	from := -1
	for i, it := range items {
		if ItemID(it) == id {
			from = i
			break
		}
	}
	if from == -1 {
		return renumber(items)
	}
	if to < 0 {
		to = 0
	}
	if to > len(items)-1 {
		to = len(items) - 1
	}
	out := make([]any, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	out = append(out[:to], append([]any{items[from]}, out[to:]...)...)
	return renumber(out)
}

// ItemID reads the "_id" field of a list item; non-object items read as "".
func ItemID(it any) string {
	m, _ := it.(map[string]any)
	id, _ := m[itemIDField].(string)
	return id
}

// renumber assigns order 0..N-1 by position. Item maps are shallow copied so
// callers holding the input never observe the new order values.
func renumber(items []any) []any {
	out := make([]any, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			out[i] = it
			continue
		}
		cp := make(map[string]any, len(m)+1)
		for k, v := range m {
			cp[k] = v
		}
		cp[itemOrderField] = i
		out[i] = cp
	}
	return out
}
