package listview

import (
	"slices"
	"time"
)

// SortByTimeDesc returns items ordered most recent first on field. Ties and
// unparseable timestamps keep their input order; unparseable ones go last.
func SortByTimeDesc[T Item](items []T, field string) []T {
	type keyed struct {
		item T
		at   time.Time
		ok   bool
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		at, ok := ParseTime(it.Value(field))
		ks[i] = keyed{item: it, at: at, ok: ok}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		return b.at.Compare(a.at)
	})
	out := make([]T, len(ks))
	for i, k := range ks {
		out[i] = k.item
	}
	return out
}

// KeyFunc derives a group key from an item.
type KeyFunc func(Item) string

// ByField groups on the raw value of field.
func ByField(field string) KeyFunc {
	return func(it Item) string { return it.Value(field) }
}

// ByDay groups on the calendar day of field. Items without a parseable day
// share the empty key.
func ByDay(field string) KeyFunc {
	return func(it Item) string {
		day, ok := ParseDay(it.Value(field))
		if !ok {
			return ""
		}
		return day.Format(DateLayout)
	}
}

// Group is one section of a grouped list.
type Group[T Item] struct {
	Key   string `json:"key"`
	Items []T    `json:"items"`
}

// GroupBy splits items into groups in order of first appearance, keeping
// item order within each group.
func GroupBy[T Item](items []T, key KeyFunc) []Group[T] {
	index := make(map[string]int)
	var groups []Group[T]
	for _, it := range items {
		k := key(it)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}
