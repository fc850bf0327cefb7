package taskcore

import (
	"sort"
	"strings"
)

// Less orders two items.
type Less func(a, b Item) bool

func BySubject(a, b Item) bool {
	return strings.ToLower(a.Subject()) < strings.ToLower(b.Subject())
}

func ByDescription(a, b Item) bool {
	return strings.ToLower(a.Description()) < strings.ToLower(b.Description())
}

func ByOrdering(a, b Item) bool {
	return a.Ordering() < b.Ordering()
}

func ByCreationDateTime(a, b Item) bool {
	return a.CreationDateTime().Before(b.CreationDateTime())
}

// ByModificationDateTime sorts unknown modification times first.
func ByModificationDateTime(a, b Item) bool {
	return a.ModificationDateTime().Before(b.ModificationDateTime())
}

// Reverse inverts less.
func Reverse(less Less) Less {
	return func(a, b Item) bool { return less(b, a) }
}

// SortItems returns a stably sorted copy of items.
func SortItems(items []Item, less func(a, b Item) bool) []Item {
	out := append([]Item(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
