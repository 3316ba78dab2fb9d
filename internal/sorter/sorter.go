// Package sorter provides the sibling orderings shared by the tree store and the formatter.
//
// Name modes order every sibling by name regardless of kind. Modified-time
// modes place directories before files and order each group by time. The
// files-first and dirs-first modes partition siblings by kind and order each
// partition by case-insensitive name. In every mode ties fall back
// to case-insensitive name ascending and then to the exact name, so the order
// is total and independent of directory listing order.
package sorter

import (
	"slices"
	"strings"
	"time"

	"github.com/temirov/dirtree/internal/types"
)

// Key is the data a comparator needs from a sibling.
type Key struct {
	Name        string
	IsDirectory bool
	Modified    time.Time
}

// Compare orders a before b (negative), after b (positive), or equal (zero) under mode.
func Compare(mode types.SortMode, a Key, b Key) int {
	switch mode {
	case types.SortNameAsc:
		return compareNames(a, b)
	case types.SortNameDesc:
		if result := compareFolded(b.Name, a.Name); result != 0 {
			return result
		}
		return strings.Compare(a.Name, b.Name)
	case types.SortModifiedAsc:
		if result := compareKinds(a, b, true); result != 0 {
			return result
		}
		if result := a.Modified.Compare(b.Modified); result != 0 {
			return result
		}
		return compareNames(a, b)
	case types.SortModifiedDesc:
		if result := compareKinds(a, b, true); result != 0 {
			return result
		}
		if result := b.Modified.Compare(a.Modified); result != 0 {
			return result
		}
		return compareNames(a, b)
	case types.SortFilesFirst:
		if result := compareKinds(a, b, false); result != 0 {
			return result
		}
		return compareNames(a, b)
	default:
		if result := compareKinds(a, b, true); result != 0 {
			return result
		}
		return compareNames(a, b)
	}
}

// compareKinds orders directories before files when directoriesFirst is set
// and after them otherwise. Siblings of the same kind compare equal.
func compareKinds(a Key, b Key, directoriesFirst bool) int {
	if a.IsDirectory == b.IsDirectory {
		return 0
	}
	if a.IsDirectory == directoriesFirst {
		return -1
	}
	return 1
}

// Sort orders items in place under mode using keyOf to extract comparator keys.
func Sort[T any](items []T, mode types.SortMode, keyOf func(T) Key) {
	slices.SortStableFunc(items, func(a, b T) int {
		return Compare(mode, keyOf(a), keyOf(b))
	})
}

// EntryKey extracts the comparator key of a walked entry.
func EntryKey(entry types.Entry) Key {
	return Key{Name: entry.Name, IsDirectory: entry.IsDirectory(), Modified: entry.Modified}
}

func compareNames(a Key, b Key) int {
	if result := compareFolded(a.Name, b.Name); result != 0 {
		return result
	}
	return strings.Compare(a.Name, b.Name)
}

func compareFolded(a string, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
