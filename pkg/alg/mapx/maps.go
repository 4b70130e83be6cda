// Package mapx provides generic map helpers and a string-keyed set used for gene lists.
package mapx

import (
	"cmp"
	stdmaps "maps"
	"slices"
)

// SortedKeys returns the keys of m in sorted order.
// Returns nil for a nil map.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	if m == nil {
		return nil
	}

	return slices.Sorted(stdmaps.Keys(m))
}

// Unique returns the first occurrence of each element, preserving order.
// Returns nil for a nil slice.
func Unique[T comparable](s []T) []T {
	if s == nil {
		return nil
	}

	seen := make(map[T]struct{}, len(s))
	result := make([]T, 0, len(s))

	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
