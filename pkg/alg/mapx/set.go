package mapx

import (
	"cmp"
	stdmaps "maps"
	"slices"
)

// Set is an unordered collection of distinct values.
// The zero value is not usable; create sets with NewSet.
type Set[T cmp.Ordered] map[T]struct{}

// NewSet returns a set holding the given values.
func NewSet[T cmp.Ordered](values ...T) Set[T] {
	s := make(Set[T], len(values))
	s.Add(values...)

	return s
}

// Add inserts values into s.
func (s Set[T]) Add(values ...T) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

// Contains reports membership.
func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]

	return ok
}

// Len returns the number of members.
func (s Set[T]) Len() int {
	return len(s)
}

// Clone returns an independent copy of s.
func (s Set[T]) Clone() Set[T] {
	return stdmaps.Clone(s)
}

// Sorted returns the members in ascending order.
func (s Set[T]) Sorted() []T {
	return slices.Sorted(stdmaps.Keys(s))
}

// Intersect returns the members present in every set. No sets yields an empty set.
func Intersect[T cmp.Ordered](sets ...Set[T]) Set[T] {
	if len(sets) == 0 {
		return NewSet[T]()
	}

	out := sets[0].Clone()
	if out == nil {
		out = NewSet[T]()
	}

	for _, other := range sets[1:] {
		for v := range out {
			if !other.Contains(v) {
				delete(out, v)
			}
		}
	}

	return out
}
