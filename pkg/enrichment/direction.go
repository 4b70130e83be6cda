package enrichment

import (
	"fmt"
	"slices"
	"strings"
)

// Direction tags the regulation direction of a gene list.
type Direction string

// Recognized direction tags.
const (
	Up   Direction = "UP"
	Down Direction = "DOWN"
	All  Direction = "ALL"
)

// prefixLen is the number of leading file-name characters that carry the direction tag.
const prefixLen = 2

var directions = []Direction{Up, Down, All}

// Valid reports whether d is a recognized tag.
func (d Direction) Valid() bool {
	return slices.Contains(directions, d)
}

func (d Direction) String() string {
	return string(d)
}

// Prefix returns the two-character file-name prefix for the direction ("UP", "DO", "AL").
func (d Direction) Prefix() string {
	return string(d)[:prefixLen]
}

// FilePrefix returns the prefix prepended to enrichment files for this direction, e.g. "UP_".
func (d Direction) FilePrefix() string {
	return string(d) + "_"
}

// ParseDirection validates one tag. Surrounding space and case are ignored.
func ParseDirection(tag string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(tag)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q (valid: UP, DOWN, ALL)", ErrInvalidDirection, tag)
	}

	return d, nil
}

// DirectionSet is a normalized, non-empty set of directions in canonical order (UP, DOWN, ALL).
type DirectionSet []Direction

// NewDirectionSet normalizes the given directions.
func NewDirectionSet(ds ...Direction) (DirectionSet, error) {
	if len(ds) == 0 {
		return nil, fmt.Errorf("%w: empty direction set", ErrInvalidDirection)
	}

	for _, d := range ds {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %q (valid: UP, DOWN, ALL)", ErrInvalidDirection, string(d))
		}
	}

	set := make(DirectionSet, 0, len(directions))

	for _, d := range directions {
		if slices.Contains(ds, d) {
			set = append(set, d)
		}
	}

	return set, nil
}

// ParseDirections accepts a single tag, a list of tags, a Direction, a list of
// Directions, or a DirectionSet and normalizes it. Any other input type fails
// with ErrInvalidDirection instead of being reinterpreted.
func ParseDirections(v any) (DirectionSet, error) {
	switch t := v.(type) {
	case string:
		d, err := ParseDirection(t)
		if err != nil {
			return nil, err
		}

		return NewDirectionSet(d)
	case Direction:
		return NewDirectionSet(t)
	case []string:
		ds := make([]Direction, 0, len(t))

		for _, tag := range t {
			d, err := ParseDirection(tag)
			if err != nil {
				return nil, err
			}

			ds = append(ds, d)
		}

		return NewDirectionSet(ds...)
	case []Direction:
		return NewDirectionSet(t...)
	case DirectionSet:
		return NewDirectionSet(t...)
	default:
		return nil, fmt.Errorf("%w: unsupported input type %T", ErrInvalidDirection, v)
	}
}

// ParseDirectionSpec parses a set written as tags joined by "_", "," or "+", e.g. "UP_DOWN".
func ParseDirectionSpec(spec string) (DirectionSet, error) {
	fields := strings.FieldsFunc(spec, func(r rune) bool {
		return r == '_' || r == ',' || r == '+' || r == ' '
	})

	return ParseDirections(fields)
}

// DefaultDirectionSets returns UP, DOWN and UP+DOWN.
func DefaultDirectionSets() []DirectionSet {
	return []DirectionSet{{Up}, {Down}, {Up, Down}}
}

// Contains reports whether d is in the set.
func (s DirectionSet) Contains(d Direction) bool {
	return slices.Contains(s, d)
}

// Join joins the tags with sep, e.g. "UP_DOWN".
func (s DirectionSet) Join(sep string) string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = string(d)
	}

	return strings.Join(parts, sep)
}

func (s DirectionSet) String() string {
	return s.Join("_")
}

// MatchFile reports whether a file name's two-character prefix selects it for this set.
func (s DirectionSet) MatchFile(name string) bool {
	if len(name) < prefixLen {
		return false
	}

	head := name[:prefixLen]

	for _, d := range s {
		if d.Prefix() == head {
			return true
		}
	}

	return false
}
