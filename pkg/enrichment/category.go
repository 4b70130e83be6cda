// Package enrichment reads STRING functional-enrichment tables and defines the
// categories and direction tags used to select them.
package enrichment

import (
	"fmt"
	"slices"
	"strings"
)

// Category is a STRING annotation database whose enrichment tables can be aggregated.
type Category string

// Aggregatable categories.
const (
	Component Category = "Component"
	Function  Category = "Function"
	KEGG      Category = "KEGG"
	Process   Category = "Process"
	RCTM      Category = "RCTM"
)

var categories = []Category{Component, Function, KEGG, Process, RCTM}

// Categories returns the supported categories in canonical order.
func Categories() []Category {
	return slices.Clone(categories)
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	return slices.Contains(categories, c)
}

func (c Category) String() string {
	return string(c)
}

// FilePattern returns the glob matching enrichment tables of this category.
func (c Category) FilePattern() string {
	return "*enrichment." + string(c) + ".tsv"
}

// ParseCategory validates a category name. Matching is case-sensitive except
// for a fallback on case-insensitive equality, so "kegg" resolves to KEGG.
func ParseCategory(name string) (Category, error) {
	name = strings.TrimSpace(name)

	for _, c := range categories {
		if string(c) == name {
			return c, nil
		}
	}

	for _, c := range categories {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidCategory, name, joinCategories(categories))
}

// ParseCategories validates every name. An empty input yields all categories.
func ParseCategories(names []string) ([]Category, error) {
	if len(names) == 0 {
		return Categories(), nil
	}

	out := make([]Category, 0, len(names))

	for _, name := range names {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}

		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}

	return out, nil
}

func joinCategories(cs []Category) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}

	return strings.Join(parts, ", ")
}

// Columns names the three columns the reader extracts from a table.
type Columns struct {
	ID    string
	Score string
	Genes string
}

// Column names used by the STRING web export.
const (
	ColumnTermID      = "#term ID"
	ColumnDescription = "term description"
	ColumnObserved    = "observed gene count"
	ColumnBackground  = "background gene count"
	ColumnFDR         = "false discovery rate"
	ColumnGeneIDs     = "matching proteins in your network (IDs)"
	ColumnGeneLabels  = "matching proteins in your network (labels)"
)

var defaultColumns = Columns{
	ID:    ColumnDescription,
	Score: ColumnFDR,
	Genes: ColumnGeneLabels,
}

var headerLookup = map[Category]Columns{
	Component: defaultColumns,
	Function:  defaultColumns,
	KEGG:      defaultColumns,
	Process:   defaultColumns,
	RCTM:      defaultColumns,
}

// ColumnsFor returns the header lookup for a category.
func ColumnsFor(c Category) (Columns, error) {
	cols, ok := headerLookup[c]
	if !ok {
		return Columns{}, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidCategory, c, joinCategories(categories))
	}

	return cols, nil
}
