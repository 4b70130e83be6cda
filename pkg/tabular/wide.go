// Package tabular turns aggregation results into wide and summary tables and
// writes them as TSV, YAML or terminal tables.
package tabular

import (
	"github.com/Sumatoshi-tech/restring/pkg/aggregate"
	"github.com/Sumatoshi-tech/restring/pkg/alg/mapx"
)

// DefaultNotFound fills cells of terms absent from a directory.
const DefaultNotFound = 1.0

// WideTable has one row per term and one column per directory.
type WideTable struct {
	Columns []string
	Rows    []WideRow
}

// WideRow is one term of a WideTable; Values align with WideTable.Columns.
type WideRow struct {
	Term   string
	Values []float64
}

// Len returns the number of rows.
func (t *WideTable) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *WideTable) Empty() bool {
	return len(t.Rows) == 0
}

type wideOptions struct {
	terms    mapx.Set[string]
	notFound float64
}

// WideOption customizes Wide.
type WideOption func(*wideOptions)

// WithTerms restricts the rows to the given terms. Terms missing from the
// result are ignored. Columns are not affected.
func WithTerms(terms ...string) WideOption {
	return func(o *wideOptions) {
		o.terms = mapx.NewSet(terms...)
	}
}

// WithNotFound sets the value of cells for terms absent from a directory.
func WithNotFound(v float64) WideOption {
	return func(o *wideOptions) {
		o.notFound = v
	}
}

// Wide builds the wide results table. Columns are the sorted directories
// that contributed any score; rows are sorted by term.
func Wide(res *aggregate.Result, opts ...WideOption) *WideTable {
	o := wideOptions{notFound: DefaultNotFound}
	for _, opt := range opts {
		opt(&o)
	}

	table := &WideTable{Columns: res.Directories()}

	for _, rec := range res.Records() {
		if o.terms != nil && !o.terms.Contains(rec.TermID) {
			continue
		}

		values := make([]float64, len(table.Columns))

		for i, col := range table.Columns {
			v, ok := rec.Score(col)
			if !ok {
				v = o.notFound
			}

			values[i] = v
		}

		table.Rows = append(table.Rows, WideRow{Term: rec.TermID, Values: values})
	}

	return table
}

// Row returns the row of a term.
func (t *WideTable) Row(term string) (WideRow, bool) {
	for _, r := range t.Rows {
		if r.Term == term {
			return r, true
		}
	}

	return WideRow{}, false
}

// Value returns the cell of term in column col.
func (t *WideTable) Value(term, col string) (float64, bool) {
	row, ok := t.Row(term)
	if !ok {
		return 0, false
	}

	for i, c := range t.Columns {
		if c == col {
			return row.Values[i], true
		}
	}

	return 0, false
}
