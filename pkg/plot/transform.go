// Package plot draws aggregated enrichment tables as interactive HTML
// heatmaps and bubble charts.
package plot

import (
	"fmt"
	"math"
	"slices"

	"github.com/Sumatoshi-tech/restring/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/restring/pkg/tabular"
)

// SafeLog returns log_base(x), or fallback when x is zero.
func SafeLog(x, base, fallback float64) float64 {
	if x == 0 {
		return fallback
	}

	return math.Log(x) / math.Log(base)
}

// NegLog returns -log_base(x) with zero mapped to zero and negative zero cleared.
func NegLog(x, base float64) float64 {
	v := -SafeLog(x, base, 0)
	if v == 0 {
		return 0
	}

	return v
}

// Transform prepares a wide table for drawing.
type Transform struct {
	// LogTransform replaces every value v by -log_base(v).
	LogTransform bool
	LogBase      float64
	// Cutoff keeps rows with any raw value <= Cutoff, or any transformed
	// value >= Cutoff. Zero or less disables it.
	Cutoff float64
	// Terms, when set, keeps only these rows.
	Terms []string
	// Columns, when set, selects and orders the columns.
	Columns []string
	// MaxTerms keeps the most significant rows. Zero keeps every row.
	MaxTerms int
}

// Apply returns a transformed copy of table.
func (t Transform) Apply(table *tabular.WideTable) (*tabular.WideTable, error) {
	if t.LogTransform && (t.LogBase <= 0 || t.LogBase == 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase, t.LogBase)
	}

	colIdx, err := t.columnIndex(table.Columns)
	if err != nil {
		return nil, err
	}

	out := &tabular.WideTable{Columns: make([]string, len(colIdx))}
	for i, ci := range colIdx {
		out.Columns[i] = table.Columns[ci]
	}

	var keep mapx.Set[string]
	if len(t.Terms) > 0 {
		keep = mapx.NewSet(t.Terms...)
	}

	for _, row := range table.Rows {
		if keep != nil && !keep.Contains(row.Term) {
			continue
		}

		values := make([]float64, len(colIdx))

		for i, ci := range colIdx {
			v := row.Values[ci]
			if t.LogTransform {
				v = NegLog(v, t.LogBase)
			}

			values[i] = v
		}

		if t.Cutoff > 0 && !t.passes(values) {
			continue
		}

		out.Rows = append(out.Rows, tabular.WideRow{Term: row.Term, Values: values})
	}

	if t.MaxTerms > 0 && len(out.Rows) > t.MaxTerms {
		out.Rows = t.top(out.Rows)
	}

	return out, nil
}

func (t Transform) columnIndex(columns []string) ([]int, error) {
	if len(t.Columns) == 0 {
		idx := make([]int, len(columns))
		for i := range columns {
			idx[i] = i
		}

		return idx, nil
	}

	idx := make([]int, 0, len(t.Columns))

	for _, name := range t.Columns {
		i := slices.Index(columns, name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}

		idx = append(idx, i)
	}

	return idx, nil
}

func (t Transform) passes(values []float64) bool {
	for _, v := range values {
		if t.LogTransform && v >= t.Cutoff {
			return true
		}

		if !t.LogTransform && v <= t.Cutoff {
			return true
		}
	}

	return false
}

// best returns the most significant value of a row.
func (t Transform) best(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	if t.LogTransform {
		return slices.Max(values)
	}

	return slices.Min(values)
}

// top keeps MaxTerms rows ranked by significance, preserving their order.
func (t Transform) top(rows []tabular.WideRow) []tabular.WideRow {
	ranked := slices.Clone(rows)
	slices.SortStableFunc(ranked, func(a, b tabular.WideRow) int {
		ba, bb := t.best(a.Values), t.best(b.Values)
		if t.LogTransform {
			ba, bb = -ba, -bb
		}

		switch {
		case ba < bb:
			return -1
		case ba > bb:
			return 1
		default:
			return 0
		}
	})

	selected := make(mapx.Set[string], t.MaxTerms)
	for _, r := range ranked[:t.MaxTerms] {
		selected.Add(r.Term)
	}

	kept := make([]tabular.WideRow, 0, t.MaxTerms)

	for _, r := range rows {
		if selected.Contains(r.Term) {
			kept = append(kept, r)
		}
	}

	return kept
}
