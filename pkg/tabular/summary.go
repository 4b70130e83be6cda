package tabular

import (
	"cmp"
	"slices"

	"github.com/Sumatoshi-tech/restring/pkg/aggregate"
)

// SummaryTable has one row per term with its best score and gene lists.
type SummaryTable struct {
	Rows []SummaryRow `yaml:"terms"`
}

// SummaryRow is one term of a SummaryTable.
type SummaryRow struct {
	Term        string   `yaml:"id"`
	Score       float64  `yaml:"score"`
	Occurrence  int      `yaml:"occurrence"`
	AllGenes    []string `yaml:"all_genes"`
	CommonGenes []string `yaml:"common_genes"`
}

// Summary builds the summary table sorted by ascending score, ties by term.
func Summary(res *aggregate.Result) *SummaryTable {
	records := res.Records()
	table := &SummaryTable{Rows: make([]SummaryRow, 0, len(records))}

	for _, rec := range records {
		table.Rows = append(table.Rows, SummaryRow{
			Term:        rec.TermID,
			Score:       rec.BestScore,
			Occurrence:  rec.Occurrence(),
			AllGenes:    rec.AllGenes.Sorted(),
			CommonGenes: rec.CommonGenes.Sorted(),
		})
	}

	table.SortByScore()

	return table
}

// Len returns the number of rows.
func (t *SummaryTable) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *SummaryTable) Empty() bool {
	return len(t.Rows) == 0
}

// SortByScore orders rows by ascending score, ties by term.
func (t *SummaryTable) SortByScore() {
	slices.SortStableFunc(t.Rows, func(a, b SummaryRow) int {
		return cmp.Or(cmp.Compare(a.Score, b.Score), cmp.Compare(a.Term, b.Term))
	})
}

// SortByTerm orders rows by term.
func (t *SummaryTable) SortByTerm() {
	slices.SortStableFunc(t.Rows, func(a, b SummaryRow) int {
		return cmp.Compare(a.Term, b.Term)
	})
}

// Head returns a copy holding at most n rows; n <= 0 keeps everything.
func (t *SummaryTable) Head(n int) *SummaryTable {
	if n <= 0 || n >= len(t.Rows) {
		return &SummaryTable{Rows: slices.Clone(t.Rows)}
	}

	return &SummaryTable{Rows: slices.Clone(t.Rows[:n])}
}
