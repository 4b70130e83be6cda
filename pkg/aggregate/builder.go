package aggregate

import "github.com/Sumatoshi-tech/restring/pkg/enrichment"

// Builder accumulates rows into records. A Builder is single-use: Finalize
// computes the common gene sets and hands the result over.
type Builder struct {
	result    *Result
	finalized bool
}

// NewBuilder starts an empty aggregation for the given category and directions.
func NewBuilder(category enrichment.Category, set enrichment.DirectionSet) *Builder {
	return &Builder{result: newResult(category, set)}
}

// Add folds rows read from dir. It fails with ErrFinalized once Finalize was called.
func (b *Builder) Add(dir string, rows ...enrichment.Row) error {
	if b.finalized {
		return ErrFinalized
	}

	for _, row := range rows {
		b.result.record(row.TermID).observe(dir, row)
	}

	return nil
}

// Len returns the number of distinct terms seen so far.
func (b *Builder) Len() int {
	return b.result.Len()
}

// Finalize computes CommonGenes for every record and returns the result.
func (b *Builder) Finalize() *Result {
	if !b.finalized {
		for _, r := range b.result.records {
			r.finalize()
		}

		b.finalized = true
	}

	return b.result
}
