// Package aggregate folds per-directory enrichment tables into one record per term.
package aggregate

import (
	stdmaps "maps"

	"github.com/Sumatoshi-tech/restring/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
)

// Sentinel gene lists stored in CommonGenes when no real intersection exists.
const (
	NoCommonGene    = "No common gene"
	SingleCondition = "n/a (just one condition)"
)

// initialScore seeds BestScore before any row is seen.
const initialScore = 1.0

// Record is the cross-directory aggregate of one enrichment term.
type Record struct {
	TermID string
	// BestScore is the minimum score over every directory; it starts at 1 and only decreases.
	BestScore float64
	// Scores holds one score per contributing directory. A directory where the
	// term was not found has no entry.
	Scores map[string]float64
	// AllGenes is the union of genes reported for the term in any directory.
	AllGenes mapx.Set[string]
	// CommonGenes is the intersection of the per-directory gene sets, or one of
	// the NoCommonGene and SingleCondition sentinels.
	CommonGenes mapx.Set[string]

	pending map[string]mapx.Set[string]
}

func newRecord(id string) *Record {
	return &Record{
		TermID:    id,
		BestScore: initialScore,
		Scores:    make(map[string]float64),
		AllGenes:  mapx.NewSet[string](),
		pending:   make(map[string]mapx.Set[string]),
	}
}

// observe folds one row read from dir into the record.
// The per-directory score is overwritten by later files of the same directory,
// while the gene set kept for the intersection is the first one recorded.
func (r *Record) observe(dir string, row enrichment.Row) {
	r.Scores[dir] = row.Score
	r.BestScore = min(r.BestScore, row.Score)
	r.AllGenes.Add(row.Genes...)

	if _, ok := r.pending[dir]; !ok {
		r.pending[dir] = mapx.NewSet(row.Genes...)
	}
}

func (r *Record) finalize() {
	switch len(r.pending) {
	case 0:
		r.CommonGenes = mapx.NewSet[string]()
	case 1:
		r.CommonGenes = mapx.NewSet(SingleCondition)
	default:
		sets := make([]mapx.Set[string], 0, len(r.pending))
		for _, dir := range mapx.SortedKeys(r.pending) {
			sets = append(sets, r.pending[dir])
		}

		common := mapx.Intersect(sets...)
		if common.Len() == 0 {
			common = mapx.NewSet(NoCommonGene)
		}

		r.CommonGenes = common
	}

	r.pending = nil
}

// clone copies the finalized fields so callers cannot reach the result's maps.
func (r *Record) clone() *Record {
	return &Record{
		TermID:      r.TermID,
		BestScore:   r.BestScore,
		Scores:      stdmaps.Clone(r.Scores),
		AllGenes:    r.AllGenes.Clone(),
		CommonGenes: r.CommonGenes.Clone(),
	}
}

// Occurrence is the number of directories in which the term has a score.
func (r *Record) Occurrence() int {
	return len(r.Scores)
}

// Score returns the score recorded for dir.
func (r *Record) Score(dir string) (float64, bool) {
	v, ok := r.Scores[dir]

	return v, ok
}

// Directories returns the contributing directories in ascending order.
func (r *Record) Directories() []string {
	return mapx.SortedKeys(r.Scores)
}

// Result is a finalized aggregation. It is never mutated after Aggregate returns;
// Get and Records hand out copies.
type Result struct {
	Category   enrichment.Category
	Directions enrichment.DirectionSet

	records map[string]*Record
}

func newResult(category enrichment.Category, set enrichment.DirectionSet) *Result {
	return &Result{
		Category:   category,
		Directions: set,
		records:    make(map[string]*Record),
	}
}

func (res *Result) record(id string) *Record {
	r, ok := res.records[id]
	if !ok {
		r = newRecord(id)
		res.records[id] = r
	}

	return r
}

// Len returns the number of distinct terms.
func (res *Result) Len() int {
	if res == nil {
		return 0
	}

	return len(res.records)
}

// Empty reports whether no term was found.
func (res *Result) Empty() bool {
	return res.Len() == 0
}

// Get returns a copy of the record of a term.
func (res *Result) Get(termID string) (*Record, bool) {
	if res == nil {
		return nil, false
	}

	r, ok := res.records[termID]
	if !ok {
		return nil, false
	}

	return r.clone(), true
}

// TermIDs returns every term id in ascending order.
func (res *Result) TermIDs() []string {
	if res == nil {
		return nil
	}

	return mapx.SortedKeys(res.records)
}

// Records returns copies of every record ordered by term id.
func (res *Result) Records() []*Record {
	ids := res.TermIDs()
	out := make([]*Record, len(ids))

	for i, id := range ids {
		out[i] = res.records[id].clone()
	}

	return out
}

// Directories returns the sorted union of directories that contributed any score.
func (res *Result) Directories() []string {
	seen := mapx.NewSet[string]()
	if res == nil {
		return []string{}
	}

	for _, r := range res.records {
		for dir := range r.Scores {
			seen.Add(dir)
		}
	}

	dirs := seen.Sorted()
	if dirs == nil {
		return []string{}
	}

	return dirs
}
