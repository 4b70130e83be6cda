package aggregate_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/restring/pkg/aggregate"
	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
)

const header = "#term ID\tterm description\tobserved gene count\tbackground gene count\t" +
	"false discovery rate\tmatching proteins in your network (IDs)\tmatching proteins in your network (labels)\n"

type fixtureRow struct {
	term  string
	score float64
	genes []string
}

func writeTable(t *testing.T, dir, name string, rows ...fixtureRow) {
	t.Helper()

	var b strings.Builder

	b.WriteString(header)

	for i, r := range rows {
		fmt.Fprintf(&b, "id%d\t%s\t%d\t100\t%g\tX\t%s\n", i, r.term, len(r.genes), r.score, strings.Join(r.genes, ","))
	}

	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o600))
}

func upKEGG(root string, dirs ...string) aggregate.Request {
	return aggregate.Request{
		Root:        root,
		Directories: dirs,
		Category:    enrichment.KEGG,
		Directions:  enrichment.DirectionSet{enrichment.Up},
	}
}

func TestAggregate_TwoConditions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTable(t, filepath.Join(root, "CtrlA"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.01, []string{"G1", "G2"}})
	writeTable(t, filepath.Join(root, "CtrlB"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.03, []string{"G2", "G3"}})

	res, err := aggregate.Aggregate(context.Background(), upKEGG(root, "CtrlA", "CtrlB"))
	require.NoError(t, err)

	rec, ok := res.Get("T1")
	require.True(t, ok)

	assert.InDelta(t, 0.01, rec.BestScore, 0)
	assert.Equal(t, []string{"G1", "G2", "G3"}, rec.AllGenes.Sorted())
	assert.Equal(t, []string{"G2"}, rec.CommonGenes.Sorted())
	assert.Equal(t, 2, rec.Occurrence())
	assert.Equal(t, map[string]float64{"CtrlA": 0.01, "CtrlB": 0.03}, rec.Scores)
	assert.Equal(t, []string{"CtrlA", "CtrlB"}, res.Directories())
}

func TestAggregate_SingleCondition(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTable(t, filepath.Join(root, "CtrlA"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.2, []string{"G1"}})
	require.NoError(t, os.Mkdir(filepath.Join(root, "CtrlB"), 0o750))

	res, err := aggregate.Aggregate(context.Background(), upKEGG(root, "CtrlA", "CtrlB"))
	require.NoError(t, err)

	rec, ok := res.Get("T1")
	require.True(t, ok)

	assert.Equal(t, []string{aggregate.SingleCondition}, rec.CommonGenes.Sorted())
	assert.Equal(t, 1, rec.Occurrence())
	assert.Equal(t, []string{"CtrlA"}, res.Directories())
}

func TestAggregate_DisjointGenes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTable(t, filepath.Join(root, "A"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.1, []string{"G1"}})
	writeTable(t, filepath.Join(root, "B"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.1, []string{"G2"}})

	res, err := aggregate.Aggregate(context.Background(), upKEGG(root, "A", "B"))
	require.NoError(t, err)

	rec, _ := res.Get("T1")
	assert.Equal(t, []string{aggregate.NoCommonGene}, rec.CommonGenes.Sorted())
}

func TestAggregate_ScoresAndGenesAgree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTable(t, filepath.Join(root, "A"), "UP_enrichment.Process.tsv",
		fixtureRow{"apoptosis", 0.04, []string{"Bax", "Bcl2", "Casp3"}},
		fixtureRow{"mitosis", 0.5, []string{"Cdk1"}},
	)
	writeTable(t, filepath.Join(root, "A"), "DOWN_enrichment.Process.tsv",
		fixtureRow{"autophagy", 0.001, []string{"Atg5"}},
	)
	writeTable(t, filepath.Join(root, "B"), "UP_enrichment.Process.tsv",
		fixtureRow{"apoptosis", 0.002, []string{"Bax", "Casp3", "Tp53"}},
	)
	writeTable(t, filepath.Join(root, "C"), "DOWN_enrichment.Process.tsv",
		fixtureRow{"apoptosis", 0.3, []string{"Casp3", "Casp9"}},
		fixtureRow{"mitosis", 0.01, []string{"Cdk1", "Ccnb1"}},
	)

	req := aggregate.Request{
		Root:        root,
		Directories: []string{"A", "B", "C"},
		Category:    enrichment.Process,
		Directions:  enrichment.DirectionSet{enrichment.Up, enrichment.Down},
	}

	res, err := aggregate.Aggregate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []string{"apoptosis", "autophagy", "mitosis"}, res.TermIDs())

	for _, rec := range res.Records() {
		lowest := 1.0
		for _, s := range rec.Scores {
			lowest = min(lowest, s)
		}

		assert.InDelta(t, lowest, rec.BestScore, 0, rec.TermID)
		assert.Equal(t, len(rec.Scores), rec.Occurrence(), rec.TermID)
	}

	apoptosis, _ := res.Get("apoptosis")
	assert.Equal(t, []string{"Bax", "Bcl2", "Casp3", "Casp9", "Tp53"}, apoptosis.AllGenes.Sorted())
	assert.Equal(t, []string{"Casp3"}, apoptosis.CommonGenes.Sorted())

	mitosis, _ := res.Get("mitosis")
	assert.Equal(t, []string{"Cdk1"}, mitosis.CommonGenes.Sorted())

	t.Run("idempotent_rerun", func(t *testing.T) {
		again, rerunErr := aggregate.Aggregate(context.Background(), req)
		require.NoError(t, rerunErr)
		assert.Equal(t, res.Records(), again.Records())
	})
}

func TestAggregate_DirectionSelection(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "A")
	writeTable(t, dir, "UP_enrichment.KEGG.tsv", fixtureRow{"up-term", 0.1, []string{"G1"}})
	writeTable(t, dir, "DOWN_enrichment.KEGG.tsv", fixtureRow{"down-term", 0.1, []string{"G2"}})
	writeTable(t, dir, "ALL_enrichment.KEGG.tsv", fixtureRow{"all-term", 0.1, []string{"G3"}})
	writeTable(t, dir, "UP_enrichment.Process.tsv", fixtureRow{"process-term", 0.1, []string{"G4"}})

	req := upKEGG(root, "A")
	req.Directions = enrichment.DirectionSet{enrichment.Down, enrichment.All}

	res, err := aggregate.Aggregate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"all-term", "down-term"}, res.TermIDs())
}

func TestAggregate_LastFileWinsScore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "A")
	writeTable(t, dir, "UP_a_enrichment.KEGG.tsv", fixtureRow{"T1", 0.01, []string{"G1", "G2"}})
	writeTable(t, dir, "UP_b_enrichment.KEGG.tsv", fixtureRow{"T1", 0.2, []string{"G2", "G3"}})
	writeTable(t, filepath.Join(root, "B"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.5, []string{"G1", "G3"}})

	res, err := aggregate.Aggregate(context.Background(), upKEGG(root, "A", "B"))
	require.NoError(t, err)

	rec, _ := res.Get("T1")

	assert.InDelta(t, 0.2, rec.Scores["A"], 0, "per-directory score comes from the last file read")
	assert.InDelta(t, 0.01, rec.BestScore, 0, "best score accumulates across files")
	assert.Equal(t, []string{"G1", "G2", "G3"}, rec.AllGenes.Sorted())
	assert.Equal(t, []string{"G1"}, rec.CommonGenes.Sorted(), "intersection uses the first gene set of each directory")
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "A"), 0o750))

	res, err := aggregate.Aggregate(context.Background(), upKEGG(root, "A"))
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Directories())

	res, err = aggregate.Aggregate(context.Background(), upKEGG(root))
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestAggregate_Errors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTable(t, filepath.Join(root, "A"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.1, []string{"G1"}})

	bad := filepath.Join(root, "Bad")
	require.NoError(t, os.Mkdir(bad, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(bad, "UP_enrichment.KEGG.tsv"),
		[]byte(header+"id\tT2\t1\t1\t0.1\tX\t\n"), 0o600))

	tests := []struct {
		name string
		req  aggregate.Request
		want error
	}{
		{
			name: "invalid_category",
			req:  aggregate.Request{Root: root, Directories: []string{"A"}, Category: "Pfam", Directions: enrichment.DirectionSet{enrichment.Up}},
			want: enrichment.ErrInvalidCategory,
		},
		{
			name: "empty_directions",
			req:  aggregate.Request{Root: root, Directories: []string{"A"}, Category: enrichment.KEGG},
			want: enrichment.ErrInvalidDirection,
		},
		{
			name: "unknown_direction",
			req:  aggregate.Request{Root: root, Directories: []string{"A"}, Category: enrichment.KEGG, Directions: enrichment.DirectionSet{"LEFT"}},
			want: enrichment.ErrInvalidDirection,
		},
		{
			name: "missing_directory",
			req:  upKEGG(root, "A", "Missing"),
			want: os.ErrNotExist,
		},
		{
			name: "malformed_row",
			req:  upKEGG(root, "A", "Bad"),
			want: enrichment.ErrMalformedRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := aggregate.Aggregate(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestAggregate_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTable(t, filepath.Join(root, "A"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.1, []string{"G1"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := aggregate.Aggregate(ctx, upKEGG(root, "A"))
	require.ErrorIs(t, err, context.Canceled)
}

type recordingObserver struct {
	dirs  []string
	files []string
	stats []aggregate.RunStats
}

func (o *recordingObserver) DirectoryStarted(_ context.Context, dir string, _, _ int) {
	o.dirs = append(o.dirs, dir)
}

func (o *recordingObserver) FileProcessed(_ context.Context, _, file string, _ int) {
	o.files = append(o.files, file)
}

func (o *recordingObserver) RunFinished(_ context.Context, stats aggregate.RunStats) {
	o.stats = append(o.stats, stats)
}

func TestAggregator_Observer(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTable(t, filepath.Join(root, "A"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.1, []string{"G1"}})
	writeTable(t, filepath.Join(root, "B"), "UP_enrichment.KEGG.tsv",
		fixtureRow{"T1", 0.1, []string{"G1"}}, fixtureRow{"T2", 0.1, []string{"G1"}})

	obs := &recordingObserver{}
	agg := aggregate.New(obs, aggregate.LogObserver{}, aggregate.MetricsObserver{})

	_, err := agg.Aggregate(context.Background(), upKEGG(root, "A", "B"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, obs.dirs)
	assert.Equal(t, []string{"UP_enrichment.KEGG.tsv", "UP_enrichment.KEGG.tsv"}, obs.files)
	require.Len(t, obs.stats, 1)
	assert.Equal(t, 2, obs.stats[0].Files)
	assert.Equal(t, 3, obs.stats[0].Rows)
	assert.Equal(t, 2, obs.stats[0].Terms)
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	b := aggregate.NewBuilder(enrichment.RCTM, enrichment.DirectionSet{enrichment.All})
	require.NoError(t, b.Add("X", enrichment.Row{TermID: "R1", Score: 0.3, Genes: []string{"A", "B"}}))
	require.NoError(t, b.Add("Y", enrichment.Row{TermID: "R1", Score: 0.7, Genes: []string{"B"}}))

	res := b.Finalize()
	assert.Same(t, res, b.Finalize())

	rec, ok := res.Get("R1")
	require.True(t, ok)
	assert.InDelta(t, 0.3, rec.BestScore, 0)
	assert.Equal(t, []string{"B"}, rec.CommonGenes.Sorted())

	require.ErrorIs(t, b.Add("Z", enrichment.Row{TermID: "R2", Score: 0.1, Genes: []string{"C"}}), aggregate.ErrFinalized)
	assert.Equal(t, 1, res.Len())
}

func TestResult_RecordsAreCopies(t *testing.T) {
	t.Parallel()

	b := aggregate.NewBuilder(enrichment.KEGG, enrichment.DirectionSet{enrichment.Up})
	require.NoError(t, b.Add("A", enrichment.Row{TermID: "T1", Score: 0.2, Genes: []string{"G1"}}))
	require.NoError(t, b.Add("B", enrichment.Row{TermID: "T1", Score: 0.4, Genes: []string{"G1", "G2"}}))

	res := b.Finalize()

	rec, ok := res.Get("T1")
	require.True(t, ok)

	rec.Scores["C"] = 0.0001
	rec.AllGenes.Add("G9")
	rec.CommonGenes.Add("G9")
	res.Records()[0].Scores["D"] = 0.5

	again, ok := res.Get("T1")
	require.True(t, ok)
	assert.Equal(t, map[string]float64{"A": 0.2, "B": 0.4}, again.Scores)
	assert.Equal(t, []string{"G1", "G2"}, again.AllGenes.Sorted())
	assert.Equal(t, []string{"G1"}, again.CommonGenes.Sorted())
	assert.Equal(t, []string{"A", "B"}, res.Directories())
}

func TestAggregate_BracketedDirectoryName(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTable(t, filepath.Join(root, "Ctrl[24h]"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.01, []string{"G1", "G2"}})
	writeTable(t, filepath.Join(root, "Treated"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.03, []string{"G2"}})

	res, err := aggregate.Aggregate(context.Background(), upKEGG(root, "Ctrl[24h]", "Treated"))
	require.NoError(t, err)

	rec, ok := res.Get("T1")
	require.True(t, ok)
	assert.Equal(t, 2, rec.Occurrence())
	assert.InDelta(t, 0.01, rec.BestScore, 0)
	assert.Equal(t, []string{"G2"}, rec.CommonGenes.Sorted())
	assert.Equal(t, []string{"Ctrl[24h]", "Treated"}, res.Directories())
}

func TestAggregate_BracketedRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "exp[2024]")
	writeTable(t, filepath.Join(root, "A"), "UP_enrichment.KEGG.tsv", fixtureRow{"T1", 0.02, []string{"G1"}})

	res, err := aggregate.Aggregate(context.Background(), upKEGG(root, "A"))
	require.NoError(t, err)
	require.False(t, res.Empty())

	rec, ok := res.Get("T1")
	require.True(t, ok)
	assert.Equal(t, []string{aggregate.SingleCondition}, rec.CommonGenes.Sorted())
}
