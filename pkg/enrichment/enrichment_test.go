package enrichment_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
)

const tableHeader = "#term ID\tterm description\tobserved gene count\tbackground gene count\t" +
	"false discovery rate\tmatching proteins in your network (IDs)\tmatching proteins in your network (labels)\n"

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, err := enrichment.ParseCategory("KEGG")
	require.NoError(t, err)
	assert.Equal(t, enrichment.KEGG, c)

	c, err = enrichment.ParseCategory("process")
	require.NoError(t, err)
	assert.Equal(t, enrichment.Process, c)

	_, err = enrichment.ParseCategory("Pathways")
	require.ErrorIs(t, err, enrichment.ErrInvalidCategory)
	assert.Contains(t, err.Error(), "Component, Function, KEGG, Process, RCTM")
}

func TestParseCategories_EmptyMeansAll(t *testing.T) {
	t.Parallel()

	cs, err := enrichment.ParseCategories(nil)
	require.NoError(t, err)
	assert.Equal(t, enrichment.Categories(), cs)

	cs, err = enrichment.ParseCategories([]string{"KEGG", "kegg", "RCTM"})
	require.NoError(t, err)
	assert.Equal(t, []enrichment.Category{enrichment.KEGG, enrichment.RCTM}, cs)
}

func TestParseDirections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  enrichment.DirectionSet
	}{
		{name: "single_string", input: "UP", want: enrichment.DirectionSet{enrichment.Up}},
		{name: "lowercase_string", input: " down ", want: enrichment.DirectionSet{enrichment.Down}},
		{name: "string_list", input: []string{"DOWN", "UP"}, want: enrichment.DirectionSet{enrichment.Up, enrichment.Down}},
		{name: "direction", input: enrichment.All, want: enrichment.DirectionSet{enrichment.All}},
		{
			name:  "direction_list_dedup",
			input: []enrichment.Direction{enrichment.Down, enrichment.Down},
			want:  enrichment.DirectionSet{enrichment.Down},
		},
		{
			name:  "direction_set",
			input: enrichment.DirectionSet{enrichment.All, enrichment.Up},
			want:  enrichment.DirectionSet{enrichment.Up, enrichment.All},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := enrichment.ParseDirections(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDirections_Rejects(t *testing.T) {
	t.Parallel()

	inputs := map[string]any{
		"unknown_tag":  "SIDEWAYS",
		"unknown_list": []string{"UP", "LEFT"},
		"empty_list":   []string{},
		"wrong_type":   42,
		"nil":          nil,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := enrichment.ParseDirections(input)
			require.ErrorIs(t, err, enrichment.ErrInvalidDirection)
		})
	}
}

func TestParseDirectionSpec(t *testing.T) {
	t.Parallel()

	set, err := enrichment.ParseDirectionSpec("UP_DOWN")
	require.NoError(t, err)
	assert.Equal(t, "UP_DOWN", set.String())

	set, err = enrichment.ParseDirectionSpec("down,up")
	require.NoError(t, err)
	assert.Equal(t, "UP_DOWN", set.Join("_"))
}

func TestDirectionSet_MatchFile(t *testing.T) {
	t.Parallel()

	set := enrichment.DirectionSet{enrichment.Down}

	assert.True(t, set.MatchFile("DOWN_enrichment.KEGG.tsv"))
	assert.True(t, set.MatchFile("DO_enrichment.KEGG.tsv"))
	assert.False(t, set.MatchFile("UP_enrichment.KEGG.tsv"))
	assert.False(t, set.MatchFile("D"))
}

func TestReadTable(t *testing.T) {
	t.Parallel()

	data := tableHeader +
		"hsa04110\tCell cycle\t3\t124\t0.0012\tA,B,C\tGeneA,GeneB,GeneC\n" +
		"\n" +
		"hsa03030\tDNA replication\t1\t36\t1e-05\tD\tGeneD\n"

	rows, err := enrichment.ReadTable(strings.NewReader(data), enrichment.KEGG)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Cell cycle", rows[0].TermID)
	assert.InDelta(t, 0.0012, rows[0].Score, 1e-12)
	assert.Equal(t, []string{"GeneA", "GeneB", "GeneC"}, rows[0].Genes)
	assert.Equal(t, "DNA replication", rows[1].TermID)
	assert.InDelta(t, 1e-05, rows[1].Score, 1e-15)
}

func TestReadTable_EmptyInput(t *testing.T) {
	t.Parallel()

	rows, err := enrichment.ReadTable(strings.NewReader(""), enrichment.KEGG)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = enrichment.ReadTable(strings.NewReader(tableHeader), enrichment.KEGG)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadTable_Malformed(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"blank_genes":  tableHeader + "x\tTerm\t1\t2\t0.1\tA\t \n",
		"bad_score":    tableHeader + "x\tTerm\t1\t2\tNaN-ish\tA\tGeneA\n",
		"short_row":    tableHeader + "x\tTerm\t1\n",
		"empty_termid": tableHeader + "x\t\t1\t2\t0.1\tA\tGeneA\n",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := enrichment.ReadTable(strings.NewReader(data), enrichment.Process)
			require.ErrorIs(t, err, enrichment.ErrMalformedRow)
		})
	}
}

func TestReadTable_MissingColumn(t *testing.T) {
	t.Parallel()

	data := "term description\tfalse discovery rate\nTerm\t0.1\n"

	_, err := enrichment.ReadTable(strings.NewReader(data), enrichment.Process)
	require.ErrorIs(t, err, enrichment.ErrMissingColumn)
	require.ErrorIs(t, err, enrichment.ErrMalformedRow)
	assert.Contains(t, err.Error(), "matching proteins in your network (labels)")
}

func TestReadTable_InvalidCategory(t *testing.T) {
	t.Parallel()

	_, err := enrichment.ReadTable(strings.NewReader(tableHeader), enrichment.Category("Pfam"))
	require.ErrorIs(t, err, enrichment.ErrInvalidCategory)
}

func TestFindFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, name := range []string{
		"UP_enrichment.KEGG.tsv",
		"DOWN_enrichment.KEGG.tsv",
		"ALL_enrichment.KEGG.tsv",
		"UP_enrichment.Process.tsv",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(tableHeader), 0o600))
	}

	files, err := enrichment.FindFiles(dir, enrichment.KEGG, enrichment.DirectionSet{enrichment.Up, enrichment.Down})
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}

	assert.Equal(t, []string{"DOWN_enrichment.KEGG.tsv", "UP_enrichment.KEGG.tsv"}, names)
}

func TestFindFiles_DirectoryNameIsLiteral(t *testing.T) {
	t.Parallel()

	for _, folder := range []string{"Ctrl[24h]", "exp*?", `back\slash`} {
		t.Run(folder, func(t *testing.T) {
			t.Parallel()

			dir := filepath.Join(t.TempDir(), "root[2024]", folder)
			require.NoError(t, os.MkdirAll(filepath.Join(dir, "UP_enrichment.KEGG.tsv"), 0o750))

			for _, name := range []string{
				"UP_enrichment.KEGG.tsv.bak",
				"DOWN_enrichment.KEGG.tsv",
				"ALL_enrichment.KEGG.tsv",
				"UP_enrichment.Process.tsv",
				"xUP_enrichment.KEGG.tsv",
			} {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(tableHeader), 0o600))
			}

			files, err := enrichment.FindFiles(dir, enrichment.KEGG, enrichment.DirectionSet{enrichment.Down, enrichment.All})
			require.NoError(t, err)
			assert.Equal(t, []string{
				filepath.Join(dir, "ALL_enrichment.KEGG.tsv"),
				filepath.Join(dir, "DOWN_enrichment.KEGG.tsv"),
			}, files)
		})
	}
}

func TestFindFiles_MissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := enrichment.FindFiles(filepath.Join(t.TempDir(), "missing"), enrichment.KEGG, enrichment.DirectionSet{enrichment.Up})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFile_NotFound(t *testing.T) {
	t.Parallel()

	_, err := enrichment.ReadFile(filepath.Join(t.TempDir(), "missing.tsv"), enrichment.KEGG)
	require.ErrorIs(t, err, os.ErrNotExist)
}
