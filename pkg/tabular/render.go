package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// maxGenesShown caps the gene lists printed in terminal tables.
const maxGenesShown = 6

// RenderPretty prints the wide table as a terminal table. maxRows <= 0 prints every row.
func (t *WideTable) RenderPretty(w io.Writer, maxRows int) {
	tw := newPrettyWriter(w)

	header := table.Row{WideIndexHeader}
	for _, c := range t.Columns {
		header = append(header, c)
	}

	tw.AppendHeader(header)

	for i, row := range t.Rows {
		if maxRows > 0 && i >= maxRows {
			tw.AppendFooter(table.Row{fmt.Sprintf("... %d more", len(t.Rows)-maxRows)})

			break
		}

		r := table.Row{row.Term}
		for _, v := range row.Values {
			r = append(r, FormatScore(v))
		}

		tw.AppendRow(r)
	}

	cfgs := make([]table.ColumnConfig, 0, len(t.Columns))
	for i := range t.Columns {
		cfgs = append(cfgs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
	}

	tw.SetColumnConfigs(cfgs)
	tw.Render()
}

// RenderPretty prints the summary as a terminal table. maxRows <= 0 prints every row.
func (t *SummaryTable) RenderPretty(w io.Writer, maxRows int) {
	tw := newPrettyWriter(w)
	tw.AppendHeader(table.Row{"Term", "Score", "Occurrence", "All genes", "Common genes"})

	for i, row := range t.Rows {
		if maxRows > 0 && i >= maxRows {
			tw.AppendFooter(table.Row{fmt.Sprintf("... %d more", len(t.Rows)-maxRows)})

			break
		}

		tw.AppendRow(table.Row{
			row.Term,
			FormatScore(row.Score),
			row.Occurrence,
			abbreviate(row.AllGenes),
			abbreviate(row.CommonGenes),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	tw.Render()
}

func newPrettyWriter(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)

	return tw
}

func abbreviate(genes []string) string {
	if len(genes) <= maxGenesShown {
		return strings.Join(genes, geneSep)
	}

	return fmt.Sprintf("%s (+%d)", strings.Join(genes[:maxGenesShown], geneSep), len(genes)-maxGenesShown)
}

// WriteYAML encodes the summary as YAML.
func (t *SummaryTable) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}

	return nil
}

// WriteYAML encodes the wide table as a list of term entries mapping directory to score.
func (t *WideTable) WriteYAML(w io.Writer) error {
	type entry struct {
		Term   string             `yaml:"term"`
		Scores map[string]float64 `yaml:"scores"`
	}

	entries := make([]entry, 0, len(t.Rows))

	for _, row := range t.Rows {
		scores := make(map[string]float64, len(t.Columns))
		for i, c := range t.Columns {
			scores[c] = row.Values[i]
		}

		entries = append(entries, entry{Term: row.Term, Scores: scores})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(map[string]any{"columns": t.Columns, "terms": entries}); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}

	return nil
}
