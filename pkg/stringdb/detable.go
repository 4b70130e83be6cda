package stringdb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Sumatoshi-tech/restring/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
)

// Gene is one row of a differential expression table.
type Gene struct {
	ID    string
	LogFC float64
	HasFC bool
}

// DETable is a two-column differential expression table: gene id and log fold change.
type DETable struct {
	Name  string
	Genes []Gene
}

// SupportedExtensions lists the table formats LoadDETable reads.
func SupportedExtensions() []string {
	return []string{".csv", ".tsv", ".tdt", ".xlsx"}
}

// LoadDETable reads a DE table from path. The first row is a header and the
// first column holds gene ids; exactly one value column must follow.
func LoadDETable(path string) (*DETable, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readDelimited(path, ',')
	case ".tsv", ".tdt":
		rows, err = readDelimited(path, '\t')
	case ".xlsx":
		rows, err = readWorkbook(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
	}

	if err != nil {
		return nil, err
	}

	table, err := parseDERows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	table.Name = TableBaseName(path)

	return table, nil
}

// TableBaseName returns the file name of path without its extension.
func TableBaseName(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open DE table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string

	for {
		rec, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadDETable, readErr)
		}

		rows = append(rows, rec)
	}

	return rows, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrBadDETable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return rows, nil
}

func parseDERows(rows [][]string) (*DETable, error) {
	if len(rows) == 0 {
		return &DETable{}, nil
	}

	header := trimTrailingBlank(rows[0])
	if len(header) != 2 {
		return nil, fmt.Errorf("%w: expected a gene id column and one value column, got %d columns",
			ErrBadDETable, len(header))
	}

	table := &DETable{}

	for i, rec := range rows[1:] {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}

		g := Gene{ID: strings.TrimSpace(rec[0])}

		if len(rec) > 1 {
			if s := strings.TrimSpace(rec[1]); s != "" {
				fc, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: row %d: gene %q: %w", ErrBadDETable, i+2, g.ID, err)
				}

				g.LogFC, g.HasFC = fc, true
			}
		}

		table.Genes = append(table.Genes, g)
	}

	return table, nil
}

func trimTrailingBlank(rec []string) []string {
	end := len(rec)
	for end > 0 && strings.TrimSpace(rec[end-1]) == "" {
		end--
	}

	return rec[:end]
}

// Empty reports whether the table has no genes.
func (t *DETable) Empty() bool {
	return t == nil || len(t.Genes) == 0
}

// Split returns the gene ids for one direction. UP keeps positive fold changes,
// DOWN negative ones and ALL every gene. reverse swaps UP and DOWN.
// Repeated ids are returned once.
func (t *DETable) Split(d enrichment.Direction, reverse bool) []string {
	if reverse {
		switch d {
		case enrichment.Up:
			d = enrichment.Down
		case enrichment.Down:
			d = enrichment.Up
		case enrichment.All:
		}
	}

	var ids []string

	for _, g := range t.Genes {
		switch {
		case d == enrichment.All:
		case !g.HasFC:
			continue
		case d == enrichment.Up && g.LogFC <= 0:
			continue
		case d == enrichment.Down && g.LogFC >= 0:
			continue
		}

		ids = append(ids, g.ID)
	}

	return mapx.Unique(ids)
}
