package enrichment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Row is one term of an enrichment table.
type Row struct {
	TermID string
	Score  float64
	Genes  []string
}

// geneSep separates gene labels inside a cell.
const geneSep = ","

// ReadTable parses a tab-separated enrichment table using the column lookup of category.
// Any unparsable row aborts the read; no partial rows are returned.
func ReadTable(r io.Reader, category Category) ([]Row, error) {
	cols, err := ColumnsFor(category)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := locateColumns(header, cols)
	if err != nil {
		return nil, err
	}

	var rows []Row

	for line := 2; ; line++ {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, readErr)
		}

		if isBlank(record) {
			continue
		}

		row, parseErr := parseRow(record, idx, cols)
		if parseErr != nil {
			return nil, fmt.Errorf("line %d: %w", line, parseErr)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// ReadFile opens path and parses it with ReadTable.
func ReadFile(path string, category Category) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open enrichment table: %w", err)
	}
	defer f.Close()

	rows, err := ReadTable(f, category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return rows, nil
}

// FindFiles lists the enrichment tables of category inside dir whose name prefix
// matches the direction set. Only entry names are matched against the category
// pattern, so dir may contain glob metacharacters. Paths are returned sorted.
func FindFiles(dir string, category Category, set DirectionSet) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list enrichment tables: %w", err)
	}

	pattern := category.FilePattern()

	var selected []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()

		ok, matchErr := filepath.Match(pattern, name)
		if matchErr != nil {
			return nil, fmt.Errorf("match enrichment tables: %w", matchErr)
		}

		if ok && set.MatchFile(name) {
			selected = append(selected, filepath.Join(dir, name))
		}
	}

	slices.Sort(selected)

	return selected, nil
}

type columnIndex struct {
	id, score, genes int
}

func locateColumns(header []string, cols Columns) (columnIndex, error) {
	idx := columnIndex{id: -1, score: -1, genes: -1}

	for i, name := range header {
		switch strings.TrimSpace(name) {
		case cols.ID:
			idx.id = i
		case cols.Score:
			idx.score = i
		case cols.Genes:
			idx.genes = i
		}
	}

	var missing []string

	if idx.id < 0 {
		missing = append(missing, cols.ID)
	}

	if idx.score < 0 {
		missing = append(missing, cols.Score)
	}

	if idx.genes < 0 {
		missing = append(missing, cols.Genes)
	}

	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: %q", ErrMissingColumn, missing)
	}

	return idx, nil
}

func parseRow(record []string, idx columnIndex, cols Columns) (Row, error) {
	width := max(idx.id, idx.score, idx.genes)
	if len(record) <= width {
		return Row{}, fmt.Errorf("%w: expected at least %d fields, got %d", ErrMalformedRow, width+1, len(record))
	}

	id := strings.TrimSpace(record[idx.id])
	if id == "" {
		return Row{}, fmt.Errorf("%w: empty %q", ErrMalformedRow, cols.ID)
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(record[idx.score]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("%w: term %q: %q: %w", ErrMalformedRow, id, cols.Score, err)
	}

	genes := splitGenes(record[idx.genes])
	if len(genes) == 0 {
		return Row{}, fmt.Errorf("%w: term %q: empty %q", ErrMalformedRow, id, cols.Genes)
	}

	return Row{TermID: id, Score: score, Genes: genes}, nil
}

func splitGenes(cell string) []string {
	parts := strings.Split(cell, geneSep)
	genes := make([]string, 0, len(parts))

	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			genes = append(genes, g)
		}
	}

	return genes
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}
