package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header cells of the written tables.
const (
	WideIndexHeader = "term"
	SummaryIDHeader = "ID"
)

var summaryHeader = []string{SummaryIDHeader, "score", "occurrence", "all_genes", "common_genes"}

const geneSep = ","

// ErrBadTable is returned when a table read back from disk does not have the expected shape.
var ErrBadTable = errors.New("malformed table")

// FormatScore renders a score with the shortest representation that round-trips.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func newTSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	return cw
}

func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	return cr
}

// WriteTSV writes the table with a "term" header followed by the directory columns.
func (t *WideTable) WriteTSV(w io.Writer) error {
	cw := newTSVWriter(w)

	if err := cw.Write(append([]string{WideIndexHeader}, t.Columns...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns)+1)

	for _, row := range t.Rows {
		record[0] = row.Term
		for i, v := range row.Values {
			record[i+1] = FormatScore(v)
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %q: %w", row.Term, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}

	return nil
}

// WriteTSV writes ID, score, occurrence, all_genes and common_genes columns.
func (t *SummaryTable) WriteTSV(w io.Writer) error {
	cw := newTSVWriter(w)

	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range t.Rows {
		record := []string{
			row.Term,
			FormatScore(row.Score),
			strconv.Itoa(row.Occurrence),
			strings.Join(row.AllGenes, geneSep),
			strings.Join(row.CommonGenes, geneSep),
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %q: %w", row.Term, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}

	return nil
}

// ReadWideTSV parses a table written by WideTable.WriteTSV. The name of the
// first header cell is not checked, so tables exported by other tools load too.
func ReadWideTSV(r io.Reader) (*WideTable, error) {
	records, err := newTSVReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header", ErrBadTable)
	}

	table := &WideTable{Columns: append([]string(nil), records[0][1:]...)}

	for i, rec := range records[1:] {
		if len(rec) != len(table.Columns)+1 {
			return nil, fmt.Errorf("%w: line %d: expected %d fields, got %d",
				ErrBadTable, i+2, len(table.Columns)+1, len(rec))
		}

		values := make([]float64, len(table.Columns))

		for j, cell := range rec[1:] {
			v, parseErr := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if parseErr != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %w", ErrBadTable, i+2, table.Columns[j], parseErr)
			}

			values[j] = v
		}

		table.Rows = append(table.Rows, WideRow{Term: rec[0], Values: values})
	}

	return table, nil
}

// ReadSummaryTSV parses a table written by SummaryTable.WriteTSV. Row order is kept.
func ReadSummaryTSV(r io.Reader) (*SummaryTable, error) {
	records, err := newTSVReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	if len(records) == 0 || len(records[0]) < len(summaryHeader) {
		return nil, fmt.Errorf("%w: expected header %q", ErrBadTable, summaryHeader)
	}

	table := &SummaryTable{}

	for i, rec := range records[1:] {
		if len(rec) < len(summaryHeader) {
			return nil, fmt.Errorf("%w: line %d: expected %d fields, got %d", ErrBadTable, i+2, len(summaryHeader), len(rec))
		}

		score, scoreErr := strconv.ParseFloat(rec[1], 64)
		if scoreErr != nil {
			return nil, fmt.Errorf("%w: line %d score: %w", ErrBadTable, i+2, scoreErr)
		}

		occ, occErr := strconv.Atoi(rec[2])
		if occErr != nil {
			return nil, fmt.Errorf("%w: line %d occurrence: %w", ErrBadTable, i+2, occErr)
		}

		table.Rows = append(table.Rows, SummaryRow{
			Term:        rec[0],
			Score:       score,
			Occurrence:  occ,
			AllGenes:    splitList(rec[3]),
			CommonGenes: splitList(rec[4]),
		})
	}

	return table, nil
}

func splitList(cell string) []string {
	if cell == "" {
		return nil
	}

	return strings.Split(cell, geneSep)
}
