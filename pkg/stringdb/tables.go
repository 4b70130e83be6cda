package stringdb

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
)

// Database selectors accepted by ResolveDatabases.
const (
	DatabasesDefault = "defaults"
	DatabasesAll     = "all"
)

// apiCategories are all annotation categories the enrichment endpoint reports.
var apiCategories = []string{
	"Process", "Component", "Function", "Keyword", "KEGG", "SMART",
	"InterPro", "Pfam", "PMID", "RCTM", "NetworkNeighborAL",
}

// APICategories returns every category STRING can report.
func APICategories() []string {
	return slices.Clone(apiCategories)
}

// ResolveDatabases expands the "defaults" and "all" selectors and validates explicit names.
func ResolveDatabases(names []string) ([]string, error) {
	if len(names) == 0 {
		names = []string{DatabasesDefault}
	}

	var out []string

	add := func(db string) {
		if !slices.Contains(out, db) {
			out = append(out, db)
		}
	}

	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case DatabasesDefault:
			for _, c := range enrichment.Categories() {
				add(c.String())
			}
		case DatabasesAll:
			for _, c := range apiCategories {
				add(c)
			}
		default:
			idx := slices.IndexFunc(apiCategories, func(c string) bool { return strings.EqualFold(c, name) })
			if idx < 0 {
				return nil, fmt.Errorf("%w: %q (valid: %s, %s, %s)",
					ErrUnknownDatabase, name, DatabasesDefault, DatabasesAll, strings.Join(apiCategories, ", "))
			}

			add(apiCategories[idx])
		}
	}

	return out, nil
}

var tableHeader = []string{
	enrichment.ColumnTermID,
	enrichment.ColumnDescription,
	enrichment.ColumnObserved,
	enrichment.ColumnBackground,
	enrichment.ColumnFDR,
	enrichment.ColumnGeneIDs,
	enrichment.ColumnGeneLabels,
}

// TableName returns the file name of one category table, e.g. "UP_enrichment.KEGG.tsv".
func TableName(prefix, category string) string {
	return prefix + "enrichment." + category + ".tsv"
}

// WriteTables writes one table per database into dir and returns the written paths.
// Databases without annotations are skipped.
func WriteTables(dir, prefix string, anns []Annotation, databases []string) ([]string, error) {
	byCategory := make(map[string][]Annotation)
	for _, a := range anns {
		byCategory[a.Category] = append(byCategory[a.Category], a)
	}

	var written []string

	for _, db := range databases {
		rows := byCategory[db]
		if len(rows) == 0 {
			continue
		}

		path := filepath.Join(dir, TableName(prefix, db))

		if err := writeTable(path, rows); err != nil {
			return written, err
		}

		written = append(written, path)
	}

	return written, nil
}

func writeTable(path string, anns []Annotation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	writeErr := w.Write(tableHeader)

	for _, a := range anns {
		if writeErr != nil {
			break
		}

		writeErr = w.Write([]string{
			a.Term,
			a.Description,
			strconv.Itoa(a.NumberOfGenes),
			strconv.Itoa(a.NumberOfGenesInBackground),
			strconv.FormatFloat(a.FDR, 'g', -1, 64),
			strings.Join(a.PreferredNames, ","),
			strings.Join(a.InputGenes, ","),
		})
	}

	w.Flush()

	if writeErr == nil {
		writeErr = w.Error()
	}

	closeErr := f.Close()

	if writeErr != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), writeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), closeErr)
	}

	return nil
}
