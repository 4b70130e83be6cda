package stringdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/restring/pkg/batch"
	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
)

const tracerName = "restring"

// Pipeline turns DE tables into per-direction enrichment tables and optionally
// aggregates them per category.
type Pipeline struct {
	Client         Client
	Species        int
	CallerIdentity string
	// Directions selects the gene lists queried per table. Defaults to UP and DOWN.
	Directions enrichment.DirectionSet
	// Databases are resolved with ResolveDatabases. Empty means the aggregatable categories.
	Databases []string
	Reverse   bool
	Overwrite bool
	// Delay is waited between two consecutive queries.
	Delay  time.Duration
	OutDir string

	// Driver, when set, aggregates the written tables per category after all queries.
	Driver *batch.Driver
	Logger *slog.Logger
	// When nil, falls back to otel.Tracer("restring").
	Tracer trace.Tracer
}

// Report tallies a pipeline run.
type Report struct {
	Folders   []string
	Tables    []string
	Queries   int
	Skipped   []string
	Aggregate *batch.Report
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}

	return slog.Default()
}

func (p *Pipeline) tracer() trace.Tracer {
	if p.Tracer != nil {
		return p.Tracer
	}

	return otel.Tracer(tracerName)
}

// Run processes every DE table path in order. Each table gets its own folder
// under OutDir named after the file without extension.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Report, error) {
	if p.Client == nil {
		return nil, ErrNoClient
	}

	directions := p.Directions
	if len(directions) == 0 {
		directions = enrichment.DirectionSet{enrichment.Up, enrichment.Down}
	}

	directions, err := enrichment.ParseDirections(directions)
	if err != nil {
		return nil, err
	}

	databases, err := ResolveDatabases(p.Databases)
	if err != nil {
		return nil, err
	}

	ctx, span := p.tracer().Start(ctx, "restring.enrich",
		trace.WithAttributes(
			attribute.Int("enrich.tables", len(paths)),
			attribute.String("enrich.directions", directions.String()),
		))
	defer span.End()

	report := &Report{}
	r := &run{p: p, directions: directions, databases: databases, report: report}

	for _, path := range paths {
		if err := r.table(ctx, path); err != nil {
			span.RecordError(err)

			return report, err
		}
	}

	categories := aggregatable(databases)

	if p.Driver != nil && len(report.Folders) > 0 && len(categories) > 0 {
		aggReport, err := p.Driver.Run(ctx, batch.Job{
			Root:          p.OutDir,
			Directories:   report.Folders,
			DirectionSets: []enrichment.DirectionSet{directions},
			Categories:    categories,
			OutDir:        p.OutDir,
			PerCategory:   true,
		})
		report.Aggregate = aggReport

		if err != nil {
			span.RecordError(err)

			return report, err
		}
	}

	return report, nil
}

type run struct {
	p          *Pipeline
	directions enrichment.DirectionSet
	databases  []string
	report     *Report
	lastQuery  time.Time
}

func (r *run) table(ctx context.Context, path string) error {
	logger := r.p.logger()

	de, err := LoadDETable(path)
	if err != nil {
		return err
	}

	if de.Empty() {
		logger.WarnContext(ctx, "enrich: table is empty, skipping", "file", filepath.Base(path))
		r.report.Skipped = append(r.report.Skipped, path)

		return nil
	}

	folder := filepath.Join(r.p.OutDir, de.Name)

	if err := prepareFolder(folder, r.p.Overwrite); err != nil {
		return err
	}

	r.report.Folders = append(r.report.Folders, de.Name)

	for _, d := range r.directions {
		ids := de.Split(d, r.p.Reverse)
		if len(ids) == 0 {
			logger.WarnContext(ctx, "enrich: no genes for direction, skipping",
				"table", de.Name, "direction", d.String())

			continue
		}

		if err := r.wait(ctx); err != nil {
			return err
		}

		anns, err := r.p.Client.Enrich(ctx, Query{
			Identifiers:    ids,
			Species:        r.p.Species,
			CallerIdentity: r.p.CallerIdentity,
		})
		r.lastQuery = time.Now()
		r.report.Queries++

		if err != nil {
			return fmt.Errorf("enrich %s %s: %w", de.Name, d, err)
		}

		written, err := WriteTables(folder, d.FilePrefix(), anns, r.databases)
		r.report.Tables = append(r.report.Tables, written...)

		if err != nil {
			return err
		}

		logger.InfoContext(ctx, "enrich: tables written",
			"table", de.Name, "direction", d.String(), "genes", len(ids), "terms", len(anns), "files", len(written))
	}

	return nil
}

func (r *run) wait(ctx context.Context) error {
	if r.lastQuery.IsZero() || r.p.Delay <= 0 {
		return ctx.Err()
	}

	remaining := r.p.Delay - time.Since(r.lastQuery)
	if remaining <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func prepareFolder(folder string, overwrite bool) error {
	_, err := os.Stat(folder)

	switch {
	case err == nil && !overwrite:
		return fmt.Errorf("%w: %s", ErrOutputExists, folder)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("stat %s: %w", folder, err)
	}

	if err := os.MkdirAll(folder, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", folder, err)
	}

	return nil
}

func aggregatable(databases []string) []enrichment.Category {
	var out []enrichment.Category

	for _, db := range databases {
		c := enrichment.Category(db)
		if c.Valid() {
			out = append(out, c)
		}
	}

	return out
}
