// Package batch runs the aggregation over every direction set and category
// and writes the resulting tables.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/restring/pkg/aggregate"
	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
	"github.com/Sumatoshi-tech/restring/pkg/observability"
	"github.com/Sumatoshi-tech/restring/pkg/tabular"
)

// Defaults applied to empty Job fields.
const (
	DefaultAggregatedPrefix = "aggregated"
	DefaultSummaryPrefix    = "summary"
	DefaultExtension        = "tsv"

	tracerName = "restring"

	kindResults = "results"
	kindSummary = "summary"
)

// ErrPerCategoryDirections is returned when PerCategory mode gets more than one direction set.
var ErrPerCategoryDirections = errors.New("per-category mode takes exactly one direction set")

// Job describes one batch run.
type Job struct {
	Root        string
	Directories []string

	// DirectionSets defaults to UP, DOWN and UP+DOWN.
	DirectionSets []enrichment.DirectionSet
	// Categories defaults to every supported category.
	Categories []enrichment.Category

	OutDir           string
	AggregatedPrefix string
	SummaryPrefix    string
	// Extension of written files, without the dot.
	Extension string
	Compress  bool
	NotFound  *float64

	// PerCategory writes "<category>_results.tsv" and "<category>_summary.tsv"
	// for a single direction set instead of the prefixed names.
	PerCategory bool
}

// Combination is one (direction set, category) pair of a batch.
type Combination struct {
	Directions enrichment.DirectionSet
	Category   enrichment.Category
}

func (c Combination) String() string {
	return c.Directions.String() + "_" + string(c.Category)
}

// Report is the tally of a finished batch.
type Report struct {
	Files   []string
	Tables  int
	Skipped []Combination
	Bytes   int64
}

// Driver runs batches. The zero value is usable.
type Driver struct {
	// Aggregator is used for every combination. Nil uses a zero-value Aggregator.
	Aggregator *aggregate.Aggregator
	Logger     *slog.Logger
	Metrics    *observability.AggregationMetrics

	// Tracer creates the per-combination spans.
	// When nil, falls back to otel.Tracer("restring").
	Tracer trace.Tracer
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}

	return slog.Default()
}

func (d *Driver) tracer() trace.Tracer {
	if d.Tracer != nil {
		return d.Tracer
	}

	return otel.Tracer(tracerName)
}

func (d *Driver) aggregator() *aggregate.Aggregator {
	if d.Aggregator != nil {
		return d.Aggregator
	}

	return &aggregate.Aggregator{}
}

// Plan returns the combinations Run will visit, in order.
func Plan(job Job) []Combination {
	job = withDefaults(job)

	plan := make([]Combination, 0, len(job.DirectionSets)*len(job.Categories))

	for _, set := range job.DirectionSets {
		for _, c := range job.Categories {
			plan = append(plan, Combination{Directions: set, Category: c})
		}
	}

	return plan
}

func withDefaults(job Job) Job {
	if len(job.DirectionSets) == 0 {
		job.DirectionSets = enrichment.DefaultDirectionSets()
	}

	if len(job.Categories) == 0 {
		job.Categories = enrichment.Categories()
	}

	if job.AggregatedPrefix == "" {
		job.AggregatedPrefix = DefaultAggregatedPrefix
	}

	if job.SummaryPrefix == "" {
		job.SummaryPrefix = DefaultSummaryPrefix
	}

	job.Extension = strings.TrimPrefix(job.Extension, ".")
	if job.Extension == "" {
		job.Extension = DefaultExtension
	}

	return job
}

// FileNames returns the results and summary file names of one combination.
func FileNames(job Job, c Combination) (results, summary string) {
	job = withDefaults(job)

	if job.PerCategory {
		results = fmt.Sprintf("%s_%s.%s", c.Category, kindResults, job.Extension)
		summary = fmt.Sprintf("%s_%s.%s", c.Category, kindSummary, job.Extension)
	} else {
		results = fmt.Sprintf("%s_%s.%s", job.AggregatedPrefix, c, job.Extension)
		summary = fmt.Sprintf("%s_%s.%s", job.SummaryPrefix, c, job.Extension)
	}

	if job.Compress {
		results += gzipSuffix
		summary += gzipSuffix
	}

	return results, summary
}

// Run aggregates every combination and writes two tables per non-empty one.
// Empty combinations are skipped. The first aggregation or write error aborts the batch.
func (d *Driver) Run(ctx context.Context, job Job) (*Report, error) {
	job = withDefaults(job)

	if job.PerCategory && len(job.DirectionSets) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrPerCategoryDirections, len(job.DirectionSets))
	}

	for _, set := range job.DirectionSets {
		if _, err := enrichment.ParseDirections(set); err != nil {
			return nil, err
		}
	}

	for _, c := range job.Categories {
		if _, err := enrichment.ColumnsFor(c); err != nil {
			return nil, err
		}
	}

	if job.OutDir != "" {
		if err := os.MkdirAll(job.OutDir, 0o750); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	logger := d.logger()
	plan := Plan(job)
	report := &Report{}

	logger.InfoContext(ctx, "batch: start",
		"directories", len(job.Directories),
		"combinations", len(plan),
		"out", job.OutDir,
	)

	for _, c := range plan {
		if err := d.runOne(ctx, job, c, report); err != nil {
			return report, fmt.Errorf("batch %s: %w", c, err)
		}
	}

	logger.InfoContext(ctx, "batch: finished",
		"tables", report.Tables,
		"files", len(report.Files),
		"skipped", len(report.Skipped),
		"bytes", report.Bytes,
	)

	return report, nil
}

func (d *Driver) runOne(ctx context.Context, job Job, c Combination, report *Report) error {
	ctx, span := d.tracer().Start(ctx, "restring.batch.combination",
		trace.WithAttributes(
			attribute.String("batch.directions", c.Directions.String()),
			attribute.String("batch.category", string(c.Category)),
		))
	defer span.End()

	res, err := d.aggregator().Aggregate(ctx, aggregate.Request{
		Root:        job.Root,
		Directories: job.Directories,
		Category:    c.Category,
		Directions:  c.Directions,
	})
	if err != nil {
		span.RecordError(err)

		return err
	}

	if res.Empty() {
		d.logger().InfoContext(ctx, "batch: no terms, skipping", "combination", c.String())
		report.Skipped = append(report.Skipped, c)
		span.SetAttributes(attribute.Bool("batch.skipped", true))

		return nil
	}

	var wideOpts []tabular.WideOption
	if job.NotFound != nil {
		wideOpts = append(wideOpts, tabular.WithNotFound(*job.NotFound))
	}

	resultsName, summaryName := FileNames(job, c)

	wide := tabular.Wide(res, wideOpts...)
	if err := d.write(ctx, job, resultsName, kindResults, wide.WriteTSV, report); err != nil {
		return err
	}

	summary := tabular.Summary(res)
	if err := d.write(ctx, job, summaryName, kindSummary, summary.WriteTSV, report); err != nil {
		return err
	}

	report.Tables++

	return nil
}

func (d *Driver) write(
	ctx context.Context, job Job, name, kind string, render func(io.Writer) error, report *Report,
) error {
	path := filepath.Join(job.OutDir, name)

	n, err := writeFile(path, job.Compress, render)
	if err != nil {
		return err
	}

	report.Files = append(report.Files, path)
	report.Bytes += n

	d.Metrics.RecordTableWritten(ctx, kind)
	d.logger().DebugContext(ctx, "batch: table written", "path", path, "kind", kind, "bytes", n)

	return nil
}
