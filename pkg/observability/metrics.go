package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRunsTotal         = "restring.aggregate.runs.total"
	metricDirectoriesTotal  = "restring.aggregate.directories.total"
	metricFilesTotal        = "restring.aggregate.files.total"
	metricTermsTotal        = "restring.aggregate.terms.total"
	metricTablesWritten     = "restring.tables.written.total"
	metricAggregateDuration = "restring.aggregate.duration.seconds"

	attrCategory   = "category"
	attrDirections = "directions"
	attrTableKind  = "kind"
)

// durationBucketBoundaries spans 1ms to 60s; one aggregation reads a few
// hundred small tables at most.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// AggregationMetrics holds the OTel instruments of the aggregation engine.
type AggregationMetrics struct {
	runs          metric.Int64Counter
	directories   metric.Int64Counter
	files         metric.Int64Counter
	terms         metric.Int64Counter
	tablesWritten metric.Int64Counter
	duration      metric.Float64Histogram
}

// AggregationStats is the outcome of one aggregation, independent of the
// aggregate package types.
type AggregationStats struct {
	Category    string
	Directions  string
	Directories int64
	Files       int64
	Terms       int64
	Duration    time.Duration
}

// NewAggregationMetrics creates the instruments from mt.
func NewAggregationMetrics(mt metric.Meter) (*AggregationMetrics, error) {
	counter := func(name, desc, unit string) (metric.Int64Counter, error) {
		c, err := mt.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}

		return c, nil
	}

	runs, err := counter(metricRunsTotal, "Aggregation runs completed", "{run}")
	if err != nil {
		return nil, err
	}

	dirs, err := counter(metricDirectoriesTotal, "Directories scanned", "{directory}")
	if err != nil {
		return nil, err
	}

	files, err := counter(metricFilesTotal, "Enrichment tables parsed", "{file}")
	if err != nil {
		return nil, err
	}

	terms, err := counter(metricTermsTotal, "Distinct terms aggregated", "{term}")
	if err != nil {
		return nil, err
	}

	tables, err := counter(metricTablesWritten, "Output tables written", "{table}")
	if err != nil {
		return nil, err
	}

	dur, err := mt.Float64Histogram(metricAggregateDuration,
		metric.WithDescription("Aggregation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricAggregateDuration, err)
	}

	return &AggregationMetrics{
		runs:          runs,
		directories:   dirs,
		files:         files,
		terms:         terms,
		tablesWritten: tables,
		duration:      dur,
	}, nil
}

// RecordRun records one finished aggregation.
// Safe to call on a nil receiver (no-op).
func (am *AggregationMetrics) RecordRun(ctx context.Context, stats AggregationStats) {
	if am == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrCategory, stats.Category),
		attribute.String(attrDirections, stats.Directions),
	)

	am.runs.Add(ctx, 1, attrs)
	am.directories.Add(ctx, stats.Directories, attrs)
	am.files.Add(ctx, stats.Files, attrs)
	am.terms.Add(ctx, stats.Terms, attrs)
	am.duration.Record(ctx, stats.Duration.Seconds(), attrs)
}

// RecordTableWritten counts one written table of the given kind ("results" or "summary").
// Safe to call on a nil receiver (no-op).
func (am *AggregationMetrics) RecordTableWritten(ctx context.Context, kind string) {
	if am == nil {
		return
	}

	am.tablesWritten.Add(ctx, 1, metric.WithAttributes(attribute.String(attrTableKind, kind)))
}
