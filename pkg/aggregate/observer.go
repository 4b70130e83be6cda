package aggregate

import (
	"context"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
	"github.com/Sumatoshi-tech/restring/pkg/observability"
)

// RunStats describes one finished aggregation.
type RunStats struct {
	Category    enrichment.Category
	Directions  enrichment.DirectionSet
	Directories int
	Files       int
	Rows        int
	Terms       int
	Duration    time.Duration
}

// Observer receives progress events. Implementations must not block.
type Observer interface {
	DirectoryStarted(ctx context.Context, dir string, index, total int)
	FileProcessed(ctx context.Context, dir, file string, rows int)
	RunFinished(ctx context.Context, stats RunStats)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) DirectoryStarted(context.Context, string, int, int) {}
func (NopObserver) FileProcessed(context.Context, string, string, int) {}
func (NopObserver) RunFinished(context.Context, RunStats)              {}

// LogObserver reports progress through slog.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return slog.Default()
}

// DirectoryStarted logs the directory being read.
func (o LogObserver) DirectoryStarted(ctx context.Context, dir string, index, total int) {
	o.logger().DebugContext(ctx, "aggregate: reading directory",
		"dir", dir, "index", index+1, "total", total)
}

// FileProcessed logs one parsed table.
func (o LogObserver) FileProcessed(ctx context.Context, dir, file string, rows int) {
	o.logger().DebugContext(ctx, "aggregate: table parsed", "dir", dir, "file", file, "rows", rows)
}

// RunFinished logs the run totals.
func (o LogObserver) RunFinished(ctx context.Context, stats RunStats) {
	o.logger().InfoContext(ctx, "aggregate: done",
		"category", stats.Category,
		"directions", stats.Directions.String(),
		"directories", stats.Directories,
		"files", stats.Files,
		"terms", stats.Terms,
		"duration", stats.Duration,
	)
}

// MetricsObserver records run totals on OTel instruments.
type MetricsObserver struct {
	Metrics *observability.AggregationMetrics
}

func (MetricsObserver) DirectoryStarted(context.Context, string, int, int) {}
func (MetricsObserver) FileProcessed(context.Context, string, string, int) {}

// RunFinished records the run. A nil Metrics is a no-op.
func (o MetricsObserver) RunFinished(ctx context.Context, stats RunStats) {
	o.Metrics.RecordRun(ctx, observability.AggregationStats{
		Category:    string(stats.Category),
		Directions:  stats.Directions.String(),
		Directories: int64(stats.Directories),
		Files:       int64(stats.Files),
		Terms:       int64(stats.Terms),
		Duration:    stats.Duration,
	})
}

// Observers fans events out to every observer in order.
type Observers []Observer

func (obs Observers) DirectoryStarted(ctx context.Context, dir string, index, total int) {
	for _, o := range obs {
		o.DirectoryStarted(ctx, dir, index, total)
	}
}

func (obs Observers) FileProcessed(ctx context.Context, dir, file string, rows int) {
	for _, o := range obs {
		o.FileProcessed(ctx, dir, file, rows)
	}
}

func (obs Observers) RunFinished(ctx context.Context, stats RunStats) {
	for _, o := range obs {
		o.RunFinished(ctx, stats)
	}
}
