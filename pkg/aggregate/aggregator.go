package aggregate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
)

const tracerName = "restring"

// Request selects what one aggregation reads.
type Request struct {
	// Root is joined with every directory name. Empty means the working directory.
	Root        string
	Directories []string
	Category    enrichment.Category
	Directions  enrichment.DirectionSet
}

// Aggregator reads enrichment tables and builds a Result.
// The zero value is ready to use.
type Aggregator struct {
	// Observer receives progress events. When nil, events are dropped.
	Observer Observer

	// Tracer creates the aggregation span.
	// When nil, falls back to otel.Tracer("restring").
	Tracer trace.Tracer
}

// New returns an Aggregator reporting to the given observers.
func New(observers ...Observer) *Aggregator {
	var obs Observer = NopObserver{}

	switch len(observers) {
	case 0:
	case 1:
		obs = observers[0]
	default:
		obs = Observers(observers)
	}

	return &Aggregator{Observer: obs}
}

func (a *Aggregator) observer() Observer {
	if a.Observer != nil {
		return a.Observer
	}

	return NopObserver{}
}

func (a *Aggregator) tracer() trace.Tracer {
	if a.Tracer != nil {
		return a.Tracer
	}

	return otel.Tracer(tracerName)
}

// Aggregate runs one aggregation. The category and directions are validated
// before any file is touched. A missing directory or a malformed row aborts
// the run; no partial result is returned. A run that finds nothing returns an
// empty Result and no error.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (*Result, error) {
	if _, err := enrichment.ColumnsFor(req.Category); err != nil {
		return nil, err
	}

	set, err := enrichment.ParseDirections(req.Directions)
	if err != nil {
		return nil, err
	}

	ctx, span := a.tracer().Start(ctx, "restring.aggregate",
		trace.WithAttributes(
			attribute.String("aggregate.category", string(req.Category)),
			attribute.String("aggregate.directions", set.String()),
			attribute.Int("aggregate.directories", len(req.Directories)),
		))
	defer span.End()

	res, err := a.run(ctx, req, set)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int("aggregate.terms", res.Len()))

	return res, nil
}

func (a *Aggregator) run(ctx context.Context, req Request, set enrichment.DirectionSet) (*Result, error) {
	obs := a.observer()
	start := time.Now()
	builder := NewBuilder(req.Category, set)
	stats := RunStats{Category: req.Category, Directions: set, Directories: len(req.Directories)}

	for i, dir := range req.Directories {
		obs.DirectoryStarted(ctx, dir, i, len(req.Directories))

		path := filepath.Join(req.Root, dir)

		info, statErr := os.Stat(path)
		if statErr != nil {
			return nil, fmt.Errorf("directory %q: %w", dir, statErr)
		}

		if !info.IsDir() {
			return nil, fmt.Errorf("directory %q: %w", dir, errNotDirectory)
		}

		files, findErr := enrichment.FindFiles(path, req.Category, set)
		if findErr != nil {
			return nil, fmt.Errorf("directory %q: %w", dir, findErr)
		}

		for _, file := range files {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("aggregate: %w", ctxErr)
			}

			rows, readErr := enrichment.ReadFile(file, req.Category)
			if readErr != nil {
				return nil, fmt.Errorf("directory %q: %w", dir, readErr)
			}

			if addErr := builder.Add(dir, rows...); addErr != nil {
				return nil, addErr
			}

			stats.Files++
			stats.Rows += len(rows)

			obs.FileProcessed(ctx, dir, filepath.Base(file), len(rows))
		}
	}

	res := builder.Finalize()

	stats.Terms = res.Len()
	stats.Duration = time.Since(start)
	obs.RunFinished(ctx, stats)

	return res, nil
}

// Aggregate runs one aggregation with a zero-value Aggregator.
func Aggregate(ctx context.Context, req Request) (*Result, error) {
	return (&Aggregator{}).Aggregate(ctx, req)
}
