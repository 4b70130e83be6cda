package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/restring/pkg/observability"
)

func TestInit_NoopWhenNothingConfigured(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.LogOutput = &bytes.Buffer{}

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	assert.NotNil(t, providers.Metrics)

	ctx, span := providers.Tracer.Start(context.Background(), "noop")
	span.End()
	assert.NotNil(t, ctx)

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_WritesMetricsTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "restring.prom")

	cfg := observability.DefaultConfig()
	cfg.LogOutput = &bytes.Buffer{}
	cfg.MetricsFile = path
	cfg.Mode = observability.ModeBatch

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	providers.Metrics.RecordRun(context.Background(), observability.AggregationStats{
		Category: "KEGG", Directions: "UP", Directories: 2, Files: 2, Terms: 5, Duration: time.Millisecond,
	})
	providers.Metrics.RecordTableWritten(context.Background(), "results")

	require.NoError(t, providers.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "restring_aggregate_terms")
	assert.Contains(t, string(data), `category="KEGG"`)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, observability.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, observability.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, observability.ParseLevel("chatty"))
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("garbage"))
	assert.Equal(t,
		map[string]string{"api-key": "secret", "tenant": "lab"},
		observability.ParseOTLPHeaders("api-key=secret, tenant = lab"),
	)
}

func TestTracingHandler_InjectsTraceContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := observability.NewTracingHandler(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		"restring", "test", observability.ModeCLI,
	)
	logger := slog.New(handler).WithGroup("batch")

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "hello", "category", "KEGG")

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "restring", record["service"])
	assert.Equal(t, "cli", record["mode"])
	assert.Equal(t, "test", record["env"])

	group, ok := record["batch"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "KEGG", group["category"])
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", group["trace_id"])
}

func TestTracingHandler_NoSpan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true
	cfg.LogOutput = &buf

	observability.NewLogger(cfg).Info("plain")

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "trace_id")
	assert.NotContains(t, record, "env")
}

func TestAggregationMetrics_RecordRun(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	am, err := observability.NewAggregationMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	am.RecordRun(ctx, observability.AggregationStats{
		Category: "Process", Directions: "UP_DOWN", Directories: 3, Files: 6, Terms: 42, Duration: 20 * time.Millisecond,
	})

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(ctx, &rm))

	terms := findMetric(rm, "restring.aggregate.terms.total")
	require.NotNil(t, terms)

	sum, ok := terms.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(42), sum.DataPoints[0].Value)

	dur := findMetric(rm, "restring.aggregate.duration.seconds")
	require.NotNil(t, dur)
}

func TestAggregationMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var am *observability.AggregationMetrics

	assert.NotPanics(t, func() {
		am.RecordRun(context.Background(), observability.AggregationStats{})
		am.RecordTableWritten(context.Background(), "summary")
	})
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}

	return nil
}
