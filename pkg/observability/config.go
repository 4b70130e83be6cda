// Package observability wires structured logging, OpenTelemetry tracing and
// metrics for every restring command.
package observability

import (
	"io"
	"log/slog"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a single interactive command.
	ModeCLI AppMode = "cli"
	// ModeBatch is an unattended batch or pipeline run.
	ModeBatch AppMode = "batch"
)

const (
	defaultServiceName        = "restring"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables OTLP export.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// SampleRatio is the trace sampling ratio; zero samples everything.
	SampleRatio float64

	LogLevel slog.Level
	LogJSON  bool
	// LogOutput receives log records. Nil means stderr.
	LogOutput io.Writer

	// MetricsFile, when set, receives a Prometheus text exposition of every
	// metric at shutdown, suitable for the node-exporter textfile collector.
	MetricsFile string

	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	var lvl slog.Level

	err := lvl.UnmarshalText([]byte(name))
	if err != nil {
		return slog.LevelInfo
	}

	return lvl
}
