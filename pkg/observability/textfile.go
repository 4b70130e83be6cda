package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Textfile collects OTel metrics into a private Prometheus registry and dumps
// them in text exposition format. Batch runs have no scrape window, so the
// node-exporter textfile collector picks the file up instead.
type Textfile struct {
	path     string
	registry *prometheus.Registry
	exporter *promexporter.Exporter
}

// NewTextfile creates the registry and the exporter reader for path.
func NewTextfile(path string) (*Textfile, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &Textfile{path: path, registry: registry, exporter: exporter}, nil
}

// Reader returns the metric reader to attach to a MeterProvider.
func (tf *Textfile) Reader() sdkmetric.Reader {
	return tf.exporter
}

// Registry exposes the underlying gatherer.
func (tf *Textfile) Registry() *prometheus.Registry {
	return tf.registry
}

// Write atomically replaces the textfile with the current metric values.
func (tf *Textfile) Write() error {
	if err := prometheus.WriteToTextfile(tf.path, tf.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
