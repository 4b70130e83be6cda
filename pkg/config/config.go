// Package config loads restring settings from a YAML file, RESTRING_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
	"github.com/Sumatoshi-tech/restring/pkg/observability"
	"github.com/Sumatoshi-tech/restring/pkg/scan"
)

// Sentinel validation errors.
var (
	ErrInvalidSpecies    = errors.New("species taxon id must be positive")
	ErrInvalidQueryDelay = errors.New("query delay must not be negative")
	ErrInvalidTimeout    = errors.New("timeout must be positive")
	ErrInvalidBaseURL    = errors.New("invalid STRING base URL")
	ErrInvalidLogBase    = errors.New("log base must be positive and not 1")
	ErrInvalidLogFormat  = errors.New("log format must be text or json")
	ErrInvalidTheme      = errors.New("theme must be light or dark")
	ErrInvalidExtension  = errors.New("extension must not be empty")
)

var (
	logFormats = []string{"text", "json"}
	themes     = []string{"light", "dark"}
)

// Config holds all restring settings.
type Config struct {
	Analysis   AnalysisConfig   `mapstructure:"analysis"   yaml:"analysis"`
	Dirs       scan.Filter      `mapstructure:"dirs"       yaml:"dirs"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment" yaml:"enrichment"`
	Plot       PlotConfig       `mapstructure:"plot"       yaml:"plot"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"  yaml:"telemetry"`
}

// AnalysisConfig drives aggregation and batch runs.
type AnalysisConfig struct {
	Root string `mapstructure:"root" yaml:"root"`
	// Directions lists direction sets, each written as tags joined by "_", e.g. "UP_DOWN".
	Directions       []string `mapstructure:"directions"        yaml:"directions"`
	Categories       []string `mapstructure:"categories"        yaml:"categories"`
	NotFound         float64  `mapstructure:"not_found"         yaml:"not_found"`
	OutDir           string   `mapstructure:"out_dir"           yaml:"out_dir"`
	AggregatedPrefix string   `mapstructure:"aggregated_prefix" yaml:"aggregated_prefix"`
	SummaryPrefix    string   `mapstructure:"summary_prefix"    yaml:"summary_prefix"`
	Extension        string   `mapstructure:"extension"         yaml:"extension"`
	Compress         bool     `mapstructure:"compress"          yaml:"compress"`
}

// EnrichmentConfig configures STRING queries.
type EnrichmentConfig struct {
	BaseURL          string        `mapstructure:"base_url"          yaml:"base_url"`
	Species          int           `mapstructure:"species"           yaml:"species"`
	CallerIdentity   string        `mapstructure:"caller_identity"   yaml:"caller_identity"`
	QueryDelay       time.Duration `mapstructure:"query_delay"       yaml:"query_delay"`
	Timeout          time.Duration `mapstructure:"timeout"           yaml:"timeout"`
	Directions       []string      `mapstructure:"directions"        yaml:"directions"`
	Databases        []string      `mapstructure:"databases"         yaml:"databases"`
	ReverseDirection bool          `mapstructure:"reverse_direction" yaml:"reverse_direction"`
	Overwrite        bool          `mapstructure:"overwrite"         yaml:"overwrite"`
}

// PlotConfig configures heatmap and bubble rendering.
type PlotConfig struct {
	LogBase      float64 `mapstructure:"log_base"      yaml:"log_base"`
	LogTransform bool    `mapstructure:"log_transform" yaml:"log_transform"`
	ScoreCutoff  float64 `mapstructure:"score_cutoff"  yaml:"score_cutoff"`
	Theme        string  `mapstructure:"theme"         yaml:"theme"`
	MaxTerms     int     `mapstructure:"max_terms"     yaml:"max_terms"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TelemetryConfig configures OTLP export and the Prometheus textfile.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPHeaders  string `mapstructure:"otlp_headers"  yaml:"otlp_headers"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure" yaml:"otlp_insecure"`
	MetricsFile  string `mapstructure:"metrics_file"  yaml:"metrics_file"`
	Environment  string `mapstructure:"environment"   yaml:"environment"`
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.DirectionSets(); err != nil {
		return err
	}

	if _, err := c.Categories(); err != nil {
		return err
	}

	if _, err := c.EnrichDirections(); err != nil {
		return err
	}

	if c.Analysis.Extension == "" {
		return ErrInvalidExtension
	}

	if err := c.Enrichment.validate(); err != nil {
		return err
	}

	if c.Plot.LogBase <= 0 || c.Plot.LogBase == 1 {
		return fmt.Errorf("%w: %g", ErrInvalidLogBase, c.Plot.LogBase)
	}

	if !slices.Contains(themes, c.Plot.Theme) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.Plot.Theme)
	}

	if !slices.Contains(logFormats, c.Logging.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}

func (e EnrichmentConfig) validate() error {
	if e.Species <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSpecies, e.Species)
	}

	if e.QueryDelay < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidQueryDelay, e.QueryDelay)
	}

	if e.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, e.Timeout)
	}

	u, err := url.Parse(e.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, e.BaseURL)
	}

	return nil
}

// DirectionSets parses analysis.directions.
func (c *Config) DirectionSets() ([]enrichment.DirectionSet, error) {
	sets := make([]enrichment.DirectionSet, 0, len(c.Analysis.Directions))

	for _, spec := range c.Analysis.Directions {
		set, err := enrichment.ParseDirectionSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("analysis.directions: %w", err)
		}

		sets = append(sets, set)
	}

	return sets, nil
}

// Categories parses analysis.categories; an empty list means every category.
func (c *Config) Categories() ([]enrichment.Category, error) {
	cs, err := enrichment.ParseCategories(c.Analysis.Categories)
	if err != nil {
		return nil, fmt.Errorf("analysis.categories: %w", err)
	}

	return cs, nil
}

// EnrichDirections parses enrichment.directions into one set.
func (c *Config) EnrichDirections() (enrichment.DirectionSet, error) {
	set, err := enrichment.ParseDirections(c.Enrichment.Directions)
	if err != nil {
		return nil, fmt.Errorf("enrichment.directions: %w", err)
	}

	return set, nil
}

// Observability maps the logging and telemetry sections onto an observability config.
func (c *Config) Observability(version string, mode observability.AppMode) observability.Config {
	oc := observability.DefaultConfig()
	oc.ServiceVersion = version
	oc.Mode = mode
	oc.Environment = c.Telemetry.Environment
	oc.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	oc.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	oc.OTLPInsecure = c.Telemetry.OTLPInsecure
	oc.MetricsFile = c.Telemetry.MetricsFile
	oc.LogLevel = observability.ParseLevel(c.Logging.Level)
	oc.LogJSON = c.Logging.Format == "json"

	return oc
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	return observability.ParseLevel(c.Logging.Level)
}
