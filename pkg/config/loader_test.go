package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/restring/pkg/config"
	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
	"github.com/Sumatoshi-tech/restring/pkg/observability"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".restring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultRoot, cfg.Analysis.Root)
	assert.Equal(t, config.DefaultDirections, cfg.Analysis.Directions)
	assert.Empty(t, cfg.Analysis.Categories)
	assert.InDelta(t, config.DefaultNotFound, cfg.Analysis.NotFound, 0)
	assert.Equal(t, config.DefaultExtension, cfg.Analysis.Extension)
	assert.Equal(t, config.DefaultBaseURL, cfg.Enrichment.BaseURL)
	assert.Equal(t, config.DefaultSpecies, cfg.Enrichment.Species)
	assert.Equal(t, config.DefaultQueryDelay, cfg.Enrichment.QueryDelay)
	assert.Equal(t, config.DefaultTheme, cfg.Plot.Theme)
	assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format)

	sets, err := cfg.DirectionSets()
	require.NoError(t, err)
	assert.Equal(t, enrichment.DefaultDirectionSets(), sets)

	cats, err := cfg.Categories()
	require.NoError(t, err)
	assert.Equal(t, enrichment.Categories(), cats)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `analysis:
  root: /data/experiments
  directions: [UP_DOWN, ALL]
  categories: [KEGG, Process]
  not_found: 0.5
  compress: true
dirs:
  starts_with: [res_]
  exclude: [old]
enrichment:
  species: 9606
  query_delay: 250ms
  reverse_direction: true
plot:
  theme: dark
  log_base: 2
logging:
  level: debug
  format: json
telemetry:
  metrics_file: /tmp/restring.prom
  otlp_headers: "api-key=abc"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/experiments", cfg.Analysis.Root)
	assert.True(t, cfg.Analysis.Compress)
	assert.InDelta(t, 0.5, cfg.Analysis.NotFound, 0)
	assert.Equal(t, []string{"res_"}, cfg.Dirs.StartsWith)
	assert.Equal(t, []string{"old"}, cfg.Dirs.Exclude)
	assert.Equal(t, 9606, cfg.Enrichment.Species)
	assert.Equal(t, 250*time.Millisecond, cfg.Enrichment.QueryDelay)
	assert.True(t, cfg.Enrichment.ReverseDirection)

	sets, err := cfg.DirectionSets()
	require.NoError(t, err)
	assert.Equal(t, []enrichment.DirectionSet{{enrichment.Up, enrichment.Down}, {enrichment.All}}, sets)

	cats, err := cfg.Categories()
	require.NoError(t, err)
	assert.Equal(t, []enrichment.Category{enrichment.KEGG, enrichment.Process}, cats)

	oc := cfg.Observability("1.0.0", observability.ModeBatch)
	assert.Equal(t, slog.LevelDebug, oc.LogLevel)
	assert.True(t, oc.LogJSON)
	assert.Equal(t, "/tmp/restring.prom", oc.MetricsFile)
	assert.Equal(t, map[string]string{"api-key": "abc"}, oc.OTLPHeaders)
	assert.Equal(t, observability.ModeBatch, oc.Mode)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "bad_direction", content: "analysis:\n  directions: [UP_SIDEWAYS]\n", want: enrichment.ErrInvalidDirection},
		{name: "bad_category", content: "analysis:\n  categories: [Pathways]\n", want: enrichment.ErrInvalidCategory},
		{name: "bad_species", content: "enrichment:\n  species: 0\n", want: config.ErrInvalidSpecies},
		{name: "negative_delay", content: "enrichment:\n  query_delay: -1s\n", want: config.ErrInvalidQueryDelay},
		{name: "bad_url", content: "enrichment:\n  base_url: not a url\n", want: config.ErrInvalidBaseURL},
		{name: "bad_log_base", content: "plot:\n  log_base: 1\n", want: config.ErrInvalidLogBase},
		{name: "bad_theme", content: "plot:\n  theme: neon\n", want: config.ErrInvalidTheme},
		{name: "bad_format", content: "logging:\n  format: xml\n", want: config.ErrInvalidLogFormat},
		{name: "empty_extension", content: "analysis:\n  extension: \"\"\n", want: config.ErrInvalidExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "analysis: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("RESTRING_ENRICHMENT_SPECIES", "7955")
	t.Setenv("RESTRING_PLOT_THEME", "dark")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 7955, cfg.Enrichment.Species)
	assert.Equal(t, "dark", cfg.Plot.Theme)
}

func TestConfig_WriteYAML(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, cfg.WriteYAML(&buf))
	assert.Contains(t, buf.String(), "species: 10090")
	assert.Contains(t, buf.String(), "aggregated_prefix: aggregated")

	again, err := config.LoadConfig(writeConfig(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, cfg.Analysis, again.Analysis)
}
