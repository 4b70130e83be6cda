package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".restring"
	configType      = "yaml"
	envPrefix       = "RESTRING"
	envKeySeparator = "_"
)

// LoadConfig loads configuration from file, env vars and defaults.
// A non-empty configPath names the file explicitly; otherwise ".restring.yaml"
// is searched in the working directory and $HOME. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	readErr := v.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := v.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("analysis.root", DefaultRoot)
	v.SetDefault("analysis.directions", DefaultDirections)
	v.SetDefault("analysis.categories", []string{})
	v.SetDefault("analysis.not_found", DefaultNotFound)
	v.SetDefault("analysis.out_dir", DefaultOutDir)
	v.SetDefault("analysis.aggregated_prefix", DefaultAggregatedPrefix)
	v.SetDefault("analysis.summary_prefix", DefaultSummaryPrefix)
	v.SetDefault("analysis.extension", DefaultExtension)
	v.SetDefault("analysis.compress", DefaultCompress)

	v.SetDefault("dirs.starts_with", []string{})
	v.SetDefault("dirs.ends_with", []string{})
	v.SetDefault("dirs.contains", []string{})
	v.SetDefault("dirs.exclude", []string{})

	v.SetDefault("enrichment.base_url", DefaultBaseURL)
	v.SetDefault("enrichment.species", DefaultSpecies)
	v.SetDefault("enrichment.caller_identity", DefaultCallerIdentity)
	v.SetDefault("enrichment.query_delay", DefaultQueryDelay)
	v.SetDefault("enrichment.timeout", DefaultTimeout)
	v.SetDefault("enrichment.directions", DefaultEnrichDirections)
	v.SetDefault("enrichment.databases", []string{})
	v.SetDefault("enrichment.reverse_direction", DefaultReverseDirection)
	v.SetDefault("enrichment.overwrite", DefaultOverwrite)

	v.SetDefault("plot.log_base", DefaultLogBase)
	v.SetDefault("plot.log_transform", DefaultLogTransform)
	v.SetDefault("plot.score_cutoff", DefaultScoreCutoff)
	v.SetDefault("plot.theme", DefaultTheme)
	v.SetDefault("plot.max_terms", DefaultMaxTerms)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_headers", "")
	v.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
	v.SetDefault("telemetry.metrics_file", "")
	v.SetDefault("telemetry.environment", DefaultEnvironment)
}
