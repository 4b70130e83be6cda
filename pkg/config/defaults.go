package config

import "time"

// Analysis defaults.
const (
	DefaultRoot             = "."
	DefaultOutDir           = "."
	DefaultNotFound         = 1.0
	DefaultAggregatedPrefix = "aggregated"
	DefaultSummaryPrefix    = "summary"
	DefaultExtension        = "tsv"
	DefaultCompress         = false
)

// DefaultDirections are the direction sets of a batch: UP, DOWN and UP+DOWN.
var DefaultDirections = []string{"UP", "DOWN", "UP_DOWN"}

// Enrichment defaults.
const (
	DefaultBaseURL          = "https://string-db.org/api"
	DefaultSpecies          = 10090
	DefaultCallerIdentity   = "restring"
	DefaultQueryDelay       = time.Second
	DefaultTimeout          = 60 * time.Second
	DefaultReverseDirection = false
	DefaultOverwrite        = false
)

// DefaultEnrichDirections are the gene lists queried per DE table.
var DefaultEnrichDirections = []string{"UP", "DOWN"}

// Plot defaults.
const (
	DefaultLogBase      = 10.0
	DefaultLogTransform = true
	DefaultScoreCutoff  = 0.0
	DefaultTheme        = "light"
	DefaultMaxTerms     = 50
)

// Logging and telemetry defaults.
const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultOTLPInsecure = false
	DefaultEnvironment  = ""
)
