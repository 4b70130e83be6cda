// Package commands implements the restring CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/restring/pkg/config"
	"github.com/Sumatoshi-tech/restring/pkg/observability"
	"github.com/Sumatoshi-tech/restring/pkg/stringdb"
	"github.com/Sumatoshi-tech/restring/pkg/version"
)

// Persistent flag names.
const (
	flagConfig  = "config"
	flagVerbose = "verbose"
	flagQuiet   = "quiet"
	flagNoColor = "no-color"
)

// Output formats of table commands.
const (
	formatTSV    = "tsv"
	formatPretty = "pretty"
	formatYAML   = "yaml"
)

// Sentinel errors.
var (
	// ErrUnknownFormat is returned for an unsupported --format value.
	ErrUnknownFormat = errors.New("unknown output format (valid: tsv, pretty, yaml)")
	// ErrInvalidFlag is returned for an out-of-range flag value.
	ErrInvalidFlag = errors.New("invalid flag value")
)

type observabilityInit func(observability.Config) (observability.Providers, error)

type clientFactory func(cfg config.EnrichmentConfig, logger *slog.Logger) stringdb.Client

// deps are the replaceable collaborators of the command tree.
type deps struct {
	initObs   observabilityInit
	newClient clientFactory
}

func defaultDeps() deps {
	return deps{initObs: observability.Init, newClient: newHTTPClient}
}

func newHTTPClient(cfg config.EnrichmentConfig, logger *slog.Logger) stringdb.Client {
	return stringdb.NewHTTPClient(
		stringdb.WithBaseURL(cfg.BaseURL),
		stringdb.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		stringdb.WithLogger(logger),
	)
}

// NewRootCommand builds the restring command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommandWithDeps(defaultDeps())
}

func newRootCommandWithDeps(d deps) *cobra.Command {
	root := &cobra.Command{
		Use:   "restring",
		Short: "Aggregate STRING functional-enrichment results across experiments",
		Long: `restring collects STRING enrichment tables from one folder per experiment,
aggregates them per category and direction, and writes comparison tables and charts.

Commands:
  dirs       List experiment folders after filtering
  aggregate  Build the term by experiment results table
  summary    Build the per-term summary table
  batch      Write results and summary tables for every combination
  enrich     Query STRING for differential expression tables
  plot       Draw heatmaps and bubble charts`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String(flagConfig, "", "config file (default: .restring.yaml in the working directory)")
	root.PersistentFlags().BoolP(flagVerbose, "v", false, "verbose output")
	root.PersistentFlags().BoolP(flagQuiet, "q", false, "suppress output")
	root.PersistentFlags().Bool(flagNoColor, false, "disable colored output")

	root.AddCommand(
		newDirsCommand(d),
		newAggregateCommand(d),
		newSummaryCommand(d),
		newBatchCommand(d),
		newEnrichCommand(d),
		newPlotCommand(d),
		newConfigCommand(),
		newVersionCommand(),
	)

	return root
}

// session is the loaded configuration and telemetry of one command run.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	tracer trace.Tracer
	prov   observability.Providers
	quiet  bool
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("read --%s: %w", flagConfig, err)
	}

	return config.LoadConfig(path)
}

func startSession(cmd *cobra.Command, d deps, mode observability.AppMode) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool(flagVerbose) //nolint:errcheck // Persistent flag always registered.
	quiet, _ := cmd.Flags().GetBool(flagQuiet)     //nolint:errcheck // Persistent flag always registered.

	if noColor, _ := cmd.Flags().GetBool(flagNoColor); noColor { //nolint:errcheck // Persistent flag always registered.
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	oc := cfg.Observability(version.Version, mode)
	oc.LogOutput = cmd.ErrOrStderr()

	switch {
	case quiet:
		oc.LogLevel = slog.LevelError
	case verbose:
		oc.LogLevel = slog.LevelDebug
	}

	prov, err := d.initObs(oc)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	logger := prov.Logger
	if logger == nil {
		logger = observability.NewLogger(oc)
	}

	return &session{cfg: cfg, logger: logger, tracer: prov.Tracer, prov: prov, quiet: quiet}, nil
}

func (s *session) close(ctx context.Context) {
	if s.prov.Shutdown == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := s.prov.Shutdown(ctx); err != nil {
		s.logger.WarnContext(ctx, "observability shutdown failed", "error", err)
	}
}

const shutdownTimeout = 5 * time.Second

// writeOutput renders into path, or into the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, render func(io.Writer) error) (err error) {
	if path == "" {
		return render(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return render(f)
}

func validateFormat(format string) error {
	switch format {
	case formatTSV, formatPretty, formatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "restring %s\n", version.String())
		},
	}
}
