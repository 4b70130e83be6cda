package commands

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/restring/pkg/batch"
	"github.com/Sumatoshi-tech/restring/pkg/observability"
	"github.com/Sumatoshi-tech/restring/pkg/stringdb"
)

// Enrich flag names.
const (
	flagSpecies     = "species"
	flagDatabases   = "databases"
	flagReverse     = "reverse"
	flagOverwrite   = "overwrite"
	flagDelay       = "delay"
	flagNoAggregate = "no-aggregate"
	flagCaller      = "caller-identity"
)

// EnrichCommand queries STRING for differential expression tables.
type EnrichCommand struct {
	deps        deps
	species     string
	out         string
	databases   []string
	directions  []string
	reverse     bool
	overwrite   bool
	delay       time.Duration
	caller      string
	noAggregate bool
}

func newEnrichCommand(d deps) *cobra.Command {
	ec := &EnrichCommand{deps: d}

	cmd := &cobra.Command{
		Use:   "enrich <table>...",
		Short: "Query STRING functional enrichment for differential expression tables",
		Long: `Each table holds a gene id column and one log fold change column (.csv, .tsv,
.tdt or .xlsx). Genes are split into UP (logFC > 0), DOWN (logFC < 0) and ALL
lists, each list is sent to STRING and the answer is written as one enrichment
table per category in a folder named after the table. The written tables are
then aggregated per category unless --no-aggregate is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: ec.run,
	}

	cmd.Flags().StringVar(&ec.species, flagSpecies, "",
		"organism name or NCBI taxon id (default: enrichment.species)")
	cmd.Flags().StringVar(&ec.out, flagOut, "", "output folder (default: analysis.out_dir)")
	cmd.Flags().StringSliceVar(&ec.databases, flagDatabases, nil,
		"annotation databases to write: defaults, all or category names (default: enrichment.databases)")
	cmd.Flags().StringSliceVarP(&ec.directions, flagDirections, "d", nil,
		"gene lists to query: UP, DOWN, ALL (default: enrichment.directions)")
	cmd.Flags().BoolVar(&ec.reverse, flagReverse, false, "swap UP and DOWN")
	cmd.Flags().BoolVar(&ec.overwrite, flagOverwrite, false, "reuse existing output folders")
	cmd.Flags().DurationVar(&ec.delay, flagDelay, 0, "wait between queries (default: enrichment.query_delay)")
	cmd.Flags().StringVar(&ec.caller, flagCaller, "", "caller identity sent to STRING (default: enrichment.caller_identity)")
	cmd.Flags().BoolVar(&ec.noAggregate, flagNoAggregate, false, "skip the per-category aggregation")

	return cmd
}

func (ec *EnrichCommand) pipeline(cmd *cobra.Command, s *session) (*stringdb.Pipeline, error) {
	cfg := s.cfg.Enrichment

	if ec.species != "" {
		taxon, err := stringdb.ResolveSpecies(ec.species)
		if err != nil {
			return nil, err
		}

		cfg.Species = taxon
	}

	if len(ec.databases) > 0 {
		cfg.Databases = ec.databases
	}

	if len(ec.directions) > 0 {
		cfg.Directions = ec.directions
	}

	if cmd.Flags().Changed(flagDelay) {
		cfg.QueryDelay = ec.delay
	}

	if ec.caller != "" {
		cfg.CallerIdentity = ec.caller
	}

	s.cfg.Enrichment = cfg

	directions, err := s.cfg.EnrichDirections()
	if err != nil {
		return nil, err
	}

	out := ec.out
	if out == "" {
		out = s.cfg.Analysis.OutDir
	}

	p := &stringdb.Pipeline{
		Client:         ec.deps.newClient(cfg, s.logger),
		Species:        cfg.Species,
		CallerIdentity: cfg.CallerIdentity,
		Directions:     directions,
		Databases:      cfg.Databases,
		Reverse:        ec.reverse || cfg.ReverseDirection,
		Overwrite:      ec.overwrite || cfg.Overwrite,
		Delay:          cfg.QueryDelay,
		OutDir:         out,
		Logger:         s.logger,
		Tracer:         s.tracer,
	}

	if !ec.noAggregate {
		p.Driver = &batch.Driver{
			Aggregator: s.aggregator(),
			Logger:     s.logger,
			Metrics:    s.prov.Metrics,
			Tracer:     s.tracer,
		}
	}

	return p, nil
}

func (ec *EnrichCommand) run(cmd *cobra.Command, args []string) error {
	s, err := startSession(cmd, ec.deps, observability.ModeBatch)
	if err != nil {
		return err
	}
	defer s.close(cmd.Context())

	p, err := ec.pipeline(cmd, s)
	if err != nil {
		return err
	}

	report, err := p.Run(cmd.Context(), args)
	if err != nil {
		return err
	}

	if s.quiet {
		return nil
	}

	w := cmd.OutOrStdout()
	color.New(color.FgGreen).Fprintf(w, "%d queries, %d enrichment tables in %d folders\n",
		report.Queries, len(report.Tables), len(report.Folders))

	for _, path := range report.Skipped {
		color.New(color.FgYellow).Fprintf(w, "skipped empty table %s\n", path)
	}

	if report.Aggregate != nil {
		fmt.Fprintf(w, "aggregated %d categories into %d files\n", report.Aggregate.Tables, len(report.Aggregate.Files))
	}

	return nil
}
