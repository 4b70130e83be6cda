package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/restring/pkg/aggregate"
	"github.com/Sumatoshi-tech/restring/pkg/enrichment"
	"github.com/Sumatoshi-tech/restring/pkg/observability"
	"github.com/Sumatoshi-tech/restring/pkg/tabular"
)

// Selection flag names.
const (
	flagRoot       = "root"
	flagDirs       = "dirs"
	flagCategory   = "category"
	flagDirections = "directions"
	flagFormat     = "format"
	flagOutput     = "output"
	flagNotFound   = "not-found"
	flagTerms      = "terms"
	flagTop        = "top"
	flagMaxRows    = "max-rows"
)

const defaultMaxRows = 40

// selection picks the directories, category and directions of one aggregation.
type selection struct {
	root       string
	dirs       []string
	category   string
	directions string
}

func (sel *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sel.root, flagRoot, "", "folder holding one sub-folder per experiment (default: analysis.root)")
	cmd.Flags().StringSliceVar(&sel.dirs, flagDirs, nil, "experiment folders to read instead of scanning the root")
	cmd.Flags().StringVarP(&sel.category, flagCategory, "c", string(enrichment.KEGG),
		"enrichment category: Component, Function, KEGG, Process, RCTM")
	cmd.Flags().StringVarP(&sel.directions, flagDirections, "d", string(enrichment.Up),
		"direction set, tags joined by '_' (example: UP_DOWN)")
}

func (sel *selection) request(s *session) (aggregate.Request, error) {
	category, err := enrichment.ParseCategory(sel.category)
	if err != nil {
		return aggregate.Request{}, err
	}

	directions, err := enrichment.ParseDirectionSpec(sel.directions)
	if err != nil {
		return aggregate.Request{}, err
	}

	root, dirs, err := resolveDirectories(s, sel.root, sel.dirs)
	if err != nil {
		return aggregate.Request{}, err
	}

	return aggregate.Request{Root: root, Directories: dirs, Category: category, Directions: directions}, nil
}

// resolveDirectories returns the explicit folders, or the filtered sub-folders of root.
func resolveDirectories(s *session, root string, explicit []string) (string, []string, error) {
	if root == "" {
		root = s.cfg.Analysis.Root
	}

	if len(explicit) > 0 {
		return root, explicit, nil
	}

	dirs, err := s.cfg.Dirs.Scan(root)
	if err != nil {
		return "", nil, err
	}

	return root, dirs, nil
}

func (s *session) aggregator() *aggregate.Aggregator {
	agg := aggregate.New(
		aggregate.LogObserver{Logger: s.logger},
		aggregate.MetricsObserver{Metrics: s.prov.Metrics},
	)
	agg.Tracer = s.tracer

	return agg
}

func (s *session) aggregate(ctx context.Context, req aggregate.Request) (*aggregate.Result, error) {
	s.logger.DebugContext(ctx, "aggregate: directories", "root", req.Root, "count", len(req.Directories))

	return s.aggregator().Aggregate(ctx, req)
}

// AggregateCommand prints the term by experiment results table.
type AggregateCommand struct {
	deps     deps
	sel      selection
	format   string
	output   string
	notFound float64
	terms    []string
	maxRows  int
}

func newAggregateCommand(d deps) *cobra.Command {
	ac := &AggregateCommand{deps: d}

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Build the results table of one category and direction set",
		Long: `Read the enrichment tables of every experiment folder and print one row per term
with its score in each experiment. Terms missing from an experiment get --not-found.`,
		Args: cobra.NoArgs,
		RunE: ac.run,
	}

	ac.sel.register(cmd)
	cmd.Flags().StringVarP(&ac.format, flagFormat, "f", formatTSV, "output format: tsv, pretty, yaml")
	cmd.Flags().StringVarP(&ac.output, flagOutput, "o", "", "write to this file instead of stdout")
	cmd.Flags().Float64Var(&ac.notFound, flagNotFound, tabular.DefaultNotFound, "score of terms absent from an experiment")
	cmd.Flags().StringSliceVar(&ac.terms, flagTerms, nil, "only keep these terms")
	cmd.Flags().IntVar(&ac.maxRows, flagMaxRows, defaultMaxRows, "rows shown by the pretty format (0 = all)")

	return cmd
}

func (ac *AggregateCommand) run(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(ac.format); err != nil {
		return err
	}

	s, err := startSession(cmd, ac.deps, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer s.close(cmd.Context())

	req, err := ac.sel.request(s)
	if err != nil {
		return err
	}

	res, err := s.aggregate(cmd.Context(), req)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed(flagNotFound) {
		ac.notFound = s.cfg.Analysis.NotFound
	}

	opts := []tabular.WideOption{tabular.WithNotFound(ac.notFound)}
	if len(ac.terms) > 0 {
		opts = append(opts, tabular.WithTerms(ac.terms...))
	}

	wide := tabular.Wide(res, opts...)

	if wide.Empty() {
		s.logger.WarnContext(cmd.Context(), "aggregate: no terms found",
			"category", req.Category.String(), "directions", req.Directions.String())
	}

	return writeOutput(cmd, ac.output, func(w io.Writer) error {
		switch ac.format {
		case formatPretty:
			wide.RenderPretty(w, ac.maxRows)

			return nil
		case formatYAML:
			return wide.WriteYAML(w)
		default:
			return wide.WriteTSV(w)
		}
	})
}

// SummaryCommand prints the per-term summary table.
type SummaryCommand struct {
	deps    deps
	sel     selection
	format  string
	output  string
	top     int
	byTerm  bool
	maxRows int
}

func newSummaryCommand(d deps) *cobra.Command {
	sc := &SummaryCommand{deps: d}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Build the summary table of one category and direction set",
		Long: `Print one row per term with its best score, the number of experiments it
appears in, and the union and intersection of its genes.`,
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	sc.sel.register(cmd)
	cmd.Flags().StringVarP(&sc.format, flagFormat, "f", formatTSV, "output format: tsv, pretty, yaml")
	cmd.Flags().StringVarP(&sc.output, flagOutput, "o", "", "write to this file instead of stdout")
	cmd.Flags().IntVar(&sc.top, flagTop, 0, "keep only the N best terms (0 = all)")
	cmd.Flags().BoolVar(&sc.byTerm, "by-term", false, "sort by term instead of score")
	cmd.Flags().IntVar(&sc.maxRows, flagMaxRows, defaultMaxRows, "rows shown by the pretty format (0 = all)")

	return cmd
}

func (sc *SummaryCommand) run(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(sc.format); err != nil {
		return err
	}

	if sc.top < 0 {
		return fmt.Errorf("%w: --%s must not be negative", ErrInvalidFlag, flagTop)
	}

	s, err := startSession(cmd, sc.deps, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer s.close(cmd.Context())

	req, err := sc.sel.request(s)
	if err != nil {
		return err
	}

	res, err := s.aggregate(cmd.Context(), req)
	if err != nil {
		return err
	}

	summary := tabular.Summary(res)
	if sc.top > 0 {
		summary = summary.Head(sc.top)
	}

	if sc.byTerm {
		summary.SortByTerm()
	}

	return writeOutput(cmd, sc.output, func(w io.Writer) error {
		switch sc.format {
		case formatPretty:
			summary.RenderPretty(w, sc.maxRows)

			return nil
		case formatYAML:
			return summary.WriteYAML(w)
		default:
			return summary.WriteTSV(w)
		}
	})
}

func newDirsCommand(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "dirs [root]",
		Short: "List the experiment folders selected by the dirs filters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := startSession(cmd, d, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			var root string
			if len(args) > 0 {
				root = args[0]
			}

			_, dirs, err := resolveDirectories(s, root, nil)
			if err != nil {
				return err
			}

			for _, dir := range dirs {
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}

			return nil
		},
	}
}
