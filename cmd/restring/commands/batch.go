package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/restring/pkg/batch"
	"github.com/Sumatoshi-tech/restring/pkg/observability"
)

// Batch flag names.
const (
	flagOut         = "out"
	flagCompress    = "compress"
	flagPerCategory = "per-category"
	flagCategories  = "categories"
)

// BatchCommand writes results and summary tables for every combination.
type BatchCommand struct {
	deps        deps
	root        string
	dirs        []string
	directions  []string
	categories  []string
	out         string
	compress    bool
	perCategory bool
}

func newBatchCommand(d deps) *cobra.Command {
	bc := &BatchCommand{deps: d}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Aggregate every direction set and category and write the tables",
		Long: `Run the aggregation for every combination of direction set and category and
write a results and a summary table for each one that found terms.

Files are named <aggregated_prefix>_<DIRECTIONS>_<Category>.<ext> and
<summary_prefix>_<DIRECTIONS>_<Category>.<ext>, or <Category>_results.<ext> and
<Category>_summary.<ext> with --per-category.`,
		Args: cobra.NoArgs,
		RunE: bc.run,
	}

	cmd.Flags().StringVar(&bc.root, flagRoot, "", "folder holding one sub-folder per experiment (default: analysis.root)")
	cmd.Flags().StringSliceVar(&bc.dirs, flagDirs, nil, "experiment folders to read instead of scanning the root")
	cmd.Flags().StringSliceVarP(&bc.directions, flagDirections, "d", nil,
		"direction sets (default: analysis.directions, e.g. UP,DOWN,UP_DOWN)")
	cmd.Flags().StringSliceVarP(&bc.categories, flagCategories, "c", nil, "categories (default: analysis.categories or all)")
	cmd.Flags().StringVar(&bc.out, flagOut, "", "output folder (default: analysis.out_dir)")
	cmd.Flags().BoolVar(&bc.compress, flagCompress, false, "gzip the written tables")
	cmd.Flags().BoolVar(&bc.perCategory, flagPerCategory, false, "name files after the category only; needs one direction set")

	return cmd
}

func (bc *BatchCommand) job(s *session) (batch.Job, error) {
	cfg := s.cfg

	if len(bc.directions) > 0 {
		cfg.Analysis.Directions = bc.directions
	}

	if len(bc.categories) > 0 {
		cfg.Analysis.Categories = bc.categories
	}

	sets, err := cfg.DirectionSets()
	if err != nil {
		return batch.Job{}, err
	}

	categories, err := cfg.Categories()
	if err != nil {
		return batch.Job{}, err
	}

	root, dirs, err := resolveDirectories(s, bc.root, bc.dirs)
	if err != nil {
		return batch.Job{}, err
	}

	out := bc.out
	if out == "" {
		out = cfg.Analysis.OutDir
	}

	notFound := cfg.Analysis.NotFound

	return batch.Job{
		Root:             root,
		Directories:      dirs,
		DirectionSets:    sets,
		Categories:       categories,
		OutDir:           out,
		AggregatedPrefix: cfg.Analysis.AggregatedPrefix,
		SummaryPrefix:    cfg.Analysis.SummaryPrefix,
		Extension:        cfg.Analysis.Extension,
		Compress:         bc.compress || cfg.Analysis.Compress,
		NotFound:         &notFound,
		PerCategory:      bc.perCategory,
	}, nil
}

func (bc *BatchCommand) run(cmd *cobra.Command, _ []string) error {
	s, err := startSession(cmd, bc.deps, observability.ModeBatch)
	if err != nil {
		return err
	}
	defer s.close(cmd.Context())

	job, err := bc.job(s)
	if err != nil {
		return err
	}

	driver := &batch.Driver{
		Aggregator: s.aggregator(),
		Logger:     s.logger,
		Metrics:    s.prov.Metrics,
		Tracer:     s.tracer,
	}

	report, err := driver.Run(cmd.Context(), job)
	if err != nil {
		return err
	}

	if !s.quiet {
		printBatchReport(cmd.OutOrStdout(), report, len(batch.Plan(job)))
	}

	return nil
}

func printBatchReport(w io.Writer, report *batch.Report, combinations int) {
	color.New(color.FgGreen).Fprintf(w, "%d of %d combinations written\n", report.Tables, combinations)
	fmt.Fprintf(w, "  files: %d (%s)\n", len(report.Files), humanize.Bytes(uint64(max(report.Bytes, 0))))

	for _, path := range report.Files {
		fmt.Fprintf(w, "  - %s\n", path)
	}

	if len(report.Skipped) == 0 {
		return
	}

	color.New(color.FgYellow).Fprintf(w, "%d skipped without terms\n", len(report.Skipped))

	for _, c := range report.Skipped {
		fmt.Fprintf(w, "  - %s\n", c)
	}
}

