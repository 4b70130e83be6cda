package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/restring/pkg/observability"
	"github.com/Sumatoshi-tech/restring/pkg/plot"
	"github.com/Sumatoshi-tech/restring/pkg/tabular"
)

// Plot flag names.
const (
	flagLogTransform = "log-transform"
	flagLogBase      = "log-base"
	flagCutoff       = "cutoff"
	flagColumns      = "columns"
	flagMaxTerms     = "max-terms"
	flagTheme        = "theme"
	flagTitle        = "title"
	flagShowValues   = "show-values"
)

// plotFlags are shared by the heatmap and bubble commands.
type plotFlags struct {
	output       string
	title        string
	theme        string
	logTransform bool
	logBase      float64
	cutoff       float64
	terms        []string
	columns      []string
	maxTerms     int
	showValues   bool
}

func (pf *plotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&pf.output, flagOutput, "o", "", "HTML file to write (default: <input>.html)")
	cmd.Flags().StringVar(&pf.title, flagTitle, "", "chart title (default: input file name)")
	cmd.Flags().StringVar(&pf.theme, flagTheme, "", "light or dark (default: plot.theme)")
	cmd.Flags().Float64Var(&pf.logBase, flagLogBase, 0, "logarithm base (default: plot.log_base)")
	cmd.Flags().IntVar(&pf.maxTerms, flagMaxTerms, 0, "most significant terms to draw (default: plot.max_terms)")
	cmd.Flags().StringSliceVar(&pf.terms, flagTerms, nil, "only draw these terms")
}

// apply fills unset flags from the plot section of the config.
func (pf *plotFlags) apply(cmd *cobra.Command, s *session) {
	cfg := s.cfg.Plot

	if pf.theme == "" {
		pf.theme = cfg.Theme
	}

	if !cmd.Flags().Changed(flagLogBase) {
		pf.logBase = cfg.LogBase
	}

	if !cmd.Flags().Changed(flagMaxTerms) {
		pf.maxTerms = cfg.MaxTerms
	}

	if f := cmd.Flags().Lookup(flagLogTransform); f != nil && !f.Changed {
		pf.logTransform = cfg.LogTransform
	}

	if f := cmd.Flags().Lookup(flagCutoff); f != nil && !f.Changed {
		pf.cutoff = cfg.ScoreCutoff
	}
}

func (pf *plotFlags) outputPath(input string) string {
	if pf.output != "" {
		return pf.output
	}

	return strings.TrimSuffix(input, filepath.Ext(input)) + ".html"
}

func (pf *plotFlags) chartTitle(input string) string {
	if pf.title != "" {
		return pf.title
	}

	return filepath.Base(input)
}

func newPlotCommand(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Draw aggregated tables as interactive HTML charts",
	}

	cmd.AddCommand(newHeatmapCommand(d), newBubbleCommand(d))

	return cmd
}

func newHeatmapCommand(d deps) *cobra.Command {
	pf := &plotFlags{}

	cmd := &cobra.Command{
		Use:   "heatmap <results.tsv>",
		Short: "Draw a results table as a term by experiment heatmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := startSession(cmd, d, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			pf.apply(cmd, s)

			return drawHeatmap(cmd, s, pf, args[0])
		},
	}

	pf.register(cmd)
	cmd.Flags().BoolVar(&pf.logTransform, flagLogTransform, true, "draw -log(score) (default: plot.log_transform)")
	cmd.Flags().Float64Var(&pf.cutoff, flagCutoff, 0,
		"keep terms with any score <= cutoff, or any -log(score) >= cutoff when log transformed (default: plot.score_cutoff)")
	cmd.Flags().StringSliceVar(&pf.columns, flagColumns, nil, "experiments to draw, in order")
	cmd.Flags().BoolVar(&pf.showValues, flagShowValues, false, "print values inside cells")

	return cmd
}

func drawHeatmap(cmd *cobra.Command, s *session, pf *plotFlags, input string) error {
	theme, err := plot.ParseTheme(pf.theme)
	if err != nil {
		return err
	}

	table, err := readTable(input, tabular.ReadWideTSV)
	if err != nil {
		return err
	}

	table, err = plot.Transform{
		LogTransform: pf.logTransform,
		LogBase:      pf.logBase,
		Cutoff:       pf.cutoff,
		Terms:        pf.terms,
		Columns:      pf.columns,
		MaxTerms:     pf.maxTerms,
	}.Apply(table)
	if err != nil {
		return err
	}

	subtitle := "score"
	if pf.logTransform {
		subtitle = fmt.Sprintf("-log%g(score)", pf.logBase)
	}

	hm, err := plot.Heatmap(table, plot.ChartOptions{
		Theme:      theme,
		LogScale:   pf.logTransform,
		ShowValues: pf.showValues,
	})
	if err != nil {
		return err
	}

	return renderPlot(cmd, s, pf.outputPath(input), theme, plot.Section{
		Title:    pf.chartTitle(input),
		Subtitle: fmt.Sprintf("%d terms, %d experiments, %s", table.Len(), len(table.Columns), subtitle),
		Chart:    hm,
	})
}

func newBubbleCommand(d deps) *cobra.Command {
	pf := &plotFlags{}

	cmd := &cobra.Command{
		Use:   "bubble <summary.tsv>",
		Short: "Draw a summary table as a bubble chart",
		Long: `Terms are placed by -log(score) and sized by the number of experiments they
appear in. The most significant terms are drawn first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := startSession(cmd, d, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			pf.apply(cmd, s)

			return drawBubble(cmd, s, pf, args[0])
		},
	}

	pf.register(cmd)

	return cmd
}

func drawBubble(cmd *cobra.Command, s *session, pf *plotFlags, input string) error {
	theme, err := plot.ParseTheme(pf.theme)
	if err != nil {
		return err
	}

	summary, err := readTable(input, tabular.ReadSummaryTSV)
	if err != nil {
		return err
	}

	summary.SortByScore()

	if len(pf.terms) > 0 {
		summary = keepTerms(summary, pf.terms)
	}

	summary = summary.Head(pf.maxTerms)

	scatter, err := plot.Bubble(summary, plot.ChartOptions{Theme: theme, LogBase: pf.logBase})
	if err != nil {
		return err
	}

	return renderPlot(cmd, s, pf.outputPath(input), theme, plot.Section{
		Title:    pf.chartTitle(input),
		Subtitle: fmt.Sprintf("%d terms, size by occurrence", summary.Len()),
		Chart:    scatter,
	})
}

func keepTerms(summary *tabular.SummaryTable, terms []string) *tabular.SummaryTable {
	wanted := make(map[string]bool, len(terms))
	for _, t := range terms {
		wanted[t] = true
	}

	out := &tabular.SummaryTable{}

	for _, row := range summary.Rows {
		if wanted[row.Term] {
			out.Rows = append(out.Rows, row)
		}
	}

	return out
}

func readTable[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T

	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	t, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return t, nil
}

func renderPlot(cmd *cobra.Command, s *session, path string, theme plot.Theme, section plot.Section) error {
	err := writeOutput(cmd, path, func(w io.Writer) error {
		return plot.RenderPage(w, "restring", theme, section)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(cmd.Context(), "plot: written", "path", path)

	return nil
}
