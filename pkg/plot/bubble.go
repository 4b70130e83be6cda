package plot

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/restring/pkg/tabular"
)

const (
	bubbleBaseSize  = 8
	bubbleStepSize  = 6
	bubbleMaxSize   = 60
	defaultLogBase  = 10
	bubbleOpacity   = 0.75
	bubbleAxisLabel = "-log(score)"
)

// BubbleSize maps a term occurrence onto a symbol size.
func BubbleSize(occurrence int) int {
	return min(bubbleBaseSize+bubbleStepSize*occurrence, bubbleMaxSize)
}

// Bubble builds a scatter chart of a summary table: x is -log(score), y the
// term and the symbol size grows with occurrence. The most significant term is on top.
func Bubble(summary *tabular.SummaryTable, o ChartOptions) (*charts.Scatter, error) {
	if summary.Empty() {
		return nil, ErrNothingToDraw
	}

	base := o.LogBase
	if base <= 0 || base == 1 {
		base = defaultLogBase
	}

	co := NewChartOpts(o.Theme)
	n := summary.Len()

	terms := make([]string, n)
	data := make([]opts.ScatterData, n)

	// Rows are drawn bottom-up so the first row lands at the top of the axis.
	for i, row := range summary.Rows {
		y := n - 1 - i
		terms[y] = row.Term
		data[y] = opts.ScatterData{
			Name:       row.Term,
			Value:      []any{NegLog(row.Score, base), row.Term, row.Occurrence},
			SymbolSize: BubbleSize(row.Occurrence),
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init("100%", chartHeight(n))),
		charts.WithTitleOpts(co.Title(o.Title, o.Subtitle)),
		charts.WithTooltipOpts(co.Tooltip("item")),
		charts.WithXAxisOpts(co.ValueXAxis(bubbleAxisLabel)),
		charts.WithYAxisOpts(co.CategoryYAxis(terms)),
		charts.WithGridOpts(co.Grid()),
	)

	scatter.AddSeries("terms", data, charts.WithItemStyleOpts(opts.ItemStyle{
		Color:   co.BubbleColor(),
		Opacity: opts.Float(bubbleOpacity),
	}))

	return scatter, nil
}
