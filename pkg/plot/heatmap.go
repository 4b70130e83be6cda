package plot

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/restring/pkg/tabular"
)

const (
	rowHeightPx     = 22
	chartPaddingPx  = 180
	minChartHeight  = 400
	heatLabelDigits = 2
)

// ChartOptions are shared by the heatmap and bubble builders.
type ChartOptions struct {
	Title    string
	Subtitle string
	Theme    Theme
	// LogScale tells the heatmap its values are -log transformed, so higher is more significant.
	LogScale bool
	// LogBase is used by Bubble to place terms on the x axis.
	LogBase float64
	// ShowValues prints each cell value inside the heatmap.
	ShowValues bool
}

func chartHeight(rows int) string {
	return fmt.Sprintf("%dpx", max(minChartHeight, rows*rowHeightPx+chartPaddingPx))
}

// Heatmap builds a term by directory heatmap. Terms read top to bottom in table order.
func Heatmap(table *tabular.WideTable, o ChartOptions) (*charts.HeatMap, error) {
	if table.Empty() || len(table.Columns) == 0 {
		return nil, ErrNothingToDraw
	}

	co := NewChartOpts(o.Theme)

	terms := make([]string, len(table.Rows))
	for i, row := range table.Rows {
		terms[len(terms)-1-i] = row.Term
	}

	data, minVal, maxVal := buildHeatMapData(table)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init("100%", chartHeight(len(terms)))),
		charts.WithTitleOpts(co.Title(o.Title, o.Subtitle)),
		charts.WithTooltipOpts(co.Tooltip("item")),
		charts.WithXAxisOpts(co.CategoryXAxis("", table.Columns)),
		charts.WithYAxisOpts(co.CategoryYAxis(terms)),
		charts.WithVisualMapOpts(co.VisualMap(minVal, maxVal, o.LogScale)),
		charts.WithGridOpts(co.Grid()),
	)

	var seriesOpts []charts.SeriesOpts
	if o.ShowValues {
		seriesOpts = append(seriesOpts, charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(true), Position: "inside", FontSize: labelFontSize,
		}))
	}

	hm.AddSeries("score", data, seriesOpts...)

	return hm, nil
}

// buildHeatMapData emits [column, row, value] cells with rows indexed bottom-up.
func buildHeatMapData(table *tabular.WideTable) (data []opts.HeatMapData, minVal, maxVal float64) {
	data = make([]opts.HeatMapData, 0, len(table.Rows)*len(table.Columns))
	minVal, maxVal = math.Inf(1), math.Inf(-1)
	last := len(table.Rows) - 1

	for i, row := range table.Rows {
		for j, v := range row.Values {
			data = append(data, opts.HeatMapData{Value: []any{j, last - i, roundTo(v, heatLabelDigits)}})
			minVal = min(minVal, v)
			maxVal = max(maxVal, v)
		}
	}

	if minVal == maxVal {
		maxVal = minVal + 1
	}

	return data, minVal, maxVal
}

// roundTo keeps small p-values readable: values below 1 keep significant digits.
func roundTo(v float64, digits int) float64 {
	if v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}

	exp := math.Floor(math.Log10(math.Abs(v)))
	scale := math.Pow(10, float64(digits)-1-min(exp, 0))

	return math.Round(v*scale) / scale
}

// Terms returns the row terms of a table in order.
func Terms(table *tabular.WideTable) []string {
	terms := make([]string, len(table.Rows))
	for i, r := range table.Rows {
		terms[i] = r.Term
	}

	return slices.Clip(terms)
}
