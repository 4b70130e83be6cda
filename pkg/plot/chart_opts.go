package plot

import (
	"slices"

	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	labelFontSize = 10
	rotateDegrees = 40
)

// ChartOpts provides themed chart options.
type ChartOpts struct {
	theme ThemeConfig
}

// NewChartOpts creates a ChartOpts for theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{theme: GetThemeConfig(theme)}
}

// Init returns initialization options with the themed background.
func (c *ChartOpts) Init(width, height string) opts.Initialization {
	return opts.Initialization{
		Width:           width,
		Height:          height,
		BackgroundColor: c.theme.ChartBackground,
	}
}

// Title returns centered title options.
func (c *ChartOpts) Title(title, subtitle string) opts.Title {
	return opts.Title{
		Title:         title,
		Subtitle:      subtitle,
		Left:          "center",
		TitleStyle:    &opts.TextStyle{Color: c.theme.ChartText},
		SubtitleStyle: &opts.TextStyle{Color: c.theme.ChartTextMuted},
	}
}

// CategoryXAxis returns a category x-axis with rotated labels.
func (c *ChartOpts) CategoryXAxis(name string, data []string) opts.XAxis {
	return opts.XAxis{
		Name:      name,
		Type:      "category",
		Data:      data,
		SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		AxisLabel: &opts.AxisLabel{Rotate: rotateDegrees, Interval: "0", FontSize: labelFontSize, Color: c.theme.ChartTextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
	}
}

// ValueXAxis returns a numeric x-axis.
func (c *ChartOpts) ValueXAxis(name string) opts.XAxis {
	return opts.XAxis{
		Name:      name,
		Type:      "value",
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
	}
}

// CategoryYAxis returns a category y-axis.
func (c *ChartOpts) CategoryYAxis(data []string) opts.YAxis {
	return opts.YAxis{
		Type:      "category",
		Data:      data,
		SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		AxisLabel: &opts.AxisLabel{Interval: "0", FontSize: labelFontSize, Color: c.theme.ChartTextMuted},
		SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: c.theme.ChartGrid}},
	}
}

// Grid returns grid margins leaving room for long term names on the left.
func (c *ChartOpts) Grid() opts.Grid {
	return opts.Grid{
		Top:          "60",
		Bottom:       "15%",
		Left:         "3%",
		Right:        "5%",
		ContainLabel: opts.Bool(true),
	}
}

// Tooltip returns tooltip options.
func (c *ChartOpts) Tooltip(trigger string) opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}
}

// VisualMap maps [minVal, maxVal] onto the theme scale. When higherIsBetter
// is false the scale is reversed so small p-values get the strongest color.
func (c *ChartOpts) VisualMap(minVal, maxVal float64, higherIsBetter bool) opts.VisualMap {
	scale := slices.Clone(c.theme.Scale)
	if higherIsBetter {
		slices.Reverse(scale)
	}

	return opts.VisualMap{
		Calculable: opts.Bool(true),
		Min:        float32(minVal),
		Max:        float32(maxVal),
		InRange:    &opts.VisualMapInRange{Color: scale},
		Orient:     "horizontal",
		Left:       "center",
		Bottom:     "2%",
		TextStyle:  &opts.TextStyle{Color: c.theme.ChartTextMuted},
	}
}

// BubbleColor returns the fill of bubble points.
func (c *ChartOpts) BubbleColor() string {
	return c.theme.Bubble
}
