package plot

import (
	"fmt"
	"strings"
)

// Theme is a page color theme.
type Theme string

// Supported themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name. Empty means light.
func ParseTheme(name string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(name))); t {
	case "":
		return ThemeLight, nil
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: light, dark)", ErrUnknownTheme, name)
	}
}

// ThemeConfig holds the styling values of a theme.
type ThemeConfig struct {
	Background    string
	Surface       string
	Border        string
	TextPrimary   string
	TextSecondary string
	TextMuted     string
	Accent        string

	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// Scale runs from the most significant color to the least.
	Scale []string
	// Bubble is the fill of bubble chart points.
	Bubble string
}

// GetThemeConfig returns the configuration of a theme, light for unknown ones.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

var lightTheme = ThemeConfig{
	Background:    "#fafaf9", // stone-50.
	Surface:       "#ffffff",
	Border:        "#e7e5e4", // stone-200.
	TextPrimary:   "#1c1917", // stone-900.
	TextSecondary: "#44403c", // stone-700.
	TextMuted:     "#78716c", // stone-500.
	Accent:        "#b91c1c", // red-700.

	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4",
	ChartAxis:       "#a8a29e", // stone-400.
	ChartText:       "#44403c",
	ChartTextMuted:  "#78716c",

	Scale:  []string{"#7f1d1d", "#dc2626", "#f97316", "#fde68a", "#fffbeb"},
	Bubble: "#dc2626",
}

var darkTheme = ThemeConfig{
	Background:    "#0c0a09", // stone-950.
	Surface:       "#1c1917",
	Border:        "#44403c",
	TextPrimary:   "#fafaf9",
	TextSecondary: "#d6d3d1", // stone-300.
	TextMuted:     "#a8a29e",
	Accent:        "#f87171", // red-400.

	ChartBackground: "transparent",
	ChartGrid:       "#44403c",
	ChartAxis:       "#57534e", // stone-600.
	ChartText:       "#d6d3d1",
	ChartTextMuted:  "#a8a29e",

	Scale:  []string{"#fef08a", "#fb923c", "#ef4444", "#991b1b", "#292524"},
	Bubble: "#f87171",
}
