package plot

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

const (
	styleTagLen = len("</style>")

	// EChartsAssetsHost serves the echarts runtime referenced by rendered pages.
	EChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
)

// Renderable is implemented by every go-echarts chart.
type Renderable interface {
	Render(w io.Writer) error
}

// Section is one chart of a page.
type Section struct {
	Title    string
	Subtitle string
	Hint     []string
	Chart    Renderable
}

// Page is a standalone HTML report.
type Page struct {
	Title       string
	Description string
	Theme       Theme
	Sections    []Section
}

// NewPage creates an empty light page.
func NewPage(title, description string) *Page {
	return &Page{Title: title, Description: description, Theme: ThemeLight}
}

// Add appends sections.
func (p *Page) Add(sections ...Section) *Page {
	p.Sections = append(p.Sections, sections...)

	return p
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	var content bytes.Buffer

	for i, section := range p.Sections {
		html, err := renderSection(section)
		if err != nil {
			return fmt.Errorf("render section %d: %w", i, err)
		}

		content.WriteString(string(html))
	}

	darkClass := ""
	if p.Theme == ThemeDark {
		darkClass = "dark"
	}

	page, err := renderTemplate("page.html", pageData{
		Title:       p.Title,
		Description: p.Description,
		DarkClass:   darkClass,
		Theme:       GetThemeConfig(p.Theme),
		AssetsHost:  EChartsAssetsHost,
		Content:     template.HTML(content.String()), //nolint:gosec // Chart markup produced by go-echarts.
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	if _, err := io.WriteString(w, string(page)); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}

// RenderPage renders a page with the given sections.
func RenderPage(w io.Writer, title string, theme Theme, sections ...Section) error {
	p := NewPage(title, "")
	p.Theme = theme

	return p.Add(sections...).Render(w)
}

func renderSection(section Section) (template.HTML, error) {
	chart, err := renderChart(section.Chart)
	if err != nil {
		return "", err
	}

	return renderTemplate("section.html", sectionData{
		Title:    section.Title,
		Subtitle: section.Subtitle,
		Hint:     section.Hint,
		Chart:    template.HTML(chart), //nolint:gosec // Chart markup produced by go-echarts.
	})
}

// ChartWrapper renders only the chart element and script of a chart.
type ChartWrapper struct {
	chart Renderable
}

// WrapChart wraps a chart so it renders as an embeddable fragment.
func WrapChart(chart Renderable) *ChartWrapper {
	return &ChartWrapper{chart: chart}
}

// Render writes the chart fragment.
func (cw *ChartWrapper) Render(w io.Writer) error {
	content, err := renderChart(cw.chart)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, content); err != nil {
		return fmt.Errorf("writing chart content: %w", err)
	}

	return nil
}

func renderChart(chart Renderable) (string, error) {
	if chart == nil {
		return "", nil
	}

	var buf bytes.Buffer

	if err := chart.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering chart: %w", err)
	}

	return extractChartContent(buf.String()), nil
}

// extractChartContent strips the page around a go-echarts chart. Fragments pass through.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	if start == -1 {
		return html
	}

	end := strings.Index(html, `</body>`)
	if end == -1 {
		return html
	}

	content := html[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			return content
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			return content
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}
}
