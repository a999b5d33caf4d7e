package chart

import (
	"context"
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/sirupsen/logrus"
)

const (
	// secondaryMinPoints is the point count above which an alternate view is added.
	secondaryMinPoints = 5

	categorySummary = "Summary"
)

// Generator is the chart collaborator: it derives a primary chart, an
// optional alternate view and an optional per-category pie, each with a
// rasterized PNG.
type Generator struct {
	width, height int
}

// NewGenerator creates a Generator producing 800x600 images.
func NewGenerator() *Generator {
	return &Generator{width: 800, height: 600}
}

// GenerateCharts implements core.ChartGenerator. No points means no charts.
func (g *Generator) GenerateCharts(ctx context.Context, data core.ExtractedData) ([]core.Chart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	points := data.DataPoints
	if len(points) == 0 {
		logger.Log.WithField("url", data.SourceURL).Debug("no data points, skipping charts")
		return nil, nil
	}

	title := strings.TrimSpace(data.Title)
	primaryTitle, altTitle := title, title
	if title == "" {
		primaryTitle, altTitle = "Data Analysis", "Data"
	}

	primaryType := Suggest(points)
	primary, err := g.Chart(primaryType, points, primaryTitle)
	if err != nil {
		return nil, err
	}
	charts := []core.Chart{primary}

	if len(points) > secondaryMinPoints {
		alt, err := g.Chart(Secondary(primaryType), points, "Alternative View - "+altTitle)
		if err != nil {
			return nil, err
		}
		charts = append(charts, alt)
	}

	if hasCategory(points) {
		summary, err := g.Chart(core.ChartPie, categoryTotals(points), "Category Summary")
		if err != nil {
			return nil, err
		}
		charts = append(charts, summary)
	}

	logger.Log.WithFields(logrus.Fields{
		"url":    data.SourceURL,
		"charts": len(charts),
	}).Debug("charts generated")
	return charts, nil
}

// Chart builds one chart of the given type, including its PNG image.
func (g *Generator) Chart(t core.ChartType, points []core.DataPoint, title string) (core.Chart, error) {
	x, y := AxisLabels(points)
	c := core.Chart{
		Title:       title,
		Type:        t,
		XAxisLabel:  x,
		YAxisLabel:  y,
		DataPoints:  append([]core.DataPoint(nil), points...),
		Description: Describe(t, points),
	}
	img, err := Rasterize(c, g.width, g.height)
	if err != nil {
		return core.Chart{}, fmt.Errorf("rendering %s chart: %w", strings.ToLower(string(t)), err)
	}
	c.Image = img
	return c, nil
}

// categoryTotals sums values per category, categories in first-seen order.
// Points without a value or category are ignored.
func categoryTotals(points []core.DataPoint) []core.DataPoint {
	var order []string
	sums := make(map[string]float64)
	for _, p := range points {
		if p.Value == nil || strings.TrimSpace(p.Category) == "" {
			continue
		}
		if _, ok := sums[p.Category]; !ok {
			order = append(order, p.Category)
		}
		sums[p.Category] += *p.Value
	}

	out := make([]core.DataPoint, 0, len(order))
	for _, c := range order {
		out = append(out, core.DataPoint{
			Label:    c,
			Value:    core.Float(sums[c]),
			Category: categorySummary,
		})
	}
	return out
}
