// Package chart picks visualization types for extracted data and renders
// them as PNG images.
package chart

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// Thresholds used by Suggest.
const (
	pieMaxPoints       = 5
	histogramMinPoints = 20
)

// Suggest recommends a chart type from the shape of the points. Rules are
// evaluated in order and the first match wins.
func Suggest(points []core.DataPoint) core.ChartType {
	switch {
	case len(points) <= pieMaxPoints && hasCategory(points):
		return core.ChartPie
	case hasDate(points):
		return core.ChartLine
	case len(points) > histogramMinPoints:
		return core.ChartHistogram
	case hasCategory(points):
		return core.ChartBar
	default:
		return core.ChartBar
	}
}

// Secondary returns the alternate view for a primary chart type.
func Secondary(t core.ChartType) core.ChartType {
	switch t {
	case core.ChartBar:
		return core.ChartPie
	case core.ChartPie:
		return core.ChartBar
	case core.ChartLine:
		return core.ChartScatter
	case core.ChartScatter:
		return core.ChartLine
	default:
		return core.ChartBar
	}
}

// AxisLabels returns the x and y axis labels for a set of points.
func AxisLabels(points []core.DataPoint) (x, y string) {
	switch {
	case hasDate(points):
		x = "Time"
	case hasCategory(points):
		x = "Category"
	default:
		x = "Items"
	}

	y = "Value"
	for _, p := range points {
		if u := strings.TrimSpace(p.Unit); u != "" {
			y = "Value (" + u + ")"
			break
		}
	}
	return x, y
}

// Describe is the one-line caption placed under a chart. Absent values count as zero.
func Describe(t core.ChartType, points []core.DataPoint) string {
	lo, hi := valueRange(points)
	return fmt.Sprintf("%s chart displaying %d data points with values ranging from %.2f to %.2f",
		strings.ToLower(string(t)), len(points), lo, hi)
}

func valueRange(points []core.DataPoint) (lo, hi float64) {
	for i, p := range points {
		v := valueOf(p)
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	return lo, hi
}

func valueOf(p core.DataPoint) float64 {
	if p.Value == nil {
		return 0
	}
	return *p.Value
}

func hasCategory(points []core.DataPoint) bool {
	for _, p := range points {
		if strings.TrimSpace(p.Category) != "" {
			return true
		}
	}
	return false
}

func hasDate(points []core.DataPoint) bool {
	for _, p := range points {
		if p.Date != nil {
			return true
		}
	}
	return false
}
