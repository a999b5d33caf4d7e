package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/gaurav-prasanna/reportpipe/core"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	histogramBins = 10
	// maxBarLabels is the bar count above which x labels are omitted.
	maxBarLabels = 20
	labelRunes   = 14
)

// Rasterize draws c as a PNG of the given size.
func Rasterize(c core.Chart, width, height int) ([]byte, error) {
	if width < 200 || height < 150 {
		return nil, fmt.Errorf("image size %dx%d too small", width, height)
	}

	values := make([]float64, len(c.DataPoints))
	labels := make([]string, len(c.DataPoints))
	for i, p := range c.DataPoints {
		values[i] = valueOf(p)
		labels[i] = p.Label
	}

	var (
		buf bytes.Buffer
		err error
	)
	switch c.Type {
	case core.ChartPie:
		err = pie(c, labels, values, width, height).Render(gochart.PNG, &buf)
	case core.ChartHistogram:
		counts, lo, hi := histogram(values, histogramBins)
		err = bars(c.Title, c.XAxisLabel, "Frequency", binLabels(lo, hi, len(counts)), counts, width, height).
			Render(gochart.PNG, &buf)
	case core.ChartLine, core.ChartScatter:
		err = series(c, values, width, height).Render(gochart.PNG, &buf)
	default:
		err = bars(c.Title, c.XAxisLabel, c.YAxisLabel, labels, values, width, height).Render(gochart.PNG, &buf)
	}
	if err != nil {
		return nil, fmt.Errorf("rendering png: %w", err)
	}
	return buf.Bytes(), nil
}

// bars builds a bar chart measured from zero. An empty series becomes a
// single empty bar so the image still has axes.
func bars(title, xName, yName string, labels []string, values []float64, width, height int) gochart.BarChart {
	if len(values) == 0 {
		labels, values = []string{""}, []float64{0}
	}
	scaled, factor := fit(values)
	lo, hi := span(scaled)

	out := make([]gochart.Value, len(scaled))
	for i, v := range scaled {
		out[i] = gochart.Value{Value: v}
		if len(scaled) <= maxBarLabels {
			out[i].Label = truncateLabel(labels[i], labelRunes)
		}
	}
	return gochart.BarChart{
		Title:        title,
		Width:        width,
		Height:       height,
		ColorPalette: gochart.DefaultColorPalette,
		Background:   gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:        gochart.Style{StrokeWidth: 1},
		YAxis: gochart.YAxis{
			Name:  axisName(yName, factor),
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         out,
		Elements:     []gochart.Renderable{caption(xName)},
	}
}

// series builds a line or scatter plot over the point index. A series
// needs at least one value, so empty data falls back to bars.
func series(c core.Chart, values []float64, width, height int) renderer {
	if len(values) == 0 {
		return bars(c.Title, c.XAxisLabel, c.YAxisLabel, nil, nil, width, height)
	}
	scaled, factor := fit(values)
	lo, hi := span(scaled)

	xs := make([]float64, len(scaled))
	for i := range xs {
		xs[i] = float64(i)
	}
	style := gochart.Style{
		StrokeColor: gochart.GetDefaultColor(0),
		StrokeWidth: 2,
		DotColor:    gochart.GetDefaultColor(1),
		DotWidth:    3,
	}
	if c.Type == core.ChartScatter {
		style.StrokeWidth = gochart.Disabled
		style.DotWidth = 4
	}
	return gochart.Chart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:  c.XAxisLabel,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: math.Max(0.5, float64(len(xs))-0.5)},
		},
		YAxis: gochart.YAxis{
			Name:  axisName(c.YAxisLabel, factor),
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{Name: c.Title, Style: style, XValues: xs, YValues: scaled},
		},
	}
}

// pie builds a pie over the positive values. Without any positive value
// there is nothing to divide, so the data is drawn as bars instead.
func pie(c core.Chart, labels []string, values []float64, width, height int) renderer {
	var slices []gochart.Value
	for i, v := range values {
		if v > 0 && !math.IsInf(v, 0) {
			slices = append(slices, gochart.Value{Label: truncateLabel(labels[i], labelRunes), Value: v})
		}
	}
	if len(slices) == 0 {
		return bars(c.Title, c.XAxisLabel, c.YAxisLabel, labels, values, width, height)
	}

	// slices are normalized by their total, which must stay finite
	if total := sum(slices); math.IsInf(total, 0) {
		var largest float64
		for _, s := range slices {
			largest = math.Max(largest, s.Value)
		}
		for i := range slices {
			slices[i].Value /= largest
		}
	}
	return gochart.PieChart{
		Title:        c.Title,
		Width:        width,
		Height:       height,
		ColorPalette: gochart.DefaultColorPalette,
		Values:       slices,
	}
}

// renderer is satisfied by every go-chart chart type.
type renderer interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

// caption draws the x axis name along the bottom edge of a bar chart.
func caption(name string) gochart.Renderable {
	return func(r gochart.Renderer, cb gochart.Box, defaults gochart.Style) {
		if name == "" {
			return
		}
		style := gochart.Style{
			FontSize:  10,
			FontColor: drawing.ColorBlack,
		}.InheritFrom(defaults)
		style.WriteToRenderer(r)
		tb := r.MeasureText(name)
		r.Text(name, cb.Left+(cb.Width()-tb.Width())/2, cb.Bottom+tb.Height()+30)
	}
}

// fit scales values down when their spread overflows float64, returning
// the divisor applied.
func fit(values []float64) ([]float64, float64) {
	lo, hi := span(values)
	if !math.IsInf(hi-lo, 0) && !math.IsNaN(hi-lo) {
		return values, 1
	}
	factor := math.Max(math.Abs(lo), math.Abs(hi))
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / factor
	}
	return out, factor
}

// span is the value range widened to include zero and never empty.
func span(values []float64) (lo, hi float64) {
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

func sum(values []gochart.Value) float64 {
	var total float64
	for _, v := range values {
		total += v.Value
	}
	return total
}

func axisName(name string, factor float64) string {
	if factor == 1 {
		return name
	}
	return fmt.Sprintf("%s (x%.3g)", name, factor)
}

// histogram buckets values into n equal-width bins over their range. A
// range that is empty or cannot be measured puts everything in one bin.
func histogram(values []float64, n int) (counts []float64, lo, hi float64) {
	counts = make([]float64, n)
	if len(values) == 0 {
		return counts, 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	// halved so that the spread of two extreme values stays finite
	half := hi/2 - lo/2
	for _, v := range values {
		idx := 0
		if half > 0 && !math.IsInf(half, 0) {
			pos := (v/2 - lo/2) / half
			if !math.IsNaN(pos) {
				idx = int(pos * float64(n))
			}
		}
		idx = min(max(idx, 0), n-1)
		counts[idx]++
	}
	return counts, lo, hi
}

// binLabels names each bin by its lower edge.
func binLabels(lo, hi float64, n int) []string {
	labels := make([]string, n)
	step := hi/float64(n) - lo/float64(n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.3g", lo+step*float64(i))
	}
	return labels
}

func truncateLabel(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "."
}
