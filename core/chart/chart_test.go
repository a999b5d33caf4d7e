package chart

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"testing"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
)

func pts(n int, category string) []core.DataPoint {
	out := make([]core.DataPoint, n)
	for i := range out {
		out[i] = core.DataPoint{
			Label:    fmt.Sprintf("p%d", i),
			Value:    core.Float(float64(i + 1)),
			Category: category,
		}
	}
	return out
}

func TestSuggest(t *testing.T) {
	dated := pts(30, "")
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dated[7].Date = &now

	tests := []struct {
		name   string
		points []core.DataPoint
		want   core.ChartType
	}{
		{"three categorized", pts(3, "Fruit"), core.ChartPie},
		{"any date wins over count", dated, core.ChartLine},
		{"many plain", pts(25, ""), core.ChartHistogram},
		{"many categorized", pts(10, "Veg"), core.ChartBar},
		{"few plain", pts(3, ""), core.ChartBar},
		{"empty", nil, core.ChartBar},
		{"whitespace category is not a category", pts(3, "  "), core.ChartBar},
	}
	for _, tt := range tests {
		if got := Suggest(tt.points); got != tt.want {
			t.Errorf("%s: Suggest = %s, want %s", tt.name, got, tt.want)
		}
		if Suggest(tt.points) != Suggest(tt.points) {
			t.Errorf("%s: not deterministic", tt.name)
		}
	}
}

func TestSecondary(t *testing.T) {
	tests := map[core.ChartType]core.ChartType{
		core.ChartBar:       core.ChartPie,
		core.ChartPie:       core.ChartBar,
		core.ChartLine:      core.ChartScatter,
		core.ChartScatter:   core.ChartLine,
		core.ChartHistogram: core.ChartBar,
	}
	for in, want := range tests {
		if got := Secondary(in); got != want {
			t.Errorf("Secondary(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestAxisLabelsAndDescribe(t *testing.T) {
	points := pts(3, "")
	points[1].Unit = "kg"
	points[2].Value = nil

	x, y := AxisLabels(points)
	if x != "Items" || y != "Value (kg)" {
		t.Errorf("AxisLabels = %q, %q", x, y)
	}
	want := "bar chart displaying 3 data points with values ranging from 0.00 to 2.00"
	if got := Describe(core.ChartBar, points); got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}
}

func TestGenerateCharts(t *testing.T) {
	g := NewGenerator()

	charts, err := g.GenerateCharts(context.Background(), core.ExtractedData{})
	if err != nil || len(charts) != 0 {
		t.Fatalf("empty data: %d charts, err %v", len(charts), err)
	}

	points := []core.DataPoint{
		{Label: "a", Value: core.Float(1), Category: "X"},
		{Label: "b", Value: core.Float(2), Category: "Y"},
		{Label: "c", Value: core.Float(3), Category: "X"},
		{Label: "d", Category: "Z"},
		{Label: "e", Value: core.Float(5), Category: "Y"},
		{Label: "f", Value: core.Float(6), Category: "X"},
	}
	charts, err = g.GenerateCharts(context.Background(), core.ExtractedData{Title: "Sales", DataPoints: points})
	if err != nil {
		t.Fatal(err)
	}
	if len(charts) != 3 {
		t.Fatalf("got %d charts, want 3", len(charts))
	}
	if charts[0].Type != core.ChartBar || charts[0].Title != "Sales" {
		t.Errorf("primary = %s %q", charts[0].Type, charts[0].Title)
	}
	if charts[1].Type != core.ChartPie || charts[1].Title != "Alternative View - Sales" {
		t.Errorf("secondary = %s %q", charts[1].Type, charts[1].Title)
	}

	summary := charts[2]
	if summary.Title != "Category Summary" || summary.Type != core.ChartPie {
		t.Errorf("summary = %s %q", summary.Type, summary.Title)
	}
	wantSums := []struct {
		label string
		sum   float64
	}{{"X", 10}, {"Y", 7}}
	if len(summary.DataPoints) != len(wantSums) {
		t.Fatalf("summary points = %+v", summary.DataPoints)
	}
	for i, w := range wantSums {
		p := summary.DataPoints[i]
		if p.Label != w.label || *p.Value != w.sum || p.Category != "Summary" {
			t.Errorf("summary point %d = %+v", i, p)
		}
	}

	for _, c := range charts {
		img, err := png.Decode(bytes.NewReader(c.Image))
		if err != nil {
			t.Fatalf("%s: decoding image: %v", c.Title, err)
		}
		if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
			t.Errorf("%s: image is %dx%d", c.Title, b.Dx(), b.Dy())
		}
	}
}

func TestGenerateChartsDefaultTitles(t *testing.T) {
	charts, err := NewGenerator().GenerateCharts(context.Background(), core.ExtractedData{DataPoints: pts(8, "")})
	if err != nil {
		t.Fatal(err)
	}
	if len(charts) != 2 {
		t.Fatalf("got %d charts, want 2", len(charts))
	}
	if charts[0].Title != "Data Analysis" || charts[1].Title != "Alternative View - Data" {
		t.Errorf("titles = %q, %q", charts[0].Title, charts[1].Title)
	}
}

func TestRasterizeEveryType(t *testing.T) {
	types := []core.ChartType{core.ChartBar, core.ChartPie, core.ChartLine, core.ChartScatter, core.ChartHistogram}
	for _, ct := range types {
		for _, points := range [][]core.DataPoint{nil, pts(1, ""), pts(40, "c")} {
			img, err := Rasterize(core.Chart{Type: ct, Title: "t", DataPoints: points}, 400, 300)
			if err != nil {
				t.Fatalf("%s with %d points: %v", ct, len(points), err)
			}
			if _, err := png.Decode(bytes.NewReader(img)); err != nil {
				t.Errorf("%s with %d points: invalid png: %v", ct, len(points), err)
			}
		}
	}
	if _, err := Rasterize(core.Chart{}, 10, 10); err == nil {
		t.Error("expected error for tiny image")
	}
}

func TestGenerateChartsExtremeValues(t *testing.T) {
	points := make([]core.DataPoint, 21)
	for i := range points {
		v := 1e308
		if i%2 == 1 {
			v = -1e308
		}
		points[i] = core.DataPoint{Label: fmt.Sprintf("p%d", i), Value: core.Float(v)}
	}

	charts, err := NewGenerator().GenerateCharts(context.Background(), core.ExtractedData{DataPoints: points})
	if err != nil {
		t.Fatal(err)
	}
	if len(charts) != 2 || charts[0].Type != core.ChartHistogram {
		t.Fatalf("charts = %d, primary %s", len(charts), charts[0].Type)
	}
	for _, c := range charts {
		if _, err := png.Decode(bytes.NewReader(c.Image)); err != nil {
			t.Errorf("%s: invalid png: %v", c.Type, err)
		}
	}
}

func TestHistogram(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{"spread", []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 2}},
		{"constant", []float64{3, 3, 3}, []float64{3, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"overflowing range", []float64{1e308, -1e308, 1e308}, []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 2}},
		{"empty", nil, make([]float64, 10)},
	}
	for _, tt := range tests {
		got, _, _ := histogram(tt.values, 10)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("%s: histogram = %v, want %v", tt.name, got, tt.want)
		}
	}
}
