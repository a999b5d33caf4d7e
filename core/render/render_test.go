package render

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/chart"
)

var fixed = time.Date(2024, 7, 8, 9, 10, 11, 0, time.UTC)

func stubClock(t *testing.T) {
	t.Helper()
	prevNow, prevID := now, newID
	now = func() time.Time { return fixed }
	newID = func() string { return "rep-1" }
	t.Cleanup(func() { now, newID = prevNow, prevID })
}

func sampleContent(t *testing.T) core.ReportContent {
	t.Helper()
	points := []core.DataPoint{
		{Label: "Apple", Value: core.Float(10), Category: "Fruit"},
		{Label: "Carrot", Value: core.Float(5), Category: "Veg"},
	}
	c, err := chart.NewGenerator().Chart(core.ChartPie, points, "Data Analysis")
	if err != nil {
		t.Fatalf("building chart: %v", err)
	}
	return core.ReportContent{
		ID:          "content-1",
		Title:       "Produce & <b>Prices</b>",
		Summary:     "Fruit costs more than vegetables.",
		SourceURL:   "http://example.com/produce.csv",
		GeneratedAt: fixed,
		Sections: []core.TextSection{
			{Content: "Second paragraph", Order: 2, Kind: core.KindParagraph},
			{Title: "Overview", Content: "Overview", Order: 0, Kind: core.KindHeader},
			{Title: "Notes", Content: "Prices are in € per kg.", Order: 1, Kind: core.KindParagraph},
		},
		Charts: []core.Chart{c},
		Tables: []core.Table{{
			Title:       "Data Summary",
			Description: "Extracted data in tabular format",
			Headers:     []string{"Label", "Value", "Category"},
			Rows:        [][]string{{"Apple", "10", "Fruit"}, {"Carrot", "5", "Veg"}},
		}},
	}
}

func request() core.ReportRequest {
	return core.ReportRequest{ID: "req-1", SourceURL: "http://example.com/produce.csv", Title: "Produce Q1/2024"}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title, suffix, want string
	}{
		{"Produce Q1/2024", ".pdf", "produce_q1_2024_20240708_091011.pdf"},
		{"", ".docx", "report_20240708_091011.docx"},
		{"  ", "_latex.pdf", "report_20240708_091011_latex.pdf"},
		{"a.b-c_d", ".md", "a.b-c_d_20240708_091011.md"},
	}
	for _, tt := range tests {
		if got := FileName(tt.title, fixed, tt.suffix); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestClean(t *testing.T) {
	if got := Clean("  Fish &amp; <i>Chips</i> <script>x</script> "); got != "Fish & Chips" {
		t.Errorf("Clean = %q", got)
	}
}

func TestRenderersMetadata(t *testing.T) {
	stubClock(t)
	content := sampleContent(t)

	tests := []struct {
		r        core.Renderer
		format   core.OutputFormat
		mime     string
		fileName string
	}{
		{NewPDFRenderer(), core.FormatPDF, MIMEPDF, "produce_q1_2024_20240708_091011.pdf"},
		{NewLaTeXRenderer(), core.FormatLaTeX, MIMEPDF, "produce_q1_2024_20240708_091011_latex.pdf"},
		{NewDOCXRenderer(), core.FormatDOCX, MIMEDOCX, "produce_q1_2024_20240708_091011.docx"},
		{NewMarkdownRenderer(), core.FormatMarkdown, MIMEMarkdown, "produce_q1_2024_20240708_091011.md"},
		{NewJSONRenderer(), core.FormatJSON, MIMEJSON, "produce_q1_2024_20240708_091011.json"},
	}
	for _, tt := range tests {
		if tt.r.Format() != tt.format {
			t.Errorf("%T.Format() = %s", tt.r, tt.r.Format())
		}
		rep, err := tt.r.Render(context.Background(), content, request())
		if err != nil {
			t.Fatalf("%s: Render: %v", tt.format, err)
		}
		if rep.ID != "rep-1" || rep.RequestID != "req-1" || rep.Format != tt.format || rep.MIMEType != tt.mime {
			t.Errorf("%s: report = %+v", tt.format, rep)
		}
		if rep.FileName != tt.fileName {
			t.Errorf("%s: FileName = %q, want %q", tt.format, rep.FileName, tt.fileName)
		}
		if rep.Size != int64(len(rep.Content)) || rep.Size == 0 {
			t.Errorf("%s: Size = %d, len = %d", tt.format, rep.Size, len(rep.Content))
		}
		if !rep.GeneratedAt.Equal(fixed) {
			t.Errorf("%s: GeneratedAt = %v", tt.format, rep.GeneratedAt)
		}
	}
}

func TestPDFIsValid(t *testing.T) {
	for _, r := range []core.Renderer{NewPDFRenderer(), NewLaTeXRenderer()} {
		rep, err := r.Render(context.Background(), sampleContent(t), request())
		if err != nil {
			t.Fatalf("%s: %v", r.Format(), err)
		}
		if !bytes.HasPrefix(rep.Content, []byte("%PDF-")) {
			t.Errorf("%s: missing PDF header", r.Format())
		}
		pages, err := validatePDF(rep.Content)
		if err != nil {
			t.Fatalf("%s: validatePDF: %v", r.Format(), err)
		}
		if pages < 1 {
			t.Errorf("%s: pages = %d", r.Format(), pages)
		}
	}
}

func TestDOCXPackage(t *testing.T) {
	rep, err := NewDOCXRenderer().Render(context.Background(), sampleContent(t), request())
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(rep.Content), int64(len(rep.Content)))
	if err != nil {
		t.Fatalf("not a zip: %v", err)
	}
	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		files[f.Name] = string(b)
	}

	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/_rels/document.xml.rels"} {
		if _, ok := files[name]; !ok {
			t.Errorf("package missing %s", name)
		}
	}
	var media int
	for name := range files {
		if strings.HasPrefix(name, "word/media/") {
			media++
		}
	}
	if media != 1 {
		t.Errorf("package has %d media parts, want 1 chart image", media)
	}

	doc := files["word/document.xml"]
	for _, want := range []string{"Produce &amp; Prices", "Executive Summary", "Overview", "Prices are in € per kg.", "w:tbl", "Carrot", "Data Tables", "Extracted data in tabular format"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
	if strings.Index(doc, "Overview") > strings.Index(doc, "Second paragraph") {
		t.Error("sections are not in order")
	}
	if !strings.Contains(files["word/_rels/document.xml.rels"], "media/") {
		t.Error("image relationship missing")
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleContent(t))
	for _, want := range []string{
		"# Produce & Prices\n",
		"| Source URL | http://example.com/produce.csv |",
		"## Executive Summary",
		"## Overview",
		"### Notes",
		"## Charts and Visualizations",
		"_pie chart displaying 2 data points with values ranging from 5.00 to 10.00_",
		"| Label | Value | Category |\n|---|---|---|\n| Apple | 10 | Fruit |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Index(md, "## Overview") > strings.Index(md, "Second paragraph") {
		t.Error("sections are not in order")
	}
}

func TestJSONRenderer(t *testing.T) {
	rep, err := NewJSONRenderer().Render(context.Background(), sampleContent(t), request())
	if err != nil {
		t.Fatal(err)
	}
	var back core.ReportContent
	if err := json.Unmarshal(rep.Content, &back); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if back.Sections[0].Order != 0 || len(back.Charts[0].Image) == 0 {
		t.Errorf("decoded content = %+v", back.Sections)
	}
}

func TestRenderHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range All() {
		if _, err := r.Render(ctx, sampleContent(t), request()); err == nil {
			t.Errorf("%s: expected context error", r.Format())
		}
	}
}
