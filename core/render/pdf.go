package render

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

// pdfStyle selects between the plain and the LaTeX-like layout.
type pdfStyle struct {
	font     string
	numbered bool
}

var (
	plainStyle = pdfStyle{font: "Helvetica"}
	latexStyle = pdfStyle{font: "Times", numbered: true}
)

// PDFRenderer renders report content as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Format implements core.Renderer.
func (r *PDFRenderer) Format() core.OutputFormat { return core.FormatPDF }

// Render implements core.Renderer. The output is validated before it is returned.
func (r *PDFRenderer) Render(ctx context.Context, content core.ReportContent, req core.ReportRequest) (core.GeneratedReport, error) {
	if err := ctx.Err(); err != nil {
		return core.GeneratedReport{}, err
	}
	body, err := buildPDF(content, plainStyle)
	if err != nil {
		return core.GeneratedReport{}, err
	}
	return newReport(req, content, core.FormatPDF, ".pdf", MIMEPDF, body), nil
}

// LaTeXRenderer renders report content as a serif, numbered PDF in the
// style of a LaTeX article.
type LaTeXRenderer struct{}

// NewLaTeXRenderer creates a LaTeXRenderer.
func NewLaTeXRenderer() *LaTeXRenderer {
	return &LaTeXRenderer{}
}

// Format implements core.Renderer.
func (r *LaTeXRenderer) Format() core.OutputFormat { return core.FormatLaTeX }

// Render implements core.Renderer.
func (r *LaTeXRenderer) Render(ctx context.Context, content core.ReportContent, req core.ReportRequest) (core.GeneratedReport, error) {
	if err := ctx.Err(); err != nil {
		return core.GeneratedReport{}, err
	}
	body, err := buildPDF(content, latexStyle)
	if err != nil {
		return core.GeneratedReport{}, err
	}
	return newReport(req, content, core.FormatLaTeX, "_latex.pdf", MIMEPDF, body), nil
}

// pdfDoc is the layout state of one document.
type pdfDoc struct {
	pdf     *gofpdf.Fpdf
	style   pdfStyle
	tr      func(string) string
	section int
	width   float64 // printable width in mm
}

func buildPDF(content core.ReportContent, style pdfStyle) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(Clean(content.Title), true)
	pdf.SetCreator("reportpipe", true)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	d := &pdfDoc{
		pdf:   pdf,
		style: style,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		width: pageW - left - right,
	}

	d.title(content)
	d.heading("Executive Summary")
	d.paragraph(content.Summary)

	for _, s := range orderedSections(content.Sections) {
		d.textSection(s)
	}

	if len(content.Charts) > 0 {
		d.heading("Charts and Visualizations")
		for i, c := range content.Charts {
			d.chart(i, c)
		}
	}

	if len(content.Tables) > 0 {
		d.heading("Data Tables")
		for _, t := range content.Tables {
			d.table(t)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("laying out pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	pages, err := validatePDF(buf.Bytes())
	if err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{
		"pages": pages,
		"bytes": buf.Len(),
		"font":  style.font,
	}).Debug("pdf rendered")
	return buf.Bytes(), nil
}

// validatePDF parses the document with pdfcpu and returns its page count.
func validatePDF(b []byte) (int, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(b), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("validating pdf: %w", err)
	}
	return ctx.PageCount, nil
}

func (d *pdfDoc) title(content core.ReportContent) {
	d.pdf.SetFont(d.style.font, "B", 20)
	d.pdf.MultiCell(0, 10, d.tr(Clean(content.Title)), "", "C", false)
	d.pdf.Ln(4)

	if d.style.numbered {
		d.pdf.SetFont(d.style.font, "I", 11)
		d.pdf.CellFormat(0, 6, d.tr(displayTime(content.GeneratedAt)), "", 1, "C", false, 0, "")
		d.pdf.SetFont(d.style.font, "", 9)
		d.pdf.MultiCell(0, 5, d.tr(content.SourceURL), "", "C", false)
		d.pdf.Ln(6)
		return
	}

	// metadata table
	labelW := 40.0
	d.pdf.SetFillColor(240, 240, 240)
	rows := [][2]string{
		{"Generated At", displayTime(content.GeneratedAt)},
		{"Source URL", content.SourceURL},
	}
	for _, row := range rows {
		d.pdf.SetFont(d.style.font, "B", 10)
		d.pdf.CellFormat(labelW, 7, row[0], "1", 0, "L", true, 0, "")
		d.pdf.SetFont(d.style.font, "", 10)
		d.pdf.CellFormat(d.width-labelW, 7, d.tr(truncate(row[1], 90)), "1", 1, "L", false, 0, "")
	}
	d.pdf.Ln(6)
}

func (d *pdfDoc) heading(text string) {
	if d.style.numbered {
		d.section++
		text = strconv.Itoa(d.section) + ". " + text
	}
	d.pdf.Ln(2)
	d.pdf.SetFont(d.style.font, "B", 15)
	d.pdf.MultiCell(0, 8, d.tr(text), "", "L", false)
	d.pdf.Ln(2)
}

func (d *pdfDoc) paragraph(text string) {
	text = Clean(text)
	if text == "" {
		return
	}
	d.pdf.SetFont(d.style.font, "", 11)
	d.pdf.MultiCell(0, 5.5, d.tr(text), "", "J", false)
	d.pdf.Ln(3)
}

func (d *pdfDoc) textSection(s core.TextSection) {
	title := Clean(s.Title)
	switch {
	case s.Kind == core.KindHeader:
		d.heading(firstNonEmpty(title, Clean(s.Content)))
		return
	case title != "" && d.style.numbered:
		d.heading(title)
	case title != "":
		d.pdf.SetFont(d.style.font, "B", 12)
		d.pdf.MultiCell(0, 6, d.tr(title), "", "L", false)
	}

	switch s.Kind {
	case core.KindBullet:
		d.paragraph("- " + s.Content)
	case core.KindQuote:
		d.pdf.SetFont(d.style.font, "I", 11)
		d.pdf.SetX(d.pdf.GetX() + 8)
		d.pdf.MultiCell(d.width-8, 5.5, d.tr(Clean(s.Content)), "", "L", false)
		d.pdf.Ln(3)
	default:
		d.paragraph(s.Content)
	}
}

func (d *pdfDoc) chart(i int, c core.Chart) {
	d.pdf.SetFont(d.style.font, "B", 12)
	d.pdf.MultiCell(0, 6, d.tr(Clean(c.Title)), "", "L", false)
	d.pdf.Ln(1)

	if len(c.Image) > 0 {
		name := "chart" + strconv.Itoa(i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(c.Image))
		w := d.width * 0.9
		d.pdf.ImageOptions(name, d.pdf.GetX()+(d.width-w)/2, d.pdf.GetY(), w, 0, true, opts, 0, "")
		d.pdf.Ln(2)
	}

	d.pdf.SetFont(d.style.font, "I", 10)
	d.pdf.MultiCell(0, 5, d.tr(Clean(c.Description)), "", "L", false)
	d.pdf.Ln(4)
}

func (d *pdfDoc) table(t core.Table) {
	d.pdf.SetFont(d.style.font, "B", 12)
	d.pdf.MultiCell(0, 6, d.tr(Clean(t.Title)), "", "L", false)
	if t.Description != "" {
		d.pdf.SetFont(d.style.font, "I", 10)
		d.pdf.MultiCell(0, 5, d.tr(Clean(t.Description)), "", "L", false)
	}
	d.pdf.Ln(2)

	if len(t.Headers) == 0 {
		return
	}
	colW := d.width / float64(len(t.Headers))
	maxChars := int(colW / 2)

	d.pdf.SetFont(d.style.font, "B", 10)
	d.pdf.SetFillColor(211, 211, 211)
	for _, h := range t.Headers {
		d.pdf.CellFormat(colW, 7, d.tr(truncate(Clean(h), maxChars)), "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont(d.style.font, "", 10)
	for _, row := range t.Rows {
		for j := range t.Headers {
			cell := ""
			if j < len(row) {
				cell = Clean(row[j])
			}
			d.pdf.CellFormat(colW, 6, d.tr(truncate(cell, maxChars)), "1", 0, "L", false, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(4)
}

// truncate shortens s to n characters, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
