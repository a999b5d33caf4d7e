package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/common/units"
)

// Chart images are placed 6in x 4.5in.
const (
	imageWidthIn  = 6
	imageHeightIn = 4.5
	tableStyle    = "LightList-Accent1"
)

// DOCXRenderer renders report content as an Office Open XML document.
type DOCXRenderer struct{}

// NewDOCXRenderer creates a DOCXRenderer.
func NewDOCXRenderer() *DOCXRenderer {
	return &DOCXRenderer{}
}

// Format implements core.Renderer.
func (r *DOCXRenderer) Format() core.OutputFormat { return core.FormatDOCX }

// Render implements core.Renderer.
func (r *DOCXRenderer) Render(ctx context.Context, content core.ReportContent, req core.ReportRequest) (core.GeneratedReport, error) {
	if err := ctx.Err(); err != nil {
		return core.GeneratedReport{}, err
	}
	body, err := buildDOCX(content)
	if err != nil {
		return core.GeneratedReport{}, err
	}
	return newReport(req, content, core.FormatDOCX, ".docx", MIMEDOCX, body), nil
}

// buildDOCX lays content out in a scratch directory: godocx reads pictures
// from and saves packages to the filesystem.
func buildDOCX(content core.ReportContent) ([]byte, error) {
	dir, err := os.MkdirTemp("", "reportpipe-docx-")
	if err != nil {
		return nil, fmt.Errorf("creating docx scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("creating docx document: %w", err)
	}

	paragraph := func(text string) {
		if text != "" {
			doc.AddParagraph(text)
		}
	}
	italic := func(text string) {
		if text != "" {
			doc.AddParagraph("").AddText(text).Italic(true)
		}
	}
	// table writes a header row followed by rows padded to the header width.
	table := func(headers []string, rows [][]string) {
		if len(headers) == 0 {
			return
		}
		tbl := doc.AddTable()
		tbl.Style(tableStyle)
		hdr := tbl.AddRow()
		for _, h := range headers {
			hdr.AddCell().AddParagraph(Clean(h))
		}
		for _, r := range rows {
			row := tbl.AddRow()
			for i := range headers {
				var cell string
				if i < len(r) {
					cell = Clean(r[i])
				}
				row.AddCell().AddParagraph(cell)
			}
		}
		paragraph(" ")
	}

	doc.AddHeading(Clean(content.Title), 0)
	table([]string{"Property", "Value"}, [][]string{
		{"Generated At", displayTime(content.GeneratedAt)},
		{"Source URL", content.SourceURL},
	})

	doc.AddHeading("Executive Summary", 1)
	paragraph(Clean(content.Summary))

	for _, s := range orderedSections(content.Sections) {
		if s.Kind == core.KindHeader {
			doc.AddHeading(firstNonEmpty(Clean(s.Title), Clean(s.Content)), 1)
			continue
		}
		if t := Clean(s.Title); t != "" {
			doc.AddHeading(t, 2)
		}
		text := Clean(s.Content)
		if text == "" {
			continue
		}
		switch s.Kind {
		case core.KindBullet:
			doc.AddParagraph(text).Style("List Bullet")
		case core.KindQuote:
			doc.AddParagraph(text).Style("Intense Quote")
		default:
			doc.AddParagraph(text)
		}
	}

	if len(content.Charts) > 0 {
		doc.AddHeading("Charts and Visualizations", 1)
		for i, c := range content.Charts {
			doc.AddHeading(Clean(c.Title), 2)
			if len(c.Image) > 0 {
				path := filepath.Join(dir, "chart"+strconv.Itoa(i+1)+".png")
				if err := os.WriteFile(path, c.Image, 0o600); err != nil {
					return nil, fmt.Errorf("staging chart image: %w", err)
				}
				if _, err := doc.AddPicture(path, units.Inch(imageWidthIn), units.Inch(imageHeightIn)); err != nil {
					return nil, fmt.Errorf("embedding chart image: %w", err)
				}
			}
			italic(Clean(c.Description))
		}
	}

	if len(content.Tables) > 0 {
		doc.AddHeading("Data Tables", 1)
		for _, t := range content.Tables {
			doc.AddHeading(Clean(t.Title), 2)
			italic(Clean(t.Description))
			table(t.Headers, t.Rows)
		}
	}

	out := filepath.Join(dir, "report.docx")
	if err := doc.SaveTo(out); err != nil {
		return nil, fmt.Errorf("saving docx package: %w", err)
	}
	return os.ReadFile(out)
}
