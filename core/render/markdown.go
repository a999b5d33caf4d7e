package render

import (
	"context"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// MarkdownRenderer writes the report as Markdown text. Charts are listed by
// title and caption; tables become pipe tables.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Format implements core.Renderer.
func (r *MarkdownRenderer) Format() core.OutputFormat { return core.FormatMarkdown }

// Render implements core.Renderer.
func (r *MarkdownRenderer) Render(ctx context.Context, content core.ReportContent, req core.ReportRequest) (core.GeneratedReport, error) {
	if err := ctx.Err(); err != nil {
		return core.GeneratedReport{}, err
	}
	body := []byte(Markdown(content))
	return newReport(req, content, core.FormatMarkdown, ".md", MIMEMarkdown, body), nil
}

// Markdown lays content out as a Markdown document.
func Markdown(content core.ReportContent) string {
	var b strings.Builder

	b.WriteString("# " + oneLine(Clean(content.Title)) + "\n\n")
	b.WriteString("| Property | Value |\n|---|---|\n")
	b.WriteString("| Generated At | " + displayTime(content.GeneratedAt) + " |\n")
	b.WriteString("| Source URL | " + cell(content.SourceURL) + " |\n\n")

	b.WriteString("## Executive Summary\n\n")
	if s := Clean(content.Summary); s != "" {
		b.WriteString(s + "\n\n")
	}

	for _, s := range orderedSections(content.Sections) {
		title, text := oneLine(Clean(s.Title)), Clean(s.Content)
		if s.Kind == core.KindHeader {
			b.WriteString("## " + firstNonEmpty(title, oneLine(text)) + "\n\n")
			continue
		}
		if title != "" {
			b.WriteString("### " + title + "\n\n")
		}
		switch s.Kind {
		case core.KindBullet:
			b.WriteString("- " + text + "\n\n")
		case core.KindQuote:
			b.WriteString("> " + strings.ReplaceAll(text, "\n", "\n> ") + "\n\n")
		default:
			b.WriteString(text + "\n\n")
		}
	}

	if len(content.Charts) > 0 {
		b.WriteString("## Charts and Visualizations\n\n")
		for _, c := range content.Charts {
			b.WriteString("### " + oneLine(Clean(c.Title)) + "\n\n")
			b.WriteString("_" + Clean(c.Description) + "_\n\n")
		}
	}

	if len(content.Tables) > 0 {
		b.WriteString("## Data Tables\n\n")
		for _, t := range content.Tables {
			b.WriteString("### " + oneLine(Clean(t.Title)) + "\n\n")
			if t.Description != "" {
				b.WriteString(Clean(t.Description) + "\n\n")
			}
			writePipeTable(&b, t)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writePipeTable(b *strings.Builder, t core.Table) {
	if len(t.Headers) == 0 {
		return
	}
	b.WriteString("|")
	for _, h := range t.Headers {
		b.WriteString(" " + cell(h) + " |")
	}
	b.WriteString("\n|" + strings.Repeat("---|", len(t.Headers)) + "\n")
	for _, row := range t.Rows {
		b.WriteString("|")
		for j := range t.Headers {
			v := ""
			if j < len(row) {
				v = row[j]
			}
			b.WriteString(" " + cell(v) + " |")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// cell makes text safe inside a pipe table cell.
func cell(s string) string {
	return strings.ReplaceAll(oneLine(Clean(s)), "|", `\|`)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
