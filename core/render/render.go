// Package render provides the report renderers: PDF, LaTeX-styled PDF,
// DOCX, Markdown and JSON. Each renderer turns one ReportContent into one
// GeneratedReport and keeps no state between calls.
package render

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// MIME types of the generated artifacts.
const (
	MIMEPDF      = "application/pdf"
	MIMEDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEMarkdown = "text/markdown; charset=utf-8"
	MIMEJSON     = "application/json"
)

// now and newID are replaced in tests.
var (
	now   = func() time.Time { return time.Now().UTC() }
	newID = func() string { return uuid.Must(uuid.NewV7()).String() }
)

var (
	strict     = bluemonday.StrictPolicy()
	unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// All returns one renderer per concrete output format.
func All() []core.Renderer {
	return []core.Renderer{
		NewPDFRenderer(),
		NewDOCXRenderer(),
		NewLaTeXRenderer(),
		NewMarkdownRenderer(),
		NewJSONRenderer(),
	}
}

// FileName builds "<title>_<yyyyMMdd_HHmmss><suffix>". The title is
// lower-cased with unsafe characters replaced by underscores.
func FileName(title string, at time.Time, suffix string) string {
	base := "report"
	if t := strings.TrimSpace(title); t != "" {
		base = unsafeName.ReplaceAllString(strings.ToLower(t), "_")
	}
	return base + "_" + at.Format("20060102_150405") + suffix
}

// newReport wraps rendered bytes in a GeneratedReport.
func newReport(req core.ReportRequest, content core.ReportContent, format core.OutputFormat, suffix, mime string, body []byte) core.GeneratedReport {
	at := now()
	return core.GeneratedReport{
		ID:          newID(),
		RequestID:   req.ID,
		SourceURL:   firstNonEmpty(req.SourceURL, content.SourceURL),
		FileName:    FileName(req.Title, at, suffix),
		Format:      format,
		Content:     body,
		MIMEType:    mime,
		Size:        int64(len(body)),
		GeneratedAt: at,
	}
}

// Clean strips markup and decodes entities so text can be laid out verbatim.
func Clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// orderedSections returns the sections sorted by Order.
func orderedSections(sections []core.TextSection) []core.TextSection {
	out := append([]core.TextSection(nil), sections...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// displayTime formats the generation time for document headers.
func displayTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
