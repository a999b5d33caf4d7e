package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gaurav-prasanna/reportpipe/core"
)

var blankLine = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)

// TextExtractor splits plain text into paragraphs and scans it for numbers.
type TextExtractor struct{}

// NewTextExtractor creates a TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract implements Extractor. The data type is always TEXT_ONLY.
func (e *TextExtractor) Extract(raw string, sourceURL string) (core.ExtractedData, error) {
	var sections []core.TextSection
	for _, para := range blankLine.Split(raw, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sections = append(sections, core.TextSection{
			Content: para,
			Order:   len(sections),
			Kind:    core.KindParagraph,
		})
	}

	return core.ExtractedData{
		SourceURL:    sourceURL,
		Title:        "Text Analysis",
		Summary:      "Extracted data from plain text",
		DataType:     core.TextOnly,
		DataPoints:   scanNumbers(raw),
		TextSections: sections,
		Metadata: map[string]any{
			"sourceFormat":   "text",
			"characterCount": utf8.RuneCountInString(raw),
		},
	}, nil
}
