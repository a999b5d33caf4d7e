package extract

import (
	"unicode/utf8"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// fallbackExcerpt is the number of characters kept from the raw payload.
const fallbackExcerpt = 1000

// Fallback is the minimal extraction used when a branch fails: the raw
// payload, truncated, as a single paragraph.
func Fallback(raw string, sourceURL string) core.ExtractedData {
	return core.ExtractedData{
		SourceURL: sourceURL,
		Title:     "Data Analysis",
		Summary:   "Basic data extraction performed",
		DataType:  core.TextOnly,
		TextSections: []core.TextSection{{
			Content: truncateRunes(raw, fallbackExcerpt),
			Order:   0,
			Kind:    core.KindParagraph,
		}},
		Metadata: map[string]any{
			"originalLength": utf8.RuneCountInString(raw),
		},
	}
}
