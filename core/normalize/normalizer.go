// Package normalize implements the Normalizer interface.
// It converts HTML into Markdown, the text form sent to the language model
// when enriching a report.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct {
	domain string
}

// New creates a MarkdownNormalizer. When domain is set, relative links and
// image sources are resolved against it.
func New(domain string) *MarkdownNormalizer {
	return &MarkdownNormalizer{domain: domain}
}

// Normalize converts an HTML fragment into Markdown with at most one blank
// line between blocks.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if n.domain != "" {
		opts = append(opts, converter.WithDomain(n.domain))
	}
	markdown, err := htmltomarkdown.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(markdown, "\n\n")), nil
}
