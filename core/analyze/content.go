package analyze

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// noiseSelectors are removed before the fallback container lookup.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// MainContent isolates the readable body of an HTML page as an HTML
// fragment. Readability is tried first; when it fails or finds nothing the
// page is stripped of noise and its main container returned.
func MainContent(raw, sourceURL string) (string, error) {
	pageURL, _ := url.Parse(sourceURL)
	article, err := readability.FromReader(strings.NewReader(raw), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return article.Content, nil
	}
	return stripNoise(raw)
}

// stripNoise removes boilerplate elements and returns the first of <main>,
// <article> or <body>.
func stripNoise(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	for _, tag := range []string{"main", "article", "body"} {
		if sel := doc.Find(tag); sel.Length() > 0 {
			out, err := goquery.OuterHtml(sel.First())
			if err != nil {
				return "", fmt.Errorf("serializing content: %w", err)
			}
			return out, nil
		}
	}
	return "", fmt.Errorf("no content container found in HTML")
}
