package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/reportpipe/core"
	"golang.org/x/net/html"
)

const (
	htmlTitleDefault = "Extracted Report"
	categoryTable    = "Table"
)

var (
	// textBlocks matches the elements that become sections, in document order.
	textBlocks = cascadia.MustCompile("p, h1, h2, h3, h4, h5, h6")

	nonNumeric = regexp.MustCompile(`[^0-9.\-]`)
)

// HTMLExtractor walks an HTML document: table rows become data points,
// paragraphs and headings become sections, and a second pass scans the
// rendered text for free-standing numbers.
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTMLExtractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract implements Extractor.
func (e *HTMLExtractor) Extract(raw string, sourceURL string) (core.ExtractedData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return core.ExtractedData{}, fmt.Errorf("parsing html: %w", err)
	}

	points := tablePoints(doc)
	sections := textSections(doc)

	text := renderedText(doc)
	points = append(points, scanNumbers(text)...)

	summary := fmt.Sprintf("HTML document with %d paragraphs, %d tables, and %d links",
		doc.Find("p").Length(),
		doc.Find("table").Length(),
		doc.Find("a").Length(),
	)

	return core.ExtractedData{
		SourceURL:    sourceURL,
		Title:        htmlTitle(doc),
		Summary:      summary,
		DataType:     core.DeriveDataType(points, sections),
		DataPoints:   points,
		TextSections: sections,
		Metadata: map[string]any{
			"sourceFormat": "html",
			"wordCount":    len(strings.Fields(text)),
		},
	}, nil
}

// htmlTitle prefers <title>, then the first h1 with text.
func htmlTitle(doc *goquery.Document) string {
	if t := normalizeSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if h := normalizeSpace(doc.Find("h1").First().Text()); h != "" {
		return h
	}
	return htmlTitleDefault
}

// tablePoints reads every table row after the first. A row with at least two
// td cells is a point when its second cell parses as a number.
func tablePoints(doc *goquery.Document) []core.DataPoint {
	var points []core.DataPoint
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			cells := row.Find("td")
			if cells.Length() < 2 {
				return
			}
			cleaned := nonNumeric.ReplaceAllString(cells.Eq(1).Text(), "")
			v, err := strconv.ParseFloat(cleaned, 64)
			if err != nil {
				return
			}
			value := core.Float(v)
			if value == nil {
				return
			}
			points = append(points, core.DataPoint{
				Label:    normalizeSpace(cells.Eq(0).Text()),
				Value:    value,
				Category: categoryTable,
			})
		})
	})
	return points
}

// textSections turns paragraphs and headings into sections with one running
// order counter across all of them.
func textSections(doc *goquery.Document) []core.TextSection {
	var sections []core.TextSection
	doc.FindMatcher(textBlocks).Each(func(_ int, s *goquery.Selection) {
		text := normalizeSpace(s.Text())
		if text == "" {
			return
		}
		section := core.TextSection{
			Content: text,
			Order:   len(sections),
			Kind:    core.KindParagraph,
		}
		if goquery.NodeName(s) != "p" {
			section.Kind = core.KindHeader
			section.Title = text
		}
		sections = append(sections, section)
	})
	return sections
}

// renderedText is the visible text of the page, one space between text nodes.
func renderedText(doc *goquery.Document) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return normalizeSpace(strings.Join(parts, " "))
}
