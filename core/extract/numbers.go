package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gaurav-prasanna/reportpipe/core"
)

const (
	// maxTextNumbers caps the free-text number scan.
	maxTextNumbers = 50

	categoryText = "Text"
)

var numberPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)

// scanNumbers returns up to maxTextNumbers data points for free-standing
// number tokens in text, labelled "Number 1", "Number 2", ...
func scanNumbers(text string) []core.DataPoint {
	var points []core.DataPoint
	for _, tok := range numberPattern.FindAllString(text, -1) {
		if len(points) >= maxTextNumbers {
			break
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		value := core.Float(v)
		if value == nil {
			continue
		}
		points = append(points, core.DataPoint{
			Label:    fmt.Sprintf("Number %d", len(points)+1),
			Value:    value,
			Category: categoryText,
		})
	}
	return points
}

// normalizeSpace collapses whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n characters, appending "..." when cut.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
