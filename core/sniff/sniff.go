// Package sniff classifies a raw payload as JSON, HTML, CSV or plain text
// using cheap structural checks. The first matching rule wins; there is no
// scoring.
package sniff

import (
	"encoding/json"
	"strings"
)

// Format is the detected shape of a raw payload.
type Format string

const (
	JSON      Format = "json"
	HTML      Format = "html"
	CSV       Format = "csv"
	PlainText Format = "text"
)

// Sniff returns the format of raw. Rule order is significant: a full JSON
// parse runs first, then the HTML check, then the CSV check.
func Sniff(raw string) Format {
	if json.Valid([]byte(raw)) {
		return JSON
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "<") && strings.Contains(raw, "</") {
		return HTML
	}
	lines := Lines(raw)
	if len(lines) >= 2 && strings.Contains(lines[0], ",") {
		return CSV
	}
	return PlainText
}

// Lines splits raw on "\n" and drops trailing empty lines, so a payload
// ending in a newline does not gain a phantom last row.
func Lines(raw string) []string {
	lines := strings.Split(raw, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
