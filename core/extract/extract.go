// Package extract turns a raw payload into core.ExtractedData.
//
// One extractor exists per sniffed format:
//   - JSON: ordered tree walk, numeric leaves become data points
//   - HTML: DOM walk over tables, paragraphs and headings, plus a free-text
//     number scan
//   - CSV: one data point per parsable row
//   - plain text: paragraphs plus a free-text number scan
//
// Extraction never fails at the package boundary: Extract converts any
// branch error (or panic) into fallback data carrying a raw-text excerpt.
// Every function here is deterministic and safe for concurrent use.
package extract

import (
	"fmt"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/sniff"
	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/sirupsen/logrus"
)

// Extractor is implemented by each per-format branch.
type Extractor interface {
	Extract(raw string, sourceURL string) (core.ExtractedData, error)
}

// ForFormat returns the extractor branch for a sniffed format.
func ForFormat(f sniff.Format) Extractor {
	switch f {
	case sniff.JSON:
		return NewJSONExtractor()
	case sniff.HTML:
		return NewHTMLExtractor()
	case sniff.CSV:
		return NewCSVExtractor()
	default:
		return NewTextExtractor()
	}
}

// Extract sniffs raw, runs the matching branch and always returns a value.
func Extract(raw string, sourceURL string) core.ExtractedData {
	format := sniff.Sniff(raw)

	data, err := run(ForFormat(format), format, raw, sourceURL)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"url":    sourceURL,
			"format": format,
		}).Warnf("extraction failed, using fallback: %v", err)
		return Fallback(raw, sourceURL)
	}
	return data
}

// run invokes one branch, converting errors and panics into *core.ExtractionError.
func run(e Extractor, format sniff.Format, raw, sourceURL string) (data core.ExtractedData, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.ExtractionError{Format: string(format), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	data, err = e.Extract(raw, sourceURL)
	if err != nil {
		return core.ExtractedData{}, &core.ExtractionError{Format: string(format), Err: err}
	}
	return data, nil
}
