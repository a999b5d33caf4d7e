package extract

import (
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/sniff"
)

const (
	csvTitle        = "CSV Data Analysis"
	categoryDefault = "Default"
)

// CSVExtractor reads a header line plus label,value[,category] rows.
// Rows are split on bare commas; quoting is not interpreted.
type CSVExtractor struct{}

// NewCSVExtractor creates a CSVExtractor.
func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{}
}

// Extract implements Extractor. Fewer than two lines is treated as plain text.
func (e *CSVExtractor) Extract(raw string, sourceURL string) (core.ExtractedData, error) {
	lines := sniff.Lines(raw)
	if len(lines) < 2 {
		return NewTextExtractor().Extract(raw, sourceURL)
	}

	headers := strings.Split(lines[0], ",")
	var points []core.DataPoint
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			continue
		}
		value := core.Float(v)
		if value == nil {
			continue
		}
		category := categoryDefault
		if len(fields) > 2 {
			if c := strings.TrimSpace(fields[2]); c != "" {
				category = c
			}
		}
		points = append(points, core.DataPoint{
			Label:    strings.TrimSpace(fields[0]),
			Value:    value,
			Category: category,
		})
	}

	return core.ExtractedData{
		SourceURL:  sourceURL,
		Title:      csvTitle,
		Summary:    "CSV data with " + strconv.Itoa(len(points)) + " records",
		DataType:   core.TableData,
		DataPoints: points,
		Metadata: map[string]any{
			"sourceFormat": "csv",
			"rowCount":     len(lines) - 1,
			"columnCount":  len(headers),
		},
	}, nil
}
