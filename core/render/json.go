package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// JSONRenderer writes the assembled content as indented JSON. Chart images
// are base64 encoded.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Format implements core.Renderer.
func (r *JSONRenderer) Format() core.OutputFormat { return core.FormatJSON }

// Render implements core.Renderer.
func (r *JSONRenderer) Render(ctx context.Context, content core.ReportContent, req core.ReportRequest) (core.GeneratedReport, error) {
	if err := ctx.Err(); err != nil {
		return core.GeneratedReport{}, err
	}
	content.Sections = orderedSections(content.Sections)
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return core.GeneratedReport{}, fmt.Errorf("marshaling JSON: %w", err)
	}
	return newReport(req, content, core.FormatJSON, ".json", MIMEJSON, data), nil
}
