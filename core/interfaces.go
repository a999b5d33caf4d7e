// Package core defines the collaborator interfaces of the report pipeline.
// The orchestrator depends only on these; every concrete implementation
// lives in a sub-package and is chosen at wiring time.
package core

import "context"

// Fetcher retrieves the raw payload behind a URL.
type Fetcher interface {
	FetchRawData(ctx context.Context, url string) (string, error)
}

// Analyzer turns a raw payload into structured data. On success it always
// returns a usable value.
type Analyzer interface {
	AnalyzeAndStructure(ctx context.Context, raw string, sourceURL string) (ExtractedData, error)
}

// ChartGenerator derives (and usually rasterizes) charts for extracted data.
type ChartGenerator interface {
	GenerateCharts(ctx context.Context, data ExtractedData) ([]Chart, error)
}

// Renderer converts assembled content into one output format.
type Renderer interface {
	Render(ctx context.Context, content ReportContent, req ReportRequest) (GeneratedReport, error)
	// Format returns the output format this renderer produces.
	Format() OutputFormat
}

// Store persists generated reports.
type Store interface {
	// Save stores report and returns the stored copy with its DownloadURL set.
	Save(ctx context.Context, report GeneratedReport) (GeneratedReport, error)
	FindByID(ctx context.Context, id string) (GeneratedReport, error)
	FindBySourceURL(ctx context.Context, sourceURL string) ([]GeneratedReport, error)
	Delete(ctx context.Context, id string) error
}

// Notifier announces pipeline outcomes.
type Notifier interface {
	NotifySuccess(ctx context.Context, report GeneratedReport)
	NotifyFailure(ctx context.Context, requestID string, message string)
}

// Normalizer converts an HTML fragment into Markdown.
type Normalizer interface {
	Normalize(html string) (string, error)
}
