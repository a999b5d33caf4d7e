package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores for an unknown report id.
	ErrNotFound = errors.New("report not found")
	// ErrUnsupportedFormat is returned for an output format with no renderer.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// FetchError is a failed fetch of the request's source URL. Fatal per request.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError is a failure inside one extractor branch. It never leaves
// the extraction layer; it is converted into fallback data there.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// RenderError is a failed render task for one output format.
type RenderError struct {
	Format OutputFormat
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// GenerationError is the single error surfaced for a failed request.
// State names the pipeline state that was active when the run failed.
type GenerationError struct {
	RequestID string
	State     string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("report generation failed for request %s (%s): %v", e.RequestID, e.State, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
