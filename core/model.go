package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Values in this file flow between pipeline stages. A stage never mutates
// what it received; enrichment works on copies (see the Clone methods).

// DataPoint is one observed numeric fact. Optional fields are nil/empty when absent.
type DataPoint struct {
	Label       string     `json:"label,omitempty"`
	Value       *float64   `json:"value,omitempty"`
	Category    string     `json:"category,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Float returns a pointer suitable for DataPoint.Value, or nil when v is
// NaN or ±Inf. Non-finite values are never stored.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// SectionKind is the structural role of a TextSection.
type SectionKind string

const (
	KindHeader     SectionKind = "HEADER"
	KindParagraph  SectionKind = "PARAGRAPH"
	KindBullet     SectionKind = "BULLET_POINT"
	KindQuote      SectionKind = "QUOTE"
	KindConclusion SectionKind = "CONCLUSION"
)

// TextSection is one unit of narrative content. Order is the rendering sort key.
type TextSection struct {
	Title   string      `json:"title,omitempty"`
	Content string      `json:"content"`
	Order   int         `json:"order"`
	Kind    SectionKind `json:"type"`
}

// DataType is the coarse content category of an extraction.
type DataType string

const (
	Numerical   DataType = "NUMERICAL"
	Categorical DataType = "CATEGORICAL"
	Mixed       DataType = "MIXED"
	TextOnly    DataType = "TEXT_ONLY"
	TableData   DataType = "TABLE_DATA"
)

// DeriveDataType classifies purely from which collections are empty.
func DeriveDataType(points []DataPoint, sections []TextSection) DataType {
	switch {
	case len(points) == 0 && len(sections) > 0:
		return TextOnly
	case len(points) > 0 && len(sections) == 0:
		return Numerical
	case len(points) > 0 && len(sections) > 0:
		return Mixed
	default:
		return TextOnly
	}
}

// ExtractedData is the common intermediate model every extractor produces.
type ExtractedData struct {
	SourceURL    string         `json:"sourceUrl"`
	Title        string         `json:"title"`
	Summary      string         `json:"summary"`
	DataType     DataType       `json:"dataType"`
	DataPoints   []DataPoint    `json:"dataPoints"`
	TextSections []TextSection  `json:"textSections"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Clone returns a copy whose slices and metadata map are not shared with d.
func (d ExtractedData) Clone() ExtractedData {
	out := d
	out.DataPoints = append([]DataPoint(nil), d.DataPoints...)
	out.TextSections = append([]TextSection(nil), d.TextSections...)
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// WithMetadata returns a copy of d with key set in its metadata.
func (d ExtractedData) WithMetadata(key string, value any) ExtractedData {
	out := d.Clone()
	if out.Metadata == nil {
		out.Metadata = make(map[string]any, 1)
	}
	out.Metadata[key] = value
	return out
}

// ChartType is a visualization kind.
type ChartType string

const (
	ChartBar       ChartType = "BAR"
	ChartPie       ChartType = "PIE"
	ChartLine      ChartType = "LINE"
	ChartScatter   ChartType = "SCATTER"
	ChartHistogram ChartType = "HISTOGRAM"
)

// Chart is one visualization of a set of data points. Image holds PNG bytes
// when a chart collaborator rasterized it.
type Chart struct {
	Title       string      `json:"title"`
	Type        ChartType   `json:"type"`
	XAxisLabel  string      `json:"xAxisLabel"`
	YAxisLabel  string      `json:"yAxisLabel"`
	DataPoints  []DataPoint `json:"dataPoints"`
	Image       []byte      `json:"imageData,omitempty"`
	Description string      `json:"description"`
}

// Table is a rectangular rendering of data points.
type Table struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
}

// ReportContent is the assembled unit handed to renderers.
type ReportContent struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary"`
	SourceURL   string        `json:"sourceUrl"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Sections    []TextSection `json:"sections"`
	Charts      []Chart       `json:"charts"`
	Tables      []Table       `json:"tables"`
}

// Clone deep-copies the content so concurrent renderers never share slices.
func (c ReportContent) Clone() ReportContent {
	out := c
	out.Sections = append([]TextSection(nil), c.Sections...)
	out.Charts = make([]Chart, len(c.Charts))
	for i, ch := range c.Charts {
		ch.DataPoints = append([]DataPoint(nil), ch.DataPoints...)
		ch.Image = append([]byte(nil), ch.Image...)
		out.Charts[i] = ch
	}
	out.Tables = make([]Table, len(c.Tables))
	for i, t := range c.Tables {
		t.Headers = append([]string(nil), t.Headers...)
		rows := make([][]string, len(t.Rows))
		for j, r := range t.Rows {
			rows[j] = append([]string(nil), r...)
		}
		t.Rows = rows
		out.Tables[i] = t
	}
	return out
}

// OutputFormat is a requested report output.
type OutputFormat string

const (
	FormatPDF      OutputFormat = "PDF"
	FormatDOCX     OutputFormat = "DOCX"
	FormatBoth     OutputFormat = "BOTH"
	FormatLaTeX    OutputFormat = "LATEX"
	FormatMarkdown OutputFormat = "MARKDOWN"
	FormatJSON     OutputFormat = "JSON"
)

// ParseOutputFormat accepts a case-insensitive format name. Empty means BOTH.
func ParseOutputFormat(s string) (OutputFormat, error) {
	if strings.TrimSpace(s) == "" {
		return FormatBoth, nil
	}
	f := OutputFormat(strings.ToUpper(strings.TrimSpace(s)))
	switch f {
	case FormatPDF, FormatDOCX, FormatBoth, FormatLaTeX, FormatMarkdown, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Expand returns the concrete formats to render. BOTH is PDF then DOCX.
func (f OutputFormat) Expand() []OutputFormat {
	if f == FormatBoth {
		return []OutputFormat{FormatPDF, FormatDOCX}
	}
	return []OutputFormat{f}
}

// ReportRequest describes one generation request. Immutable once created.
type ReportRequest struct {
	ID               string         `json:"id"`
	SourceURL        string         `json:"sourceUrl"`
	Title            string         `json:"title,omitempty"`
	Format           OutputFormat   `json:"format"`
	CustomParameters map[string]any `json:"customParameters,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// GeneratedReport is one rendered artifact.
type GeneratedReport struct {
	ID          string       `json:"id"`
	RequestID   string       `json:"requestId"`
	SourceURL   string       `json:"sourceUrl"`
	FileName    string       `json:"fileName"`
	Format      OutputFormat `json:"format"`
	Content     []byte       `json:"-"`
	MIMEType    string       `json:"mimeType"`
	Size        int64        `json:"sizeInBytes"`
	GeneratedAt time.Time    `json:"generatedAt"`
	DownloadURL string       `json:"downloadUrl,omitempty"`
}
