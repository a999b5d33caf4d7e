// Package assemble merges extracted data and request options into the
// ReportContent handed to renderers.
package assemble

import (
	"strconv"
	"strings"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/chart"
	"github.com/google/uuid"
)

// tableHeaders are the fixed columns of the data summary table.
var tableHeaders = []string{"Label", "Value", "Category"}

// now and newID are replaced in tests.
var (
	now   = func() time.Time { return time.Now().UTC() }
	newID = func() string { return uuid.Must(uuid.NewV7()).String() }
)

// Assemble builds report content. It adds one primary chart when data has
// points and one table when the data is tabular. The request title wins over
// the extracted title.
func Assemble(data core.ExtractedData, req core.ReportRequest) core.ReportContent {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = data.Title
	}

	content := core.ReportContent{
		ID:          newID(),
		Title:       title,
		Summary:     data.Summary,
		SourceURL:   data.SourceURL,
		GeneratedAt: now(),
		Sections:    append([]core.TextSection(nil), data.TextSections...),
	}
	if content.SourceURL == "" {
		content.SourceURL = req.SourceURL
	}

	if len(data.DataPoints) > 0 {
		content.Charts = append(content.Charts, primaryChart(data.DataPoints))
	}
	if data.DataType == core.TableData {
		content.Tables = append(content.Tables, summaryTable(data.DataPoints))
	}
	return content
}

// AttachImages copies the image of the first generated chart whose type
// matches each assembled chart that has no image yet.
func AttachImages(content core.ReportContent, generated []core.Chart) core.ReportContent {
	out := content.Clone()
	for i, c := range out.Charts {
		if len(c.Image) > 0 {
			continue
		}
		for _, g := range generated {
			if g.Type == c.Type && len(g.Image) > 0 {
				out.Charts[i].Image = append([]byte(nil), g.Image...)
				break
			}
		}
	}
	return out
}

func primaryChart(points []core.DataPoint) core.Chart {
	x, y := chart.AxisLabels(points)
	return core.Chart{
		Title:       "Data Analysis",
		Type:        chart.Suggest(points),
		XAxisLabel:  x,
		YAxisLabel:  y,
		DataPoints:  append([]core.DataPoint(nil), points...),
		Description: "Generated chart based on extracted data",
	}
}

// summaryTable has exactly one row per point; missing fields are empty strings.
func summaryTable(points []core.DataPoint) core.Table {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		value := ""
		if p.Value != nil {
			value = strconv.FormatFloat(*p.Value, 'f', -1, 64)
		}
		rows = append(rows, []string{p.Label, value, p.Category})
	}
	return core.Table{
		Title:       "Data Summary",
		Description: "Extracted data in tabular format",
		Headers:     append([]string(nil), tableHeaders...),
		Rows:        rows,
	}
}
