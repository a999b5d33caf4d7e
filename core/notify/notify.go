// Package notify announces report outcomes.
package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/sirupsen/logrus"
)

// LogNotifier writes outcomes to the application log.
type LogNotifier struct {
	log *logrus.Logger
}

// NewLogNotifier creates a LogNotifier on the global logger.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Log}
}

// NotifySuccess implements core.Notifier.
func (n *LogNotifier) NotifySuccess(ctx context.Context, report core.GeneratedReport) {
	n.log.WithFields(logrus.Fields{
		"request_id": report.RequestID,
		"report_id":  report.ID,
		"format":     report.Format,
		"file":       report.FileName,
		"size":       report.Size,
		"download":   report.DownloadURL,
	}).Info("report generated")
}

// NotifyFailure implements core.Notifier.
func (n *LogNotifier) NotifyFailure(ctx context.Context, requestID string, message string) {
	n.log.WithFields(logrus.Fields{
		"request_id": requestID,
	}).Errorf("report generation failed: %s", message)
}

// Multi forwards every notification to each notifier in order.
type Multi []core.Notifier

// NotifySuccess implements core.Notifier.
func (m Multi) NotifySuccess(ctx context.Context, report core.GeneratedReport) {
	for _, n := range m {
		n.NotifySuccess(ctx, report)
	}
}

// NotifyFailure implements core.Notifier.
func (m Multi) NotifyFailure(ctx context.Context, requestID string, message string) {
	for _, n := range m {
		n.NotifyFailure(ctx, requestID, message)
	}
}

// Console reports outcomes as short progress lines for terminal users.
type Console struct {
	w io.Writer
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// NotifySuccess implements core.Notifier.
func (c *Console) NotifySuccess(ctx context.Context, report core.GeneratedReport) {
	fmt.Fprintf(c.w, "  • %s report ready (%s)\n", report.Format, humanize.Bytes(uint64(max(report.Size, 0))))
}

// NotifyFailure implements core.Notifier.
func (c *Console) NotifyFailure(ctx context.Context, requestID string, message string) {
	fmt.Fprintf(c.w, "  ✗ Error: %s\n", message)
}
