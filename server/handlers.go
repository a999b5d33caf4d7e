package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxRequestBody = 1 << 20

// GenerateRequest is the body of POST /api/reports/generate.
type GenerateRequest struct {
	SourceURL        string         `json:"sourceUrl"`
	Title            string         `json:"title,omitempty"`
	Format           string         `json:"format,omitempty"`
	CustomParameters map[string]any `json:"customParameters,omitempty"`
}

// GenerateResponse reports the outcome of a generation request.
type GenerateResponse struct {
	RequestID string       `json:"requestId"`
	Status    string       `json:"status"`
	Message   string       `json:"message"`
	Reports   []ReportInfo `json:"reports,omitempty"`
}

// ReportInfo describes a stored report without its content.
type ReportInfo struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	Format      string    `json:"format"`
	SizeInBytes int64     `json:"sizeInBytes"`
	GeneratedAt time.Time `json:"generatedAt"`
	DownloadURL string    `json:"downloadUrl"`
}

func infoOf(r core.GeneratedReport) ReportInfo {
	return ReportInfo{
		ID:          r.ID,
		FileName:    r.FileName,
		Format:      string(r.Format),
		SizeInBytes: r.Size,
		GeneratedAt: r.GeneratedAt,
		DownloadURL: r.DownloadURL,
	}
}

func infosOf(reports []core.GeneratedReport) []ReportInfo {
	out := make([]ReportInfo, 0, len(reports))
	for _, r := range reports {
		out = append(out, infoOf(r))
	}
	return out
}

func newRequestID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if body.SourceURL == "" {
		writeError(w, http.StatusBadRequest, errors.New("sourceUrl is required"))
		return
	}
	if u, err := url.Parse(body.SourceURL); err != nil || u.Scheme == "" || u.Host == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("sourceUrl %q must be an absolute URL", body.SourceURL))
		return
	}
	format, err := core.ParseOutputFormat(body.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req := core.ReportRequest{
		ID:               s.newID(),
		SourceURL:        body.SourceURL,
		Title:            body.Title,
		Format:           format,
		CustomParameters: body.CustomParameters,
		CreatedAt:        s.now().UTC(),
	}
	log := logger.Log.WithFields(logrus.Fields{"request_id": req.ID, "url": req.SourceURL})
	log.Info("Received report generation request")

	reports, err := s.gen.Generate(r.Context(), req)
	if err != nil {
		log.Errorf("Failed to generate report: %v", err)
		writeJSON(w, http.StatusInternalServerError, GenerateResponse{
			RequestID: req.ID,
			Status:    "FAILED",
			Message:   "Failed to generate report: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		RequestID: req.ID,
		Status:    "SUCCESS",
		Message:   "Reports generated successfully",
		Reports:   infosOf(reports),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	report, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, infoOf(report))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	report, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", report.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.Content); err != nil {
		logger.Log.WithField("report_id", report.ID).Warnf("Writing download: %v", err)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.reports.Delete(r.Context(), chi.URLParam(r, "reportID")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBySource(w http.ResponseWriter, r *http.Request) {
	sourceURL := r.URL.Query().Get("sourceUrl")
	if sourceURL == "" {
		writeError(w, http.StatusBadRequest, errors.New("sourceUrl query parameter is required"))
		return
	}
	reports, err := s.reports.BySource(r.Context(), sourceURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, infosOf(reports))
}

// lookup loads the report named in the path and writes 404/500 itself.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (core.GeneratedReport, bool) {
	report, err := s.reports.Get(r.Context(), chi.URLParam(r, "reportID"))
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
		return core.GeneratedReport{}, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return core.GeneratedReport{}, false
	}
	return report, true
}
