// Package output writes generated report artifacts to disk for the CLI.
// A single-URL run writes flat into the output directory; a site run
// (--all) mirrors each page's URL path as a directory.
package output

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// Writer writes report artifacts under OutputDir.
type Writer struct {
	OutputDir string
}

// New creates a Writer, creating outputDir if needed. An empty outputDir
// means the current working directory.
func New(outputDir string) (*Writer, error) {
	dir := outputDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &Writer{OutputDir: dir}, nil
}

// WriteReport writes report into the output directory under its FileName.
func (w *Writer) WriteReport(report core.GeneratedReport) (string, error) {
	return writeFile(filepath.Join(w.OutputDir, fileName(report)), report.Content)
}

// WriteAll writes report for --all mode, mirroring the page's URL path.
// Example: https://site.com/docs/intro -> ./docs/intro/<file name>
func (w *Writer) WriteAll(rawURL string, report core.GeneratedReport) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	urlPath := strings.Trim(parsed.Path, "/")
	if urlPath == "" {
		urlPath = "index"
	}
	segments := strings.Split(urlPath, "/")
	for i, seg := range segments {
		segments[i] = sanitize(seg)
	}

	dir := filepath.Join(append([]string{w.OutputDir}, segments...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return writeFile(filepath.Join(dir, fileName(report)), report.Content)
}

func writeFile(path string, data []byte) (string, error) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// fileName guards against reports without a name or with path separators.
func fileName(report core.GeneratedReport) string {
	name := filepath.Base(report.FileName)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return sanitize(report.ID) + "." + strings.ToLower(string(report.Format))
	}
	return name
}

// sanitize keeps ASCII letters, digits and '-'; anything else becomes '_'.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, s)
}
