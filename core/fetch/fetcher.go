// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests and returns the response body as text,
// whatever its content type.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (ReportPipe/1.0)"
	defaultMaxBytes  = 10 << 20
)

// HTTPFetcher fetches raw payloads via HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the whole-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBytes caps how much of a response body is read.
func WithMaxBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithClient replaces the HTTP client. The configured timeout is kept when
// the client has none.
func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		if c == nil {
			return
		}
		own := *c
		if own.Timeout == 0 {
			own.Timeout = f.client.Timeout
		}
		f.client = &own
	}
}

// New creates an HTTPFetcher with sensible defaults.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		maxBytes:  defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchRawData retrieves the body of url. A non-2xx status is an error.
// Bodies longer than the configured cap are truncated.
func (f *HTTPFetcher) FetchRawData(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"url":          url,
		"status":       resp.StatusCode,
		"bytes":        len(body),
		"content_type": resp.Header.Get("Content-Type"),
		"elapsed":      time.Since(start).Round(time.Millisecond),
	}).Debug("fetched")
	return string(body), nil
}
