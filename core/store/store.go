// Package store holds the report persistence collaborators: an in-memory
// store and a SQL store backed by SQLite or Postgres.
package store

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// DownloadURL is the HTTP path a stored report can be fetched from.
func DownloadURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/api/reports/" + id + "/download"
}

// Open returns the store named by driver: "memory", "sqlite" or "postgres".
func Open(driver, dsn, baseURL string) (core.Store, error) {
	switch driver {
	case "", "memory":
		return NewMemory(baseURL), nil
	case "sqlite", "postgres":
		s, err := OpenSQL(driver, dsn, baseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func copyReport(r core.GeneratedReport) core.GeneratedReport {
	r.Content = append([]byte(nil), r.Content...)
	return r
}
