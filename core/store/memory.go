package store

import (
	"context"
	"sync"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// Memory is a lock-guarded in-process store. Reports are copied on the way
// in and out so callers never share content buffers with it.
type Memory struct {
	baseURL string

	mu      sync.RWMutex
	reports map[string]core.GeneratedReport
	order   []string
}

// NewMemory creates an empty Memory store.
func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL: baseURL,
		reports: make(map[string]core.GeneratedReport),
	}
}

// Save implements core.Store. Saving an existing id replaces it in place.
func (m *Memory) Save(ctx context.Context, report core.GeneratedReport) (core.GeneratedReport, error) {
	if err := ctx.Err(); err != nil {
		return core.GeneratedReport{}, err
	}
	report = copyReport(report)
	report.DownloadURL = DownloadURL(m.baseURL, report.ID)

	m.mu.Lock()
	if _, exists := m.reports[report.ID]; !exists {
		m.order = append(m.order, report.ID)
	}
	m.reports[report.ID] = report
	m.mu.Unlock()

	return copyReport(report), nil
}

// FindByID implements core.Store.
func (m *Memory) FindByID(ctx context.Context, id string) (core.GeneratedReport, error) {
	m.mu.RLock()
	r, ok := m.reports[id]
	m.mu.RUnlock()
	if !ok {
		return core.GeneratedReport{}, core.ErrNotFound
	}
	return copyReport(r), nil
}

// FindBySourceURL implements core.Store. Results are in save order.
func (m *Memory) FindBySourceURL(ctx context.Context, sourceURL string) ([]core.GeneratedReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.GeneratedReport
	for _, id := range m.order {
		if r := m.reports[id]; r.SourceURL == sourceURL {
			out = append(out, copyReport(r))
		}
	}
	return out, nil
}

// Delete implements core.Store. Unknown ids are ignored.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reports[id]; !ok {
		return nil
	}
	delete(m.reports, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored reports.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}
