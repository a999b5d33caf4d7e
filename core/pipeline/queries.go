package pipeline

import (
	"context"
	"fmt"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// Queries is the read and delete side of report storage used by adapters.
type Queries struct {
	store core.Store
}

// NewQueries creates a Queries over store.
func NewQueries(store core.Store) *Queries {
	return &Queries{store: store}
}

// Get returns one report. Unknown ids wrap core.ErrNotFound.
func (q *Queries) Get(ctx context.Context, id string) (core.GeneratedReport, error) {
	r, err := q.store.FindByID(ctx, id)
	if err != nil {
		return core.GeneratedReport{}, fmt.Errorf("getting report %s: %w", id, err)
	}
	return r, nil
}

// BySource lists reports generated from sourceURL in save order.
func (q *Queries) BySource(ctx context.Context, sourceURL string) ([]core.GeneratedReport, error) {
	rs, err := q.store.FindBySourceURL(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("listing reports for %s: %w", sourceURL, err)
	}
	return rs, nil
}

// Delete removes a report. Deleting an unknown id succeeds.
func (q *Queries) Delete(ctx context.Context, id string) error {
	if err := q.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting report %s: %w", id, err)
	}
	return nil
}
