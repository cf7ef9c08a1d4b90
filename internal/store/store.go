// Package store defines the persistence boundary for one entity type.
package store

import (
	"context"
	"time"

	"vanta/internal/core"
)

// Adapter lists, reads and mutates records of one entity type against a
// persistence medium. Every call is a single round trip; errors from the
// medium are surfaced wrapped around the core sentinels, never recovered.
type Adapter[T core.Record[T]] interface {
	List(ctx context.Context, opts ListOptions) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	// Create persists a draft and returns the canonical record with its
	// assigned id and timestamps.
	Create(ctx context.Context, draft T) (T, error)
	// Update replaces the record stored at id.
	Update(ctx context.Context, id int64, rec T) (T, error)
	// Delete removes the record; deleting a missing id fails with ErrNotFound.
	Delete(ctx context.Context, id int64) error
}

// ListOptions narrows a List call using the medium's own paging. A zero
// Limit means no limit.
type ListOptions struct {
	Skip  int
	Limit int
}

// Window applies the options to an already ordered slice.
func (o ListOptions) Window(n int) (lo, hi int) {
	lo = min(max(o.Skip, 0), n)
	hi = n
	if o.Limit > 0 && o.Limit < n-lo {
		hi = lo + o.Limit
	}
	return lo, hi
}

// Clock lets adapters stamp records deterministically in tests.
type Clock func() time.Time

// UTCNow is the default Clock.
func UTCNow() time.Time { return time.Now().UTC() }
