// Package controller holds the resource list controller: it loads one
// entity type through a store.Adapter, keeps the full record set and a
// filtered view of it, and applies confirmed mutations to that set.
package controller

import (
	"context"
	"errors"
	"slices"
	"sync"

	"vanta/internal/core"
	"vanta/internal/log"
	"vanta/internal/store"
)

// Status is the controller's lifecycle state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

var (
	// ErrBusy is returned when another operation is still in flight.
	ErrBusy = errors.New("controller: another operation is in flight")
	// ErrNotLoaded is returned by mutations outside the Loaded state.
	ErrNotLoaded = errors.New("controller: records are not loaded")
)

// Snapshot is the state handed to a presentation surface. Slices are copies.
type Snapshot[T any] struct {
	Records []T
	View    []T
	Status  Status
	// Err is the failure of the last Load; set only in StatusError.
	Err error
	// OpErr is the failure of the last mutation or filter change.
	OpErr  error
	Filter Filter
	Busy   bool
}

// Controller owns one record set. It runs at most one adapter call at a
// time; concurrent callers get ErrBusy instead of queueing.
type Controller[T core.Record[T]] struct {
	adapter store.Adapter[T]
	schema  core.Schema[T]
	list    store.ListOptions
	logger  *log.Logger

	mu      sync.Mutex
	status  Status
	busy    bool
	records []T
	view    []T
	filter  Filter
	err     error
	opErr   error
}

type Option[T core.Record[T]] func(*Controller[T])

func WithLogger[T core.Record[T]](l *log.Logger) Option[T] {
	return func(c *Controller[T]) { c.logger = l.WithComponent(log.ComponentController) }
}

// WithListOptions sets the paging passed to every Load.
func WithListOptions[T core.Record[T]](o store.ListOptions) Option[T] {
	return func(c *Controller[T]) { c.list = o }
}

func New[T core.Record[T]](adapter store.Adapter[T], schema core.Schema[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		adapter: adapter,
		schema:  schema,
		logger:  log.Nop(),
		status:  StatusIdle,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Schema returns the descriptor the controller filters and exports with.
func (c *Controller[T]) Schema() core.Schema[T] { return c.schema }

// Load replaces the record set with the adapter's full list. On failure the
// set and view are cleared and the controller enters StatusError.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.status = StatusLoading
	c.err = nil
	c.opErr = nil
	c.mu.Unlock()

	recs, err := c.adapter.List(ctx, c.list)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		c.status = StatusError
		c.err = err
		c.records = nil
		c.view = nil
		c.logger.WarnContext(ctx, "Load failed",
			log.FieldResource, c.schema.Resource,
			log.FieldErrorKind, core.ErrorKind(err),
			log.FieldError, err)
		return err
	}
	c.status = StatusLoaded
	c.records = slices.Clone(recs)
	c.view = Apply(c.schema, c.records, c.filter)
	c.logger.DebugContext(ctx, "Records loaded",
		log.FieldResource, c.schema.Resource,
		log.FieldCount, len(c.records))
	return nil
}

// SetFilter recomputes the view. It never touches the record set.
func (c *Controller[T]) SetFilter(f Filter) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.status != StatusLoaded {
		return ErrNotLoaded
	}
	if err := f.Check(c.schema.Kinds, c.schema.Kind != nil, c.schema.Date != nil); err != nil {
		c.opErr = err
		return err
	}
	c.opErr = nil
	c.filter = f
	c.view = Apply(c.schema, c.records, f)
	return nil
}

// Add persists a draft and splices the canonical record into the set.
func (c *Controller[T]) Add(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := c.begin(); err != nil {
		return zero, err
	}
	if draft.RecordID() != 0 {
		return zero, c.finish(ctx, log.OpCreate, &core.ValidationError{Field: "id", Reason: "must be empty on a new record"})
	}
	rec, err := c.adapter.Create(ctx, draft)
	if err != nil {
		return zero, c.finish(ctx, log.OpCreate, err)
	}
	c.splice(rec)
	return rec, c.finish(ctx, log.OpCreate, nil)
}

// Edit replaces the record at id and splices the result into the set.
func (c *Controller[T]) Edit(ctx context.Context, id int64, rec T) (T, error) {
	var zero T
	if err := c.begin(); err != nil {
		return zero, err
	}
	if id <= 0 {
		return zero, c.finish(ctx, log.OpUpdate, &core.ValidationError{Field: "id", Reason: "must be positive"})
	}
	out, err := c.adapter.Update(ctx, id, rec.WithID(id))
	if err != nil {
		return zero, c.finish(ctx, log.OpUpdate, err)
	}
	c.splice(out)
	return out, c.finish(ctx, log.OpUpdate, nil)
}

// Remove deletes the record at id and drops it from the set.
func (c *Controller[T]) Remove(ctx context.Context, id int64) error {
	if err := c.begin(); err != nil {
		return err
	}
	if err := c.adapter.Delete(ctx, id); err != nil {
		return c.finish(ctx, log.OpDelete, err)
	}
	c.mu.Lock()
	for i, r := range c.records {
		if r.RecordID() == id {
			c.records = slices.Delete(c.records, i, i+1)
			break
		}
	}
	c.view = Apply(c.schema, c.records, c.filter)
	c.mu.Unlock()
	return c.finish(ctx, log.OpDelete, nil)
}

// ExportCSV renders the current view using the schema's columns.
func (c *Controller[T]) ExportCSV() string {
	c.mu.Lock()
	view := slices.Clone(c.view)
	c.mu.Unlock()
	rows := make([][]string, len(view))
	for i, r := range view {
		rows[i] = c.schema.Row(r)
	}
	return EncodeCSV(c.schema.Header(), rows)
}

func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{
		Records: slices.Clone(c.records),
		View:    slices.Clone(c.view),
		Status:  c.status,
		Err:     c.err,
		OpErr:   c.opErr,
		Filter:  c.filter,
		Busy:    c.busy,
	}
}

// begin claims the controller for a mutation.
func (c *Controller[T]) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	if c.status != StatusLoaded {
		return ErrNotLoaded
	}
	c.busy = true
	c.opErr = nil
	return nil
}

// finish releases the controller and records err as the operation's outcome.
func (c *Controller[T]) finish(ctx context.Context, op string, err error) error {
	c.mu.Lock()
	c.busy = false
	c.opErr = err
	c.mu.Unlock()
	if err != nil {
		c.logger.WarnContext(ctx, "Operation failed",
			log.FieldOperation, op,
			log.FieldResource, c.schema.Resource,
			log.FieldErrorKind, core.ErrorKind(err),
			log.FieldError, err)
	}
	return err
}

// splice replaces the record with the same id or appends it.
func (c *Controller[T]) splice(rec T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	replaced := false
	for i, r := range c.records {
		if r.RecordID() == rec.RecordID() {
			c.records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		c.records = append(c.records, rec)
	}
	c.view = Apply(c.schema, c.records, c.filter)
}
