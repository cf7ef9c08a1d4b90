// Package services orchestrates record mutations across the persistence
// adapter, the list cache and the change-event publisher.
package services

import (
	"context"
	"fmt"

	"vanta/internal/amqp"
	"vanta/internal/controller"
	"vanta/internal/core"
	"vanta/internal/log"
	"vanta/internal/store"
)

// Publisher announces committed mutations.
type Publisher interface {
	PublishChange(ctx context.Context, ev amqp.ChangeEvent) error
}

// Invalidator drops cached list responses for a resource.
type Invalidator interface {
	DeletePrefix(prefix string) int
}

// Exporter renders a whole resource as a table.
type Exporter interface {
	Resource() string
	Export(ctx context.Context) (header []string, rows [][]string, err error)
}

// RecordService wraps the adapter of one entity type. The adapter write is
// authoritative: publish and invalidation failures are logged, never
// returned.
type RecordService[T core.Record[T]] struct {
	adapter   store.Adapter[T]
	schema    core.Schema[T]
	publisher Publisher
	cache     Invalidator
	logger    *log.Logger
}

type Option[T core.Record[T]] func(*RecordService[T])

func WithPublisher[T core.Record[T]](p Publisher) Option[T] {
	return func(s *RecordService[T]) { s.publisher = p }
}

func WithInvalidator[T core.Record[T]](c Invalidator) Option[T] {
	return func(s *RecordService[T]) { s.cache = c }
}

func WithLogger[T core.Record[T]](l *log.Logger) Option[T] {
	return func(s *RecordService[T]) { s.logger = l }
}

func NewRecordService[T core.Record[T]](adapter store.Adapter[T], schema core.Schema[T], opts ...Option[T]) *RecordService[T] {
	s := &RecordService[T]{adapter: adapter, schema: schema, logger: log.Nop()}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With(log.FieldResource, schema.Resource)
	return s
}

func (s *RecordService[T]) Resource() string { return s.schema.Resource }

func (s *RecordService[T]) Schema() core.Schema[T] { return s.schema }

func (s *RecordService[T]) List(ctx context.Context, opts store.ListOptions) ([]T, error) {
	return s.adapter.List(ctx, opts)
}

func (s *RecordService[T]) Get(ctx context.Context, id int64) (T, error) {
	return s.adapter.Get(ctx, id)
}

// Create validates and persists a draft. A draft carrying an id is rejected.
func (s *RecordService[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if draft.RecordID() != 0 {
		return zero, &core.ValidationError{Field: "id", Reason: "must not be set on create"}
	}
	if err := draft.Validate(); err != nil {
		return zero, err
	}
	rec, err := s.adapter.Create(ctx, draft)
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", s.schema.Resource, err)
	}
	s.changed(ctx, amqp.ActionCreated, rec.RecordID())
	return rec, nil
}

// Update replaces the record at id.
func (s *RecordService[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	var zero T
	if id <= 0 {
		return zero, &core.ValidationError{Field: "id", Reason: "must be positive"}
	}
	if rid := rec.RecordID(); rid != 0 && rid != id {
		return zero, &core.ValidationError{Field: "id", Reason: "does not match the path"}
	}
	rec = rec.WithID(id)
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	out, err := s.adapter.Update(ctx, id, rec)
	if err != nil {
		return zero, fmt.Errorf("update %s: %w", s.schema.Resource, err)
	}
	s.changed(ctx, amqp.ActionUpdated, id)
	return out, nil
}

func (s *RecordService[T]) Delete(ctx context.Context, id int64) error {
	if err := s.adapter.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", s.schema.Resource, err)
	}
	s.changed(ctx, amqp.ActionDeleted, id)
	return nil
}

// Export lists every record in schema order and renders it as rows.
func (s *RecordService[T]) Export(ctx context.Context) ([]string, [][]string, error) {
	recs, err := s.adapter.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("export %s: %w", s.schema.Resource, err)
	}
	view := controller.Apply(s.schema, recs, controller.Filter{})
	rows := make([][]string, len(view))
	for i, r := range view {
		rows[i] = s.schema.Row(r)
	}
	return s.schema.Header(), rows, nil
}

func (s *RecordService[T]) changed(ctx context.Context, action amqp.Action, id int64) {
	if s.cache != nil {
		s.cache.DeletePrefix(s.schema.Resource + "?")
	}
	s.logger.InfoContext(ctx, "Record changed", "action", action, log.FieldRecordID, id)

	if s.publisher == nil {
		return
	}
	ev := amqp.NewChangeEvent(s.schema.Resource, action, id)
	if err := s.publisher.PublishChange(ctx, ev); err != nil {
		// the write is already committed; the mirror catches up on resync
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			log.FieldRecordID, id,
			log.FieldError, err,
			log.FieldErrorKind, core.ErrorKind(err))
	}
}
