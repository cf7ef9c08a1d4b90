// Package worker keeps a spreadsheet copy of every resource up to date.
package worker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"vanta/internal/amqp"
	"vanta/internal/log"
	"vanta/internal/services"
	"vanta/internal/sheets"
)

// Mirror rewrites one sheet per resource. A resource's sheet is rewritten
// whole, so a missed or duplicated change event is repaired by the next one
// or by the periodic resync.
type Mirror struct {
	exporters   []services.Exporter
	writer      sheets.TableWriter
	concurrency int
	logger      *log.Logger

	locks  map[string]*sync.Mutex
	synced atomic.Int64
	failed atomic.Int64
}

type MirrorOption func(*Mirror)

// WithConcurrency bounds how many sheets a full resync writes at once.
func WithConcurrency(n int) MirrorOption {
	return func(m *Mirror) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

func WithLogger(l *log.Logger) MirrorOption {
	return func(m *Mirror) { m.logger = l }
}

func NewMirror(exporters []services.Exporter, writer sheets.TableWriter, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		exporters:   exporters,
		writer:      writer,
		concurrency: 4,
		logger:      log.Nop(),
		locks:       make(map[string]*sync.Mutex, len(exporters)),
	}
	for _, o := range opts {
		o(m)
	}
	m.logger = m.logger.WithComponent(log.ComponentWorker)
	for _, e := range exporters {
		m.locks[e.Resource()] = &sync.Mutex{}
	}
	return m
}

// Stats returns how many sheet syncs succeeded and failed so far.
func (m *Mirror) Stats() (synced, failed int64) {
	return m.synced.Load(), m.failed.Load()
}

func (m *Mirror) exporter(resource string) (services.Exporter, bool) {
	i := slices.IndexFunc(m.exporters, func(e services.Exporter) bool { return e.Resource() == resource })
	if i < 0 {
		return nil, false
	}
	return m.exporters[i], true
}

// SyncResource exports resource and rewrites its sheet. When the writer can
// also read, an unchanged sheet is left alone.
func (m *Mirror) SyncResource(ctx context.Context, resource string) error {
	e, ok := m.exporter(resource)
	if !ok {
		return fmt.Errorf("unknown resource %q", resource)
	}

	mu := m.locks[resource]
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	header, rows, err := e.Export(ctx)
	if err != nil {
		m.failed.Add(1)
		return err
	}

	if r, ok := m.writer.(sheets.TableReader); ok {
		if cur, err := r.ReadTable(ctx, resource); err == nil && tablesEqual(cur, sheets.Table(header, rows)) {
			m.logger.DebugContext(ctx, "Sheet already current", log.FieldSheet, resource)
			m.synced.Add(1)
			return nil
		}
	}

	if err := m.writer.ReplaceTable(ctx, resource, header, rows); err != nil {
		m.failed.Add(1)
		return fmt.Errorf("mirror %s: %w", resource, err)
	}
	m.synced.Add(1)
	m.logger.InfoContext(ctx, "Sheet synced",
		log.FieldOperation, log.OpSync,
		log.FieldSheet, resource,
		log.FieldCount, len(rows),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// SyncAll rewrites every sheet. One failing resource does not stop the
// others; all failures are returned joined.
func (m *Mirror) SyncAll(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(m.concurrency)
	for _, e := range m.exporters {
		resource := e.Resource()
		g.Go(func() error {
			if err := m.SyncResource(ctx, resource); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return errors.Join(errs...)
}

// HandleChange is the change-event consumer callback. Events for resources
// the mirror does not know are dropped.
func (m *Mirror) HandleChange(ctx context.Context, ev amqp.ChangeEvent) error {
	if _, ok := m.exporter(ev.Resource); !ok {
		m.logger.WarnContext(ctx, "Ignoring change event for unknown resource",
			log.FieldResource, ev.Resource,
			log.FieldRecordID, ev.ID)
		return nil
	}
	return m.SyncResource(ctx, ev.Resource)
}

// Run resyncs everything now and then every interval until ctx ends.
func (m *Mirror) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := m.SyncAll(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Resync incomplete", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			m.logger.InfoContext(ctx, "Mirror stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func tablesEqual(a, b [][]string) bool {
	return slices.EqualFunc(a, b, func(x, y []string) bool { return slices.Equal(x, y) })
}
