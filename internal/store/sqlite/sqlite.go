// Package sqlite stores each entity type in its own on-device table keyed
// by an autoincrement integer id.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"vanta/internal/core"
	"vanta/internal/store"
)

const timeLayout = time.RFC3339Nano

// DB owns the connection shared by every Table.
type DB struct {
	db *sql.DB
}

// Open creates the database file if needed and applies migrations.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w: %v", core.ErrUnavailable, err)
	}
	return nil
}

// Table adapts one entity table to store.Adapter. The record body is kept
// as JSON next to the kind and date columns used for ordering.
type Table[T core.Record[T]] struct {
	db     *sql.DB
	schema core.Schema[T]
	now    store.Clock
}

func NewTable[T core.Record[T]](d *DB, schema core.Schema[T]) *Table[T] {
	return &Table[T]{db: d.db, schema: schema, now: store.UTCNow}
}

// WithClock returns a copy of the table stamping records with c.
func (t *Table[T]) WithClock(c store.Clock) *Table[T] {
	cp := *t
	cp.now = c
	return &cp
}

func (t *Table[T]) name() string { return t.schema.Resource }

func (t *Table[T]) List(ctx context.Context, opts store.ListOptions) ([]T, error) {
	limit := int64(-1)
	if opts.Limit > 0 {
		limit = int64(opts.Limit)
	}
	q := fmt.Sprintf(`SELECT id, data, created_at, updated_at FROM %s ORDER BY id LIMIT ? OFFSET ?`, t.name())
	rows, err := t.db.QueryContext(ctx, q, limit, max(opts.Skip, 0))
	if err != nil {
		return nil, t.fail("list", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, t.fail("list", err)
	}
	return out, nil
}

func (t *Table[T]) Get(ctx context.Context, id int64) (T, error) {
	q := fmt.Sprintf(`SELECT id, data, created_at, updated_at FROM %s WHERE id = ?`, t.name())
	rec, err := t.scan(t.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return rec, core.NotFound(t.name(), id)
	}
	return rec, err
}

func (t *Table[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := draft.Validate(); err != nil {
		return zero, err
	}
	body, err := t.body(draft)
	if err != nil {
		return zero, err
	}
	now := t.now()
	stamp := now.Format(timeLayout)
	q := fmt.Sprintf(`INSERT INTO %s (kind, date, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`, t.name())
	res, err := t.db.ExecContext(ctx, q, t.kind(draft), t.date(draft), body, stamp, stamp)
	if err != nil {
		return zero, t.fail("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return zero, t.fail("create", err)
	}

	slog.DebugContext(ctx, "Record saved to SQLite", "resource", t.name(), "id", id)
	return draft.WithID(id).WithTimestamps(now, now), nil
}

func (t *Table[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	var zero T
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	body, err := t.body(rec)
	if err != nil {
		return zero, err
	}
	now := t.now()
	q := fmt.Sprintf(`UPDATE %s SET kind = ?, date = ?, data = ?, updated_at = ? WHERE id = ? RETURNING created_at`, t.name())
	var created string
	err = t.db.QueryRowContext(ctx, q, t.kind(rec), t.date(rec), body, now.Format(timeLayout), id).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, core.NotFound(t.name(), id)
	}
	if err != nil {
		return zero, t.fail("update", err)
	}
	createdAt, err := time.Parse(timeLayout, created)
	if err != nil {
		return zero, fmt.Errorf("%s %d: parse created_at: %w", t.name(), id, err)
	}
	return rec.WithID(id).WithTimestamps(createdAt, now), nil
}

func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.name())
	res, err := t.db.ExecContext(ctx, q, id)
	if err != nil {
		return t.fail("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.fail("delete", err)
	}
	if n == 0 {
		return core.NotFound(t.name(), id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (t *Table[T]) scan(s scanner) (T, error) {
	var (
		rec              T
		id               int64
		data             string
		created, updated string
	)
	if err := s.Scan(&id, &data, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, t.fail("scan", err)
	}
	if err := core.DecodeShape([]byte(data), &rec); err != nil {
		return rec, fmt.Errorf("%s %d: stored body: %w", t.name(), id, err)
	}
	c, err := time.Parse(timeLayout, created)
	if err != nil {
		return rec, fmt.Errorf("%s %d: parse created_at: %w", t.name(), id, err)
	}
	u, err := time.Parse(timeLayout, updated)
	if err != nil {
		return rec, fmt.Errorf("%s %d: parse updated_at: %w", t.name(), id, err)
	}
	return rec.WithID(id).WithTimestamps(c, u), nil
}

// body serializes the record without its identity and timestamps, which
// live in their own columns.
func (t *Table[T]) body(rec T) (string, error) {
	b, err := json.Marshal(rec.WithID(0).WithTimestamps(time.Time{}, time.Time{}))
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", t.name(), err)
	}
	return string(b), nil
}

func (t *Table[T]) kind(rec T) string {
	if t.schema.Kind == nil {
		return ""
	}
	return t.schema.Kind(rec)
}

func (t *Table[T]) date(rec T) string {
	if t.schema.Date == nil {
		return ""
	}
	return t.schema.Date(rec)
}

// fail classifies driver and context errors as the medium being unavailable.
func (t *Table[T]) fail(op string, err error) error {
	return fmt.Errorf("%s %s: %w: %v", op, t.name(), core.ErrUnavailable, err)
}
