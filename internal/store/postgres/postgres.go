// Package postgres is the server-side adapter backed by PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vanta/internal/core"
	"vanta/internal/store"
)

// Models lists every entity table created by AutoMigrate.
var Models = []any{
	&core.Account{}, &core.Category{}, &core.Transaction{}, &core.Budget{}, &core.Bill{},
	&core.Investment{}, &core.Company{}, &core.Project{}, &core.Notification{}, &core.ReviewItem{},
}

type Config struct {
	DSN         string
	AutoMigrate bool
}

type DB struct {
	gdb *gorm.DB
}

// Open connects to PostgreSQL and, when asked, migrates every entity table.
func Open(cfg Config) (*DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w: %v", core.ErrUnavailable, err)
	}
	if cfg.AutoMigrate {
		// Migrate models individually so a failure names its table.
		for _, m := range Models {
			if err := gdb.AutoMigrate(m); err != nil {
				return nil, fmt.Errorf("migrate %T: %w", m, err)
			}
		}
	}
	return &DB{gdb: gdb}, nil
}

func (d *DB) Close() error {
	sqlDB, err := d.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.gdb.DB()
	if err != nil {
		return fmt.Errorf("ping postgres: %w: %v", core.ErrUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w: %v", core.ErrUnavailable, err)
	}
	return nil
}

// Table adapts one gorm model table to store.Adapter.
type Table[T core.Record[T]] struct {
	gdb      *gorm.DB
	resource string
}

func NewTable[T core.Record[T]](d *DB, schema core.Schema[T]) *Table[T] {
	return &Table[T]{gdb: d.gdb, resource: schema.Resource}
}

func (t *Table[T]) q(ctx context.Context) *gorm.DB {
	return t.gdb.WithContext(ctx).Table(t.resource)
}

func (t *Table[T]) List(ctx context.Context, opts store.ListOptions) ([]T, error) {
	q := t.q(ctx).Order("id")
	if opts.Skip > 0 {
		q = q.Offset(opts.Skip)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	out := []T{}
	if err := q.Find(&out).Error; err != nil {
		return nil, t.translate("list", 0, err)
	}
	return out, nil
}

func (t *Table[T]) Get(ctx context.Context, id int64) (T, error) {
	var rec T
	if err := t.q(ctx).First(&rec, id).Error; err != nil {
		return rec, t.translate("get", id, err)
	}
	return rec, nil
}

func (t *Table[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := draft.Validate(); err != nil {
		return zero, err
	}
	rec := draft.WithID(0).WithTimestamps(time.Time{}, time.Time{})
	if err := t.q(ctx).Create(&rec).Error; err != nil {
		return zero, t.translate("create", 0, err)
	}
	return rec, nil
}

func (t *Table[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	var zero T
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	var out T
	err := t.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing T
		if err := tx.Table(t.resource).First(&existing, id).Error; err != nil {
			return err
		}
		out = rec.WithID(id).WithTimestamps(existing.Created(), time.Time{})
		return tx.Table(t.resource).Save(&out).Error
	})
	if err != nil {
		return zero, t.translate("update", id, err)
	}
	return out, nil
}

func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	var model T
	res := t.q(ctx).Delete(&model, id)
	if res.Error != nil {
		return t.translate("delete", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return core.NotFound(t.resource, id)
	}
	return nil
}

// translate maps gorm errors onto the core taxonomy.
func (t *Table[T]) translate(op string, id int64, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return core.NotFound(t.resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated),
		errors.Is(err, gorm.ErrInvalidData):
		return &core.ValidationError{Reason: fmt.Sprintf("%s %s rejected: %v", op, t.resource, err)}
	default:
		return fmt.Errorf("%s %s: %w: %v", op, t.resource, core.ErrUnavailable, err)
	}
}
