package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vanta/internal/core"
	"vanta/internal/store"
)

func TestTranslate(t *testing.T) {
	tbl := &Table[core.Project]{resource: "projects"}

	assert.ErrorIs(t, tbl.translate("get", 3, gorm.ErrRecordNotFound), core.ErrNotFound)
	assert.ErrorIs(t, tbl.translate("create", 0, gorm.ErrDuplicatedKey), core.ErrValidation)
	assert.ErrorIs(t, tbl.translate("create", 0, gorm.ErrForeignKeyViolated), core.ErrValidation)
	assert.ErrorIs(t, tbl.translate("list", 0, errors.New("dial tcp: refused")), core.ErrUnavailable)
}

// openTestDB connects to the database named by VANTA_TEST_POSTGRES_DSN.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("VANTA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VANTA_TEST_POSTGRES_DSN not set")
	}
	db, err := Open(Config{DSN: dsn, AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.gdb.Exec("TRUNCATE projects RESTART IDENTITY")
		db.Close()
	})
	return db
}

func TestTableCRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tbl := NewTable(db, core.ProjectSchema)

	p := core.NewProject()
	p.Name = "Warehouse fit-out"
	p.Budget = core.MustMoney("12500.00")
	p.StartDate = "2024-04-01"

	created, err := tbl.Create(ctx, p)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	created.Status = core.ProjectCompleted
	updated, err := tbl.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, core.ProjectCompleted, updated.Status)

	all, err := tbl.List(ctx, store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Budget.Equal(p.Budget.Decimal))

	require.NoError(t, tbl.Delete(ctx, created.ID))
	assert.ErrorIs(t, tbl.Delete(ctx, created.ID), core.ErrNotFound)
}
