package memory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/core"
	"vanta/internal/store"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTx(desc string, amount int64) core.Transaction {
	t := core.NewTransaction()
	t.Date = "2024-02-01"
	t.Description = desc
	t.Amount = core.MoneyFromInt(amount)
	return t
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	a := New("transactions", WithClock[core.Transaction](func() time.Time { return fixedNow }))
	ctx := context.Background()

	first, err := a.Create(ctx, newTx("a", 1))
	require.NoError(t, err)
	second, err := a.Create(ctx, newTx("b", 2))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, fixedNow, first.CreatedAt)
	assert.Equal(t, fixedNow, first.UpdatedAt)
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	a := New[core.Transaction]("transactions")
	_, err := a.Create(context.Background(), newTx("", 1))
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, 0, a.Len())
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	now := fixedNow
	a := New("transactions", WithClock[core.Transaction](func() time.Time { return now }))
	ctx := context.Background()
	rec, err := a.Create(ctx, newTx("a", 1))
	require.NoError(t, err)

	now = now.Add(time.Hour)
	rec.Description = "edited"
	got, err := a.Update(ctx, rec.ID, rec)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, now, got.UpdatedAt)
	assert.Equal(t, "edited", got.Description)

	_, err = a.Update(ctx, 99, rec)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteTwiceFails(t *testing.T) {
	a := New("transactions", WithRecords(newTx("a", 1).WithID(4)))
	ctx := context.Background()

	require.NoError(t, a.Delete(ctx, 4))
	err := a.Delete(ctx, 4)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = a.Get(ctx, 4)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListWindow(t *testing.T) {
	a := New("transactions", WithRecords(newTx("a", 1), newTx("b", 2), newTx("c", 3)))
	got, err := a.List(context.Background(), store.ListOptions{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Description)

	got[0].Description = "mutated"
	again, err := a.List(context.Background(), store.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "b", again[1].Description)
}

func TestFailNext(t *testing.T) {
	a := New[core.Transaction]("transactions")
	boom := errors.New("boom")
	a.FailNext(OpList, boom)

	_, err := a.List(context.Background(), store.ListOptions{})
	assert.ErrorIs(t, err, boom)
	_, err = a.List(context.Background(), store.ListOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 2, a.Calls(OpList))
}

func TestPauseHonoursContext(t *testing.T) {
	a := New[core.Transaction]("transactions")
	entered, release := a.Pause(OpList)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := a.List(ctx, store.ListOptions{})
		done <- err
	}()
	<-entered
	cancel()
	assert.ErrorIs(t, <-done, core.ErrUnavailable)
}

func TestNewFromFile(t *testing.T) {
	a, err := NewFromFile[core.Transaction]("transactions", filepath.Join("testdata", "transactions.yaml"))
	require.NoError(t, err)
	got, err := a.List(context.Background(), store.ListOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, core.TransactionExpenditure, got[1].Type)
	assert.Equal(t, "50", got[1].Amount.String())

	created, err := a.Create(context.Background(), newTx("c", 3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	missing, err := NewFromFile[core.Transaction]("transactions", filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, missing.Len())
}

func TestDecodeFixtureRejectsUnknownFields(t *testing.T) {
	_, err := DecodeFixture[core.Transaction]([]byte("- date: \"2024-01-01\"\n  type: sale\n  description: x\n  amount: 1\n  colour: red\n"))
	assert.ErrorIs(t, err, core.ErrValidation)
}
