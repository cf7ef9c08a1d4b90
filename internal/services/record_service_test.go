package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/amqp"
	"vanta/internal/cache"
	"vanta/internal/core"
	"vanta/internal/store"
	"vanta/internal/store/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.ChangeEvent
	err    error
}

func (p *recordingPublisher) PublishChange(_ context.Context, ev amqp.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func tx(date, desc string, amount int64) core.Transaction {
	t := core.NewTransaction()
	t.Date = date
	t.Description = desc
	t.Amount = core.MoneyFromInt(amount)
	return t
}

func newService(pub Publisher, c Invalidator) (*RecordService[core.Transaction], *memory.FakeAdapter[core.Transaction]) {
	a := memory.New[core.Transaction]("transactions")
	opts := []Option[core.Transaction]{WithPublisher[core.Transaction](pub)}
	if c != nil {
		opts = append(opts, WithInvalidator[core.Transaction](c))
	}
	return NewRecordService(a, core.TransactionSchema, opts...), a
}

func TestCreatePublishesChange(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newService(pub, nil)

	rec, err := svc.Create(context.Background(), tx("2024-01-01", "sale", 100))
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "transactions", pub.events[0].Resource)
	assert.Equal(t, amqp.ActionCreated, pub.events[0].Action)
	assert.Equal(t, rec.ID, pub.events[0].ID)
}

func TestCreateRejectsDraftWithID(t *testing.T) {
	pub := &recordingPublisher{}
	svc, a := newService(pub, nil)

	_, err := svc.Create(context.Background(), tx("2024-01-01", "sale", 100).WithID(9))
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, 0, a.Len())
	assert.Empty(t, pub.events)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, a := newService(pub, nil)

	_, err := svc.Create(context.Background(), tx("2024-01-01", "sale", 100))
	require.NoError(t, err)
	assert.Equal(t, 1, a.Len())
}

func TestAdapterFailureSkipsPublish(t *testing.T) {
	pub := &recordingPublisher{}
	svc, a := newService(pub, nil)
	a.FailNext(memory.OpCreate, core.ErrUnavailable)

	_, err := svc.Create(context.Background(), tx("2024-01-01", "sale", 100))
	assert.ErrorIs(t, err, core.ErrUnavailable)
	assert.Empty(t, pub.events)
}

func TestUpdateAndDelete(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newService(pub, nil)
	ctx := context.Background()

	rec, err := svc.Create(ctx, tx("2024-01-01", "sale", 100))
	require.NoError(t, err)

	edited := rec
	edited.Description = "edited"
	got, err := svc.Update(ctx, rec.ID, edited)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Description)

	_, err = svc.Update(ctx, rec.ID+1, edited)
	assert.ErrorIs(t, err, core.ErrValidation, "body id must match the path")

	require.NoError(t, svc.Delete(ctx, rec.ID))
	assert.ErrorIs(t, svc.Delete(ctx, rec.ID), core.ErrNotFound)

	require.Len(t, pub.events, 3)
	assert.Equal(t, amqp.ActionUpdated, pub.events[1].Action)
	assert.Equal(t, amqp.ActionDeleted, pub.events[2].Action)
}

func TestMutationInvalidatesListCache(t *testing.T) {
	lists := cache.NewLRUCache[[]byte](10, time.Minute)
	lists.Set("transactions?skip=0&limit=0", []byte("[]"))
	lists.Set("bills?skip=0&limit=0", []byte("[]"))

	svc, _ := newService(&recordingPublisher{}, lists)
	_, err := svc.Create(context.Background(), tx("2024-01-01", "sale", 100))
	require.NoError(t, err)

	_, ok := lists.Get("transactions?skip=0&limit=0")
	assert.False(t, ok)
	_, ok = lists.Get("bills?skip=0&limit=0")
	assert.True(t, ok)
}

func TestExportUsesSchemaOrder(t *testing.T) {
	svc, _ := newService(nil, nil)
	ctx := context.Background()
	for _, r := range []core.Transaction{
		tx("2024-01-01", "older", 1),
		tx("2024-03-01", "newest", 2),
		tx("2024-02-01", "middle", 3),
	} {
		_, err := svc.Create(ctx, r)
		require.NoError(t, err)
	}

	header, rows, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "type", "description", "amount"}, header)
	require.Len(t, rows, 3)
	assert.Equal(t, "newest", rows[0][2])
	assert.Equal(t, "middle", rows[1][2])
	assert.Equal(t, "older", rows[2][2])
}

var _ Exporter = (*RecordService[core.Transaction])(nil)
var _ store.Adapter[core.Transaction] = (*memory.FakeAdapter[core.Transaction])(nil)

func TestSetExporterLookup(t *testing.T) {
	sh := Shared{}
	set := &Set{
		Transactions:  Wrap(sh, memory.New[core.Transaction]("transactions"), core.TransactionSchema),
		Categories:    Wrap(sh, memory.New[core.Category]("categories"), core.CategorySchema),
		Budgets:       Wrap(sh, memory.New[core.Budget]("budgets"), core.BudgetSchema),
		Accounts:      Wrap(sh, memory.New[core.Account]("accounts"), core.AccountSchema),
		Bills:         Wrap(sh, memory.New[core.Bill]("bills"), core.BillSchema),
		Investments:   Wrap(sh, memory.New[core.Investment]("investments"), core.InvestmentSchema),
		Companies:     Wrap(sh, memory.New[core.Company]("companies"), core.CompanySchema),
		Projects:      Wrap(sh, memory.New[core.Project]("projects"), core.ProjectSchema),
		Notifications: Wrap(sh, memory.New[core.Notification]("notifications"), core.NotificationSchema),
		ReviewItems:   Wrap(sh, memory.New[core.ReviewItem]("review_items"), core.ReviewItemSchema),
	}

	assert.Len(t, set.Exporters(), 10)
	e, ok := set.Exporter("bills")
	require.True(t, ok)
	assert.Equal(t, "bills", e.Resource())
	_, ok = set.Exporter("expenses")
	assert.False(t, ok)
}
