package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"vanta/internal/backend"
	"vanta/internal/controller"
	"vanta/internal/core"
	"vanta/internal/log"
	"vanta/internal/store"
)

// resource is one entity type seen through its controller, with the record
// type erased so commands can be written once.
type resource interface {
	Name() string
	// Load fetches the record set and applies f.
	Load(ctx context.Context, f controller.Filter) error
	// Resolve looks up the names behind the view's foreign keys.
	Resolve(ctx context.Context) error
	// Table renders the current view, id first and resolved names last.
	Table() (header []string, rows [][]string)
	// Export renders the current view with the schema's columns only.
	Export() (header []string, rows [][]string)
	CSV() string
	// Total is the size of the loaded set before filtering.
	Total() int
	Submit(ctx context.Context, id int64, data []byte) (int64, error)
	Remove(ctx context.Context, id int64) error
}

type bound[T core.Record[T]] struct {
	ctl   *controller.Controller[T]
	refs  []ref[T]
	names []map[int64]string
}

// ref is a plain foreign key shown by the name of the record it points at.
type ref[T any] struct {
	column string
	id     func(T) int64
	names  func(ctx context.Context) (map[int64]string, error)
}

func namesOf[U core.Record[U]](a store.Adapter[U], name func(U) string) func(context.Context) (map[int64]string, error) {
	return func(ctx context.Context) (map[int64]string, error) {
		recs, err := a.List(ctx, store.ListOptions{})
		if err != nil {
			return nil, err
		}
		return core.NameIndex(recs, func(r U) int64 { return r.RecordID() }, name), nil
	}
}

func bind[T core.Record[T]](adapter store.Adapter[T], schema core.Schema[T], list store.ListOptions, logger *log.Logger, refs ...ref[T]) resource {
	return &bound[T]{
		ctl: controller.New(adapter, schema,
			controller.WithLogger[T](logger),
			controller.WithListOptions[T](list)),
		refs: refs,
	}
}

func (b *bound[T]) Name() string { return b.ctl.Schema().Resource }

func (b *bound[T]) Load(ctx context.Context, f controller.Filter) error {
	if err := b.ctl.Dispatch(ctx, controller.Reload{}); err != nil {
		return err
	}
	if f.IsZero() {
		return nil
	}
	return b.ctl.Dispatch(ctx, controller.ChangeFilter{Filter: f})
}

func (b *bound[T]) Resolve(ctx context.Context) error {
	b.names = make([]map[int64]string, len(b.refs))
	for i, rf := range b.refs {
		idx, err := rf.names(ctx)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", rf.column, err)
		}
		b.names[i] = idx
	}
	return nil
}

func (b *bound[T]) Table() ([]string, [][]string) {
	schema := b.ctl.Schema()
	header := schema.Header()
	withID := len(header) == 0 || header[0] != "id"
	if withID {
		header = append([]string{"id"}, header...)
	}
	for _, rf := range b.refs {
		header = append(header, rf.column)
	}

	view := b.ctl.Snapshot().View
	rows := make([][]string, len(view))
	for i, r := range view {
		row := schema.Row(r)
		if withID {
			row = append([]string{strconv.FormatInt(r.RecordID(), 10)}, row...)
		}
		for j, rf := range b.refs {
			row = append(row, b.refName(j, rf.id(r)))
		}
		rows[i] = row
	}
	return header, rows
}

// refName is the resolved name, or #id when the target is missing.
func (b *bound[T]) refName(i int, id int64) string {
	if id == 0 {
		return ""
	}
	if i < len(b.names) {
		if name, ok := b.names[i][id]; ok {
			return name
		}
	}
	return "#" + strconv.FormatInt(id, 10)
}

func (b *bound[T]) Export() ([]string, [][]string) {
	schema := b.ctl.Schema()
	view := b.ctl.Snapshot().View
	rows := make([][]string, len(view))
	for i, r := range view {
		rows[i] = schema.Row(r)
	}
	return schema.Header(), rows
}

func (b *bound[T]) CSV() string { return b.ctl.ExportCSV() }

func (b *bound[T]) Total() int { return len(b.ctl.Snapshot().Records) }

// Submit decodes data as a full record. id zero adds, anything else
// replaces the record at id.
func (b *bound[T]) Submit(ctx context.Context, id int64, data []byte) (int64, error) {
	rec, err := core.DecodeRecord[T](data)
	if err != nil {
		return 0, err
	}
	if rec.RecordID() != 0 && rec.RecordID() != id {
		return 0, &core.ValidationError{Field: "id", Reason: "does not match the record being edited"}
	}
	if id == 0 {
		out, err := b.ctl.Add(ctx, rec)
		return out.RecordID(), err
	}
	if err := b.ctl.Dispatch(ctx, controller.SubmitForm[T]{Record: rec.WithID(id)}); err != nil {
		return 0, err
	}
	return id, nil
}

func (b *bound[T]) Remove(ctx context.Context, id int64) error {
	return b.ctl.Dispatch(ctx, controller.ClickDelete{ID: id})
}

// transactions is kept typed for the totals command.
func transactions(r resource) (*controller.Controller[core.Transaction], bool) {
	b, ok := r.(*bound[core.Transaction])
	if !ok {
		return nil, false
	}
	return b.ctl, true
}

// resources binds every entity type of a, in a stable order.
func resources(a *backend.Adapters, list store.ListOptions, logger *log.Logger) []resource {
	categories := namesOf(a.Categories, func(c core.Category) string { return c.Name })
	return []resource{
		bind(a.Transactions, core.TransactionSchema, list, logger,
			ref[core.Transaction]{"category", func(t core.Transaction) int64 { return t.CategoryID }, categories},
			ref[core.Transaction]{"account", func(t core.Transaction) int64 { return t.AccountID }, namesOf(a.Accounts, func(c core.Account) string { return c.Name })}),
		bind(a.Categories, core.CategorySchema, list, logger),
		bind(a.Budgets, core.BudgetSchema, list, logger,
			ref[core.Budget]{"category", func(b core.Budget) int64 { return b.CategoryID }, categories}),
		bind(a.Accounts, core.AccountSchema, list, logger),
		bind(a.Bills, core.BillSchema, list, logger),
		bind(a.Investments, core.InvestmentSchema, list, logger),
		bind(a.Companies, core.CompanySchema, list, logger),
		bind(a.Projects, core.ProjectSchema, list, logger,
			ref[core.Project]{"company", func(p core.Project) int64 { return p.CompanyID }, namesOf(a.Companies, func(c core.Company) string { return c.Name })}),
		bind(a.Notifications, core.NotificationSchema, list, logger),
		bind(a.ReviewItems, core.ReviewItemSchema, list, logger),
	}
}

func lookup(all []resource, name string) (resource, error) {
	i := slices.IndexFunc(all, func(r resource) bool { return r.Name() == name })
	if i < 0 {
		names := make([]string, len(all))
		for j, r := range all {
			names[j] = r.Name()
		}
		return nil, fmt.Errorf("unknown resource %q (want one of %v)", name, names)
	}
	return all[i], nil
}
