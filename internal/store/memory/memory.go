// Package memory provides an in-process Adapter for tests, demos and the
// API server's ephemeral backend.
package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"vanta/internal/core"
	"vanta/internal/store"
)

// Op names an adapter operation for failure injection.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// FakeAdapter keeps records in id order. It validates writes the way a
// persistence medium would and can be told to fail or stall specific calls.
type FakeAdapter[T core.Record[T]] struct {
	mu       sync.Mutex
	resource string
	items    []T
	nextID   int64
	now      store.Clock
	fail     map[Op][]error
	gates    map[Op]*gate
	calls    map[Op]int
}

type gate struct {
	entered chan struct{}
	release chan struct{}
}

// Option configures a FakeAdapter.
type Option[T core.Record[T]] func(*FakeAdapter[T])

// WithClock overrides the timestamp source.
func WithClock[T core.Record[T]](c store.Clock) Option[T] {
	return func(a *FakeAdapter[T]) { a.now = c }
}

// WithRecords seeds the adapter. Seeded records keep their ids; records
// without one are assigned the next free id.
func WithRecords[T core.Record[T]](recs ...T) Option[T] {
	return func(a *FakeAdapter[T]) {
		for _, r := range recs {
			a.seed(r)
		}
	}
}

func New[T core.Record[T]](resource string, opts ...Option[T]) *FakeAdapter[T] {
	a := &FakeAdapter[T]{
		resource: resource,
		nextID:   1,
		now:      store.UTCNow,
		fail:     map[Op][]error{},
		gates:    map[Op]*gate{},
		calls:    map[Op]int{},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// NewFromFile seeds a FakeAdapter from a YAML fixture holding a list of
// records. A missing file yields an empty adapter.
func NewFromFile[T core.Record[T]](resource, path string, opts ...Option[T]) (*FakeAdapter[T], error) {
	a := New(resource, opts...)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	recs, err := DecodeFixture[T](data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	for _, r := range recs {
		a.seed(r)
	}
	return a, nil
}

// DecodeFixture converts a YAML list into records via the strict JSON decoder,
// so fixtures are held to the same shape rules as API payloads.
func DecodeFixture[T core.Record[T]](data []byte) ([]T, error) {
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &core.ValidationError{Reason: "fixture is not a YAML list: " + err.Error()}
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert fixture: %w", err)
	}
	recs, err := core.DecodeRecords[T](js)
	if err != nil {
		return nil, err
	}
	for i, r := range recs {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return recs, nil
}

func (a *FakeAdapter[T]) seed(r T) {
	id := r.RecordID()
	if id == 0 {
		id = a.nextID
	}
	if _, ok := a.index(id); ok {
		return
	}
	r = r.WithID(id)
	if r.Created().IsZero() {
		now := a.now()
		r = r.WithTimestamps(now, now)
	}
	a.items = append(a.items, r)
	slices.SortFunc(a.items, func(x, y T) int { return cmp.Compare(x.RecordID(), y.RecordID()) })
	a.nextID = max(a.nextID, id+1)
}

// FailNext makes the next call of op return err. Calls queue up in order.
func (a *FakeAdapter[T]) FailNext(op Op, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fail[op] = append(a.fail[op], err)
}

// Pause stalls the next call of op until release is called or the call's
// context ends. entered is closed once the call is waiting.
func (a *FakeAdapter[T]) Pause(op Op) (entered <-chan struct{}, release func()) {
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	a.mu.Lock()
	a.gates[op] = g
	a.mu.Unlock()
	var once sync.Once
	return g.entered, func() { once.Do(func() { close(g.release) }) }
}

// Calls reports how many times op was invoked.
func (a *FakeAdapter[T]) Calls(op Op) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[op]
}

// Len reports the number of stored records.
func (a *FakeAdapter[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

func (a *FakeAdapter[T]) enter(ctx context.Context, op Op) error {
	a.mu.Lock()
	a.calls[op]++
	g := a.gates[op]
	delete(a.gates, op)
	a.mu.Unlock()

	if g != nil {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return fmt.Errorf("%s %s: %w", op, a.resource, core.ErrUnavailable)
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s %s: %w", op, a.resource, core.ErrUnavailable)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if q := a.fail[op]; len(q) > 0 {
		a.fail[op] = q[1:]
		return q[0]
	}
	return nil
}

func (a *FakeAdapter[T]) List(ctx context.Context, opts store.ListOptions) ([]T, error) {
	if err := a.enter(ctx, OpList); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	lo, hi := opts.Window(len(a.items))
	return slices.Clone(a.items[lo:hi:hi]), nil
}

func (a *FakeAdapter[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	if err := a.enter(ctx, OpGet); err != nil {
		return zero, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.index(id)
	if !ok {
		return zero, core.NotFound(a.resource, id)
	}
	return a.items[i], nil
}

func (a *FakeAdapter[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := a.enter(ctx, OpCreate); err != nil {
		return zero, err
	}
	if err := draft.Validate(); err != nil {
		return zero, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	rec := draft.WithID(a.nextID).WithTimestamps(now, now)
	a.nextID++
	a.items = append(a.items, rec)
	return rec, nil
}

func (a *FakeAdapter[T]) Update(ctx context.Context, id int64, rec T) (T, error) {
	var zero T
	if err := a.enter(ctx, OpUpdate); err != nil {
		return zero, err
	}
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.index(id)
	if !ok {
		return zero, core.NotFound(a.resource, id)
	}
	out := rec.WithID(id).WithTimestamps(a.items[i].Created(), a.now())
	a.items[i] = out
	return out, nil
}

func (a *FakeAdapter[T]) Delete(ctx context.Context, id int64) error {
	if err := a.enter(ctx, OpDelete); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.index(id)
	if !ok {
		return core.NotFound(a.resource, id)
	}
	a.items = slices.Delete(a.items, i, i+1)
	return nil
}

func (a *FakeAdapter[T]) index(id int64) (int, bool) {
	for i, r := range a.items {
		if r.RecordID() == id {
			return i, true
		}
	}
	return -1, false
}
