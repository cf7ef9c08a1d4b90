package controller

import (
	"context"
	"fmt"
)

// Intent is one user action forwarded by a presentation surface.
type Intent interface{ isIntent() }

// SubmitForm adds the record when it has no id and edits it otherwise.
type SubmitForm[T any] struct{ Record T }

type ClickDelete struct{ ID int64 }

type ChangeFilter struct{ Filter Filter }

type Reload struct{}

func (SubmitForm[T]) isIntent() {}
func (ClickDelete) isIntent()   {}
func (ChangeFilter) isIntent()  {}
func (Reload) isIntent()        {}

// Dispatch routes an intent to the matching operation. The outcome is also
// visible through Snapshot.
func (c *Controller[T]) Dispatch(ctx context.Context, in Intent) error {
	switch in := in.(type) {
	case SubmitForm[T]:
		if id := in.Record.RecordID(); id != 0 {
			_, err := c.Edit(ctx, id, in.Record)
			return err
		}
		_, err := c.Add(ctx, in.Record)
		return err
	case ClickDelete:
		return c.Remove(ctx, in.ID)
	case ChangeFilter:
		return c.SetFilter(in.Filter)
	case Reload:
		return c.Load(ctx)
	default:
		return fmt.Errorf("controller: unsupported intent %T", in)
	}
}
