package core

import (
	"cmp"
	"strconv"
)

// Column is one exported field of a record, rendered as text.
type Column[T any] struct {
	Name  string
	Value func(T) string
}

// Schema describes how one entity type is named, filtered, ordered and
// exported. Kind, Date and Text may be nil when the entity has no such field.
type Schema[T any] struct {
	// Resource is the plural collection name used in URLs, tables and events.
	Resource string
	// Kinds lists the declared values of the entity's type/status enum.
	Kinds []string
	Kind  func(T) string
	Date  func(T) string
	Text  func(T) []string
	// Compare orders the filtered view; ties are broken by id.
	Compare func(a, b T) int
	Columns []Column[T]
}

// Header returns the CSV/table header.
func (s Schema[T]) Header() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Row renders a record as one table row in column order.
func (s Schema[T]) Row(r T) []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Value(r)
	}
	return out
}

// NameIndex builds an id -> name lookup used to resolve plain foreign keys
// (a project's company, a transaction's category) on the client side.
func NameIndex[T any](items []T, id func(T) int64, name func(T) string) map[int64]string {
	idx := make(map[int64]string, len(items))
	for _, it := range items {
		idx[id(it)] = name(it)
	}
	return idx
}

func idColumn[T Record[T]]() Column[T] {
	return Column[T]{Name: "id", Value: func(r T) string { return formatID(r.RecordID()) }}
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func descending(a, b string) int { return cmp.Compare(b, a) }
