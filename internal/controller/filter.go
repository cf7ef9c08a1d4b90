package controller

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"vanta/internal/core"
)

// Filter is the presentation surface's filter state. Zero fields are inactive.
type Filter struct {
	Kind      string `json:"kind,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Search    string `json:"search,omitempty"`
}

// IsZero reports whether no criterion is set.
func (f Filter) IsZero() bool { return f == Filter{} }

// Check rejects criteria the schema cannot apply.
func (f Filter) Check(kinds []string, hasKind, hasDate bool) error {
	if f.Kind != "" {
		if !hasKind {
			return &core.ValidationError{Field: "kind", Reason: "is not supported for this resource"}
		}
		if !slices.Contains(kinds, f.Kind) {
			return &core.ValidationError{Field: "kind", Reason: "must be one of " + strings.Join(kinds, ", ")}
		}
	}
	if f.StartDate != "" || f.EndDate != "" {
		if !hasDate {
			return &core.ValidationError{Field: "start_date", Reason: "is not supported for this resource"}
		}
		if f.StartDate != "" && !isISODate(f.StartDate) {
			return &core.ValidationError{Field: "start_date", Reason: "must be a YYYY-MM-DD date"}
		}
		if f.EndDate != "" && !isISODate(f.EndDate) {
			return &core.ValidationError{Field: "end_date", Reason: "must be a YYYY-MM-DD date"}
		}
		if f.StartDate != "" && f.EndDate != "" && f.EndDate < f.StartDate {
			return &core.ValidationError{Field: "end_date", Reason: "must not be before start_date"}
		}
	}
	return nil
}

func isISODate(s string) bool {
	_, err := time.Parse(core.DateLayout, s)
	return err == nil
}

// Apply projects recs through f and sorts the result with the schema's
// order, breaking ties by id. recs is not modified.
func Apply[T core.Record[T]](schema core.Schema[T], recs []T, f Filter) []T {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		if f.Kind != "" && schema.Kind != nil && schema.Kind(r) != f.Kind {
			continue
		}
		if (f.StartDate != "" || f.EndDate != "") && schema.Date != nil {
			d := schema.Date(r)
			if d == "" || (f.StartDate != "" && d < f.StartDate) || (f.EndDate != "" && d > f.EndDate) {
				continue
			}
		}
		if needle != "" && !matchText(schema, r, needle) {
			continue
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b T) int {
		if schema.Compare != nil {
			if c := schema.Compare(a, b); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.RecordID(), b.RecordID())
	})
	return out
}

func matchText[T any](schema core.Schema[T], r T, needle string) bool {
	if schema.Text == nil {
		return false
	}
	for _, s := range schema.Text(r) {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}
