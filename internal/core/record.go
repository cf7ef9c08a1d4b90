package core

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// Record is the contract every entity satisfies. Methods use value receivers
// so a record can be copied freely; WithID and WithTimestamps return the
// modified copy.
type Record[T any] interface {
	RecordID() int64
	Created() time.Time
	WithID(id int64) T
	WithTimestamps(created, updated time.Time) T
	Validate() error
}

// Meta holds the identity and server-computed fields shared by all entities.
// ID is zero on an unsaved draft.
type Meta struct {
	ID        int64     `json:"id,omitempty" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

func (m Meta) RecordID() int64 { return m.ID }

func (m Meta) Created() time.Time { return m.CreatedAt }

// IsDraft reports whether the record has not been persisted yet.
func (m Meta) IsDraft() bool { return m.ID == 0 }

func (m *Meta) stamp(created, updated time.Time) {
	m.CreatedAt = created
	m.UpdatedAt = updated
}

// DateLayout is the ISO-8601 calendar date layout used by every date field.
const DateLayout = "2006-01-02"

var timeOfDayRE = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

func maxLen(field, v string, n int) error {
	if len(v) > n {
		return &ValidationError{Field: field, Reason: "is too long"}
	}
	return nil
}

func requirePositive(field string, m Money) error {
	if !m.IsPositive() {
		return &ValidationError{Field: field, Reason: "must be positive"}
	}
	return nil
}

func requireNonNegative(field string, m Money) error {
	if m.IsNegative() {
		return &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return nil
}

// checkDate validates an ISO date; empty is accepted unless required.
func checkDate(field, v string, required bool) error {
	if v == "" {
		if required {
			return &ValidationError{Field: field, Reason: "is required"}
		}
		return nil
	}
	if _, err := time.Parse(DateLayout, v); err != nil {
		return &ValidationError{Field: field, Reason: "must be a YYYY-MM-DD date"}
	}
	return nil
}

func checkRange(startField, start, endField, end string) error {
	if start != "" && end != "" && end < start {
		return &ValidationError{Field: endField, Reason: "must not be before " + startField}
	}
	return nil
}

func checkEnum[E ~string](field string, v E, allowed []E) error {
	if !slices.Contains(allowed, v) {
		return &ValidationError{Field: field, Reason: "must be one of " + joinEnum(allowed)}
	}
	return nil
}

func joinEnum[E ~string](vals []E) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func enumStrings[E ~string](vals []E) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
