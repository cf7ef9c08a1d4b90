package core

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every adapter. Adapters wrap these with context;
// callers classify with errors.Is.
var (
	ErrAuth        = errors.New("authentication failed")
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("record not found")
	ErrUnavailable = errors.New("persistence medium unavailable")
)

// ValidationError reports a single rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFound wraps ErrNotFound with the resource and id that missed.
func NotFound(resource string, id int64) error {
	return fmt.Errorf("%s %d: %w", resource, id, ErrNotFound)
}

// Error kinds as reported in logs and the HTTP error envelope.
const (
	KindAuth        = "auth"
	KindValidation  = "validation"
	KindNotFound    = "not_found"
	KindUnavailable = "unavailable"
	KindInternal    = "internal"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

// KindError maps a Kind constant back to its sentinel, wrapping msg.
// Unknown kinds produce a plain error.
func KindError(kind, msg string) error {
	var sentinel error
	switch kind {
	case KindAuth:
		sentinel = ErrAuth
	case KindValidation:
		sentinel = ErrValidation
	case KindNotFound:
		sentinel = ErrNotFound
	case KindUnavailable:
		sentinel = ErrUnavailable
	default:
		return errors.New(msg)
	}
	if msg == "" || msg == sentinel.Error() {
		return sentinel
	}
	return fmt.Errorf("%s: %w", msg, sentinel)
}
