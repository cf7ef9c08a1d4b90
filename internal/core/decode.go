package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DecodeRecord strictly decodes one JSON object into T and validates it.
// Unknown fields, wrong types and trailing data all fail as ValidationError.
func DecodeRecord[T Record[T]](data []byte) (T, error) {
	var rec T
	if err := decodeStrict(data, &rec); err != nil {
		return rec, err
	}
	if err := rec.Validate(); err != nil {
		return rec, err
	}
	return rec, nil
}

// DecodeRecords strictly decodes a JSON array of T. Records coming back from
// a persistence medium are not re-validated; only their shape is checked.
func DecodeRecords[T any](data []byte) ([]T, error) {
	var recs []T
	if err := decodeStrict(data, &recs); err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

// DecodeShape strictly decodes into v without running validation.
func DecodeShape(data []byte, v any) error {
	return decodeStrict(data, v)
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return shapeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &ValidationError{Reason: "unexpected data after JSON value"}
	}
	return nil
}

func shapeError(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{Field: typeErr.Field, Reason: fmt.Sprintf("must be %s", typeErr.Type)}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ValidationError{Reason: "malformed JSON"}
	}
	msg := err.Error()
	if field, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		return &ValidationError{Field: strings.Trim(field, `"`), Reason: "is not a known field"}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ValidationError{Reason: "empty or truncated body"}
	}
	return &ValidationError{Reason: msg}
}
