// Package core provides money parsing and handling utilities.
//
// This file contains the decimal Money type shared by every entity that
// carries an amount. Amounts are stored as plain decimal numbers; formatting
// to a display currency happens in the presentation layer.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount. It serializes to JSON as a bare number so the
// wire shape matches what the ledger API has always returned.
type Money struct {
	decimal.Decimal
}

// ZeroMoney is the additive identity.
var ZeroMoney = Money{Decimal: decimal.Zero}

// ParseMoney converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// surrounding whitespace. Sign handling is left to the caller's validation.
//
// Examples:
//
//	ParseMoney("12.34") -> 12.34, nil
//	ParseMoney("12,34") -> 12.34, nil
//	ParseMoney("abc")   -> error
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, &ValidationError{Field: "amount", Reason: "is required"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Reason: "is not a decimal number"}
	}
	return Money{Decimal: d}, nil
}

// MustMoney is ParseMoney for literals known to be valid.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromInt returns a whole-unit amount.
func MoneyFromInt(v int64) Money {
	return Money{Decimal: decimal.NewFromInt(v)}
}

// Plus returns m + o.
func (m Money) Plus(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Minus returns m - o.
func (m Money) Minus(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// MarshalJSON writes the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	if err := m.Decimal.UnmarshalJSON(data); err != nil {
		return &ValidationError{Field: "amount", Reason: "is not a decimal number"}
	}
	return nil
}
