// Package core provides money parsing and handling utilities.
//
// Amounts are signed decimals with at most two fractional digits: positive
// values are income, negative values are expenses. Storage keeps them as
// integer minor units so sums and comparisons are exact.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount bounds amounts so that minor units always fit in an int64.
var maxAmount = decimal.New(1, 15)

// ParseAmount parses a plain decimal string such as "-42.50" or "1000".
//
// Currency symbols, thousands separators and decimal commas are rejected;
// the CSV format fixes the dot as decimal separator.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, NewValidationError("amount", "is required")
	}
	if strings.ContainsAny(s, ",eE") {
		return decimal.Decimal{}, NewValidationError("amount", "must be a plain decimal number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, NewValidationError("amount", "must be a plain decimal number")
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

// ValidateAmount checks precision and magnitude. Zero is allowed.
func ValidateAmount(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(2)) {
		return NewValidationError("amount", "at most two decimal places are allowed")
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return NewValidationError("amount", "out of range")
	}
	return nil
}

// ToCents converts a validated amount to minor units.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).IntPart()
}

// FromCents converts minor units back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatAmount renders an amount as a plain decimal with two fractional
// digits, e.g. "-42.50".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
