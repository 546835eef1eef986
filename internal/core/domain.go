package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar date format used in storage and CSV.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date without a time component, always UTC midnight.
	Date struct {
		time.Time
	}

	// Transaction is a single recorded income or expense.
	// Positive amounts are income, negative amounts are expenses.
	Transaction struct {
		ID          int64
		Date        Date
		Amount      decimal.Decimal
		Category    string
		Description string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

// Kind labels used for display; derived from the amount sign.
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

const maxDescriptionLen = 500

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Surrounding whitespace is ignored.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, NewValidationError("date", "is required")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, NewValidationError("date", fmt.Sprintf("must be a valid YYYY-MM-DD date, got %q", s))
	}
	return Date{Time: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// YearMonth returns the calendar month the date falls in.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return NewValidationError("date", "is required")
	}
	if y := d.Year(); y < 1 || y > 9999 {
		return NewValidationError("date", "year out of range")
	}
	return nil
}

// Kind reports whether the transaction is income or expense.
// Zero amounts count as income.
func (t Transaction) Kind() string {
	if t.Amount.IsNegative() {
		return KindExpense
	}
	return KindIncome
}

// Normalize trims the category label and pins the date to UTC midnight.
// The description is kept verbatim.
func (t Transaction) Normalize() Transaction {
	t.Category = strings.TrimSpace(t.Category)
	if !t.Date.IsZero() {
		y, m, d := t.Date.Date()
		t.Date = NewDate(y, int(m), d)
	}
	return t
}

// Validate checks the fields a caller supplies. It does not look at ID or
// the audit timestamps, which belong to storage.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return NewValidationError("category", "must not be empty")
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLen {
		return NewValidationError("description", "too long (max 500 characters)")
	}
	return nil
}

// SameEntry reports whether two transactions carry the same user data,
// ignoring id and audit timestamps.
func (t Transaction) SameEntry(o Transaction) bool {
	return t.Date.Equal(o.Date.Time) &&
		t.Amount.Equal(o.Amount) &&
		t.Category == o.Category &&
		t.Description == o.Description
}
