package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Filter is a conjunction of optional predicates. Zero-valued fields
	// do not constrain the result.
	Filter struct {
		From                Date // inclusive
		To                  Date // inclusive
		Category            string
		Categories          []string
		DescriptionContains string
		MinAmount           *decimal.Decimal // inclusive
		MaxAmount           *decimal.Decimal // inclusive
		Limit               int              // 0 means no limit
	}

	SortField string

	// Sort orders a query result. The zero value sorts by date, newest first.
	Sort struct {
		Field SortField
		Asc   bool
	}

	// YearMonth identifies a calendar month.
	YearMonth struct {
		Year  int
		Month time.Month
	}
)

const (
	SortByDate     SortField = "date"
	SortByAmount   SortField = "amount"
	SortByCategory SortField = "category"
)

// DefaultSort is date descending.
var DefaultSort = Sort{Field: SortByDate}

// ParseSortField accepts "date", "amount" or "category"; empty means date.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SortByDate, nil
	case SortByDate, SortByAmount, SortByCategory:
		return f, nil
	default:
		return "", NewValidationError("sort", fmt.Sprintf("unknown field %q", s))
	}
}

// Validate rejects inverted ranges, amount bounds beyond the storable
// range and negative limits.
func (f Filter) Validate() error {
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From.Time) {
		return NewValidationError("date range", "end date is before start date")
	}
	if f.MinAmount != nil && f.MinAmount.Abs().GreaterThanOrEqual(maxAmount) {
		return NewValidationError("min amount", "out of range")
	}
	if f.MaxAmount != nil && f.MaxAmount.Abs().GreaterThanOrEqual(maxAmount) {
		return NewValidationError("max amount", "out of range")
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MaxAmount.LessThan(*f.MinAmount) {
		return NewValidationError("amount range", "maximum is below minimum")
	}
	if f.Limit < 0 {
		return NewValidationError("limit", "must not be negative")
	}
	return nil
}

// Key renders the filter as a stable string, used to key cached reports.
// Free-text values are quoted so separators inside labels cannot collide.
func (f Filter) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "from=%s|to=%s|cat=%s", f.From, f.To, strconv.Quote(f.Category))
	if len(f.Categories) > 0 {
		cats := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			cats[i] = strconv.Quote(strings.TrimSpace(c))
		}
		sort.Strings(cats)
		fmt.Fprintf(&b, "|in=%s", strings.Join(cats, ","))
	}
	fmt.Fprintf(&b, "|desc=%s", strconv.Quote(FoldText(f.DescriptionContains)))
	if f.MinAmount != nil {
		fmt.Fprintf(&b, "|min=%s", f.MinAmount.String())
	}
	if f.MaxAmount != nil {
		fmt.Fprintf(&b, "|max=%s", f.MaxAmount.String())
	}
	fmt.Fprintf(&b, "|limit=%d", f.Limit)
	return b.String()
}

// FoldText is the case folding used for description matching, both in
// storage queries and in cache keys.
func FoldText(s string) string {
	return strings.ToLower(s)
}

// Normalize fills in the default field.
func (s Sort) Normalize() Sort {
	if s.Field == "" {
		s.Field = SortByDate
	}
	return s
}

func NewYearMonth(year int, month time.Month) YearMonth {
	return YearMonth{Year: year, Month: month}
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, NewValidationError("month", fmt.Sprintf("must be YYYY-MM, got %q", s))
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Next returns the following calendar month.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// FirstDay returns the first date of the month.
func (ym YearMonth) FirstDay() Date {
	return NewDate(ym.Year, int(ym.Month), 1)
}

// LastDay returns the last date of the month.
func (ym YearMonth) LastDay() Date {
	return Date{Time: ym.Next().FirstDay().AddDate(0, 0, -1)}
}
