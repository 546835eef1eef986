// Package report computes aggregates over a supplied slice of transactions.
//
// Every function is pure: no storage access, no mutation of the input, and
// the same input always yields the same output. Amounts follow the ledger's
// sign convention (income positive, expense negative), so a category or
// month total is the net of both.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

type (
	// MonthTotal is the net amount of one calendar month.
	MonthTotal struct {
		Month core.YearMonth
		Total decimal.Decimal
	}

	// CategoryTotal is one entry of a category breakdown.
	CategoryTotal struct {
		Category string
		Total    decimal.Decimal
	}

	// Summary is an income/expense overview of a set of transactions.
	Summary struct {
		Count   int
		Income  decimal.Decimal // sum of positive amounts
		Expense decimal.Decimal // sum of negative amounts, itself negative or zero
		Net     decimal.Decimal
	}
)

// ByCategory sums amounts per category. Categories without transactions
// have no entry; an empty input gives an empty, non-nil map.
func ByCategory(txs []core.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range txs {
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out
}

// ByMonth sums amounts per calendar month in ascending order. Months without
// transactions are omitted; use ByMonthDense for a gap-free series.
func ByMonth(txs []core.Transaction) []MonthTotal {
	sums := make(map[core.YearMonth]decimal.Decimal)
	for _, t := range txs {
		ym := t.Date.YearMonth()
		sums[ym] = sums[ym].Add(t.Amount)
	}

	out := make([]MonthTotal, 0, len(sums))
	for ym, total := range sums {
		out = append(out, MonthTotal{Month: ym, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// ByMonthDense returns one entry for every month in [from, to], zero where
// no transaction falls. Transactions outside the window are ignored. An
// inverted window gives an empty series.
func ByMonthDense(txs []core.Transaction, from, to core.YearMonth) []MonthTotal {
	out := []MonthTotal{}
	if to.Before(from) {
		return out
	}

	index := make(map[core.YearMonth]int)
	for ym := from; !to.Before(ym); ym = ym.Next() {
		index[ym] = len(out)
		out = append(out, MonthTotal{Month: ym, Total: decimal.Zero})
	}
	for _, t := range txs {
		if i, ok := index[t.Date.YearMonth()]; ok {
			out[i].Total = out[i].Total.Add(t.Amount)
		}
	}
	return out
}

// Span returns the first and last month covered by txs.
func Span(txs []core.Transaction) (from, to core.YearMonth, ok bool) {
	for i, t := range txs {
		ym := t.Date.YearMonth()
		if i == 0 || ym.Before(from) {
			from = ym
		}
		if i == 0 || to.Before(ym) {
			to = ym
		}
	}
	return from, to, len(txs) > 0
}

// Summarize splits the total into income and expense.
func Summarize(txs []core.Transaction) Summary {
	s := Summary{Income: decimal.Zero, Expense: decimal.Zero, Net: decimal.Zero}
	for _, t := range txs {
		s.Count++
		if t.Amount.IsNegative() {
			s.Expense = s.Expense.Add(t.Amount)
		} else {
			s.Income = s.Income.Add(t.Amount)
		}
	}
	s.Net = s.Income.Add(s.Expense)
	return s
}

// SortedCategories orders a category breakdown for display: largest
// absolute total first, label as tie-break.
func SortedCategories(totals map[string]decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(totals))
	for c, v := range totals {
		out = append(out, CategoryTotal{Category: c, Total: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Total.Abs().Cmp(out[j].Total.Abs()); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
