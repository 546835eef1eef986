package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func tx(date, amount, category string) core.Transaction {
	return core.Transaction{
		Date:     core.MustParseDate(date),
		Amount:   decimal.RequireFromString(amount),
		Category: category,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEmptyInput(t *testing.T) {
	if got := ByCategory(nil); got == nil || len(got) != 0 {
		t.Fatalf("ByCategory(nil) = %v, want empty map", got)
	}
	if got := ByMonth(nil); got == nil || len(got) != 0 {
		t.Fatalf("ByMonth(nil) = %v, want empty slice", got)
	}
	if got := Summarize(nil); got.Count != 0 || !got.Net.IsZero() {
		t.Fatalf("Summarize(nil) = %+v", got)
	}
	if _, _, ok := Span(nil); ok {
		t.Fatalf("Span(nil) should report no data")
	}
}

func TestCategoryAndMonthTotals(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-01-15", "-42.50", "Food"),
		tx("2024-01-20", "1000.00", "Salary"),
	}

	cats := ByCategory(txs)
	if len(cats) != 2 || !cats["Food"].Equal(dec("-42.50")) || !cats["Salary"].Equal(dec("1000.00")) {
		t.Fatalf("unexpected category totals: %v", cats)
	}

	months := ByMonth(txs)
	if len(months) != 1 {
		t.Fatalf("expected one month, got %v", months)
	}
	if months[0].Month.String() != "2024-01" || !months[0].Total.Equal(dec("957.50")) {
		t.Fatalf("unexpected month total: %+v", months[0])
	}
}

func TestByCategoryExactSum(t *testing.T) {
	var txs []core.Transaction
	want := decimal.Zero
	for i := 0; i < 100; i++ {
		// 0.10 summed a hundred times is exactly 10 in decimal arithmetic.
		txs = append(txs, tx("2024-02-01", "-0.10", "Food"))
		want = want.Add(dec("-0.10"))
	}
	got := ByCategory(txs)
	if len(got) != 1 || !got["Food"].Equal(want) || !got["Food"].Equal(dec("-10")) {
		t.Fatalf("expected exact -10, got %v", got)
	}
}

func TestByMonthOrderingAndGaps(t *testing.T) {
	txs := []core.Transaction{
		tx("2024-03-10", "5", "A"),
		tx("2023-12-31", "1", "A"),
		tx("2024-01-01", "2", "B"),
		tx("2024-03-01", "-1", "B"),
	}
	got := ByMonth(txs)
	want := []struct {
		month string
		total string
	}{
		{"2023-12", "1"},
		{"2024-01", "2"},
		{"2024-03", "4"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %v", len(want), got)
	}
	for i, w := range want {
		if got[i].Month.String() != w.month || !got[i].Total.Equal(dec(w.total)) {
			t.Fatalf("entry %d: expected %s=%s, got %s=%s", i, w.month, w.total, got[i].Month, got[i].Total)
		}
	}
}

func TestByMonthDense(t *testing.T) {
	txs := []core.Transaction{
		tx("2023-11-05", "9", "A"), // outside window
		tx("2023-12-31", "1", "A"),
		tx("2024-03-01", "-1", "B"),
	}
	got := ByMonthDense(txs, core.NewYearMonth(2023, time.December), core.NewYearMonth(2024, time.March))
	want := []string{"1", "0", "0", "-1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %v", len(want), got)
	}
	for i, w := range want {
		if !got[i].Total.Equal(dec(w)) {
			t.Fatalf("entry %d (%s): expected %s, got %s", i, got[i].Month, w, got[i].Total)
		}
	}
	if got[1].Month.String() != "2024-01" {
		t.Fatalf("dense series should cross the year boundary, got %s", got[1].Month)
	}

	inverted := ByMonthDense(txs, core.NewYearMonth(2024, time.March), core.NewYearMonth(2024, time.January))
	if inverted == nil || len(inverted) != 0 {
		t.Fatalf("inverted window should give empty series, got %v", inverted)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]core.Transaction{
		tx("2024-01-15", "-42.50", "Food"),
		tx("2024-01-20", "1000.00", "Salary"),
		tx("2024-01-21", "-7.50", "Transport"),
	})
	if s.Count != 3 || !s.Income.Equal(dec("1000")) || !s.Expense.Equal(dec("-50")) || !s.Net.Equal(dec("950")) {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestSpan(t *testing.T) {
	from, to, ok := Span([]core.Transaction{
		tx("2024-05-01", "1", "A"),
		tx("2023-02-01", "1", "A"),
		tx("2024-01-01", "1", "A"),
	})
	if !ok || from.String() != "2023-02" || to.String() != "2024-05" {
		t.Fatalf("unexpected span %s..%s ok=%v", from, to, ok)
	}
}

func TestSortedCategories(t *testing.T) {
	got := SortedCategories(map[string]decimal.Decimal{
		"Food":   dec("-42.50"),
		"Salary": dec("1000"),
		"Bus":    dec("-42.50"),
	})
	order := []string{"Salary", "Bus", "Food"}
	for i, c := range order {
		if got[i].Category != c {
			t.Fatalf("position %d: expected %s, got %s", i, c, got[i].Category)
		}
	}
}

func TestInputNotMutated(t *testing.T) {
	txs := []core.Transaction{tx("2024-02-01", "1", "B"), tx("2024-01-01", "2", "A")}
	_ = ByMonth(txs)
	_ = ByCategory(txs)
	if txs[0].Category != "B" || txs[1].Category != "A" {
		t.Fatalf("input reordered: %+v", txs)
	}
}
