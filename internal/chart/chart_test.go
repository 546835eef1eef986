package chart

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestCategoryBarsPNG(t *testing.T) {
	img, err := CategoryBars([]report.CategoryTotal{
		{Category: "Salary", Total: decimal.RequireFromString("1000")},
		{Category: "Food", Total: decimal.RequireFromString("-42.50")},
	}, Options{Width: 400, Height: 300})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Fatalf("expected PNG output, got %d bytes starting %q", len(img), img[:min(8, len(img))])
	}
}

func TestMonthlyBarsSVG(t *testing.T) {
	img, err := MonthlyBars([]report.MonthTotal{
		{Month: core.NewYearMonth(2024, time.January), Total: decimal.RequireFromString("957.50")},
		{Month: core.NewYearMonth(2024, time.February), Total: decimal.Zero},
		{Month: core.NewYearMonth(2024, time.March), Total: decimal.RequireFromString("-120")},
	}, Options{Width: 400, Height: 300, Format: SVG})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Contains(img, []byte("<svg")) {
		t.Fatalf("expected SVG output")
	}
	if !bytes.Contains(img, []byte("2024-02")) {
		t.Fatalf("expected month labels in SVG")
	}
}

func TestSingleZeroBarStillRenders(t *testing.T) {
	_, err := MonthlyBars([]report.MonthTotal{
		{Month: core.NewYearMonth(2024, time.January), Total: decimal.Zero},
	}, Options{Width: 300, Height: 200})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
}

func TestNoData(t *testing.T) {
	if _, err := CategoryBars(nil, DefaultOptions()); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := MonthlyBars([]report.MonthTotal{}, DefaultOptions()); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", PNG, true},
		{"png", PNG, true},
		{"svg", SVG, true},
		{"gif", "", false},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParseFormat(%q) = %q, %v", tc.in, got, err)
		}
	}
}
