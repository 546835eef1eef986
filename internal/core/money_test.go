package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"-42.50", "-42.5", true},
		{"+3.25", "3.25", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"1.005", "", false},
		{"1,23", "", false},
		{"1e3", "", false},
		{"€12", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "-42.50", "1000", "-0.99", "123456.78"} {
		d := decimal.RequireFromString(s)
		if back := FromCents(ToCents(d)); !back.Equal(d) {
			t.Fatalf("%s round-tripped to %s", s, back)
		}
	}
	if ToCents(decimal.RequireFromString("-42.50")) != -4250 {
		t.Fatalf("unexpected cents")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"-42.5":  "-42.50",
		"1000":   "1000.00",
		"0":      "0.00",
		"1234.5": "1234.50",
	}
	for in, want := range cases {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatAmount(%s) = %s, want %s", in, got, want)
		}
	}
}
