package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"0", 0, true},
		{"1500", 1500, true},
		{"1,500", 1500, true},
		{"$6,777.50", 6777.5, true},
		{" 2.50 ", 2.5, true},
		{"12.345", 12.35, true},
		{"1,234,567.891", 1234567.89, true},
		{"-1", 0, false},
		{"", 0, false},
		{"$", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q: expected ok, got %v", tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if got != tc.out {
			t.Fatalf("%q: got %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		v        float64
		decimals int32
		want     string
	}{
		{0, 2, "0.00"},
		{12, 0, "12"},
		{999, 2, "999.00"},
		{1000, 2, "1,000.00"},
		{250000, 0, "250,000"},
		{1234567.891, 2, "1,234,567.89"},
		{-1500, 0, "-1,500"},
		{-123456, 2, "-123,456.00"},
		{math.NaN(), 2, "0"},
		{math.Inf(1), 2, "0"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.v, tc.decimals); got != tc.want {
			t.Fatalf("FormatNumber(%v, %d) = %q, want %q", tc.v, tc.decimals, got, tc.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	if got := FormatCurrency(6777, 2); got != "$6,777.00" {
		t.Fatalf("got %q", got)
	}
	if got := FormatCurrency(-500, 2); got != "-$500.00" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatCompact(t *testing.T) {
	cases := map[float64]string{
		6777:   "$6.8k",
		1000:   "$1.0k",
		365:    "$365",
		107.5:  "$107.5",
		0:      "$0",
		250000: "$250.0k",
	}
	for in, want := range cases {
		if got := FormatCompact(in); got != want {
			t.Errorf("FormatCompact(%v) = %q, want %q", in, got, want)
		}
	}
}
