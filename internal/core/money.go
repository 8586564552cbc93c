// Package core holds the record types shared by every layer, plus amount
// parsing and display formatting.
//
// Amounts travel through the system as float64 (the hosted tables store
// reals). Parsing and formatting go through decimal so that user input like
// "1,234.565" is rounded once, at the boundary, and never re-rounded later.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a non-negative amount rounded to cents.
//
// Grouping commas, a leading "$" and surrounding blanks are ignored. Zero is
// accepted (an income of 0 is meaningful); negative values are not.
//
// Examples:
//
//	ParseAmount("1,500")    -> 1500, nil
//	ParseAmount("$6,777.5") -> 6777.5, nil
//	ParseAmount("12.345")   -> 12.35, nil (half away from zero)
//	ParseAmount("-1")       -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Round(2).Float64()
	if math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// FormatNumber renders v with comma grouping and a fixed number of decimals.
// Non-finite values render as "0".
//
//	FormatNumber(1234567.891, 2) -> "1,234,567.89"
//	FormatNumber(-1500, 0)       -> "-1,500"
func FormatNumber(v float64, decimals int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := decimal.NewFromFloat(v).StringFixed(decimals)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg && strings.Trim(s, "0.") != "" {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatCurrency is FormatNumber with a dollar sign, sign first: "-$1,500.00".
func FormatCurrency(v float64, decimals int32) string {
	s := FormatNumber(v, decimals)
	if strings.HasPrefix(s, "-") {
		return "-$" + s[1:]
	}
	return "$" + s
}

// FormatCompact renders calendar-cell amounts: "$6.8k" from 1000 up, whole
// or cent precision below.
func FormatCompact(v float64) string {
	v = finiteOrZero(v)
	if v >= 1000 {
		return "$" + decimal.NewFromFloat(v/1000).StringFixed(1) + "k"
	}
	return "$" + decimal.NewFromFloat(v).Round(2).String()
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
