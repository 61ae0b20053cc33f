// Package core holds the ledger domain model.
//
// This file contains helpers for parsing monetary amounts from strings and
// formatting minor-unit amounts for display.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimal converts a decimal string to minor currency units with
// half-up rounding on the third decimal place. Both dot (12.34) and comma
// (12,34) separators are accepted. Negative and zero amounts are rejected:
// transaction amounts are always positive, direction comes from the type.
//
// Examples:
//
//	ParseDecimal("12.34") -> 1234, nil
//	ParseDecimal("12,34") -> 1234, nil
//	ParseDecimal("12.346") -> 1235, nil (rounds up)
func ParseDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	units := iv*100 + frac
	if units <= 0 {
		return 0, ErrInvalidAmount
	}
	return Money(units), nil
}

// Units returns the major-unit value as a float64 for display purposes.
// Use Money directly for arithmetic to avoid floating-point drift.
func (m Money) Units() float64 {
	return float64(m) / 100.0
}

// String formats the amount as a signed decimal, e.g. "-12.34".
func (m Money) String() string {
	neg := m < 0
	if neg {
		m = -m
	}
	s := strconv.FormatInt(int64(m)/100, 10) + "." + pad2(int64(m)%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
