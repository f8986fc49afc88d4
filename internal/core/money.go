// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and the decimal representations used on
// screen and on the wire.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// CurrencySymbol prefixes every formatted amount shown to users.
const CurrencySymbol = "₹"

// MaxAmount caps a single transaction. Sums of up to ~900k such amounts
// still fit in int64 cents.
var MaxAmount = Money{Cents: 1e13 - 1}

// ErrAmountTooLarge is an ErrInvalidAmount for amounts above MaxAmount.
var ErrAmountTooLarge = fmt.Errorf("%w: above %s", ErrInvalidAmount, MaxAmount.Fixed())

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Zero is a valid amount; negative
// values and anything that is not a plain decimal number are rejected.
//
// Examples:
//   ParseDecimalToCents("12.34") -> 1234, nil
//   ParseDecimalToCents("12,34") -> 1234, nil
//   ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//   ParseDecimalToCents("abc") -> 0, ErrInvalidAmount
//   ParseDecimalToCents("100000000000") -> 0, ErrAmountTooLarge
func ParseDecimalToCents(s string) (int64, error) {
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
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if iv > MaxAmount.Cents/100 {
		return 0, ErrAmountTooLarge
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents > MaxAmount.Cents {
		return 0, ErrAmountTooLarge
	}
	return cents, nil
}

// ParseMoney is ParseDecimalToCents wrapped into Money.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o; the result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Fixed formats the amount with exactly two decimals, e.g. "1200.00".
func (m Money) Fixed() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Display formats the amount for users, e.g. "₹67000.00" or "-₹12.50".
func (m Money) Display() string {
	if m.Cents < 0 {
		return "-" + CurrencySymbol + Money{Cents: -m.Cents}.Fixed()
	}
	return CurrencySymbol + m.Fixed()
}

// Decimal returns the shortest exact decimal text, e.g. "50000" or "1200.5".
func (m Money) Decimal() string {
	s := m.Fixed()
	if strings.HasSuffix(s, ".00") {
		return strings.TrimSuffix(s, ".00")
	}
	return strings.TrimSuffix(s, "0")
}

// Float returns the value as a float64 for chart payloads and spreadsheets.
// Use cents for calculations.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) String() string {
	return m.Display()
}
