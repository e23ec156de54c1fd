// Package money parses and validates caller-supplied monetary amounts.
// Amounts are fixed-point NUMERIC(10,2): at most two fraction digits and at
// most ten digits overall. Out-of-precision input is rejected, never truncated.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalid   = errors.New("invalid amount")
	ErrPrecision = errors.New("amount must have at most 2 decimal places")
	ErrRange     = errors.New("amount out of range")
	ErrNegative  = errors.New("amount must not be negative")
)

// maxAmount is exclusive: NUMERIC(10,2) holds values below 10^8.
var maxAmount = decimal.New(1, 8)

// Parse converts a decimal string like "123.45" into a validated amount.
// Zero is allowed; negative values are not (transaction direction is carried
// by the type field, not the sign).
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalid
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalid
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegative
	}
	// Exponent < -2 means more than two fraction digits were supplied,
	// including textual trailing digits like "1.230".
	if d.Exponent() < -2 {
		return decimal.Zero, ErrPrecision
	}
	if d.Abs().Cmp(maxAmount) >= 0 {
		return decimal.Zero, ErrRange
	}
	return d, nil
}

// ParsePositive is Parse but additionally rejects zero.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsZero() {
		return decimal.Zero, ErrInvalid
	}
	return d, nil
}

// Format renders an amount with exactly two fraction digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
