// Package types provides common value types shared across the platform.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// AmountPlaces is the scale of stored monetary amounts.
const AmountPlaces = 2

// RatePlaces is the maximum scale of tax rates.
const RatePlaces = 5

// NewMoneyFromString creates a Money value from a string.
// This is the preferred constructor for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundAmount rounds a monetary amount to 2 fractional digits (half up).
func RoundAmount(m Money) Money {
	return m.Round(AmountPlaces)
}

// RoundRate rounds a tax rate to its maximum scale of 5 fractional digits.
func RoundRate(m Money) Money {
	return m.Round(RatePlaces)
}

// Percent applies a percentage rate to a base amount and rounds the
// result to amount scale: Percent(100.00, 20) == 20.00.
func Percent(base, rate Money) Money {
	return RoundAmount(base.Mul(rate).Div(decimal.NewFromInt(100)))
}
