// Package emi computes equated monthly installments. Pure math, no
// storage, no side effects.
package emi

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("emi: invalid input")

// Calculate returns the fixed monthly installment for a loan, rounded to
// 2 decimal places:
//
//	P·(r/1200) / (1 − (1+r/1200)^(−n))
//
// where P is the principal, r the annual rate in percent and n the number
// of monthly periods. The closed form divides by zero at r=0, so that case
// degenerates to an even split P/n.
//
// The power term is computed in float64 (as is conventional; decimal
// exponentiation buys nothing here) and the result is rounded back onto
// the 2dp money grid.
func Calculate(principal, annualRatePercent decimal.Decimal, months int) (decimal.Decimal, error) {
	if months < 1 {
		return decimal.Zero, fmt.Errorf("%w: months must be >= 1, got %d", ErrInvalidInput, months)
	}
	if !principal.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: principal must be positive, got %s", ErrInvalidInput, principal)
	}
	if annualRatePercent.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: rate must not be negative, got %s", ErrInvalidInput, annualRatePercent)
	}

	if annualRatePercent.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(months))).Round(2), nil
	}

	monthlyRate := annualRatePercent.InexactFloat64() / 1200.0
	discount := 1 - math.Pow(1+monthlyRate, -float64(months))
	installment := principal.InexactFloat64() * monthlyRate / discount
	return decimal.NewFromFloat(installment).Round(2), nil
}
