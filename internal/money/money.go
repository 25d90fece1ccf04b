// Package money handles display rounding of monetary amounts. Intermediate
// computation always stays at full precision; rounding happens once, at the
// point of output.
package money

import "github.com/shopspring/decimal"

// Round rounds an amount to two fraction digits, half-up (half away from
// zero, which is the same thing for the non-negative amounts used here):
// 12.345 rounds to 12.35, 12.344 rounds to 12.34.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders an amount with exactly two fraction digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
