// Package currencypkg provides common currency related functionality for apps.
package currencypkg

import "github.com/shopspring/decimal"

// Symbol is the currency sign amounts are displayed with.
const Symbol = "$"

// Format renders the amount with two decimals, the sign before the symbol.
func Format(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + Symbol + amount.Abs().StringFixed(2)
	}

	return Symbol + amount.StringFixed(2)
}
