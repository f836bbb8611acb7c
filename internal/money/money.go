// Package money holds the currency helpers shared by the API and reports:
// cent/decimal conversion and locale-aware display formatting. Amounts are
// stored and computed as dot-decimal values; formatting is display-only.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FromCents converts a whole-cent amount (as typed through an input mask)
// to its decimal value, fixed to two fraction digits.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).Round(2)
}

// ToCents converts a decimal amount back to whole cents. Round-trips exactly
// with FromCents for whole-cent inputs.
func ToCents(d decimal.Decimal) int64 {
	return d.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}

// Format renders an amount with locale grouping and exactly two fraction
// digits, e.g. 1234.5 -> "1.234,50".
func Format(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", f)
}
