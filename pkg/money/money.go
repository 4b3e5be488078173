// Package money renders naira amounts for customer and admin messages.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const Symbol = "₦"

var printer = message.NewPrinter(language.English)

// Format renders d with thousands separators and two decimals, e.g. ₦1,500.00.
func Format(d decimal.Decimal) string {
	return Symbol + printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// FormatWhole renders d rounded to whole naira, e.g. ₦1,500. Used in the
// compact context handed to the response pipeline.
func FormatWhole(d decimal.Decimal) string {
	return Symbol + printer.Sprintf("%d", d.Round(0).IntPart())
}

// Sum adds up the given amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
