package product

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
)

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders cents as a dollar string with grouping, e.g. "$1,234.50".
func FormatMoney(m catalog.Money) string {
	return FormatCents(m.Amount)
}

// FormatCents renders an amount in cents.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "$" + moneyPrinter.Sprint(number.Decimal(float64(cents)/100, number.Scale(2)))
}

// FormatPercent renders a fractional rate, e.g. 0.1025 as "10.25%".
func FormatPercent(rate float64) string {
	return moneyPrinter.Sprint(number.Percent(rate, number.MaxFractionDigits(2)))
}
