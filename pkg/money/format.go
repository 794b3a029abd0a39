// Package money renders integer cent amounts for display. It carries no
// pricing behaviour.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale matches the storefront's de-DE/EUR presentation.
var DefaultLocale = language.German

// Format renders cents as euros in the default locale, e.g. 7900 -> "79,00 €".
func Format(cents int64) string {
	return FormatIn(DefaultLocale, cents)
}

// FormatIn renders cents as euros in the given locale.
func FormatIn(tag language.Tag, cents int64) string {
	p := message.NewPrinter(tag)
	return p.Sprintf("%v €", number.Decimal(float64(cents)/100, number.Scale(2)))
}
