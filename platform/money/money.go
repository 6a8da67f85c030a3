// Package money formats whole-krona amounts for customer-facing text.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Swedish)

// SEK renders an amount in whole kronor, e.g. 4200 -> "4 200 kr".
func SEK(amount int64) string {
	return printer.Sprintf("%d kr", amount)
}

// SignedSEK renders a price delta with an explicit sign, e.g. "+400 kr".
func SignedSEK(delta int64) string {
	if delta > 0 {
		return "+" + SEK(delta)
	}
	return SEK(delta)
}
