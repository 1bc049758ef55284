// Package money formats Chilean peso amounts for display.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var clp = message.NewPrinter(language.MustParse("es-CL"))

// FormatCLP renders an amount as whole pesos with es-CL grouping, e.g. $19.990.
func FormatCLP(d decimal.Decimal) string {
	return "$" + clp.Sprintf("%d", d.Round(0).IntPart())
}
