package report

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders d rounded to whole rupiah with digit grouping, e.g.
// "Rp 1,234,567".
func FormatMoney(d decimal.Decimal) string {
	return "Rp " + FormatNumber(d, 0)
}

// FormatNumber renders d with digit grouping and the given decimals.
func FormatNumber(d decimal.Decimal, places int32) string {
	f, _ := d.Round(places).Float64()
	return printer.Sprintf("%.*f", int(places), f)
}
