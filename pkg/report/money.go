package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Formatter renders decimal amounts in a currency's display format.
type Formatter struct {
	currency string
}

// NewFormatter returns a Formatter for an ISO 4217 currency code. Unknown
// codes fall back to plain two-digit output.
func NewFormatter(currency string) Formatter {
	return Formatter{currency: currency}
}

// Format returns amount formatted for display, e.g. "$1,234.56".
func (f Formatter) Format(amount decimal.Decimal) string {
	cur := money.GetCurrency(f.currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + f.currency
	}

	factor := decimal.New(1, int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), cur.Code).Display()
}
