package allocation

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// Money formats v as an amount of currency, using the currency's own
// grapheme, separators and minor units ("¥30,000", "$1,234.50").
//
// Unknown values print "-", and currencies go-money doesn't know print as a
// plain two digits decimal followed by the code. Amounts too large for
// go-money print as a plain decimal followed by the code.
func (v Value) Money(currency string) string {
	if !v.known {
		return "-"
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return v.value.StringFixed(2) + " " + currency
	}
	minor := v.value.Shift(int32(cur.Fraction)).Round(0)
	if minor.Abs().GreaterThan(maxMinorUnits) {
		return v.value.StringFixed(int32(cur.Fraction)) + " " + currency
	}
	return cur.Formatter().Format(minor.IntPart())
}

// SignedMoney is like Money with an explicit "+" for positive amounts.
func (v Value) SignedMoney(currency string) string {
	if v.IsPositive() {
		return "+" + v.Money(currency)
	}
	return v.Money(currency)
}
