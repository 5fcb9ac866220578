package quote

import "strings"

// suffixes maps an exchange prefix to the suffix of its symbols on the quote provider.
var suffixes = map[string]string{
	"NASDAQ": "",
	"NYSE":   "",
	"TYO":    ".T",
	"HKG":    ".HK",
	"SHA":    ".SS",
	"SHE":    ".SZ",
}

// MapSymbol converts an exchange prefixed ticker ("TYO:07203") into the
// provider symbol ("7203.T"). Tokyo codes lose their leading zeros. Tickers
// without a known prefix are returned unchanged.
func MapSymbol(ticker string) string {
	exchange, code, ok := strings.Cut(ticker, ":")
	if !ok {
		return ticker
	}
	suffix, known := suffixes[exchange]
	if !known {
		return ticker
	}
	if exchange == "TYO" {
		code = strings.TrimLeft(code, "0")
	}
	return code + suffix
}

// CashCurrency reports whether ticker is a cash line ("Cash_USD") and
// returns its currency. A cash line without currency is in JPY.
func CashCurrency(ticker string) (string, bool) {
	rest, ok := strings.CutPrefix(ticker, "Cash_")
	if !ok {
		return "", false
	}
	cur, _, _ := strings.Cut(rest, "_")
	if cur == "" {
		return "JPY", true
	}
	return strings.ToUpper(cur), true
}
