package allocation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
)

// DefaultBase is the base currency of a new portfolio.
const DefaultBase = "JPY"

// currencyCodeRegex checks for the format: 3 uppercase letters.
var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// ErrInvalidCurrency is returned for currency codes that are not ISO 4217 like.
var ErrInvalidCurrency = errors.New("invalid currency code")

// NormalizeCurrency trims and upper cases a user typed currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCurrency checks that code is 3 uppercase letters and a currency known to go-money.
func ValidateCurrency(code string) error {
	if !currencyCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: must be 3 uppercase letters, got %q", ErrInvalidCurrency, code)
	}
	if money.GetCurrency(code) == nil {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidCurrency, code)
	}
	return nil
}
