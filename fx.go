package allocation

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBaseCurrency is returned when trying to edit or remove the base currency rate.
var ErrBaseCurrency = errors.New("the base currency rate is fixed to 1")

// FXTable maps a currency code to the number of base currency units per one
// unit of that currency. The base currency always maps to 1.
type FXTable struct {
	base  string
	rates map[string]Value
}

// NewFXTable returns a table holding only the base currency.
func NewFXTable(base string) *FXTable {
	base = NormalizeCurrency(base)
	return &FXTable{
		base:  base,
		rates: map[string]Value{base: V(1)},
	}
}

// Base returns the base currency code.
func (t *FXTable) Base() string { return t.base }

// Rate returns the rate to base for currency, and whether the table has one.
func (t *FXTable) Rate(currency string) (Value, bool) {
	r, ok := t.rates[currency]
	return r, ok
}

// rateFor returns the table rate for currency if there is one, fallback otherwise.
func (t *FXTable) rateFor(currency string, fallback Value) Value {
	if currency != "" {
		if r, ok := t.rates[currency]; ok {
			return r
		}
	}
	return fallback
}

// Set adds or edits the rate of currency.
func (t *FXTable) Set(currency string, rate Value) error {
	currency = NormalizeCurrency(currency)
	if currency == "" {
		return fmt.Errorf("%w: empty code", ErrInvalidCurrency)
	}
	if currency == t.base {
		if rate.Equal(V(1)) {
			return nil
		}
		return fmt.Errorf("cannot set %s to %v: %w", currency, rate, ErrBaseCurrency)
	}
	if !rate.Known() {
		return fmt.Errorf("cannot set %s: the rate is unknown", currency)
	}
	t.rates[currency] = rate
	return nil
}

// Remove deletes the rate for currency. The base currency cannot be removed.
func (t *FXTable) Remove(currency string) error {
	currency = NormalizeCurrency(currency)
	if currency == t.base {
		return fmt.Errorf("cannot remove %s: %w", currency, ErrBaseCurrency)
	}
	delete(t.rates, currency)
	return nil
}

// Currencies returns the currency codes, the base first then alphabetically.
func (t *FXTable) Currencies() []string {
	list := make([]string, 0, len(t.rates))
	for c := range t.rates {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i] == t.base || list[j] == t.base {
			return list[i] == t.base
		}
		return list[i] < list[j]
	})
	return list
}

func (t *FXTable) Len() int { return len(t.rates) }

// Rates returns a copy of the table as a map.
func (t *FXTable) Rates() map[string]Value {
	m := make(map[string]Value, len(t.rates))
	for c, r := range t.rates {
		m[c] = r
	}
	return m
}

// Clone returns an independent copy of t.
func (t *FXTable) Clone() *FXTable {
	return &FXTable{base: t.base, rates: t.Rates()}
}

// reset drops every rate except the base one.
func (t *FXTable) reset() {
	t.rates = map[string]Value{t.base: V(1)}
}

func (t *FXTable) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	for _, c := range t.Currencies() {
		w.Append(c, t.rates[c])
	}
	return w.MarshalJSON()
}
