package allocation

import (
	"encoding/json"
	"fmt"
	"sort"
)

// MarketEntry holds what is known about one ticker on the market.
//
// Price is quoted in Currency, not in the base currency. FXToBase is a
// direct rate override, used when Currency is missing from the FX table.
// OverrideTicker redirects the price to another ticker (an alias).
type MarketEntry struct {
	Ticker         string `json:"ticker"`
	Currency       string `json:"currency"`
	Price          Value  `json:"price"`
	FXToBase       Value  `json:"fxToBase"`
	OverrideTicker string `json:"overrideTicker"`
}

// merge returns e updated with the fields known in update.
func (e MarketEntry) merge(update MarketEntry) MarketEntry {
	if update.Currency != "" {
		e.Currency = update.Currency
	}
	e.Price = update.Price.Or(e.Price)
	e.FXToBase = update.FXToBase.Or(e.FXToBase)
	if update.OverrideTicker != "" {
		e.OverrideTicker = update.OverrideTicker
	}
	return e
}

func (e MarketEntry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", e.Ticker)
	w.Optional("currency", e.Currency)
	w.Optional("price", e.Price)
	w.Optional("fxToBase", e.FXToBase)
	w.Optional("overrideTicker", e.OverrideTicker)
	return w.MarshalJSON()
}

// Market holds the market snapshot, one entry per ticker.
type Market struct {
	index map[string]MarketEntry
}

// NewMarket returns a new empty market.
func NewMarket() *Market {
	return &Market{index: make(map[string]MarketEntry)}
}

func (m *Market) Has(ticker string) bool {
	_, ok := m.Get(ticker)
	return ok
}

// Get returns the entry for ticker. A nil Market is empty.
func (m *Market) Get(ticker string) (MarketEntry, bool) {
	if m == nil {
		return MarketEntry{}, false
	}
	e, ok := m.index[ticker]
	return e, ok
}

func (m *Market) Len() int { return len(m.index) }

// Upsert merges e into the market. Fields unknown or empty in e keep their
// previous value, so a price update never forgets an alias or an FX override.
// Entries without a ticker are ignored and Upsert returns false.
func (m *Market) Upsert(e MarketEntry) bool {
	if e.Ticker == "" {
		return false
	}
	e.Currency = NormalizeCurrency(e.Currency)
	prev, ok := m.index[e.Ticker]
	if !ok {
		prev = MarketEntry{Ticker: e.Ticker}
	}
	m.index[e.Ticker] = prev.merge(e)
	return true
}

// Remove deletes the entry for ticker, if any.
func (m *Market) Remove(ticker string) { delete(m.index, ticker) }

// Tickers returns all known tickers in alphabetical order.
func (m *Market) Tickers() []string {
	tickers := make([]string, 0, len(m.index))
	for t := range m.index {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Entries returns all entries in ticker order.
func (m *Market) Entries() []MarketEntry {
	entries := make([]MarketEntry, 0, len(m.index))
	for _, t := range m.Tickers() {
		entries = append(entries, m.index[t])
	}
	return entries
}

// Clone returns an independent copy of m.
func (m *Market) Clone() *Market {
	c := NewMarket()
	for t, e := range m.index {
		c.index[t] = e
	}
	return c
}

func (m *Market) MarshalJSON() ([]byte, error) { return json.Marshal(m.Entries()) }

func (m *Market) UnmarshalJSON(data []byte) error {
	var entries []MarketEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("cannot decode market entries: %w", err)
	}
	m.index = make(map[string]MarketEntry, len(entries))
	for _, e := range entries {
		m.Upsert(e)
	}
	return nil
}
