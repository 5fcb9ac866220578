package allocation

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// PricesDocument is the normalized market snapshot produced by the quote
// fetcher: a price per ticker and a rate to base per currency.
type PricesDocument struct {
	Prices []Quote          `json:"prices"`
	FX     map[string]Value `json:"fx"`
}

// Quote is the price of a ticker, in its quote currency.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Currency  string    `json:"currency,omitempty"`
	Price     Value     `json:"price"`
	FetchedAt time.Time `json:"fetchedAt,omitzero"`
}

// DecodePrices reads a PricesDocument.
func DecodePrices(r io.Reader) (PricesDocument, error) {
	var doc PricesDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return doc, fmt.Errorf("cannot decode prices: %w", err)
	}
	return doc, nil
}

// EncodePrices writes doc as an indented JSON document.
func EncodePrices(w io.Writer, doc PricesDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// LoadPrices merges doc into p. Quotes only update price and currency,
// aliases and rate overrides already known are preserved. It returns the
// number of quotes merged.
func (p *Portfolio) LoadPrices(doc PricesDocument) (int, error) {
	for cur, rate := range doc.FX {
		if !rate.Known() || NormalizeCurrency(cur) == p.Base() {
			continue
		}
		if err := p.fx.Set(cur, rate); err != nil {
			return 0, fmt.Errorf("cannot load prices: %w", err)
		}
	}
	n := 0
	for _, q := range doc.Prices {
		if p.market.Upsert(MarketEntry{Ticker: q.Ticker, Currency: NormalizeCurrency(q.Currency), Price: q.Price}) {
			n++
		}
	}
	return n, nil
}
