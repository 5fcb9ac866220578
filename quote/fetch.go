package quote

import (
	"context"

	"github.com/etnz/allocation"
)

// Fetch builds a prices document for tickers, valued in base.
//
// Tickers are mapped to provider symbols with MapSymbol but the document
// keeps the original ones. Cash lines are priced 1 in their currency.
// A ticker that cannot be quoted is logged and skipped. Only a cancelled
// context makes Fetch fail.
//
// The FX part holds the rates of every quoted currency and of the baseline
// currencies.
func (f *Fetcher) Fetch(ctx context.Context, tickers []string, base string) (allocation.PricesDocument, error) {
	base = allocation.NormalizeCurrency(base)
	doc := allocation.PricesDocument{Prices: []allocation.Quote{}}
	currencies := map[string]bool{base: true}
	for cur := range baseline {
		currencies[cur] = true
	}

	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true

		if cur, ok := CashCurrency(t); ok {
			doc.Prices = append(doc.Prices, allocation.Quote{Ticker: t, Currency: cur, Price: allocation.V(1), FetchedAt: f.timestamp()})
			currencies[cur] = true
			continue
		}

		symbol := MapSymbol(t)
		q, err := f.Quote(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return doc, ctx.Err()
			}
			f.Log.Warn().Err(err).Str("ticker", t).Str("symbol", symbol).Msg("skipped")
			continue
		}
		q.Ticker = t
		doc.Prices = append(doc.Prices, q)
		if q.Currency != "" {
			currencies[q.Currency] = true
		}
		f.Log.Debug().Str("ticker", t).Str("price", q.Price.String()).Str("currency", q.Currency).Msg("quoted")
	}

	all := f.Rates(ctx, base)
	doc.FX = make(map[string]allocation.Value, len(currencies))
	for cur := range currencies {
		if r, ok := all[cur]; ok {
			doc.FX[cur] = r
		}
	}
	return doc, ctx.Err()
}
