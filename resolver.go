package allocation

// lookupFunc returns the market entry for a ticker.
type lookupFunc func(ticker string) (MarketEntry, bool)

// ResolveBasePrice returns the price of one unit of ticker in the base
// currency of fx.
//
// When the entry has an OverrideTicker the price is resolved through it
// first, and that result wins over the entry's own price. Aliases are user
// data, so cycles are expected: a ticker met twice in the same resolution
// is unknown. Any missing piece (entry, price, currency rate) is unknown too.
func ResolveBasePrice(ticker string, market *Market, fx *FXTable) Value {
	return resolveBasePrice(ticker, market.Get, fx, make(map[string]struct{}))
}

// resolveBasePrice walks the alias chain depth first. visited is scoped to a
// single top level call.
func resolveBasePrice(ticker string, lookup lookupFunc, fx *FXTable, visited map[string]struct{}) Value {
	if ticker == "" {
		return Unknown
	}
	if _, seen := visited[ticker]; seen {
		return Unknown
	}
	visited[ticker] = struct{}{}

	e, ok := lookup(ticker)
	if !ok {
		return Unknown
	}
	if e.OverrideTicker != "" {
		if p := resolveBasePrice(e.OverrideTicker, lookup, fx, visited); p.Known() {
			return p
		}
	}
	return e.basePrice(fx)
}

// basePrice converts the entry's own price to base, ignoring its alias.
func (e MarketEntry) basePrice(fx *FXTable) Value {
	if e.Currency == fx.Base() {
		return e.Price
	}
	return e.Price.Mul(fx.rateFor(e.Currency, e.FXToBase))
}
