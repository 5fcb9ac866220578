package allocation

// JPY is the base currency used by tests.
const JPY = "JPY"

// newTestMarket returns a market with the given entries.
func newTestMarket(entries ...MarketEntry) *Market {
	m := NewMarket()
	for _, e := range entries {
		m.Upsert(e)
	}
	return m
}

// newTestFX returns a JPY based table with the given rates (currency, rate pairs).
func newTestFX(rates map[string]float64) *FXTable {
	fx := NewFXTable(JPY)
	for cur, r := range rates {
		if err := fx.Set(cur, V(r)); err != nil {
			panic(err)
		}
	}
	return fx
}

// scenarioMarket is the market of the reference scenarios: AAA quoted 100 USD.
func scenarioMarket() *Market {
	return newTestMarket(
		MarketEntry{Ticker: "AAA", Currency: "USD", Price: V(100)},
		MarketEntry{Ticker: "CASH", Currency: "JPY", Price: V(1)},
	)
}

// scenarioFX is the FX table of the reference scenarios: 150 JPY per USD.
func scenarioFX() *FXTable { return newTestFX(map[string]float64{"USD": 150}) }

// holding is a short hand to build a holding.
func holding(ticker string, qty float64) *Holding {
	h := NewHolding(ticker)
	h.Quantity = V(qty)
	return h
}
