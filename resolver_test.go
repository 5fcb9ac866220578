package allocation

import "testing"

func TestResolveBasePrice(t *testing.T) {
	fx := newTestFX(map[string]float64{"USD": 150, "HKD": 19.4})

	tests := []struct {
		name   string
		market *Market
		ticker string
		want   Value
	}{
		{
			name:   "foreign currency converted with the fx table",
			market: newTestMarket(MarketEntry{Ticker: "AAA", Currency: "USD", Price: V(100)}),
			ticker: "AAA",
			want:   V(15000),
		},
		{
			name:   "base currency is returned as is",
			market: newTestMarket(MarketEntry{Ticker: "T", Currency: "JPY", Price: V(1234.5), FXToBase: V(99)}),
			ticker: "T",
			want:   V(1234.5),
		},
		{
			name:   "base currency zero price",
			market: newTestMarket(MarketEntry{Ticker: "T", Currency: "JPY", Price: V(0)}),
			ticker: "T",
			want:   V(0),
		},
		{
			name:   "base currency without price",
			market: newTestMarket(MarketEntry{Ticker: "T", Currency: "JPY"}),
			ticker: "T",
			want:   Unknown,
		},
		{
			name:   "fx table wins over the entry override",
			market: newTestMarket(MarketEntry{Ticker: "H", Currency: "HKD", Price: V(10), FXToBase: V(20)}),
			ticker: "H",
			want:   V(194),
		},
		{
			name:   "entry override used when currency has no rate",
			market: newTestMarket(MarketEntry{Ticker: "E", Currency: "EUR", Price: V(10), FXToBase: V(160)}),
			ticker: "E",
			want:   V(1600),
		},
		{
			name:   "missing rate",
			market: newTestMarket(MarketEntry{Ticker: "E", Currency: "EUR", Price: V(10)}),
			ticker: "E",
			want:   Unknown,
		},
		{
			name:   "missing price",
			market: newTestMarket(MarketEntry{Ticker: "AAA", Currency: "USD"}),
			ticker: "AAA",
			want:   Unknown,
		},
		{
			name:   "missing currency without override",
			market: newTestMarket(MarketEntry{Ticker: "X", Price: V(10)}),
			ticker: "X",
			want:   Unknown,
		},
		{
			name:   "missing currency with an fx override",
			market: newTestMarket(MarketEntry{Ticker: "X", Price: V(10), FXToBase: V(3)}),
			ticker: "X",
			want:   V(30),
		},
		{
			name:   "unknown ticker",
			market: newTestMarket(),
			ticker: "NOPE",
			want:   Unknown,
		},
		{
			name:   "empty ticker",
			market: newTestMarket(),
			ticker: "",
			want:   Unknown,
		},
		{
			name: "alias without own price",
			market: newTestMarket(
				MarketEntry{Ticker: "AAA", Currency: "USD", Price: V(100)},
				MarketEntry{Ticker: "BBB", OverrideTicker: "AAA"},
			),
			ticker: "BBB",
			want:   V(15000),
		},
		{
			name: "alias wins over own price",
			market: newTestMarket(
				MarketEntry{Ticker: "AAA", Currency: "USD", Price: V(100)},
				MarketEntry{Ticker: "BBB", Currency: "JPY", Price: V(1), OverrideTicker: "AAA"},
			),
			ticker: "BBB",
			want:   V(15000),
		},
		{
			name: "alias chain",
			market: newTestMarket(
				MarketEntry{Ticker: "A", OverrideTicker: "B"},
				MarketEntry{Ticker: "B", OverrideTicker: "C"},
				MarketEntry{Ticker: "C", Currency: "USD", Price: V(2)},
			),
			ticker: "A",
			want:   V(300),
		},
		{
			name: "unresolved alias falls back to own price",
			market: newTestMarket(
				MarketEntry{Ticker: "BBB", Currency: "JPY", Price: V(42), OverrideTicker: "MISSING"},
			),
			ticker: "BBB",
			want:   V(42),
		},
		{
			name: "alias to a ticker without price falls back to own price",
			market: newTestMarket(
				MarketEntry{Ticker: "AAA", Currency: "USD"},
				MarketEntry{Ticker: "BBB", Currency: "USD", Price: V(1), OverrideTicker: "AAA"},
			),
			ticker: "BBB",
			want:   V(150),
		},
		{
			name:   "self alias",
			market: newTestMarket(MarketEntry{Ticker: "A", OverrideTicker: "A"}),
			ticker: "A",
			want:   Unknown,
		},
		{
			name: "two steps cycle",
			market: newTestMarket(
				MarketEntry{Ticker: "A", OverrideTicker: "B"},
				MarketEntry{Ticker: "B", OverrideTicker: "A"},
			),
			ticker: "A",
			want:   Unknown,
		},
		{
			name: "cycle further down the chain",
			market: newTestMarket(
				MarketEntry{Ticker: "A", OverrideTicker: "B"},
				MarketEntry{Ticker: "B", OverrideTicker: "C"},
				MarketEntry{Ticker: "C", OverrideTicker: "B"},
			),
			ticker: "A",
			want:   Unknown,
		},
		{
			name: "cycle member with a price still resolves",
			market: newTestMarket(
				MarketEntry{Ticker: "A", OverrideTicker: "B"},
				MarketEntry{Ticker: "B", OverrideTicker: "A", Currency: "USD", Price: V(1)},
			),
			ticker: "A",
			want:   V(150),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveBasePrice(tt.ticker, tt.market, fx)
			if !got.Equal(tt.want) {
				t.Errorf("ResolveBasePrice(%q) = %v, want %v", tt.ticker, got, tt.want)
			}
		})
	}
}

func TestResolveBasePrice_IsRepeatable(t *testing.T) {
	// the visited set must not leak from one call to the next.
	m := newTestMarket(
		MarketEntry{Ticker: "AAA", Currency: "USD", Price: V(100)},
		MarketEntry{Ticker: "BBB", OverrideTicker: "AAA"},
	)
	fx := scenarioFX()
	for i := 0; i < 3; i++ {
		for _, ticker := range []string{"AAA", "BBB"} {
			if got := ResolveBasePrice(ticker, m, fx); !got.Equal(V(15000)) {
				t.Fatalf("call %d: ResolveBasePrice(%q) = %v, want 15000", i, ticker, got)
			}
		}
	}
}

func TestResolveBasePrice_NilMarket(t *testing.T) {
	if got := ResolveBasePrice("AAA", nil, scenarioFX()); got.Known() {
		t.Errorf("ResolveBasePrice() on a nil market = %v, want unknown", got)
	}
}
