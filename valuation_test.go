package allocation

import "testing"

func TestComputeRow(t *testing.T) {
	market := newTestMarket(
		MarketEntry{Ticker: "AAA", Currency: "USD", Price: V(100)},
		MarketEntry{Ticker: "SYN", Currency: "USD", OverrideTicker: "AAA"},
		MarketEntry{Ticker: "EUR1", Currency: "EUR", Price: V(10), FXToBase: V(160)},
		MarketEntry{Ticker: "LOOP", OverrideTicker: "LOOP"},
	)
	fx := scenarioFX()

	tests := []struct {
		name    string
		holding *Holding
		want    Row
	}{
		{
			name:    "scenario A",
			holding: holding("AAA", 2),
			want: Row{
				Currency: "USD", Rate: V(150), Price: V(100),
				PriceBase: V(15000), ValueBase: V(30000), CostBase: Unknown, PnL: Unknown,
			},
		},
		{
			name:    "scenario B: holding alias without market entry",
			holding: &Holding{Ticker: "BBB", Quantity: V(1), OverrideTicker: "AAA"},
			want: Row{
				Currency: "", Rate: Unknown, Price: Unknown,
				PriceBase: V(15000), ValueBase: V(15000), CostBase: Unknown, PnL: Unknown,
			},
		},
		{
			name:    "market alias",
			holding: &Holding{Ticker: "SYN", Quantity: V(3), CostPerUnit: V(90)},
			want: Row{
				Currency: "USD", Rate: V(150), Price: V(100),
				PriceBase: V(15000), ValueBase: V(45000), CostBase: V(40500), PnL: V(4500),
			},
		},
		{
			name:    "holding alias wins over market alias",
			holding: &Holding{Ticker: "LOOP", Quantity: V(1), OverrideTicker: "AAA"},
			want: Row{
				Currency: "", Rate: Unknown, Price: Unknown,
				PriceBase: V(15000), ValueBase: V(15000), CostBase: Unknown, PnL: Unknown,
			},
		},
		{
			name:    "cost uses the currency rate, not the alias",
			holding: &Holding{Ticker: "BBB", Currency: "USD", Quantity: V(2), CostPerUnit: V(50), OverrideTicker: "EUR1"},
			want: Row{
				Currency: "USD", Rate: V(150), Price: V(1600).Div(V(150)),
				PriceBase: V(1600), ValueBase: V(3200), CostBase: V(15000), PnL: V(-11800),
			},
		},
		{
			name:    "holding currency reinterprets the market price",
			holding: &Holding{Ticker: "EUR1", Currency: "USD", Quantity: V(1)},
			want: Row{
				Currency: "USD", Rate: V(150), Price: V(10),
				PriceBase: V(1500), ValueBase: V(1500), CostBase: Unknown, PnL: Unknown,
			},
		},
		{
			name:    "fx override of the market entry",
			holding: &Holding{Ticker: "EUR1", Quantity: V(2), CostPerUnit: V(8)},
			want: Row{
				Currency: "EUR", Rate: V(160), Price: V(10),
				PriceBase: V(1600), ValueBase: V(3200), CostBase: V(2560), PnL: V(640),
			},
		},
		{
			name:    "scenario D: no market entry",
			holding: &Holding{Ticker: "GHOST", Quantity: V(5), CostPerUnit: V(1)},
			want: Row{
				Currency: "", Rate: Unknown, Price: Unknown,
				PriceBase: Unknown, ValueBase: Unknown, CostBase: Unknown, PnL: Unknown,
			},
		},
		{
			name:    "unknown quantity holds nothing",
			holding: &Holding{Ticker: "AAA", CostPerUnit: V(80)},
			want: Row{
				Currency: "USD", Rate: V(150), Price: V(100),
				PriceBase: V(15000), ValueBase: V(0), CostBase: V(0), PnL: V(0),
			},
		},
		{
			name:    "self alias without price",
			holding: &Holding{Ticker: "LOOP", Quantity: V(1)},
			want: Row{
				Currency: "", Rate: Unknown, Price: Unknown,
				PriceBase: Unknown, ValueBase: Unknown, CostBase: Unknown, PnL: Unknown,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRow(tt.holding, market, fx)
			if got.Currency != tt.want.Currency {
				t.Errorf("Currency = %q, want %q", got.Currency, tt.want.Currency)
			}
			check := func(field string, got, want Value) {
				t.Helper()
				if !got.Equal(want) {
					t.Errorf("%s = %v, want %v", field, got, want)
				}
			}
			check("Rate", got.Rate, tt.want.Rate)
			check("Price", got.Price, tt.want.Price)
			check("PriceBase", got.PriceBase, tt.want.PriceBase)
			check("ValueBase", got.ValueBase, tt.want.ValueBase)
			check("CostBase", got.CostBase, tt.want.CostBase)
			check("PnL", got.PnL, tt.want.PnL)
		})
	}
}

func TestComputeRow_DoesNotMutateMarket(t *testing.T) {
	market := scenarioMarket()
	before, _ := market.Get("AAA")
	h := &Holding{Ticker: "AAA", Currency: "EUR", Quantity: V(1), OverrideTicker: "CASH"}

	ComputeRow(h, market, scenarioFX())

	after, _ := market.Get("AAA")
	if after != before {
		t.Errorf("market entry changed: got %+v, want %+v", after, before)
	}
	if market.Has("BBB") {
		t.Error("ComputeRow created a market entry")
	}
}

func TestComputePortfolio_ScenarioC(t *testing.T) {
	aaa := holding("AAA", 2)
	aaa.TargetWeight = V(50)
	cash := holding("CASH", 30000)
	cash.TargetWeight = V(60)

	r := ComputePortfolio([]*Holding{aaa, cash}, scenarioMarket(), scenarioFX(), V(1))

	if !r.Totals.Value.Equal(V(60000)) {
		t.Errorf("Totals.Value = %v, want 60000", r.Totals.Value)
	}
	tests := []struct {
		ticker    string
		actual    Value
		deviation Value
		status    Status
	}{
		{"AAA", V(50), V(0), Neutral},
		{"CASH", V(50), V(-10), Underweight},
	}
	for _, tt := range tests {
		row, err := r.Row(tt.ticker)
		if err != nil {
			t.Fatal(err)
		}
		if !row.ActualWeight.Equal(tt.actual) {
			t.Errorf("%s: ActualWeight = %v, want %v", tt.ticker, row.ActualWeight, tt.actual)
		}
		if !row.Deviation.Equal(tt.deviation) {
			t.Errorf("%s: Deviation = %v, want %v", tt.ticker, row.Deviation, tt.deviation)
		}
		if row.Status != tt.status {
			t.Errorf("%s: Status = %v, want %v", tt.ticker, row.Status, tt.status)
		}
	}
}

func TestComputePortfolio_Totals(t *testing.T) {
	market := scenarioMarket()
	fx := scenarioFX()

	t.Run("unknown value contributes nothing", func(t *testing.T) {
		known := holding("AAA", 2)
		ghost := holding("GHOST", 10)
		r := ComputePortfolio([]*Holding{known, ghost}, market, fx, V(1))
		if !r.Totals.Value.Equal(V(30000)) {
			t.Errorf("Totals.Value = %v, want 30000", r.Totals.Value)
		}
		row, _ := r.Row("GHOST")
		if row.ActualWeight.Known() || row.Status != StatusUnknown {
			t.Errorf("GHOST weight = %v status = %v, want unknown", row.ActualWeight, row.Status)
		}
	})

	t.Run("pnl and pnl percent", func(t *testing.T) {
		a := holding("AAA", 2)
		a.CostPerUnit = V(80) // cost 24000, value 30000
		c := holding("CASH", 1000)
		c.CostPerUnit = V(1) // cost 1000, value 1000
		r := ComputePortfolio([]*Holding{a, c}, market, fx, V(1))
		if !r.Totals.Cost.Equal(V(25000)) {
			t.Errorf("Totals.Cost = %v, want 25000", r.Totals.Cost)
		}
		if !r.Totals.PnL.Equal(V(6000)) {
			t.Errorf("Totals.PnL = %v, want 6000", r.Totals.PnL)
		}
		if !r.Totals.PnLPercent.Equal(V(24)) {
			t.Errorf("Totals.PnLPercent = %v, want 24", r.Totals.PnLPercent)
		}
	})

	t.Run("no cost means no pnl percent", func(t *testing.T) {
		r := ComputePortfolio([]*Holding{holding("AAA", 2)}, market, fx, V(1))
		if !r.Totals.PnL.Equal(V(30000)) {
			t.Errorf("Totals.PnL = %v, want 30000", r.Totals.PnL)
		}
		if r.Totals.PnLPercent.Known() {
			t.Errorf("Totals.PnLPercent = %v, want unknown", r.Totals.PnLPercent)
		}
	})

	t.Run("nothing known", func(t *testing.T) {
		r := ComputePortfolio([]*Holding{holding("GHOST", 1)}, market, fx, V(1))
		if !r.Totals.Value.Equal(V(0)) {
			t.Errorf("Totals.Value = %v, want 0", r.Totals.Value)
		}
		if r.Totals.PnL.Known() {
			t.Errorf("Totals.PnL = %v, want unknown", r.Totals.PnL)
		}
	})

	t.Run("empty portfolio", func(t *testing.T) {
		r := ComputePortfolio(nil, market, fx, V(1))
		if len(r.Rows) != 0 || r.Totals.PnL.Known() {
			t.Errorf("ComputePortfolio(nil) = %+v, want no rows and unknown pnl", r)
		}
	})

	t.Run("no target weight", func(t *testing.T) {
		r := ComputePortfolio([]*Holding{holding("AAA", 1)}, market, fx, V(1))
		row := r.Rows[0]
		if !row.ActualWeight.Equal(V(100)) {
			t.Errorf("ActualWeight = %v, want 100", row.ActualWeight)
		}
		if row.Deviation.Known() || row.Status != StatusUnknown {
			t.Errorf("Deviation = %v Status = %v, want unknown", row.Deviation, row.Status)
		}
	})
}

func TestComputePortfolio_IsIdempotent(t *testing.T) {
	holdings := []*Holding{holding("AAA", 2), holding("CASH", 100)}
	market, fx := scenarioMarket(), scenarioFX()
	first := ComputePortfolio(holdings, market, fx, V(1))
	second := ComputePortfolio(holdings, market, fx, V(1))
	for i := range first.Rows {
		if !first.Rows[i].ValueBase.Equal(second.Rows[i].ValueBase) ||
			!first.Rows[i].ActualWeight.Equal(second.Rows[i].ActualWeight) {
			t.Errorf("row %d differs between two computations", i)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		deviation Value
		threshold Value
		want      Status
	}{
		{"unknown deviation", Unknown, V(1), StatusUnknown},
		{"zero", V(0), V(1), Neutral},
		{"equal to threshold", V(1), V(1), Neutral},
		{"equal to negated threshold", V(-1), V(1), Neutral},
		{"above threshold", V(2), V(1), Overweight},
		{"below negated threshold", V(-2), V(1), Underweight},
		{"just above", V(1.0001), V(1), Overweight},
		{"zero threshold", V(0.01), V(0), Overweight},
		{"unknown threshold is zero", V(-0.01), Unknown, Underweight},
		{"zero deviation zero threshold", V(0), V(0), Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.deviation, tt.threshold); got != tt.want {
				t.Errorf("Classify(%v, %v) = %v, want %v", tt.deviation, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestComputePortfolio_ThresholdBoundary(t *testing.T) {
	// two holdings of equal value: each weighs 50%.
	a := holding("CASH", 100)
	a.TargetWeight = V(49) // +1: exactly the threshold
	b := holding("CASH", 100)
	b.TargetWeight = V(48) // +2: above the threshold

	r := ComputePortfolio([]*Holding{a, b}, scenarioMarket(), scenarioFX(), V(1))
	if r.Rows[0].Status != Neutral {
		t.Errorf("deviation equal to threshold: Status = %v, want Neutral", r.Rows[0].Status)
	}
	if r.Rows[1].Status != Overweight {
		t.Errorf("deviation above threshold: Status = %v, want Overweight", r.Rows[1].Status)
	}
}
