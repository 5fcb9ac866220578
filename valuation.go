package allocation

import (
	"encoding/json"
	"fmt"
)

// Status classifies a holding against its target weight.
type Status int

const (
	// StatusUnknown is used when the deviation cannot be computed.
	StatusUnknown Status = iota
	Neutral
	Overweight
	Underweight
)

func (s Status) String() string {
	switch s {
	case Neutral:
		return "Neutral"
	case Overweight:
		return "Overweight"
	case Underweight:
		return "Underweight"
	default:
		return "Unknown"
	}
}

func (s Status) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Classify returns the status of a deviation (in percentage points) given a
// threshold. The comparison is strict: a deviation equal to the threshold is
// Neutral. An unknown threshold counts as 0.
func Classify(deviation, threshold Value) Status {
	if !deviation.Known() {
		return StatusUnknown
	}
	threshold = threshold.Or(V(0))
	switch {
	case deviation.GreaterThan(threshold):
		return Overweight
	case deviation.LessThan(threshold.Neg()):
		return Underweight
	default:
		return Neutral
	}
}

// Row holds the computed figures of one holding. All amounts suffixed with
// Base are in the base currency.
type Row struct {
	Holding Holding

	Currency  string // effective currency of the holding
	Rate      Value  // rate from Currency to base
	Price     Value  // price per unit in Currency
	PriceBase Value
	ValueBase Value
	CostBase  Value
	PnL       Value

	// Portfolio relative figures, in percent.
	ActualWeight Value
	Deviation    Value
	Status       Status
}

// Totals aggregates the rows of a report, in the base currency.
type Totals struct {
	Value      Value
	Cost       Value
	PnL        Value
	PnLPercent Value
}

// Report is the valuation of a whole portfolio.
type Report struct {
	Base      string
	Threshold Value
	Rows      []Row
	Totals    Totals
}

// ComputeRow values a single holding.
//
// The price goes through the alias resolution of the holding's effective
// market entry: the market entry of the ticker where the currency, the rate
// and the alias are replaced by the holding's own when it declares them.
// The cost is converted with the currency rate, never with the alias: cost
// basis is always in the holding's purchase currency.
func ComputeRow(h *Holding, market *Market, fx *FXTable) Row {
	entry, _ := market.Get(h.Ticker)

	currency := h.Currency
	if currency == "" {
		currency = entry.Currency
	}
	rate := fx.rateFor(currency, entry.FXToBase)

	override := h.OverrideTicker
	if override == "" {
		override = entry.OverrideTicker
	}
	effective := MarketEntry{
		Ticker:         h.Ticker,
		Currency:       currency,
		Price:          entry.Price,
		FXToBase:       rate,
		OverrideTicker: override,
	}
	lookup := func(ticker string) (MarketEntry, bool) {
		if ticker == h.Ticker {
			return effective, true
		}
		return market.Get(ticker)
	}
	priceBase := resolveBasePrice(h.Ticker, lookup, fx, make(map[string]struct{}))

	qty := h.Quantity.Or(V(0))
	valueBase := priceBase.Mul(qty)
	costBase := h.CostPerUnit.Mul(qty).Mul(rate)

	return Row{
		Holding:   *h,
		Currency:  currency,
		Rate:      rate,
		Price:     priceBase.Div(rate),
		PriceBase: priceBase,
		ValueBase: valueBase,
		CostBase:  costBase,
		PnL:       valueBase.Sub(costBase),
	}
}

// ComputePortfolio values every holding and computes the portfolio totals,
// weights and deviations.
//
// Totals are sum tolerant: a holding with an unknown value or cost does not
// contribute, it does not blank out the total. The total P&L is unknown only
// when no holding contributes anything at all.
func ComputePortfolio(holdings []*Holding, market *Market, fx *FXTable, threshold Value) *Report {
	r := &Report{
		Base:      fx.Base(),
		Threshold: threshold.Or(V(0)),
		Rows:      make([]Row, 0, len(holdings)),
	}

	totalValue, totalCost := V(0), V(0)
	contributed := false
	for _, h := range holdings {
		row := ComputeRow(h, market, fx)
		if row.ValueBase.Known() {
			totalValue = totalValue.Add(row.ValueBase)
			contributed = true
		}
		if row.CostBase.Known() {
			totalCost = totalCost.Add(row.CostBase)
			contributed = true
		}
		r.Rows = append(r.Rows, row)
	}

	r.Totals = Totals{Value: totalValue, Cost: totalCost, PnL: Unknown, PnLPercent: Unknown}
	if contributed {
		r.Totals.PnL = totalValue.Sub(totalCost)
	}
	if totalCost.IsPositive() {
		r.Totals.PnLPercent = r.Totals.PnL.Div(totalCost).Mul(V(100))
	}

	for i := range r.Rows {
		row := &r.Rows[i]
		if totalValue.IsPositive() {
			row.ActualWeight = row.ValueBase.Div(totalValue).Mul(V(100))
		}
		row.Deviation = row.ActualWeight.Sub(row.Holding.TargetWeight)
		row.Status = Classify(row.Deviation, r.Threshold)
	}
	return r
}

// Row returns the first row for ticker.
func (r *Report) Row(ticker string) (Row, error) {
	for _, row := range r.Rows {
		if row.Holding.Ticker == ticker {
			return row, nil
		}
	}
	return Row{}, fmt.Errorf("no holding for ticker %q", ticker)
}

func (row Row) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(row.Holding)
	w.Optional("effectiveCurrency", row.Currency)
	w.Append("rate", row.Rate)
	w.Append("price", row.Price)
	w.Append("priceBase", row.PriceBase)
	w.Append("valueBase", row.ValueBase)
	w.Append("costBase", row.CostBase)
	w.Append("pnl", row.PnL)
	w.Append("actualWeightPct", row.ActualWeight)
	w.Append("deviationPct", row.Deviation)
	w.Append("status", row.Status)
	return w.MarshalJSON()
}

func (t Totals) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("value", t.Value)
	w.Append("cost", t.Cost)
	w.Append("pnl", t.PnL)
	w.Append("pnlPct", t.PnLPercent)
	return w.MarshalJSON()
}

func (r *Report) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("base", r.Base)
	w.Append("thresholdPct", r.Threshold)
	w.Append("rows", r.Rows)
	w.Append("totals", r.Totals)
	return w.MarshalJSON()
}
