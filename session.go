package allocation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// ErrUnknownHolding is returned when no holding has the requested id.
var ErrUnknownHolding = errors.New("unknown holding")

// DefaultThreshold is the deviation threshold of a new portfolio, in percent.
const DefaultThreshold = 1

// Portfolio is an editing session: the holdings, the market snapshot, the FX
// table and the deviation threshold. Every mutation is followed by a full,
// side effect free recomputation with Compute.
//
// A Portfolio is not safe for concurrent use. Callers that compute in
// parallel must work on a Clone.
type Portfolio struct {
	holdings  []*Holding
	market    *Market
	fx        *FXTable
	threshold Value
}

// NewPortfolio returns an empty portfolio valued in base.
func NewPortfolio(base string) *Portfolio {
	return &Portfolio{
		market:    NewMarket(),
		fx:        NewFXTable(base),
		threshold: V(DefaultThreshold),
	}
}

func (p *Portfolio) Base() string        { return p.fx.Base() }
func (p *Portfolio) Market() *Market     { return p.market }
func (p *Portfolio) FX() *FXTable        { return p.fx }
func (p *Portfolio) Threshold() Value    { return p.threshold }
func (p *Portfolio) SetThreshold(t Value) { p.threshold = t.Or(V(0)) }

// Holdings returns the holdings in portfolio order.
func (p *Portfolio) Holdings() []*Holding { return slices.Clone(p.holdings) }

// Holding returns the holding with id.
func (p *Portfolio) Holding(id string) (*Holding, bool) {
	i := p.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return p.holdings[i], true
}

func (p *Portfolio) indexOf(id string) int {
	return slices.IndexFunc(p.holdings, func(h *Holding) bool { return h.ID == id })
}

// Add appends h to the portfolio, assigning it an id if it has none.
func (p *Portfolio) Add(h *Holding) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if p.indexOf(h.ID) >= 0 {
		return fmt.Errorf("duplicate holding id %q", h.ID)
	}
	h.Quantity = h.Quantity.Or(V(0))
	p.holdings = append(p.holdings, h)
	return nil
}

// Update edits the holding with id in place. edit works on a copy, which is
// only committed when both edit and validation succeed.
func (p *Portfolio) Update(id string, edit func(*Holding) error) error {
	i := p.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w %q", ErrUnknownHolding, id)
	}
	h := *p.holdings[i]
	if err := edit(&h); err != nil {
		return err
	}
	if err := h.Validate(); err != nil {
		return err
	}
	h.ID = id
	h.Quantity = h.Quantity.Or(V(0))
	*p.holdings[i] = h
	return nil
}

// Remove deletes the holding with id.
func (p *Portfolio) Remove(id string) error {
	i := p.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w %q", ErrUnknownHolding, id)
	}
	p.holdings = slices.Delete(p.holdings, i, i+1)
	return nil
}

// ReplaceHoldings replaces all holdings, as imports do.
func (p *Portfolio) ReplaceHoldings(holdings []*Holding) error {
	previous := p.holdings
	p.holdings = nil
	for _, h := range holdings {
		if err := p.Add(h); err != nil {
			p.holdings = previous
			return err
		}
	}
	return nil
}

// ClearHoldings removes all holdings.
func (p *Portfolio) ClearHoldings() { p.holdings = nil }

// ClearAll forgets everything: holdings, market and all rates but the base one.
func (p *Portfolio) ClearAll() {
	p.holdings = nil
	p.market = NewMarket()
	p.fx.reset()
}

// Compute values the portfolio.
func (p *Portfolio) Compute() *Report {
	return ComputePortfolio(p.holdings, p.market, p.fx, p.threshold)
}

// Clone returns a deep copy of p, suitable for computing while p is edited.
func (p *Portfolio) Clone() *Portfolio {
	c := &Portfolio{
		holdings:  make([]*Holding, 0, len(p.holdings)),
		market:    p.market.Clone(),
		fx:        p.fx.Clone(),
		threshold: p.threshold,
	}
	for _, h := range p.holdings {
		cp := *h
		c.holdings = append(c.holdings, &cp)
	}
	return c
}

// Stats counts what the portfolio knows.
type Stats struct {
	Holdings int
	Tickers  int
	Rates    int
}

func (p *Portfolio) Stats() Stats {
	return Stats{Holdings: len(p.holdings), Tickers: p.market.Len(), Rates: p.fx.Len()}
}
