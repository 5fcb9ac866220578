package allocation

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrMissingTicker is returned for holdings without a ticker.
var ErrMissingTicker = errors.New("holding has no ticker")

// Holding is one portfolio line.
//
// Account and Category are free labels, never used in computations.
// Currency, when empty, is inherited from the market entry of Ticker.
// TargetWeight is a percentage of the whole portfolio on a 0-100 scale.
// OverrideTicker, when set, takes precedence over the market alias of Ticker.
type Holding struct {
	ID             string
	Account        string
	Ticker         string
	Currency       string
	Quantity       Value
	CostPerUnit    Value
	TargetWeight   Value
	Category       string
	OverrideTicker string
}

// NewHolding returns a new holding of nothing, with a fresh id.
func NewHolding(ticker string) *Holding {
	return &Holding{
		ID:       uuid.NewString(),
		Ticker:   strings.TrimSpace(ticker),
		Quantity: V(0),
	}
}

// Validate checks that h can be valued.
func (h *Holding) Validate() error {
	if strings.TrimSpace(h.Ticker) == "" {
		return ErrMissingTicker
	}
	return nil
}

// jholding is the persisted form of a Holding.
type jholding struct {
	ID             string `json:"id"`
	Account        string `json:"account"`
	Ticker         string `json:"ticker"`
	Currency       string `json:"currency"`
	Quantity       Value  `json:"quantity"`
	CostPerUnit    Value  `json:"costPerUnit"`
	TargetWeight   Value  `json:"targetWeight"`
	Category       string `json:"category"`
	OverrideTicker string `json:"overrideTicker"`
}

func (h Holding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", h.ID)
	w.Optional("account", h.Account)
	w.Append("ticker", h.Ticker)
	w.Optional("currency", h.Currency)
	w.Append("quantity", h.Quantity.Or(V(0)))
	w.Optional("costPerUnit", h.CostPerUnit)
	w.Optional("targetWeight", h.TargetWeight)
	w.Optional("category", h.Category)
	w.Optional("overrideTicker", h.OverrideTicker)
	return w.MarshalJSON()
}

func (h *Holding) UnmarshalJSON(data []byte) error {
	var j jholding
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*h = Holding{
		ID:             j.ID,
		Account:        j.Account,
		Ticker:         j.Ticker,
		Currency:       NormalizeCurrency(j.Currency),
		Quantity:       j.Quantity.Or(V(0)),
		CostPerUnit:    j.CostPerUnit,
		TargetWeight:   j.TargetWeight,
		Category:       j.Category,
		OverrideTicker: j.OverrideTicker,
	}
	return nil
}
