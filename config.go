package allocation

import (
	"encoding/json"
	"fmt"
	"io"
)

// Config is the structured configuration document: the FX rates and one
// asset per holding.
//
// Unlike everywhere else, target weights in a Config are fractions (0-1).
// They are converted to percentages when imported and back when exported.
type Config struct {
	BaseCurrency string           `json:"baseCurrency,omitempty"`
	FXRates      map[string]Value `json:"fxRates,omitempty"`
	Assets       []Asset          `json:"assets"`
}

// Asset is a holding together with its market data, as found in a Config.
type Asset struct {
	Ticker         string `json:"ticker"`
	Account        string `json:"account,omitempty"`
	Currency       string `json:"currency,omitempty"`
	Quantity       Value  `json:"quantity"`
	CostPerUnit    Value  `json:"costPerUnit"`
	TargetWeight   Value  `json:"targetWeight"`
	Category       string `json:"category,omitempty"`
	Role           string `json:"role,omitempty"`
	OverrideTicker string `json:"overrideTicker,omitempty"`
	Price          Value  `json:"price"`
}

var hundred = V(100)

// DecodeConfig reads a Config document.
func DecodeConfig(r io.Reader) (Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("cannot decode config: %w", err)
	}
	return cfg, nil
}

// EncodeConfig writes cfg as an indented JSON document.
func EncodeConfig(w io.Writer, cfg Config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

// ImportConfig merges cfg into p.
//
// Rates are merged into the FX table. Every asset updates the market, and
// the assets with a quantity replace the holdings, if the document has any
// asset list at all.
func (p *Portfolio) ImportConfig(cfg Config) error {
	if cfg.BaseCurrency != "" && NormalizeCurrency(cfg.BaseCurrency) != p.Base() {
		return fmt.Errorf("cannot import config in %s into a portfolio in %s", cfg.BaseCurrency, p.Base())
	}
	for cur, rate := range cfg.FXRates {
		if !rate.Known() || NormalizeCurrency(cur) == p.Base() {
			continue
		}
		if err := p.fx.Set(cur, rate); err != nil {
			return fmt.Errorf("cannot import config: %w", err)
		}
	}
	if cfg.Assets == nil {
		return nil
	}

	holdings := make([]*Holding, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		if a.Ticker == "" {
			continue
		}
		p.market.Upsert(MarketEntry{
			Ticker:         a.Ticker,
			Currency:       NormalizeCurrency(a.Currency),
			Price:          a.Price,
			OverrideTicker: a.OverrideTicker,
		})
		if !a.Quantity.Known() {
			continue
		}
		h := NewHolding(a.Ticker)
		h.Account = a.Account
		h.Currency = NormalizeCurrency(a.Currency)
		h.Quantity = a.Quantity
		h.CostPerUnit = a.CostPerUnit
		h.TargetWeight = a.TargetWeight.Mul(hundred)
		h.Category = a.Role
		if h.Category == "" {
			h.Category = a.Category
		}
		h.OverrideTicker = a.OverrideTicker
		holdings = append(holdings, h)
	}
	return p.ReplaceHoldings(holdings)
}

// ExportConfig snapshots p as a Config. Market facts (current price,
// resolved alias) are folded back into each asset.
func (p *Portfolio) ExportConfig() Config {
	cfg := Config{
		BaseCurrency: p.Base(),
		FXRates:      p.fx.Rates(),
		Assets:       make([]Asset, 0, len(p.holdings)),
	}
	for _, h := range p.holdings {
		entry, _ := p.market.Get(h.Ticker)
		override := h.OverrideTicker
		if override == "" {
			override = entry.OverrideTicker
		}
		cfg.Assets = append(cfg.Assets, Asset{
			Ticker:         h.Ticker,
			Account:        h.Account,
			Currency:       h.Currency,
			Quantity:       h.Quantity,
			CostPerUnit:    h.CostPerUnit,
			TargetWeight:   h.TargetWeight.Div(hundred),
			Category:       h.Category,
			Role:           h.Category,
			OverrideTicker: override,
			Price:          entry.Price,
		})
	}
	return cfg
}
