package allocation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// This file persists a portfolio session as a single human readable JSON
// document, so that it can live next to the user's CSV files or in a git repo.

// jportfolio is the persisted form of a Portfolio.
type jportfolio struct {
	Base         string     `json:"base"`
	FX           *FXTable   `json:"fx"`
	Holdings     []*Holding `json:"holdings"`
	Market       *Market    `json:"market"`
	ThresholdPct Value      `json:"thresholdPct"`
}

// EncodePortfolio writes p as an indented JSON document.
func EncodePortfolio(w io.Writer, p *Portfolio) error {
	holdings := p.holdings
	if holdings == nil {
		holdings = []*Holding{}
	}
	doc := jportfolio{
		Base:         p.Base(),
		FX:           p.fx,
		Holdings:     holdings,
		Market:       p.market,
		ThresholdPct: p.threshold,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// DecodePortfolio reads a document written by EncodePortfolio.
func DecodePortfolio(r io.Reader) (*Portfolio, error) {
	var doc struct {
		Base         string           `json:"base"`
		FX           map[string]Value `json:"fx"`
		Holdings     []*Holding       `json:"holdings"`
		Market       *Market          `json:"market"`
		ThresholdPct Value            `json:"thresholdPct"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode portfolio: %w", err)
	}
	if doc.Base == "" {
		doc.Base = DefaultBase
	}
	p := NewPortfolio(doc.Base)
	for cur, rate := range doc.FX {
		if NormalizeCurrency(cur) == p.Base() || !rate.Known() {
			continue
		}
		if err := p.fx.Set(cur, rate); err != nil {
			return nil, fmt.Errorf("cannot decode portfolio: %w", err)
		}
	}
	if doc.Market != nil {
		p.market = doc.Market
	}
	for i, h := range doc.Holdings {
		if h != nil && h.ID == "" {
			h.ID = stableID(i, h)
		}
	}
	if err := p.ReplaceHoldings(doc.Holdings); err != nil {
		return nil, fmt.Errorf("cannot decode portfolio: %w", err)
	}
	p.threshold = doc.ThresholdPct.Or(V(DefaultThreshold))
	return p, nil
}

// stableID derives the id of a hand written holding without one, so that it
// stays the same from one load to the next.
func stableID(i int, h *Holding) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%d/%s", i, h.Ticker)).String()
}

// Save writes p to filename. The file is replaced atomically.
func Save(filename string, p *Portfolio) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("cannot save portfolio: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := EncodePortfolio(tmp, p); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot save portfolio to %q: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot save portfolio to %q: %w", filename, err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("cannot save portfolio to %q: %w", filename, err)
	}
	return nil
}

// Load reads the portfolio saved in filename. A missing file yields an
// error matching fs.ErrNotExist.
func Load(filename string) (*Portfolio, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot load portfolio: %w", err)
	}
	defer f.Close()
	p, err := DecodePortfolio(f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", filename, err)
	}
	return p, nil
}
