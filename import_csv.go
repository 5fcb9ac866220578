package allocation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// csvTable is a decoded CSV file with case insensitive column access.
type csvTable struct {
	columns map[string]int
	rows    [][]string
}

// readCSV reads a CSV file whose first line is a header.
func readCSV(r io.Reader) (*csvTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read csv: %w", err)
	}
	t := &csvTable{columns: make(map[string]int)}
	if len(records) == 0 {
		return t, nil
	}
	for i, h := range records[0] {
		h = strings.TrimPrefix(h, "\ufeff")
		t.columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	t.rows = records[1:]
	return t, nil
}

// get returns the trimmed cell of row in the first matching column.
func (t *csvTable) get(row []string, names ...string) string {
	for _, name := range names {
		i, ok := t.columns[name]
		if !ok || i >= len(row) {
			continue
		}
		return strings.TrimSpace(row[i])
	}
	return ""
}

// DecodeHoldingsCSV reads holdings from a CSV file with the columns
// account, ticker, currency, quantity, cost_per_unit, targetweight, category
// and override_ticker. Columns can be in any order and any case. Rows
// without a ticker are skipped. Target weights are on a 0-100 scale.
func DecodeHoldingsCSV(r io.Reader) ([]*Holding, error) {
	t, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	if _, ok := t.columns["ticker"]; !ok && len(t.rows) > 0 {
		return nil, errors.New("cannot read holdings: missing column \"ticker\"")
	}
	list := make([]*Holding, 0, len(t.rows))
	for _, row := range t.rows {
		h := NewHolding(t.get(row, "ticker"))
		if h.Ticker == "" {
			continue
		}
		h.Account = t.get(row, "account")
		h.Currency = NormalizeCurrency(t.get(row, "currency"))
		h.Quantity = ParseQuantity(t.get(row, "quantity"))
		h.CostPerUnit = ParseValue(t.get(row, "cost_per_unit"))
		h.TargetWeight = ParseValue(t.get(row, "targetweight", "target_weight"))
		h.Category = t.get(row, "category")
		h.OverrideTicker = t.get(row, "override_ticker")
		list = append(list, h)
	}
	return list, nil
}

// ImportHoldingsCSV replaces the holdings of p with the ones in r. It
// returns the number of holdings imported.
func (p *Portfolio) ImportHoldingsCSV(r io.Reader) (int, error) {
	list, err := DecodeHoldingsCSV(r)
	if err != nil {
		return 0, err
	}
	if err := p.ReplaceHoldings(list); err != nil {
		return 0, err
	}
	return len(list), nil
}

// ImportMarketCSV merges market data from a CSV file with the columns
// ticker, currency, current_price, fx_to_jpy (or fx_to_base) and
// override_ticker into p. A row with both a currency and an fx rate also
// sets that currency in the FX table, except for the base currency.
// It returns the number of market entries merged.
func (p *Portfolio) ImportMarketCSV(r io.Reader) (int, error) {
	t, err := readCSV(r)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, row := range t.rows {
		e := MarketEntry{
			Ticker:         t.get(row, "ticker"),
			Currency:       NormalizeCurrency(t.get(row, "currency")),
			Price:          ParseValue(t.get(row, "current_price", "price")),
			FXToBase:       ParseValue(t.get(row, "fx_to_jpy", "fx_to_base")),
			OverrideTicker: t.get(row, "override_ticker"),
		}
		if !p.market.Upsert(e) {
			continue
		}
		n++
		if e.Currency != "" && e.Currency != p.Base() && e.FXToBase.Known() {
			if err := p.fx.Set(e.Currency, e.FXToBase); err != nil {
				return n, fmt.Errorf("cannot import rate of %s: %w", e.Ticker, err)
			}
		}
	}
	return n, nil
}
