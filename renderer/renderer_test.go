package renderer

import (
	"io"
	"strings"
	"testing"

	"github.com/etnz/allocation"
)

// scenario returns the reference portfolio: AAA at 100 USD, 150 JPY per USD,
// and as much cash as AAA is worth.
func scenario(t *testing.T) *allocation.Portfolio {
	t.Helper()
	p := allocation.NewPortfolio("JPY")
	p.Market().Upsert(allocation.MarketEntry{Ticker: "AAA", Currency: "USD", Price: allocation.V(100)})
	p.Market().Upsert(allocation.MarketEntry{Ticker: "CASH", Currency: "JPY", Price: allocation.V(1)})
	if err := p.FX().Set("USD", allocation.V(150)); err != nil {
		t.Fatal(err)
	}

	aaa := allocation.NewHolding("AAA")
	aaa.Account = "NISA"
	aaa.Category = "Equity|US"
	aaa.Quantity = allocation.V(2)
	aaa.TargetWeight = allocation.V(50)
	cash := allocation.NewHolding("CASH")
	cash.Quantity = allocation.V(30000)
	cash.TargetWeight = allocation.V(60)
	for _, h := range []*allocation.Holding{aaa, cash} {
		if err := p.Add(h); err != nil {
			t.Fatal(err)
		}
	}
	return p
}

func render(p *allocation.Portfolio) string {
	return RenderReport(NewReport(p.Compute(), p.FX(), p.Stats()))
}

func TestRenderReport(t *testing.T) {
	got := render(scenario(t))

	for _, want := range []string{
		"# Portfolio allocation in JPY\n",
		"2 holdings, 2 tickers on the market, 2 FX rates.",
		"| ¥60,000 | ¥0 | +¥60,000 | - |",
		"| NISA | AAA | Equity\\|US | 2 | ¥15,000 | ¥30,000 | - | 50.00% | 50.00% | +0.00% | Neutral |",
		"|  | CASH |  | 30000 | ¥1 | ¥30,000 | - | 50.00% | 60.00% | -10.00% | Underweight |",
		"## Deviations (threshold ±1.00%)",
		"- Underweight **CASH** -10.00% ██████████\n",
		"| USD | 150 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderReport() does not contain %q, got:\n%s", want, got)
		}
	}

	// largest deviation first.
	if strings.Index(got, "**CASH**") > strings.Index(got, "**AAA**") {
		t.Errorf("deviations are not sorted:\n%s", got)
	}
	if strings.Contains(got, "error") {
		t.Errorf("RenderReport() reported an error:\n%s", got)
	}
}

func TestRenderReport_Empty(t *testing.T) {
	got := render(allocation.NewPortfolio("JPY"))

	if !strings.HasPrefix(got, "# Portfolio allocation in JPY") {
		t.Errorf("RenderReport() = %q, want a title first", got)
	}
	for _, section := range []string{"## Holdings", "## Deviations", "## FX rates"} {
		if strings.Contains(got, section) {
			t.Errorf("empty report contains %q:\n%s", section, got)
		}
	}
	if !strings.Contains(got, "## Summary") {
		t.Errorf("empty report has no summary:\n%s", got)
	}
}

func TestRenderReport_UnknownValues(t *testing.T) {
	p := allocation.NewPortfolio("JPY")
	h := allocation.NewHolding("GHOST")
	h.Quantity = allocation.V(3)
	h.TargetWeight = allocation.V(10)
	p.Add(h)

	got := render(p)
	if !strings.Contains(got, "| GHOST |  | 3 | - | - | - | - | 10.00% | - | Unknown |") {
		t.Errorf("unknown values must print -, got:\n%s", got)
	}
	if strings.Contains(got, "## Deviations") {
		t.Errorf("no deviation is known, got:\n%s", got)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		deviation allocation.Value
		want      string
	}{
		{allocation.Unknown, ""},
		{allocation.V(0), ""},
		{allocation.V(0.2), "▏"},
		{allocation.V(-3), "███"},
		{allocation.V(2.6), "███"},
		{allocation.V(45), strings.Repeat("█", maxBar) + "…"},
	}
	for _, tt := range tests {
		if got := bar(tt.deviation); got != tt.want {
			t.Errorf("bar(%v) = %q, want %q", tt.deviation, got, tt.want)
		}
	}
}

func TestConditionalBlock(t *testing.T) {
	var b strings.Builder
	ConditionalBlock(&b, func(w io.Writer) bool {
		io.WriteString(w, "dropped")
		return false
	})
	ConditionalBlock(&b, func(w io.Writer) bool {
		io.WriteString(w, "kept")
		return true
	})
	if b.String() != "kept" {
		t.Errorf("ConditionalBlock() wrote %q, want %q", b.String(), "kept")
	}
}
