package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/quote"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

type fetchCmd struct {
	output string
	load   bool
	market string
	config string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch current prices and FX rates" }
func (*fetchCmd) Usage() string {
	return `alloc fetch [-o <json>] [-load] [-market <csv> | -config <json>]

  Fetches the current price of every ticker of the portfolio, and the FX
  rates to the base currency, and writes them as a prices document.

  Tickers are read from the portfolio, or from a market CSV or a
  configuration document. Tickers that cannot be quoted are skipped.

  With -load, the prices are also merged into the portfolio.

  The providers can be changed with $ALLOC_QUOTE_URL and $ALLOC_FX_URL.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file for the prices document. Defaults to stdout, unless -load.")
	f.BoolVar(&c.load, "load", false, "Merge the prices into the portfolio.")
	f.StringVar(&c.market, "market", "", "Read tickers from this market CSV instead of the portfolio.")
	f.StringVar(&c.config, "config", "", "Read tickers from this configuration document instead of the portfolio.")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.market != "" && c.config != "" {
		fmt.Fprintln(os.Stderr, "Error: -market and -config are exclusive")
		return subcommands.ExitUsageError
	}
	p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio %q: %v\n", statePath(), err)
		return subcommands.ExitFailure
	}

	tickers, err := c.tickers(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading tickers: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(tickers) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no ticker to fetch.")
		return subcommands.ExitSuccess
	}

	doc, err := newFetcher().Fetch(ctx, tickers, p.Base())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching prices: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Fetched %d of %d prices and %d FX rates\n", len(doc.Prices), len(tickers), len(doc.FX))

	if c.output != "" || !c.load {
		err := writeFile(c.output, func(w io.Writer) error { return allocation.EncodePrices(w, doc) })
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing prices: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if !c.load {
		return subcommands.ExitSuccess
	}
	if _, err := p.LoadPrices(doc); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading prices: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := savePortfolio(p); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving portfolio %q: %v\n", statePath(), err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// tickers returns the tickers to fetch.
func (c *fetchCmd) tickers(p *allocation.Portfolio) ([]string, error) {
	switch {
	case c.market != "":
		tmp := allocation.NewPortfolio(p.Base())
		err := readFile(c.market, func(r io.Reader) error {
			_, err := tmp.ImportMarketCSV(r)
			return err
		})
		return tmp.Market().Tickers(), err
	case c.config != "":
		var cfg allocation.Config
		err := readFile(c.config, func(r io.Reader) (err error) {
			cfg, err = allocation.DecodeConfig(r)
			return err
		})
		tickers := make([]string, 0, len(cfg.Assets))
		for _, a := range cfg.Assets {
			tickers = append(tickers, a.Ticker)
		}
		return tickers, err
	}
	return portfolioTickers(p), nil
}

// portfolioTickers returns the tickers held, then the other market tickers.
// Aliases are fetched too, since holdings resolve to their price.
func portfolioTickers(p *allocation.Portfolio) []string {
	var tickers []string
	seen := make(map[string]bool)
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			tickers = append(tickers, t)
		}
	}
	for _, h := range p.Holdings() {
		add(h.Ticker)
		add(h.OverrideTicker)
	}
	for _, e := range p.Market().Entries() {
		add(e.Ticker)
		add(e.OverrideTicker)
	}
	return tickers
}

// newFetcher returns a quote fetcher configured from the environment.
func newFetcher() *quote.Fetcher {
	f := quote.New(log.Logger.With().Str("component", "quote").Logger())
	if u := os.Getenv("ALLOC_QUOTE_URL"); u != "" {
		f.BaseURL = u
	}
	if u := os.Getenv("ALLOC_FX_URL"); u != "" {
		f.FXURL = u
	}
	return f
}
