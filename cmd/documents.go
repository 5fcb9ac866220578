package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/allocation"
	"github.com/google/subcommands"
)

type importCmd struct {
	holdings string
	market   string
	config   string
	prices   string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import holdings, market data, configuration or prices" }
func (*importCmd) Usage() string {
	return `alloc import [-holdings <csv>] [-market <csv>] [-config <json>] [-prices <json>]

  Imports documents into the portfolio. Several documents can be imported at
  once: the market comes first, then the configuration, the prices and
  finally the holdings.

  The holdings CSV replaces all holdings. The other documents are merged:
  an empty cell never erases a known value.

  See 'alloc topic holdings market config fetch' for the formats.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.holdings, "holdings", "", "Holdings CSV file.")
	f.StringVar(&c.market, "market", "", "Market CSV file.")
	f.StringVar(&c.config, "config", "", "Configuration JSON file.")
	f.StringVar(&c.prices, "prices", "", "Prices JSON file, as written by 'alloc fetch'.")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.holdings == "" && c.market == "" && c.config == "" && c.prices == "" {
		fmt.Fprintln(os.Stderr, "Error: nothing to import")
		return subcommands.ExitUsageError
	}
	return update(func(p *allocation.Portfolio) error {
		return c.importInto(p)
	})
}

func (c *importCmd) importInto(p *allocation.Portfolio) error {
	if c.market != "" {
		err := readFile(c.market, func(r io.Reader) error {
			n, err := p.ImportMarketCSV(r)
			fmt.Fprintf(os.Stderr, "Imported %d market entries from %s\n", n, c.market)
			return err
		})
		if err != nil {
			return err
		}
	}
	if c.config != "" {
		err := readFile(c.config, func(r io.Reader) error {
			cfg, err := allocation.DecodeConfig(r)
			if err != nil {
				return err
			}
			if err := p.ImportConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Imported %d assets from %s\n", len(cfg.Assets), c.config)
			return nil
		})
		if err != nil {
			return err
		}
	}
	if c.prices != "" {
		err := readFile(c.prices, func(r io.Reader) error {
			doc, err := allocation.DecodePrices(r)
			if err != nil {
				return err
			}
			n, err := p.LoadPrices(doc)
			fmt.Fprintf(os.Stderr, "Loaded %d prices from %s\n", n, c.prices)
			return err
		})
		if err != nil {
			return err
		}
	}
	if c.holdings != "" {
		err := readFile(c.holdings, func(r io.Reader) error {
			n, err := p.ImportHoldingsCSV(r)
			fmt.Fprintf(os.Stderr, "Imported %d holdings from %s\n", n, c.holdings)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// readFile opens filename and passes it to read.
func readFile(filename string, read func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := read(f); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}

// writeFile writes to filename, or to stdout when filename is empty.
func writeFile(filename string, write func(io.Writer) error) error {
	if filename == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", filename, err)
	}
	return f.Close()
}

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the portfolio as a configuration document" }
func (*exportCmd) Usage() string {
	return `alloc export [-o <json>]

  Writes the portfolio as a configuration document, with target weights as
  fractions. It can be imported back with 'alloc import -config'.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file. Defaults to stdout.")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio %q: %v\n", statePath(), err)
		return subcommands.ExitFailure
	}
	err = writeFile(c.output, func(w io.Writer) error {
		return allocation.EncodeConfig(w, p.ExportConfig())
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
