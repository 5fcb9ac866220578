package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/allocation"
	"github.com/google/subcommands"
)

type addCmd struct {
	ticker   string
	quantity string
	currency string
	cost     string
	target   string
	category string
	account  string
	override string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a holding" }
func (*addCmd) Usage() string {
	return `alloc add -t <ticker> [-q <quantity>] [-target <pct>] [-c <currency>] [-cost <price>] [-account <name>] [-cat <category>] [-override <ticker>]

  Adds a holding to the portfolio and prints its id.

  The target weight is a percentage of the whole portfolio (0-100). The
  currency defaults to the currency of the ticker in the market.

Usage Examples:
$ alloc add -t NASDAQ:AAPL -q 10 -target 25 -account NISA
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "Ticker (required).")
	f.StringVar(&c.quantity, "q", "0", "Quantity held.")
	f.StringVar(&c.currency, "c", "", "Currency of the price.")
	f.StringVar(&c.cost, "cost", "", "Cost per unit, in the currency.")
	f.StringVar(&c.target, "target", "", "Target weight in percent.")
	f.StringVar(&c.category, "cat", "", "Category label.")
	f.StringVar(&c.account, "account", "", "Account label.")
	f.StringVar(&c.override, "override", "", "Ticker whose price is used instead.")
}

func (c *addCmd) holding() (*allocation.Holding, error) {
	h := allocation.NewHolding(c.ticker)
	fields := []struct{ name, value string }{
		{"quantity", c.quantity},
		{"currency", c.currency},
		{"cost", c.cost},
		{"target", c.target},
		{"category", c.category},
		{"account", c.account},
		{"override", c.override},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := setField(h, f.name, f.value); err != nil {
			return nil, err
		}
	}
	return h, h.Validate()
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	h, err := c.holding()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	status := update(func(p *allocation.Portfolio) error { return p.Add(h) })
	if status == subcommands.ExitSuccess {
		fmt.Println(h.ID)
	}
	return status
}

type setCmd struct{}

func (*setCmd) Name() string     { return "set" }
func (*setCmd) Synopsis() string { return "edit a holding" }
func (*setCmd) Usage() string {
	return `alloc set <id> <field>=<value>...

  Edits the fields of a holding. The id can be shortened to any unique
  prefix. Fields are account, ticker, currency, quantity, cost, target,
  category and override. An empty value clears the field.

Usage Examples:
$ alloc set 3f2a quantity=12 target=30
`
}

func (*setCmd) SetFlags(f *flag.FlagSet) {}

func (*setCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: expecting an id and at least one field=value")
		return subcommands.ExitUsageError
	}
	assignments, err := parseAssignments(f.Args()[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return update(func(p *allocation.Portfolio) error {
		id, err := findHolding(p, f.Arg(0))
		if err != nil {
			return err
		}
		return p.Update(id, func(h *allocation.Holding) error {
			for _, a := range assignments {
				if err := setField(h, a[0], a[1]); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "remove holdings" }
func (*rmCmd) Usage() string {
	return `alloc rm <id>...

  Removes holdings. Ids can be shortened to any unique prefix.
`
}

func (*rmCmd) SetFlags(f *flag.FlagSet) {}

func (*rmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: expecting at least one id")
		return subcommands.ExitUsageError
	}
	return update(func(p *allocation.Portfolio) error {
		for _, prefix := range f.Args() {
			id, err := findHolding(p, prefix)
			if err != nil {
				return err
			}
			if err := p.Remove(id); err != nil {
				return err
			}
		}
		return nil
	})
}

type clearCmd struct {
	all bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "remove every holding" }
func (*clearCmd) Usage() string {
	return `alloc clear [-all]

  Removes every holding. With -all, the market and the FX rates are cleared
  too.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "Also clear the market and the FX rates.")
}

func (c *clearCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return update(func(p *allocation.Portfolio) error {
		if c.all {
			p.ClearAll()
		} else {
			p.ClearHoldings()
		}
		return nil
	})
}

type lsCmd struct{}

func (*lsCmd) Name() string     { return "ls" }
func (*lsCmd) Synopsis() string { return "list holdings with their id" }
func (*lsCmd) Usage() string {
	return `alloc ls

  Lists the holdings as they were entered, with their id.
`
}

func (*lsCmd) SetFlags(f *flag.FlagSet) {}

func (*lsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio %q: %v\n", statePath(), err)
		return subcommands.ExitFailure
	}
	printMarkdown(holdingsTable(p.Holdings()))
	return subcommands.ExitSuccess
}

func holdingsTable(holdings []*allocation.Holding) string {
	var b strings.Builder
	b.WriteString("| Id | Account | Ticker | Currency | Quantity | Cost | Target | Category | Override |\n")
	b.WriteString("|:---|:---|:---|:---|---:|---:|---:|:---|:---|\n")
	for _, h := range holdings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			shortID(h.ID), h.Account, h.Ticker, h.Currency, h.Quantity, h.CostPerUnit, h.TargetWeight.Percent(), h.Category, h.OverrideTicker)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var errAmbiguousID = errors.New("ambiguous id")

// findHolding returns the id of the holding starting with prefix.
func findHolding(p *allocation.Portfolio, prefix string) (string, error) {
	if _, ok := p.Holding(prefix); ok {
		return prefix, nil
	}
	var found []string
	for _, h := range p.Holdings() {
		if strings.HasPrefix(h.ID, prefix) {
			found = append(found, h.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w %q", allocation.ErrUnknownHolding, prefix)
	case 1:
		return found[0], nil
	}
	return "", fmt.Errorf("%w %q matches %d holdings", errAmbiguousID, prefix, len(found))
}

// parseAssignments parses field=value arguments.
func parseAssignments(args []string) ([][2]string, error) {
	list := make([][2]string, 0, len(args))
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q, expecting field=value", arg)
		}
		list = append(list, [2]string{strings.ToLower(strings.TrimSpace(field)), strings.TrimSpace(value)})
	}
	return list, nil
}

// setField sets a holding field from its text value. Numbers that cannot be
// parsed are an error, while an empty value clears the field.
func setField(h *allocation.Holding, field, value string) error {
	number := func(dst *allocation.Value) error {
		v := allocation.ParseValue(value)
		if value != "" && !v.Known() {
			return fmt.Errorf("invalid %s %q", field, value)
		}
		*dst = v
		return nil
	}
	switch field {
	case "account":
		h.Account = value
	case "ticker":
		h.Ticker = value
	case "currency":
		cur := allocation.NormalizeCurrency(value)
		if cur != "" {
			if err := allocation.ValidateCurrency(cur); err != nil {
				return err
			}
		}
		h.Currency = cur
	case "quantity", "q":
		if err := number(&h.Quantity); err != nil {
			return err
		}
		h.Quantity = h.Quantity.Or(allocation.V(0))
	case "cost", "cost_per_unit":
		return number(&h.CostPerUnit)
	case "target", "targetweight", "target_weight":
		return number(&h.TargetWeight)
	case "category", "cat":
		h.Category = value
	case "override", "override_ticker":
		h.OverrideTicker = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}
