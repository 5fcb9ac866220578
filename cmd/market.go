package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/allocation"
	"github.com/google/subcommands"
)

type fxCmd struct {
	remove string
}

func (*fxCmd) Name() string     { return "fx" }
func (*fxCmd) Synopsis() string { return "show or edit FX rates" }
func (*fxCmd) Usage() string {
	return `alloc fx [<CUR>=<rate>...] [-rm <CUR>]

  Sets the value of one unit of a currency in the base currency, then
  prints the FX table. The base currency rate is always 1.

Usage Examples:
$ alloc fx USD=150.4 HKD=19.4
$ alloc fx -rm HKD
`
}

func (c *fxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.remove, "rm", "", "Currency to remove, comma separated.")
}

func (c *fxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	assignments, err := parseAssignments(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var table *allocation.FXTable
	status := update(func(p *allocation.Portfolio) error {
		table = p.FX()
		return editRates(table, assignments, c.remove)
	})
	if status != subcommands.ExitSuccess {
		return status
	}
	printMarkdown(ratesTable(table))
	return subcommands.ExitSuccess
}

// editRates sets then removes rates in fx.
func editRates(fx *allocation.FXTable, assignments [][2]string, remove string) error {
	for _, a := range assignments {
		rate := allocation.ParseValue(a[1])
		if !rate.Known() {
			return fmt.Errorf("invalid rate %q for %s", a[1], strings.ToUpper(a[0]))
		}
		if err := fx.Set(a[0], rate); err != nil {
			return err
		}
	}
	for _, cur := range strings.Split(remove, ",") {
		if cur = strings.TrimSpace(cur); cur == "" {
			continue
		}
		if err := fx.Remove(cur); err != nil {
			return err
		}
	}
	return nil
}

func ratesTable(fx *allocation.FXTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "| Currency | %s per unit |\n|:---|---:|\n", fx.Base())
	for _, cur := range fx.Currencies() {
		rate, _ := fx.Rate(cur)
		fmt.Fprintf(&b, "| %s | %s |\n", cur, rate)
	}
	return b.String()
}

type thresholdCmd struct{}

func (*thresholdCmd) Name() string     { return "threshold" }
func (*thresholdCmd) Synopsis() string { return "show or set the deviation threshold" }
func (*thresholdCmd) Usage() string {
	return `alloc threshold [<pct>]

  Holdings whose actual weight deviates from their target by strictly more
  than the threshold, in percentage points, are reported as overweight or
  underweight.
`
}

func (*thresholdCmd) SetFlags(f *flag.FlagSet) {}

func (*thresholdCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting at most one threshold")
		return subcommands.ExitUsageError
	}
	if f.NArg() == 0 {
		p, err := loadPortfolio()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading portfolio %q: %v\n", statePath(), err)
			return subcommands.ExitFailure
		}
		fmt.Println(p.Threshold().Percent())
		return subcommands.ExitSuccess
	}

	t := allocation.ParseValue(strings.TrimSuffix(f.Arg(0), "%"))
	if !t.Known() || t.IsNegative() {
		fmt.Fprintf(os.Stderr, "Error: invalid threshold %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
	return update(func(p *allocation.Portfolio) error {
		p.SetThreshold(t)
		return nil
	})
}
