package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/chart"
	"github.com/google/subcommands"
)

type chartCmd struct {
	dir string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "draw the allocation and deviation charts" }
func (*chartCmd) Usage() string {
	return `alloc chart [-o <dir>]

  Writes allocation.png, a pie of the actual weights, and deviation.png, a
  bar chart of the deviations from target.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "o", ".", "Output directory.")
}

func (c *chartCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio %q: %v\n", statePath(), err)
		return subcommands.ExitFailure
	}
	if err := writeCharts(c.dir, p.Compute()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// writeCharts writes the charts of r in dir. Charts without data are skipped.
func writeCharts(dir string, r *allocation.Report) error {
	charts := []struct {
		name string
		draw func(*allocation.Report) ([]byte, error)
	}{
		{"allocation.png", chart.Allocation},
		{"deviation.png", chart.Deviation},
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, c := range charts {
		png, err := c.draw(r)
		if errors.Is(err, chart.ErrNoData) {
			fmt.Fprintf(os.Stderr, "Warning: %s skipped, %v\n", c.name, err)
			continue
		}
		if err != nil {
			return err
		}
		filename := filepath.Join(dir, c.name)
		if err := os.WriteFile(filename, png, 0644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", filename)
	}
	return nil
}
