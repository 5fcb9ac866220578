// Package cmd implements the alloc CLI application to track a portfolio
// allocation.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/allocation"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd.Command, cmd.Group)
	}
}

// Command is a subcommand and its help group.
type Command struct {
	subcommands.Command
	Group string
}

// Commands lists every alloc subcommand.
var Commands = []Command{
	{&reportCmd{}, "report"},
	{&chartCmd{}, "report"},
	{&serveCmd{}, "report"},
	{&assistCmd{}, "report"},

	{&lsCmd{}, "holdings"},
	{&addCmd{}, "holdings"},
	{&setCmd{}, "holdings"},
	{&rmCmd{}, "holdings"},
	{&clearCmd{}, "holdings"},

	{&fxCmd{}, "market"},
	{&thresholdCmd{}, "market"},
	{&fetchCmd{}, "market"},

	{&importCmd{}, "documents"},
	{&exportCmd{}, "documents"},

	{&topicCmd{}, "help"},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var stateFile = flag.String("state", "", "Path to the portfolio state file. Defaults to $ALLOC_STATE, or portfolio.json.")
var baseCurrency = flag.String("base", allocation.DefaultBase, "Base currency of a new portfolio.")
var verbose = flag.Bool("v", false, "Print debug logs.")

const defaultStateFile = "portfolio.json"

// LoadEnv loads the .env file of the working directory, if any.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: cannot read .env: %v\n", err)
	}
}

// SetupLogger installs the global logger, writing to w.
func SetupLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// Verbose reports whether debug logs were requested.
func Verbose() bool { return *verbose }

// statePath returns the path of the state file.
func statePath() string {
	if *stateFile != "" {
		return *stateFile
	}
	if env := os.Getenv("ALLOC_STATE"); env != "" {
		return env
	}
	return defaultStateFile
}

// loadPortfolio loads the state file, or returns a new portfolio if there is none yet.
func loadPortfolio() (*allocation.Portfolio, error) {
	filename := statePath()
	p, err := allocation.Load(filename)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("state", filename).Msg("no state file yet, starting a new portfolio")
		base := allocation.NormalizeCurrency(*baseCurrency)
		if err := allocation.ValidateCurrency(base); err != nil {
			return nil, fmt.Errorf("invalid base currency: %w", err)
		}
		return allocation.NewPortfolio(base), nil
	}
	return p, err
}

func savePortfolio(p *allocation.Portfolio) error {
	return allocation.Save(statePath(), p)
}

// update loads the portfolio, applies edit to it, and saves it.
func update(edit func(p *allocation.Portfolio) error) subcommands.ExitStatus {
	p, err := loadPortfolio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolio %q: %v\n", statePath(), err)
		return subcommands.ExitFailure
	}
	if err := edit(p); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := savePortfolio(p); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving portfolio %q: %v\n", statePath(), err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md on the terminal.
func printMarkdown(md string) {
	fmt.Print(renderMarkdown(md))
}

func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
