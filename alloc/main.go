// Command alloc tracks a portfolio against its target allocation.
//
// Run 'alloc help' for the list of subcommands, and 'alloc topic' for the
// user documentation.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/allocation/cmd"
	"github.com/google/subcommands"
)

func main() {
	cmd.LoadEnv()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	// exits when invoked by the shell to complete a command line.
	cmd.Completion().Complete("alloc")

	flag.Parse()
	cmd.SetupLogger(os.Stderr, cmd.Verbose())
	os.Exit(int(commander.Execute(context.Background())))
}
