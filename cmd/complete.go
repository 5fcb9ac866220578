package cmd

import (
	"flag"

	"github.com/etnz/allocation/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// fileFlags lists the flags expecting a file, and the pattern of that file.
var fileFlags = map[string]string{
	"state":    "*.json",
	"holdings": "*.csv",
	"market":   "*.csv",
	"config":   "*.json",
	"prices":   "*.json",
}

// Completion returns the shell completion of alloc, derived from the flags
// of every subcommand.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command, len(Commands)),
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(fs)}
	}
	if topics, err := docs.Topics(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	root.Sub["help"] = &complete.Command{Args: predict.Set(commandNames())}
	return root
}

func commandNames() []string {
	names := make([]string, 0, len(Commands))
	for _, c := range Commands {
		names = append(names, c.Name())
	}
	return names
}

func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		if pattern, ok := fileFlags[f.Name]; ok {
			flags[f.Name] = predict.Files(pattern)
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}
