package cmd

import (
	"flag"

	"github.com/fueleu/compliance"
	"github.com/fueleu/compliance/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors complete flag values by flag name. Other flags complete to
// anything, boolean ones to nothing.
var predictors = map[string]complete.Predictor{
	"config":       predict.Files("*.yaml"),
	"ledger-file":  predict.Files("*.jsonl"),
	"metrics-file": predict.Files("*.prom"),
	"log-level":    predict.Set{"debug", "info", "warn", "error"},
	"file":         predict.Files("*.json"),
	"html":         predict.Files("*.html"),
	"o":            predict.Files("*"),
	"f":            predict.Set{"xlsx", "pdf"},
	"k":            predict.Set{string(compliance.CmdBank), string(compliance.CmdApply), string(compliance.CmdPool)},
}

func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if p, ok := predictors[f.Name]; ok {
			flags[f.Name] = p
			return
		}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}

// Completion describes the command line for shell completion: the global
// flags and every subcommand with its own flags.
func Completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Flags: flagPredictors(global),
		Sub:   make(map[string]*complete.Command),
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(fs)}
	}
	if topics, err := docs.Topics(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	return root
}
