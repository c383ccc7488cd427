// Command cbx manages the FuelEU compliance balance ledger of a fleet:
// banking, borrowing from the bank and pooling.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/fueleu/compliance/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// Answers shell completion requests and exits, does nothing otherwise.
	cmd.Completion(flag.CommandLine).Complete("cbx")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
