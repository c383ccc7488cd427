package cmd

import (
	"context"
	"flag"

	"github.com/fueleu/compliance"
	"github.com/fueleu/compliance/renderer"
	"github.com/google/subcommands"
)

type balanceCmd struct{}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "display the compliance balance of the fleet or a ship" }
func (*balanceCmd) Usage() string {
	return `cbx balance [<ship>]

  Without argument, displays the balance of every ship for the configured
  period (-year), or for each ship's current period.
  With a ship, displays its periods, bank and history.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {}

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	j, l, err := openJournal(ctx)
	if err != nil {
		return fail("loading ledger", err)
	}
	defer j.close(l)

	if f.NArg() == 0 {
		printMarkdown(renderer.FleetMarkdown(compliance.NewFleetReport(l, j.cfg.Year)))
		return subcommands.ExitSuccess
	}
	r, err := compliance.NewShipReport(l, f.Arg(0))
	if err != nil {
		return fail("reading ship", err)
	}
	printMarkdown(renderer.ShipMarkdown(r))
	return subcommands.ExitSuccess
}
