package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fueleu/compliance"
	"github.com/google/subcommands"
)

type applyCmd struct{}

func (*applyCmd) Name() string     { return "apply" }
func (*applyCmd) Synopsis() string { return "apply banked surplus to a ship's deficit" }
func (*applyCmd) Usage() string {
	return `cbx apply <ship> <amount>

  Moves up to <amount> gCO₂eq from the ship's bank into its current deficit.
  The amount is reduced to what the deficit needs, never bringing the ship
  above zero.

Usage Examples:
$ cbx apply IMO9000002 500000
`
}

func (c *applyCmd) SetFlags(f *flag.FlagSet) {}

func (c *applyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: apply requires a ship and an amount")
		return subcommands.ExitUsageError
	}
	amount, err := parseCB(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	j, l, err := openJournal(ctx)
	if err != nil {
		return fail("loading ledger", err)
	}
	defer j.close(l)

	res, err := compliance.NewBanking(l).Apply(f.Arg(0), amount)
	if err != nil {
		return fail("applying", err)
	}
	if err := j.save(ctx, l); err != nil {
		return fail("saving ledger", err)
	}
	if res.Adjusted() {
		fmt.Fprintf(os.Stderr, "Warning: requested %s, applied %s to cover the deficit\n", res.Requested, res.Applied)
	}
	fmt.Printf("Applied %s to %s: balance %s, banked %s\n", res.Applied, res.Ship, res.After.SignedString(), l.Banked(res.Ship))
	return subcommands.ExitSuccess
}
