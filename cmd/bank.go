package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fueleu/compliance"
	"github.com/google/subcommands"
)

type bankCmd struct{}

func (*bankCmd) Name() string     { return "bank" }
func (*bankCmd) Synopsis() string { return "bank part of a ship's surplus" }
func (*bankCmd) Usage() string {
	return `cbx bank <ship> <amount>

  Moves <amount> gCO₂eq from the ship's current surplus into its bank
  (FuelEU Article 20). The amount must be positive and at most the surplus.

Usage Examples:
$ cbx bank IMO9000001 1000000
`
}

func (c *bankCmd) SetFlags(f *flag.FlagSet) {}

func (c *bankCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: bank requires a ship and an amount")
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

	tx, err := compliance.NewBanking(l).Bank(f.Arg(0), amount)
	if err != nil {
		return fail("banking", err)
	}
	if err := j.save(ctx, l); err != nil {
		return fail("saving ledger", err)
	}
	fmt.Printf("Banked %s for %s: balance %s, banked %s\n", tx.Amount, tx.Ship, tx.After.SignedString(), l.Banked(tx.Ship))
	return subcommands.ExitSuccess
}
