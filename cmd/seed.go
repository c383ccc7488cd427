package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
)

type seedCmd struct{}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "set the initial compliance balance of a ship for a period" }
func (*seedCmd) Usage() string {
	return `cbx seed <ship> <year> <value>

  Seeds the compliance balance of a ship for a reporting period, in gCO₂eq.
  A period can only be seeded once. The latest seeded period of a ship is its
  current one.

Usage Examples:
$ cbx seed IMO9000001 2025 263082240
$ cbx seed IMO9000002 2025 -340956000
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {}

func (c *seedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Error: seed requires a ship, a year and a value")
		return subcommands.ExitUsageError
	}
	ship := f.Arg(0)
	y, err := strconv.Atoi(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid year %q\n", f.Arg(1))
		return subcommands.ExitUsageError
	}
	value, err := parseCB(f.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	j, l, err := openJournal(ctx)
	if err != nil {
		return fail("loading ledger", err)
	}
	defer j.close(l)

	if err := l.Seed(ship, y, value); err != nil {
		return fail("seeding", err)
	}
	if err := j.save(ctx, l); err != nil {
		return fail("saving ledger", err)
	}
	fmt.Printf("Seeded %s %d with %s\n", ship, y, value.SignedString())
	return subcommands.ExitSuccess
}
