package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/fueleu/compliance"
	"github.com/fueleu/compliance/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct {
	ship string
	kind string
	pool string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list committed transactions, most recent first" }
func (*historyCmd) Usage() string {
	return `cbx history [-s <ship>] [-k <kind>] [-p <pool>]

  Lists the committed transactions, most recent first. Filters combine.

Usage Examples:
$ cbx history -s IMO9000001
$ cbx history -k pool
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ship, "s", "", "only transactions of this ship")
	f.StringVar(&c.kind, "k", "", "only transactions of this kind (bank, apply, pool)")
	f.StringVar(&c.pool, "p", "", "only transactions of this pool id")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var filters []func(compliance.Transaction) bool
	title := "History"
	if c.ship != "" {
		filters = append(filters, compliance.ByShip(c.ship))
		title = fmt.Sprintf("History of %s", c.ship)
	}
	if c.kind != "" {
		kind := compliance.CommandType(c.kind)
		switch kind {
		case compliance.CmdBank, compliance.CmdApply, compliance.CmdPool:
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown kind %q\n", c.kind)
			return subcommands.ExitUsageError
		}
		filters = append(filters, compliance.ByKind(kind))
	}
	if c.pool != "" {
		filters = append(filters, compliance.ByPool(c.pool))
	}

	j, l, err := openJournal(ctx)
	if err != nil {
		return fail("loading ledger", err)
	}
	defer j.close(l)

	var txs []compliance.Transaction
	for _, tx := range l.Transactions(filters...) {
		txs = append(txs, tx)
	}
	slices.Reverse(txs)
	printMarkdown(renderer.HistoryMarkdown(title, txs))
	return subcommands.ExitSuccess
}
