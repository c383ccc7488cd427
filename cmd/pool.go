package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fueleu/compliance"
	"github.com/fueleu/compliance/renderer"
	"github.com/google/subcommands"
)

// allocFlag collects SHIP=VALUE pairs.
type allocFlag map[string]compliance.CB

func (a allocFlag) String() string { return fmt.Sprint(map[string]compliance.CB(a)) }

func (a allocFlag) Set(s string) error {
	ship, value, ok := strings.Cut(s, "=")
	if !ok || ship == "" {
		return fmt.Errorf("want SHIP=VALUE, got %q", s)
	}
	v, err := parseCB(value)
	if err != nil {
		return err
	}
	a[ship] = v
	return nil
}

type poolCmd struct {
	dryRun bool
	alloc  allocFlag
}

func (*poolCmd) Name() string     { return "pool" }
func (*poolCmd) Synopsis() string { return "pool the balances of ships of the same period" }
func (*poolCmd) Usage() string {
	return `cbx pool [-dry-run] [-alloc <ship>=<value>]... <ship> <ship>...

  Pools the current balances of the ships (FuelEU Article 21). By default the
  balance is allocated greedily, from the largest surplus to the deepest
  deficits. With -alloc the allocation is given for every member and must
  keep the pool total unchanged.

  -dry-run shows the allocation without committing it.

Usage Examples:
$ cbx pool -dry-run IMO9000001 IMO9000002
$ cbx pool -alloc IMO9000001=100 -alloc IMO9000002=0 IMO9000001 IMO9000002
`
}

func (c *poolCmd) SetFlags(f *flag.FlagSet) {
	c.alloc = allocFlag{}
	f.BoolVar(&c.dryRun, "dry-run", false, "show the allocation without committing it")
	f.Var(c.alloc, "alloc", "allocated balance of a member, as SHIP=VALUE, repeatable")
}

func (c *poolCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: pool requires its member ships")
		return subcommands.ExitUsageError
	}

	j, l, err := openJournal(ctx)
	if err != nil {
		return fail("loading ledger", err)
	}
	defer j.close(l)

	p := compliance.NewPooling(l)
	prop, err := p.Propose(f.Args()...)
	if err != nil {
		return fail("proposing pool", err)
	}

	if len(c.alloc) > 0 {
		for i, m := range prop.Members {
			v, ok := c.alloc[m.Ship]
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: no -alloc for member %s\n", m.Ship)
				return subcommands.ExitUsageError
			}
			prop.Members[i].After = v
		}
		if c.dryRun {
			printMarkdown(renderer.PoolMarkdown(prop, nil))
			return subcommands.ExitSuccess
		}
		allocs, err := p.Commit(prop)
		if err != nil {
			printMarkdown(renderer.PoolMarkdown(prop, err))
			return fail("pooling", err)
		}
		return c.saved(ctx, j, l, allocs)
	}

	if c.dryRun {
		preview, err := p.Preview(prop)
		var pv *compliance.PoolRuleViolation
		if err != nil && !errors.As(err, &pv) {
			return fail("pooling", err)
		}
		printMarkdown(renderer.PoolMarkdown(preview, err))
		if err != nil {
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	allocs, err := p.Allocate(prop)
	if err != nil {
		return fail("pooling", err)
	}
	return c.saved(ctx, j, l, allocs)
}

func (c *poolCmd) saved(ctx context.Context, j *journal, l *compliance.Ledger, allocs []compliance.Allocation) subcommands.ExitStatus {
	if err := j.save(ctx, l); err != nil {
		return fail("saving ledger", err)
	}
	printMarkdown(renderer.AllocationMarkdown(allocs))
	return subcommands.ExitSuccess
}
