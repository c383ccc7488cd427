package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `cbx fmt

  Validates and formats the ledger file. Every line is replayed through the
  ledger rules, then the journal is written back in canonical JSONL form.
  A database journal is validated only.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	j, l, err := openJournal(ctx)
	if err != nil {
		return fail("loading ledger", err)
	}
	defer j.close(l)

	if j.store != nil {
		fmt.Fprintf(os.Stderr, "✅ Journal is valid: %d lines.\n", l.NextSeq()-1)
		return subcommands.ExitSuccess
	}
	if err := j.save(ctx, l); err != nil {
		return fail("saving ledger", err)
	}
	fmt.Fprintf(os.Stderr, "✅ Successfully formatted %s: %d lines.\n", j.cfg.LedgerFile, l.NextSeq()-1)
	return subcommands.ExitSuccess
}
