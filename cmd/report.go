package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fueleu/compliance"
	"github.com/fueleu/compliance/renderer"
	"github.com/google/subcommands"
)

type reportCmd struct {
	html string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the fleet compliance report" }
func (*reportCmd) Usage() string {
	return `cbx report [-html <file>]

  Displays the fleet report for the configured period, and optionally writes
  it as an HTML page.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.html, "html", "", "also write the report as HTML into this file")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	j, l, err := openJournal(ctx)
	if err != nil {
		return fail("loading ledger", err)
	}
	defer j.close(l)

	md := renderer.FleetMarkdown(compliance.NewFleetReport(l, j.cfg.Year))
	printMarkdown(md)

	if c.html == "" {
		return subcommands.ExitSuccess
	}
	page, err := renderer.HTML(md)
	if err != nil {
		return fail("rendering HTML", err)
	}
	if err := os.WriteFile(c.html, []byte(page), 0o644); err != nil {
		return fail("writing HTML", err)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", c.html)
	return subcommands.ExitSuccess
}
