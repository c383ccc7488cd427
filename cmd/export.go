package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fueleu/compliance"
	"github.com/fueleu/compliance/export"
	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
	format string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the fleet report as XLSX or PDF" }
func (*exportCmd) Usage() string {
	return `cbx export -o <file> [-f xlsx|pdf]

  Exports the fleet report of the configured period and its transactions.
  The format defaults to the output file extension.

Usage Examples:
$ cbx -year 2025 export -o fleet-2025.xlsx
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file")
	f.StringVar(&c.format, "f", "", "output format: xlsx or pdf")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.output == "" {
		fmt.Fprintln(os.Stderr, "Error: -o is required")
		return subcommands.ExitUsageError
	}
	format := c.format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(c.output), ".")
	}
	format = strings.ToLower(format)
	if format != "xlsx" && format != "pdf" {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q\n", format)
		return subcommands.ExitUsageError
	}

	j, l, err := openJournal(ctx)
	if err != nil {
		return fail("loading ledger", err)
	}
	defer j.close(l)

	r := compliance.NewFleetReport(l, j.cfg.Year)
	var txs []compliance.Transaction
	for _, tx := range l.Transactions(func(tx compliance.Transaction) bool { return r.Year == 0 || tx.Year == r.Year }) {
		txs = append(txs, tx)
	}

	var data []byte
	switch format {
	case "xlsx":
		data, err = export.FleetXLSX(r, txs)
	case "pdf":
		data, err = export.FleetPDF(r, txs, time.Now())
	}
	if err != nil {
		return fail("exporting", err)
	}
	if err := os.WriteFile(c.output, data, 0o644); err != nil {
		return fail("writing export", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %d ships and %d transactions to %s\n", len(r.Rows), len(txs), c.output)
	return subcommands.ExitSuccess
}
