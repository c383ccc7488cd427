package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/fueleu/compliance"
	"github.com/fueleu/compliance/config"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace points the global flags to a temporary ledger and metrics file.
func workspace(t *testing.T) (ledger, prom string) {
	t.Helper()
	for _, k := range []string{config.EnvConfig, config.EnvLedgerFile, config.EnvDatabaseURL, config.EnvYear, config.EnvTarget, config.EnvLogLevel, config.EnvMetricsFile} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvStyle, "raw")
	dir := t.TempDir()
	t.Chdir(dir)

	ledger = filepath.Join(dir, "fleet.jsonl")
	prom = filepath.Join(dir, "cbx.prom")
	oldLedger, oldMetrics := *ledgerFile, *metricsFile
	*ledgerFile, *metricsFile = ledger, prom
	t.Cleanup(func() { *ledgerFile, *metricsFile = oldLedger, oldMetrics })
	return ledger, prom
}

func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return c.Execute(context.Background(), fs)
}

func TestCommands(t *testing.T) {
	ledger, prom := workspace(t)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &seedCmd{}, "A", "2025", "300"))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &seedCmd{}, "B", "2025", "-100"))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &seedCmd{}, "C", "2025", "-150"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &seedCmd{}, "A", "2025", "1"), "already seeded")
	assert.Equal(t, subcommands.ExitUsageError, run(t, &seedCmd{}, "A", "twenty", "1"))

	assert.Equal(t, subcommands.ExitSuccess, run(t, &bankCmd{}, "A", "100"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &bankCmd{}, "B", "10"), "no surplus")
	assert.Equal(t, subcommands.ExitSuccess, run(t, &applyCmd{}, "B", "500"), "adjusted to the deficit")
	assert.Equal(t, subcommands.ExitSuccess, run(t, &poolCmd{}, "-dry-run", "A", "C"))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &poolCmd{}, "A", "C"))

	assert.Equal(t, subcommands.ExitSuccess, run(t, &balanceCmd{}))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &balanceCmd{}, "A"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &balanceCmd{}, "Z"))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &historyCmd{}, "-s", "A", "-k", "pool"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &historyCmd{}, "-k", "seed"))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &fmtCmd{}))

	f, err := os.Open(ledger)
	require.NoError(t, err)
	defer f.Close()
	l, err := compliance.DecodeLedger(f)
	require.NoError(t, err)

	want := map[string]compliance.CB{"A": compliance.G(50), "B": compliance.G(0), "C": compliance.G(0)}
	for ship, v := range want {
		b, err := l.Current(ship)
		require.NoError(t, err)
		assert.True(t, v.Equal(b.Value), "%s: got %s, want %s", ship, b.Value, v)
	}
	assert.True(t, l.Banked("A").IsZero(), "the bank was applied to B")
	assert.Equal(t, 7, l.NextSeq()-1, "3 seeds, bank, apply and a two member pool")

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cbx_balance_gco2eq{ship="A",year="2025"} 50`)
}

func TestExportCommand(t *testing.T) {
	workspace(t)
	require.Equal(t, subcommands.ExitSuccess, run(t, &seedCmd{}, "A", "2025", "300"))

	assert.Equal(t, subcommands.ExitUsageError, run(t, &exportCmd{}))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &exportCmd{}, "-o", "fleet.csv"))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &exportCmd{}, "-o", "fleet.xlsx"))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &exportCmd{}, "-o", "fleet.out", "-f", "pdf"))
	assert.FileExists(t, "fleet.xlsx")
	assert.FileExists(t, "fleet.out")

	assert.Equal(t, subcommands.ExitSuccess, run(t, &reportCmd{}, "-html", "fleet.html"))
	page, err := os.ReadFile("fleet.html")
	require.NoError(t, err)
	assert.Contains(t, string(page), "<table>")
}

func TestRoutesCommand(t *testing.T) {
	routes, err := filepath.Abs("../route/testdata/routes.json")
	require.NoError(t, err)
	ledger, _ := workspace(t)
	const selector = "$.data.routes"

	assert.Equal(t, subcommands.ExitSuccess, run(t, &routesCmd{}, "-file", routes, "-selector", selector))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &routesCmd{}, "-file", routes, "-selector", selector, "-fuel", "LNG"))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &routesCmd{}, "-file", routes, "-selector", selector, "-baseline", "R002", "-compare"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &routesCmd{}, "-file", routes, "-selector", selector, "-baseline", "R999"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &routesCmd{}))
	assert.NoFileExists(t, ledger, "only -seed writes the ledger")

	assert.Equal(t, subcommands.ExitSuccess, run(t, &routesCmd{}, "-file", routes, "-selector", selector, "-seed"))
	f, err := os.Open(ledger)
	require.NoError(t, err)
	defer f.Close()
	l, err := compliance.DecodeLedger(f)
	require.NoError(t, err)
	b, err := l.Balance("R001", 2024)
	require.NoError(t, err)
	assert.True(t, compliance.G(-340956000).Equal(b.Value), "got %s", b.Value)

	assert.Equal(t, subcommands.ExitFailure, run(t, &routesCmd{}, "-file", routes, "-selector", selector, "-seed"), "already seeded")
}

func TestAllocFlag(t *testing.T) {
	a := allocFlag{}
	require.NoError(t, a.Set("A=100"))
	require.NoError(t, a.Set("B=-5.5"))
	assert.True(t, compliance.G(100).Equal(a["A"]))
	assert.True(t, compliance.G(-5.5).Equal(a["B"]))
	assert.Error(t, a.Set("A"))
	assert.Error(t, a.Set("=1"))
	assert.Error(t, a.Set("A=x"))
}
