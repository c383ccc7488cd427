// Package cmd implements the cbx command line application to manage the
// compliance balance ledger of a fleet.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/fueleu/compliance"
	"github.com/fueleu/compliance/config"
	"github.com/fueleu/compliance/logging"
	"github.com/fueleu/compliance/metrics"
	"github.com/fueleu/compliance/store/postgres"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&seedCmd{}, "ledger")
	c.Register(&fmtCmd{}, "ledger")
	c.Register(&routesCmd{}, "ledger")

	c.Register(&bankCmd{}, "operations")
	c.Register(&applyCmd{}, "operations")
	c.Register(&poolCmd{}, "operations")

	c.Register(&balanceCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&reportCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")

	c.Register(&topicCmd{}, "help")
}

// Commands lists the subcommands, by name, for shell completion.
var Commands = []subcommands.Command{
	&seedCmd{}, &fmtCmd{}, &routesCmd{},
	&bankCmd{}, &applyCmd{}, &poolCmd{},
	&balanceCmd{}, &historyCmd{}, &reportCmd{}, &exportCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile  = flag.String("config", "", "Path to the configuration file (default $CBX_CONFIG or cbx.yaml)")
	ledgerFile  = flag.String("ledger-file", "", "Path to the ledger journal (JSONL format), overrides the configuration")
	databaseURL = flag.String("database-url", "", "PostgreSQL url of the journal, overrides the configuration")
	year        = flag.Int("year", 0, "Reporting period, overrides the configuration")
	logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides the configuration")
	metricsFile = flag.String("metrics-file", "", "Prometheus textfile to write after the command, overrides the configuration")
)

// Settings returns the configuration with the global flags applied.
func Settings() (config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return cfg, err
	}
	if *ledgerFile != "" {
		cfg.LedgerFile = *ledgerFile
	}
	if *databaseURL != "" {
		cfg.DatabaseURL = *databaseURL
	}
	if *year != 0 {
		cfg.Year = *year
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *metricsFile != "" {
		cfg.MetricsFile = *metricsFile
	}
	return cfg, cfg.Validate()
}

// journal is where the ledger is loaded from and saved to: a JSONL file or a
// Postgres table.
type journal struct {
	cfg      config.Config
	logger   zerolog.Logger
	recorder *metrics.Recorder
	store    *postgres.Store
}

// openJournal loads the ledger. A missing journal file is an empty ledger.
func openJournal(ctx context.Context) (*journal, *compliance.Ledger, error) {
	cfg, err := Settings()
	if err != nil {
		return nil, nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	j := &journal{cfg: cfg, logger: logging.New(level), recorder: metrics.New()}
	opts := []compliance.Option{compliance.WithLogger(j.logger), compliance.WithObserver(j.recorder)}

	if cfg.DatabaseURL != "" {
		j.store, err = postgres.Open(ctx, cfg.DatabaseURL, postgres.WithLogger(j.logger))
		if err != nil {
			return nil, nil, err
		}
		if err := j.store.Migrate(ctx); err != nil {
			_ = j.store.Close()
			return nil, nil, err
		}
		l, err := j.store.Load(ctx, opts...)
		if err != nil {
			_ = j.store.Close()
			return nil, nil, err
		}
		return j, l, nil
	}

	f, err := os.Open(cfg.LedgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		j.logger.Warn().Str("file", cfg.LedgerFile).Msg("ledger does not exist, starting an empty one")
		return j, compliance.NewLedger(opts...), nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	l, err := compliance.DecodeLedger(f, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", cfg.LedgerFile, err)
	}
	return j, l, nil
}

// save writes the ledger back. The file is replaced atomically.
func (j *journal) save(ctx context.Context, l *compliance.Ledger) error {
	if j.store != nil {
		return j.store.Save(ctx, l)
	}
	tmp, err := os.CreateTemp(filepath.Dir(j.cfg.LedgerFile), ".cbx-*.jsonl")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := compliance.EncodeLedger(tmp, l); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), j.cfg.LedgerFile)
}

// close writes the metrics textfile, if configured, and releases the store.
func (j *journal) close(l *compliance.Ledger) {
	if j.cfg.MetricsFile != "" {
		if l != nil {
			j.recorder.ObserveLedger(l)
		}
		if err := j.recorder.WriteTextfile(j.cfg.MetricsFile); err != nil {
			j.logger.Error().Err(err).Str("file", j.cfg.MetricsFile).Msg("could not write metrics")
		}
	}
	if j.store != nil {
		_ = j.store.Close()
	}
}

// printMarkdown renders markdown for the terminal using the configured style.
// Style "raw" prints the markdown source.
func printMarkdown(md string) {
	style := "auto"
	if cfg, err := Settings(); err == nil {
		style = cfg.Style
	}
	if style == "raw" {
		fmt.Print(md)
		return
	}
	opt := glamour.WithAutoStyle()
	if style != "auto" {
		opt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// parseCB parses a command line amount, in gCO₂eq.
func parseCB(s string) (compliance.CB, error) {
	v, err := compliance.ParseCB(s)
	if err != nil {
		return v, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// fail prints the error, with its reason when it is a ledger rejection, and
// returns the failure status.
func fail(what string, err error) subcommands.ExitStatus {
	if kind := compliance.Kind(err); kind != "unknown" {
		fmt.Fprintf(os.Stderr, "Error %s: %v [%s]\n", what, err, kind)
	} else {
		fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	}
	return subcommands.ExitFailure
}
