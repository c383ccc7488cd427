package compliance

import (
	"time"

	"github.com/rs/zerolog"
)

// Observer is notified of every committed or rejected operation. The metrics
// package provides a Prometheus implementation.
type Observer interface {
	// OnCommit is called once per successful operation with the committed
	// transactions. Seeds are reported with op CmdSeed and no transaction.
	OnCommit(op CommandType, txs []Transaction)
	// OnReject is called when an operation fails validation.
	OnReject(op CommandType, err error)
}

type nopObserver struct{}

func (nopObserver) OnCommit(CommandType, []Transaction) {}
func (nopObserver) OnReject(CommandType, error)         {}

type options struct {
	logger   *zerolog.Logger
	clock    func() time.Time
	observer Observer
}

// Option configures a Ledger or an engine.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// WithClock sets the time source used to stamp transactions.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithObserver registers an observer of commits and rejections.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
