package compliance

import (
	"github.com/rs/zerolog"
)

// engine holds what Banking and Pooling share: the ledger they mutate and
// where they report.
type engine struct {
	ledger   *Ledger
	logger   zerolog.Logger
	observer Observer
}

// newEngine inherits the ledger logger and observer unless overridden.
func newEngine(l *Ledger, opts []Option) engine {
	o := newOptions(opts)
	e := engine{ledger: l, logger: l.logger, observer: l.observer}
	if o.logger != nil {
		e.logger = *o.logger
	}
	if o.observer != nil {
		e.observer = o.observer
	}
	return e
}

func (e engine) reject(op CommandType, ship string, err error) error {
	e.logger.Debug().Str("op", string(op)).Str("ship", ship).Str("reason", Kind(err)).Err(err).Msg("rejected")
	e.observer.OnReject(op, err)
	return err
}

func (e engine) committed(op CommandType, txs []Transaction) {
	for _, tx := range txs {
		e.logger.Info().
			Str("op", string(op)).
			Str("ship", tx.Ship).
			Int("year", tx.Year).
			Str("amount", tx.Amount.Decimal().String()).
			Str("before", tx.Before.Decimal().String()).
			Str("after", tx.After.Decimal().String()).
			Int("seq", tx.Seq).
			Msg("committed")
	}
	e.observer.OnCommit(op, txs)
}

// Banking moves surplus compliance balance into a ship's bank and back into a
// later deficit (FuelEU Article 20).
type Banking struct {
	engine
}

// NewBanking returns a banking engine operating on l.
func NewBanking(l *Ledger, opts ...Option) *Banking {
	return &Banking{engine: newEngine(l, opts)}
}

// Bank saves amount of the ship's current surplus for future periods.
//
// The ship must have a positive current balance and amount must lie in
// (0, balance]. On success the balance decreases and the banked amount
// increases by amount, in a single bank transaction.
func (b *Banking) Bank(ship string, amount CB) (Transaction, error) {
	cur, err := b.ledger.Current(ship)
	if err != nil {
		return Transaction{}, b.reject(CmdBank, ship, &BankingError{Op: CmdBank, Ship: ship, Requested: amount, Err: ErrShipNotFound})
	}
	fail := func(available CB, err error) (Transaction, error) {
		return Transaction{}, b.reject(CmdBank, ship, &BankingError{Op: CmdBank, Ship: ship, Requested: amount, Available: available, Err: err})
	}
	switch {
	case !cur.Value.IsPositive():
		return fail(cur.Value, ErrNoSurplusToBank)
	case !amount.IsPositive():
		return fail(cur.Value, ErrInvalidAmount)
	case amount.GreaterThan(cur.Value):
		return fail(cur.Value, ErrInsufficientBalance)
	}

	txs, err := b.ledger.Commit(Transaction{
		Kind:   CmdBank,
		Ship:   ship,
		Year:   cur.Year,
		Amount: amount,
		Before: cur.Value,
		After:  cur.Value.Sub(amount),
	})
	if err != nil {
		return Transaction{}, b.reject(CmdBank, ship, err)
	}
	b.committed(CmdBank, txs)
	return txs[0], nil
}

// Applied is the outcome of Banking.Apply.
type Applied struct {
	Transaction
	Requested CB // Requested is the amount asked for.
	Applied   CB // Applied is the amount actually moved.
}

// Adjusted reports whether less than requested was applied.
func (a Applied) Adjusted() bool { return a.Applied.LessThan(a.Requested) }

// Apply moves banked surplus into the ship's current deficit.
//
// The ship must be in deficit and have something banked. The amount actually
// applied is min(amount, banked, |balance|), so a ship is never brought above
// zero. A request larger than the banked amount is refused unless the deficit
// is small enough to be covered anyway. An adjusted amount is not an error;
// check Applied.Adjusted.
func (b *Banking) Apply(ship string, amount CB) (Applied, error) {
	cur, err := b.ledger.Current(ship)
	if err != nil {
		return Applied{}, b.reject(CmdApply, ship, &BankingError{Op: CmdApply, Ship: ship, Requested: amount, Err: ErrShipNotFound})
	}
	banked := b.ledger.Banked(ship)
	fail := func(available CB, err error) (Applied, error) {
		return Applied{}, b.reject(CmdApply, ship, &BankingError{Op: CmdApply, Ship: ship, Requested: amount, Available: available, Err: err})
	}
	switch {
	case !cur.Value.IsNegative():
		return fail(cur.Value, ErrNotInDeficit)
	case !banked.IsPositive():
		return fail(banked, ErrInsufficientBankedAmount)
	case !amount.IsPositive():
		return fail(banked, ErrInvalidAmount)
	case MinCB(amount, cur.Value.Abs()).GreaterThan(banked):
		// A request above the banked amount is only refused when capping it
		// to the deficit does not bring it within the bank.
		return fail(banked, ErrInsufficientBankedAmount)
	}

	actual := MinCB(amount, banked, cur.Value.Abs())
	txs, err := b.ledger.Commit(Transaction{
		Kind:   CmdApply,
		Ship:   ship,
		Year:   cur.Year,
		Amount: actual,
		Before: cur.Value,
		After:  cur.Value.Add(actual),
	})
	if err != nil {
		return Applied{}, b.reject(CmdApply, ship, err)
	}
	res := Applied{Transaction: txs[0], Requested: amount, Applied: actual}
	if res.Adjusted() {
		b.logger.Warn().
			Str("ship", ship).
			Str("requested", amount.Decimal().String()).
			Str("applied", actual.Decimal().String()).
			Msg("amount adjusted to the deficit")
	}
	b.committed(CmdApply, txs)
	return res, nil
}
