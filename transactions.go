package compliance

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// CommandType is a typed string for identifying journal records.
type CommandType string

// Command types used in the journal.
const (
	CmdSeed  CommandType = "seed"
	CmdBank  CommandType = "bank"
	CmdApply CommandType = "apply"
	CmdPool  CommandType = "pool"
)

// Transaction is an immutable ledger record of a committed balance change.
//
// Bank and Apply transactions always carry a positive Amount. Pool
// transactions carry |After-Before|, which is zero for members the allocation
// left untouched.
type Transaction struct {
	ID     string      // ID is a unique, deterministic identifier.
	Seq    int         // Seq is the commit sequence number, shared with seeds.
	Kind   CommandType // Kind is one of CmdBank, CmdApply, CmdPool.
	Ship   string      // Ship is the ship whose balance changed.
	Year   int         // Year is the reporting period of the changed balance.
	Amount CB          // Amount is the magnitude of the change.
	Time   time.Time   // Time is the commit time.
	Before CB          // Before is the balance before the commit.
	After  CB          // After is the balance after the commit.
	Pool   string      // Pool groups the entries of a single pool allocation.
	Memo   string      // Memo is an optional operator note.
}

// BankedDelta returns the change this transaction makes to the ship's banked
// amount: +Amount for a bank, -Amount for an apply, zero otherwise.
func (t Transaction) BankedDelta() CB {
	switch t.Kind {
	case CmdBank:
		return t.Amount
	case CmdApply:
		return t.Amount.Neg()
	default:
		return CB{}
	}
}

// Delta returns the signed change of the compliance balance.
func (t Transaction) Delta() CB { return t.After.Sub(t.Before) }

// Equal reports whether both transactions record the same fact.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID && t.Seq == o.Seq && t.Kind == o.Kind && t.Ship == o.Ship && t.Year == o.Year &&
		t.Amount.Equal(o.Amount) && t.Time.Equal(o.Time) &&
		t.Before.Equal(o.Before) && t.After.Equal(o.After) &&
		t.Pool == o.Pool && t.Memo == o.Memo
}

// check verifies the internal consistency of a record, before it is committed.
func (t Transaction) check() error {
	switch t.Kind {
	case CmdBank:
		if !t.Amount.IsPositive() {
			return fmt.Errorf("%w: bank amount must be positive, got %s", ErrInvalidAmount, t.Amount)
		}
		if !t.After.Equal(t.Before.Sub(t.Amount)) {
			return fmt.Errorf("bank record for %s: after %s is not before %s minus %s", t.Ship, t.After, t.Before, t.Amount)
		}
	case CmdApply:
		if !t.Amount.IsPositive() {
			return fmt.Errorf("%w: apply amount must be positive, got %s", ErrInvalidAmount, t.Amount)
		}
		if !t.After.Equal(t.Before.Add(t.Amount)) {
			return fmt.Errorf("apply record for %s: after %s is not before %s plus %s", t.Ship, t.After, t.Before, t.Amount)
		}
	case CmdPool:
		if !t.Amount.Equal(t.Delta().Abs()) {
			return fmt.Errorf("pool record for %s: amount %s does not match change %s", t.Ship, t.Amount, t.Delta())
		}
	default:
		return fmt.Errorf("unsupported transaction kind %q", t.Kind)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Kind)
	w.Append("seq", t.Seq)
	w.Append("id", t.ID)
	w.Append("time", t.Time.UTC().Format(time.RFC3339Nano))
	w.Append("ship", t.Ship)
	w.Append("year", t.Year)
	w.Append("amount", t.Amount)
	w.Append("before", t.Before)
	w.Append("after", t.After)
	w.Optional("pool", t.Pool)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		Command CommandType `json:"command"`
		Seq     int         `json:"seq"`
		ID      string      `json:"id"`
		Time    time.Time   `json:"time"`
		Ship    string      `json:"ship"`
		Year    int         `json:"year"`
		Amount  CB          `json:"amount"`
		Before  CB          `json:"before"`
		After   CB          `json:"after"`
		Pool    string      `json:"pool,omitempty"`
		Memo    string      `json:"memo,omitempty"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*t = Transaction{
		ID:     temp.ID,
		Seq:    temp.Seq,
		Kind:   temp.Command,
		Ship:   temp.Ship,
		Year:   temp.Year,
		Amount: temp.Amount,
		Time:   temp.Time,
		Before: temp.Before,
		After:  temp.After,
		Pool:   temp.Pool,
		Memo:   temp.Memo,
	}
	return nil
}

// Seed records the externally computed compliance balance of a ship for a
// reporting period.
type Seed struct {
	Seq   int
	Ship  string
	Year  int
	Value CB
}

// MarshalJSON implements the json.Marshaler interface for Seed.
func (s Seed) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", CmdSeed)
	w.Append("seq", s.Seq)
	w.Append("ship", s.Ship)
	w.Append("year", s.Year)
	w.Append("value", s.Value)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Seed.
func (s *Seed) UnmarshalJSON(data []byte) error {
	var temp struct {
		Seq   int    `json:"seq"`
		Ship  string `json:"ship"`
		Year  int    `json:"year"`
		Value CB     `json:"value"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*s = Seed{Seq: temp.Seq, Ship: temp.Ship, Year: temp.Year, Value: temp.Value}
	return nil
}

// AcceptAll is a transaction filter that accepts everything.
func AcceptAll(Transaction) bool { return true }

// ByShip returns a predicate that filters transactions by ship id.
func ByShip(ship string) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Ship == ship }
}

// ByKind returns a predicate that filters transactions by kind.
func ByKind(kinds ...CommandType) func(Transaction) bool {
	return func(tx Transaction) bool { return slices.Contains(kinds, tx.Kind) }
}

// ByPool returns a predicate that selects the entries of one pool allocation.
func ByPool(pool string) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Pool != "" && tx.Pool == pool }
}
