package compliance

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// idSpace is the UUIDv5 namespace of transaction and pool ids.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/fueleu/compliance"))

func newID(kind string, seq int) string {
	return uuid.NewSHA1(idSpace, fmt.Appendf(nil, "%s/%d", kind, seq)).String()
}

// Balance is the compliance balance of a ship for one reporting period.
type Balance struct {
	Ship  string
	Year  int
	Value CB
}

// Status classifies the balance.
func (b Balance) Status() Status { return Classify(b.Value) }

// Ledger holds the live compliance balances, the banked amounts and the
// transaction log of a fleet.
//
// In a Ledger transactions are always in commit order. Balances only change
// through Commit, which is atomic: every record is validated before any of
// them is applied.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	ships        []string              // declaration order
	balances     map[string]map[int]CB // ship -> year -> live value
	banked       map[string]CB         // running Σ bank − Σ apply
	seeds        []Seed                // seed records, in seq order
	transactions []Transaction         // committed records, in seq order
	seq          int                   // last assigned sequence number
	clock        func() time.Time
	logger       zerolog.Logger
	observer     Observer
}

// NewLedger creates an empty ledger.
func NewLedger(opts ...Option) *Ledger {
	o := newOptions(opts)
	l := &Ledger{
		balances: make(map[string]map[int]CB),
		banked:   make(map[string]CB),
		clock:    time.Now,
		logger:   zerolog.Nop(),
		observer: nopObserver{},
	}
	if o.clock != nil {
		l.clock = o.clock
	}
	if o.logger != nil {
		l.logger = *o.logger
	}
	if o.observer != nil {
		l.observer = o.observer
	}
	return l
}

// Seed declares the compliance balance of a ship for a reporting period, as
// computed by the regulatory calculation. The first seed of a ship declares it.
func (l *Ledger) Seed(ship string, year int, value CB) error {
	if err := l.seed(ship, year, value); err != nil {
		l.observer.OnReject(CmdSeed, err)
		return err
	}
	l.observer.OnCommit(CmdSeed, nil)
	return nil
}

func (l *Ledger) seed(ship string, year int, value CB) error {
	ship = strings.TrimSpace(ship)
	if ship == "" {
		return ErrInvalidShip
	}
	if year <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPeriod, year)
	}
	periods, known := l.balances[ship]
	if _, exists := periods[year]; exists {
		return fmt.Errorf("%w: %s %d", ErrAlreadySeeded, ship, year)
	}
	if !known {
		periods = make(map[int]CB)
		l.balances[ship] = periods
		l.ships = append(l.ships, ship)
	}
	periods[year] = value
	l.seq++
	l.seeds = append(l.seeds, Seed{Seq: l.seq, Ship: ship, Year: year, Value: value})
	l.logger.Debug().Str("ship", ship).Int("year", year).Stringer("value", value).Msg("seeded")
	return nil
}

// Has reports whether the ship has been declared.
func (l *Ledger) Has(ship string) bool {
	_, ok := l.balances[ship]
	return ok
}

// Balance returns the live balance of a ship for a period.
func (l *Ledger) Balance(ship string, year int) (Balance, error) {
	periods, ok := l.balances[ship]
	if !ok {
		return Balance{}, fmt.Errorf("%w: %q", ErrShipNotFound, ship)
	}
	v, ok := periods[year]
	if !ok {
		return Balance{}, fmt.Errorf("%w: %s has no balance for %d", ErrPeriodNotFound, ship, year)
	}
	return Balance{Ship: ship, Year: year, Value: v}, nil
}

// Current returns the balance of the most recent period seeded for the ship.
func (l *Ledger) Current(ship string) (Balance, error) {
	periods := l.Periods(ship)
	if len(periods) == 0 {
		return Balance{}, fmt.Errorf("%w: %q", ErrShipNotFound, ship)
	}
	return l.Balance(ship, periods[len(periods)-1])
}

// Banked returns the amount banked by the ship and not yet applied. It is zero
// for unknown ships and never negative.
func (l *Ledger) Banked(ship string) CB {
	return l.banked[ship]
}

// Ships returns an iterator over declared ships, in declaration order.
func (l *Ledger) Ships() iter.Seq[string] {
	return slices.Values(l.ships)
}

// Periods returns the seeded years of a ship, in ascending order.
func (l *Ledger) Periods(ship string) []int {
	return slices.Sorted(maps.Keys(l.balances[ship]))
}

// Years returns every seeded year of the fleet, in ascending order.
func (l *Ledger) Years() []int {
	var years []int
	for _, periods := range l.balances {
		for y := range periods {
			if !slices.Contains(years, y) {
				years = append(years, y)
			}
		}
	}
	slices.Sort(years)
	return years
}

// Seeds returns an iterator over seed records, in sequence order.
func (l *Ledger) Seeds() iter.Seq[Seed] {
	return slices.Values(l.seeds)
}

// Len returns the number of committed transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns an iterator over committed transactions in commit
// order. A transaction is yielded when every filter accepts it.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
	next:
		for i, tx := range l.transactions {
			for _, filter := range filters {
				if !filter(tx) {
					continue next
				}
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// History returns the transactions of a ship, most recent first.
func (l *Ledger) History(ship string) []Transaction {
	var h []Transaction
	for _, tx := range l.Transactions(ByShip(ship)) {
		h = append(h, tx)
	}
	slices.Reverse(h)
	return h
}

// NextSeq returns the sequence number the next record will receive.
func (l *Ledger) NextSeq() int { return l.seq + 1 }

// Commit atomically appends records to the ledger and applies their effect.
//
// Each record names a ship, a year, a kind, an amount, and the Before/After
// balances. Before must equal the live balance, After must be consistent with
// the kind and amount, and the banked amount must stay non negative. A ship
// may appear at most once per commit. If any record is invalid, Commit returns
// an error and the ledger is unchanged.
//
// Sequence numbers, ids and times are assigned here; a record that already
// carries a Seq or an ID (journal replay) must match the assigned one. A zero
// Time is stamped with the ledger clock. Pool records without a pool id share
// one derived from the first sequence number of the commit.
func (l *Ledger) Commit(records ...Transaction) ([]Transaction, error) {
	if len(records) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if seen[r.Ship] {
			return nil, fmt.Errorf("%w: %s appears twice in one commit", ErrDuplicateMember, r.Ship)
		}
		seen[r.Ship] = true
		live, err := l.Balance(r.Ship, r.Year)
		if err != nil {
			return nil, err
		}
		if !live.Value.Equal(r.Before) {
			return nil, fmt.Errorf("%w: %s %d is %s, record expects %s", ErrStaleBalance, r.Ship, r.Year, live.Value, r.Before)
		}
		if err := r.check(); err != nil {
			return nil, err
		}
		if banked := l.banked[r.Ship].Add(r.BankedDelta()); banked.IsNegative() {
			return nil, fmt.Errorf("%w: %s would have %s banked", ErrInsufficientBankedAmount, r.Ship, banked)
		}
	}

	now := l.clock()
	pool := newID("pool", l.seq+1)
	committed := make([]Transaction, len(records))
	for i, r := range records {
		seq := l.seq + 1 + i
		id := newID("tx", seq)
		if (r.Seq != 0 && r.Seq != seq) || (r.ID != "" && r.ID != id) {
			return nil, fmt.Errorf("%w: record %d of %s does not match sequence %d", ErrCorruptJournal, r.Seq, r.Ship, seq)
		}
		r.Seq, r.ID = seq, id
		if r.Time.IsZero() {
			r.Time = now
		}
		if r.Kind == CmdPool && r.Pool == "" {
			r.Pool = pool
		}
		committed[i] = r
	}

	for _, r := range committed {
		l.balances[r.Ship][r.Year] = r.After
		l.banked[r.Ship] = l.banked[r.Ship].Add(r.BankedDelta())
		l.transactions = append(l.transactions, r)
	}
	l.seq += len(committed)
	return committed, nil
}
