package compliance

import (
	"fmt"
	"slices"
)

// PoolMember is the snapshot of one ship in a pool proposal.
type PoolMember struct {
	Ship   string
	Before CB // Before is the balance when the proposal was made.
	After  CB // After is the balance the allocation assigns.
}

// Proposal is a candidate pool: an ephemeral set of member snapshots, all from
// the same reporting period. It is never persisted.
type Proposal struct {
	Year    int
	Members []PoolMember
}

// Total returns the sum of the members' balances before allocation.
func (p Proposal) Total() CB {
	var total CB
	for _, m := range p.Members {
		total = total.Add(m.Before)
	}
	return total
}

// TotalAfter returns the sum of the allocated balances.
func (p Proposal) TotalAfter() CB {
	var total CB
	for _, m := range p.Members {
		total = total.Add(m.After)
	}
	return total
}

// Valid reports whether the pool as a whole is not in deficit.
func (p Proposal) Valid() bool { return !p.Total().IsNegative() }

// Ships returns the member ship ids, in proposal order.
func (p Proposal) Ships() []string {
	ships := make([]string, len(p.Members))
	for i, m := range p.Members {
		ships[i] = m.Ship
	}
	return ships
}

// Allocation is the committed outcome for one pool member.
type Allocation struct {
	Ship   string
	Before CB
	After  CB
	Pool   string // Pool is the id shared by every allocation of the pool.
	TxID   string // TxID is the id of the member's pool transaction.
}

// Improved counts the deficit members whose balance the pool improved.
func Improved(allocs []Allocation) int {
	n := 0
	for _, a := range allocs {
		if a.Before.IsNegative() && a.After.GreaterThan(a.Before) {
			n++
		}
	}
	return n
}

// Pooling redistributes compliance balance across a group of ships of the same
// reporting period (FuelEU Article 21).
type Pooling struct {
	engine
}

// NewPooling returns a pooling engine operating on l.
func NewPooling(l *Ledger, opts ...Option) *Pooling {
	return &Pooling{engine: newEngine(l, opts)}
}

// Propose snapshots the current balance of each ship. Every member starts with
// After equal to Before. Fewer than two members is accepted here and rejected
// at allocation.
func (p *Pooling) Propose(ships ...string) (Proposal, error) {
	var prop Proposal
	for _, ship := range ships {
		cur, err := p.ledger.Current(ship)
		if err != nil {
			return Proposal{}, err
		}
		if slices.Contains(prop.Ships(), ship) {
			return Proposal{}, fmt.Errorf("%w: %s", ErrDuplicateMember, ship)
		}
		if prop.Year != 0 && prop.Year != cur.Year {
			return Proposal{}, fmt.Errorf("%w: %s is in %d, pool is in %d", ErrPeriodMismatch, ship, cur.Year, prop.Year)
		}
		prop.Year = cur.Year
		prop.Members = append(prop.Members, PoolMember{Ship: ship, Before: cur.Value, After: cur.Value})
	}
	return prop, nil
}

// Reset returns a copy of the proposal with every allocation discarded. It
// does not touch the ledger.
func (p *Pooling) Reset(prop Proposal) Proposal {
	return Reset(prop)
}

// Reset returns a copy of prop with After equal to Before for every member.
func Reset(prop Proposal) Proposal {
	out := Proposal{Year: prop.Year, Members: slices.Clone(prop.Members)}
	for i := range out.Members {
		out.Members[i].After = out.Members[i].Before
	}
	return out
}

// Preview validates the proposal and computes the greedy allocation without
// committing it. The returned proposal lists members in allocation order. A
// *PoolRuleViolation is returned together with the offending allocation.
func (p *Pooling) Preview(prop Proposal) (Proposal, error) {
	if err := p.validate(prop); err != nil {
		return Proposal{}, err
	}
	out := Proposal{Year: prop.Year, Members: greedy(prop.Members)}
	if vs := violations(out.Members); len(vs) > 0 {
		return out, &PoolRuleViolation{Violations: vs}
	}
	return out, nil
}

// Allocate validates the proposal, computes the greedy allocation, checks the
// pooling rules and commits one pool transaction per member, atomically.
// Allocations are returned in allocation order, that is by descending balance.
func (p *Pooling) Allocate(prop Proposal) ([]Allocation, error) {
	if err := p.validate(prop); err != nil {
		return nil, p.reject(CmdPool, poolLabel(prop), err)
	}
	return p.commit(Proposal{Year: prop.Year, Members: greedy(prop.Members)})
}

// Commit commits an allocation chosen by the caller, held in the members'
// After values. It is validated like Allocate and must also conserve the total
// balance of the pool.
func (p *Pooling) Commit(prop Proposal) ([]Allocation, error) {
	if err := p.validate(prop); err != nil {
		return nil, p.reject(CmdPool, poolLabel(prop), err)
	}
	if !prop.TotalAfter().Equal(prop.Total()) {
		err := fmt.Errorf("%w: before %s, after %s", ErrPoolImbalance, prop.Total(), prop.TotalAfter())
		return nil, p.reject(CmdPool, poolLabel(prop), err)
	}
	return p.commit(prop)
}

func (p *Pooling) commit(alloc Proposal) ([]Allocation, error) {
	if vs := violations(alloc.Members); len(vs) > 0 {
		return nil, p.reject(CmdPool, poolLabel(alloc), &PoolRuleViolation{Violations: vs})
	}
	records := make([]Transaction, len(alloc.Members))
	for i, m := range alloc.Members {
		records[i] = Transaction{
			Kind:   CmdPool,
			Ship:   m.Ship,
			Year:   alloc.Year,
			Amount: m.After.Sub(m.Before).Abs(),
			Before: m.Before,
			After:  m.After,
		}
	}
	txs, err := p.ledger.Commit(records...)
	if err != nil {
		return nil, p.reject(CmdPool, poolLabel(alloc), err)
	}
	allocs := make([]Allocation, len(txs))
	for i, tx := range txs {
		allocs[i] = Allocation{Ship: tx.Ship, Before: tx.Before, After: tx.After, Pool: tx.Pool, TxID: tx.ID}
	}
	p.committed(CmdPool, txs)
	p.logger.Info().
		Str("pool", txs[0].Pool).
		Int("year", alloc.Year).
		Strs("members", alloc.Ships()).
		Int("improved", Improved(allocs)).
		Msg("pool created")
	return allocs, nil
}

// validate checks the proposal against the pool preconditions and the ledger.
func (p *Pooling) validate(prop Proposal) error {
	if len(prop.Members) < 2 {
		return fmt.Errorf("%w: got %d, need at least 2", ErrInsufficientMembers, len(prop.Members))
	}
	if !prop.Valid() {
		return fmt.Errorf("%w: total is %s", ErrPoolDeficit, prop.Total())
	}
	seen := make(map[string]bool, len(prop.Members))
	for _, m := range prop.Members {
		if seen[m.Ship] {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, m.Ship)
		}
		seen[m.Ship] = true
		cur, err := p.ledger.Current(m.Ship)
		if err != nil {
			return err
		}
		if cur.Year != prop.Year {
			return fmt.Errorf("%w: %s is in %d, pool is in %d", ErrPeriodMismatch, m.Ship, cur.Year, prop.Year)
		}
		if !cur.Value.Equal(m.Before) {
			return fmt.Errorf("%w: %s is now %s, proposal has %s", ErrStaleBalance, m.Ship, cur.Value, m.Before)
		}
	}
	return nil
}

// greedy allocates surplus to deficits. Members are sorted by descending
// balance, ties keeping their order. Each donor, in order, gives to the
// deficit members scanned from the last one backwards. This is a single
// forward pass.
func greedy(members []PoolMember) []PoolMember {
	out := slices.Clone(members)
	slices.SortStableFunc(out, func(a, b PoolMember) int { return b.Before.Cmp(a.Before) })
	for i := range out {
		out[i].After = out[i].Before
	}
	for i := range out {
		if !out[i].After.IsPositive() {
			continue
		}
		for j := len(out) - 1; j >= 0; j-- {
			if !out[j].After.IsNegative() {
				continue
			}
			t := MinCB(out[i].After, out[j].After.Abs())
			out[i].After = out[i].After.Sub(t)
			out[j].After = out[j].After.Add(t)
		}
	}
	return out
}

// violations lists members that break the pooling rules: a deficit ship may
// not exit worse, a surplus ship may not exit negative.
func violations(members []PoolMember) []Violation {
	var vs []Violation
	for _, m := range members {
		if m.Before.IsNegative() && m.After.LessThan(m.Before) {
			vs = append(vs, Violation{Ship: m.Ship, Before: m.Before, After: m.After, Rule: "deficit cannot worsen"})
		}
		if m.Before.IsPositive() && m.After.IsNegative() {
			vs = append(vs, Violation{Ship: m.Ship, Before: m.Before, After: m.After, Rule: "surplus cannot go negative"})
		}
	}
	return vs
}

func poolLabel(prop Proposal) string {
	ships := prop.Ships()
	if len(ships) == 0 {
		return "-"
	}
	return fmt.Sprint(ships)
}
