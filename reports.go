package compliance

import (
	"fmt"
	"slices"
)

// Status classifies a compliance balance.
type Status int

const (
	// Compliant is an exactly zero balance.
	Compliant Status = iota
	// Surplus is a positive balance, that can be banked or pooled.
	Surplus
	// Deficit is a negative balance, that must be covered.
	Deficit
)

func (s Status) String() string {
	switch s {
	case Compliant:
		return "Compliant"
	case Surplus:
		return "Surplus"
	case Deficit:
		return "Deficit"
	default:
		return "Unknown"
	}
}

// Classify returns the status of a balance.
func Classify(v CB) Status {
	switch {
	case v.IsPositive():
		return Surplus
	case v.IsNegative():
		return Deficit
	default:
		return Compliant
	}
}

// FleetRow is a ship's line in a FleetReport.
type FleetRow struct {
	Ship   string
	Year   int
	Value  CB
	Status Status
	Banked CB
}

// FleetReport is a read-only view of every ship's balance for a period.
type FleetReport struct {
	Year    int // Year is the reported period, zero for each ship's current one.
	Rows    []FleetRow
	Surplus CB // Surplus is the sum of positive balances.
	Deficit CB // Deficit is the sum of negative balances.
	Net     CB
	Banked  CB
}

// Count returns the number of ships with the given status.
func (r *FleetReport) Count(s Status) int {
	n := 0
	for _, row := range r.Rows {
		if row.Status == s {
			n++
		}
	}
	return n
}

// NewFleetReport builds a report of every ship for a period. When year is zero
// each ship is reported for its current period. Ships without a balance for
// the year are left out.
func NewFleetReport(l *Ledger, year int) *FleetReport {
	r := &FleetReport{Year: year}
	for ship := range l.Ships() {
		var b Balance
		var err error
		if year == 0 {
			b, err = l.Current(ship)
		} else {
			b, err = l.Balance(ship, year)
		}
		if err != nil {
			continue
		}
		row := FleetRow{Ship: ship, Year: b.Year, Value: b.Value, Status: b.Status(), Banked: l.Banked(ship)}
		r.Rows = append(r.Rows, row)
		switch row.Status {
		case Surplus:
			r.Surplus = r.Surplus.Add(row.Value)
		case Deficit:
			r.Deficit = r.Deficit.Add(row.Value)
		}
		r.Net = r.Net.Add(row.Value)
		r.Banked = r.Banked.Add(row.Banked)
	}
	return r
}

// ShipReport is a read-only view of one ship.
type ShipReport struct {
	Ship      string
	Balances  []Balance     // Balances lists every period, oldest first.
	Banked    CB            // Banked is the amount currently banked.
	TotalBank CB            // TotalBank is the sum of all bank transactions.
	TotalUsed CB            // TotalUsed is the sum of all apply transactions.
	Pooled    CB            // Pooled is the net balance received from pools.
	History   []Transaction // History is most recent first.
}

// NewShipReport builds the report of a ship.
func NewShipReport(l *Ledger, ship string) (*ShipReport, error) {
	if !l.Has(ship) {
		return nil, fmt.Errorf("%w: %q", ErrShipNotFound, ship)
	}
	r := &ShipReport{Ship: ship, Banked: l.Banked(ship), History: l.History(ship)}
	for _, y := range l.Periods(ship) {
		b, _ := l.Balance(ship, y)
		r.Balances = append(r.Balances, b)
	}
	for _, tx := range slices.Backward(r.History) {
		switch tx.Kind {
		case CmdBank:
			r.TotalBank = r.TotalBank.Add(tx.Amount)
		case CmdApply:
			r.TotalUsed = r.TotalUsed.Add(tx.Amount)
		case CmdPool:
			r.Pooled = r.Pooled.Add(tx.Delta())
		}
	}
	return r, nil
}
