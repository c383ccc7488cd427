package compliance

import (
	"testing"
	"time"
)

// epoch is the fixed time of every transaction committed in tests.
var epoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return epoch }

// seed is a (ship, year, value) triple for newFleet.
type seed struct {
	ship  string
	year  int
	value float64
}

// newFleet returns a ledger seeded with the given balances.
func newFleet(t *testing.T, seeds ...seed) *Ledger {
	t.Helper()
	l := NewLedger(WithClock(fixedClock))
	for _, s := range seeds {
		if err := l.Seed(s.ship, s.year, G(s.value)); err != nil {
			t.Fatalf("Seed(%s, %d, %v) error: %v", s.ship, s.year, s.value, err)
		}
	}
	return l
}

// mustCurrent returns the current balance value of a ship.
func mustCurrent(t *testing.T, l *Ledger, ship string) CB {
	t.Helper()
	b, err := l.Current(ship)
	if err != nil {
		t.Fatalf("Current(%s) error: %v", ship, err)
	}
	return b.Value
}

// assertCB fails the test if got is not want.
func assertCB(t *testing.T, what string, got CB, want float64) {
	t.Helper()
	if !got.Equal(G(want)) {
		t.Errorf("%s = %s, want %s", what, got, G(want))
	}
}
