package compliance

import (
	"errors"
	"slices"
	"testing"
)

func TestLedger_Seed(t *testing.T) {
	l := newFleet(t, seed{"A", 2024, -100}, seed{"A", 2025, 300}, seed{"B", 2025, 0})

	testCases := []struct {
		name    string
		ship    string
		year    int
		wantErr error
	}{
		{"empty ship", " ", 2025, ErrInvalidShip},
		{"zero year", "C", 0, ErrInvalidPeriod},
		{"negative year", "C", -2025, ErrInvalidPeriod},
		{"already seeded", "A", 2025, ErrAlreadySeeded},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := l.Seed(tc.ship, tc.year, G(1)); !errors.Is(err, tc.wantErr) {
				t.Errorf("Seed() error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	if got := slices.Collect(l.Ships()); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("Ships() = %v, want [A B]", got)
	}
	if got := l.Periods("A"); !slices.Equal(got, []int{2024, 2025}) {
		t.Errorf("Periods(A) = %v, want [2024 2025]", got)
	}
	if got := l.Years(); !slices.Equal(got, []int{2024, 2025}) {
		t.Errorf("Years() = %v, want [2024 2025]", got)
	}
}

func TestLedger_Balance(t *testing.T) {
	l := newFleet(t, seed{"A", 2024, -100}, seed{"A", 2025, 300})

	b, err := l.Balance("A", 2024)
	if err != nil {
		t.Fatalf("Balance() error: %v", err)
	}
	assertCB(t, "Balance(A, 2024)", b.Value, -100)

	cur, err := l.Current("A")
	if err != nil {
		t.Fatalf("Current() error: %v", err)
	}
	if cur.Year != 2025 {
		t.Errorf("Current(A).Year = %d, want 2025", cur.Year)
	}
	assertCB(t, "Current(A)", cur.Value, 300)

	if _, err := l.Balance("Z", 2025); !errors.Is(err, ErrShipNotFound) {
		t.Errorf("Balance(Z) error = %v, want ErrShipNotFound", err)
	}
	if _, err := l.Balance("A", 2030); !errors.Is(err, ErrPeriodNotFound) {
		t.Errorf("Balance(A, 2030) error = %v, want ErrPeriodNotFound", err)
	}
	if _, err := l.Current("Z"); !errors.Is(err, ErrShipNotFound) {
		t.Errorf("Current(Z) error = %v, want ErrShipNotFound", err)
	}
	assertCB(t, "Banked(Z)", l.Banked("Z"), 0)
}

func TestLedger_Commit(t *testing.T) {
	bank := func(ship string, before, amount float64) Transaction {
		return Transaction{Kind: CmdBank, Ship: ship, Year: 2025, Amount: G(amount), Before: G(before), After: G(before - amount)}
	}

	testCases := []struct {
		name    string
		records []Transaction
		wantErr error
	}{
		{"unknown ship", []Transaction{bank("Z", 100, 10)}, ErrShipNotFound},
		{"unknown period", []Transaction{{Kind: CmdBank, Ship: "A", Year: 2030, Amount: G(10), Before: G(100), After: G(90)}}, ErrPeriodNotFound},
		{"stale before", []Transaction{bank("A", 99, 10)}, ErrStaleBalance},
		{"zero amount", []Transaction{bank("A", 100, 0)}, ErrInvalidAmount},
		{"duplicate ship", []Transaction{bank("A", 100, 10), bank("A", 90, 10)}, ErrDuplicateMember},
		{"negative banked", []Transaction{{Kind: CmdApply, Ship: "B", Year: 2025, Amount: G(10), Before: G(-50), After: G(-40)}}, ErrInsufficientBankedAmount},
		{"second record invalid", []Transaction{bank("A", 100, 10), bank("B", -40, 10)}, ErrStaleBalance},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := newFleet(t, seed{"A", 2025, 100}, seed{"B", 2025, -50})
			if _, err := l.Commit(tc.records...); !errors.Is(err, tc.wantErr) {
				t.Fatalf("Commit() error = %v, want %v", err, tc.wantErr)
			}
			// Nothing changed.
			assertCB(t, "A", mustCurrent(t, l, "A"), 100)
			assertCB(t, "B", mustCurrent(t, l, "B"), -50)
			assertCB(t, "Banked(A)", l.Banked("A"), 0)
			if l.Len() != 0 {
				t.Errorf("Len() = %d, want 0", l.Len())
			}
		})
	}

	t.Run("inconsistent after", func(t *testing.T) {
		l := newFleet(t, seed{"A", 2025, 100})
		rec := bank("A", 100, 10)
		rec.After = G(95)
		if _, err := l.Commit(rec); err == nil {
			t.Fatal("Commit() accepted a record whose after does not match its amount")
		}
	})

	t.Run("assigns sequence and ids", func(t *testing.T) {
		l := newFleet(t, seed{"A", 2025, 100}, seed{"B", 2025, -50})
		txs, err := l.Commit(bank("A", 100, 10))
		if err != nil {
			t.Fatalf("Commit() error: %v", err)
		}
		tx := txs[0]
		if tx.Seq != 3 {
			t.Errorf("Seq = %d, want 3 (after two seeds)", tx.Seq)
		}
		if tx.ID != newID("tx", 3) {
			t.Errorf("ID = %q, want %q", tx.ID, newID("tx", 3))
		}
		if !tx.Time.Equal(epoch) {
			t.Errorf("Time = %v, want %v", tx.Time, epoch)
		}
		assertCB(t, "A", mustCurrent(t, l, "A"), 90)
		assertCB(t, "Banked(A)", l.Banked("A"), 10)
	})
}

func TestLedger_Transactions(t *testing.T) {
	l := newFleet(t, seed{"A", 2025, 300}, seed{"B", 2025, -100})
	banking := NewBanking(l)
	if _, err := banking.Bank("A", G(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := banking.Bank("A", G(50)); err != nil {
		t.Fatal(err)
	}

	var kinds []CommandType
	for _, tx := range l.Transactions(ByShip("A"), ByKind(CmdBank)) {
		kinds = append(kinds, tx.Kind)
	}
	if len(kinds) != 2 {
		t.Errorf("Transactions(A, bank) yielded %d records, want 2", len(kinds))
	}
	for range l.Transactions(ByShip("B")) {
		t.Error("Transactions(B) yielded a record, want none")
	}

	h := l.History("A")
	if len(h) != 2 {
		t.Fatalf("History(A) has %d records, want 2", len(h))
	}
	// Most recent first.
	assertCB(t, "History(A)[0].Amount", h[0].Amount, 50)
	assertCB(t, "History(A)[1].Amount", h[1].Amount, 100)
	if h[0].Seq < h[1].Seq {
		t.Errorf("History(A) is not in reverse order: %d before %d", h[0].Seq, h[1].Seq)
	}
	if len(l.History("B")) != 0 {
		t.Errorf("History(B) is not empty")
	}
}
