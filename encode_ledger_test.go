package compliance

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// journal builds a ledger exercising every record kind.
func journal(t *testing.T) *Ledger {
	t.Helper()
	l := newFleet(t, seed{"A", 2024, 1000}, seed{"B", 2025, -200}, seed{"C", 2025, -50})
	b := NewBanking(l)
	if _, err := b.Bank("A", G(600)); err != nil {
		t.Fatal(err)
	}
	if err := l.Seed("A", 2025, G(-300)); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Apply("A", G(100.5)); err != nil {
		t.Fatal(err)
	}
	if err := l.Seed("D", 2025, G(400)); err != nil {
		t.Fatal(err)
	}
	p := NewPooling(l)
	prop, err := p.Propose("D", "B", "C")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Allocate(prop); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestEncodeLedger(t *testing.T) {
	l := journal(t)
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		t.Fatalf("EncodeLedger() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	wantCommands := []string{"seed", "seed", "seed", "bank", "seed", "apply", "seed", "pool", "pool", "pool"}
	if len(lines) != len(wantCommands) {
		t.Fatalf("EncodeLedger() wrote %d lines, want %d:\n%s", len(lines), len(wantCommands), buf.String())
	}
	for i, line := range lines {
		if prefix := `{"command":"` + wantCommands[i] + `","seq":`; !strings.HasPrefix(line, prefix) {
			t.Errorf("line %d = %s, want prefix %s", i+1, line, prefix)
		}
	}

	want := `{"command":"bank","seq":4,"id":"` + newID("tx", 4) + `","time":"2025-03-01T09:00:00Z","ship":"A","year":2024,"amount":600,"before":1000,"after":400}`
	if lines[3] != want {
		t.Errorf("bank line:\n got %s\nwant %s", lines[3], want)
	}
	if want := `{"command":"seed","seq":1,"ship":"A","year":2024,"value":1000}`; lines[0] != want {
		t.Errorf("seed line:\n got %s\nwant %s", lines[0], want)
	}
}

func TestDecodeLedger_RoundTrip(t *testing.T) {
	l := journal(t)
	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		t.Fatal(err)
	}
	encoded := buf.String()

	got, err := DecodeLedger(strings.NewReader(encoded))
	if err != nil {
		t.Fatalf("DecodeLedger() error: %v", err)
	}

	if got.Len() != l.Len() {
		t.Fatalf("decoded %d transactions, want %d", got.Len(), l.Len())
	}
	for i, tx := range l.Transactions() {
		if !tx.Equal(got.transactions[i]) {
			t.Errorf("transaction %d:\n got %+v\nwant %+v", i, got.transactions[i], tx)
		}
	}
	for ship := range l.Ships() {
		for _, y := range l.Periods(ship) {
			want, _ := l.Balance(ship, y)
			b, err := got.Balance(ship, y)
			if err != nil || !b.Value.Equal(want.Value) {
				t.Errorf("Balance(%s, %d) = %v, %v, want %s", ship, y, b.Value, err, want.Value)
			}
		}
		if !got.Banked(ship).Equal(l.Banked(ship)) {
			t.Errorf("Banked(%s) = %s, want %s", ship, got.Banked(ship), l.Banked(ship))
		}
	}

	// Encoding the decoded ledger gives the same journal.
	var again bytes.Buffer
	if err := EncodeLedger(&again, got); err != nil {
		t.Fatal(err)
	}
	if again.String() != encoded {
		t.Errorf("re-encoded journal differs:\n%s\nwant\n%s", again.String(), encoded)
	}
}

func TestDecodeLedger_Corrupt(t *testing.T) {
	testCases := []struct {
		name    string
		journal string
	}{
		{"not json", `not json`},
		{"unknown command", `{"command":"transfer","seq":1}`},
		{"sequence gap", `{"command":"seed","seq":2,"ship":"A","year":2025,"value":100}`},
		{"edited before", `{"command":"seed","seq":1,"ship":"A","year":2025,"value":100}
{"command":"bank","seq":2,"time":"2025-03-01T09:00:00Z","ship":"A","year":2025,"amount":50,"before":200,"after":150}`},
		{"edited after", `{"command":"seed","seq":1,"ship":"A","year":2025,"value":100}
{"command":"bank","seq":2,"time":"2025-03-01T09:00:00Z","ship":"A","year":2025,"amount":50,"before":100,"after":40}`},
		{"overdrawn bank", `{"command":"seed","seq":1,"ship":"A","year":2025,"value":-100}
{"command":"apply","seq":2,"time":"2025-03-01T09:00:00Z","ship":"A","year":2025,"amount":50,"before":-100,"after":-50}`},
		{"seeded twice", `{"command":"seed","seq":1,"ship":"A","year":2025,"value":100}
{"command":"seed","seq":2,"ship":"A","year":2025,"value":100}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeLedger(strings.NewReader(tc.journal)); !errors.Is(err, ErrCorruptJournal) {
				t.Errorf("DecodeLedger() error = %v, want ErrCorruptJournal", err)
			}
		})
	}
}

func TestDecodeLedger_EmptyLines(t *testing.T) {
	in := `
{"command":"seed","seq":1,"ship":"A","year":2025,"value":100}

{"command":"bank","seq":2,"time":"2025-03-01T09:00:00Z","ship":"A","year":2025,"amount":50,"before":100,"after":50}
`
	l, err := DecodeLedger(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeLedger() error: %v", err)
	}
	assertCB(t, "A", mustCurrent(t, l, "A"), 50)
	assertCB(t, "Banked(A)", l.Banked("A"), 50)
	if h := l.History("A"); len(h) != 1 || h[0].ID != newID("tx", 2) {
		t.Errorf("History(A) = %+v, want one bank with a derived id", h)
	}
}

func TestEntries(t *testing.T) {
	l := NewLedger(WithClock(fixedClock))
	if err := l.Seed("A", 2025, G(300)); err != nil {
		t.Fatal(err)
	}
	if err := l.Seed("B", 2025, G(-100)); err != nil {
		t.Fatal(err)
	}
	if _, err := NewBanking(l).Bank("A", G(50)); err != nil {
		t.Fatal(err)
	}

	all, err := Entries(l, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("Entries(0) got %d entries, want 3", len(all))
	}
	for i, want := range []CommandType{CmdSeed, CmdSeed, CmdBank} {
		if all[i].Seq != i+1 || all[i].Command != want {
			t.Errorf("entry %d = (%d, %s), want (%d, %s)", i, all[i].Seq, all[i].Command, i+1, want)
		}
	}

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if got := string(all[2].Line); got != lines[2] {
		t.Errorf("entry line\n got %s\nwant %s", got, lines[2])
	}

	tail, err := Entries(l, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(tail) != 1 || tail[0].Seq != 3 {
		t.Errorf("Entries(2) = %v, want only seq 3", tail)
	}
}
