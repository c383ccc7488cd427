package compliance

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
)

// maxLineSize bounds a single journal line.
const maxLineSize = 1 << 20

// records yields every seed and transaction of l, merged in sequence order.
func (l *Ledger) records() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		seeds, txs := l.seeds, l.transactions
		for len(seeds) > 0 || len(txs) > 0 {
			if len(txs) == 0 || (len(seeds) > 0 && seeds[0].Seq < txs[0].Seq) {
				if !yield(seeds[0].Seq, seeds[0]) {
					return
				}
				seeds = seeds[1:]
				continue
			}
			if !yield(txs[0].Seq, txs[0]) {
				return
			}
			txs = txs[1:]
		}
	}
}

// EncodeLedger writes the ledger as a JSONL journal: one seed or transaction
// per line, in sequence order.
func EncodeLedger(w io.Writer, l *Ledger) error {
	for _, v := range l.records() {
		if err := encodeLine(w, v); err != nil {
			return err
		}
	}
	return nil
}

// Entry is a single encoded journal line.
type Entry struct {
	Seq     int
	Command CommandType
	Line    []byte // Line is the JSON object, without the trailing newline.
}

// Entries encodes the journal lines of l whose sequence is greater than after.
func Entries(l *Ledger, after int) ([]Entry, error) {
	var entries []Entry
	for seq, v := range l.records() {
		if seq <= after {
			continue
		}
		line, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("could not encode %v: %w", v, err)
		}
		cmd := CmdSeed
		if tx, ok := v.(Transaction); ok {
			cmd = tx.Kind
		}
		entries = append(entries, Entry{Seq: seq, Command: cmd, Line: line})
	}
	return entries, nil
}

// EncodeTransaction writes a single journal line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	return encodeLine(w, tx)
}

func encodeLine(w io.Writer, v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not encode %v: %w", v, err)
	}
	line = append(line, '\n')
	_, err = w.Write(line)
	return err
}

// DecodeLedger reads a JSONL journal and replays it into a new ledger.
//
// Every line goes through the same validation as a live operation, so a
// journal whose balances do not chain (an edited before or after, a missing
// line) is rejected with ErrCorruptJournal. Consecutive pool lines sharing a
// pool id are replayed as one commit.
func DecodeLedger(r io.Reader, opts ...Option) (*Ledger, error) {
	l := NewLedger(opts...)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var pending []Transaction
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		_, err := l.Commit(pending...)
		pending = nil
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptJournal, err)
		}
		return nil
	}

	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("%w: could not identify command on line %d: %w", ErrCorruptJournal, n, err)
		}

		switch identifier.Command {
		case CmdSeed:
			if err := flush(); err != nil {
				return nil, fmt.Errorf("line %d: %w", n-1, err)
			}
			var s Seed
			if err := json.Unmarshal(line, &s); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrCorruptJournal, n, err)
			}
			if s.Seq != l.NextSeq() {
				return nil, fmt.Errorf("%w: line %d: seed has sequence %d, expected %d", ErrCorruptJournal, n, s.Seq, l.NextSeq())
			}
			if err := l.seed(s.Ship, s.Year, s.Value); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrCorruptJournal, n, err)
			}
		case CmdBank, CmdApply, CmdPool:
			var tx Transaction
			if err := json.Unmarshal(line, &tx); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrCorruptJournal, n, err)
			}
			if len(pending) > 0 && (tx.Kind != CmdPool || tx.Pool != pending[0].Pool) {
				if err := flush(); err != nil {
					return nil, fmt.Errorf("line %d: %w", n-1, err)
				}
			}
			pending = append(pending, tx)
			if tx.Kind != CmdPool {
				if err := flush(); err != nil {
					return nil, fmt.Errorf("line %d: %w", n, err)
				}
			}
		default:
			return nil, fmt.Errorf("%w: unknown command %q on line %d", ErrCorruptJournal, identifier.Command, n)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, fmt.Errorf("line %d: %w", n, err)
	}
	return l, nil
}
