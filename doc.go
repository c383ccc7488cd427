// Package compliance manages FuelEU Maritime compliance balances (CB) of a
// fleet and the two flexibility mechanisms of the regulation: banking a
// surplus for a later period (Article 20) and pooling balances across ships
// (Article 21).
//
// The package is a pure, deterministic state machine:
//   - Ledger: the live balance of each ship and period, the banked amount of
//     each ship and an append-only log of transactions. Balances are seeded
//     from the regulatory calculation and change only through Ledger.Commit,
//     which is atomic.
//   - Banking: Bank moves surplus into the bank, Apply moves banked surplus
//     into a deficit.
//   - Pooling: proposes, allocates and commits pools with a greedy
//     allocation and the Article 21 rules.
//   - Reports: read-only fleet and ship views.
//
// Ledgers persist as JSONL journals (EncodeLedger, DecodeLedger). Decoding
// replays the journal through the same validation as live operations.
//
// This package serves as the foundational logic for the `cbx` command-line
// tool. It performs no I/O of its own and is not safe for concurrent use; a
// host must serialize mutating calls.
package compliance
