// Package postgres stores the compliance journal in a PostgreSQL table, one
// row per journal line.
package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fueleu/compliance"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

const defaultTable = "cb_journal"

// ErrConflict is returned by Save when the journal changed since it was
// loaded.
var ErrConflict = errors.New("journal was modified concurrently")

// Store is a journal backed by a PostgreSQL table.
type Store struct {
	db     *sql.DB
	table  string
	logger zerolog.Logger
	head   int // head is the last sequence seen by Load or Save.
}

// Option configures the store.
type Option func(*Store)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(s *Store) {
		if table != "" {
			s.table = table
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New returns a store on an open database.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, table: defaultTable, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the database at url using the pgx driver.
func Open(ctx context.Context, url string, opts ...Option) (*Store, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not reach database: %w", err)
	}
	return New(db, opts...), nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the journal table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	seq        BIGINT PRIMARY KEY,
	command    TEXT NOT NULL,
	line       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, s.table))
	return err
}

// Load replays the whole journal into a new ledger.
func (s *Store) Load(ctx context.Context, opts ...compliance.Option) (*compliance.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT seq, line::text FROM %s ORDER BY seq`, s.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buf bytes.Buffer
	head := 0
	for rows.Next() {
		var line string
		if err := rows.Scan(&head, &line); err != nil {
			return nil, err
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	l, err := compliance.DecodeLedger(&buf, opts...)
	if err != nil {
		return nil, err
	}
	s.head = head
	s.logger.Debug().Str("table", s.table).Int("head", head).Msg("journal loaded")
	return l, nil
}

// Save appends the lines of l that are not yet stored. It fails with
// ErrConflict when another writer appended to the journal since the last Load
// or Save.
func (s *Store) Save(ctx context.Context, l *compliance.Ledger) error {
	entries, err := compliance.Entries(l, s.head)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE`, s.table)); err != nil {
		_ = tx.Rollback()
		return err
	}
	var head int
	if err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT COALESCE(MAX(seq), 0) FROM %s`, s.table)).Scan(&head); err != nil {
		_ = tx.Rollback()
		return err
	}
	if head != s.head {
		_ = tx.Rollback()
		return fmt.Errorf("%w: head is %d, expected %d", ErrConflict, head, s.head)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (seq, command, line) VALUES ($1, $2, $3)`, s.table))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Seq, string(e.Command), string(e.Line)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.head = entries[len(entries)-1].Seq
	s.logger.Info().Str("table", s.table).Int("lines", len(entries)).Int("head", s.head).Msg("journal saved")
	return nil
}
