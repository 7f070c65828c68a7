package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store is an optional SQLite-backed audit log of per-sink delivery
// outcomes. It records results only; submissions are never persisted.
type Store struct {
	db *sqlx.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS deliveries (
	run_id     TEXT NOT NULL,
	sink       TEXT NOT NULL,
	recipient  TEXT NOT NULL DEFAULT '',
	outcome    TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS deliveries_run_id ON deliveries (run_id);
`

func OpenStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply delivery schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record appends the outcome of every sink of one run.
func (s *Store) Record(ctx context.Context, runID string, results []Result) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO deliveries (run_id, sink, recipient, outcome, error, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, string(r.Sink), r.Recipient, string(r.Outcome), r.Error, now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert delivery: %w", err)
		}
	}
	return tx.Commit()
}

// RunResults loads the recorded outcomes for one run in insert order.
func (s *Store) RunResults(ctx context.Context, runID string) ([]Result, error) {
	var out []Result
	err := s.db.SelectContext(ctx, &out,
		`SELECT sink, recipient, outcome, error FROM deliveries WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("select deliveries: %w", err)
	}
	return out, nil
}
