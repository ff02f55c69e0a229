package sink

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ygrebnov/workpool/internal/machine"
)

const createIntervals = `
CREATE TABLE IF NOT EXISTS machine_intervals (
	id TEXT NOT NULL PRIMARY KEY,
	machine_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	ended_at TIMESTAMP NOT NULL,
	duration_seconds REAL NOT NULL
);`

const createIntervalsIndex = `
CREATE INDEX IF NOT EXISTS idx_machine_intervals_machine_id
ON machine_intervals (machine_id, started_at);`

const insertInterval = `
INSERT INTO machine_intervals (id, machine_id, kind, started_at, ended_at, duration_seconds)
VALUES (:id, :machine_id, :kind, :started_at, :ended_at, :duration_seconds);`

// SQLiteSink stores intervals in the machine_intervals table.
type SQLiteSink struct {
	db *sqlx.DB
}

// NewSQLiteSink opens (or creates) the database at dbPath and ensures the schema.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("%s?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, err
	}
	// one writer; workers queue on the pool instead of on SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &SQLiteSink{db: db}
	ctx := context.Background()
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, createIntervals); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, createIntervalsIndex)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot create schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) Write(ctx context.Context, iv machine.Interval) error {
	rec := NewRecord(iv)
	if _, err := s.db.NamedExecContext(ctx, insertInterval, rec); err != nil {
		return fmt.Errorf("cannot insert interval: %w", err)
	}
	return nil
}

// Intervals returns the stored records of machineID ordered by start time.
func (s *SQLiteSink) Intervals(ctx context.Context, machineID string) ([]Record, error) {
	var out []Record
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, machine_id, kind, started_at, ended_at, duration_seconds
		FROM machine_intervals WHERE machine_id = $1 ORDER BY started_at, id`, machineID)
	if err != nil {
		return nil, fmt.Errorf("cannot query intervals: %w", err)
	}
	return out, nil
}

// Totals sums stored durations per machine and kind.
func (s *SQLiteSink) Totals(ctx context.Context) ([]Total, error) {
	var out []Total
	err := s.db.SelectContext(ctx, &out,
		`SELECT machine_id, kind, COUNT(*) AS intervals, SUM(duration_seconds) AS seconds
		FROM machine_intervals GROUP BY machine_id, kind ORDER BY machine_id, kind`)
	if err != nil {
		return nil, fmt.Errorf("cannot query totals: %w", err)
	}
	return out, nil
}

// Total aggregates the intervals of one machine and kind.
type Total struct {
	MachineID string  `db:"machine_id"`
	Kind      string  `db:"kind"`
	Intervals int     `db:"intervals"`
	Seconds   float64 `db:"seconds"`
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

func (s *SQLiteSink) inTx(ctx context.Context, cb func(*sqlx.Tx) error) (err error) {
	tx, beginErr := s.db.BeginTxx(ctx, nil)
	if beginErr != nil {
		return fmt.Errorf("cannot start tx: %w", beginErr)
	}

	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			panic(rec)
		}
	}()

	if err = cb(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("cannot roll back tx after error (tx error: %v), original error: %w", rollbackErr, err)
		}
		return err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("cannot commit tx: %w", commitErr)
	}
	return nil
}
