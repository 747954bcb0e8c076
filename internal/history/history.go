// Package history keeps benchmark results across runs in a local SQLite
// database and flags results that got slower than their previous run.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dkoosis/hellobench/internal/metrics"
	"github.com/dkoosis/hellobench/pkg/bench"
)

// DefaultFilename is the database name inside the cache directory.
const DefaultFilename = "history.db"

// Store records results. A Store opened with Disabled ignores writes and
// returns empty reads.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is one recorded result.
type Entry struct {
	ID         int64
	RunID      string
	RecordedAt time.Time
	Result     bench.Result
}

// NewRunID returns a fresh identifier grouping the results of one run.
func NewRunID() string {
	return uuid.NewString()
}

// Disabled returns a Store that records nothing.
func Disabled() *Store {
	return &Store{now: time.Now}
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Enabled reports whether the store is backed by a database.
func (s *Store) Enabled() bool { return s.db != nil }

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		recorded_at INTEGER NOT NULL,
		name TEXT NOT NULL,
		execution_time REAL NOT NULL,
		memory_mb REAL,
		ops_per_second REAL NOT NULL,
		success_rate REAL NOT NULL,
		error_count INTEGER NOT NULL,
		iterations INTEGER NOT NULL,
		outcome TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_name ON results(name);
	CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_recorded_at ON results(recorded_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores results under runID in one transaction.
func (s *Store) Record(ctx context.Context, runID string, results []bench.Result) error {
	if s.db == nil || len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results
		(run_id, recorded_at, name, execution_time, memory_mb, ops_per_second, success_rate, error_count, iterations, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	at := s.now().UnixNano()
	for _, r := range results {
		var mem sql.NullFloat64
		if r.Memory.Measured {
			mem = sql.NullFloat64{Float64: r.Memory.MB, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, at, r.Name, r.ExecutionTime, mem,
			r.OperationsPerSecond, r.SuccessRate, r.ErrorCount, r.Iterations, string(r.Outcome)); err != nil {
			return fmt.Errorf("insert %q: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

const selectColumns = `id, run_id, recorded_at, name, execution_time, memory_mb, ops_per_second,
	success_rate, error_count, iterations, outcome`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e       Entry
		nanos   int64
		mem     sql.NullFloat64
		outcome string
	)
	err := row.Scan(&e.ID, &e.RunID, &nanos, &e.Result.Name, &e.Result.ExecutionTime, &mem,
		&e.Result.OperationsPerSecond, &e.Result.SuccessRate, &e.Result.ErrorCount,
		&e.Result.Iterations, &outcome)
	if err != nil {
		return Entry{}, err
	}
	e.RecordedAt = time.Unix(0, nanos)
	e.Result.Outcome = bench.Outcome(outcome)
	if mem.Valid {
		e.Result.Memory = bench.MemoryUsage{MB: mem.Float64, Measured: true}
	}
	return e, nil
}

// Previous returns the latest successful result named name recorded outside
// excludeRunID.
func (s *Store) Previous(ctx context.Context, name, excludeRunID string) (Entry, bool, error) {
	if s.db == nil {
		return Entry{}, false, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+`
		FROM results
		WHERE name = ? AND run_id != ? AND outcome = ?
		ORDER BY id DESC
		LIMIT 1`, name, excludeRunID, string(bench.OutcomeSuccess))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("previous %q: %w", name, err)
	}
	return e, true, nil
}

// Regressions compares each successful result with its previous run and
// reports those slower by more than threshold (a fraction, 0.10 = 10%).
func (s *Store) Regressions(ctx context.Context, runID string, results []bench.Result, threshold float64) ([]metrics.Regression, error) {
	var regs []metrics.Regression
	for _, r := range results {
		if r.Outcome != bench.OutcomeSuccess || r.ExecutionTime <= 0 {
			continue
		}
		prev, ok, err := s.Previous(ctx, r.Name, runID)
		if err != nil {
			return nil, err
		}
		if !ok || prev.Result.ExecutionTime <= 0 {
			continue
		}
		if r.ExecutionTime > prev.Result.ExecutionTime*(1+threshold) {
			regs = append(regs, metrics.Regression{
				Group:  r.Name,
				Metric: "exec_s",
				From:   prev.Result.ExecutionTime,
				To:     r.ExecutionTime,
			})
		}
	}
	return regs, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+`
		FROM results
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("recent: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than ttl and returns how many were removed.
func (s *Store) Prune(ctx context.Context, ttl time.Duration) (int64, error) {
	if s.db == nil {
		return 0, nil
	}
	cutoff := s.now().Add(-ttl).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE recorded_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return res.RowsAffected()
}

// Size returns the bytes held by live pages. Pages freed by deletes are
// not counted, so Size drops as soon as rows go.
func (s *Store) Size(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, nil
	}
	var pages, free, pageSize int64
	for _, q := range []struct {
		pragma string
		dst    *int64
	}{
		{"page_count", &pages},
		{"freelist_count", &free},
		{"page_size", &pageSize},
	} {
		if err := s.db.QueryRowContext(ctx, "PRAGMA "+q.pragma).Scan(q.dst); err != nil {
			return 0, fmt.Errorf("size: %s: %w", q.pragma, err)
		}
	}
	return (pages - free) * pageSize, nil
}

// Trim deletes whole runs, oldest first, until Size is at most maxBytes or
// nothing is left. A non-positive maxBytes disables the limit.
func (s *Store) Trim(ctx context.Context, maxBytes int64) (int64, error) {
	if s.db == nil || maxBytes <= 0 {
		return 0, nil
	}
	var removed int64
	for {
		size, err := s.Size(ctx)
		if err != nil {
			return removed, err
		}
		if size <= maxBytes {
			return removed, nil
		}
		res, err := s.db.ExecContext(ctx, `DELETE FROM results
			WHERE run_id = (SELECT run_id FROM results ORDER BY id LIMIT 1)`)
		if err != nil {
			return removed, fmt.Errorf("trim: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return removed, fmt.Errorf("trim: %w", err)
		}
		if n == 0 {
			return removed, nil
		}
		removed += n
	}
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
