package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"arbiter-hq/minos/pkg/verdict"
)

// Entry is one row in the verdict ledger: a rendered decision together with
// where its evidence bundle lives on disk.
type Entry struct {
	RunID       string    `json:"run_id"`
	PolicyID    string    `json:"policy_id"`
	Verdict     string    `json:"verdict"`
	ExitStatus  string    `json:"exit_status"`
	EvaluatedAt time.Time `json:"evaluated_at"`
	BundleDir   string    `json:"bundle_dir"`

	// Violations is the decision's full audit trail, stored as JSON.
	Violations []verdict.Violation `json:"violations,omitempty"`
}

// Filter narrows a Query. Zero values mean no constraint.
type Filter struct {
	// Verdict filters by verdict string ("ALLOW", "MARGINAL", "REFUSE").
	Verdict string

	// PolicyID filters by policy identifier.
	PolicyID string

	// Since excludes entries evaluated before this time.
	Since time.Time

	// Limit caps the number of returned entries. Default 100.
	Limit int
}

// DefaultQueryLimit is applied when a Filter does not set one.
const DefaultQueryLimit = 100

// Ledger is a SQLite-backed history of rendered verdicts. It is append-only
// from the pipeline's point of view; rows leave only through Prune.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the verdict ledger at path.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	l := &Ledger{db: db, path: path}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	return l, nil
}

// initSchema creates the ledger schema if it doesn't exist.
func (l *Ledger) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS verdicts (
		run_id TEXT NOT NULL PRIMARY KEY,
		policy_id TEXT NOT NULL,
		verdict TEXT NOT NULL,
		exit_status TEXT NOT NULL,
		evaluated_at INTEGER NOT NULL,
		bundle_dir TEXT NOT NULL,
		violations TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_verdicts_evaluated_at ON verdicts(evaluated_at);
	CREATE INDEX IF NOT EXISTS idx_verdicts_policy_id ON verdicts(policy_id);
	`

	_, err := l.db.Exec(schema)
	return err
}

// Append records a rendered verdict. Re-appending the same run id replaces
// the previous row, which covers re-evaluation of an existing bundle.
func (l *Ledger) Append(ctx context.Context, e *Entry) error {
	violations, err := json.Marshal(e.Violations)
	if err != nil {
		return fmt.Errorf("failed to encode violations for run %s: %w", e.RunID, err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO verdicts (run_id, policy_id, verdict, exit_status, evaluated_at, bundle_dir, violations)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			policy_id = excluded.policy_id,
			verdict = excluded.verdict,
			exit_status = excluded.exit_status,
			evaluated_at = excluded.evaluated_at,
			bundle_dir = excluded.bundle_dir,
			violations = excluded.violations
	`, e.RunID, e.PolicyID, e.Verdict, e.ExitStatus, e.EvaluatedAt.UnixMilli(), e.BundleDir, string(violations))
	if err != nil {
		return fmt.Errorf("failed to append verdict for run %s: %w", e.RunID, err)
	}
	return nil
}

// Get returns the entry for a single run id, or sql.ErrNoRows wrapped when
// no such run was recorded.
func (l *Ledger) Get(ctx context.Context, runID string) (*Entry, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT run_id, policy_id, verdict, exit_status, evaluated_at, bundle_dir, violations
		FROM verdicts WHERE run_id = ?
	`, runID)

	e, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to load verdict for run %s: %w", runID, err)
	}
	return e, nil
}

// Query returns entries matching the filter, newest first.
func (l *Ledger) Query(ctx context.Context, f Filter) ([]*Entry, error) {
	var (
		conds []string
		args  []any
	)
	if f.Verdict != "" {
		conds = append(conds, "verdict = ?")
		args = append(args, f.Verdict)
	}
	if f.PolicyID != "" {
		conds = append(conds, "policy_id = ?")
		args = append(args, f.PolicyID)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "evaluated_at >= ?")
		args = append(args, f.Since.UnixMilli())
	}

	query := "SELECT run_id, policy_id, verdict, exit_status, evaluated_at, bundle_dir, violations FROM verdicts"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY evaluated_at DESC LIMIT ?"

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verdict row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneBefore deletes entries evaluated before the cutoff and returns both
// the deleted rows and how many there were, so callers can also remove the
// bundle directories the rows pointed at.
func (l *Ledger) PruneBefore(ctx context.Context, cutoff time.Time) ([]*Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, policy_id, verdict, exit_status, evaluated_at, bundle_dir, violations
		FROM verdicts WHERE evaluated_at < ?
	`, cutoff.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to select prunable verdicts: %w", err)
	}
	defer rows.Close()

	var pruned []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prunable verdict: %w", err)
		}
		pruned = append(pruned, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := l.db.ExecContext(ctx, "DELETE FROM verdicts WHERE evaluated_at < ?", cutoff.UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to prune verdicts: %w", err)
	}
	return pruned, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e           Entry
		evaluatedAt int64
		violations  sql.NullString
	)
	if err := s.Scan(&e.RunID, &e.PolicyID, &e.Verdict, &e.ExitStatus, &evaluatedAt, &e.BundleDir, &violations); err != nil {
		return nil, err
	}
	e.EvaluatedAt = time.UnixMilli(evaluatedAt).UTC()
	if violations.Valid && violations.String != "" && violations.String != "null" {
		if err := json.Unmarshal([]byte(violations.String), &e.Violations); err != nil {
			return nil, fmt.Errorf("failed to decode violations: %w", err)
		}
	}
	return &e, nil
}
