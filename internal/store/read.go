package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lmoretti/petrivet/internal/reduce"
)

const runColumns = `id, fingerprint, source, policy, timing, verdict, invariants, residue, trace, routes, created_at`

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE id = ?
	`, id)
	return scanRun(row)
}

// FindRunByFingerprint retrieves the run recorded for a trace fingerprint.
// Returns sql.ErrNoRows if the trace was never recorded.
func (s *Store) FindRunByFingerprint(ctx context.Context, fingerprint string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE fingerprint = ?
	`, fingerprint)
	return scanRun(row)
}

// ListRuns returns runs newest first, id as the tiebreak so equal
// timestamps still list deterministically. A non-positive limit returns
// everything.
//
// Returns an empty slice (not nil) if no runs are recorded.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: LIMIT -1 means no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY created_at DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

// ReadPasses returns the reduction passes of a run in pass order.
//
// Returns an empty slice (not nil) if the run has no pass rows.
func (s *Store) ReadPasses(ctx context.Context, runID string) ([]reduce.Pass, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, matches, residue
		FROM run_passes
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	var passes []reduce.Pass
	for rows.Next() {
		var p reduce.Pass
		if err := rows.Scan(&p.Seq, &p.Matches, &p.Residue); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		passes = append(passes, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}

	if passes == nil {
		passes = []reduce.Pass{}
	}

	return passes, nil
}

// rowScanner lets scanRun work for both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r       Run
		routes  string
		created string
	)
	err := row.Scan(&r.ID, &r.Fingerprint, &r.Source, &r.Policy, &r.Timing,
		&r.Verdict, &r.Invariants, &r.Residue, &r.Trace, &routes, &created)
	if err != nil {
		// Pass sql.ErrNoRows through unwrapped so callers can test for it.
		return Run{}, err
	}

	r.Routes, err = unmarshalRoutes(routes)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", r.ID, err)
	}

	r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: parse created_at: %w", r.ID, err)
	}

	return r, nil
}
