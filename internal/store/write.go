package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lmoretti/petrivet/internal/reduce"
)

// WriteRun inserts a run and its reduction passes in one transaction.
// Runs are idempotent by fingerprint: writing a trace that is already
// recorded changes nothing and reports false. Other constraint
// violations (e.g., CHECK on the verdict) still return errors.
func (s *Store) WriteRun(ctx context.Context, run Run, passes []reduce.Pass) (bool, error) {
	routes, err := marshalRoutes(run.Routes)
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, fingerprint, source, policy, timing, verdict, invariants, residue, trace, routes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`,
		run.ID,
		run.Fingerprint,
		run.Source,
		run.Policy,
		run.Timing,
		run.Verdict,
		run.Invariants,
		run.Residue,
		run.Trace,
		routes,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write run: %w", err)
	}
	if inserted == 0 {
		// Fingerprint already recorded; the earlier run and its passes
		// stand.
		return false, nil
	}

	for _, p := range passes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_passes (run_id, seq, matches, residue)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, run.ID, p.Seq, p.Matches, p.Residue)
		if err != nil {
			return false, fmt.Errorf("write run pass %d: %w", p.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write run: commit: %w", err)
	}
	return true, nil
}
