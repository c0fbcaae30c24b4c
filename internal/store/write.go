package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tverberg/ikconform/internal/conformance"
)

// WriteReport persists a finished conformance report atomically: the run
// row, every scenario in declared order, and every inconsistency. It
// satisfies conformance.Recorder.
//
// Run IDs are UUIDv7 and never reused, so a duplicate run_id is a caller
// bug and surfaces as a constraint error rather than being ignored.
func (s *Store) WriteReport(ctx context.Context, rep *conformance.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write report: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, solver, robot, started_at, finished_at, accepted)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rep.RunID,
		rep.Solver,
		rep.Robot,
		rep.StartedAt.UTC().Format(time.RFC3339Nano),
		rep.FinishedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(rep.Accepted),
	)
	if err != nil {
		return fmt.Errorf("write report: insert run: %w", err)
	}

	for position, sr := range rep.Scenarios {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scenarios
			(run_id, position, name, attempted, succeeded, input_failures, elapsed_ns, success_rate, accepted)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			rep.RunID,
			position,
			string(sr.Name),
			sr.Stats.Attempted,
			sr.Stats.Succeeded,
			sr.Stats.InputFailures,
			int64(sr.Stats.Elapsed),
			sr.SuccessRate,
			boolToInt(sr.Accepted),
		)
		if err != nil {
			return fmt.Errorf("write report: insert scenario %s: %w", sr.Name, err)
		}

		for _, inc := range sr.Inconsistencies {
			if err := writeInconsistency(ctx, tx, rep.RunID, inc); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write report: commit: %w", err)
	}
	return nil
}

func writeInconsistency(ctx context.Context, tx *sql.Tx, runID string, inc conformance.Inconsistency) error {
	target, err := marshalPose(inc.Target)
	if err != nil {
		return fmt.Errorf("insert inconsistency: %w", err)
	}
	recovered, err := marshalPose(inc.Recovered)
	if err != nil {
		return fmt.Errorf("insert inconsistency: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inconsistencies
		(run_id, scenario, trial_idx, kind, solution_idx, detail, target_pose, recovered_pose)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		string(inc.Scenario),
		inc.Trial,
		string(inc.Kind),
		inc.Solution,
		inc.Detail,
		target,
		recovered,
	)
	if err != nil {
		return fmt.Errorf("insert inconsistency: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
