package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tverberg/ikconform/internal/conformance"
)

// ErrNotFound marks a lookup for a run ID the store has never seen.
var ErrNotFound = errors.New("run not found")

// RunSummary is one row of the run history listing.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Solver     string    `json:"solver"`
	Robot      string    `json:"robot"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Accepted   bool      `json:"accepted"`
	Scenarios  int       `json:"scenarios"`
}

// ReadRuns lists recorded runs, newest first. A non-positive limit means
// no limit. Run IDs break started_at ties so the order is deterministic.
func (s *Store) ReadRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT r.run_id, r.solver, r.robot, r.started_at, r.finished_at, r.accepted,
		       (SELECT COUNT(*) FROM scenarios sc WHERE sc.run_id = r.run_id)
		FROM runs r
		ORDER BY r.started_at DESC, r.run_id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var sum RunSummary
		var started, finished string
		var accepted int
		if err := rows.Scan(&sum.RunID, &sum.Solver, &sum.Robot, &started, &finished, &accepted, &sum.Scenarios); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if sum.StartedAt, err = parseStoredTime(started); err != nil {
			return nil, err
		}
		if sum.FinishedAt, err = parseStoredTime(finished); err != nil {
			return nil, err
		}
		sum.Accepted = accepted != 0
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Return empty slice instead of nil
	if summaries == nil {
		summaries = []RunSummary{}
	}
	return summaries, nil
}

// ReadRun reconstructs one full report from the store.
func (s *Store) ReadRun(ctx context.Context, runID string) (*conformance.Report, error) {
	rep := &conformance.Report{RunID: runID}

	var started, finished string
	var accepted int
	err := s.db.QueryRowContext(ctx, `
		SELECT solver, robot, started_at, finished_at, accepted
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&rep.Solver, &rep.Robot, &started, &finished, &accepted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	if rep.StartedAt, err = parseStoredTime(started); err != nil {
		return nil, err
	}
	if rep.FinishedAt, err = parseStoredTime(finished); err != nil {
		return nil, err
	}
	rep.Accepted = accepted != 0

	if rep.Scenarios, err = s.readScenarios(ctx, runID); err != nil {
		return nil, err
	}

	incs, err := s.readInconsistencies(ctx, runID)
	if err != nil {
		return nil, err
	}
	for _, inc := range incs {
		for i := range rep.Scenarios {
			if rep.Scenarios[i].Name == inc.Scenario {
				rep.Scenarios[i].Inconsistencies = append(rep.Scenarios[i].Inconsistencies, inc)
				break
			}
		}
	}

	return rep, nil
}

// readScenarios returns a run's scenario reports in declared order.
func (s *Store) readScenarios(ctx context.Context, runID string) ([]conformance.ScenarioReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, attempted, succeeded, input_failures, elapsed_ns, success_rate, accepted
		FROM scenarios
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []conformance.ScenarioReport
	for rows.Next() {
		var sr conformance.ScenarioReport
		var name string
		var elapsed int64
		var accepted int
		if err := rows.Scan(&name, &sr.Stats.Attempted, &sr.Stats.Succeeded,
			&sr.Stats.InputFailures, &elapsed, &sr.SuccessRate, &accepted); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		sr.Name = conformance.Variant(name)
		sr.Stats.Elapsed = time.Duration(elapsed)
		sr.Accepted = accepted != 0
		scenarios = append(scenarios, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}
	return scenarios, nil
}

// readInconsistencies returns a run's inconsistencies in insert order.
func (s *Store) readInconsistencies(ctx context.Context, runID string) ([]conformance.Inconsistency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scenario, trial_idx, kind, solution_idx, detail, target_pose, recovered_pose
		FROM inconsistencies
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query inconsistencies: %w", err)
	}
	defer rows.Close()

	var incs []conformance.Inconsistency
	for rows.Next() {
		var inc conformance.Inconsistency
		var scenario, kind string
		var target, recovered sql.NullString
		if err := rows.Scan(&scenario, &inc.Trial, &kind, &inc.Solution,
			&inc.Detail, &target, &recovered); err != nil {
			return nil, fmt.Errorf("scan inconsistency: %w", err)
		}
		inc.Scenario = conformance.Variant(scenario)
		inc.Kind = conformance.InconsistencyKind(kind)
		if inc.Target, err = unmarshalPose(target); err != nil {
			return nil, err
		}
		if inc.Recovered, err = unmarshalPose(recovered); err != nil {
			return nil, err
		}
		incs = append(incs, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inconsistencies: %w", err)
	}
	return incs, nil
}

func parseStoredTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}
