package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/tverberg/ikconform/internal/conformance"
	"github.com/tverberg/ikconform/internal/spatial"
)

// createTestStore creates a fresh on-disk store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestReport builds a two-scenario report with one inconsistency.
func createTestReport(runID string, startedAt time.Time) *conformance.Report {
	target := spatial.Pose{
		Position:    spatial.Vec3{X: 0.25, Y: -0.5, Z: 0.75},
		Orientation: spatial.IdentityQuaternion(),
	}
	recovered := spatial.Pose{
		Position:    spatial.Vec3{X: 0.26, Y: -0.5, Z: 0.75},
		Orientation: spatial.IdentityQuaternion(),
	}

	return &conformance.Report{
		RunID:      runID,
		Solver:     "gantry6",
		Robot:      "gantry6",
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(3 * time.Second),
		Accepted:   false,
		Scenarios: []conformance.ScenarioReport{
			{
				Name: conformance.VariantFK,
				Stats: conformance.TrialStats{
					Attempted: 100,
					Succeeded: 100,
					Elapsed:   120 * time.Millisecond,
				},
				SuccessRate: 1.0,
				Accepted:    true,
			},
			{
				Name: conformance.VariantIK,
				Stats: conformance.TrialStats{
					Attempted:     98,
					Succeeded:     97,
					InputFailures: 2,
					Elapsed:       340 * time.Millisecond,
				},
				SuccessRate: 97.0 / 98.0,
				Accepted:    false,
				Inconsistencies: []conformance.Inconsistency{
					{
						Trial:     17,
						Scenario:  conformance.VariantIK,
						Kind:      conformance.InconsistencyRoundTrip,
						Solution:  -1,
						Detail:    "recovered pose outside tolerance 0.0001",
						Target:    &target,
						Recovered: &recovered,
					},
				},
			},
		},
	}
}
