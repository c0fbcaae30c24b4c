package conformance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tverberg/ikconform/internal/solver"
	"github.com/tverberg/ikconform/internal/spatial"
)

func TestRunTrialFKSucceeds(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	v := newTestValidator(t, honestSolver(t, m), m, 1)

	outcome := v.RunTrial(VariantFK, 0)
	assert.True(t, outcome.Succeeded)
	assert.Equal(t, FailureNone, outcome.Kind)
	assert.NoError(t, outcome.Err)
	assert.Empty(t, outcome.Inconsistencies)
}

func TestRunTrialFKFailureIsTallied(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	s := brokenFKSolver{Solver: honestSolver(t, m)}
	v := newTestValidator(t, s, m, 1)

	outcome := v.RunTrial(VariantFK, 0)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, FailureSolve, outcome.Kind)
	require.Error(t, outcome.Err)
}

func TestRunTrialIKRoundTripSucceeds(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	v := newTestValidator(t, honestSolver(t, m), m, 2)

	outcome := v.RunTrial(VariantIK, 0)
	assert.True(t, outcome.Succeeded)
	assert.Empty(t, outcome.Inconsistencies)
}

func TestRunTrialIKSolverFailureIsTallied(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	s := failingSolver{Solver: honestSolver(t, m)}
	v := newTestValidator(t, s, m, 2)

	outcome := v.RunTrial(VariantIK, 0)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, FailureSolve, outcome.Kind)
	assert.True(t, solver.IsNoSolution(outcome.Err))
	assert.Empty(t, outcome.Inconsistencies)
}

func TestRunTrialTargetGenerationFailureIsSkipped(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	s := brokenFKSolver{Solver: honestSolver(t, m)}
	v := newTestValidator(t, s, m, 2)

	outcome := v.RunTrial(VariantIK, 0)
	assert.Equal(t, FailureInput, outcome.Kind)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "generating target pose")
}

func TestRunTrialSearchSucceeds(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	v := newTestValidator(t, honestSolver(t, m), m, 3)

	outcome := v.RunTrial(VariantSearch, 0)
	assert.True(t, outcome.Succeeded)
	assert.Empty(t, outcome.Inconsistencies)
}

func TestRunTrialSearchReResolveFailureIsTallied(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	s := noReresolveSolver{Solver: honestSolver(t, m)}
	v := newTestValidator(t, s, m, 3)

	outcome := v.RunTrial(VariantSearch, 0)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, FailureSolve, outcome.Kind)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "re-resolving searched solution")
}

func TestRunTrialDriftedSolutionIsInconsistent(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	s := driftSolver{Solver: honestSolver(t, m)}
	v := newTestValidator(t, s, m, 4)

	outcome := v.RunTrial(VariantIK, 3)

	// The solver claimed success, so the tally believes it; the round
	// trip exposes the lie through the inconsistency channel.
	assert.True(t, outcome.Succeeded)
	require.Len(t, outcome.Inconsistencies, 1)

	inc := outcome.Inconsistencies[0]
	assert.Equal(t, InconsistencyRoundTrip, inc.Kind)
	assert.Equal(t, VariantIK, inc.Scenario)
	assert.Equal(t, 3, inc.Trial)
	assert.Equal(t, singleSolution, inc.Solution)
	require.NotNil(t, inc.Target)
	require.NotNil(t, inc.Recovered)
	assert.InDelta(t, inc.Target.Position.X+0.01, inc.Recovered.Position.X, 1e-9)
}

func TestRunTrialUnverifiableSolution(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	s := &unverifiableSolver{Solver: honestSolver(t, m)}
	v := newTestValidator(t, s, m, 4)

	outcome := v.RunTrial(VariantIK, 0)
	assert.True(t, outcome.Succeeded)
	require.Len(t, outcome.Inconsistencies, 1)
	assert.Equal(t, InconsistencyUnverifiable, outcome.Inconsistencies[0].Kind)
	assert.Nil(t, outcome.Inconsistencies[0].Recovered)
}

func TestRunTrialMultipleVerifiesEveryBranch(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	v := newTestValidator(t, honestSolver(t, m), m, 5)

	outcome := v.RunTrial(VariantMultiple, 0)
	assert.True(t, outcome.Succeeded)
	assert.Empty(t, outcome.Inconsistencies)
}

func TestRunTrialEmptyMultipleSolutionSet(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	s := emptyMultiSolver{Solver: honestSolver(t, m)}
	v := newTestValidator(t, s, m, 5)

	outcome := v.RunTrial(VariantMultiple, 0)
	assert.False(t, outcome.Succeeded)
	assert.Equal(t, FailureNone, outcome.Kind)
	assert.NoError(t, outcome.Err)
	require.Len(t, outcome.Inconsistencies, 1)
	assert.Equal(t, InconsistencyEmptySolutions, outcome.Inconsistencies[0].Kind)
}

func TestRunTrialFilteredSkipsBelowGroundTarget(t *testing.T) {
	m := testGantryModel(-1.2, -0.1)
	v := newTestValidator(t, honestSolver(t, m), m, 6)

	outcome := v.RunTrial(VariantSearchFiltered, 0)
	assert.Equal(t, FailureInput, outcome.Kind)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "not above ground")
}

func TestRunTrialFilteredSucceedsAboveGround(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	v := newTestValidator(t, honestSolver(t, m), m, 6)

	outcome := v.RunTrial(VariantSearchFiltered, 0)
	assert.True(t, outcome.Succeeded)
	assert.Empty(t, outcome.Inconsistencies)
}

func TestRunTrialFilterViolationSurfaces(t *testing.T) {
	m := testGantryModel(0.1, 1.2)
	s := filterIgnoringSolver{
		Solver: honestSolver(t, m),
		bad:    spatial.JointConfiguration{0.2, 0.2, -0.5, 0, 0, 0},
	}
	v := newTestValidator(t, s, m, 7)

	outcome := v.RunTrial(VariantSearchFiltered, 0)
	assert.True(t, outcome.Succeeded)

	kinds := make(map[InconsistencyKind]bool)
	for _, inc := range outcome.Inconsistencies {
		kinds[inc.Kind] = true
	}
	assert.True(t, kinds[InconsistencyFilterViolation], "want a filter violation, got %v", kinds)
	assert.True(t, kinds[InconsistencyRoundTrip], "want a round trip mismatch, got %v", kinds)
}

func TestAboveGroundFilter(t *testing.T) {
	m := testGantryModel(-1, 1)
	s := honestSolver(t, m)
	filter := AboveGroundFilter(s)

	target := spatial.Pose{Orientation: spatial.IdentityQuaternion()}

	assert.NoError(t, filter(target, spatial.JointConfiguration{0, 0, 0.5, 0, 0, 0}))

	err := filter(target, spatial.JointConfiguration{0, 0, 0, 0, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not above ground")

	err = filter(target, spatial.JointConfiguration{0, 0, -0.2, 0, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not above ground")
}

func TestAboveGroundFilterRejectsWhenFKFails(t *testing.T) {
	m := testGantryModel(-1, 1)
	s := brokenFKSolver{Solver: honestSolver(t, m)}
	filter := AboveGroundFilter(s)

	err := filter(spatial.Pose{}, spatial.JointConfiguration{0, 0, 0.5, 0, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter fk")
}
