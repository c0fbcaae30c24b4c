package conformance

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tverberg/ikconform/internal/robot"
	"github.com/tverberg/ikconform/internal/solver"
	"github.com/tverberg/ikconform/internal/solver/gantry"
	"github.com/tverberg/ikconform/internal/spatial"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestValidator(t *testing.T, s solver.Solver, m *robot.Model, seed int64) *Validator {
	t.Helper()
	sampler, err := NewSampler(m, "arm", s, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return NewValidator(s, sampler, DefaultTolerance, DefaultTimeout, discardLogger())
}

// testGantryModel builds the reference chain with a configurable z rail,
// so tests can steer how often sampled poses land above the ground plane.
func testGantryModel(zMin, zMax float64) *robot.Model {
	return &robot.Model{
		Name:  "gantry6",
		Links: []string{"base_link", "tool0"},
		Joints: []robot.Joint{
			{Name: "x_slide", Type: robot.Prismatic, Limit: robot.Limit{Min: -1, Max: 1}},
			{Name: "y_slide", Type: robot.Prismatic, Limit: robot.Limit{Min: -1, Max: 1}},
			{Name: "z_lift", Type: robot.Prismatic, Limit: robot.Limit{Min: zMin, Max: zMax}},
			{Name: "wrist_yaw", Type: robot.Revolute, Limit: robot.Limit{Min: -3.1416, Max: 3.1416}},
			{Name: "wrist_pitch", Type: robot.Revolute, Limit: robot.Limit{Min: -3.1416, Max: 3.1416}},
			{Name: "wrist_roll", Type: robot.Revolute, Limit: robot.Limit{Min: -3.1416, Max: 3.1416}},
		},
		Groups: map[string]robot.Group{
			"arm": {
				Name:     "arm",
				BaseLink: "base_link",
				TipLink:  "tool0",
				Joints:   []string{"x_slide", "y_slide", "z_lift", "wrist_yaw", "wrist_pitch", "wrist_roll"},
			},
		},
	}
}

func gantryJointNames() []string {
	return []string{"x_slide", "y_slide", "z_lift", "wrist_yaw", "wrist_pitch", "wrist_roll"}
}

func gantryExpected() Expected {
	return Expected{
		BaseFrame:  "base_link",
		TipFrame:   "tool0",
		Group:      "arm",
		JointNames: gantryJointNames(),
	}
}

// honestSolver is the conformant reference implementation.
func honestSolver(t *testing.T, m *robot.Model) solver.Solver {
	t.Helper()
	s, err := gantry.New(solver.Params{Model: m, Group: "arm"})
	require.NoError(t, err)
	return s
}

// metaSolver overrides the reported identity of an otherwise honest
// solver.
type metaSolver struct {
	solver.Solver
	base, tip, group string
	joints           []string
}

func (m metaSolver) BaseFrame() string    { return m.base }
func (m metaSolver) TipFrame() string     { return m.tip }
func (m metaSolver) GroupName() string    { return m.group }
func (m metaSolver) JointNames() []string { return m.joints }

func honestMeta(t *testing.T, m *robot.Model) metaSolver {
	return metaSolver{
		Solver: honestSolver(t, m),
		base:   "base_link",
		tip:    "tool0",
		group:  "arm",
		joints: gantryJointNames(),
	}
}

// failingSolver answers every inverse query with NO_SOLUTION while its
// forward kinematics keep working, so target generation succeeds and the
// failures land in the tally.
type failingSolver struct {
	solver.Solver
}

func (failingSolver) ComputeIK(spatial.Pose, spatial.JointConfiguration) (spatial.JointConfiguration, error) {
	return nil, solver.NewNoSolutionError("failing", "refuses every target")
}

func (failingSolver) SearchIK(spatial.Pose, spatial.JointConfiguration, time.Duration) (spatial.JointConfiguration, error) {
	return nil, solver.NewNoSolutionError("failing", "refuses every target")
}

func (failingSolver) SearchIKWithFilter(spatial.Pose, spatial.JointConfiguration, time.Duration, solver.SolutionFilter) (spatial.JointConfiguration, error) {
	return nil, solver.NewNoSolutionError("failing", "refuses every target")
}

func (failingSolver) ComputeIKMultiple([]spatial.Pose, solver.QueryOptions) ([]spatial.JointConfiguration, error) {
	return nil, solver.NewNoSolutionError("failing", "refuses every target")
}

// driftSolver claims IK success but hands back a configuration displaced
// along the x rail, so the claim never survives the round trip.
type driftSolver struct {
	solver.Solver
}

func (d driftSolver) ComputeIK(target spatial.Pose, seed spatial.JointConfiguration) (spatial.JointConfiguration, error) {
	sol, err := d.Solver.ComputeIK(target, seed)
	if err != nil {
		return nil, err
	}
	drifted := sol.Clone()
	drifted[0] += 0.01
	return drifted, nil
}

// emptyMultiSolver reports success with no solutions.
type emptyMultiSolver struct {
	solver.Solver
}

func (emptyMultiSolver) ComputeIKMultiple([]spatial.Pose, solver.QueryOptions) ([]spatial.JointConfiguration, error) {
	return []spatial.JointConfiguration{}, nil
}

// filterIgnoringSolver accepts a below-ground configuration no filter
// would pass, from both the filtered search and the re-resolve.
type filterIgnoringSolver struct {
	solver.Solver
	bad spatial.JointConfiguration
}

func (f filterIgnoringSolver) SearchIKWithFilter(spatial.Pose, spatial.JointConfiguration, time.Duration, solver.SolutionFilter) (spatial.JointConfiguration, error) {
	return f.bad.Clone(), nil
}

func (f filterIgnoringSolver) ComputeIK(spatial.Pose, spatial.JointConfiguration) (spatial.JointConfiguration, error) {
	return f.bad.Clone(), nil
}

// noReresolveSolver finds solutions by search but refuses the single-shot
// follow-up.
type noReresolveSolver struct {
	solver.Solver
}

func (noReresolveSolver) ComputeIK(spatial.Pose, spatial.JointConfiguration) (spatial.JointConfiguration, error) {
	return nil, solver.NewFailedError("noreresolve", "single-shot disabled")
}

// brokenFKSolver fails every forward query, so no scenario can even
// generate its target.
type brokenFKSolver struct {
	solver.Solver
}

func (brokenFKSolver) ComputeFK([]string, spatial.JointConfiguration) ([]spatial.Pose, error) {
	return nil, solver.NewFailedError("brokenfk", "fk unavailable")
}

// unverifiableSolver serves the target-generation forward query, then
// refuses every later one, so claimed solutions cannot be checked.
type unverifiableSolver struct {
	solver.Solver
	fkCalls int
}

func (u *unverifiableSolver) ComputeFK(links []string, q spatial.JointConfiguration) ([]spatial.Pose, error) {
	u.fkCalls++
	if u.fkCalls > 1 {
		return nil, solver.NewFailedError("unverifiable", "fk unavailable")
	}
	return u.Solver.ComputeFK(links, q)
}

// recordingSolver captures every solution the filtered search accepts.
type recordingSolver struct {
	solver.Solver
	accepted []spatial.JointConfiguration
}

func (r *recordingSolver) SearchIKWithFilter(target spatial.Pose, seed spatial.JointConfiguration, timeout time.Duration, accept solver.SolutionFilter) (spatial.JointConfiguration, error) {
	sol, err := r.Solver.SearchIKWithFilter(target, seed, timeout, accept)
	if err == nil {
		r.accepted = append(r.accepted, sol.Clone())
	}
	return sol, err
}
