// Package gantry implements the built-in reference solver: three prismatic
// rails along x, y, z followed by a three-axis wrist applying intrinsic
// Z-Y-X rotations (yaw, pitch, roll). Both directions are closed form, so
// the solver is exact: position maps one-to-one onto the rails and
// orientation onto the wrist, with the dual Euler decomposition providing a
// second solution branch for multi-solution queries.
package gantry

import (
	"fmt"
	"math"
	"time"

	"github.com/tverberg/ikconform/internal/robot"
	"github.com/tverberg/ikconform/internal/solver"
	"github.com/tverberg/ikconform/internal/spatial"
)

// PluginName is the registry name of the reference solver.
const PluginName = "gantry6"

func init() {
	solver.Register(PluginName, New)
}

// Solver solves the 6-DOF gantry chain. Joint order is the group order:
// x, y, z rails then yaw, pitch, roll wrist joints.
type Solver struct {
	group     robot.Group
	joints    []robot.Joint
	baseFrame string
	tipFrame  string
}

// New constructs the reference solver for the configured group. The group
// must have exactly six joints: three prismatic followed by three revolute.
func New(p solver.Params) (solver.Solver, error) {
	if p.Model == nil {
		return nil, solver.NewLoadError(PluginName, "robot model is required")
	}
	g, ok := p.Model.Group(p.Group)
	if !ok {
		return nil, solver.NewLoadError(PluginName,
			fmt.Sprintf("model %q has no group %q", p.Model.Name, p.Group))
	}
	if len(g.Joints) != 6 {
		return nil, solver.NewLoadError(PluginName,
			fmt.Sprintf("group %q has %d joints, want 6", g.Name, len(g.Joints)))
	}

	joints := make([]robot.Joint, len(g.Joints))
	for i, name := range g.Joints {
		j, ok := p.Model.Joint(name)
		if !ok {
			return nil, solver.NewLoadError(PluginName,
				fmt.Sprintf("group %q references unknown joint %q", g.Name, name))
		}
		joints[i] = j
	}
	for i := 0; i < 3; i++ {
		if joints[i].Type != robot.Prismatic {
			return nil, solver.NewLoadError(PluginName,
				fmt.Sprintf("joint %q must be prismatic", joints[i].Name))
		}
	}
	for i := 3; i < 6; i++ {
		if joints[i].Type != robot.Revolute {
			return nil, solver.NewLoadError(PluginName,
				fmt.Sprintf("joint %q must be revolute", joints[i].Name))
		}
	}

	base := p.BaseFrame
	if base == "" {
		base = g.BaseLink
	}
	tip := p.TipFrame
	if tip == "" {
		tip = g.TipLink
	}

	return &Solver{group: g, joints: joints, baseFrame: base, tipFrame: tip}, nil
}

// BaseFrame implements solver.Solver.
func (s *Solver) BaseFrame() string { return s.baseFrame }

// TipFrame implements solver.Solver.
func (s *Solver) TipFrame() string { return s.tipFrame }

// GroupName implements solver.Solver.
func (s *Solver) GroupName() string { return s.group.Name }

// JointNames implements solver.Solver.
func (s *Solver) JointNames() []string {
	names := make([]string, len(s.joints))
	for i, j := range s.joints {
		names[i] = j.Name
	}
	return names
}

// ComputeFK implements solver.Solver. Only the base and tip frames are
// resolvable; the gantry has no published intermediate link transforms.
func (s *Solver) ComputeFK(links []string, q spatial.JointConfiguration) ([]spatial.Pose, error) {
	if len(q) != len(s.joints) {
		return nil, solver.NewInvalidInputError(PluginName,
			fmt.Sprintf("configuration has %d joints, want %d", len(q), len(s.joints)))
	}

	poses := make([]spatial.Pose, len(links))
	for i, link := range links {
		switch link {
		case s.tipFrame:
			poses[i] = s.tipPose(q)
		case s.baseFrame:
			poses[i] = spatial.Pose{Orientation: spatial.IdentityQuaternion()}
		default:
			return nil, solver.NewInvalidInputError(PluginName,
				fmt.Sprintf("unknown link %q", link))
		}
	}
	return poses, nil
}

// ComputeIK implements solver.Solver. Single shot: enumerate the solution
// branches and return the one nearest the seed in joint space.
func (s *Solver) ComputeIK(target spatial.Pose, seed spatial.JointConfiguration) (spatial.JointConfiguration, error) {
	if len(seed) != len(s.joints) {
		return nil, solver.NewInvalidInputError(PluginName,
			fmt.Sprintf("seed has %d joints, want %d", len(seed), len(s.joints)))
	}
	solutions := s.solutions(target)
	if len(solutions) == 0 {
		return nil, solver.NewNoSolutionError(PluginName, "target outside joint limits")
	}
	return nearest(solutions, seed), nil
}

// SearchIK implements solver.Solver. The solve is closed form, so the
// budget only matters when it is already spent on entry.
func (s *Solver) SearchIK(target spatial.Pose, seed spatial.JointConfiguration, timeout time.Duration) (spatial.JointConfiguration, error) {
	if timeout <= 0 {
		return nil, solver.NewTimedOutError(PluginName, timeout)
	}
	return s.ComputeIK(target, seed)
}

// SearchIKWithFilter implements solver.Solver. Candidates are offered to
// the filter in seed-nearest order; the first accepted one wins.
func (s *Solver) SearchIKWithFilter(target spatial.Pose, seed spatial.JointConfiguration, timeout time.Duration, accept solver.SolutionFilter) (spatial.JointConfiguration, error) {
	if accept == nil {
		return s.SearchIK(target, seed, timeout)
	}
	if timeout <= 0 {
		return nil, solver.NewTimedOutError(PluginName, timeout)
	}
	if len(seed) != len(s.joints) {
		return nil, solver.NewInvalidInputError(PluginName,
			fmt.Sprintf("seed has %d joints, want %d", len(seed), len(s.joints)))
	}

	solutions := s.solutions(target)
	if len(solutions) == 0 {
		return nil, solver.NewNoSolutionError(PluginName, "target outside joint limits")
	}
	orderBySeedDistance(solutions, seed)
	for _, candidate := range solutions {
		if err := accept(target, candidate); err == nil {
			return candidate, nil
		}
	}
	return nil, solver.NewNoSolutionError(PluginName, "no candidate accepted by filter")
}

// ComputeIKMultiple implements solver.Solver. The gantry chain has a
// single tip, so exactly one target is expected; the result enumerates
// every branch within limits.
func (s *Solver) ComputeIKMultiple(targets []spatial.Pose, opts solver.QueryOptions) ([]spatial.JointConfiguration, error) {
	if len(targets) != 1 {
		return nil, solver.NewInvalidInputError(PluginName,
			fmt.Sprintf("got %d targets, want exactly 1", len(targets)))
	}
	solutions := s.solutions(targets[0])
	if len(solutions) == 0 {
		return nil, solver.NewNoSolutionError(PluginName, "target outside joint limits")
	}
	if opts.MaxSolutions > 0 && len(solutions) > opts.MaxSolutions {
		solutions = solutions[:opts.MaxSolutions]
	}
	return solutions, nil
}

// tipPose computes the forward kinematics of the tip frame.
func (s *Solver) tipPose(q spatial.JointConfiguration) spatial.Pose {
	return spatial.Pose{
		Position:    spatial.Vec3{X: q[0], Y: q[1], Z: q[2]},
		Orientation: spatial.QuaternionFromEulerZYX(q[3], q[4], q[5]),
	}
}

// solutions enumerates the configurations reaching target that lie within
// joint limits: the principal Euler branch and its dual (yaw+pi, pi-pitch,
// roll+pi). At the wrist singularity the branches are distinct in joint
// space but describe the same rotation, so both remain valid.
func (s *Solver) solutions(target spatial.Pose) []spatial.JointConfiguration {
	pos := target.Position
	yaw, pitch, roll := target.Orientation.Normalize().Canonical().EulerZYX()

	branches := [][3]float64{
		{yaw, pitch, roll},
		{wrapAngle(yaw + math.Pi), wrapAngle(math.Pi - pitch), wrapAngle(roll + math.Pi)},
	}

	var out []spatial.JointConfiguration
	for _, b := range branches {
		q := spatial.JointConfiguration{pos.X, pos.Y, pos.Z, b[0], b[1], b[2]}
		if s.withinLimits(q) {
			out = append(out, q)
		}
	}
	return out
}

func (s *Solver) withinLimits(q spatial.JointConfiguration) bool {
	const slack = 1e-9
	for i, v := range q {
		l := s.joints[i].Limit
		if v < l.Min-slack || v > l.Max+slack {
			return false
		}
	}
	return true
}

// wrapAngle maps a to the interval (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// nearest returns the solution with minimal squared joint-space distance
// to seed.
func nearest(solutions []spatial.JointConfiguration, seed spatial.JointConfiguration) spatial.JointConfiguration {
	best := solutions[0]
	bestDist := seedDistance(best, seed)
	for _, sol := range solutions[1:] {
		if d := seedDistance(sol, seed); d < bestDist {
			best, bestDist = sol, d
		}
	}
	return best
}

// orderBySeedDistance sorts solutions in place, nearest to seed first.
// Two branches at most, so a comparison swap suffices.
func orderBySeedDistance(solutions []spatial.JointConfiguration, seed spatial.JointConfiguration) {
	if len(solutions) == 2 && seedDistance(solutions[1], seed) < seedDistance(solutions[0], seed) {
		solutions[0], solutions[1] = solutions[1], solutions[0]
	}
}

func seedDistance(q, seed spatial.JointConfiguration) float64 {
	var sum float64
	for i := range q {
		d := q[i] - seed[i]
		sum += d * d
	}
	return sum
}
