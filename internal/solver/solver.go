package solver

import (
	"time"

	"github.com/tverberg/ikconform/internal/spatial"
)

// Solver is the pluggable kinematics capability surface. All poses are
// expressed in the solver's base frame; joint configurations follow the
// order of JointNames.
//
// Implementations are not assumed reentrant. The harness never calls a
// solver from more than one goroutine.
type Solver interface {
	// BaseFrame names the frame target and result poses are expressed in.
	BaseFrame() string

	// TipFrame names the chain's end-effector link.
	TipFrame() string

	// JointNames lists the joints the solver solves for, in the order
	// configurations are produced and consumed.
	JointNames() []string

	// GroupName names the joint group this instance was configured for.
	GroupName() string

	// ComputeFK returns the pose of each requested link for the given
	// configuration, in request order.
	ComputeFK(links []string, q spatial.JointConfiguration) ([]spatial.Pose, error)

	// ComputeIK resolves a configuration reaching target, starting from
	// seed. Single attempt, no internal retries.
	ComputeIK(target spatial.Pose, seed spatial.JointConfiguration) (spatial.JointConfiguration, error)

	// SearchIK resolves target with whatever iteration or perturbation
	// strategy the solver has, giving up after timeout.
	SearchIK(target spatial.Pose, seed spatial.JointConfiguration, timeout time.Duration) (spatial.JointConfiguration, error)

	// SearchIKWithFilter behaves like SearchIK but only returns candidates
	// the filter accepts.
	SearchIKWithFilter(target spatial.Pose, seed spatial.JointConfiguration, timeout time.Duration, accept SolutionFilter) (spatial.JointConfiguration, error)

	// ComputeIKMultiple enumerates solutions for the given targets. For a
	// single-tip chain, targets holds one pose and the result holds every
	// distinct configuration the solver can produce for it.
	ComputeIKMultiple(targets []spatial.Pose, opts QueryOptions) ([]spatial.JointConfiguration, error)
}

// SolutionFilter inspects a candidate configuration for target. Returning
// nil accepts the candidate; any error rejects it and the search moves on.
type SolutionFilter func(target spatial.Pose, candidate spatial.JointConfiguration) error

// QueryOptions tunes the multi-solution query.
type QueryOptions struct {
	// MaxSolutions caps how many solutions are returned. Zero means the
	// solver's own default.
	MaxSolutions int

	// ReturnApproximate permits solutions outside the solver's exactness
	// guarantee. Closed-form solvers ignore it.
	ReturnApproximate bool
}
