package conformance

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tverberg/ikconform/internal/robot"
	"github.com/tverberg/ikconform/internal/solver"
	"github.com/tverberg/ikconform/internal/spatial"
)

// ErrJointMismatch marks a fatal setup error: the model group and the
// solver disagree on joint count or ordering, so sampled configurations
// would be meaningless to the solver.
var ErrJointMismatch = errors.New("joint ordering mismatch between model group and solver")

// Sampler draws random configurations for one model group, bound to a
// solver whose joint ordering has been verified to match.
type Sampler struct {
	model *robot.Model
	group string
	rng   *rand.Rand
}

// NewSampler verifies at construction that the group's joint ordering
// equals the solver's, element for element, then binds the rng for
// deterministic sampling.
func NewSampler(model *robot.Model, group string, s solver.Solver, rng *rand.Rand) (*Sampler, error) {
	g, ok := model.Group(group)
	if !ok {
		return nil, fmt.Errorf("model %q has no group %q", model.Name, group)
	}

	names := s.JointNames()
	if len(names) != len(g.Joints) {
		return nil, fmt.Errorf("%w: model group has %d joints, solver reports %d",
			ErrJointMismatch, len(g.Joints), len(names))
	}
	for i := range names {
		if names[i] != g.Joints[i] {
			return nil, fmt.Errorf("%w: position %d: model %q, solver %q",
				ErrJointMismatch, i, g.Joints[i], names[i])
		}
	}

	return &Sampler{model: model, group: group, rng: rng}, nil
}

// Sample draws a configuration uniform within each joint's limits.
func (s *Sampler) Sample() (spatial.JointConfiguration, error) {
	return s.model.SampleGroup(s.group, s.rng)
}

// Zero returns a fresh all-zeros seed of the group's width.
func (s *Sampler) Zero() spatial.JointConfiguration {
	q, err := s.model.ZeroConfiguration(s.group)
	if err != nil {
		// Group existence was checked at construction.
		panic(err)
	}
	return q
}
