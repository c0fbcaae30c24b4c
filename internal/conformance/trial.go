package conformance

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tverberg/ikconform/internal/solver"
	"github.com/tverberg/ikconform/internal/spatial"
)

// FailureKind classifies a trial that did not succeed.
type FailureKind string

const (
	// FailureNone means the trial's solver operations all succeeded.
	FailureNone FailureKind = ""

	// FailureInput marks trials whose inputs could not be generated:
	// forward kinematics failed on the sampled configuration, or the
	// sampled pose is out of scope for the scenario. These trials join
	// neither side of the success rate.
	FailureInput FailureKind = "input_generation"

	// FailureSolve marks tallied solver failures: the inverse query (or,
	// for the fk scenario, the forward query) returned an error.
	FailureSolve FailureKind = "solve"
)

// InconsistencyKind classifies a solver success claim that did not verify.
type InconsistencyKind string

const (
	// InconsistencyRoundTrip means the recovered configuration does not
	// reach the target within tolerance.
	InconsistencyRoundTrip InconsistencyKind = "roundtrip_mismatch"

	// InconsistencyEmptySolutions means a multi-solution query reported
	// success with an empty solution set.
	InconsistencyEmptySolutions InconsistencyKind = "empty_solution_set"

	// InconsistencyFilterViolation means a filtered search accepted a
	// solution the filter rejects.
	InconsistencyFilterViolation InconsistencyKind = "filter_violation"

	// InconsistencyUnverifiable means the solver's forward kinematics
	// refused the solution it just returned, so the claim cannot be
	// checked.
	InconsistencyUnverifiable InconsistencyKind = "unverifiable_solution"
)

// Inconsistency records a solver success signal the validator could not
// confirm. Inconsistencies are never absorbed into the failure tally: any
// occurrence rejects the scenario outright, because a solver whose success
// claims are wrong is worse than one that fails honestly.
type Inconsistency struct {
	Trial     int               `json:"trial"`
	Scenario  Variant           `json:"scenario"`
	Kind      InconsistencyKind `json:"kind"`
	Solution  int               `json:"solution"`
	Detail    string            `json:"detail"`
	Target    *spatial.Pose     `json:"target,omitempty"`
	Recovered *spatial.Pose     `json:"recovered,omitempty"`
}

// singleSolution marks inconsistencies from queries that return one
// configuration rather than an indexed set.
const singleSolution = -1

// TrialOutcome is the result of one trial. Succeeded mirrors the solver's
// claim and feeds the success tally; Inconsistencies carry whatever the
// validator could not confirm about that claim.
type TrialOutcome struct {
	Succeeded       bool
	Kind            FailureKind
	Err             error
	Inconsistencies []Inconsistency
}

// Validator executes individual trials against one solver.
type Validator struct {
	solver    solver.Solver
	sampler   *Sampler
	tolerance float64
	timeout   time.Duration
	logger    *slog.Logger
}

// NewValidator binds a solver and sampler to the trial parameters.
func NewValidator(s solver.Solver, sampler *Sampler, tolerance float64, timeout time.Duration, logger *slog.Logger) *Validator {
	return &Validator{solver: s, sampler: sampler, tolerance: tolerance, timeout: timeout, logger: logger}
}

// AboveGroundFilter builds the production acceptance filter: a candidate
// passes iff the solver's own forward kinematics puts its tip strictly
// above the z = 0 plane. A forward kinematics failure rejects the
// candidate.
func AboveGroundFilter(s solver.Solver) solver.SolutionFilter {
	links := []string{s.TipFrame()}
	return func(_ spatial.Pose, candidate spatial.JointConfiguration) error {
		poses, err := s.ComputeFK(links, candidate)
		if err != nil {
			return fmt.Errorf("filter fk: %w", err)
		}
		if len(poses) != 1 {
			return fmt.Errorf("filter fk returned %d poses, want 1", len(poses))
		}
		if poses[0].Position.Z <= 0 {
			return fmt.Errorf("tip z %.6f not above ground", poses[0].Position.Z)
		}
		return nil
	}
}

// RunTrial executes one trial of the given scenario.
//
// Trial flow:
//  1. Sample a random configuration q.
//  2. Compute the target pose via forward kinematics of q. For the fk
//     scenario this is the operation under test; for the others a failure
//     here is an input-generation failure.
//  3. Run the scenario's inverse query.
//  4. Verify the claimed solution by forward kinematics against the
//     target, within tolerance on all seven components.
func (v *Validator) RunTrial(variant Variant, trial int) TrialOutcome {
	q, err := v.sampler.Sample()
	if err != nil {
		return TrialOutcome{Kind: FailureInput, Err: err}
	}

	links := []string{v.solver.TipFrame()}
	poses, err := v.solver.ComputeFK(links, q)
	if variant == VariantFK {
		if err != nil {
			return TrialOutcome{Kind: FailureSolve, Err: err}
		}
		if len(poses) != 1 {
			return TrialOutcome{Kind: FailureSolve,
				Err: fmt.Errorf("fk returned %d poses, want 1", len(poses))}
		}
		return TrialOutcome{Succeeded: true}
	}
	if err != nil {
		return TrialOutcome{Kind: FailureInput, Err: fmt.Errorf("generating target pose: %w", err)}
	}
	if len(poses) != 1 {
		return TrialOutcome{Kind: FailureInput,
			Err: fmt.Errorf("generating target pose: fk returned %d poses, want 1", len(poses))}
	}
	target := poses[0]

	switch variant {
	case VariantIK:
		sol, err := v.solver.ComputeIK(target, q.Clone())
		if err != nil {
			return TrialOutcome{Kind: FailureSolve, Err: err}
		}
		return v.verify(variant, trial, target, sol, singleSolution, TrialOutcome{Succeeded: true})

	case VariantSearch:
		found, err := v.solver.SearchIK(target, v.sampler.Zero(), v.timeout)
		if err != nil {
			return TrialOutcome{Kind: FailureSolve, Err: err}
		}
		// The searched solution must also resolve as a single-shot seed;
		// the round trip is checked on the re-resolved configuration.
		sol, err := v.solver.ComputeIK(target, found)
		if err != nil {
			return TrialOutcome{Kind: FailureSolve,
				Err: fmt.Errorf("re-resolving searched solution: %w", err)}
		}
		return v.verify(variant, trial, target, sol, singleSolution, TrialOutcome{Succeeded: true})

	case VariantSearchFiltered:
		if target.Position.Z <= 0 {
			return TrialOutcome{Kind: FailureInput,
				Err: fmt.Errorf("target tip z %.6f not above ground", target.Position.Z)}
		}
		filter := AboveGroundFilter(v.solver)
		found, err := v.solver.SearchIKWithFilter(target, q.Clone(), v.timeout, filter)
		if err != nil {
			return TrialOutcome{Kind: FailureSolve, Err: err}
		}
		sol, err := v.solver.ComputeIK(target, found)
		if err != nil {
			return TrialOutcome{Kind: FailureSolve,
				Err: fmt.Errorf("re-resolving searched solution: %w", err)}
		}
		outcome := v.verify(variant, trial, target, sol, singleSolution, TrialOutcome{Succeeded: true})
		// The accepted solution must itself satisfy the filter.
		if ferr := filter(target, sol); ferr != nil {
			outcome.Inconsistencies = append(outcome.Inconsistencies, Inconsistency{
				Trial:    trial,
				Scenario: variant,
				Kind:     InconsistencyFilterViolation,
				Solution: singleSolution,
				Detail:   ferr.Error(),
				Target:   &target,
			})
		}
		return outcome

	case VariantMultiple:
		solutions, err := v.solver.ComputeIKMultiple([]spatial.Pose{target}, solver.QueryOptions{})
		if err != nil {
			return TrialOutcome{Kind: FailureSolve, Err: err}
		}
		if len(solutions) == 0 {
			return TrialOutcome{Inconsistencies: []Inconsistency{{
				Trial:    trial,
				Scenario: variant,
				Kind:     InconsistencyEmptySolutions,
				Solution: singleSolution,
				Detail:   "query reported success with no solutions",
				Target:   &target,
			}}}
		}
		outcome := TrialOutcome{Succeeded: true}
		for i, sol := range solutions {
			outcome = v.verify(variant, trial, target, sol, i, outcome)
		}
		return outcome

	default:
		return TrialOutcome{Kind: FailureSolve, Err: fmt.Errorf("unknown scenario %q", variant)}
	}
}

// verify forward-solves the claimed solution and appends an inconsistency
// to outcome when the claim does not hold.
func (v *Validator) verify(variant Variant, trial int, target spatial.Pose, sol spatial.JointConfiguration, solution int, outcome TrialOutcome) TrialOutcome {
	links := []string{v.solver.TipFrame()}
	poses, err := v.solver.ComputeFK(links, sol)
	if err != nil || len(poses) != 1 {
		detail := "fk returned no pose for claimed solution"
		if err != nil {
			detail = err.Error()
		}
		outcome.Inconsistencies = append(outcome.Inconsistencies, Inconsistency{
			Trial:    trial,
			Scenario: variant,
			Kind:     InconsistencyUnverifiable,
			Solution: solution,
			Detail:   detail,
			Target:   &target,
		})
		return outcome
	}

	recovered := poses[0]
	if !target.ApproxEqual(recovered, v.tolerance) {
		v.logger.Debug("round trip mismatch",
			"scenario", variant,
			"trial", trial,
			"target", target.String(),
			"recovered", recovered.String(),
		)
		outcome.Inconsistencies = append(outcome.Inconsistencies, Inconsistency{
			Trial:     trial,
			Scenario:  variant,
			Kind:      InconsistencyRoundTrip,
			Solution:  solution,
			Detail:    fmt.Sprintf("recovered pose outside tolerance %g", v.tolerance),
			Target:    &target,
			Recovered: &recovered,
		})
	}
	return outcome
}
