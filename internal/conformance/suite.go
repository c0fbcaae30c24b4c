package conformance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/tverberg/ikconform/internal/robot"
	"github.com/tverberg/ikconform/internal/solver"
)

// Defaults applied by Suite.Run for zero-valued knobs.
const (
	DefaultTrials         = 100
	DefaultTimeout        = 5 * time.Second
	DefaultTolerance      = 1e-4
	DefaultMinSuccessRate = 0.99
)

// TrialStats accumulates one scenario's counters.
type TrialStats struct {
	// Attempted counts trials that reached the operation under test.
	Attempted int `json:"attempted"`

	// Succeeded counts attempted trials whose operations all succeeded.
	Succeeded int `json:"succeeded"`

	// InputFailures counts trials skipped before the operation under
	// test; they join neither side of the success rate.
	InputFailures int `json:"input_failures"`

	// Elapsed is the wall-clock duration of the batch.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// ScenarioReport is the outcome of one scenario batch.
type ScenarioReport struct {
	Name            Variant         `json:"name"`
	Stats           TrialStats      `json:"stats"`
	SuccessRate     float64         `json:"success_rate"`
	Accepted        bool            `json:"accepted"`
	Inconsistencies []Inconsistency `json:"inconsistencies,omitempty"`
}

// Report is the outcome of a full conformance run.
type Report struct {
	RunID      string           `json:"run_id"`
	Solver     string           `json:"solver"`
	Robot      string           `json:"robot"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Accepted   bool             `json:"accepted"`
	Scenarios  []ScenarioReport `json:"scenarios"`
}

// Recorder persists a finished report. The sqlite store satisfies this.
type Recorder interface {
	WriteReport(ctx context.Context, rep *Report) error
}

// Suite drives a full conformance run: metadata check first, then the
// configured scenario batches in declared order against a single solver
// instance.
type Suite struct {
	// SolverName is the registry name recorded in the report.
	SolverName string

	// Solver is the instance under test.
	Solver solver.Solver

	// Model and Group define the sampling space.
	Model *robot.Model
	Group string

	// Expected pins the metadata the solver must report.
	Expected Expected

	// Scenarios run in declared order. Empty means all variants.
	Scenarios []Variant

	// Trials per scenario. Zero means DefaultTrials.
	Trials int

	// Timeout per search query. Zero means DefaultTimeout.
	Timeout time.Duration

	// Tolerance for the round-trip check. Zero means DefaultTolerance.
	Tolerance float64

	// MinSuccessRate is the acceptance threshold: a scenario passes when
	// Succeeded > MinSuccessRate * Attempted, strictly. Zero means
	// DefaultMinSuccessRate.
	MinSuccessRate float64

	// Seed feeds the sampling rng; runs with equal seeds draw equal
	// configurations.
	Seed int64

	// Logger receives run progress. Nil means discard.
	Logger *slog.Logger

	// Recorder, when set, persists the finished report.
	Recorder Recorder

	// IDs generates the run identifier. Nil means UUIDv7.
	IDs RunIDGenerator

	// Now supplies the timestamps stamped into the report. Nil means
	// time.Now.
	Now func() time.Time
}

// Run executes the suite and returns its report.
//
// Execution flow:
//  1. Check solver metadata against expectations; mismatch aborts.
//  2. Bind the sampler, verifying joint ordering; mismatch aborts.
//  3. Run each scenario batch sequentially, tallying trial outcomes.
//  4. Persist the report through the Recorder, if configured.
//
// Solver calls know nothing of ctx; cancellation mid-batch is not
// supported by contract, so ctx reaches only the Recorder.
func (s *Suite) Run(ctx context.Context) (*Report, error) {
	s.applyDefaults()

	if err := CheckMetadata(s.Solver, s.Expected); err != nil {
		return nil, err
	}

	sampler, err := NewSampler(s.Model, s.Group, s.Solver, rand.New(rand.NewSource(s.Seed)))
	if err != nil {
		return nil, err
	}
	validator := NewValidator(s.Solver, sampler, s.Tolerance, s.Timeout, s.Logger)

	rep := &Report{
		RunID:     s.IDs.Generate(),
		Solver:    s.SolverName,
		Robot:     s.Model.Name,
		StartedAt: s.Now().UTC(),
		Accepted:  true,
	}
	s.Logger.Info("conformance run started",
		"run_id", rep.RunID,
		"solver", rep.Solver,
		"robot", rep.Robot,
		"scenarios", len(s.Scenarios),
		"trials", s.Trials,
	)

	for _, variant := range s.Scenarios {
		sr := s.runScenario(validator, variant)
		if !sr.Accepted {
			rep.Accepted = false
		}
		rep.Scenarios = append(rep.Scenarios, sr)
	}
	rep.FinishedAt = s.Now().UTC()

	if s.Recorder != nil {
		if err := s.Recorder.WriteReport(ctx, rep); err != nil {
			return rep, fmt.Errorf("recording report: %w", err)
		}
	}
	return rep, nil
}

func (s *Suite) applyDefaults() {
	if s.Trials == 0 {
		s.Trials = DefaultTrials
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Tolerance == 0 {
		s.Tolerance = DefaultTolerance
	}
	if s.MinSuccessRate == 0 {
		s.MinSuccessRate = DefaultMinSuccessRate
	}
	if len(s.Scenarios) == 0 {
		s.Scenarios = AllVariants()
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.IDs == nil {
		s.IDs = UUIDv7Generator{}
	}
	if s.Now == nil {
		s.Now = time.Now
	}
}

// runScenario executes one batch of trials and applies the acceptance
// rule: strictly more than MinSuccessRate of attempted trials succeeded,
// and not a single inconsistency.
func (s *Suite) runScenario(v *Validator, variant Variant) ScenarioReport {
	start := s.Now()
	var stats TrialStats
	var inconsistencies []Inconsistency

	for trial := 0; trial < s.Trials; trial++ {
		outcome := v.RunTrial(variant, trial)
		if outcome.Kind == FailureInput {
			stats.InputFailures++
			s.Logger.Debug("input generation skipped trial",
				"scenario", variant, "trial", trial, "reason", outcome.Err)
			continue
		}

		stats.Attempted++
		if outcome.Succeeded {
			stats.Succeeded++
		} else if outcome.Err != nil {
			s.Logger.Debug("trial failed",
				"scenario", variant, "trial", trial, "error", outcome.Err)
		}
		inconsistencies = append(inconsistencies, outcome.Inconsistencies...)
	}
	stats.Elapsed = s.Now().Sub(start)

	rate := 0.0
	if stats.Attempted > 0 {
		rate = float64(stats.Succeeded) / float64(stats.Attempted)
	}
	accepted := float64(stats.Succeeded) > s.MinSuccessRate*float64(stats.Attempted) &&
		len(inconsistencies) == 0

	s.Logger.Info("scenario complete",
		"scenario", variant,
		"attempted", stats.Attempted,
		"succeeded", stats.Succeeded,
		"input_failures", stats.InputFailures,
		"success_rate", rate,
		"inconsistencies", len(inconsistencies),
		"accepted", accepted,
		"elapsed", stats.Elapsed,
	)

	return ScenarioReport{
		Name:            variant,
		Stats:           stats,
		SuccessRate:     rate,
		Accepted:        accepted,
		Inconsistencies: inconsistencies,
	}
}
