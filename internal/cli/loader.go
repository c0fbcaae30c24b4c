package cli

import (
	"fmt"
	"os"

	"github.com/tverberg/ikconform/internal/config"
	"github.com/tverberg/ikconform/internal/conformance"
	"github.com/tverberg/ikconform/internal/robot"
	"github.com/tverberg/ikconform/internal/solver"
)

// SuiteBundle is everything a conformance run needs, assembled from one
// suite file.
type SuiteBundle struct {
	Config   *config.Suite
	Model    *robot.Model
	Variants []conformance.Variant
	Solver   solver.Solver
}

// LoadError represents a setup failure with the error code reported to the
// user.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSuiteConfig loads and validates the suite file alone. The scenario
// list comes back parsed into variants.
func LoadSuiteConfig(path string) (*config.Suite, []conformance.Variant, *LoadError) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("suite file not found: %s", path)}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeSuiteInvalid, Message: err.Error()}
	}

	variants, err := cfg.Variants()
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeSuiteInvalid, Message: err.Error()}
	}

	return cfg, variants, nil
}

// CompileRobot compiles the robot description the suite points at.
func CompileRobot(cfg *config.Suite) (*robot.Model, *LoadError) {
	model, err := robot.Load(cfg.Robot.Description)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRobotCompile, Message: err.Error()}
	}
	return model, nil
}

// LoadSuite assembles a full run: suite file, compiled robot, and the
// solver plugin instantiated against that robot.
func LoadSuite(path string) (*SuiteBundle, *LoadError) {
	cfg, variants, loadErr := LoadSuiteConfig(path)
	if loadErr != nil {
		return nil, loadErr
	}

	model, loadErr := CompileRobot(cfg)
	if loadErr != nil {
		return nil, loadErr
	}

	s, err := solver.Create(cfg.Solver.Plugin, solver.Params{
		Model:                model,
		Group:                cfg.Robot.Group,
		BaseFrame:            cfg.Solver.BaseFrame,
		TipFrame:             cfg.Solver.TipFrame,
		SearchDiscretization: cfg.Solver.SearchDiscretization,
	})
	if err != nil {
		return nil, &LoadError{Code: ErrCodeSolverInit, Message: err.Error()}
	}

	return &SuiteBundle{
		Config:   cfg,
		Model:    model,
		Variants: variants,
		Solver:   s,
	}, nil
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeSuiteInvalid = "E002" // Suite file failed schema or semantic checks
	ErrCodeRobotCompile = "E003" // Robot description failed to compile
	ErrCodeSolverInit   = "E004" // Solver plugin unknown or failed to construct
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeRunAborted   = "E006" // Conformance run aborted before any verdict
	ErrCodeStoreFailed  = "E007" // Result database error
	ErrCodeWriteFailed  = "E008" // File write error
	ErrCodeRunNotFound  = "E009" // Run id absent from the result database
)
