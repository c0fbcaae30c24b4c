// Package config loads and validates conformance suite files.
//
// A suite file is YAML checked twice: first against an embedded JSON
// schema for shape (required sections, field types, scenario names),
// then by strict decoding into Go types, which rejects unknown fields
// and parses durations.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tverberg/ikconform/internal/conformance"
	"github.com/tverberg/ikconform/internal/solver"
)

// Duration wraps time.Duration so suite files can write "5s" or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration: %w", err)
	}
	*d = Duration(parsed)
	return nil
}

// Meta identifies the suite.
type Meta struct {
	// Name uniquely identifies this suite in reports and the run store.
	Name string `yaml:"name"`

	// Seed feeds configuration sampling. Equal seeds reproduce runs.
	Seed int64 `yaml:"seed,omitempty"`
}

// Robot points at the robot description under test.
type Robot struct {
	// Description is the path to the CUE robot description. Relative
	// paths resolve against the suite file location.
	Description string `yaml:"description"`

	// Group names the joint group to exercise.
	Group string `yaml:"group"`
}

// Solver selects and parameterizes the plugin under test.
type Solver struct {
	// Plugin is the registered solver name.
	Plugin string `yaml:"plugin"`

	// BaseFrame and TipFrame override the group's links when set.
	BaseFrame string `yaml:"base_frame,omitempty"`
	TipFrame  string `yaml:"tip_frame,omitempty"`

	// SearchDiscretization is passed to the plugin factory.
	SearchDiscretization float64 `yaml:"search_discretization,omitempty"`
}

// Trials configures the per-scenario batches.
type Trials struct {
	// Count is the number of trials per scenario.
	Count int `yaml:"count,omitempty"`

	// Timeout bounds each search query.
	Timeout Duration `yaml:"timeout,omitempty"`

	// MinSuccessRate is the acceptance threshold.
	MinSuccessRate float64 `yaml:"min_success_rate,omitempty"`

	// Tolerance bounds the round-trip pose comparison.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Suite is a parsed conformance suite file.
type Suite struct {
	Meta     Meta                 `yaml:"suite"`
	Robot    Robot                `yaml:"robot"`
	Solver   Solver               `yaml:"solver"`
	Expected conformance.Expected `yaml:"expected"`
	Trials   Trials               `yaml:"trials,omitempty"`

	// Scenarios lists the variants to run, in order. Empty means all.
	Scenarios []string `yaml:"scenarios,omitempty"`
}

// Load reads, validates and defaults a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}

	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var suite Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&suite); err != nil {
		return nil, fmt.Errorf("parsing suite file: %w", err)
	}

	suite.applyDefaults()

	if !filepath.IsAbs(suite.Robot.Description) {
		suite.Robot.Description = filepath.Join(filepath.Dir(path), suite.Robot.Description)
	}
	if err := suite.validate(); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}
	return &suite, nil
}

// Variants returns the scenario list as typed variants.
func (s *Suite) Variants() ([]conformance.Variant, error) {
	out := make([]conformance.Variant, len(s.Scenarios))
	for i, name := range s.Scenarios {
		v, err := conformance.ParseVariant(name)
		if err != nil {
			return nil, fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (s *Suite) applyDefaults() {
	if s.Trials.Count == 0 {
		s.Trials.Count = conformance.DefaultTrials
	}
	if s.Trials.Timeout == 0 {
		s.Trials.Timeout = Duration(conformance.DefaultTimeout)
	}
	if s.Trials.MinSuccessRate == 0 {
		s.Trials.MinSuccessRate = conformance.DefaultMinSuccessRate
	}
	if s.Trials.Tolerance == 0 {
		s.Trials.Tolerance = conformance.DefaultTolerance
	}
	if s.Solver.SearchDiscretization == 0 {
		s.Solver.SearchDiscretization = solver.DefaultSearchDiscretization
	}
	if len(s.Scenarios) == 0 {
		for _, v := range conformance.AllVariants() {
			s.Scenarios = append(s.Scenarios, string(v))
		}
	}
}

// validate covers what the schema cannot express.
func (s *Suite) validate() error {
	if _, err := os.Stat(s.Robot.Description); os.IsNotExist(err) {
		return fmt.Errorf("robot description not found: %s", s.Robot.Description)
	}
	if _, err := s.Variants(); err != nil {
		return err
	}
	return nil
}
