package conformance

import (
	"fmt"

	"github.com/tverberg/ikconform/internal/solver"
)

// Expected pins the identity a solver must report before any trial runs.
type Expected struct {
	BaseFrame  string   `json:"base_frame" yaml:"base_frame"`
	TipFrame   string   `json:"tip_frame" yaml:"tip_frame"`
	Group      string   `json:"group" yaml:"group"`
	JointNames []string `json:"joint_names" yaml:"joint_names"`
}

// MetadataError reports a mismatch between expected and reported solver
// metadata. Any mismatch is fatal: trials against a solver that
// misidentifies its chain would validate the wrong thing.
type MetadataError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("solver metadata mismatch: %s: expected %q, got %q",
		e.Field, e.Expected, e.Actual)
}

// CheckMetadata compares the solver's reported identity against want.
// Frames and group compare exactly; joint names compare by length and
// element-wise order.
func CheckMetadata(s solver.Solver, want Expected) error {
	if got := s.BaseFrame(); got != want.BaseFrame {
		return &MetadataError{Field: "base_frame", Expected: want.BaseFrame, Actual: got}
	}
	if got := s.TipFrame(); got != want.TipFrame {
		return &MetadataError{Field: "tip_frame", Expected: want.TipFrame, Actual: got}
	}
	if got := s.GroupName(); got != want.Group {
		return &MetadataError{Field: "group", Expected: want.Group, Actual: got}
	}

	names := s.JointNames()
	if len(names) != len(want.JointNames) {
		return &MetadataError{
			Field:    "joint_names",
			Expected: fmt.Sprintf("%d joints", len(want.JointNames)),
			Actual:   fmt.Sprintf("%d joints", len(names)),
		}
	}
	for i := range names {
		if names[i] != want.JointNames[i] {
			return &MetadataError{
				Field:    fmt.Sprintf("joint_names[%d]", i),
				Expected: want.JointNames[i],
				Actual:   names[i],
			}
		}
	}
	return nil
}
