package solver

import (
	"errors"
	"fmt"
	"time"
)

// Error represents a failure reported by a solver operation or by plugin
// construction.
//
// Solver errors include:
//   - No solution: the target is unreachable or outside joint limits
//   - Timed out: the search budget expired before a solution was found
//   - Failed: the solver gave up for an internal reason
//   - Invalid input: malformed seed, target, or link request
//   - Unsupported: the operation is not implemented by this plugin
//   - Load failed: the registry could not construct the plugin
//
// Error includes structured fields for diagnostics.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Solver names the plugin that produced the error.
	Solver string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes solver errors.
type ErrorCode string

const (
	// CodeNoSolution indicates no configuration reaches the target.
	CodeNoSolution ErrorCode = "NO_SOLUTION"

	// CodeTimedOut indicates the search budget expired.
	CodeTimedOut ErrorCode = "TIMED_OUT"

	// CodeFailed indicates an internal solver failure.
	CodeFailed ErrorCode = "FAILED"

	// CodeInvalidInput indicates a malformed seed, target, or link request.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeUnsupported indicates the plugin does not implement the operation.
	CodeUnsupported ErrorCode = "UNSUPPORTED"

	// CodeLoadFailed indicates the plugin could not be constructed.
	CodeLoadFailed ErrorCode = "LOAD_FAILED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Solver != "" {
		return fmt.Sprintf("%s: %s (solver=%s)", e.Code, e.Message, e.Solver)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the error code from err. Returns the empty code when err
// is not a solver error. Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsTimeout returns true if the error is a search timeout.
func IsTimeout(err error) bool {
	return CodeOf(err) == CodeTimedOut
}

// IsNoSolution returns true if the error reports an unreachable target.
func IsNoSolution(err error) bool {
	return CodeOf(err) == CodeNoSolution
}

// NewNoSolutionError creates an Error for an unreachable target.
func NewNoSolutionError(solverName, msg string) *Error {
	return &Error{Code: CodeNoSolution, Message: msg, Solver: solverName}
}

// NewTimedOutError creates an Error for an expired search budget.
func NewTimedOutError(solverName string, timeout time.Duration) *Error {
	return &Error{
		Code:    CodeTimedOut,
		Message: fmt.Sprintf("no solution within %s", timeout),
		Solver:  solverName,
		Details: map[string]string{"timeout": timeout.String()},
	}
}

// NewFailedError creates an Error for an internal solver failure.
func NewFailedError(solverName, msg string) *Error {
	return &Error{Code: CodeFailed, Message: msg, Solver: solverName}
}

// NewInvalidInputError creates an Error for a malformed request.
func NewInvalidInputError(solverName, msg string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg, Solver: solverName}
}

// NewUnsupportedError creates an Error for an unimplemented operation.
func NewUnsupportedError(solverName, op string) *Error {
	return &Error{
		Code:    CodeUnsupported,
		Message: fmt.Sprintf("operation %s not supported", op),
		Solver:  solverName,
	}
}

// NewLoadError creates an Error for a plugin that could not be constructed.
func NewLoadError(name, msg string) *Error {
	return &Error{Code: CodeLoadFailed, Message: msg, Solver: name}
}
