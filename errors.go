package syncrunner

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit code 2
// Examples include configuration errors, file not found, etc.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// StepError represents a failed pipeline step. ExitCode carries the
// underlying command's exit status, which the wrapper propagates as its
// own.
type StepError struct {
	Step     string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError creates a new StepError
func NewStepError(step string, exitCode int, err error) *StepError {
	return &StepError{Step: step, ExitCode: exitCode, Err: err}
}

// IsStepError checks if the error is or wraps a StepError
func IsStepError(err error) bool {
	var stepErr *StepError
	return err != nil && errors.As(err, &stepErr)
}

// StepExitCode extracts the propagated exit code from a StepError chain.
func StepExitCode(err error) (int, bool) {
	var stepErr *StepError
	if err != nil && errors.As(err, &stepErr) {
		return stepErr.ExitCode, true
	}
	return 0, false
}
