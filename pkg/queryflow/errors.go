package queryflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for flow building and compilation.
var (
	// ErrNoEntryStage indicates SetEntry() was not called before Compile().
	ErrNoEntryStage = errors.New("entry stage not set")

	// ErrEntryNotFound indicates the entry references a non-existent stage.
	ErrEntryNotFound = errors.New("entry stage not found")

	// ErrStageNotFound indicates an edge references a non-existent stage.
	ErrStageNotFound = errors.New("stage not found")

	// ErrNoPathToDone indicates no path exists from the entry stage to Done.
	ErrNoPathToDone = errors.New("no path to Done from entry")
)

// Sentinel errors for execution.
var (
	// ErrMaxIterations indicates the run loop exceeded the configured limit.
	ErrMaxIterations = errors.New("exceeded maximum iterations")

	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrInvalidRouterResult indicates a router function returned an empty string.
	ErrInvalidRouterResult = errors.New("router returned empty string")

	// ErrRouterTargetNotFound indicates a router function returned an unknown stage ID.
	ErrRouterTargetNotFound = errors.New("router returned unknown stage")
)

// StageError wraps an error with stage context.
// It provides information about which stage failed and what operation was attempted.
type StageError struct {
	// Stage is the identifier of the stage that failed.
	Stage string
	// Op is the operation that failed (e.g., "execute").
	Op string
	// Err is the underlying error from the stage.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from stage execution.
// It includes the stack trace for debugging.
type PanicError struct {
	// Stage is the identifier of the stage that panicked.
	Stage string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.Stage, e.Value)
}

// CancellationError captures the state when a run was cancelled.
// It preserves the state at the point of cancellation for inspection.
type CancellationError struct {
	// Stage is the stage that was about to execute or was executing.
	Stage string
	// State is the pipeline state at cancellation.
	State State
	// Cause is the underlying cancellation cause (context.Canceled or context.DeadlineExceeded).
	Cause error
	// WasExecuting is true if cancellation occurred during stage execution.
	WasExecuting bool
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	if e.WasExecuting {
		return fmt.Sprintf("cancelled during stage %s: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("cancelled before stage %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// RouterError wraps errors from conditional routing.
// It provides context about which router failed and what it returned.
type RouterError struct {
	// FromStage is the stage with the router.
	FromStage string
	// Returned is the value the router returned.
	Returned string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RouterError) Error() string {
	return fmt.Sprintf("router from %s returned %q: %v", e.FromStage, e.Returned, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RouterError) Unwrap() error {
	return e.Err
}

// MaxIterationsError provides context when the loop limit is exceeded.
// It includes the state at termination for inspection.
type MaxIterationsError struct {
	// Max is the configured iteration limit.
	Max int
	// LastStage is the stage that would have executed next.
	LastStage string
	// State is the pipeline state at termination.
	State State
}

// Error implements the error interface.
func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("exceeded maximum iterations (%d) at stage %s", e.Max, e.LastStage)
}

// Unwrap returns ErrMaxIterations for errors.Is support.
func (e *MaxIterationsError) Unwrap() error {
	return ErrMaxIterations
}
