// Package llm provides the text-generation client used by the pipeline.
//
// The pipeline treats generation as a black box behind the Client interface:
// one prompt in, one completion out. Implementations:
//   - ClaudeCLI: shells out to the claude binary
//   - MockClient: canned responses for tests
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client is the text-generation capability consumed by the pipeline.
// Implementations must be safe for concurrent use.
type Client interface {
	// Complete performs a single completion call.
	// One call per invocation; retry policy belongs to the caller.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// Error wraps a failure from an LLM client with operation context.
type Error struct {
	// Op is the operation that failed ("complete").
	Op string
	// Err is the underlying error.
	Err error
	// Retryable indicates a transient failure (rate limit, overload, timeout).
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given operation and retryable flag.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// IsRetryable reports whether err is an *Error marked retryable.
func IsRetryable(err error) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Retryable
	}
	return false
}
