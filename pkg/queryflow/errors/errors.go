// Package errors defines the pipeline error taxonomy.
//
// Each stage failure is a typed error; Kind and KindOf drive the
// propagation policy: classification and cache failures are absorbed
// with fallbacks, introspection and validation failures abort the run,
// and execution failures feed the bounded recovery loop.
package errors

import (
	"fmt"
	"strings"
)

// Kind categorizes a pipeline failure.
type Kind int

const (
	// KindUnknown is the zero value for unrecognized errors.
	KindUnknown Kind = iota

	// KindClassification - classifier failed; non-fatal, falls back to the
	// general category.
	KindClassification

	// KindIntrospection - schema introspection failed; fatal, no query can
	// be generated without schema.
	KindIntrospection

	// KindGeneration - SQL generation failed; fatal for the attempt.
	KindGeneration

	// KindValidation - static validation rejected the SQL; terminal, the
	// recovery loop never runs.
	KindValidation

	// KindExecution - backend execution failed; recoverable until the retry
	// budget is exhausted.
	KindExecution

	// KindCache - cache operation failed; non-fatal, degrades to a miss.
	KindCache
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindClassification:
		return "classification"
	case KindIntrospection:
		return "introspection"
	case KindGeneration:
		return "generation"
	case KindValidation:
		return "validation"
	case KindExecution:
		return "execution"
	case KindCache:
		return "cache"
	default:
		return "unknown"
	}
}

// ClassificationError indicates the classifier could not categorize a query.
// Non-fatal: the pipeline falls back to the general category.
type ClassificationError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify %q: %v", truncate(e.Query, 60), e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// IntrospectionError indicates schema introspection failed for a table.
// Fatal: no query can be safely generated without schema.
type IntrospectionError struct {
	Table string
	Err   error
}

// Error implements the error interface.
func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("introspect table %s: %v", e.Table, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *IntrospectionError) Unwrap() error {
	return e.Err
}

// GenerationError indicates SQL generation failed.
// Attempt is 1 for the initial generation, 2+ for recovery regenerations.
type GenerationError struct {
	Attempt int
	Err     error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate sql (attempt %d): %v", e.Attempt, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ValidationError indicates the static validator rejected a SQL candidate.
// Terminal: a validator rejection is a policy violation, not a transient
// backend error, so the run fails without entering the recovery loop.
type ValidationError struct {
	// Rule names the violated check ("read-only", "qualification", "joins",
	// "statement").
	Rule string
	// Detail describes the violation.
	Detail string
	// SQL is the rejected candidate.
	SQL string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Rule, e.Detail)
}

// ExecutionError indicates backend execution failed.
// Recoverable: drives the retry state machine until the budget is exhausted.
type ExecutionError struct {
	// Class is the pattern-matched failure class.
	Class Class
	// Message is the backend error text.
	Message string
	// SQL is the statement that failed.
	SQL string
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed [%s]: %s", e.Class, e.Message)
}

// CacheError indicates a cache operation failed.
// Non-fatal: callers treat it as a cache miss.
type CacheError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CacheError) Unwrap() error {
	return e.Err
}

// RunError is the structured failure surfaced to callers when a run aborts.
// It carries the failure kind, a message, and the accumulated prior-error
// trail so terminal failures keep their full diagnostic history.
type RunError struct {
	Kind        Kind
	Message     string
	PriorErrors []string
	Err         error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if len(e.PriorErrors) == 0 {
		return fmt.Sprintf("run failed [%s]: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("run failed [%s] after %d prior errors: %s",
		e.Kind, len(e.PriorErrors), e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RunError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}
