package errors

import (
	"errors"
	"strings"
)

// Class is the pattern-matched category of a backend execution failure.
// It tells the recovery prompt what went wrong so regeneration can avoid
// repeating the mistake.
type Class int

const (
	// ClassUnclassified is a failure matching no known signature.
	// Treated as recoverable: it consumes a retry rather than aborting.
	ClassUnclassified Class = iota

	// ClassSyntax is a SQL syntax error.
	ClassSyntax

	// ClassUnknownColumn is a reference to a column or table that does not exist.
	ClassUnknownColumn

	// ClassTypeMismatch is a type error (bad operand or function signature).
	ClassTypeMismatch
)

// String returns the class name used in prior-error descriptions.
func (c Class) String() string {
	switch c {
	case ClassSyntax:
		return "syntax"
	case ClassUnknownColumn:
		return "unknown-column"
	case ClassTypeMismatch:
		return "type-mismatch"
	default:
		return "unclassified"
	}
}

// Error signature fragments, by class. Covers SQLite driver text plus the
// wording of common warehouse services so the classifier survives a backend
// swap. Matching is case-insensitive.
var (
	syntaxPatterns = []string{
		"syntax error",
		"incomplete input",
		"unexpected token",
	}
	unknownColumnPatterns = []string{
		"no such column",
		"no such table",
		"unrecognized name",
		"unknown column",
		"not found: table",
		"column not found",
	}
	typeMismatchPatterns = []string{
		"datatype mismatch",
		"type mismatch",
		"no matching signature",
		"cannot convert",
		"invalid argument type",
	}
)

// ClassifyExecution pattern-matches a backend failure into a Class.
// Unmatched failures return ClassUnclassified.
func ClassifyExecution(err error) Class {
	if err == nil {
		return ClassUnclassified
	}

	msg := strings.ToLower(err.Error())

	for _, p := range unknownColumnPatterns {
		if strings.Contains(msg, p) {
			return ClassUnknownColumn
		}
	}
	for _, p := range typeMismatchPatterns {
		if strings.Contains(msg, p) {
			return ClassTypeMismatch
		}
	}
	for _, p := range syntaxPatterns {
		if strings.Contains(msg, p) {
			return ClassSyntax
		}
	}

	return ClassUnclassified
}

// KindOf walks the error chain and returns the pipeline failure kind.
// Unrecognized errors return KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var (
		classErr *ClassificationError
		introErr *IntrospectionError
		genErr   *GenerationError
		valErr   *ValidationError
		execErr  *ExecutionError
		cacheErr *CacheError
		runErr   *RunError
	)

	switch {
	case errors.As(err, &runErr):
		return runErr.Kind
	case errors.As(err, &classErr):
		return KindClassification
	case errors.As(err, &introErr):
		return KindIntrospection
	case errors.As(err, &genErr):
		return KindGeneration
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &execErr):
		return KindExecution
	case errors.As(err, &cacheErr):
		return KindCache
	default:
		return KindUnknown
	}
}

// IsFatal reports whether err aborts the run outright.
// Only introspection failures, validation failures, and structured run
// failures are fatal; everything else is absorbed or drives recovery.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindIntrospection, KindValidation:
		return true
	default:
		var runErr *RunError
		return errors.As(err, &runErr)
	}
}
