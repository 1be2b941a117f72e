// Package sqlcheck statically checks generated SQL before it reaches
// the backend. The validator enforces the execution policy (read-only,
// single statement, full qualification, bounded joins) and never runs
// the statement; the advisor emits non-binding style suggestions.
package sqlcheck

import (
	"fmt"
	"regexp"
	"strings"

	qferrors "github.com/randalmurphal/queryflow/pkg/queryflow/errors"
)

// DefaultMaxJoins bounds how many JOIN clauses a candidate may carry.
const DefaultMaxJoins = 4

var (
	mutationRe = regexp.MustCompile(`(?i)\b(DROP|DELETE|INSERT|UPDATE|ALTER|CREATE|TRUNCATE)\b`)
	joinRe     = regexp.MustCompile(`(?i)\bJOIN\b`)
)

// Validator is the static SQL policy check. The zero value is not
// usable; construct with NewValidator.
type Validator struct {
	qualifier string
	tables    []string
	tableRe   *regexp.Regexp
	maxJoins  int
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithMaxJoins overrides the join budget. Values below one keep the
// default.
func WithMaxJoins(n int) ValidatorOption {
	return func(v *Validator) {
		if n > 0 {
			v.maxJoins = n
		}
	}
}

// NewValidator creates a validator that requires every reference to
// one of the known tables to be qualified as "<qualifier>.<table>".
func NewValidator(qualifier string, tables []string, opts ...ValidatorOption) *Validator {
	v := &Validator{
		qualifier: qualifier,
		tables:    append([]string(nil), tables...),
		maxJoins:  DefaultMaxJoins,
	}
	for _, opt := range opts {
		opt(v)
	}
	if len(v.tables) > 0 {
		quoted := make([]string, len(v.tables))
		for i, t := range v.tables {
			quoted[i] = regexp.QuoteMeta(t)
		}
		v.tableRe = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return v
}

// Validate checks one SQL candidate against the execution policy. It
// returns nil for a clean statement and a *qferrors.ValidationError
// naming the violated rule otherwise. It never executes the SQL.
func (v *Validator) Validate(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return &qferrors.ValidationError{
			Rule:   "statement",
			Detail: "empty statement",
			SQL:    sql,
		}
	}

	// All checks below run on literal-masked text so quoted values
	// cannot trip keyword or table matching.
	masked := maskLiterals(trimmed)

	if rest := strings.TrimRight(masked, "; \t\n"); strings.ContainsRune(rest, ';') {
		return &qferrors.ValidationError{
			Rule:   "statement",
			Detail: "multiple statements are not allowed",
			SQL:    sql,
		}
	}

	upper := strings.ToUpper(masked)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return &qferrors.ValidationError{
			Rule:   "read-only",
			Detail: "statement must start with SELECT or WITH",
			SQL:    sql,
		}
	}
	if m := mutationRe.FindString(masked); m != "" {
		return &qferrors.ValidationError{
			Rule:   "read-only",
			Detail: fmt.Sprintf("mutation keyword %s is not allowed", strings.ToUpper(m)),
			SQL:    sql,
		}
	}

	if err := v.checkQualification(masked, sql); err != nil {
		return err
	}

	if joins := len(joinRe.FindAllStringIndex(masked, -1)); joins > v.maxJoins {
		return &qferrors.ValidationError{
			Rule:   "joins",
			Detail: fmt.Sprintf("%d joins exceed the budget of %d", joins, v.maxJoins),
			SQL:    sql,
		}
	}
	return nil
}

// checkQualification requires every known-table reference to carry
// the qualifier prefix. Matching is positional: a table name counts
// as qualified only when immediately preceded by "<qualifier>.".
func (v *Validator) checkQualification(masked, original string) error {
	if v.tableRe == nil {
		return nil
	}

	prefix := v.qualifier + "."
	for _, loc := range v.tableRe.FindAllStringIndex(masked, -1) {
		start := loc[0]
		if start >= len(prefix) && strings.EqualFold(masked[start-len(prefix):start], prefix) {
			continue
		}
		// A leading dot with some other prefix is still unqualified
		// for our purposes ("x.orders" does not name the warehouse).
		name := masked[loc[0]:loc[1]]
		return &qferrors.ValidationError{
			Rule:   "qualification",
			Detail: fmt.Sprintf("table %s must be referenced as %s%s", name, prefix, name),
			SQL:    original,
		}
	}
	return nil
}

// maskLiterals blanks the contents of single-quoted SQL strings,
// honoring the '' escape, so later checks only see structure.
func maskLiterals(sql string) string {
	out := []byte(sql)
	inString := false
	for i := 0; i < len(out); i++ {
		switch {
		case out[i] == '\'':
			inString = !inString
		case inString:
			out[i] = ' '
		}
	}
	return string(out)
}
