// Package prompt assembles the LLM prompts for classification, SQL
// generation, and insight writing, and post-processes model output.
// Templates use ${name} placeholders; every placeholder must be bound
// at build time.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// bracePattern matches ${varname} - varname can contain alphanumeric
// and underscore. Bare $var is deliberately not a placeholder: prompt
// text quotes dollar amounts.
var bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Expand substitutes ${name} placeholders in s from vars. Every
// placeholder must resolve; unresolved names are collected into an
// *UndefinedVariableError.
func Expand(s string, vars map[string]any) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	result := bracePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := vars[name]; ok {
			return fmt.Sprintf("%v", val)
		}
		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// MustExpand is Expand for templates whose bindings are fixed at
// compile time. It panics on an unresolved placeholder.
func MustExpand(s string, vars map[string]any) string {
	result, err := Expand(s, vars)
	if err != nil {
		panic(fmt.Sprintf("prompt: %v", err))
	}
	return result
}

// UndefinedVariableError reports placeholders with no binding.
type UndefinedVariableError struct {
	// Names is the list of undefined variable names.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}
