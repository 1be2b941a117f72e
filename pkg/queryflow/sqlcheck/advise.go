package sqlcheck

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	selectStarRe = regexp.MustCompile(`(?i)\bSELECT\s+(\w+\.)?\*`)
	limitRe      = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
	orderByRe    = regexp.MustCompile(`(?i)\bORDER\s+BY\b`)
	aggregateRe  = regexp.MustCompile(`(?i)\b(COUNT|SUM|AVG|MIN|MAX)\s*\(`)
	subqueryRe   = regexp.MustCompile(`(?i)\(\s*SELECT\b`)
)

// adviseJoinThreshold is where join-heavy advice kicks in. It sits
// below the validator's hard budget on purpose: advice fires while
// the statement is still acceptable.
const adviseJoinThreshold = 3

// Advise inspects a SQL statement and returns non-binding suggestions
// for cost and readability. It returns nil when nothing stands out.
// Unlike Validate, advice never blocks execution.
func Advise(sql string) []string {
	masked := maskLiterals(strings.TrimSpace(sql))
	if masked == "" {
		return nil
	}

	var suggestions []string

	if selectStarRe.MatchString(masked) {
		suggestions = append(suggestions,
			"SELECT * scans every column; name only the columns the question needs")
	}

	hasLimit := limitRe.MatchString(masked)
	hasAggregate := aggregateRe.MatchString(masked)
	if !hasLimit && !hasAggregate {
		suggestions = append(suggestions,
			"no LIMIT clause on a row-returning query; cap the result to what will be read")
	}
	if !hasLimit && orderByRe.MatchString(masked) {
		suggestions = append(suggestions,
			"ORDER BY without LIMIT sorts the entire result before returning it")
	}

	if joins := len(joinRe.FindAllStringIndex(masked, -1)); joins >= adviseJoinThreshold {
		suggestions = append(suggestions, fmt.Sprintf(
			"%d joins in one statement; consider pre-aggregating or splitting the question", joins))
	}

	if subqueryRe.MatchString(masked) {
		suggestions = append(suggestions,
			"nested subquery found; a WITH clause usually reads and plans better")
	}

	return suggestions
}
