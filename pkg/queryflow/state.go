package queryflow

import (
	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	qferrors "github.com/randalmurphal/queryflow/pkg/queryflow/errors"
	"github.com/randalmurphal/queryflow/pkg/queryflow/llm"
	"github.com/randalmurphal/queryflow/pkg/queryflow/schema"
	"github.com/randalmurphal/queryflow/pkg/queryflow/viz"
)

// Status is the phase of the execution state machine.
type Status string

// Execution statuses, in rough lifecycle order. A run starts pending,
// passes through ready and executing, and lands on exactly one of
// succeeded or terminal. Recoverable is the intermediate status that
// sends the run back through regeneration.
const (
	StatusPending     Status = "pending"
	StatusReady       Status = "ready"
	StatusExecuting   Status = "executing"
	StatusSucceeded   Status = "succeeded"
	StatusRecoverable Status = "recoverable"
	StatusTerminal    Status = "terminal"
)

// Category is the analytical domain of a question. Classification maps
// every question into this closed set; anything uncertain lands on
// CategoryGeneral.
type Category string

// Question categories.
const (
	CategoryCustomer   Category = "customer"
	CategoryProduct    Category = "product"
	CategorySales      Category = "sales"
	CategoryGeographic Category = "geographic"
	CategoryGeneral    Category = "general"
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryCustomer, CategoryProduct, CategorySales, CategoryGeographic, CategoryGeneral:
		return true
	}
	return false
}

// Classification is the classifier's judgment of a question.
type Classification struct {
	// Category selects the table subset and few-shot examples for generation.
	Category Category `json:"category"`
	// Complexity is an advisory difficulty estimate ("simple", "moderate", "complex").
	Complexity string `json:"complexity"`
	// Confidence is the classifier's self-reported certainty in [0, 1].
	// Below the acceptance threshold the category falls back to general.
	Confidence float64 `json:"confidence"`
}

// State is the value that flows through the pipeline. Each stage
// receives the current state and returns a replacement; stages never
// share a state through pointers, so a stage can only affect its
// successors through what it returns.
//
// Slice fields follow copy-on-append: helpers build a fresh backing
// array before appending so earlier snapshots of the state are never
// mutated behind the caller's back.
type State struct {
	// Query is the natural-language question being answered.
	Query string `json:"query"`
	// History holds the conversation so far, oldest turn first.
	History []llm.Message `json:"history,omitempty"`
	// Classification is set by the classify stage.
	Classification Classification `json:"classification"`
	// SQL is the current candidate statement.
	SQL string `json:"sql,omitempty"`
	// Result is the tabular output of a successful execution.
	Result *backend.Result `json:"result,omitempty"`
	// Insights is the analyst commentary derived from the result.
	Insights string `json:"insights,omitempty"`
	// Chart is the visualization spec chosen for the result.
	Chart *viz.Spec `json:"chart,omitempty"`
	// Suggestions are advisory notes from the static query advisor.
	Suggestions []string `json:"suggestions,omitempty"`
	// Status is the current state-machine phase.
	Status Status `json:"status"`
	// RetryCount is how many recovery attempts have been consumed.
	RetryCount int `json:"retry_count"`
	// PriorErrors is the append-only trail of failure descriptions,
	// oldest first. Regeneration prompts embed the full trail.
	PriorErrors []string `json:"prior_errors,omitempty"`
	// ErrorMessage is the most recent failure description.
	ErrorMessage string `json:"error_message,omitempty"`
	// CacheHit records whether the result was served from cache.
	CacheHit bool `json:"cache_hit"`
	// FailureKind is the taxonomy kind of a terminal failure.
	FailureKind qferrors.Kind `json:"failure_kind,omitempty"`

	// schemaCtx carries the built schema context from the schema stage
	// to generation. Internal: rebuilt per run, never serialized.
	schemaCtx *schema.Context
	// generations counts SQL generation calls made for this run.
	generations int
}

// Attempts returns how many SQL generation calls this run has made.
// Zero means the run was answered without generating SQL (a cache hit).
func (s State) Attempts() int {
	return s.generations
}

// appendPriorError returns the state with msg appended to the trail.
// The trail is copied first so snapshots held by earlier stages keep
// their original view.
func (s State) appendPriorError(msg string) State {
	trail := make([]string, len(s.PriorErrors), len(s.PriorErrors)+1)
	copy(trail, s.PriorErrors)
	s.PriorErrors = append(trail, msg)
	s.ErrorMessage = msg
	return s
}

// appendHistory returns the state with the turns appended to a copied
// history slice.
func (s State) appendHistory(turns ...llm.Message) State {
	history := make([]llm.Message, len(s.History), len(s.History)+len(turns))
	copy(history, s.History)
	s.History = append(history, turns...)
	return s
}
