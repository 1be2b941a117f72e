package queryflow

// Done is the reserved stage ID marking pipeline completion.
// Edges and routers targeting Done end the run.
const Done = "__done__"

// Standard stage IDs for the pipeline built by New. Custom flows may
// use any IDs; these constants exist so routers and tests can refer to
// the built-in stages without string literals.
const (
	StageClassify = "classify"
	StageLookup   = "lookup"
	StageSchema   = "schema"
	StageGenerate = "generate"
	StageValidate = "validate"
	StageExecute  = "execute"
	StageAnalyze  = "analyze"
)

// StageFunc is a function that processes state and returns new state.
//
// Stages should be pure transformations where possible: receive state,
// do work, return modified state. Returning an error aborts the run
// unless a router downstream was going to handle the failure through
// the state itself.
type StageFunc func(ctx Context, state State) (State, error)

// RouterFunc determines the next stage based on state.
// It returns a stage ID or Done. Returning an empty string or an
// unknown stage ID causes a runtime RouterError.
type RouterFunc func(ctx Context, state State) string
