package queryflow

import (
	qferrors "github.com/randalmurphal/queryflow/pkg/queryflow/errors"
)

// schemaStage builds the schema context for the tables the category
// routes to. Introspection failure is fatal: without live schema the
// generator would hallucinate columns, so the run aborts here.
func (e *Engine) schemaStage(ctx Context, state State) (State, error) {
	tables := TablesFor(state.Classification.Category, e.tables)

	sc, err := e.schema.Build(ctx, tables)
	if err != nil {
		state.Status = StatusTerminal
		state.FailureKind = qferrors.KindIntrospection
		state.ErrorMessage = err.Error()
		return state, err
	}

	state.schemaCtx = sc
	return state, nil
}
