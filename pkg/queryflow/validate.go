package queryflow

import (
	qferrors "github.com/randalmurphal/queryflow/pkg/queryflow/errors"
	"github.com/randalmurphal/queryflow/pkg/queryflow/sqlcheck"
)

// validateStage checks the candidate against the static execution
// policy. A rejection is terminal, not recoverable: a policy violation
// means the model produced SQL the system must never run, and retrying
// with the violation in the prompt would coach it around the policy.
func (e *Engine) validateStage(_ Context, state State) (State, error) {
	if err := e.validator.Validate(state.SQL); err != nil {
		state.Status = StatusTerminal
		state.FailureKind = qferrors.KindValidation
		state.ErrorMessage = err.Error()
		return state, err
	}

	state.Status = StatusReady
	state.Suggestions = sqlcheck.Advise(state.SQL)
	return state, nil
}
