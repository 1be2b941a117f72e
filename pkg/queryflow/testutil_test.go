package queryflow

import (
	"context"
)

// Shared helpers for the package tests. Stage helpers work on the real
// State; RetryCount doubles as a scratch counter for loop tests.

// passthrough returns state unchanged.
func passthrough(_ Context, s State) (State, error) {
	return s, nil
}

// bumpRetry increments RetryCount, for counting stage executions.
func bumpRetry(_ Context, s State) (State, error) {
	s.RetryCount++
	return s, nil
}

// makeTrackingStage returns a stage that records its name in tracker.
func makeTrackingStage(name string, tracker *[]string) StageFunc {
	return func(_ Context, s State) (State, error) {
		*tracker = append(*tracker, name)
		return s, nil
	}
}

// makeFailingStage returns a stage that always fails with err.
func makeFailingStage(err error) StageFunc {
	return func(_ Context, s State) (State, error) {
		return s, err
	}
}

// makePanicStage returns a stage that panics with the given value.
func makePanicStage(value any) StageFunc {
	return func(_ Context, _ State) (State, error) {
		panic(value)
	}
}

// testCtx creates a context for testing.
func testCtx() Context {
	return NewContext(context.Background())
}
