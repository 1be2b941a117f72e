package queryflow

import (
	"context"
	"sync"
)

// BatchResult pairs one query of a batch with its outcome.
type BatchResult struct {
	// Index is the query's position in the input slice.
	Index int `json:"index"`
	// Query is the original question.
	Query string `json:"query"`
	// Outcome is the run product. It is non-nil even for failed runs,
	// carrying whatever the run produced before aborting.
	Outcome *Outcome `json:"outcome,omitempty"`
	// Err is the run error, nil on success.
	Err error `json:"-"`
}

// AskBatch answers several independent questions concurrently, at most
// workers at a time. Results come back in input order regardless of
// completion order.
//
// Queries share the engine's cache, so duplicate questions later in
// the batch can be served from earlier successes. Each query gets its
// own run and its own timeout; one failed run never affects the
// others. Workers below one run sequentially.
func (e *Engine) AskBatch(ctx context.Context, queries []string, workers int) []BatchResult {
	if len(queries) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(queries) {
		workers = len(queries)
	}

	results := make([]BatchResult, len(queries))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, q := range queries {
		wg.Add(1)
		go func(idx int, query string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			out, err := e.Ask(ctx, query)
			results[idx] = BatchResult{Index: idx, Query: query, Outcome: out, Err: err}
		}(i, q)
	}
	wg.Wait()

	return results
}
