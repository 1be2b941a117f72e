/*
Package queryflow turns natural-language questions into executed,
analyzed SQL.

# Overview

queryflow is a Go library for answering analytics questions against a
SQL warehouse. A question flows through a staged pipeline: classify it,
check the result cache, introspect schema, generate SQL with an LLM,
validate the SQL against a static policy, execute it, and derive
insights and a chart from the result.

Execution failures feed a bounded recovery loop: the backend error is
pattern-matched into a failure class, appended to a prior-error trail,
and the trail is embedded in the regeneration prompt so the next
candidate steers away from what already failed.

# Basic Usage

Create an engine over an LLM client and a backend, then ask:

	be, err := backend.OpenSQLite("warehouse.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer be.Close()

	eng, err := queryflow.New(llm.NewClaudeCLI(), be)
	if err != nil {
	    log.Fatal(err)
	}
	defer eng.Close()

	out, err := eng.Ask(context.Background(), "How many orders were placed last month?")
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(out.Answer)
	fmt.Println(out.SQL)

# Conversation Threading

Ask accepts prior turns and the outcome returns the extended
conversation, ready for the follow-up question:

	first, _ := eng.Ask(ctx, "Which product sells best?")
	second, _ := eng.Ask(ctx, "And how much revenue did it bring in?", first.History...)

# Recovery

Execution failures consume retries instead of aborting. The trail
grows by one entry per failure, the budget is checked after the trail
grows, and the budget-exhausting failure stays visible:

	eng, _ := queryflow.New(client, be, queryflow.WithMaxRetries(2))
	out, err := eng.Ask(ctx, question)
	var runErr *qferrors.RunError
	if errors.As(err, &runErr) {
	    log.Printf("failed [%s] after %d prior errors", runErr.Kind, len(runErr.PriorErrors))
	}

Validation failures are terminal and never enter the loop: SQL the
policy rejects must not be coached into passing.

# Caching

Successful results are cached for one hour under a fingerprint of the
normalized question and its category. A repeat question skips
generation and execution entirely. Engines share one cache across
concurrent runs; pass a shared cache with WithCache to span engines.

# Batch

AskBatch answers independent questions through a bounded worker pool,
preserving input order:

	results := eng.AskBatch(ctx, queries, 4)
	for _, r := range results {
	    if r.Err != nil {
	        log.Printf("%q failed: %v", r.Query, r.Err)
	        continue
	    }
	    fmt.Println(r.Outcome.Answer)
	}

# Custom Flows

The stage graph is open: build a Flow, compile it, and run it with
your own stages. Routers pick the next stage from state at runtime.

	flow := queryflow.NewFlow().
	    AddStage("fetch", fetchStage).
	    AddStage("summarize", summarizeStage).
	    AddEdge("fetch", "summarize").
	    AddEdge("summarize", queryflow.Done).
	    SetEntry("fetch")

	pipeline, err := flow.Compile()

Loops are protected by max iterations (default 50). Configure with
WithMaxIterations.

# Observability

Runs log structured lifecycle events and can record OpenTelemetry
metrics and spans:

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	eng, _ := queryflow.New(client, be,
	    queryflow.WithLogger(logger),
	    queryflow.WithRunOptions(queryflow.WithTracing(true)))

Logs include structured fields: run_id, stage, duration_ms, attempt.
Metrics: queryflow.stage.executions, queryflow.runs, queryflow.cache.lookups,
queryflow.execution.retries. Tracing: queryflow.run > queryflow.stage.{id} spans.

# Error Handling

Domain failures surface as *errors.RunError with the failure kind and
the accumulated trail:

	out, err := eng.Ask(ctx, question)
	var runErr *qferrors.RunError
	if errors.As(err, &runErr) {
	    log.Printf("kind=%s message=%s trail=%v", runErr.Kind, runErr.Message, runErr.PriorErrors)
	}

Mechanical failures keep their own types: CancellationError,
MaxIterationsError, PanicError (with stack trace), RouterError.
The outcome is returned alongside the error either way.

# Thread Safety

  - Flow is NOT safe for concurrent use during construction
  - Pipeline IS safe for concurrent use (immutable)
  - Engine IS safe for concurrent use
  - Context IS safe for concurrent use

# Subpackages

  - backend: SQL execution and schema introspection (SQLite)
  - cache: fingerprinted result cache with TTL
  - config: engine settings with file and environment loading
  - errors: the pipeline failure taxonomy
  - history: run history stores (memory, SQLite)
  - llm: LLM client interface, Claude CLI implementation, mock
  - observability: logging, metrics, and tracing helpers
  - prompt: prompt templates and assembly
  - schema: schema context building and caching
  - sqlcheck: static SQL validation and advice
  - viz: chart spec selection for results
*/
package queryflow
