package queryflow

import (
	"fmt"
	"strings"
	"sync"
)

// Flow is a mutable builder for stage graphs.
// Use NewFlow to create one, then chain AddStage, AddEdge, AddRouter,
// and SetEntry calls to define the pipeline shape.
//
// Flow is NOT thread-safe during building. Construct it from a single
// goroutine, then call Compile() to create an immutable Pipeline that
// can be safely shared across concurrent runs.
//
// Example:
//
//	flow := queryflow.NewFlow().
//	    AddStage("classify", classifyStage).
//	    AddStage("generate", generateStage).
//	    AddEdge("classify", "generate").
//	    AddEdge("generate", queryflow.Done).
//	    SetEntry("classify")
//
//	pipeline, err := flow.Compile()
type Flow struct {
	mu      sync.RWMutex
	stages  map[string]StageFunc
	edges   map[string][]string
	routers map[string]RouterFunc
	entry   string
}

// NewFlow creates a new flow builder.
func NewFlow() *Flow {
	return &Flow{
		stages:  make(map[string]StageFunc),
		edges:   make(map[string][]string),
		routers: make(map[string]RouterFunc),
	}
}

// AddStage adds a named stage to the flow.
// Returns the flow for method chaining.
//
// Panics if:
//   - id is empty
//   - id is the reserved word "Done" or "__done__" (case-insensitive)
//   - id contains whitespace (space, tab, newline)
//   - fn is nil
//   - id already exists in the flow
func (f *Flow) AddStage(id string, fn StageFunc) *Flow {
	if id == "" {
		panic("queryflow: stage ID cannot be empty")
	}

	// Check reserved words (case-insensitive)
	idLower := strings.ToLower(id)
	if idLower == "done" || idLower == "__done__" {
		panic("queryflow: stage ID cannot be reserved word 'Done'")
	}

	if strings.ContainsAny(id, " \t\n\r") {
		panic("queryflow: stage ID cannot contain whitespace")
	}

	if fn == nil {
		panic("queryflow: stage function cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.stages[id]; exists {
		panic(fmt.Sprintf("queryflow: duplicate stage ID: %s", id))
	}

	f.stages[id] = fn
	return f
}

// AddEdge adds an unconditional edge from one stage to another.
// The target can be a stage ID or queryflow.Done.
// Returns the flow for method chaining.
//
// Edge validation happens at Compile() time, not here.
// This allows edges to be added in any order.
func (f *Flow) AddEdge(from, to string) *Flow {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.edges[from] = append(f.edges[from], to)
	return f
}

// AddRouter adds a conditional edge where a RouterFunc determines the
// next stage at runtime based on state.
// Returns the flow for method chaining.
//
// The router should return a valid stage ID or queryflow.Done.
// Returning an empty string or an unknown stage ID causes a runtime
// RouterError.
//
// A stage can have either simple edges or a router, not both.
// If both are present, the router takes precedence.
func (f *Flow) AddRouter(from string, router RouterFunc) *Flow {
	if router == nil {
		panic("queryflow: router function cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.routers[from] = router
	return f
}

// SetEntry designates the entry stage.
// This must be called before Compile().
// Returns the flow for method chaining.
//
// Entry validation happens at Compile() time.
func (f *Flow) SetEntry(id string) *Flow {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entry = id
	return f
}
