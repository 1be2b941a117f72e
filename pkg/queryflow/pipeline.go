package queryflow

import "sort"

// Pipeline is an immutable, executable stage graph.
// It is created by calling Compile() on a Flow builder.
//
// Pipeline is thread-safe and can be used concurrently for multiple
// Run() calls. The structure cannot be modified after compilation.
type Pipeline struct {
	stages  map[string]StageFunc
	edges   map[string][]string
	routers map[string]RouterFunc
	entry   string
}

// Entry returns the entry stage ID.
func (p *Pipeline) Entry() string {
	return p.entry
}

// StageIDs returns all stage identifiers in the pipeline, sorted.
func (p *Pipeline) StageIDs() []string {
	ids := make([]string, 0, len(p.stages))
	for id := range p.stages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasStage checks if a stage exists in the pipeline.
func (p *Pipeline) HasStage(id string) bool {
	_, exists := p.stages[id]
	return exists
}

// HasRouter returns true if the stage routes conditionally.
func (p *Pipeline) HasRouter(id string) bool {
	_, exists := p.routers[id]
	return exists
}

// getStage returns the stage function for the given ID.
// Used internally by the run loop.
func (p *Pipeline) getStage(id string) (StageFunc, bool) {
	fn, exists := p.stages[id]
	return fn, exists
}

// getRouter returns the router function for the given stage.
// Used internally by the run loop.
func (p *Pipeline) getRouter(id string) (RouterFunc, bool) {
	router, exists := p.routers[id]
	return router, exists
}

// getEdges returns the simple edge targets for the given stage.
// Used internally by the run loop.
func (p *Pipeline) getEdges(id string) []string {
	return p.edges[id]
}
