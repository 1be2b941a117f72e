package queryflow

import (
	"errors"
	"fmt"
	"log/slog"
)

// Compile validates the flow and creates an executable Pipeline.
// Returns an error if validation fails. Multiple errors are joined
// together.
//
// Validation checks (in order):
//  1. Entry stage must be set
//  2. Entry must reference an existing stage
//  3. All edge sources must reference existing stages
//  4. All edge targets must reference existing stages or Done
//  5. A path from the entry to Done must exist
//
// Unreachable stages (not reachable from entry) are logged as warnings
// but do not cause compilation to fail.
func (f *Flow) Compile() (*Pipeline, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var errs []error

	// 1. Validate entry is set
	if f.entry == "" {
		errs = append(errs, ErrNoEntryStage)
	} else if _, exists := f.stages[f.entry]; !exists {
		// 2. Validate entry references an existing stage
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, f.entry))
	}

	// 3 & 4. Validate edge references
	for from, targets := range f.edges {
		// Check source exists (unless it only has a router)
		if from != Done {
			if _, exists := f.stages[from]; !exists {
				if _, hasRouter := f.routers[from]; !hasRouter {
					errs = append(errs, fmt.Errorf("%w: edge source '%s' does not exist", ErrStageNotFound, from))
				}
			}
		}

		// Check all targets exist
		for _, to := range targets {
			if to != Done {
				if _, exists := f.stages[to]; !exists {
					errs = append(errs, fmt.Errorf("%w: edge target '%s' does not exist", ErrStageNotFound, to))
				}
			}
		}
	}

	// Also check router sources
	for from := range f.routers {
		if _, exists := f.stages[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: router source '%s' does not exist", ErrStageNotFound, from))
		}
	}

	// 5. Validate a path to Done exists from entry
	if f.entry != "" {
		if _, exists := f.stages[f.entry]; exists {
			if !f.hasPathToDone() {
				errs = append(errs, ErrNoPathToDone)
			}
		}
	}

	// Check for unreachable stages (warning only)
	f.warnUnreachableStages()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return f.buildPipeline(), nil
}

// hasPathToDone checks if there is a path from the entry to Done using
// reverse reachability. Stages with routers are assumed to potentially
// reach any target, including Done, since the actual target depends on
// runtime state.
func (f *Flow) hasPathToDone() bool {
	canReachDone := make(map[string]bool)
	canReachDone[Done] = true

	// Keep propagating until no changes
	changed := true
	for changed {
		changed = false

		// Check simple edges
		for from, targets := range f.edges {
			if canReachDone[from] {
				continue
			}
			for _, to := range targets {
				if canReachDone[to] {
					canReachDone[from] = true
					changed = true
					break
				}
			}
		}

		// A router can potentially return Done
		for from := range f.routers {
			if !canReachDone[from] {
				canReachDone[from] = true
				changed = true
			}
		}
	}

	return canReachDone[f.entry]
}

// warnUnreachableStages logs warnings for stages not reachable from entry.
func (f *Flow) warnUnreachableStages() {
	if f.entry == "" {
		return
	}

	reachable := f.findReachableStages()

	for id := range f.stages {
		if !reachable[id] {
			slog.Warn("stage is unreachable from entry", "stage", id)
		}
	}
}

// findReachableStages returns the set of stages reachable from the entry.
// Router targets are unknown at compile time, so a stage with a router
// is treated as able to reach every stage.
func (f *Flow) findReachableStages() map[string]bool {
	reachable := make(map[string]bool)

	if f.entry == "" {
		return reachable
	}

	// BFS from entry
	queue := []string{f.entry}
	reachable[f.entry] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, target := range f.edges[current] {
			if target != Done && !reachable[target] {
				reachable[target] = true
				queue = append(queue, target)
			}
		}

		if _, hasRouter := f.routers[current]; hasRouter {
			for id := range f.stages {
				if !reachable[id] {
					reachable[id] = true
					queue = append(queue, id)
				}
			}
		}
	}

	return reachable
}

// buildPipeline creates the immutable Pipeline from the builder state.
func (f *Flow) buildPipeline() *Pipeline {
	stages := make(map[string]StageFunc, len(f.stages))
	for id, fn := range f.stages {
		stages[id] = fn
	}

	edges := make(map[string][]string, len(f.edges))
	for from, targets := range f.edges {
		edges[from] = make([]string, len(targets))
		copy(edges[from], targets)
	}

	routers := make(map[string]RouterFunc, len(f.routers))
	for from, router := range f.routers {
		routers[from] = router
	}

	return &Pipeline{
		stages:  stages,
		edges:   edges,
		routers: routers,
		entry:   f.entry,
	}
}
