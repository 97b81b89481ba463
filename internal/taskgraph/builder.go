package taskgraph

import (
	"fmt"
	"sort"
)

// Build turns raw blueprint tasks into a schedulable Graph.
//
// Build never fails and never drops a task over a bad edge. Problems are
// repaired in place and reported as warnings: tasks without an id are
// skipped, duplicate ids keep their first record, edges to unknown tasks are
// stripped, and dependency cycles are broken by cutting the edge that closes
// them. The resulting graph is always acyclic.
func Build(raw []RawTask) (*Graph, []string) {
	var warnings []string

	tasks := make(map[string]*Task, len(raw))
	order := make([]string, 0, len(raw))

	for i, r := range raw {
		if r.ID == "" {
			warnings = append(warnings, fmt.Sprintf("task #%d (%q) has no id, skipped", i+1, r.Description))
			continue
		}
		if _, exists := tasks[r.ID]; exists {
			warnings = append(warnings, fmt.Sprintf("duplicate task id %q, keeping the first definition", r.ID))
			continue
		}
		tasks[r.ID] = &Task{
			ID:          r.ID,
			Owner:       r.Owner,
			Description: r.Description,
			Phase:       r.Phase,
			DependsOn:   append([]string(nil), r.DependsOn...),
			Equipment:   append([]string(nil), r.Equipment...),
			Status:      TaskPending,
		}
		order = append(order, r.ID)
	}

	warnings = append(warnings, stripBadEdges(tasks, order)...)
	warnings = append(warnings, breakCycles(tasks, order)...)

	return newGraph(tasks, order), warnings
}

// stripBadEdges removes dependency edges that can never be satisfied:
// self-references, repeated entries, and ids no task carries.
func stripBadEdges(tasks map[string]*Task, order []string) []string {
	var warnings []string

	for _, id := range order {
		task := tasks[id]
		seen := make(map[string]bool, len(task.DependsOn))
		kept := task.DependsOn[:0]
		for _, depID := range task.DependsOn {
			switch {
			case depID == id:
				warnings = append(warnings, fmt.Sprintf("task %q depends on itself, edge removed", id))
			case seen[depID]:
				warnings = append(warnings, fmt.Sprintf("task %q lists dependency %q twice, extra edge removed", id, depID))
			case tasks[depID] == nil:
				warnings = append(warnings, fmt.Sprintf("task %q depends on unknown task %q, edge removed", id, depID))
			default:
				seen[depID] = true
				kept = append(kept, depID)
			}
		}
		task.DependsOn = kept
	}

	return warnings
}

// breakCycles removes dependency edges that close a cycle, found by a
// depth-first walk. Roots are visited in sorted id order so repeated builds
// of the same blueprint always cut the same edges.
func breakCycles(tasks map[string]*Task, order []string) []string {
	const (
		white = iota // Not yet visited
		grey         // On the current walk path
		black        // Fully explored
	)

	var warnings []string
	color := make(map[string]int, len(tasks))

	ids := append([]string(nil), order...)
	sort.Strings(ids)

	var visit func(id string)
	visit = func(id string) {
		color[id] = grey
		task := tasks[id]
		kept := task.DependsOn[:0]
		for _, depID := range task.DependsOn {
			switch color[depID] {
			case grey:
				// Back edge: depID is upstream on the current path.
				warnings = append(warnings, fmt.Sprintf("dependency cycle: removed edge %q -> %q", id, depID))
				continue
			case white:
				visit(depID)
			}
			kept = append(kept, depID)
		}
		task.DependsOn = kept
		color[id] = black
	}

	for _, id := range ids {
		if color[id] == white {
			visit(id)
		}
	}

	return warnings
}
