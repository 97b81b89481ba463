// Package delegate defines the seam between the scheduling engine and
// whatever actually performs tasks. The engine never inspects a result
// beyond the error; everything else is carried through for reporting.
package delegate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

// Result is what a delegate hands back for a finished task.
type Result struct {
	Summary string            // One-line account of the work done
	Details map[string]string // Optional structured extras (permit numbers, order ids)
}

// Delegate executes tasks. Implementations own all domain knowledge.
type Delegate interface {
	Execute(ctx context.Context, task *taskgraph.Task) (Result, error)
}

// Func adapts a plain function to the Delegate interface.
type Func func(ctx context.Context, task *taskgraph.Task) (Result, error)

// Execute calls f.
func (f Func) Execute(ctx context.Context, task *taskgraph.Task) (Result, error) {
	return f(ctx, task)
}

// Registry routes each task to the delegate registered for its owner.
// Registry itself implements Delegate, so the engine needs no routing logic.
type Registry struct {
	mu      sync.RWMutex
	byOwner map[string]Delegate
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byOwner: make(map[string]Delegate),
	}
}

// Register assigns a delegate to an owner tag. Last registration wins.
func (r *Registry) Register(owner string, d Delegate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byOwner[owner] = d
}

// Owners returns the registered owner tags in sorted order.
func (r *Registry) Owners() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make([]string, 0, len(r.byOwner))
	for owner := range r.byOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

// Execute dispatches the task to its owner's delegate. An unregistered
// owner is an execution failure like any other; the engine's retry and
// cascade machinery handles it.
func (r *Registry) Execute(ctx context.Context, task *taskgraph.Task) (Result, error) {
	r.mu.RLock()
	d, ok := r.byOwner[task.Owner]
	r.mu.RUnlock()

	if !ok {
		return Result{}, fmt.Errorf("no delegate registered for owner %q", task.Owner)
	}
	return d.Execute(ctx, task)
}
