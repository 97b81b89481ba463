package taskgraph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/toposort"
)

var (
	// ErrNotFound reports an id the graph has never seen.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidTransition reports a lifecycle move the state machine forbids.
	// It signals a scheduler bug, not a task failure, and must never be
	// swallowed or retried.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// validTransitions is the task lifecycle. Statuses missing from the map are
// terminal. TaskInProgress -> TaskCancelled happens only when the run shuts
// down mid-attempt; nothing interrupts a delegate that is already working.
var validTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskReady, TaskBlocked, TaskCancelled},
	TaskReady:      {TaskInProgress, TaskBlocked, TaskCancelled},
	TaskInProgress: {TaskCompleted, TaskFailed, TaskCancelled},
	TaskFailed:     {TaskReady, TaskBlocked},
}

func canTransition(from, to TaskStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Graph tracks task state and answers scheduling questions.
// All methods are safe for concurrent use.
type Graph struct {
	mu         sync.RWMutex
	tasks      map[string]*Task    // All tasks indexed by ID
	order      []string            // Blueprint order, for stable reporting
	dependents map[string][]string // Maps taskID -> tasks that directly depend on it
}

// newGraph indexes tasks and builds the reverse dependency map.
// Build is the only caller; it guarantees unique ids and acyclic edges.
func newGraph(tasks map[string]*Task, order []string) *Graph {
	g := &Graph{
		tasks:      tasks,
		order:      order,
		dependents: make(map[string][]string, len(tasks)),
	}
	for _, id := range order {
		for _, depID := range tasks[id].DependsOn {
			g.dependents[depID] = append(g.dependents[depID], id)
		}
	}
	return g
}

// ReadyTasks promotes every pending task whose dependencies have all
// completed, then returns the ids of every task currently ready, including
// retried and force-promoted ones. Order is sorted for determinism but
// carries no priority.
func (g *Graph) ReadyTasks() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ready := []string{}
	for id, task := range g.tasks {
		if task.Status == TaskPending && g.dependenciesCompleted(task) {
			task.Status = TaskReady
		}
		if task.Status == TaskReady {
			ready = append(ready, id)
		}
	}

	sort.Strings(ready)
	return ready
}

// dependenciesCompleted reports whether every dependency finished
// successfully. Callers must hold the lock.
func (g *Graph) dependenciesCompleted(task *Task) bool {
	for _, depID := range task.DependsOn {
		dep, exists := g.tasks[depID]
		if !exists || dep.Status != TaskCompleted {
			return false
		}
	}
	return true
}

// transition moves a task to the given status after validating the move.
// Callers must hold the lock.
func (g *Graph) transition(id string, to TaskStatus) (*Task, error) {
	task, exists := g.tasks[id]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if !canTransition(task.Status, to) {
		return nil, fmt.Errorf("%w: task %q is %s, cannot become %s", ErrInvalidTransition, id, task.Status, to)
	}
	task.Status = to
	return task, nil
}

// MarkInProgress records that a delegate started working the task.
func (g *Graph) MarkInProgress(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, err := g.transition(id, TaskInProgress)
	if err != nil {
		return err
	}
	task.StartedAt = time.Now()
	task.FinishedAt = time.Time{}
	return nil
}

// MarkCompleted records terminal success and stores the delegate's result.
func (g *Graph) MarkCompleted(id string, result string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, err := g.transition(id, TaskCompleted)
	if err != nil {
		return err
	}
	task.Result = result
	task.Err = nil
	task.FinishedAt = time.Now()
	return nil
}

// MarkFailed records a failed attempt. The task stays retryable until the
// scheduler decides its budget is spent.
func (g *Graph) MarkFailed(id string, cause error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, err := g.transition(id, TaskFailed)
	if err != nil {
		return err
	}
	task.Err = cause
	task.FinishedAt = time.Now()
	return nil
}

// MarkBlocked takes a task out of play because a dependency failed for good.
func (g *Graph) MarkBlocked(id string, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, err := g.transition(id, TaskBlocked)
	if err != nil {
		return err
	}
	task.Err = errors.New(reason)
	return nil
}

// MarkCancelled records that the run ended before the task could finish.
func (g *Graph) MarkCancelled(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, err := g.transition(id, TaskCancelled)
	return err
}

// Retry moves a failed task back to ready and charges one retry.
func (g *Graph) Retry(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, exists := g.tasks[id]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if task.Status != TaskFailed {
		return fmt.Errorf("%w: task %q is %s, only failed tasks retry", ErrInvalidTransition, id, task.Status)
	}
	task.Status = TaskReady
	task.Retries++
	task.Err = nil
	task.Result = ""
	return nil
}

// ForceReady promotes a pending task whose dependencies will never complete.
// The scheduler uses it to break deadlocks; announcing the promotion is the
// caller's job.
func (g *Graph) ForceReady(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, exists := g.tasks[id]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if task.Status != TaskPending {
		return fmt.Errorf("%w: task %q is %s, only pending tasks can be forced ready", ErrInvalidTransition, id, task.Status)
	}
	task.Status = TaskReady
	return nil
}

// DependentsOf returns every task downstream of id, directly or through
// other tasks, in sorted order. Unknown ids return nil.
func (g *Graph) DependentsOf(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, exists := g.tasks[id]; !exists {
		return nil
	}

	seen := make(map[string]bool)
	var walk func(string)
	walk = func(cur string) {
		for _, depID := range g.dependents[cur] {
			if !seen[depID] {
				seen[depID] = true
				walk(depID)
			}
		}
	}
	walk(id)

	out := make([]string, 0, len(seen))
	for depID := range seen {
		out = append(out, depID)
	}
	sort.Strings(out)
	return out
}

// Snapshot is a point-in-time census of the graph.
type Snapshot struct {
	Total      int
	Pending    int
	Ready      int
	InProgress int
	Completed  int
	Failed     int
	Blocked    int
	Cancelled  int
}

// Remaining counts tasks that still want scheduling.
func (s Snapshot) Remaining() int {
	return s.Pending + s.Ready + s.InProgress
}

// PercentComplete reports progress as completed tasks over total.
func (s Snapshot) PercentComplete() float64 {
	if s.Total == 0 {
		return 100
	}
	return float64(s.Completed) / float64(s.Total) * 100
}

// Snapshot counts tasks by status.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := Snapshot{Total: len(g.tasks)}
	for _, task := range g.tasks {
		switch task.Status {
		case TaskPending:
			snap.Pending++
		case TaskReady:
			snap.Ready++
		case TaskInProgress:
			snap.InProgress++
		case TaskCompleted:
			snap.Completed++
		case TaskFailed:
			snap.Failed++
		case TaskBlocked:
			snap.Blocked++
		case TaskCancelled:
			snap.Cancelled++
		}
	}
	return snap
}

// Validate runs topological sort using gammazero/toposort.
// Returns ordered task IDs, or an error when a dependency is missing or a
// cycle exists. Graphs produced by Build always pass.
func (g *Graph) Validate() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	// First, verify all dependencies exist
	for id, task := range g.tasks {
		for _, depID := range task.DependsOn {
			if _, exists := g.tasks[depID]; !exists {
				return nil, fmt.Errorf("task %q depends on non-existent task %q", id, depID)
			}
		}
	}

	// Build edges for topological sort
	var edges []toposort.Edge
	for id, task := range g.tasks {
		if len(task.DependsOn) == 0 {
			// Task with no dependencies - add edge from nil to ensure it's included
			edges = append(edges, toposort.Edge{nil, id})
		} else {
			for _, depID := range task.DependsOn {
				// Edge (depID, id) means depID must come before id
				edges = append(edges, toposort.Edge{depID, id})
			}
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("graph contains cycle: %w", err)
	}

	// Convert []interface{} to []string
	order := make([]string, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(string))
		}
	}

	// Verify all tasks are in the sorted result (catches disconnected components)
	if len(order) != len(g.tasks) {
		missing := []string{}
		found := make(map[string]bool)
		for _, id := range order {
			found[id] = true
		}
		for id := range g.tasks {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("topological sort lost %d tasks: %s", len(missing), strings.Join(missing, ", "))
	}

	return order, nil
}

// Get returns a copy of the task. Mutations go through the Mark methods.
func (g *Graph) Get(id string) (*Task, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	task, exists := g.tasks[id]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return cloneTask(task), nil
}

// Tasks returns copies of every task in blueprint order.
func (g *Graph) Tasks() []*Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	tasks := make([]*Task, 0, len(g.order))
	for _, id := range g.order {
		tasks = append(tasks, cloneTask(g.tasks[id]))
	}
	return tasks
}

func cloneTask(task *Task) *Task {
	if task == nil {
		return nil
	}

	cp := *task
	if task.DependsOn != nil {
		cp.DependsOn = append([]string(nil), task.DependsOn...)
	}
	if task.Equipment != nil {
		cp.Equipment = append([]string(nil), task.Equipment...)
	}
	return &cp
}
