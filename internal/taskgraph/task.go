package taskgraph

import (
	"fmt"
	"time"
)

// TaskStatus represents the current state of a task.
type TaskStatus int

const (
	TaskPending    TaskStatus = iota // Waiting for dependencies
	TaskReady                        // All dependencies completed, awaiting dispatch
	TaskInProgress                   // A delegate is working it
	TaskCompleted                    // Finished successfully
	TaskFailed                       // Last attempt errored; retryable until the budget is spent
	TaskBlocked                      // Will never run because a dependency failed for good
	TaskCancelled                    // The run ended before the task could finish
)

// String returns the lowercase name used in logs, reports and the archive.
func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskReady:
		return "ready"
	case TaskInProgress:
		return "in_progress"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	case TaskBlocked:
		return "blocked"
	case TaskCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of String.
func ParseStatus(s string) (TaskStatus, error) {
	for st := TaskPending; st <= TaskCancelled; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return TaskPending, fmt.Errorf("unknown task status %q", s)
}

// Terminal reports whether the status permits no further transition.
// TaskFailed is not terminal: the scheduler decides when the retry budget
// is spent.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskBlocked || s == TaskCancelled
}

// RawTask is a task as it arrives from a blueprint, before validation.
// Build copies what it needs, so callers may reuse the slice.
type RawTask struct {
	ID          string   `json:"id" yaml:"id"`
	Owner       string   `json:"owner" yaml:"owner"`
	Description string   `json:"description" yaml:"description"`
	Phase       string   `json:"phase" yaml:"phase"`
	DependsOn   []string `json:"depends_on" yaml:"depends_on"`
	Equipment   []string `json:"equipment,omitempty" yaml:"equipment,omitempty"`
}

// Task represents a unit of work tracked by the graph.
type Task struct {
	ID          string   // Unique identifier, never reused
	Owner       string   // Which crew works it; opaque to the scheduler
	Description string   // Human-readable summary
	Phase       string   // Grouping label for display, no scheduling effect
	DependsOn   []string // Task IDs that must complete first
	Equipment   []string // Shared site equipment held exclusively while running

	Status     TaskStatus
	Retries    int       // Attempts after the first
	Result     string    // Output from the delegate (populated on completion)
	Err        error     // Why the task failed or was blocked
	StartedAt  time.Time // Most recent attempt start
	FinishedAt time.Time // Most recent attempt end
}
