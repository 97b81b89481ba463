package events

import (
	"time"
)

// Event is the base interface for everything announced on the bus.
type Event interface {
	EventType() string
	TaskID() string
}

// Topic constants
const (
	TopicTask = "task"
	TopicRun  = "run"
)

// Event type constants
const (
	EventTypeRunStarted    = "run.started"
	EventTypeRunFinished   = "run.finished"
	EventTypeProgress      = "run.progress"
	EventTypeTaskStarted   = "task.started"
	EventTypeTaskCompleted = "task.completed"
	EventTypeTaskRetried   = "task.retried"
	EventTypeTaskFailed    = "task.failed"
	EventTypeTaskBlocked   = "task.blocked"
	EventTypeTaskCancelled = "task.cancelled"
)

// RunStartedEvent is published once when the scheduler accepts a graph.
type RunStartedEvent struct {
	RunID      string
	TotalTasks int
	Timestamp  time.Time
}

func (e RunStartedEvent) EventType() string { return EventTypeRunStarted }
func (e RunStartedEvent) TaskID() string    { return "" }

// RunFinishedEvent is published once after the final report is compiled.
type RunFinishedEvent struct {
	RunID     string
	Completed int
	Failed    int
	Blocked   int
	Cancelled int
	Stalled   bool
	Elapsed   time.Duration
	Timestamp time.Time
}

func (e RunFinishedEvent) EventType() string { return EventTypeRunFinished }
func (e RunFinishedEvent) TaskID() string    { return "" }

// ProgressEvent is published after every scheduling pass.
type ProgressEvent struct {
	Pass      int
	Total     int
	Completed int
	Failed    int
	Blocked   int
	Remaining int
	Timestamp time.Time
}

func (e ProgressEvent) EventType() string { return EventTypeProgress }
func (e ProgressEvent) TaskID() string    { return "" }

// TaskStartedEvent is published when a delegate picks up a task.
type TaskStartedEvent struct {
	ID        string
	Owner     string
	Phase     string
	Attempt   int // 1-based
	Timestamp time.Time
}

func (e TaskStartedEvent) EventType() string { return EventTypeTaskStarted }
func (e TaskStartedEvent) TaskID() string    { return e.ID }

// TaskCompletedEvent is published when a task finishes successfully.
type TaskCompletedEvent struct {
	ID        string
	Owner     string
	Result    string
	Duration  time.Duration
	Timestamp time.Time
}

func (e TaskCompletedEvent) EventType() string { return EventTypeTaskCompleted }
func (e TaskCompletedEvent) TaskID() string    { return e.ID }

// TaskRetriedEvent is published when a failed attempt is sent back to the
// ready set.
type TaskRetriedEvent struct {
	ID        string
	Attempt   int // attempts so far
	Err       error
	Timestamp time.Time
}

func (e TaskRetriedEvent) EventType() string { return EventTypeTaskRetried }
func (e TaskRetriedEvent) TaskID() string    { return e.ID }

// TaskFailedEvent is published when a task fails with no retry budget left.
type TaskFailedEvent struct {
	ID        string
	Owner     string
	Err       error
	Attempts  int
	Timestamp time.Time
}

func (e TaskFailedEvent) EventType() string { return EventTypeTaskFailed }
func (e TaskFailedEvent) TaskID() string    { return e.ID }

// TaskBlockedEvent is published when a permanent failure takes a downstream
// task out of play.
type TaskBlockedEvent struct {
	ID           string
	DependencyID string // the task whose failure caused the block
	Timestamp    time.Time
}

func (e TaskBlockedEvent) EventType() string { return EventTypeTaskBlocked }
func (e TaskBlockedEvent) TaskID() string    { return e.ID }

// TaskCancelledEvent is published when run shutdown overtakes a task.
type TaskCancelledEvent struct {
	ID        string
	Timestamp time.Time
}

func (e TaskCancelledEvent) EventType() string { return EventTypeTaskCancelled }
func (e TaskCancelledEvent) TaskID() string    { return e.ID }
