package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/delegate"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/events"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

// Config configures a run.
type Config struct {
	Concurrency int           // Max tasks in flight per wave (default 4)
	TaskTimeout time.Duration // Per-attempt deadline; 0 disables the deadline
	MaxRetries  int           // Retries allowed per task after its first attempt
	MaxPasses   int           // Scheduling passes before the run is declared stalled (default 100)
	Retry       RetryPolicy   // Backoff between attempts of the same task
	Breaker     BreakerPolicy // Per-owner circuit breaker settings
	Bus         *events.Bus   // Optional event sink (nil disables publishing)
}

// DefaultConfig returns the default run configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency: 4,
		TaskTimeout: 2 * time.Minute,
		MaxRetries:  2,
		MaxPasses:   100,
		Retry:       DefaultRetryPolicy(),
		Breaker:     DefaultBreakerPolicy(),
	}
}

// Runner drives a task graph to completion against a delegate.
type Runner struct {
	cfg      Config
	graph    *taskgraph.Graph
	delegate delegate.Delegate

	locks    *EquipmentLocks
	breakers *BreakerRegistry

	mu       sync.Mutex // Serializes outcome bookkeeping and compound transitions
	warnings []string
	fatal    error
}

// NewRunner creates a runner for one graph. Zero config fields fall back to
// defaults.
func NewRunner(cfg Config, graph *taskgraph.Graph, del delegate.Delegate) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = 100
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Breaker == (BreakerPolicy{}) {
		cfg.Breaker = DefaultBreakerPolicy()
	}

	return &Runner{
		cfg:      cfg,
		graph:    graph,
		delegate: del,
		locks:    NewEquipmentLocks(),
		breakers: NewBreakerRegistry(cfg.Breaker),
	}
}

// Run drives the graph until every task settles, the context ends, or the
// pass ceiling is hit. The report is always compiled from the final graph
// state; Run itself errors only on an unrunnable graph or a state machine
// violation, both of which mean a bug rather than failed work.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if _, err := r.graph.Validate(); err != nil {
		return nil, fmt.Errorf("graph is not runnable: %w", err)
	}

	runID := uuid.NewString()
	startedAt := time.Now()
	waits := newRetrySchedule(ctx, r.cfg.Retry)

	r.publish(events.TopicRun, events.RunStartedEvent{
		RunID:      runID,
		TotalTasks: r.graph.Snapshot().Total,
		Timestamp:  time.Now(),
	})

	passes := 0
	stalled := false

	for {
		if ctx.Err() != nil {
			r.cancelRemaining()
			break
		}

		snap := r.graph.Snapshot()
		if snap.Remaining() == 0 {
			break
		}

		if passes >= r.cfg.MaxPasses {
			stalled = true
			r.warn("run stalled: pass ceiling %d reached with %d tasks unfinished", r.cfg.MaxPasses, snap.Remaining())
			break
		}
		passes++

		ready := r.graph.ReadyTasks()
		if len(ready) == 0 {
			// Tasks remain but none can run: the graph is wedged. Force the
			// stuck ones rather than spin or silently give up.
			if forced := r.breakDeadlock(); forced == 0 {
				stalled = true
				r.warn("run stalled: %d tasks can neither run nor be forced ready", snap.Remaining())
				break
			}
			continue
		}

		r.runWave(ctx, ready, waits)

		if err := r.takeFatal(); err != nil {
			return nil, err
		}

		after := r.graph.Snapshot()
		r.publish(events.TopicRun, events.ProgressEvent{
			Pass:      passes,
			Total:     after.Total,
			Completed: after.Completed,
			Failed:    after.Failed,
			Blocked:   after.Blocked,
			Remaining: after.Remaining(),
			Timestamp: time.Now(),
		})
	}

	report := compileReport(runID, r.graph, startedAt, passes, stalled, r.copyWarnings())
	r.publish(events.TopicRun, events.RunFinishedEvent{
		RunID:     report.RunID,
		Completed: report.Completed,
		Failed:    report.Failed,
		Blocked:   report.Blocked,
		Cancelled: report.Cancelled,
		Stalled:   report.Stalled,
		Elapsed:   report.Elapsed,
		Timestamp: time.Now(),
	})

	return report, nil
}

// runWave dispatches every ready task with bounded concurrency and waits
// for the whole wave to settle.
func (r *Runner) runWave(ctx context.Context, ready []string, waits *retrySchedule) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, id := range ready {
		taskID := id // Capture for closure
		g.Go(func() error {
			r.runTask(gctx, taskID, waits)
			return nil // Task failures live in the graph, never abort the wave
		})
	}

	// Wait is only a join point; the closures never return errors.
	_ = g.Wait()
}

// runTask runs one attempt of one ready task and applies the outcome.
func (r *Runner) runTask(ctx context.Context, taskID string, waits *retrySchedule) {
	task, err := r.graph.Get(taskID)
	if err != nil {
		r.recordFatal(err)
		return
	}

	// A retried task sits out its backoff delay first.
	if task.Retries > 0 {
		if !r.waitForRetry(ctx, taskID, waits) {
			return // Run ended during the wait; the cancel sweep settles it
		}
	}

	// Serialize on shared equipment before the clock starts.
	r.locks.LockAll(task.Equipment)
	defer r.locks.UnlockAll(task.Equipment)

	if err := r.graph.MarkInProgress(taskID); err != nil {
		r.recordFatal(err)
		return
	}

	r.publish(events.TopicTask, events.TaskStartedEvent{
		ID:        taskID,
		Owner:     task.Owner,
		Phase:     task.Phase,
		Attempt:   task.Retries + 1,
		Timestamp: time.Now(),
	})

	result, err := r.executeAttempt(ctx, task)
	r.applyOutcome(ctx, task, result, err)
}

// waitForRetry sleeps out the task's backoff delay. Returns false when the
// run ends first.
func (r *Runner) waitForRetry(ctx context.Context, taskID string, waits *retrySchedule) bool {
	delay := waits.next(taskID)
	if delay == backoff.Stop {
		return false
	}

	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

// executeAttempt runs the delegate through the owner's circuit breaker
// under the per-attempt deadline. When the deadline passes, the wait is
// abandoned: the in-flight call keeps running and its eventual result is
// discarded.
func (r *Runner) executeAttempt(ctx context.Context, task *taskgraph.Task) (delegate.Result, error) {
	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if r.cfg.TaskTimeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, r.cfg.TaskTimeout)
	}
	defer cancel()

	type attempt struct {
		result delegate.Result
		err    error
	}

	// Buffered so an abandoned attempt can still deliver and exit.
	done := make(chan attempt, 1)
	cb := r.breakers.Get(task.Owner)

	go func() {
		value, err := cb.Execute(func() (interface{}, error) {
			return r.delegate.Execute(attemptCtx, task)
		})
		result, _ := value.(delegate.Result)
		done <- attempt{result: result, err: err}
	}()

	select {
	case a := <-done:
		return a.result, a.err
	case <-attemptCtx.Done():
		return delegate.Result{}, fmt.Errorf("attempt abandoned: %w", attemptCtx.Err())
	}
}

// applyOutcome turns an attempt result into graph state. Compound
// transitions (fail then retry, fail then cascade) happen under one lock so
// overlapping wave goroutines cannot interleave them.
func (r *Runner) applyOutcome(ctx context.Context, task *taskgraph.Task, result delegate.Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	taskID := task.ID

	switch {
	case err == nil:
		if markErr := r.graph.MarkCompleted(taskID, result.Summary); markErr != nil {
			r.fatalLocked(markErr)
			return
		}
		var duration time.Duration
		if done, getErr := r.graph.Get(taskID); getErr == nil {
			duration = done.FinishedAt.Sub(done.StartedAt)
		}
		r.publish(events.TopicTask, events.TaskCompletedEvent{
			ID:        taskID,
			Owner:     task.Owner,
			Result:    result.Summary,
			Duration:  duration,
			Timestamp: time.Now(),
		})

	case ctx.Err() != nil:
		// The run is shutting down; whatever the delegate reported is
		// teardown noise, not a task failure.
		if markErr := r.graph.MarkCancelled(taskID); markErr != nil {
			r.fatalLocked(markErr)
			return
		}
		r.publish(events.TopicTask, events.TaskCancelledEvent{ID: taskID, Timestamp: time.Now()})

	case task.Retries < r.cfg.MaxRetries:
		if markErr := r.graph.MarkFailed(taskID, err); markErr != nil {
			r.fatalLocked(markErr)
			return
		}
		if markErr := r.graph.Retry(taskID); markErr != nil {
			r.fatalLocked(markErr)
			return
		}
		log.Printf("WARNING: task %q attempt %d failed, retrying: %v", taskID, task.Retries+1, err)
		r.publish(events.TopicTask, events.TaskRetriedEvent{
			ID:        taskID,
			Attempt:   task.Retries + 1,
			Err:       err,
			Timestamp: time.Now(),
		})

	default:
		if markErr := r.graph.MarkFailed(taskID, err); markErr != nil {
			r.fatalLocked(markErr)
			return
		}
		log.Printf("ERROR: task %q failed permanently after %d attempts: %v", taskID, task.Retries+1, err)
		r.publish(events.TopicTask, events.TaskFailedEvent{
			ID:        taskID,
			Owner:     task.Owner,
			Err:       err,
			Attempts:  task.Retries + 1,
			Timestamp: time.Now(),
		})
		r.blockDependents(taskID)
	}
}

// blockDependents sweeps everything downstream of a permanently failed
// task. Only pending tasks block: anything already forced past the failure
// keeps running. Callers must hold r.mu.
func (r *Runner) blockDependents(failedID string) {
	for _, depID := range r.graph.DependentsOf(failedID) {
		dep, err := r.graph.Get(depID)
		if err != nil || dep.Status != taskgraph.TaskPending {
			continue
		}
		reason := fmt.Sprintf("blocked: dependency %q failed", failedID)
		if err := r.graph.MarkBlocked(depID, reason); err != nil {
			continue // Already settled by an overlapping cascade
		}
		log.Printf("WARNING: task %q %s", depID, reason)
		r.publish(events.TopicTask, events.TaskBlockedEvent{
			ID:           depID,
			DependencyID: failedID,
			Timestamp:    time.Now(),
		})
	}
}

// breakDeadlock force-promotes pending tasks whose unmet dependencies are
// all in dead-end statuses. Every promotion is recorded as a run warning;
// wedged work is never dropped silently. Returns the number promoted.
func (r *Runner) breakDeadlock() int {
	forced := 0
	for _, task := range r.graph.Tasks() {
		if task.Status != taskgraph.TaskPending || !r.unmetDepsDead(task) {
			continue
		}
		if err := r.graph.ForceReady(task.ID); err != nil {
			continue
		}
		forced++
		r.warn("deadlock: task %q forced ready, its unmet dependencies can never complete", task.ID)
	}
	return forced
}

// unmetDepsDead reports whether every incomplete dependency sits in a
// status that can no longer change.
func (r *Runner) unmetDepsDead(task *taskgraph.Task) bool {
	for _, depID := range task.DependsOn {
		dep, err := r.graph.Get(depID)
		if err != nil {
			continue // Build strips unknown edges; tolerate hand-built graphs
		}
		switch dep.Status {
		case taskgraph.TaskCompleted:
		case taskgraph.TaskFailed, taskgraph.TaskBlocked, taskgraph.TaskCancelled:
		default:
			return false // Still live, give it time
		}
	}
	return true
}

// cancelRemaining settles every task the run never got to.
func (r *Runner) cancelRemaining() {
	cancelled := 0
	for _, task := range r.graph.Tasks() {
		if task.Status != taskgraph.TaskPending && task.Status != taskgraph.TaskReady {
			continue
		}
		if err := r.graph.MarkCancelled(task.ID); err != nil {
			continue
		}
		cancelled++
		r.publish(events.TopicTask, events.TaskCancelledEvent{ID: task.ID, Timestamp: time.Now()})
	}
	if cancelled > 0 {
		log.Printf("WARNING: run cancelled with %d tasks never finished", cancelled)
	}
}

// warn records a run warning and logs it. Only the Run goroutine calls
// warn; wave goroutines log directly under the outcome lock instead.
func (r *Runner) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.mu.Lock()
	r.warnings = append(r.warnings, msg)
	r.mu.Unlock()
	log.Printf("WARNING: %s", msg)
}

// fatalLocked records a state machine violation. Callers must hold r.mu;
// only the first violation is kept, later ones are noise from the same bug.
func (r *Runner) fatalLocked(err error) {
	if r.fatal == nil {
		r.fatal = err
	}
	log.Printf("ERROR: %v", err)
}

// recordFatal is fatalLocked for callers that don't hold r.mu.
func (r *Runner) recordFatal(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fatalLocked(err)
}

func (r *Runner) takeFatal() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fatal
}

func (r *Runner) copyWarnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

// publish forwards an event when a bus is configured.
func (r *Runner) publish(topic string, event events.Event) {
	if r.cfg.Bus != nil {
		r.cfg.Bus.Publish(topic, event)
	}
}
