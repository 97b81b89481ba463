package engine

import (
	"time"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

// TaskOutcome is one task's final line in the run report.
type TaskOutcome struct {
	ID       string
	Owner    string
	Phase    string
	Status   taskgraph.TaskStatus
	Attempts int           // Executions charged; 0 when the task never ran
	Result   string        // Delegate output for completed tasks
	Err      string        // Failure or blocking reason, empty otherwise
	Duration time.Duration // Last attempt's wall time
}

// Report is the full account of a finished run. Completed, failed and
// blocked are reported separately: a blocked task never ran, a failed one
// ran and lost.
type Report struct {
	RunID     string
	StartedAt time.Time
	Elapsed   time.Duration
	Passes    int  // Scheduling passes consumed
	Stalled   bool // True when the pass ceiling cut the run short

	TotalTasks int
	Completed  int
	Failed     int
	Blocked    int
	Cancelled  int
	Unfinished int // Tasks still pending/ready/in-progress; nonzero only when stalled

	Warnings []string      // Deadlock breaks, stall notices
	Outcomes []TaskOutcome // One entry per task, in blueprint order
}

// Succeeded reports whether every task completed.
func (r *Report) Succeeded() bool {
	return r.TotalTasks == r.Completed
}

// compileReport reads the settled graph into a Report.
func compileReport(runID string, graph *taskgraph.Graph, startedAt time.Time, passes int, stalled bool, warnings []string) *Report {
	snap := graph.Snapshot()

	report := &Report{
		RunID:      runID,
		StartedAt:  startedAt,
		Elapsed:    time.Since(startedAt),
		Passes:     passes,
		Stalled:    stalled,
		TotalTasks: snap.Total,
		Completed:  snap.Completed,
		Failed:     snap.Failed,
		Blocked:    snap.Blocked,
		Cancelled:  snap.Cancelled,
		Unfinished: snap.Remaining(),
		Warnings:   warnings,
	}

	for _, task := range graph.Tasks() {
		outcome := TaskOutcome{
			ID:       task.ID,
			Owner:    task.Owner,
			Phase:    task.Phase,
			Status:   task.Status,
			Attempts: attemptsOf(task),
			Result:   task.Result,
		}
		if task.Err != nil {
			outcome.Err = task.Err.Error()
		}
		if !task.StartedAt.IsZero() && !task.FinishedAt.IsZero() {
			outcome.Duration = task.FinishedAt.Sub(task.StartedAt)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

// attemptsOf counts executions. Tasks that never reached a delegate have a
// zero StartedAt and no attempts.
func attemptsOf(task *taskgraph.Task) int {
	if task.StartedAt.IsZero() {
		return 0
	}
	return task.Retries + 1
}
