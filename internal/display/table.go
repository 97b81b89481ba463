// Package display renders blueprints, run reports, and archive history
// for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/archive"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/backoffice"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/engine"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

// table lays out rows with columns wide enough for every cell.
type table struct {
	headers []string
	rows    [][]string
	widths  []int
}

func newTable(headers ...string) *table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &table{headers: headers, widths: widths}
}

func (t *table) addRow(cells ...string) {
	for i, cell := range cells {
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, cells)
}

// render writes the table. paint may be nil; otherwise it picks a color
// for each cell, returning nil for plain text.
func (t *table) render(w io.Writer, paint func(row []string, col int) *color.Color) {
	header := color.New(color.FgCyan, color.Bold)
	for i, h := range t.headers {
		header.Fprintf(w, "%-*s  ", t.widths[i], h)
	}
	fmt.Fprintln(w)

	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", t.widths[i]))
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintln(w)

	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(t.widths) {
				continue
			}
			var c *color.Color
			if paint != nil {
				c = paint(row, i)
			}
			if c != nil {
				c.Fprintf(w, "%-*s  ", t.widths[i], cell)
			} else {
				fmt.Fprintf(w, "%-*s  ", t.widths[i], cell)
			}
		}
		fmt.Fprintln(w)
	}
}

func statusPaint(status taskgraph.TaskStatus) *color.Color {
	switch status {
	case taskgraph.TaskCompleted:
		return color.New(color.FgGreen)
	case taskgraph.TaskFailed:
		return color.New(color.FgRed)
	case taskgraph.TaskBlocked:
		return color.New(color.FgYellow)
	case taskgraph.TaskCancelled:
		return color.New(color.FgHiBlack)
	case taskgraph.TaskInProgress:
		return color.New(color.FgCyan)
	default:
		return nil
	}
}

func orDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}

// RenderPlan prints the blueprint as a task table in build order.
func RenderPlan(w io.Writer, name string, tasks []taskgraph.RawTask) {
	fmt.Fprintf(w, "Blueprint %s, %d tasks\n\n", name, len(tasks))

	t := newTable("TASK", "CREW", "PHASE", "DEPENDS ON", "EQUIPMENT")
	for _, task := range tasks {
		t.addRow(task.ID, task.Owner, task.Phase, orDash(task.DependsOn), orDash(task.Equipment))
	}
	t.render(w, nil)
}

// RenderWarnings prints build and run warnings in yellow.
func RenderWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	yellow := color.New(color.FgYellow)
	for _, warning := range warnings {
		yellow.Fprintf(w, "WARNING: %s\n", warning)
	}
}

// RenderReport prints the per-task outcomes and the run summary.
func RenderReport(w io.Writer, report *engine.Report) {
	fmt.Fprintf(w, "Run %s\n\n", report.RunID)

	t := newTable("TASK", "CREW", "PHASE", "STATUS", "ATTEMPTS", "TIME", "NOTES")
	for _, outcome := range report.Outcomes {
		attempts := "-"
		if outcome.Attempts > 0 {
			attempts = fmt.Sprintf("%d", outcome.Attempts)
		}
		elapsed := "-"
		if outcome.Duration > 0 {
			elapsed = outcome.Duration.Round(time.Millisecond).String()
		}
		notes := outcome.Result
		if outcome.Err != "" {
			notes = outcome.Err
		}
		t.addRow(outcome.ID, outcome.Owner, outcome.Phase,
			outcome.Status.String(), attempts, elapsed, clip(notes, 72))
	}
	t.render(w, func(row []string, col int) *color.Color {
		if col != 3 {
			return nil
		}
		status, err := taskgraph.ParseStatus(row[3])
		if err != nil {
			return nil
		}
		return statusPaint(status)
	})

	fmt.Fprintln(w)
	summary := fmt.Sprintf("%d/%d completed, %d failed, %d blocked, %d cancelled in %s, %d passes",
		report.Completed, report.TotalTasks, report.Failed, report.Blocked,
		report.Cancelled, report.Elapsed.Round(time.Millisecond), report.Passes)
	if report.Succeeded() {
		color.New(color.FgGreen, color.Bold).Fprintln(w, summary)
	} else {
		color.New(color.FgRed, color.Bold).Fprintln(w, summary)
	}
	if report.Stalled {
		color.New(color.FgRed).Fprintln(w, "run stalled before every task finished")
	}
	RenderWarnings(w, report.Warnings)
}

// RenderCatalog prints the supply house catalog.
func RenderCatalog(w io.Writer, supplier string, materials []backoffice.Material) {
	fmt.Fprintf(w, "%s, %d materials\n\n", supplier, len(materials))

	t := newTable("SKU", "MATERIAL", "UNIT COST", "LEAD", "IN STOCK")
	for _, m := range materials {
		t.addRow(m.SKU, m.Name,
			fmt.Sprintf("$%.2f", m.UnitCost),
			fmt.Sprintf("%dd", m.LeadDays),
			fmt.Sprintf("%d", m.InStock))
	}
	t.render(w, nil)
}

// RenderHistory prints archived run summaries, newest first.
func RenderHistory(w io.Writer, runs []archive.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no archived runs")
		return
	}

	t := newTable("RUN", "STARTED", "ELAPSED", "TASKS", "COMPLETED", "FAILED", "BLOCKED", "FLAGS")
	for _, run := range runs {
		flags := "-"
		if run.Stalled {
			flags = "stalled"
		}
		t.addRow(run.RunID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Elapsed.Round(time.Millisecond).String(),
			fmt.Sprintf("%d", run.TotalTasks),
			fmt.Sprintf("%d", run.Completed),
			fmt.Sprintf("%d", run.Failed),
			fmt.Sprintf("%d", run.Blocked),
			flags)
	}
	t.render(w, nil)
}
