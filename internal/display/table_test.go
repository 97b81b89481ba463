package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/archive"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/engine"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

func init() {
	// Escape codes would make the assertions depend on the test terminal.
	color.NoColor = true
}

func TestRenderPlan(t *testing.T) {
	var buf bytes.Buffer
	RenderPlan(&buf, "residential", []taskgraph.RawTask{
		{ID: "site-survey", Owner: "surveyor", Phase: "sitework"},
		{ID: "excavation", Owner: "excavator", Phase: "sitework",
			DependsOn: []string{"site-survey"}, Equipment: []string{"excavator"}},
	})

	out := buf.String()
	if !strings.Contains(out, "Blueprint residential, 2 tasks") {
		t.Errorf("plan header missing from output:\n%s", out)
	}
	for _, want := range []string{"TASK", "CREW", "DEPENDS ON", "site-survey", "excavation"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	var headerLine, surveyLine string
	for _, line := range lines {
		if strings.HasPrefix(line, "TASK") {
			headerLine = line
		}
		if strings.HasPrefix(line, "site-survey") {
			surveyLine = line
		}
	}
	if headerLine == "" || surveyLine == "" {
		t.Fatalf("missing header or task row:\n%s", out)
	}
	// The CREW column starts at the same offset in every row.
	if strings.Index(headerLine, "CREW") != strings.Index(surveyLine, "surveyor") {
		t.Errorf("columns not aligned:\n%s\n%s", headerLine, surveyLine)
	}
}

func TestRenderReport(t *testing.T) {
	var buf bytes.Buffer
	RenderReport(&buf, &engine.Report{
		RunID:      "run-777",
		Elapsed:    2500 * time.Millisecond,
		Passes:     4,
		TotalTasks: 3,
		Completed:  1,
		Failed:     1,
		Blocked:    1,
		Outcomes: []engine.TaskOutcome{
			{ID: "excavation", Owner: "excavator", Phase: "sitework",
				Status: taskgraph.TaskCompleted, Attempts: 1,
				Result: "excavator crew finished excavation", Duration: 120 * time.Millisecond},
			{ID: "footings", Owner: "mason", Phase: "foundation",
				Status: taskgraph.TaskFailed, Attempts: 3,
				Err: "mason crew cannot finish footings: equipment breakdown"},
			{ID: "foundation-walls", Owner: "mason", Phase: "foundation",
				Status: taskgraph.TaskBlocked, Err: "blocked: dependency \"footings\" failed"},
		},
		Warnings: []string{"dropped dependency \"soil-report\" of task \"excavation\": no such task"},
	})

	out := buf.String()
	for _, want := range []string{
		"Run run-777",
		"completed", "failed", "blocked",
		"equipment breakdown",
		"1/3 completed, 1 failed, 1 blocked, 0 cancelled in 2.5s, 4 passes",
		"WARNING: dropped dependency",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "stalled") {
		t.Errorf("report output mentions stalled for a finished run:\n%s", out)
	}
}

func TestRenderReportStalled(t *testing.T) {
	var buf bytes.Buffer
	RenderReport(&buf, &engine.Report{
		RunID:      "run-888",
		Passes:     100,
		Stalled:    true,
		TotalTasks: 1,
	})

	if !strings.Contains(buf.String(), "run stalled before every task finished") {
		t.Errorf("stalled run not flagged:\n%s", buf.String())
	}
}

func TestRenderWarningsSilentWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderWarnings(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("RenderWarnings(nil) wrote %q, want nothing", buf.String())
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	RenderHistory(&buf, []archive.RunSummary{
		{RunID: "run-new", StartedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
			Elapsed: 3 * time.Second, TotalTasks: 22, Completed: 22},
		{RunID: "run-old", StartedAt: time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC),
			Elapsed: 2 * time.Second, TotalTasks: 22, Completed: 20, Failed: 1, Blocked: 1, Stalled: true},
	})

	out := buf.String()
	for _, want := range []string{"RUN", "run-new", "run-old", "stalled"} {
		if !strings.Contains(out, want) {
			t.Errorf("history output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderHistory(&buf, nil)
	if !strings.Contains(buf.String(), "no archived runs") {
		t.Errorf("empty history output = %q", buf.String())
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short untouched", "fits", 10, "fits"},
		{"exact untouched", "1234567890", 10, "1234567890"},
		{"long clipped", "a very long note about the task", 10, "a very ..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clip(tt.in, tt.limit); got != tt.want {
				t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.limit, got)
			}
		})
	}
}
