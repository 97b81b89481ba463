package crew

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/backoffice"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

func TestWorkerFilesPermitAndOrdersMaterials(t *testing.T) {
	supply := backoffice.NewSupplyHouse("acme")
	office := backoffice.NewPermitOffice("springfield")
	worker := &Worker{Trade: "plumber", Supply: supply, Permits: office}

	task := &taskgraph.Task{ID: "rough-plumbing", Owner: "plumber", Phase: "plumbing"}
	result, err := worker.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(result.Summary, "rough-plumbing") {
		t.Errorf("summary = %q, want the task named", result.Summary)
	}
	if result.Details["permit"] == "" {
		t.Error("no permit number recorded")
	}
	if result.Details["materials"] == "" {
		t.Error("no materials order recorded")
	}

	permit, err := office.Status(result.Details["permit"])
	if err != nil {
		t.Fatalf("Status(%q) error = %v", result.Details["permit"], err)
	}
	if permit.Kind != "plumbing" || permit.Status != backoffice.PermitApproved {
		t.Errorf("permit = %s/%s, want plumbing/approved", permit.Kind, permit.Status)
	}
}

func TestWorkerFalseStartsThenSucceeds(t *testing.T) {
	worker := &Worker{
		Trade:     "mason",
		FailFirst: map[string]int{"footings": 2},
	}
	task := &taskgraph.Task{ID: "footings", Owner: "mason", Phase: "sitework"}

	for attempt := 1; attempt <= 2; attempt++ {
		_, err := worker.Execute(context.Background(), task)
		if err == nil {
			t.Fatalf("Execute() attempt %d error = nil, want false start", attempt)
		}
		if !strings.Contains(err.Error(), "false start") {
			t.Errorf("attempt %d error = %v, want false start", attempt, err)
		}
	}

	result, err := worker.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() attempt 3 error = %v", err)
	}
	if result.Details["attempt"] != "3" {
		t.Errorf("attempt detail = %q, want 3", result.Details["attempt"])
	}
}

func TestWorkerBreakdownAlwaysFails(t *testing.T) {
	worker := &Worker{
		Trade:      "roofer",
		Breakdowns: map[string]bool{"roofing": true},
	}
	task := &taskgraph.Task{ID: "roofing", Owner: "roofer", Phase: "roofing"}

	for attempt := 0; attempt < 3; attempt++ {
		_, err := worker.Execute(context.Background(), task)
		if err == nil || !strings.Contains(err.Error(), "equipment breakdown") {
			t.Fatalf("Execute() error = %v, want equipment breakdown", err)
		}
	}
}

func TestWorkerOutOfStockPropagates(t *testing.T) {
	supply := backoffice.NewSupplyHouse("acme")
	if _, err := supply.Order("panel-200a", 25); err != nil {
		t.Fatalf("draining stock: %v", err)
	}

	worker := &Worker{Trade: "electrician", Supply: supply}
	task := &taskgraph.Task{ID: "rough-electrical", Owner: "electrician", Phase: "electrical"}

	_, err := worker.Execute(context.Background(), task)
	if !errors.Is(err, backoffice.ErrOutOfStock) {
		t.Errorf("Execute() error = %v, want ErrOutOfStock", err)
	}
}

func TestWorkerConfirmsSelections(t *testing.T) {
	desk := NewRFIDesk(4, AllowanceAnswers(map[string]string{"paint": "eggshell, two coats"}))
	ctx, cancel := context.WithCancel(context.Background())
	desk.Start(ctx)
	defer func() {
		cancel()
		desk.Stop()
	}()

	worker := &Worker{Trade: "painter", RFIs: desk}
	task := &taskgraph.Task{ID: "paint", Owner: "painter", Phase: "paint"}

	result, err := worker.Execute(ctx, task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Details["selections"] != "eggshell, two coats" {
		t.Errorf("selections = %q, want the allowance choice", result.Details["selections"])
	}
}

func TestWorkerSkipsMissingServices(t *testing.T) {
	worker := &Worker{Trade: "carpenter"}
	task := &taskgraph.Task{ID: "framing", Owner: "carpenter", Phase: "framing"}

	result, err := worker.Execute(context.Background(), task)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, ok := result.Details["materials"]; ok {
		t.Error("materials recorded with no supply house attached")
	}
	if _, ok := result.Details["permit"]; ok {
		t.Error("permit recorded with no permit office attached")
	}
}

func TestWorkerStopsWhenCancelled(t *testing.T) {
	worker := &Worker{Trade: "carpenter", WorkDelay: time.Second}
	task := &taskgraph.Task{ID: "framing", Owner: "carpenter", Phase: "trim"}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := worker.Execute(ctx, task)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Execute() kept working after cancellation")
	}
}
