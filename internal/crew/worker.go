package crew

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/backoffice"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/delegate"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

// Worker is one trade crew. It executes every task owned by its trade:
// filing permits, ordering materials, raising RFIs, and putting in the
// labor. Any of the back-office services may be nil, in which case that
// step is skipped.
type Worker struct {
	Trade   string
	Supply  *backoffice.SupplyHouse
	Permits *backoffice.PermitOffice
	RFIs    *RFIDesk

	WorkDelay time.Duration // Simulated labor time per task

	FailFirst  map[string]int  // Task ID -> number of leading attempts that false-start
	Breakdowns map[string]bool // Task IDs that always fail on equipment breakdown

	mu       sync.Mutex
	attempts map[string]int
}

// Execute performs one attempt of one task.
func (w *Worker) Execute(ctx context.Context, task *taskgraph.Task) (delegate.Result, error) {
	attempt := w.recordAttempt(task.ID)

	if w.Breakdowns[task.ID] {
		return delegate.Result{}, fmt.Errorf("%s crew cannot finish %s: equipment breakdown", w.Trade, task.ID)
	}
	if attempt <= w.FailFirst[task.ID] {
		return delegate.Result{}, fmt.Errorf("%s crew false start on %s (attempt %d)", w.Trade, task.ID, attempt)
	}

	details := map[string]string{
		"phase":   task.Phase,
		"attempt": strconv.Itoa(attempt),
	}

	if kind := permitKind(task.Phase); kind != "" && w.Permits != nil {
		permit, err := w.Permits.File(kind)
		if err != nil {
			return delegate.Result{}, fmt.Errorf("permit for %s: %w", task.ID, err)
		}
		details["permit"] = permit.Number
	}

	if w.Supply != nil {
		var total float64
		orders := 0
		for _, item := range billOfMaterials(task.Phase) {
			quote, err := w.Supply.Order(item.sku, item.quantity)
			if err != nil {
				return delegate.Result{}, fmt.Errorf("materials for %s: %w", task.ID, err)
			}
			total += quote.Total
			orders++
		}
		if orders > 0 {
			details["materials"] = fmt.Sprintf("%d orders, $%.2f", orders, total)
		}
	}

	if needsSelections(task.Phase) && w.RFIs != nil {
		answer, err := w.RFIs.Ask(ctx, task.ID, fmt.Sprintf("confirm %s selections for %s", task.Phase, task.ID))
		if err != nil {
			return delegate.Result{}, fmt.Errorf("rfi for %s: %w", task.ID, err)
		}
		details["selections"] = answer
	}

	if w.WorkDelay > 0 {
		select {
		case <-time.After(w.WorkDelay):
		case <-ctx.Done():
			return delegate.Result{}, ctx.Err()
		}
	}

	return delegate.Result{
		Summary: fmt.Sprintf("%s crew finished %s", w.Trade, task.ID),
		Details: details,
	}, nil
}

func (w *Worker) recordAttempt(taskID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.attempts == nil {
		w.attempts = make(map[string]int)
	}
	w.attempts[taskID]++
	return w.attempts[taskID]
}

// permitKind maps a work phase to the permit class it must file before
// starting, or "" when no permit is needed.
func permitKind(phase string) string {
	switch phase {
	case "permits":
		return "building"
	case "plumbing":
		return "plumbing"
	case "electrical":
		return "electrical"
	case "hvac":
		return "mechanical"
	default:
		return ""
	}
}

// needsSelections reports whether a phase works from owner-chosen
// allowances that must be confirmed through an RFI before installing.
func needsSelections(phase string) bool {
	switch phase {
	case "paint", "fixtures-plumbing", "fixtures-electrical":
		return true
	}
	return false
}

type materialOrder struct {
	sku      string
	quantity int
}

// billOfMaterials lists what each phase draws from the supply house.
// Quantities are sized for one residential build; phases without material
// needs return nil.
func billOfMaterials(phase string) []materialOrder {
	switch phase {
	case "foundation":
		return []materialOrder{
			{sku: "concrete-mix", quantity: 18},
			{sku: "rebar-10mm", quantity: 120},
		}
	case "framing":
		return []materialOrder{
			{sku: "lumber-2x4", quantity: 900},
			{sku: "lumber-2x10", quantity: 140},
			{sku: "sheathing-osb", quantity: 70},
		}
	case "roof-deck":
		return []materialOrder{
			{sku: "sheathing-osb", quantity: 40},
		}
	case "roofing":
		return []materialOrder{
			{sku: "roof-underlay", quantity: 6},
			{sku: "roof-shingle", quantity: 48},
		}
	case "exterior":
		return []materialOrder{
			{sku: "window-vinyl", quantity: 14},
			{sku: "door-exterior", quantity: 3},
		}
	case "plumbing":
		return []materialOrder{
			{sku: "pipe-pvc-40", quantity: 60},
			{sku: "pipe-pex-half", quantity: 8},
		}
	case "electrical":
		return []materialOrder{
			{sku: "wire-12awg", quantity: 12},
			{sku: "panel-200a", quantity: 1},
		}
	case "hvac":
		return []materialOrder{
			{sku: "duct-flex", quantity: 10},
		}
	case "insulation":
		return []materialOrder{
			{sku: "insulation-batt", quantity: 40},
		}
	case "drywall":
		return []materialOrder{
			{sku: "drywall-sheet", quantity: 160},
		}
	case "paint":
		return []materialOrder{
			{sku: "paint-interior", quantity: 8},
		}
	case "trim":
		return []materialOrder{
			{sku: "trim-casing", quantity: 60},
		}
	case "fixtures-plumbing":
		return []materialOrder{
			{sku: "fixture-sink", quantity: 1},
		}
	case "fixtures-electrical":
		return []materialOrder{
			{sku: "fixture-light", quantity: 12},
		}
	default:
		return nil
	}
}
