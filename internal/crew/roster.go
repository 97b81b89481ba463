package crew

import (
	"context"
	"strings"
	"time"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/backoffice"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/delegate"
)

// RosterOptions configures every worker staffed onto the site.
type RosterOptions struct {
	Supply     *backoffice.SupplyHouse
	Permits    *backoffice.PermitOffice
	RFIs       *RFIDesk
	WorkDelay  time.Duration
	FailFirst  map[string]int // Task ID -> attempts that false-start before succeeding
	Breakdowns []string       // Task IDs that always fail
}

// Trades lists every trade the roster staffs.
func Trades() []string {
	return []string{
		"surveyor",
		"architect",
		"expeditor",
		"excavator",
		"mason",
		"carpenter",
		"roofer",
		"plumber",
		"electrician",
		"hvac-tech",
		"painter",
		"inspector",
	}
}

// Roster registers one worker per trade on the registry. All workers share
// the same back-office services and failure script.
func Roster(reg *delegate.Registry, opts RosterOptions) {
	breakdowns := make(map[string]bool, len(opts.Breakdowns))
	for _, id := range opts.Breakdowns {
		breakdowns[id] = true
	}

	for _, trade := range Trades() {
		reg.Register(trade, &Worker{
			Trade:      trade,
			Supply:     opts.Supply,
			Permits:    opts.Permits,
			RFIs:       opts.RFIs,
			WorkDelay:  opts.WorkDelay,
			FailFirst:  opts.FailFirst,
			Breakdowns: breakdowns,
		})
	}
}

// AllowanceAnswers builds an AnswerFunc from the project's allowance
// selections, keyed by the phase named in the question. A missing
// selection falls back to builder grade rather than failing the task.
func AllowanceAnswers(selections map[string]string) AnswerFunc {
	return func(ctx context.Context, taskID, question string) (string, error) {
		for phase, choice := range selections {
			if strings.Contains(question, phase) {
				return choice, nil
			}
		}
		return "builder-grade standard", nil
	}
}
