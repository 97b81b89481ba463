package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/archive"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/backoffice"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/blueprint"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/crew"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/delegate"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/display"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/engine"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/events"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

var (
	blueprintPath string
	templateName  string
	concurrency   int
	falseStarts   []string
	breakdowns    []string
	noArchive     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Schedule crews over the blueprint until the project is done",
	Long: `run builds the dependency graph from the blueprint, staffs one crew
per trade, and schedules ready tasks in parallel waves. Crews order
materials from the supply house, pull permits, and file RFIs for
allowance selections as their tasks require.

Failed tasks are retried with backoff up to the configured limit.
Tasks whose dependencies failed for good are marked blocked. The
final report lists every task's outcome and is archived unless
--no-archive is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if concurrency > 0 {
			cfg.Engine.Concurrency = concurrency
		}

		scripted, err := parseFalseStarts(falseStarts)
		if err != nil {
			return err
		}

		tasks, name, err := loadBlueprint(ctx, blueprintPath, templateName)
		if err != nil {
			return err
		}

		graph, warnings := taskgraph.Build(tasks)
		display.RenderWarnings(os.Stdout, warnings)
		fmt.Printf("Breaking ground on %s, %d tasks\n", name, len(tasks))

		supply := backoffice.NewSupplyHouse(cfg.Site.Supplier)
		permits := backoffice.NewPermitOffice(cfg.Site.Jurisdiction)

		// The desk outlives the run only until we cancel its context;
		// Stop then waits for the handler to drain.
		deskCtx, closeDesk := context.WithCancel(ctx)
		desk := crew.NewRFIDesk(2*cfg.Engine.Concurrency, crew.AllowanceAnswers(cfg.Crew.Selections))
		desk.Start(deskCtx)
		defer func() {
			closeDesk()
			desk.Stop()
		}()

		registry := delegate.NewRegistry()
		crew.Roster(registry, crew.RosterOptions{
			Supply:     supply,
			Permits:    permits,
			RFIs:       desk,
			WorkDelay:  time.Duration(cfg.Crew.WorkDelayMillis) * time.Millisecond,
			FailFirst:  mergeFalseStarts(cfg.Crew.FailFirst, scripted),
			Breakdowns: append(append([]string(nil), cfg.Crew.Breakdowns...), breakdowns...),
		})

		bus := events.NewBus()
		feed := consumeEvents(bus)

		runner := engine.NewRunner(engine.Config{
			Concurrency: cfg.Engine.Concurrency,
			TaskTimeout: time.Duration(cfg.Engine.TaskTimeoutSeconds) * time.Second,
			MaxRetries:  cfg.Engine.MaxRetries,
			MaxPasses:   cfg.Engine.MaxPasses,
			Bus:         bus,
		}, graph, registry)

		report, err := runner.Run(ctx)
		bus.Close()
		<-feed
		if err != nil {
			return fmt.Errorf("run aborted: %w", err)
		}

		fmt.Println()
		display.RenderReport(os.Stdout, report)
		if issued := permits.Issued(); len(issued) > 0 {
			fmt.Printf("%d permits issued by %s\n", len(issued), cfg.Site.Jurisdiction)
		}

		if cfg.Archive.Enabled && !noArchive {
			if err := archiveReport(cfg.Archive.Path, report); err != nil {
				log.Printf("WARNING: archiving run %s: %v", report.RunID, err)
			}
		}

		if !report.Succeeded() {
			return fmt.Errorf("run %s left %d of %d tasks unbuilt",
				report.RunID, report.TotalTasks-report.Completed, report.TotalTasks)
		}
		return nil
	},
}

// loadBlueprint reads the YAML file when one is named, otherwise expands
// the built-in template.
func loadBlueprint(ctx context.Context, path, template string) ([]taskgraph.RawTask, string, error) {
	if path != "" {
		file, err := blueprint.LoadFile(path)
		if err != nil {
			return nil, "", err
		}
		return file.Tasks, file.Name, nil
	}

	var planner blueprint.TemplatePlanner
	tasks, err := planner.Plan(ctx, template)
	if err != nil {
		return nil, "", err
	}
	name := template
	if name == "" {
		name = "residential"
	}
	return tasks, name, nil
}

// parseFalseStarts parses repeated task=attempts flags.
func parseFalseStarts(specs []string) (map[string]int, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	parsed := make(map[string]int, len(specs))
	for _, spec := range specs {
		id, count, ok := strings.Cut(spec, "=")
		n, err := strconv.Atoi(count)
		if !ok || id == "" || err != nil || n < 1 {
			return nil, fmt.Errorf("bad false-start %q, want task=attempts", spec)
		}
		parsed[id] = n
	}
	return parsed, nil
}

// mergeFalseStarts overlays flag-scripted false starts on the config's.
func mergeFalseStarts(base, extra map[string]int) map[string]int {
	if len(extra) == 0 {
		return base
	}
	merged := make(map[string]int, len(base)+len(extra))
	for id, n := range base {
		merged[id] = n
	}
	for id, n := range extra {
		merged[id] = n
	}
	return merged
}

// consumeEvents prints the live site feed. The returned channel closes
// once the bus is closed and the feed is drained.
func consumeEvents(bus *events.Bus) <-chan struct{} {
	ch := bus.SubscribeAll(256)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ev := range ch {
			switch ev := ev.(type) {
			case events.RunStartedEvent:
				fmt.Printf("run %s: scheduling %d tasks\n", ev.RunID, ev.TotalTasks)
			case events.TaskStartedEvent:
				fmt.Printf("  %-20s %s crew on site (attempt %d)\n", ev.ID, ev.Owner, ev.Attempt)
			case events.TaskCompletedEvent:
				fmt.Printf("  %-20s done in %s\n", ev.ID, ev.Duration.Round(time.Millisecond))
			case events.TaskRetriedEvent:
				fmt.Printf("  %-20s retry queued after attempt %d: %v\n", ev.ID, ev.Attempt, ev.Err)
			case events.TaskFailedEvent:
				fmt.Printf("  %-20s failed for good after %d attempts: %v\n", ev.ID, ev.Attempts, ev.Err)
			case events.TaskBlockedEvent:
				fmt.Printf("  %-20s blocked, %s never finished\n", ev.ID, ev.DependencyID)
			case events.TaskCancelledEvent:
				fmt.Printf("  %-20s cancelled\n", ev.ID)
			case events.ProgressEvent:
				fmt.Printf("pass %d: %d/%d complete, %d failed, %d blocked, %d to go\n",
					ev.Pass, ev.Completed, ev.Total, ev.Failed, ev.Blocked, ev.Remaining)
			}
		}
	}()
	return done
}

// archiveReport saves the report on its own deadline so an interrupted
// run still gets archived.
func archiveReport(dbPath string, report *engine.Report) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := archive.NewSQLiteStore(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveReport(ctx, report); err != nil {
		return err
	}
	fmt.Printf("archived run %s to %s\n", report.RunID, dbPath)
	return nil
}

func init() {
	runCmd.Flags().StringVarP(&blueprintPath, "blueprint", "b", "", "blueprint YAML file (default: built-in template)")
	runCmd.Flags().StringVarP(&templateName, "template", "t", "", `built-in template name (default "residential")`)
	runCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "max crews working at once (overrides config)")
	runCmd.Flags().StringArrayVar(&falseStarts, "false-start", nil, "script a task to fail its first N attempts, as task=N (repeatable)")
	runCmd.Flags().StringArrayVar(&breakdowns, "breakdown", nil, "script a task to fail every attempt (repeatable)")
	runCmd.Flags().BoolVar(&noArchive, "no-archive", false, "skip archiving the report")
}
