package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/display"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/taskgraph"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the blueprint's tasks and dependencies without building",
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, name, err := loadBlueprint(cmd.Context(), blueprintPath, templateName)
		if err != nil {
			return err
		}

		graph, warnings := taskgraph.Build(tasks)
		display.RenderPlan(os.Stdout, name, tasks)
		display.RenderWarnings(os.Stdout, warnings)

		ready := graph.ReadyTasks()
		fmt.Printf("\nfirst wave: %s\n", strings.Join(ready, ", "))
		return nil
	},
}

func init() {
	planCmd.Flags().StringVarP(&blueprintPath, "blueprint", "b", "", "blueprint YAML file (default: built-in template)")
	planCmd.Flags().StringVarP(&templateName, "template", "t", "", `built-in template name (default "residential")`)
}
