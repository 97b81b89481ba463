package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/config"
)

var (
	configPath string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "contractor",
	Short: "General contractor that schedules construction crews over a task graph",
	Long: `contractor plans a construction project as a dependency graph and
schedules trade crews over it, pass by pass, until every task is
completed, blocked, or out of retries.

Blueprints come from the built-in residential template or a YAML file.
Crews order materials, pull permits, and file RFIs against shared
back-office services while they work. Every finished run prints a
report and can be archived to SQLite.

Examples:
  # Build the default residential project
  contractor run

  # Dry-run a custom blueprint
  contractor plan --blueprint barn.yaml

  # Watch retries and blocking in action
  contractor run --false-start framing=2 --breakdown footings

  # Review past runs
  contractor history`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers the global and project config files, or just the
// file named by --config when one is given.
func loadConfig() (*config.ContractorConfig, error) {
	if configPath != "" {
		return config.Load("", configPath)
	}
	return config.LoadDefault()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.contractor and ./.contractor layered)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(suppliesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
