package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/archive"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/display"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		display.RenderHistory(os.Stdout, runs)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the archived report for one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := store.LoadReport(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		display.RenderReport(os.Stdout, report)
		return nil
	},
}

func openArchive(ctx context.Context) (*archive.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Archive.Path == "" {
		return nil, fmt.Errorf("no archive path configured")
	}
	return archive.NewSQLiteStore(ctx, cfg.Archive.Path)
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max runs to list")
	historyCmd.AddCommand(historyShowCmd)
}
