package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/backoffice"
	"github.com/garystafford/general-contractor-agent-demo-sub000/internal/display"
)

var suppliesCmd = &cobra.Command{
	Use:   "supplies",
	Short: "Print the supply house catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		supply := backoffice.NewSupplyHouse(cfg.Site.Supplier)
		display.RenderCatalog(os.Stdout, supply.Name(), supply.Catalog())
		return nil
	},
}
