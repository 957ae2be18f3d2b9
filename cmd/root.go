package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taymnichols/eviction-notice-bot/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "eviction-notice-bot",
	Short: "DC eviction-notice scraping and geocoding pipeline",
	Long:  "Scrapes scheduled-eviction PDFs from the DC Office of the Tenant Advocate, segments and deduplicates the records, and enriches them with MAR geocoding and ward data.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
