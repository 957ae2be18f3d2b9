package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape notice PDFs and merge new records into the dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, closer, err := newPipeline(cfg, false)
		if err != nil {
			return eris.Wrap(err, "build pipeline")
		}
		defer closer()

		report, runErr := p.Scrape(cmd.Context())
		if report != nil {
			fmt.Fprint(cmd.OutOrStdout(), report.Format())
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
