package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Geocode ungeocoded records in the existing dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, closer, err := newPipeline(cfg, true)
		if err != nil {
			return eris.Wrap(err, "build pipeline")
		}
		defer closer()

		report, runErr := p.Enrich(cmd.Context())
		if report != nil {
			fmt.Fprint(cmd.OutOrStdout(), report.Format())
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
