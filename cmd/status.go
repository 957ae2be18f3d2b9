package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/taymnichols/eviction-notice-bot/internal/dataset"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the persisted dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		records, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			return eris.Wrapf(err, "load dataset %s", cfg.Dataset.Path)
		}

		var verified, dateless, geocoded, noBase int
		for i := range records {
			r := &records[i]
			if r.Verified() {
				verified++
			}
			if r.Dateless() {
				dateless++
			}
			if r.Geocoded() {
				geocoded++
			}
			if r.AddressBase == nil {
				noBase++
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Dataset: %s\n", cfg.Dataset.Path)
		fmt.Fprintf(out, "  Rows:               %d\n", len(records))
		fmt.Fprintf(out, "  Verified (case #):  %d\n", verified)
		fmt.Fprintf(out, "  Unverified:         %d\n", len(records)-verified)
		fmt.Fprintf(out, "  Dateless:           %d\n", dateless)
		fmt.Fprintf(out, "  Geocoded:           %d\n", geocoded)
		fmt.Fprintf(out, "  Ungeocoded:         %d\n", len(records)-geocoded)
		fmt.Fprintf(out, "  No base address:    %d\n", noBase)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
