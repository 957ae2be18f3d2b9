package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/taymnichols/eviction-notice-bot/internal/dedupe"
	"github.com/taymnichols/eviction-notice-bot/internal/segment"
)

// RunReport is the end-of-run summary. It is produced on every run, however
// many individual lines or addresses failed; these numbers are the primary
// operational signal for data-quality regressions.
type RunReport struct {
	RunID    string
	Segment  segment.Stats
	Merge    dedupe.Stats
	Enrich   EnrichStats
	Enriched bool
	Duration time.Duration
}

const reportRule = "============================================================"

// Format renders the report for the console.
func (r *RunReport) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nPROCESSING SUMMARY (run %s)\n%s\n", reportRule, r.RunID, reportRule)

	fmt.Fprintf(&b, "Input lines considered:    %d\n", r.Segment.LinesSeen)
	fmt.Fprintf(&b, "  - Discarded as junk:     %d\n", r.Segment.Discarded)
	fmt.Fprintf(&b, "  - Skipped, partial data: %d\n", r.Segment.SkippedWithData)
	fmt.Fprintf(&b, "  - Records segmented:     %d\n", r.Segment.Records)

	if len(r.Segment.Samples) > 0 {
		fmt.Fprintf(&b, "\nSKIPPED ROWS WITH DATA (%d sampled):\n", len(r.Segment.Samples))
		for i, sample := range r.Segment.Samples {
			fmt.Fprintf(&b, "%2d. %s\n", i+1, sample)
		}
	}

	fmt.Fprintf(&b, "\nDataset merge:\n")
	fmt.Fprintf(&b, "  Persisted rows in:       %d\n", r.Merge.PersistedIn)
	fmt.Fprintf(&b, "  New rows in:             %d\n", r.Merge.IncomingIn)
	fmt.Fprintf(&b, "  Verified kept:           %d\n", r.Merge.VerifiedKept)
	fmt.Fprintf(&b, "  Unverified kept:         %d\n", r.Merge.UnverifiedKept)
	fmt.Fprintf(&b, "  Covered by verified:     %d\n", r.Merge.UnverifiedShadowed)
	fmt.Fprintf(&b, "  Dateless collapsed:      %d\n", r.Merge.DatelessCollapsed)
	fmt.Fprintf(&b, "  Rows out:                %d\n", r.Merge.Out)

	if r.Enriched {
		e := r.Enrich
		fmt.Fprintf(&b, "\nGeocoding:\n")
		fmt.Fprintf(&b, "  Addresses considered:    %d\n", e.Total)
		fmt.Fprintf(&b, "  Already geocoded:        %d\n", e.Existing)
		fmt.Fprintf(&b, "  Attempted:               %d\n", e.Attempted)
		fmt.Fprintf(&b, "    - Succeeded:           %d\n", e.Success)
		fmt.Fprintf(&b, "    - Failed:              %d\n", e.Failed)
		fmt.Fprintf(&b, "  Skipped (policy):        %d\n", e.Skipped)
		fmt.Fprintf(&b, "  Overall success rate:    %.1f%%\n", e.OverallRate()*100)
		fmt.Fprintf(&b, "  Attempted success rate:  %.1f%%\n", e.AttemptedRate()*100)

		if len(e.FailedSamples) > 0 {
			fmt.Fprintf(&b, "\nFAILED GEOCODES (%d sampled):\n", len(e.FailedSamples))
			for i, sample := range e.FailedSamples {
				fmt.Fprintf(&b, "%2d. %s\n", i+1, sample)
			}
		}
		if len(e.SkippedSamples) > 0 {
			fmt.Fprintf(&b, "\nSKIPPED ADDRESSES (%d sampled):\n", len(e.SkippedSamples))
			for i, sample := range e.SkippedSamples {
				fmt.Fprintf(&b, "%2d. %s\n", i+1, sample)
			}
		}
	}

	fmt.Fprintf(&b, "\nElapsed: %s\n%s\n", r.Duration.Round(time.Millisecond), reportRule)
	return b.String()
}
