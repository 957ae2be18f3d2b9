package segment

// maxSamples caps how many skipped-line samples are retained for the
// end-of-run report.
const maxSamples = 20

// Stats accumulates segmentation diagnostics for one run. Discarded counts
// lines rejected as junk (too short, headers, page numbers); SkippedWithData
// counts lines that carried partial data but could not be segmented. The
// two are never conflated because the second is the operational signal for
// format drift in the source documents.
type Stats struct {
	LinesSeen       int
	Discarded       int
	SkippedWithData int
	Records         int
	Samples         []string
}

// SkipWithData records a line that had data but no usable segmentation.
func (s *Stats) SkipWithData(line string) {
	s.SkippedWithData++
	if len(s.Samples) < maxSamples {
		if len(line) > 100 {
			line = line[:100]
		}
		s.Samples = append(s.Samples, line)
	}
}

// Merge folds another Stats into this one, for per-worker partial results.
func (s *Stats) Merge(other Stats) {
	s.LinesSeen += other.LinesSeen
	s.Discarded += other.Discarded
	s.SkippedWithData += other.SkippedWithData
	s.Records += other.Records
	for _, sample := range other.Samples {
		if len(s.Samples) >= maxSamples {
			break
		}
		s.Samples = append(s.Samples, sample)
	}
}
