package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taymnichols/eviction-notice-bot/internal/model"
)

func TestLine_SingleRecord(t *testing.T) {
	s := New()
	var stats Stats

	got := s.Line("2024-CAB-00123 1234 MAIN ST NW 20010 3/15/2024", "notice.pdf", &stats)
	require.Len(t, got, 1)

	assert.Equal(t, model.ParsedCase{
		CaseNumber:   "2024-CAB-00123",
		Address:      "1234 MAIN ST",
		Quadrant:     "NW",
		Zipcode:      "20010",
		EvictionDate: "3/15/2024",
		SourceDoc:    "notice.pdf",
	}, got[0])
	assert.Equal(t, 1, stats.LinesSeen)
	assert.Zero(t, stats.Discarded)
	assert.Zero(t, stats.SkippedWithData)
}

func TestLine_CaseNumberShapes(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		line string
		want string
	}{
		{"court format", "2024-CAB-00123 1234 MAIN ST NW 3/15/2024", "2024-CAB-00123"},
		{"court format with suffix", "2024-LTB-00123-A 1234 MAIN ST NW 3/15/2024", "2024-LTB-00123-A"},
		{"short numeric", "24-123 1234 MAIN ST NW 3/15/2024", "24-123"},
		{"ltb prefix", "LTB-2024-123 1234 MAIN ST NW 3/15/2024", "LTB-2024-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stats Stats
			got := s.Line(tt.line, "doc.pdf", &stats)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].CaseNumber)
		})
	}
}

func TestLine_MergedRecordsSplit(t *testing.T) {
	s := New()
	var stats Stats

	line := "2024-CAB-00123 1234 MAIN ST NW 20010 3/15/2024 2024-CAB-00456 567 OAK AVE SE 20020 3/16/2024"
	got := s.Line(line, "doc.pdf", &stats)
	require.Len(t, got, 2)

	assert.Equal(t, "2024-CAB-00123", got[0].CaseNumber)
	assert.Equal(t, "1234 MAIN ST", got[0].Address)
	assert.Equal(t, "NW", got[0].Quadrant)
	assert.Equal(t, "20010", got[0].Zipcode)
	assert.Equal(t, "3/15/2024", got[0].EvictionDate)

	assert.Equal(t, "2024-CAB-00456", got[1].CaseNumber)
	assert.Equal(t, "567 OAK AVE", got[1].Address)
	assert.Equal(t, "SE", got[1].Quadrant)
	assert.Equal(t, "20020", got[1].Zipcode)
	assert.Equal(t, "3/16/2024", got[1].EvictionDate)
}

func TestLine_MergedRecordsUnsplittable(t *testing.T) {
	s := New()
	var stats Stats

	// Two case numbers and two dates, but the residual text has no second
	// house number to split on: everything collapses onto the first case.
	line := "2024-CAB-00123 2024-CAB-00456 BUILDING A NW 3/15/2024 3/16/2024"
	got := s.Line(line, "doc.pdf", &stats)
	require.Len(t, got, 1)

	assert.Equal(t, "2024-CAB-00123", got[0].CaseNumber)
	assert.Equal(t, "BUILDING A", got[0].Address)
	assert.Equal(t, "NW", got[0].Quadrant)
	assert.Equal(t, "3/15/2024", got[0].EvictionDate)
}

func TestLine_CaselessRecord(t *testing.T) {
	s := New()
	var stats Stats

	got := s.Line("1234 MAIN ST NW 20010 3/15/2024", "doc.pdf", &stats)
	require.Len(t, got, 1)

	assert.Empty(t, got[0].CaseNumber)
	assert.Equal(t, "1234 MAIN ST NW", got[0].Address)
	assert.Equal(t, "NW", got[0].Quadrant)
	assert.Equal(t, "20010", got[0].Zipcode)
	assert.Equal(t, "3/15/2024", got[0].EvictionDate)
	assert.Zero(t, stats.SkippedWithData)
}

func TestLine_CaselessRecordStripsEveryDateAndZip(t *testing.T) {
	s := New()
	var stats Stats

	got := s.Line("1234 MAIN ST NW 20010 20011 3/15/2024 3/16/2024", "doc.pdf", &stats)
	require.Len(t, got, 1)

	assert.Empty(t, got[0].CaseNumber)
	assert.Equal(t, "1234 MAIN ST NW", got[0].Address)
	assert.Equal(t, "3/15/2024", got[0].EvictionDate)
	assert.Equal(t, "20010", got[0].Zipcode)
}

func TestLine_CaselessShortResidualDropped(t *testing.T) {
	s := New()
	var stats Stats

	// After removing the date and zip almost nothing is left: noise, not an
	// address.
	got := s.Line("AB 20010 3/15/2024", "doc.pdf", &stats)
	assert.Empty(t, got)
	assert.Equal(t, 1, stats.SkippedWithData)
}

func TestLine_Discarded(t *testing.T) {
	s := New()
	var stats Stats

	lines := []string{
		"Page 1",
		"CASE NUMBER DEFENDANT ADDRESS EVICTION DATE",
		"   short   ",
		"",
	}
	for _, line := range lines {
		assert.Empty(t, s.Line(line, "doc.pdf", &stats), "line %q", line)
	}
	assert.Equal(t, len(lines), stats.LinesSeen)
	assert.Equal(t, len(lines), stats.Discarded)
	assert.Zero(t, stats.SkippedWithData)
}

func TestLine_SkippedWithData(t *testing.T) {
	s := New()
	var stats Stats

	got := s.Line("SOME TEXT WITH NO CASE OR DATE", "doc.pdf", &stats)
	assert.Empty(t, got)
	assert.Equal(t, 1, stats.SkippedWithData)
	require.Len(t, stats.Samples, 1)
	assert.Equal(t, "SOME TEXT WITH NO CASE OR DATE", stats.Samples[0])
}

func TestLine_NanTokensRemoved(t *testing.T) {
	s := New()
	var stats Stats

	got := s.Line("2024-CAB-00123 nan 1234 MAIN ST NW nan 3/15/2024", "doc.pdf", &stats)
	require.Len(t, got, 1)
	assert.Equal(t, "1234 MAIN ST", got[0].Address)
	assert.NotContains(t, got[0].Address, "nan")
}

func TestRow_JoinsCells(t *testing.T) {
	s := New()
	var stats Stats

	got := s.Row([]string{"2024-CAB-00123", "1234 MAIN ST NW", "nan", "20010", "3/15/2024"}, "doc.pdf", &stats)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-CAB-00123", got[0].CaseNumber)
	assert.Equal(t, "1234 MAIN ST", got[0].Address)
	assert.Equal(t, "3/15/2024", got[0].EvictionDate)
}

func TestStats_Merge(t *testing.T) {
	a := Stats{LinesSeen: 5, Discarded: 1, SkippedWithData: 1, Records: 3, Samples: []string{"one"}}
	b := Stats{LinesSeen: 2, Discarded: 0, SkippedWithData: 1, Records: 1, Samples: []string{"two"}}

	a.Merge(b)
	assert.Equal(t, 7, a.LinesSeen)
	assert.Equal(t, 1, a.Discarded)
	assert.Equal(t, 2, a.SkippedWithData)
	assert.Equal(t, 4, a.Records)
	assert.Equal(t, []string{"one", "two"}, a.Samples)
}

func TestStats_SampleCapAndTruncation(t *testing.T) {
	var stats Stats
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	for i := 0; i < maxSamples+5; i++ {
		stats.SkipWithData(string(long))
	}

	assert.Equal(t, maxSamples+5, stats.SkippedWithData)
	require.Len(t, stats.Samples, maxSamples)
	assert.Len(t, stats.Samples[0], 100)
}
