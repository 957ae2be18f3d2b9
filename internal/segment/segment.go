// Package segment finds eviction-record fields inside the flat text lines
// extracted from OTA notice PDFs.
package segment

import (
	"regexp"
	"strings"

	"github.com/taymnichols/eviction-notice-bot/internal/model"
)

const (
	// Lines shorter than this cannot hold a record and are discarded outright.
	minLineLen = 10
	// Residual address text below this length is noise, not an address.
	minAddressLen = 5
)

var (
	caseRe = regexp.MustCompile(`(\d+-[A-Z]+-\d+(?:-[A-Z])?|\b\d{2,}-\d{2,3}\b|LTB-\d+-\d+)`)
	dateRe = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`)
	zipRe  = regexp.MustCompile(`20\d{3}`)
	quadRe = regexp.MustCompile(`\b(NW|NE|SW|SE)\b`)
	junkRe = regexp.MustCompile(`(?i)case number|defendant address|eviction date|page \d`)

	nanRe = regexp.MustCompile(`(?i)\bnan\b`)
	// Record boundaries inside a merged line sit just before the next house
	// number, so the remainder splits on whitespace preceding a 3+ digit run.
	recordBoundaryRe = regexp.MustCompile(`\s+(\d{3,})`)
)

// Segmenter turns raw lines into ParsedCase candidates while accumulating
// diagnostics. It holds no state besides the stats, which the caller owns.
type Segmenter struct{}

// New returns a Segmenter.
func New() *Segmenter { return &Segmenter{} }

// Line parses one raw text line into zero or more candidate records.
// Diagnostics go to stats: a line is discarded (not counted as data) only
// when it is too short or matches a junk pattern; a line holding partial
// data that cannot be segmented is recorded as skipped-with-data.
func (s *Segmenter) Line(line, sourceDoc string, stats *Stats) []model.ParsedCase {
	stats.LinesSeen++

	if len(strings.TrimSpace(line)) < minLineLen || junkRe.MatchString(line) {
		stats.Discarded++
		return nil
	}

	cases := caseRe.FindAllString(line, -1)
	dates := dateRe.FindAllString(line, -1)
	zips := zipRe.FindAllString(line, -1)
	quads := quadRe.FindAllString(line, -1)

	switch {
	case len(cases) > 0 && len(cases) == len(dates):
		return splitMergedRecords(line, sourceDoc, cases, dates, zips, quads)
	case len(cases) == 0 && len(dates) > 0:
		if pc, ok := caselessRecord(line, sourceDoc, dates, zips, quads); ok {
			return []model.ParsedCase{pc}
		}
	}

	// No case number and no date (or mismatched counts): unrecoverable
	// locally, but worth reporting.
	stats.SkipWithData(line)
	return nil
}

// splitMergedRecords handles a line whose case-number count equals its date
// count: the line holds that many concatenated records. The remainder (after
// stripping every matched substring) splits on boundaries preceding a 3+
// digit run; when the split doesn't yield one fragment per case number the
// whole remainder becomes a single record paired with the first of each
// field.
func splitMergedRecords(line, sourceDoc string, cases, dates, zips, quads []string) []model.ParsedCase {
	addressBlock := line
	for _, matched := range [][]string{cases, dates, zips, quads} {
		for _, m := range matched {
			addressBlock = strings.ReplaceAll(addressBlock, m, "")
		}
	}
	addressBlock = strings.TrimSpace(nanRe.ReplaceAllString(addressBlock, ""))

	addresses := splitOnHouseNumbers(addressBlock)
	if len(addresses) != len(cases) {
		return []model.ParsedCase{{
			CaseNumber:   cases[0],
			Address:      strings.Trim(addressBlock, " ,-"),
			Quadrant:     first(quads),
			Zipcode:      first(zips),
			EvictionDate: dates[0],
			SourceDoc:    sourceDoc,
		}}
	}

	out := make([]model.ParsedCase, 0, len(cases))
	for i := range cases {
		out = append(out, model.ParsedCase{
			CaseNumber:   cases[i],
			Address:      strings.Trim(addresses[i], " ,-"),
			Quadrant:     nth(quads, i),
			Zipcode:      nth(zips, i),
			EvictionDate: dates[i],
			SourceDoc:    sourceDoc,
		})
	}
	return out
}

// caselessRecord emits an unverified record for a line that has at least
// one date but no case number. The address is the line text with every date
// and zip substring removed; too-short residuals are dropped.
func caselessRecord(line, sourceDoc string, dates, zips, quads []string) (model.ParsedCase, bool) {
	addr := line
	for _, matched := range [][]string{dates, zips} {
		for _, m := range matched {
			addr = strings.ReplaceAll(addr, m, "")
		}
	}
	addr = strings.Trim(nanRe.ReplaceAllString(addr, ""), " ,-")

	if len(addr) <= minAddressLen {
		return model.ParsedCase{}, false
	}
	return model.ParsedCase{
		Address:      addr,
		Quadrant:     first(quads),
		Zipcode:      first(zips),
		EvictionDate: dates[0],
		SourceDoc:    sourceDoc,
	}, true
}

// splitOnHouseNumbers splits text on whitespace that precedes a 3+ digit
// run, keeping the digits with the fragment they start.
func splitOnHouseNumbers(text string) []string {
	idxs := recordBoundaryRe.FindAllStringSubmatchIndex(text, -1)
	if len(idxs) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	var parts []string
	prev := 0
	for _, loc := range idxs {
		// loc[2] is the start of the digit run; the whitespace before it is
		// the boundary.
		if head := strings.TrimSpace(text[prev:loc[0]]); head != "" {
			parts = append(parts, head)
		}
		prev = loc[2]
	}
	if tail := strings.TrimSpace(text[prev:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

func first(ss []string) string { return nth(ss, 0) }

func nth(ss []string, i int) string {
	if i < len(ss) {
		return ss[i]
	}
	return ""
}
