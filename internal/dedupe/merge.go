// Package dedupe merges newly scraped records with the persisted dataset
// without reintroducing duplicates or losing unverified-but-unique rows.
package dedupe

import (
	"sort"
	"strings"

	"github.com/taymnichols/eviction-notice-bot/internal/address"
	"github.com/taymnichols/eviction-notice-bot/internal/model"
)

// Stats summarizes one merge for the run report.
type Stats struct {
	PersistedIn        int
	IncomingIn         int
	VerifiedKept       int
	UnverifiedKept     int
	UnverifiedShadowed int
	DatelessCollapsed  int
	Out                int
}

// Merge combines the persisted dataset with a new batch under the tiered key
// strategy: case number is the identity for verified records, normalized
// address plus eviction date for the rest. The output satisfies the dataset
// invariant (at most one record per non-empty case number, at most one
// unverified record per (normalized address, date) pair) while never
// deleting previously persisted information outside an intended collapse.
func Merge(persisted, incoming []model.CanonicalRecord) ([]model.CanonicalRecord, Stats) {
	stats := Stats{PersistedIn: len(persisted), IncomingIn: len(incoming)}

	working := make([]model.CanonicalRecord, 0, len(persisted)+len(incoming))
	working = append(working, persisted...)
	working = append(working, incoming...)

	for i := range working {
		prepare(&working[i])
	}

	verified, unverified := partition(working)

	// Verified tier: most complete (dated, most recent) record wins per case
	// number.
	sort.SliceStable(verified, func(i, j int) bool {
		if verified[i].CaseNumber != verified[j].CaseNumber {
			return verified[i].CaseNumber < verified[j].CaseNumber
		}
		return dateAfter(verified[i].EvictionDate, verified[j].EvictionDate)
	})
	verified = keepFirstBy(verified, func(r model.CanonicalRecord) string {
		return r.CaseNumber
	})
	stats.VerifiedKept = len(verified)

	// Unverified tier: drop records already covered by a verified one under
	// the (normalized address, date) pair, so no case appears under two
	// identities.
	covered := make(map[string]bool, len(verified))
	for _, r := range verified {
		covered[r.NormalizedAddress+"\x00"+r.EvictionDate] = true
	}
	remaining := unverified[:0]
	for _, r := range unverified {
		if covered[r.NormalizedAddress+"\x00"+r.EvictionDate] {
			stats.UnverifiedShadowed++
			continue
		}
		remaining = append(remaining, r)
	}

	// Collapse address-level duplicates among what's left.
	sort.SliceStable(remaining, func(i, j int) bool {
		if remaining[i].NormalizedAddress != remaining[j].NormalizedAddress {
			return remaining[i].NormalizedAddress < remaining[j].NormalizedAddress
		}
		return dateAfter(remaining[i].EvictionDate, remaining[j].EvictionDate)
	})
	remaining = keepFirstBy(remaining, func(r model.CanonicalRecord) string {
		return r.NormalizedAddress
	})
	stats.UnverifiedKept = len(remaining)

	out := append(verified, remaining...)
	out = collapseDateless(out, &stats)

	for i := range out {
		finalize(&out[i])
	}
	stats.Out = len(out)
	return out, stats
}

// prepare fills absent fields with empty strings (never a null placeholder),
// trims stray punctuation, canonicalizes the date, and computes the
// comparison key.
func prepare(r *model.CanonicalRecord) {
	r.CaseNumber = strings.TrimSpace(r.CaseNumber)
	r.Address = strings.TrimRight(strings.TrimSpace(r.Address), " ,.")
	r.Zipcode = strings.TrimSuffix(strings.TrimSpace(r.Zipcode), ".0")
	r.EvictionDate = model.CanonicalDate(r.EvictionDate)
	r.NormalizedAddress = address.Normalize(r.Address)
}

func partition(records []model.CanonicalRecord) (verified, unverified []model.CanonicalRecord) {
	for _, r := range records {
		if r.Verified() {
			verified = append(verified, r)
		} else {
			unverified = append(unverified, r)
		}
	}
	return verified, unverified
}

// collapseDateless is the final pass over records with no parseable date:
// one per normalized address, preferring any that carries a case number.
// A case number is stronger evidence of a distinct proceeding than an
// address string alone.
func collapseDateless(records []model.CanonicalRecord, stats *Stats) []model.CanonicalRecord {
	dated := make([]model.CanonicalRecord, 0, len(records))
	var dateless []model.CanonicalRecord
	for _, r := range records {
		if r.Dateless() {
			dateless = append(dateless, r)
		} else {
			dated = append(dated, r)
		}
	}
	if len(dateless) == 0 {
		return dated
	}

	sort.SliceStable(dateless, func(i, j int) bool {
		if dateless[i].CaseNumber != dateless[j].CaseNumber {
			return dateless[i].CaseNumber > dateless[j].CaseNumber
		}
		return dateless[i].NormalizedAddress < dateless[j].NormalizedAddress
	})
	kept := keepFirstBy(dateless, func(r model.CanonicalRecord) string {
		return r.NormalizedAddress
	})
	stats.DatelessCollapsed = len(dateless) - len(kept)

	return append(dated, kept...)
}

// finalize fills the derived display fields.
func finalize(r *model.CanonicalRecord) {
	r.City = model.City

	var b strings.Builder
	b.WriteString(r.Address)
	if r.Quadrant != "" && !strings.EqualFold(r.Quadrant, "nan") {
		b.WriteString(", ")
		b.WriteString(r.Quadrant)
	}
	b.WriteString(", ")
	b.WriteString(r.City)
	if r.Zipcode != "" && !strings.EqualFold(r.Zipcode, "nan") {
		b.WriteString(", ")
		b.WriteString(r.Zipcode)
	}
	r.FullAddress = b.String()
}

// keepFirstBy retains the first record per key, preserving order.
func keepFirstBy(records []model.CanonicalRecord, key func(model.CanonicalRecord) string) []model.CanonicalRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, r := range records {
		k := key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

// dateAfter orders ISO dates descending with empty (dateless) last.
func dateAfter(a, b string) bool {
	if a == "" {
		return false
	}
	if b == "" {
		return true
	}
	return a > b
}
