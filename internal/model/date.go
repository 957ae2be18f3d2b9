package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ISODate is the serialization format for eviction dates in the persisted CSV.
const ISODate = "2006-01-02"

// ParseEvictionDate parses the date shapes seen in OTA notices: M/D/YY and
// M/D/YYYY with 1-2 digit month/day and 2-4 digit year, plus the ISO form
// used by previously persisted rows. Returns the zero time and false when the
// text is not a usable date.
func ParseEvictionDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(ISODate, s); err == nil {
		return t, true
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	switch {
	case year < 100 && year >= 0:
		year += 2000
	case year < 1900 || year > 2200:
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject rollovers like 2/31.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// CanonicalDate re-serializes a raw date string to ISO form, or returns the
// empty string when the input is not parseable. Used once at merge time so
// every persisted row carries one consistent format.
func CanonicalDate(s string) string {
	t, ok := ParseEvictionDate(s)
	if !ok {
		return ""
	}
	return t.Format(ISODate)
}

// DateParts returns the month number, year, and English month name for a
// canonical date, for the derived CSV columns. Empty strings when the date
// is absent.
func DateParts(isoDate string) (month, year, monthName string) {
	t, ok := ParseEvictionDate(isoDate)
	if !ok {
		return "", "", ""
	}
	return fmt.Sprintf("%d", int(t.Month())), fmt.Sprintf("%d", t.Year()), t.Month().String()
}
