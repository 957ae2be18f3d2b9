package address

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// The normalizer produces a lossy comparison key used only for duplicate
// detection. It is never displayed and never geocoded. Two addresses for the
// same physical location under common spelling/abbreviation variation should
// normalize to the same key; this is best-effort, not a guarantee.

// unitWords all fold to the single "#" unit marker.
var unitWords = []string{"apartment", "apt", "unit", "suite", "ste"}

// normStreetTypes is the normalizer's own folding table. It folds toward the
// abbreviation so that "Main Street" and "Main St" compare equal.
var normStreetTypes = map[string]string{
	"street":    "st",
	"avenue":    "ave",
	"road":      "rd",
	"drive":     "dr",
	"place":     "pl",
	"boulevard": "blvd",
	"court":     "ct",
	"terrace":   "ter",
}

var (
	unitWordRe   = regexp.MustCompile(`\b(` + strings.Join(unitWords, "|") + `)\b\.?`)
	hashSpaceRe  = regexp.MustCompile(`#\s+`)
	normTypeRes  = compileWordFolds(normStreetTypes)
	nonKeyRunes  = regexp.MustCompile(`[^\w\s#]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	titleCaser   = cases.Title(language.AmericanEnglish)
)

func compileWordFolds(table map[string]string) []wordFold {
	folds := make([]wordFold, 0, len(table))
	for full, abbrev := range table {
		folds = append(folds, wordFold{
			re:   regexp.MustCompile(`\b` + full + `\b`),
			with: abbrev,
		})
	}
	return folds
}

type wordFold struct {
	re   *regexp.Regexp
	with string
}

// Normalize maps an address string to its canonical comparison key. It is
// idempotent and case-insensitive: Normalize(Normalize(x)) == Normalize(x).
func Normalize(addr string) string {
	a := strings.ToLower(addr)

	// Drop "also known as" variants; the first form is the canonical one.
	if idx := strings.Index(a, "a/k/a"); idx >= 0 {
		a = a[:idx]
	}

	a = unitWordRe.ReplaceAllString(a, "#")
	// Glue the marker to its code so "apt 5" and "#5" compare equal.
	a = hashSpaceRe.ReplaceAllString(a, "#")
	for _, f := range normTypeRes {
		a = f.re.ReplaceAllString(a, f.with)
	}

	a = nonKeyRunes.ReplaceAllString(a, "")
	a = whitespaceRe.ReplaceAllString(a, " ")
	a = strings.TrimSpace(a)

	return titleCaser.String(a)
}
