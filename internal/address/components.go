package address

import (
	"regexp"
	"strings"

	"github.com/taymnichols/eviction-notice-bot/internal/model"
)

// UnitPolicy controls how multiple extracted unit codes are reported.
type UnitPolicy string

const (
	// UnitKeepAll joins every captured unit with "; ".
	UnitKeepAll UnitPolicy = "all"
	// UnitKeepFirst retains only the first capture as the canonical unit.
	UnitKeepFirst UnitPolicy = "first"
)

// Components is the result of parsing one raw defendant address.
type Components struct {
	Original string
	// Base is the house-number-starting street address submitted to the
	// geocoder. Nil when the address has no leading house number: nil means
	// "never attempted", distinct from "attempted and failed".
	Base    *string
	Unit    *string
	Quality model.AddressQuality
}

// Cleaned returns the display form of the address: base plus unit.
func (c Components) Cleaned() string {
	if c.Base == nil {
		return c.Original
	}
	if c.Unit == nil {
		return *c.Base
	}
	return *c.Base + " " + *c.Unit
}

// Parser applies the ordered correction and extraction rules to raw
// defendant-address strings.
type Parser struct {
	rules      *Rules
	unitPolicy UnitPolicy
	suffixRes  []wordFold
}

// NewParser builds a Parser from the given rules. Nil rules means defaults.
func NewParser(rules *Rules, policy UnitPolicy) *Parser {
	if rules == nil {
		rules = DefaultRules()
	}
	if policy == "" {
		policy = UnitKeepAll
	}
	return &Parser{
		rules:      rules,
		unitPolicy: policy,
		suffixRes:  compileWordFolds(rules.StreetSuffixes),
	}
}

// Trailing corruption is stripped only at the end of the string so legitimate
// interior content survives.
var (
	trailingQuadZipDateRe = regexp.MustCompile(`\s+(?:NE|NW|SE|SW)\s+20\d{3}\s+\d{1,2}/\d{1,2}/\d{2,4}.*$`)
	trailingSlashDigitRe  = regexp.MustCompile(`\s+\d+/\s*$`)
	trailingDateRe        = regexp.MustCompile(`\s+\d{1,2}/\d{1,2}/\d{2,4}.*$`)
	trailingWashingtonRe  = regexp.MustCompile(`,\s*WASHINGTON.*$`)
	trailingDCZipRe       = regexp.MustCompile(`\s+DC\s+\d{5}.*$`)
	trailingZipRe         = regexp.MustCompile(`\s+\d{5}.*$`)

	leadingDigitsRe = regexp.MustCompile(`^(\d+)`)
	leadingRangeRe  = regexp.MustCompile(`^(\d+)\s*-\s*\d+\b`)
	quadrantRe      = regexp.MustCompile(`\b(NE|NW|SE|SW)\b`)
	nanTokenRe      = regexp.MustCompile(`(?i)\bnan\b`)
	vacantLotRe     = regexp.MustCompile(`(?i)VACANT\s+LOT`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
)

// unitPatterns is the ordered extraction list. Every match of every pattern
// is collected (list order, then order of appearance) and removed from the
// base address. Capture group 1 is the unit code; a pattern with no group
// keeps its whole match as the unit.
var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`,\s*#\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`\s+(?:UNIT|APT\.?|#|STE\.?|SUITE)\s*([A-Z0-9\-]+)`),
	regexp.MustCompile(`\s+([A-Z]\d+)\b`),
	regexp.MustCompile(`\(([A-Z0-9\- ]+)\)`),
	regexp.MustCompile(`\b(BASEMENT AND FIRST FLOOR|FIRST FLOOR|SECOND FLOOR|BASEMENT)\b`),
}

// Parse splits one raw address into display, geocoding, and unit components,
// classifying its quality along the way. Quality never drops a record; it
// only decides whether a geocoding attempt is worth making.
func (p *Parser) Parse(raw string) Components {
	original := strings.TrimSpace(raw)
	if original == "" || strings.EqualFold(original, "nan") {
		return Components{Original: original, Quality: model.QualityMissing}
	}

	addr := strings.ToUpper(original)

	for typo, fix := range p.rules.TypoFixes {
		addr = strings.ReplaceAll(addr, typo, fix)
	}
	for _, f := range p.suffixRes {
		addr = f.re.ReplaceAllString(addr, f.with)
	}

	addr = trailingQuadZipDateRe.ReplaceAllString(addr, "")
	addr = trailingSlashDigitRe.ReplaceAllString(addr, "")
	addr = trailingDateRe.ReplaceAllString(addr, "")
	addr = trailingWashingtonRe.ReplaceAllString(addr, "")
	addr = trailingDCZipRe.ReplaceAllString(addr, "")
	addr = trailingZipRe.ReplaceAllString(addr, "")

	addr, units := extractUnits(addr)

	addr = strings.ReplaceAll(addr, ",", "")
	addr = firstHouseNumberedSegment(addr)
	addr = leadingRangeRe.ReplaceAllString(addr, "$1")
	addr = splitMergedHouseNumber(addr)

	addr = multiSpaceRe.ReplaceAllString(addr, " ")
	addr = strings.Trim(addr, " .,-")

	addr = relocateQuadrant(addr)

	quality := model.QualityClean
	switch {
	case nanTokenRe.MatchString(addr) || vacantLotRe.MatchString(addr):
		quality = model.QualityPoor
	case !startsWithDigit(addr):
		quality = model.QualityNoHouseNumber
	}

	c := Components{Original: original, Quality: quality}
	if startsWithDigit(addr) {
		c.Base = &addr
	}
	if u := formatUnits(units, p.unitPolicy); u != "" {
		c.Unit = &u
	}
	return c
}

// extractUnits collects every unit code matched by the ordered pattern list
// and strips the matches from the address.
func extractUnits(addr string) (string, []string) {
	var units []string
	seen := make(map[string]bool)

	for _, re := range unitPatterns {
		for _, m := range re.FindAllStringSubmatch(addr, -1) {
			code := m[0]
			if len(m) > 1 {
				code = m[1]
			}
			code = strings.TrimSpace(strings.TrimLeft(code, "#"))
			if code != "" && !seen[code] {
				seen[code] = true
				units = append(units, code)
			}
		}
		addr = re.ReplaceAllString(addr, " ")
	}
	return addr, units
}

func formatUnits(units []string, policy UnitPolicy) string {
	if len(units) == 0 {
		return ""
	}
	if policy == UnitKeepFirst {
		return "#" + units[0]
	}
	return "#" + strings.Join(units, "; #")
}

// firstHouseNumberedSegment handles lines listing two addresses joined by
// "AND": when both segments start with a house number, only the first one is
// kept.
func firstHouseNumberedSegment(addr string) string {
	segs := strings.Split(addr, " AND ")
	if len(segs) < 2 {
		return addr
	}
	for i, seg := range segs[:len(segs)-1] {
		seg = strings.TrimSpace(seg)
		rest := strings.TrimSpace(segs[i+1])
		if startsWithDigit(seg) && startsWithDigit(rest) {
			return seg
		}
	}
	return addr
}

// splitMergedHouseNumber corrects a leading run of five or more digits,
// which is almost always stray digits OCR-merged onto a house number. The
// trailing four digits are kept; a three-digit house number under a stray
// prefix is indistinguishable here and left to the typo table.
func splitMergedHouseNumber(addr string) string {
	m := leadingDigitsRe.FindString(addr)
	if len(m) > 4 {
		return addr[len(m)-4:]
	}
	return addr
}

// relocateQuadrant moves an embedded quadrant token to the end of the base
// address, keeping at most one.
func relocateQuadrant(addr string) string {
	m := quadrantRe.FindString(addr)
	if m == "" {
		return addr
	}
	addr = quadrantRe.ReplaceAllString(addr, " ")
	addr = multiSpaceRe.ReplaceAllString(addr, " ")
	return strings.TrimSpace(addr) + " " + m
}

func startsWithDigit(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}

// ShouldGeocode is the usability gate mirroring the parser's validity rule:
// no request is made for an absent base address, a missing-quality record, a
// vacant lot, or an address without a leading house number.
func ShouldGeocode(c Components) bool {
	if c.Base == nil || c.Quality == model.QualityMissing {
		return false
	}
	if vacantLotRe.MatchString(*c.Base) {
		return false
	}
	return startsWithDigit(*c.Base)
}
