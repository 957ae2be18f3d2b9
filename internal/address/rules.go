// Package address turns the noisy defendant-address text extracted from OTA
// notices into a cleaned display address, a geocodable base address, and a
// comparison key for duplicate detection. The correction tables here are
// tuned empirically to one data source's error patterns and are expected to
// grow; they can be overridden from a YAML rules file without rebuilding.
package address

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules holds the replaceable correction tables used by the parser and
// normalizer. Replacements within one table are order-independent: every
// entry matches whole substrings (typos) or whole words (suffixes) and no
// entry's output is another entry's input.
type Rules struct {
	// TypoFixes are literal whole-substring replacements for known OCR and
	// clerk typos, applied before anything else.
	TypoFixes map[string]string `yaml:"typo_fixes"`

	// StreetSuffixes maps full street-type words to their abbreviations,
	// applied on word boundaries.
	StreetSuffixes map[string]string `yaml:"street_suffixes"`
}

// DefaultRules returns the compiled-in correction tables.
func DefaultRules() *Rules {
	return &Rules{
		TypoFixes: map[string]string{
			"STEREET":    "STREET",
			"PLEASNT":    "PLEASANT",
			"AVE.":       "AVENUE",
			"CONNETICUT": "CONNECTICUT",
			"MCARUTHUR":  "MACARTHUR",
			// Single known OCR miscapture of a house number.
			"41110": "4110",
		},
		StreetSuffixes: map[string]string{
			"STREET":    "ST",
			"AVENUE":    "AVE",
			"BOULEVARD": "BLVD",
			"CIRCLE":    "CIR",
			"COURT":     "CT",
			"DRIVE":     "DR",
			"LANE":      "LN",
			"ROAD":      "RD",
			"PLACE":     "PL",
			"TERRACE":   "TER",
			"SQUARE":    "SQ",
		},
	}
}

// LoadRules reads a rules file, filling any table left empty from the
// defaults so a file can override just one table.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "address: read rules file %s", path)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrapf(err, "address: parse rules file %s", path)
	}

	defaults := DefaultRules()
	if len(r.TypoFixes) == 0 {
		r.TypoFixes = defaults.TypoFixes
	}
	if len(r.StreetSuffixes) == 0 {
		r.StreetSuffixes = defaults.StreetSuffixes
	}
	return &r, nil
}
