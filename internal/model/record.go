// Package model defines the record types flowing through the eviction pipeline.
package model

// City is the municipality every record belongs to.
const City = "Washington, DC"

// Quadrant values used in DC addressing.
var Quadrants = []string{"NE", "NW", "SE", "SW"}

// ParsedCase is a candidate eviction record produced by the field segmenter.
// CaseNumber may be empty ("unverified"); EvictionDate is the raw M/D/YYYY
// text as matched in the source line.
type ParsedCase struct {
	CaseNumber   string `json:"case_number"`
	Address      string `json:"defendant_address"`
	Quadrant     string `json:"quad"`
	Zipcode      string `json:"zipcode"`
	EvictionDate string `json:"eviction_date"`
	SourceDoc    string `json:"source_doc,omitempty"`
}

// AddressQuality classifies how usable a parsed address is for geocoding.
// It is observability metadata only: quality never removes a record from the
// dataset, it only gates the geocoding attempt.
type AddressQuality string

const (
	QualityClean         AddressQuality = "clean"
	QualityPoor          AddressQuality = "poor_quality"
	QualityNoHouseNumber AddressQuality = "no_house_number"
	QualityMissing       AddressQuality = "missing"
)

// CanonicalRecord is a ParsedCase merged into the persisted dataset, plus the
// enrichment columns filled by geocoding. Pointer fields are nil until (and
// unless) enrichment succeeds; a nil AddressBase means the address has no
// leading house number and is never sent to the geocoder.
type CanonicalRecord struct {
	CaseNumber   string
	Address      string // cleaned defendant address as displayed
	Quadrant     string
	Zipcode      string
	EvictionDate string // ISO 2006-01-02, empty when unparseable

	// Derived, never persisted: comparison key for duplicate detection.
	NormalizedAddress string

	City        string
	FullAddress string

	AddressBase *string
	Unit        *string
	Quality     AddressQuality
	Lat         *float64
	Lng         *float64
	Ward        *string
}

// Verified reports whether the record carries a case number.
func (r *CanonicalRecord) Verified() bool { return r.CaseNumber != "" }

// Dateless reports whether the record has no parseable eviction date.
func (r *CanonicalRecord) Dateless() bool { return r.EvictionDate == "" }

// Geocoded reports whether coordinates have been filled.
func (r *CanonicalRecord) Geocoded() bool { return r.Lat != nil && r.Lng != nil }
