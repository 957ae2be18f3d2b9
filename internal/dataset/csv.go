// Package dataset reads and writes the persisted eviction dataset CSV. The
// CSV is the only long-lived state in the system; everything else is
// recomputed each run.
package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/taymnichols/eviction-notice-bot/internal/model"
)

// Columns is the full persisted column set, in write order. Readers map by
// header name, not position, so column order and presence may evolve between
// runs as long as case_number and eviction_date (plus the address text for
// unverified rows) survive; that pair is the cross-run dedup contract.
var Columns = []string{
	"case_number",
	"defendant_address",
	"quad",
	"zipcode",
	"eviction_date",
	"city",
	"full_address",
	"address_base",
	"unit",
	"address_quality",
	"lat",
	"lng",
	"ward",
	"month",
	"year",
	"month_name",
}

// headerAliases maps legacy column names to current ones.
var headerAliases = map[string]string{
	"address_original": "defendant_address",
	"address":          "defendant_address",
	"quadrant":         "quad",
}

// Load reads the persisted dataset. A missing file surfaces as
// fs.ErrNotExist (wrapped); callers that expect the file to exist treat that
// as fatal, while a first scrape run treats it as an empty dataset.
func Load(path string) ([]model.CanonicalRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := headerIndex(rows[0])
	records := make([]model.CanonicalRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := model.CanonicalRecord{
			CaseNumber:   get("case_number"),
			Address:      get("defendant_address"),
			Quadrant:     get("quad"),
			Zipcode:      get("zipcode"),
			EvictionDate: get("eviction_date"),
			City:         get("city"),
			FullAddress:  get("full_address"),
			Quality:      model.AddressQuality(get("address_quality")),
		}
		rec.AddressBase = optString(get("address_base"))
		rec.Unit = optString(get("unit"))
		rec.Ward = optString(get("ward"))
		rec.Lat = optFloat(get("lat"))
		rec.Lng = optFloat(get("lng"))
		records = append(records, rec)
	}
	return records, nil
}

// Save writes the dataset to a temporary file in the target directory and
// moves it into place, so a failed run never leaves a partial or corrupt
// dataset behind.
func Save(path string, records []model.CanonicalRecord) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "dataset: create temp file in %s", dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	w := csv.NewWriter(tmp)
	if err := w.Write(Columns); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "dataset: write header")
	}

	for i := range records {
		if err := w.Write(rowFor(&records[i])); err != nil {
			tmp.Close() //nolint:errcheck
			return eris.Wrap(err, "dataset: write row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "dataset: flush")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "dataset: close temp file")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return eris.Wrapf(err, "dataset: replace %s", path)
	}
	return nil
}

func rowFor(r *model.CanonicalRecord) []string {
	month, year, monthName := model.DateParts(r.EvictionDate)
	return []string{
		r.CaseNumber,
		r.Address,
		r.Quadrant,
		r.Zipcode,
		r.EvictionDate,
		r.City,
		r.FullAddress,
		strVal(r.AddressBase),
		strVal(r.Unit),
		string(r.Quality),
		floatVal(r.Lat),
		floatVal(r.Lng),
		strVal(r.Ward),
		month,
		year,
		monthName,
	}
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(col)), " ", "_")
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		idx[name] = i
	}
	return idx
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatVal(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
