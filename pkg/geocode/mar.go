package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the DC MAR location verifier endpoint.
const DefaultBaseURL = "https://citizenatlas.dc.gov/newwebservices/locationverifier.asmx/findLocation2"

// marResponse is the JSON envelope returned by findLocation2. Field types
// vary between string and number depending on the record, so the row values
// decode as json.RawMessage and are coerced afterwards.
type marResponse struct {
	ReturnDataset struct {
		Table1 []marRow `json:"Table1"`
	} `json:"returnDataset"`
}

type marRow struct {
	Latitude  json.RawMessage `json:"LATITUDE"`
	Longitude json.RawMessage `json:"LONGITUDE"`
	Ward2002  json.RawMessage `json:"WARD_2002"`
	Ward2012  json.RawMessage `json:"WARD_2012"`
	Zipcode   json.RawMessage `json:"ZIPCODE"`
	Quadrant  json.RawMessage `json:"QUADRANT"`
}

type marClient struct {
	httpClient *http.Client
	baseURL    string
	bounds     Bounds
	limiter    *rate.Limiter
	cache      *Cache
}

// marSuffixRes strip the fully-qualified tail for the variant request; MAR
// sometimes fails on "X, Washington, DC 20010" but matches the bare "X".
var marSuffixRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i),?\s*WASHINGTON,?\s*(D\.?C\.?)?.*$`),
	regexp.MustCompile(`\s+\d{5}\s*$`),
}

// Geocode tries the address as given, then once more with the municipal
// suffix stripped. Variants run strictly in order. Every failure mode (no
// result row, coordinates outside the bounding box, network error,
// malformed JSON) is a non-fatal miss.
func (c *marClient) Geocode(ctx context.Context, addr string) (*Result, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return &Result{Matched: false}, nil
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, addr); ok {
			return cached, nil
		}
	}

	result := c.query(ctx, addr)
	if !result.Matched {
		if variant := stripSuffix(addr); variant != "" && variant != addr {
			result = c.query(ctx, variant)
		}
	}

	if c.cache != nil {
		c.cache.Put(ctx, addr, result)
	}
	return result, nil
}

// query performs one MAR request. Errors are logged and degrade to a miss.
func (c *marClient) query(ctx context.Context, addr string) *Result {
	miss := &Result{Matched: false}

	if err := c.limiter.Wait(ctx); err != nil {
		return miss
	}

	reqURL := c.baseURL + "?" + url.Values{
		"str": {addr},
		"f":   {"json"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return miss
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		zap.L().Debug("geocode: mar request failed", zap.String("address", addr), zap.Error(err))
		return miss
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		zap.L().Debug("geocode: mar status", zap.String("address", addr), zap.Int("status", resp.StatusCode))
		return miss
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return miss
	}

	var mr marResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		zap.L().Debug("geocode: mar malformed response", zap.String("address", addr), zap.Error(err))
		return miss
	}
	if len(mr.ReturnDataset.Table1) == 0 {
		return miss
	}

	row := mr.ReturnDataset.Table1[0]
	lat, latOK := rawFloat(row.Latitude)
	lng, lngOK := rawFloat(row.Longitude)
	if !latOK || !lngOK {
		return miss
	}
	if !c.bounds.Contains(lat, lng) {
		zap.L().Debug("geocode: coordinates outside bounding box",
			zap.String("address", addr),
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
		)
		return miss
	}

	return &Result{
		Latitude:  lat,
		Longitude: lng,
		Ward:      normalizeWard(row.Ward2012, row.Ward2002),
		Zipcode:   rawString(row.Zipcode),
		Quadrant:  rawString(row.Quadrant),
		Matched:   true,
	}
}

func stripSuffix(addr string) string {
	for _, re := range marSuffixRes {
		addr = re.ReplaceAllString(addr, "")
	}
	return strings.TrimRight(strings.TrimSpace(addr), ",")
}

// normalizeWard prefers the 2012 redistricting vintage over 2002 and renders
// either as "Ward N".
func normalizeWard(ward2012, ward2002 json.RawMessage) string {
	raw := rawString(ward2012)
	if raw == "" {
		raw = rawString(ward2002)
	}
	if raw == "" {
		return ""
	}
	num := strings.TrimSpace(strings.TrimPrefix(raw, "Ward "))
	return "Ward " + num
}

// rawFloat coerces a JSON number or numeric string.
func rawFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, convErr := strconv.ParseFloat(strings.TrimSpace(s), 64); convErr == nil {
			return parsed, true
		}
	}
	return 0, false
}

// rawString coerces a JSON string or number to its text form.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
