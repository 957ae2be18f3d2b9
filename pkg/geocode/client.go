// Package geocode provides address geocoding via the DC Master Address
// Repository location verifier, with a local response cache.
package geocode

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client geocodes free-text DC addresses.
type Client interface {
	// Geocode geocodes a single address. A miss, network failure, or
	// malformed response all come back as Matched=false with a nil error:
	// geocoding problems are never fatal to the caller.
	Geocode(ctx context.Context, addr string) (*Result, error)
}

// Result holds the geocoding output for one address.
type Result struct {
	Latitude  float64
	Longitude float64
	Ward      string // normalized "Ward N", preferring the 2012 vintage
	Zipcode   string
	Quadrant  string
	Matched   bool
}

// Bounds is the accepted geographic bounding box. Coordinates outside it are
// treated as a failed geocode: the service matched an unrelated location.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// DCBounds approximates the District's extent.
func DCBounds() Bounds {
	return Bounds{MinLat: 38.8, MaxLat: 39.0, MinLng: -77.2, MaxLng: -76.9}
}

// Contains reports whether the point falls strictly inside the box.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat > b.MinLat && lat < b.MaxLat && lng > b.MinLng && lng < b.MaxLng
}

// Option configures the client.
type Option func(*marClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *marClient) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the MAR endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *marClient) {
		c.baseURL = u
	}
}

// WithBounds overrides the accepted bounding box.
func WithBounds(b Bounds) Option {
	return func(c *marClient) {
		c.bounds = b
	}
}

// WithRateLimit sets the requests-per-second limit against the MAR host.
func WithRateLimit(rps float64) Option {
	return func(c *marClient) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCache attaches a response cache.
func WithCache(cache *Cache) Option {
	return func(c *marClient) {
		c.cache = cache
	}
}

// NewClient creates a MAR geocoding client.
func NewClient(opts ...Option) Client {
	c := &marClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		bounds:     DCBounds(),
		limiter:    rate.NewLimiter(2, 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
