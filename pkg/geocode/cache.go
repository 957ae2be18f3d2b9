package geocode

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Cache stores MAR responses in a local sqlite database so repeated runs
// over the same dataset don't re-query the service. Misses are cached too.
type Cache struct {
	db      *sql.DB
	ttlDays int
}

// OpenCache opens (creating if needed) the cache database at path. A TTL of
// zero means entries never expire.
func OpenCache(path string, ttlDays int) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: open cache %s", path)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "geocode: exec %s", pragma)
		}
	}

	const migration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash TEXT PRIMARY KEY,
	latitude     REAL,
	longitude    REAL,
	ward         TEXT,
	zipcode      TEXT,
	quadrant     TEXT,
	matched      INTEGER NOT NULL,
	cached_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);`
	if _, err := db.Exec(migration); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "geocode: migrate cache")
	}

	return &Cache{db: db, ttlDays: ttlDays}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// cacheKey returns SHA-256 hex of the lowercased address.
func cacheKey(addr string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(addr))))
	return fmt.Sprintf("%x", h)
}

// Get looks up a cached result, respecting the TTL if configured. Cached
// misses (Matched=false) are returned so the caller can skip the network.
func (c *Cache) Get(ctx context.Context, addr string) (*Result, bool) {
	query := "SELECT latitude, longitude, ward, zipcode, quadrant, matched FROM geocode_cache WHERE address_hash = ?"
	args := []any{cacheKey(addr)}
	if c.ttlDays > 0 {
		query += " AND cached_at > datetime('now', ?)"
		args = append(args, fmt.Sprintf("-%d days", c.ttlDays))
	}

	var lat, lng sql.NullFloat64
	var ward, zipcode, quadrant sql.NullString
	var matched bool

	row := c.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&lat, &lng, &ward, &zipcode, &quadrant, &matched); err != nil {
		return nil, false
	}

	r := &Result{
		Latitude:  lat.Float64,
		Longitude: lng.Float64,
		Ward:      ward.String,
		Zipcode:   zipcode.String,
		Quadrant:  quadrant.String,
		Matched:   matched,
	}
	return r, true
}

// Put stores a result. Cache failures are logged, never surfaced.
func (c *Cache) Put(ctx context.Context, addr string, result *Result) {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (address_hash, latitude, longitude, ward, zipcode, quadrant, matched, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			ward = excluded.ward,
			zipcode = excluded.zipcode,
			quadrant = excluded.quadrant,
			matched = excluded.matched,
			cached_at = excluded.cached_at`,
		cacheKey(addr), result.Latitude, result.Longitude, result.Ward, result.Zipcode, result.Quadrant, result.Matched,
	)
	if err != nil {
		zap.L().Debug("geocode: cache store failed", zap.Error(err))
	}
}
