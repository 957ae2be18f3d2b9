package geocode

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, ttlDays int) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"), ttlDays)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_PutGet(t *testing.T) {
	c := openTestCache(t, 0)
	ctx := context.Background()

	in := &Result{Latitude: 38.9, Longitude: -77.0, Ward: "Ward 5", Zipcode: "20010", Quadrant: "NW", Matched: true}
	c.Put(ctx, "1234 Main St NW", in)

	got, ok := c.Get(ctx, "1234 Main St NW")
	require.True(t, ok)
	assert.Equal(t, in, got)
}

func TestCache_KeyIsCaseInsensitive(t *testing.T) {
	c := openTestCache(t, 0)
	ctx := context.Background()

	c.Put(ctx, "1234 MAIN ST NW", &Result{Matched: true, Latitude: 38.9, Longitude: -77.0})

	got, ok := c.Get(ctx, "  1234 main st nw ")
	require.True(t, ok)
	assert.True(t, got.Matched)
}

func TestCache_MissesAreCached(t *testing.T) {
	c := openTestCache(t, 0)
	ctx := context.Background()

	c.Put(ctx, "NO SUCH PLACE", &Result{Matched: false})

	got, ok := c.Get(ctx, "NO SUCH PLACE")
	require.True(t, ok)
	assert.False(t, got.Matched)
}

func TestCache_Unknown(t *testing.T) {
	c := openTestCache(t, 0)

	_, ok := c.Get(context.Background(), "never stored")
	assert.False(t, ok)
}

func TestCache_Upsert(t *testing.T) {
	c := openTestCache(t, 0)
	ctx := context.Background()

	c.Put(ctx, "1234 Main St NW", &Result{Matched: false})
	c.Put(ctx, "1234 Main St NW", &Result{Matched: true, Latitude: 38.9, Longitude: -77.0})

	got, ok := c.Get(ctx, "1234 Main St NW")
	require.True(t, ok)
	assert.True(t, got.Matched)
	assert.InDelta(t, 38.9, got.Latitude, 1e-9)
}

func TestCache_TTLKeepsFreshEntries(t *testing.T) {
	c := openTestCache(t, 30)
	ctx := context.Background()

	c.Put(ctx, "1234 Main St NW", &Result{Matched: true, Latitude: 38.9, Longitude: -77.0})

	_, ok := c.Get(ctx, "1234 Main St NW")
	assert.True(t, ok)
}

func TestClientUsesCache(t *testing.T) {
	ms := newMARServer(t)
	ms.responses["1234 MAIN ST NW"] = `{"returnDataset":{"Table1":[{
		"LATITUDE": 38.9,
		"LONGITUDE": -77.0
	}]}}`

	cache := openTestCache(t, 0)
	c := newTestClient(ms, WithCache(cache))
	ctx := context.Background()

	first, err := c.Geocode(ctx, "1234 MAIN ST NW")
	require.NoError(t, err)
	require.True(t, first.Matched)

	second, err := c.Geocode(ctx, "1234 MAIN ST NW")
	require.NoError(t, err)
	assert.True(t, second.Matched)

	// Second lookup is served from the cache.
	assert.Len(t, ms.seen(), 1)
}
