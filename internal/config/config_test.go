package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes into dir for the duration of the test, restoring the
// original working directory on cleanup. Equivalent to t.Chdir, which
// requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://ota.dc.gov/page/scheduled-evictions", cfg.Source.ListingURL)
	assert.Equal(t, "pdf_files", cfg.Source.PDFDir)
	assert.Equal(t, 30, cfg.Source.TimeoutSecs)
	assert.Equal(t, 3, cfg.Source.MaxRetries)
	assert.Equal(t, 50, cfg.Extract.MinPageChars)
	assert.True(t, cfg.Extract.OCREnabled)
	assert.Equal(t, "all", cfg.Address.UnitPolicy)
	assert.Equal(t, "eviction_notices.csv", cfg.Dataset.Path)
	assert.Equal(t, "https://citizenatlas.dc.gov/newwebservices/locationverifier.asmx/findLocation2", cfg.Geocode.BaseURL)
	assert.Equal(t, 1, cfg.Geocode.Concurrency)
	assert.InDelta(t, 38.8, cfg.Geocode.MinLat, 1e-9)
	assert.InDelta(t, -76.9, cfg.Geocode.MaxLng, 1e-9)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_FromFile(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("config.yaml", []byte(`
source:
  listing_url: https://example.org/evictions
dataset:
  path: custom.csv
geocode:
  concurrency: 4
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/evictions", cfg.Source.ListingURL)
	assert.Equal(t, "custom.csv", cfg.Dataset.Path)
	assert.Equal(t, 4, cfg.Geocode.Concurrency)
	// Untouched keys keep their defaults.
	assert.Equal(t, "pdf_files", cfg.Source.PDFDir)
}

func TestLoad_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EVICTIONS_DATASET_PATH", "env.csv")
	t.Setenv("EVICTIONS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env.csv", cfg.Dataset.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "not-a-level", Format: "json"}))
}
