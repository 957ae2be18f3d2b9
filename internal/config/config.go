// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Address AddressConfig `yaml:"address" mapstructure:"address"`
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SourceConfig configures the OTA listing page scrape and PDF downloads.
type SourceConfig struct {
	ListingURL  string  `yaml:"listing_url" mapstructure:"listing_url"`
	PDFDir      string  `yaml:"pdf_dir" mapstructure:"pdf_dir"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RateRPS     float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// ExtractConfig configures PDF text extraction and the OCR fallback.
type ExtractConfig struct {
	MinPageChars  int    `yaml:"min_page_chars" mapstructure:"min_page_chars"`
	OCREnabled    bool   `yaml:"ocr_enabled" mapstructure:"ocr_enabled"`
	PdfToPpmPath  string `yaml:"pdftoppm_path" mapstructure:"pdftoppm_path"`
	TesseractPath string `yaml:"tesseract_path" mapstructure:"tesseract_path"`
}

// AddressConfig configures address parsing behavior.
type AddressConfig struct {
	// UnitPolicy is "all" (semicolon-joined) or "first".
	UnitPolicy string `yaml:"unit_policy" mapstructure:"unit_policy"`
	// RulesFile optionally overrides the compiled-in correction tables.
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
}

// DatasetConfig configures the persisted CSV dataset.
type DatasetConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// GeocodeConfig configures the DC MAR geocoding client.
type GeocodeConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateRPS      float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
	Concurrency  int     `yaml:"concurrency" mapstructure:"concurrency"`
	CachePath    string  `yaml:"cache_path" mapstructure:"cache_path"`
	CacheTTLDays int     `yaml:"cache_ttl_days" mapstructure:"cache_ttl_days"`
	MinLat       float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLat       float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLng       float64 `yaml:"min_lng" mapstructure:"min_lng"`
	MaxLng       float64 `yaml:"max_lng" mapstructure:"max_lng"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EVICTIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.listing_url", "https://ota.dc.gov/page/scheduled-evictions")
	v.SetDefault("source.pdf_dir", "pdf_files")
	v.SetDefault("source.user_agent", "eviction-notice-bot/1.0")
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.rate_rps", 2)
	v.SetDefault("extract.min_page_chars", 50)
	v.SetDefault("extract.ocr_enabled", true)
	v.SetDefault("extract.pdftoppm_path", "pdftoppm")
	v.SetDefault("extract.tesseract_path", "tesseract")
	v.SetDefault("address.unit_policy", "all")
	v.SetDefault("dataset.path", "eviction_notices.csv")
	v.SetDefault("geocode.base_url", "https://citizenatlas.dc.gov/newwebservices/locationverifier.asmx/findLocation2")
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.rate_rps", 2)
	v.SetDefault("geocode.concurrency", 1)
	v.SetDefault("geocode.cache_path", "geocode_cache.db")
	v.SetDefault("geocode.cache_ttl_days", 0)
	v.SetDefault("geocode.min_lat", 38.8)
	v.SetDefault("geocode.max_lat", 39.0)
	v.SetDefault("geocode.min_lng", -77.2)
	v.SetDefault("geocode.max_lng", -76.9)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
