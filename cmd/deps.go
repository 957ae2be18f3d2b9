package main

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/taymnichols/eviction-notice-bot/internal/address"
	"github.com/taymnichols/eviction-notice-bot/internal/config"
	"github.com/taymnichols/eviction-notice-bot/internal/extract"
	"github.com/taymnichols/eviction-notice-bot/internal/pipeline"
	"github.com/taymnichols/eviction-notice-bot/internal/scrape"
	"github.com/taymnichols/eviction-notice-bot/pkg/geocode"
)

// newAddressParser builds the component parser, honoring an external rules
// file when configured.
func newAddressParser(cfg *config.Config) (*address.Parser, error) {
	rules := address.DefaultRules()
	if cfg.Address.RulesFile != "" {
		loaded, err := address.LoadRules(cfg.Address.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
		zap.L().Info("loaded address rules file", zap.String("path", cfg.Address.RulesFile))
	}
	return address.NewParser(rules, address.UnitPolicy(cfg.Address.UnitPolicy)), nil
}

// newEnricher wires the geocode client (with its sqlite cache) and the
// address parser. The returned closer releases the cache database.
func newEnricher(cfg *config.Config) (*pipeline.Enricher, func(), error) {
	parser, err := newAddressParser(cfg)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {}
	opts := []geocode.Option{
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithRateLimit(cfg.Geocode.RateRPS),
		geocode.WithBounds(geocode.Bounds{
			MinLat: cfg.Geocode.MinLat,
			MaxLat: cfg.Geocode.MaxLat,
			MinLng: cfg.Geocode.MinLng,
			MaxLng: cfg.Geocode.MaxLng,
		}),
		geocode.WithHTTPClient(httpClientFor(cfg)),
	}

	if cfg.Geocode.CachePath != "" {
		cache, cacheErr := geocode.OpenCache(cfg.Geocode.CachePath, cfg.Geocode.CacheTTLDays)
		if cacheErr != nil {
			return nil, nil, eris.Wrap(cacheErr, "open geocode cache")
		}
		opts = append(opts, geocode.WithCache(cache))
		closer = func() { _ = cache.Close() }
	}

	client := geocode.NewClient(opts...)
	return pipeline.NewEnricher(parser, client, cfg.Geocode.Concurrency), closer, nil
}

// newPipeline assembles the full pipeline. withEnricher controls whether the
// geocoding stage is wired in.
func newPipeline(cfg *config.Config, withEnricher bool) (*pipeline.Pipeline, func(), error) {
	var ocr *extract.OCR
	if cfg.Extract.OCREnabled {
		ocr = extract.NewOCR(cfg.Extract.PdfToPpmPath, cfg.Extract.TesseractPath)
	}
	extractor := extract.NewReader(cfg.Extract.MinPageChars, ocr)

	sources := pipeline.NewSources(scrape.Options{
		ListingURL: cfg.Source.ListingURL,
		PDFDir:     cfg.Source.PDFDir,
		UserAgent:  cfg.Source.UserAgent,
		Timeout:    time.Duration(cfg.Source.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Source.MaxRetries,
		RateRPS:    cfg.Source.RateRPS,
	})

	closer := func() {}
	var enricher *pipeline.Enricher
	if withEnricher {
		var err error
		enricher, closer, err = newEnricher(cfg)
		if err != nil {
			return nil, nil, err
		}
	}

	return pipeline.New(sources, extractor, enricher, cfg.Dataset.Path), closer, nil
}

func httpClientFor(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: time.Duration(cfg.Geocode.TimeoutSecs) * time.Second}
}
