package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taymnichols/eviction-notice-bot/internal/address"
	"github.com/taymnichols/eviction-notice-bot/internal/model"
	"github.com/taymnichols/eviction-notice-bot/pkg/geocode"
)

const maxEnrichSamples = 20

// EnrichStats accumulates geocoding outcomes for the run report. Skips
// (addresses deliberately not sent to the service) are counted apart from
// failures so the success-rate calculation never conflates the two.
type EnrichStats struct {
	Total     int
	Existing  int
	Attempted int
	Success   int
	Failed    int
	Skipped   int

	FailedSamples  []string
	SkippedSamples []string
}

// Merge folds another EnrichStats into this one.
func (s *EnrichStats) Merge(other EnrichStats) {
	s.Total += other.Total
	s.Existing += other.Existing
	s.Attempted += other.Attempted
	s.Success += other.Success
	s.Failed += other.Failed
	s.Skipped += other.Skipped
	s.FailedSamples = appendSamples(s.FailedSamples, other.FailedSamples)
	s.SkippedSamples = appendSamples(s.SkippedSamples, other.SkippedSamples)
}

// OverallRate is successes over every record considered.
func (s *EnrichStats) OverallRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total)
}

// AttemptedRate is successes over actual service calls.
func (s *EnrichStats) AttemptedRate() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Attempted)
}

func appendSamples(dst, src []string) []string {
	for _, s := range src {
		if len(dst) >= maxEnrichSamples {
			break
		}
		dst = append(dst, s)
	}
	return dst
}

// enrichOutcome is one record's geocoding result, aggregated after the
// batch completes so workers never share mutable counters.
type enrichOutcome int

const (
	outcomeExisting enrichOutcome = iota
	outcomeSkipped
	outcomeSuccess
	outcomeFailed
)

// Enricher fills coordinates and ward/zip/quadrant gaps on canonical
// records.
type Enricher struct {
	parser      *address.Parser
	geocoder    geocode.Client
	concurrency int
}

// NewEnricher creates an Enricher. Concurrency below 1 means sequential;
// anything higher fans out, with the geocode client's rate limiter keeping
// the remote host safe and each address's variant ordering preserved inside
// its own goroutine.
func NewEnricher(parser *address.Parser, geocoder geocode.Client, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{parser: parser, geocoder: geocoder, concurrency: concurrency}
}

// Enrich processes every record in place and returns batch statistics. A
// single address's failure never affects the others.
func (e *Enricher) Enrich(ctx context.Context, records []model.CanonicalRecord) EnrichStats {
	outcomes := make([]enrichOutcome, len(records))
	samples := make([]string, len(records))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.concurrency)

	for i := range records {
		i := i
		eg.Go(func() error {
			outcomes[i], samples[i] = e.enrichOne(gCtx, &records[i])
			return nil
		})
	}
	_ = eg.Wait()

	stats := EnrichStats{Total: len(records)}
	for i, outcome := range outcomes {
		switch outcome {
		case outcomeExisting:
			stats.Existing++
		case outcomeSkipped:
			stats.Skipped++
			if len(stats.SkippedSamples) < maxEnrichSamples {
				stats.SkippedSamples = append(stats.SkippedSamples, samples[i])
			}
		case outcomeSuccess:
			stats.Attempted++
			stats.Success++
		case outcomeFailed:
			stats.Attempted++
			stats.Failed++
			if len(stats.FailedSamples) < maxEnrichSamples {
				stats.FailedSamples = append(stats.FailedSamples, samples[i])
			}
		}
	}
	return stats
}

// enrichOne parses address components if absent, applies the usability gate,
// and fills only fields that are still empty. Existing values always win
// over API results.
func (e *Enricher) enrichOne(ctx context.Context, rec *model.CanonicalRecord) (enrichOutcome, string) {
	comps := e.parser.Parse(rec.FullAddress)
	if rec.AddressBase == nil {
		rec.AddressBase = comps.Base
	}
	if rec.Unit == nil {
		rec.Unit = comps.Unit
	}
	if rec.Quality == "" {
		rec.Quality = comps.Quality
	}

	if rec.Geocoded() {
		return outcomeExisting, ""
	}

	gateComps := address.Components{Original: comps.Original, Base: rec.AddressBase, Quality: rec.Quality}
	if !address.ShouldGeocode(gateComps) {
		return outcomeSkipped, rec.FullAddress
	}

	result, err := e.geocoder.Geocode(ctx, *rec.AddressBase)
	if err != nil || !result.Matched {
		if err != nil {
			zap.L().Debug("enrich: geocode error", zap.String("address", *rec.AddressBase), zap.Error(err))
		}
		return outcomeFailed, *rec.AddressBase
	}

	if rec.Lat == nil && rec.Lng == nil {
		lat, lng := result.Latitude, result.Longitude
		rec.Lat, rec.Lng = &lat, &lng
	}
	if rec.Ward == nil && result.Ward != "" {
		ward := result.Ward
		rec.Ward = &ward
	}
	if rec.Zipcode == "" {
		rec.Zipcode = result.Zipcode
	}
	if rec.Quadrant == "" {
		rec.Quadrant = result.Quadrant
	}
	return outcomeSuccess, ""
}
