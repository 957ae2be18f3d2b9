// Package pipeline orchestrates the scrape → extract → segment → merge →
// geocode workflow over the persisted eviction dataset.
package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/taymnichols/eviction-notice-bot/internal/dataset"
	"github.com/taymnichols/eviction-notice-bot/internal/dedupe"
	"github.com/taymnichols/eviction-notice-bot/internal/extract"
	"github.com/taymnichols/eviction-notice-bot/internal/model"
	"github.com/taymnichols/eviction-notice-bot/internal/scrape"
	"github.com/taymnichols/eviction-notice-bot/internal/segment"
)

// Sources abstracts PDF discovery and download.
type Sources interface {
	DiscoverPDFs(ctx context.Context) ([]string, error)
	DownloadNew(ctx context.Context, urls []string) ([]string, error)
}

// Pipeline wires the stages together.
type Pipeline struct {
	sources     Sources
	extractor   extract.Extractor
	segmenter   *segment.Segmenter
	enricher    *Enricher
	datasetPath string
}

// New creates a Pipeline. A nil enricher leaves geocoding to a later
// `enrich` invocation.
func New(sources Sources, extractor extract.Extractor, enricher *Enricher, datasetPath string) *Pipeline {
	return &Pipeline{
		sources:     sources,
		extractor:   extractor,
		segmenter:   segment.New(),
		enricher:    enricher,
		datasetPath: datasetPath,
	}
}

// Scrape runs stages 1-5: discover, download, extract, segment, and merge
// into the persisted dataset. A missing dataset file means a first run and
// starts empty; any other read failure, and any write failure, is fatal.
func (p *Pipeline) Scrape(ctx context.Context) (*RunReport, error) {
	started := time.Now()
	report := &RunReport{RunID: uuid.NewString()}
	log := zap.L().With(zap.String("run_id", report.RunID))

	urls, err := p.sources.DiscoverPDFs(ctx)
	if err != nil {
		return report, err
	}
	pdfPaths, err := p.sources.DownloadNew(ctx, urls)
	if err != nil {
		return report, err
	}

	incoming := p.extractAndSegment(ctx, pdfPaths, &report.Segment)
	report.Segment.Records = len(incoming)
	log.Info("segmentation complete",
		zap.Int("lines", report.Segment.LinesSeen),
		zap.Int("records", len(incoming)),
		zap.Int("discarded", report.Segment.Discarded),
		zap.Int("skipped_with_data", report.Segment.SkippedWithData),
	)

	persisted, err := p.loadDataset(false)
	if err != nil {
		return report, err
	}

	merged, mergeStats := dedupe.Merge(persisted, toCanonical(incoming))
	report.Merge = mergeStats

	if err := dataset.Save(p.datasetPath, merged); err != nil {
		return report, err
	}
	log.Info("dataset saved",
		zap.String("path", p.datasetPath),
		zap.Int("rows", len(merged)),
	)

	report.Duration = time.Since(started)
	return report, nil
}

// Enrich runs stage 6 over the persisted dataset, which must already exist.
func (p *Pipeline) Enrich(ctx context.Context) (*RunReport, error) {
	if p.enricher == nil {
		return nil, eris.New("pipeline: enricher not configured")
	}

	started := time.Now()
	report := &RunReport{RunID: uuid.NewString(), Enriched: true}

	records, err := p.loadDataset(true)
	if err != nil {
		return report, err
	}
	report.Merge.PersistedIn = len(records)
	report.Merge.Out = len(records)

	report.Enrich = p.enricher.Enrich(ctx, records)

	// Re-derive display fields that enrichment may have filled (zip, quad).
	merged, _ := dedupe.Merge(records, nil)
	if err := dataset.Save(p.datasetPath, merged); err != nil {
		return report, err
	}

	report.Duration = time.Since(started)
	return report, nil
}

// Run executes the full pipeline: scrape stages then enrichment.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	report, err := p.Scrape(ctx)
	if err != nil {
		return report, err
	}
	if p.enricher == nil {
		return report, nil
	}

	enrichReport, err := p.Enrich(ctx)
	if err != nil {
		return report, err
	}
	report.Enrich = enrichReport.Enrich
	report.Enriched = true
	report.Duration += enrichReport.Duration
	return report, nil
}

// extractAndSegment walks every PDF, feeding both extraction shapes (word
// rows from text pages, rebuilt rows from OCR pages) through the segmenter.
// Per-document failures are logged and skipped.
func (p *Pipeline) extractAndSegment(ctx context.Context, pdfPaths []string, stats *segment.Stats) []model.ParsedCase {
	var out []model.ParsedCase
	for _, path := range pdfPaths {
		pages, err := p.extractor.ExtractPages(ctx, path)
		if err != nil {
			zap.L().Warn("pipeline: pdf extraction failed",
				zap.String("pdf", path),
				zap.Error(err),
			)
			continue
		}

		for _, page := range pages {
			rows := page.Rows
			if page.ImageBased {
				rows = extract.RowsFromOCRText(page.Text)
			}
			for _, row := range rows {
				out = append(out, p.segmenter.Row(row, path, stats)...)
			}
		}
	}
	return out
}

// loadDataset reads the persisted CSV. When mustExist is false a missing
// file is an empty dataset; any other failure is fatal.
func (p *Pipeline) loadDataset(mustExist bool) ([]model.CanonicalRecord, error) {
	records, err := dataset.Load(p.datasetPath)
	if err != nil {
		if !mustExist && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "pipeline: load dataset %s", p.datasetPath)
	}
	return records, nil
}

func toCanonical(cases []model.ParsedCase) []model.CanonicalRecord {
	out := make([]model.CanonicalRecord, 0, len(cases))
	for _, c := range cases {
		out = append(out, model.CanonicalRecord{
			CaseNumber:   c.CaseNumber,
			Address:      c.Address,
			Quadrant:     c.Quadrant,
			Zipcode:      c.Zipcode,
			EvictionDate: c.EvictionDate,
		})
	}
	return out
}

// NewSources builds the default HTTP-backed Sources.
func NewSources(opts scrape.Options) Sources {
	return scrape.New(opts)
}
