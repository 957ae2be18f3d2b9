// Package scrape discovers and downloads eviction-notice PDFs from the OTA
// scheduled-evictions page.
package scrape

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the scraper.
type Options struct {
	ListingURL string
	PDFDir     string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RateRPS    float64
}

// Scraper fetches the listing page and downloads new PDFs.
type Scraper struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

// New creates a Scraper.
func New(opts Options) *Scraper {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "eviction-notice-bot/1.0"
	}
	if opts.RateRPS == 0 {
		opts.RateRPS = 2
	}
	return &Scraper{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RateRPS), 1),
	}
}

// DiscoverPDFs fetches the listing page and returns the absolute URLs of
// every linked PDF.
func (s *Scraper) DiscoverPDFs(ctx context.Context) ([]string, error) {
	body, err := s.get(ctx, s.opts.ListingURL)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: fetch listing page")
	}
	defer body.Close() //nolint:errcheck

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse listing page")
	}

	base, err := url.Parse(s.opts.ListingURL)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse listing url")
	}

	var urls []string
	seen := make(map[string]bool)
	doc.Find(`a[href$=".pdf"]`).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		ref, parseErr := url.Parse(href)
		if parseErr != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			urls = append(urls, abs)
		}
	})

	zap.L().Info("scrape: discovered pdf links",
		zap.String("listing", s.opts.ListingURL),
		zap.Int("count", len(urls)),
	)
	return urls, nil
}

// DownloadNew downloads any PDF not already present in the PDF directory and
// returns the local paths of every known PDF (existing plus downloaded).
func (s *Scraper) DownloadNew(ctx context.Context, urls []string) ([]string, error) {
	if err := os.MkdirAll(s.opts.PDFDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "scrape: create pdf dir %s", s.opts.PDFDir)
	}

	downloaded := 0
	for _, pdfURL := range urls {
		name := path.Base(pdfURL)
		dest := filepath.Join(s.opts.PDFDir, name)
		if _, statErr := os.Stat(dest); statErr == nil {
			continue
		}

		if err := s.download(ctx, pdfURL, dest); err != nil {
			// One bad download shouldn't stop the crawl.
			zap.L().Warn("scrape: download failed",
				zap.String("url", pdfURL),
				zap.Error(err),
			)
			continue
		}
		downloaded++
	}

	zap.L().Info("scrape: downloads complete", zap.Int("new", downloaded))

	entries, err := os.ReadDir(s.opts.PDFDir)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read pdf dir %s", s.opts.PDFDir)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(s.opts.PDFDir, e.Name()))
		}
	}
	return paths, nil
}

// download writes one PDF to a temp file and renames it into place, so an
// interrupted transfer never leaves a truncated PDF to be skipped forever.
func (s *Scraper) download(ctx context.Context, pdfURL, dest string) error {
	body, err := s.get(ctx, pdfURL)
	if err != nil {
		return err
	}
	defer body.Close() //nolint:errcheck

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return eris.Wrap(err, "scrape: create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrapf(err, "scrape: download %s", pdfURL)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "scrape: close temp file")
	}
	return eris.Wrapf(os.Rename(tmpPath, dest), "scrape: move %s into place", dest)
}

// get performs a rate-limited GET with retries and backoff.
func (s *Scraper) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt < s.opts.MaxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "scrape: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "scrape: build request %s", rawURL)
		}
		req.Header.Set("User-Agent", s.opts.UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("scrape: request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("scrape: http %d from %s", resp.StatusCode, rawURL)
			backoff(ctx, attempt)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, eris.Errorf("scrape: http %d from %s", resp.StatusCode, rawURL)
		}
		return resp.Body, nil
	}
	return nil, eris.Wrapf(lastErr, "scrape: giving up on %s after %d attempts", rawURL, s.opts.MaxRetries)
}

func backoff(ctx context.Context, attempt int) {
	delay := time.Duration(1<<attempt) * time.Second
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}
