package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScraper(listingURL, pdfDir string) *Scraper {
	return New(Options{
		ListingURL: listingURL,
		PDFDir:     pdfDir,
		UserAgent:  "test-agent",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		RateRPS:    1000,
	})
}

func TestDiscoverPDFs(t *testing.T) {
	const page = `<html><body>
		<a href="/sites/default/files/notice-2024-03-15.pdf">March 15</a>
		<a href="notice-2024-03-22.pdf">March 22</a>
		<a href="/sites/default/files/notice-2024-03-15.pdf">duplicate</a>
		<a href="https://example.org/elsewhere/other.pdf">absolute</a>
		<a href="/page/about">not a pdf</a>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	s := newTestScraper(srv.URL+"/page/scheduled-evictions", t.TempDir())
	urls, err := s.DiscoverPDFs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		srv.URL + "/sites/default/files/notice-2024-03-15.pdf",
		srv.URL + "/page/notice-2024-03-22.pdf",
		"https://example.org/elsewhere/other.pdf",
	}, urls)
}

func TestDiscoverPDFs_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := newTestScraper(srv.URL, t.TempDir())
	_, err := s.DiscoverPDFs(context.Background())
	require.Error(t, err)
}

func TestDownloadNew(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "pdf bytes for %s", r.URL.Path)
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := newTestScraper(srv.URL, dir)

	paths, err := s.DownloadNew(context.Background(), []string{
		srv.URL + "/a.pdf",
		srv.URL + "/b.pdf",
	})
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	data, err := os.ReadFile(filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes for /a.pdf", string(data))
}

func TestDownloadNew_SkipsExisting(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "fresh bytes")
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("already here"), 0o644))

	s := newTestScraper(srv.URL, dir)
	paths, err := s.DownloadNew(context.Background(), []string{srv.URL + "/a.pdf"})
	require.NoError(t, err)
	assert.Len(t, paths, 1)
	assert.Zero(t, hits.Load())

	data, err := os.ReadFile(filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "already here", string(data))
}

func TestDownloadNew_BadURLContinues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad.pdf" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, "good bytes")
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := newTestScraper(srv.URL, dir)

	paths, err := s.DownloadNew(context.Background(), []string{
		srv.URL + "/bad.pdf",
		srv.URL + "/good.pdf",
	})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "good.pdf"), paths[0])
}

func TestGet_RetriesOn500(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "<html></html>")
	}))
	defer srv.Close()

	s := newTestScraper(srv.URL, t.TempDir())
	_, err := s.DiscoverPDFs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), hits.Load())
}
