// Package extract pulls text out of eviction-notice PDFs. Text-based pages
// come back as word rows; image-based pages fall back to OCR and come back
// as raw text. Both shapes feed the field segmenter.
package extract

import (
	"context"
)

// Page is the extraction output for one PDF page.
type Page struct {
	Number     int
	Rows       [][]string // visual rows of words, for text-based pages
	Text       string     // raw OCR output, for image-based pages
	ImageBased bool
}

// Extractor extracts pages from a PDF file.
type Extractor interface {
	ExtractPages(ctx context.Context, pdfPath string) ([]Page, error)
}
