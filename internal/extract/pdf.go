package extract

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Reader extracts text-based pages with ledongthuc/pdf and hands pages that
// yield almost no text (scanned images) to the OCR fallback when one is
// configured.
type Reader struct {
	minPageChars int
	ocr          *OCR
}

// NewReader creates a Reader. A nil ocr disables the image-page fallback.
func NewReader(minPageChars int, ocr *OCR) *Reader {
	if minPageChars <= 0 {
		minPageChars = 50
	}
	return &Reader{minPageChars: minPageChars, ocr: ocr}
}

// ExtractPages implements Extractor. A page that fails to extract is logged
// and skipped; one bad page never fails the document.
func (r *Reader) ExtractPages(ctx context.Context, pdfPath string) ([]Page, error) {
	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: open %s", pdfPath)
	}
	defer f.Close() //nolint:errcheck

	var pages []Page
	ocrCount := 0
	for num := 1; num <= reader.NumPage(); num++ {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "extract: cancelled")
		}

		rows, rowsErr := pageRows(reader, num)
		if rowsErr != nil {
			zap.L().Warn("extract: page text extraction failed",
				zap.String("pdf", pdfPath),
				zap.Int("page", num),
				zap.Error(rowsErr),
			)
		}

		if charCount(rows) >= r.minPageChars {
			pages = append(pages, Page{Number: num, Rows: rows})
			continue
		}

		// Almost no extractable text: the page is an image.
		if r.ocr == nil {
			continue
		}
		text, ocrErr := r.ocr.PageText(ctx, pdfPath, num)
		if ocrErr != nil {
			zap.L().Warn("extract: ocr failed",
				zap.String("pdf", pdfPath),
				zap.Int("page", num),
				zap.Error(ocrErr),
			)
			continue
		}
		ocrCount++
		pages = append(pages, Page{Number: num, Text: text, ImageBased: true})
	}

	if ocrCount > 0 {
		zap.L().Info("extract: used ocr for image-based pages",
			zap.String("pdf", pdfPath),
			zap.Int("ocr_pages", ocrCount),
			zap.Int("total_pages", reader.NumPage()),
		)
	}
	return pages, nil
}

// pageRows extracts word rows from one page. The pdf library panics on some
// malformed content streams, so this recovers and reports the page as empty.
func pageRows(reader *pdf.Reader, num int) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = eris.Errorf("extract: panic reading page %d: %v", num, r)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return nil, nil
	}

	textRows, err := page.GetTextByRow()
	if err != nil {
		return nil, eris.Wrapf(err, "extract: page %d text", num)
	}

	for _, row := range textRows {
		words := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			if s := strings.TrimSpace(word.S); s != "" {
				words = append(words, s)
			}
		}
		if len(words) > 0 {
			rows = append(rows, words)
		}
	}
	return rows, nil
}

func charCount(rows [][]string) int {
	n := 0
	for _, row := range rows {
		for _, w := range row {
			n += len(w)
		}
	}
	return n
}
