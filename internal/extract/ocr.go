package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// OCR renders a PDF page to an image with pdftoppm and reads it with
// tesseract. Both tools are external binaries; paths are configurable.
type OCR struct {
	pdftoppmPath  string
	tesseractPath string
}

// NewOCR creates an OCR runner. Empty paths fall back to the bare tool names.
func NewOCR(pdftoppmPath, tesseractPath string) *OCR {
	if pdftoppmPath == "" {
		pdftoppmPath = "pdftoppm"
	}
	if tesseractPath == "" {
		tesseractPath = "tesseract"
	}
	return &OCR{pdftoppmPath: pdftoppmPath, tesseractPath: tesseractPath}
}

// PageText OCRs a single page of the given PDF.
func (o *OCR) PageText(ctx context.Context, pdfPath string, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "eviction-ocr-*")
	if err != nil {
		return "", eris.Wrap(err, "extract: create ocr temp dir")
	}
	defer os.RemoveAll(tmpDir) //nolint:errcheck

	prefix := filepath.Join(tmpDir, "page")
	pageArg := fmt.Sprintf("%d", page)

	var stderr bytes.Buffer
	render := exec.CommandContext(ctx, o.pdftoppmPath,
		"-png", "-r", "300", "-f", pageArg, "-l", pageArg, pdfPath, prefix)
	render.Stderr = &stderr
	if err := render.Run(); err != nil {
		return "", eris.Wrapf(err, "extract: pdftoppm page %d of %s: %s", page, pdfPath, stderr.String())
	}

	images, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(images) == 0 {
		return "", eris.Errorf("extract: pdftoppm produced no image for page %d of %s", page, pdfPath)
	}

	var stdout bytes.Buffer
	stderr.Reset()
	ocr := exec.CommandContext(ctx, o.tesseractPath, images[0], "stdout")
	ocr.Stdout = &stdout
	ocr.Stderr = &stderr
	if err := ocr.Run(); err != nil {
		return "", eris.Wrapf(err, "extract: tesseract page %d of %s: %s", page, pdfPath, stderr.String())
	}

	return stdout.String(), nil
}

// OCR text is noisier than extracted text, so rows are rebuilt with a
// stricter prefilter before segmentation.
const (
	minOCRLineLen = 20
	minOCRColumns = 3
)

var (
	ocrColumnSplitRe = regexp.MustCompile(`\s{2,}|\t`)
	ocrHeaderWords   = []string{"case number", "defendant address", "eviction date", "page"}
)

// RowsFromOCRText converts raw OCR output into the same row-of-cells shape
// produced for text-based pages. Header-like and too-short lines are
// dropped; a data row needs at least a case, an address, and a date column.
func RowsFromOCRText(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < minOCRLineLen || isOCRHeader(line) {
			continue
		}
		cells := ocrColumnSplitRe.Split(line, -1)
		if len(cells) >= minOCRColumns {
			rows = append(rows, cells)
		}
	}
	return rows
}

func isOCRHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range ocrHeaderWords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
