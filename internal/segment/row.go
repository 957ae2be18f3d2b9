package segment

import (
	"strings"

	"github.com/taymnichols/eviction-notice-bot/internal/model"
)

// Row parses one structured table row. Cells are joined into a flat line,
// dropping empty and "nan" placeholder cells, so table rows and OCR text
// lines flow through the same segmentation path.
func (s *Segmenter) Row(cells []string, sourceDoc string, stats *Stats) []model.ParsedCase {
	kept := make([]string, 0, len(cells))
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" || strings.EqualFold(cell, "nan") {
			continue
		}
		kept = append(kept, cell)
	}
	return s.Line(strings.Join(kept, " "), sourceDoc, stats)
}
