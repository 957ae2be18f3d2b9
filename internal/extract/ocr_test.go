package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsFromOCRText(t *testing.T) {
	text := "Case Number    Defendant Address    Eviction Date\n" +
		"2024-CAB-00123    1234 MAIN ST NW 20010    3/15/2024\n" +
		"short line\n" +
		"2024-CAB-00456\t567 OAK AVE SE 20020\t3/16/2024\n" +
		"\n" +
		"Page 2 of 3 something something\n"

	rows := RowsFromOCRText(text)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-CAB-00123", "1234 MAIN ST NW 20010", "3/15/2024"}, rows[0])
	assert.Equal(t, []string{"2024-CAB-00456", "567 OAK AVE SE 20020", "3/16/2024"}, rows[1])
}

func TestRowsFromOCRText_RequiresThreeColumns(t *testing.T) {
	// Long enough, but only two columns: noise from a paragraph, not a table
	// row.
	rows := RowsFromOCRText("some long paragraph text    with one big gap only here\n")
	assert.Empty(t, rows)
}

func TestRowsFromOCRText_Empty(t *testing.T) {
	assert.Empty(t, RowsFromOCRText(""))
	assert.Empty(t, RowsFromOCRText("\n\n\n"))
}

func TestNewOCR_Defaults(t *testing.T) {
	o := NewOCR("", "")
	assert.Equal(t, "pdftoppm", o.pdftoppmPath)
	assert.Equal(t, "tesseract", o.tesseractPath)

	o = NewOCR("/opt/poppler/bin/pdftoppm", "/usr/local/bin/tesseract")
	assert.Equal(t, "/opt/poppler/bin/pdftoppm", o.pdftoppmPath)
	assert.Equal(t, "/usr/local/bin/tesseract", o.tesseractPath)
}
