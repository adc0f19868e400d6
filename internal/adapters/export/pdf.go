package export

import (
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
)

// thaiFontPath optionally names a TTF with Thai glyphs. Without it the
// PDF falls back to the built-in font, which renders Thai text as
// replacement characters but keeps the layout usable.
func thaiFontPath() string {
	return os.Getenv("ACADEMY_PDF_FONT")
}

// WritePDF renders the sheet as a landscape A4 table with a summary
// line showing seats taken against capacity.
func WritePDF(w io.Writer, sheet Sheet) error {
	pdf := fpdf.New("L", "mm", "A4", "")

	font := "Helvetica"
	if path := thaiFontPath(); path != "" {
		pdf.AddUTF8Font("thai", "", path)
		font = "thai"
	}

	pdf.SetFont(font, "", 14)
	pdf.AddPage()
	pdf.CellFormat(0, 10, sheet.Title, "", 1, "L", false, 0, "")

	pdf.SetFont(font, "", 10)
	summary := fmt.Sprintf("Registered %d / %d", sheet.Registered, sheet.Capacity)
	pdf.CellFormat(0, 8, summary, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := []float64{12, 45, 50, 40, 18, 45, 24, 22, 21}

	writeRow := func(cells []string, fill bool) {
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFillColor(221, 235, 247)
	writeRow(Header, true)
	for _, row := range sheet.Rows {
		if pdf.GetY() > 185 {
			pdf.AddPage()
			writeRow(Header, true)
		}
		writeRow(row, false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
