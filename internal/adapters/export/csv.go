package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM makes Excel open the file with Thai text intact.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV renders the sheet as UTF-8 CSV with a byte order mark.
// POST: w holds the BOM, the header row, and one row per registrant
func WriteCSV(w io.Writer, sheet Sheet) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write csv bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range sheet.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
