package feeds

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jasonmurdy-collab/MarketPulse/internal/ingest"
)

// readWorkbook reads one worksheet of an Excel workbook. An empty sheet name
// selects the first worksheet.
func readWorkbook(data []byte, sheet string) (ingest.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return ingest.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return ingest.Table{}, fmt.Errorf("workbook has no sheets: %w", ErrEmptyFeed)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return ingest.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return ingest.FromRecords(padRows(rows)), nil
}

// padRows extends each data row to the header width. Spreadsheet readers
// omit trailing empty cells, which would otherwise look like short rows.
func padRows(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	for i := 1; i < len(rows); i++ {
		if n := len(rows[i]); n > 0 && n < width {
			padded := make([]string, width)
			copy(padded, rows[i])
			rows[i] = padded
		}
	}
	return rows
}
