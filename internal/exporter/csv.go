package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jasonmurdy-collab/MarketPulse/internal/ingest"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// utf8BOM lets spreadsheet applications detect the encoding
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options controls how records are rendered
type Options struct {
	// Display renders values for people instead of machines.
	Display bool
	// BOMPrefix writes a UTF-8 byte order mark before CSV output.
	BOMPrefix bool
}

// WriteWeeklyCSV writes weekly records with a header row
func WriteWeeklyCSV(w io.Writer, records []domain.WeeklyRecord, opts Options) error {
	return writeCSV(w, weeklyColumns, records, opts)
}

// WriteMonthlyCSV writes monthly records with a header row
func WriteMonthlyCSV(w io.Writer, records []domain.MonthlyRecord, opts Options) error {
	return writeCSV(w, monthlyColumns, records, opts)
}

// WriteCSV writes the snapshot records of one granularity
func WriteCSV(w io.Writer, g domain.Granularity, snap domain.Snapshot, opts Options) error {
	switch g {
	case domain.GranularityWeekly:
		return WriteWeeklyCSV(w, snap.Weekly, opts)
	case domain.GranularityMonthly:
		return WriteMonthlyCSV(w, snap.Monthly, opts)
	}
	return fmt.Errorf("unsupported granularity %q", g)
}

// WriteTable re-serializes a tokenized feed in its original column order
func WriteTable(w io.Writer, table ingest.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(table.Header))
	for i, row := range table.Rows {
		for j, name := range table.Header {
			record[j] = row[name]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeCSV[T any](w io.Writer, cols []column[T], records []T, opts Options) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(headers(cols)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var f *Formatter
	if opts.Display {
		f = NewFormatter()
	}

	row := make([]string, len(cols))
	for i, r := range records {
		for j, c := range cols {
			if f != nil {
				row[j] = c.display(r, f)
			} else {
				row[j] = c.rawString(r)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
