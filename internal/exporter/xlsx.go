package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

const (
	WeeklySheet  = "Weekly"
	MonthlySheet = "Monthly"
)

// WriteWorkbook writes a workbook with one sheet per granularity
func WriteWorkbook(w io.Writer, snap domain.Snapshot, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", WeeklySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(MonthlySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeSheet(f, WeeklySheet, weeklyColumns, snap.Weekly, opts); err != nil {
		return err
	}
	if err := writeSheet(f, MonthlySheet, monthlyColumns, snap.Monthly, opts); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet[T any](f *excelize.File, sheet string, cols []column[T], records []T, opts Options) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open %s sheet: %w", sheet, err)
	}

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	var formatter *Formatter
	if opts.Display {
		formatter = NewFormatter()
	}

	for i, r := range records {
		values := make([]interface{}, len(cols))
		for j, c := range cols {
			if formatter != nil {
				values[j] = c.display(r, formatter)
			} else {
				values[j] = c.raw(r)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s sheet: %w", sheet, err)
	}
	return nil
}
