package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// File names written by ExportDir
const (
	WeeklyFile   = "weekly.csv"
	MonthlyFile  = "monthly.csv"
	WorkbookFile = "market.xlsx"
)

// ExportDir writes both CSV files and the workbook into dir and returns the
// paths written.
func ExportDir(dir string, snap domain.Snapshot, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{WeeklyFile, func(w io.Writer) error { return WriteWeeklyCSV(w, snap.Weekly, opts) }},
		{MonthlyFile, func(w io.Writer) error { return WriteMonthlyCSV(w, snap.Monthly, opts) }},
		{WorkbookFile, func(w io.Writer) error { return WriteWorkbook(w, snap, opts) }},
	}

	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := writeFile(path, out.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	if err := write(file); err != nil {
		return fmt.Errorf("failed to export %s: %w", filepath.Base(path), err)
	}
	return nil
}
