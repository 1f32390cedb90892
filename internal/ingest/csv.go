package ingest

import (
	"strings"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// Table is the tokenized form of a feed.
type Table struct {
	Header []string
	Rows   []domain.RawRow
	// Skipped counts non-blank lines dropped for having fewer fields than
	// the header.
	Skipped int
}

// Tokenize splits CSV text into a header and keyed rows.
//
// Commas inside double quoted fields do not split. Fields are trimmed, an
// enclosing pair of quotes is removed and doubled quotes are unescaped.
// Blank lines are ignored and a row with fewer fields than the header is
// dropped; extra trailing fields are ignored. Text with fewer than two lines
// yields no rows.
func Tokenize(text string) Table {
	lines := splitLines(strings.TrimSpace(text))
	if len(lines) < 2 {
		return Table{}
	}

	header := splitFields(lines[0])
	for i, h := range header {
		header[i] = cleanField(h)
	}

	table := Table{Header: header, Rows: make([]domain.RawRow, 0, len(lines)-1)}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := splitFields(line)
		if len(values) < len(header) {
			table.Skipped++
			continue
		}
		row := make(domain.RawRow, len(header))
		for i, name := range header {
			row[name] = cleanField(values[i])
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// FromRecords builds a Table from already split records, applying the same
// row rules as Tokenize. It is used for spreadsheet sources.
func FromRecords(records [][]string) Table {
	if len(records) < 2 {
		return Table{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = cleanField(h)
	}
	table := Table{Header: header, Rows: make([]domain.RawRow, 0, len(records)-1)}
	for _, rec := range records[1:] {
		if isBlankRecord(rec) {
			continue
		}
		if len(rec) < len(header) {
			table.Skipped++
			continue
		}
		row := make(domain.RawRow, len(header))
		for i, name := range header {
			row[name] = cleanField(rec[i])
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// splitFields splits on commas that are followed by an even number of
// quote characters on the rest of the line, i.e. commas outside quotes.
func splitFields(line string) []string {
	remaining := strings.Count(line, `"`)
	fields := make([]string, 0, strings.Count(line, ",")+1)
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			remaining--
		case ',':
			if remaining%2 == 0 {
				fields = append(fields, line[start:i])
				start = i + 1
			}
		}
	}
	return append(fields, line[start:])
}

func cleanField(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		if len(v) < 2 {
			v = ""
		} else {
			v = v[1 : len(v)-1]
		}
	}
	return strings.ReplaceAll(v, `""`, `"`)
}
