package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jasonmurdy-collab/MarketPulse/internal/ingest"
)

// SheetsReader reads a cell range from a spreadsheet
type SheetsReader interface {
	ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

// apiSheetsReader reads ranges through the Sheets v4 values API
type apiSheetsReader struct {
	apiKey string
	opts   []option.ClientOption
}

// NewSheetsReader creates a reader authenticated with an API key. Extra
// client options, such as an endpoint override, are passed to the service.
func NewSheetsReader(apiKey string, opts ...option.ClientOption) SheetsReader {
	return &apiSheetsReader{apiKey: apiKey, opts: opts}
}

func (r *apiSheetsReader) ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	if r.apiKey == "" {
		return nil, errors.New("sheets api key is not configured")
	}
	opts := append([]option.ClientOption{option.WithAPIKey(r.apiKey)}, r.opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", readRange, err)
	}
	return resp.Values, nil
}

func (c *Client) fetchSheets(ctx context.Context, target string) (ingest.Table, error) {
	id, readRange, err := parseSheetsTarget(target)
	if err != nil {
		return ingest.Table{}, err
	}
	values, err := c.sheets.ReadRange(ctx, id, readRange)
	if err != nil {
		return ingest.Table{}, err
	}
	return valuesToTable(values), nil
}

// parseSheetsTarget splits "{spreadsheetID}/{range}". The range may be
// URL-escaped and defaults to the whole first sheet.
func parseSheetsTarget(target string) (id, readRange string, err error) {
	id, readRange, _ = strings.Cut(target, "/")
	if id == "" {
		return "", "", fmt.Errorf("sheets locator %q: missing spreadsheet id: %w", target, ErrUnsupportedLocator)
	}
	if readRange, err = url.PathUnescape(readRange); err != nil {
		return "", "", fmt.Errorf("sheets locator %q: %w", target, err)
	}
	if readRange == "" {
		readRange = "A:Z"
	}
	return id, readRange, nil
}

func valuesToTable(values [][]interface{}) ingest.Table {
	records := make([][]string, len(values))
	for i, row := range values {
		rec := make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				rec[j] = fmt.Sprint(cell)
			}
		}
		records[i] = rec
	}
	return ingest.FromRecords(padRows(records))
}
