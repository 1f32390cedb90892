package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jasonmurdy-collab/MarketPulse/internal/ingest"
)

func (c *Client) fetchHTTP(ctx context.Context, url, sheet string) (ingest.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ingest.Table{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/csv, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ingest.Table{}, fmt.Errorf("GET %s: %w", redact(url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return ingest.Table{}, &StatusError{URL: redact(url), StatusCode: resp.StatusCode}
	}

	body, err := readLimited(resp.Body, c.cfg.MaxBodyBytes)
	if err != nil {
		return ingest.Table{}, fmt.Errorf("GET %s: %w", redact(url), err)
	}

	if isWorkbook(url) || isWorkbookContentType(resp.Header.Get("Content-Type")) {
		return readWorkbook(body, sheet)
	}
	return ingest.Tokenize(string(body)), nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

func isWorkbookContentType(ct string) bool {
	return ct == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
