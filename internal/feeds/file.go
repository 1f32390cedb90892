package feeds

import (
	"context"
	"fmt"
	"os"

	"github.com/jasonmurdy-collab/MarketPulse/internal/ingest"
)

func (c *Client) fetchFile(ctx context.Context, path, sheet string) (ingest.Table, error) {
	if err := ctx.Err(); err != nil {
		return ingest.Table{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return ingest.Table{}, fmt.Errorf("open feed file: %w", err)
	}
	defer f.Close()

	body, err := readLimited(f, c.cfg.MaxBodyBytes)
	if err != nil {
		return ingest.Table{}, fmt.Errorf("%s: %w", path, err)
	}

	if isWorkbook(path) {
		return readWorkbook(body, sheet)
	}
	return ingest.Tokenize(string(body)), nil
}
