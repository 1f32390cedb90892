// Package feeds retrieves market feeds from their configured locations and
// returns them in tokenized form.
//
// Supported locators:
//
//	https://host/path.csv        CSV over HTTP(S)
//	https://host/book.xlsx#Sheet Excel workbook over HTTP(S)
//	file:///data/kingston.csv    local CSV (a bare path works too)
//	/data/kingston.xlsx#Weekly   local Excel workbook
//	sheets://{spreadsheetID}/{range}  Google Sheets values API
//
// Each Fetch makes a single attempt; retrying is left to the caller.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/jasonmurdy-collab/MarketPulse/internal/config"
	"github.com/jasonmurdy-collab/MarketPulse/internal/infrastructure"
	"github.com/jasonmurdy-collab/MarketPulse/internal/ingest"
)

const (
	defaultUserAgent    = "MarketPulse/1.0"
	defaultMaxBodyBytes = 32 << 20
)

// Fetcher retrieves one feed
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (ingest.Table, error)
}

// Client fetches feeds from every supported location type
type Client struct {
	cfg        config.FetchConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	sheets     SheetsReader
	logger     *slog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for http(s) locators
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithSheetsReader replaces the Google Sheets reader
func WithSheetsReader(r SheetsReader) Option {
	return func(cl *Client) { cl.sheets = r }
}

// NewClient creates a feed client. Outgoing requests are traced with
// otelhttp and throttled when cfg.RateLimit is positive.
func NewClient(cfg config.FetchConfig, logger *slog.Logger, opts ...Option) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: infrastructure.WithComponent(logger, "feed_client"),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sheets == nil {
		c.sheets = NewSheetsReader(cfg.SheetsAPIKey)
	}
	return c
}

// Fetch retrieves and tokenizes the feed at locator. A feed with a header
// but no usable rows returns ErrEmptyFeed.
func (c *Client) Fetch(ctx context.Context, locator string) (ingest.Table, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	table, err := c.fetch(ctx, strings.TrimSpace(locator))
	if err != nil {
		return ingest.Table{}, err
	}
	if len(table.Rows) == 0 {
		return table, fmt.Errorf("%s: %w", redact(locator), ErrEmptyFeed)
	}

	c.logger.DebugContext(ctx, "feed fetched",
		slog.String("locator", redact(locator)),
		slog.Int("rows", len(table.Rows)),
		slog.Int("skipped", table.Skipped),
		slog.Duration("duration", time.Since(start)))
	return table, nil
}

func (c *Client) fetch(ctx context.Context, locator string) (ingest.Table, error) {
	if err := c.wait(ctx); err != nil {
		return ingest.Table{}, err
	}

	switch kind, target, sheet := classify(locator); kind {
	case kindHTTP:
		return c.fetchHTTP(ctx, target, sheet)
	case kindFile:
		return c.fetchFile(ctx, target, sheet)
	case kindSheets:
		return c.fetchSheets(ctx, target)
	default:
		return ingest.Table{}, fmt.Errorf("%q: %w", locator, ErrUnsupportedLocator)
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

type locatorKind int

const (
	kindUnknown locatorKind = iota
	kindHTTP
	kindFile
	kindSheets
)

// classify splits a locator into its kind, target and optional sheet name.
// The sheet name is the URL fragment and only applies to workbooks.
func classify(locator string) (kind locatorKind, target, sheet string) {
	if locator == "" {
		return kindUnknown, "", ""
	}
	lower := strings.ToLower(locator)
	switch {
	case strings.HasPrefix(lower, "sheets://"):
		return kindSheets, locator[len("sheets://"):], ""
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		target, sheet = splitFragment(locator)
		return kindHTTP, target, sheet
	case strings.HasPrefix(lower, "file://"):
		target, sheet = splitFragment(locator[len("file://"):])
		return kindFile, target, sheet
	case strings.Contains(locator, "://"):
		return kindUnknown, "", ""
	default:
		target, sheet = splitFragment(locator)
		return kindFile, target, sheet
	}
}

func splitFragment(s string) (string, string) {
	if i := strings.LastIndex(s, "#"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func isWorkbook(path string) bool {
	p := strings.ToLower(path)
	if i := strings.IndexAny(p, "?"); i >= 0 {
		p = p[:i]
	}
	return strings.HasSuffix(p, ".xlsx") || strings.HasSuffix(p, ".xlsm")
}

// redact drops query strings, which may carry access keys, from log output.
func redact(locator string) string {
	if i := strings.Index(locator, "?"); i >= 0 {
		return locator[:i] + "?…"
	}
	return locator
}
