package services

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/jasonmurdy-collab/MarketPulse/internal/config"
	"github.com/jasonmurdy-collab/MarketPulse/internal/ingest"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// MockFetcher is a testify mock of feeds.Fetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, locator string) (ingest.Table, error) {
	args := m.Called(ctx, locator)
	table, _ := args.Get(0).(ingest.Table)
	return table, args.Error(1)
}

// fetcherFunc adapts a function to feeds.Fetcher
type fetcherFunc func(ctx context.Context, locator string) (ingest.Table, error)

func (f fetcherFunc) Fetch(ctx context.Context, locator string) (ingest.Table, error) {
	return f(ctx, locator)
}

type stubClients int

func (s stubClients) ClientCount() int { return int(s) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// locatorFor is the locator testSources assigns to a feed
func locatorFor(region domain.Region, g domain.Granularity) string {
	return g.IDPrefix() + "/" + region.Slug()
}

// testSources builds a Kingston-first source set, prefixing every locator
// with base.
func testSources(base string) *config.Sources {
	feeds := make(map[domain.Region]map[domain.Granularity]string)
	for _, r := range domain.AllRegions() {
		feeds[r] = map[domain.Granularity]string{
			domain.GranularityWeekly:  base + locatorFor(r, domain.GranularityWeekly),
			domain.GranularityMonthly: base + locatorFor(r, domain.GranularityMonthly),
		}
	}
	return config.NewSources(domain.RegionKingston, feeds)
}

func weeklyTable(ends ...string) ingest.Table {
	lines := []string{"end_date,Avg Sale Price,Sales,MOI"}
	for _, end := range ends {
		lines = append(lines, end+",\"$500,000\",10,2.5")
	}
	return ingest.Tokenize(strings.Join(lines, "\n"))
}

func monthlyTable(periods ...string) ingest.Table {
	lines := []string{"Year,Month,Avg Sale Price,SP/LP"}
	for _, p := range periods {
		lines = append(lines, p+",\"$610,250\",99.1%")
	}
	return ingest.Tokenize(strings.Join(lines, "\n"))
}
