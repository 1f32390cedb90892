package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jasonmurdy-collab/MarketPulse/internal/config"
	"github.com/jasonmurdy-collab/MarketPulse/internal/ingest"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int64) *int64 { return &v }

// FeedLocator is the locator FeedSources assigns to a feed
func FeedLocator(prefix string, region domain.Region, g domain.Granularity) string {
	return prefix + string(g) + "/" + region.Slug()
}

// FeedSources configures every region with a Kingston priority
func FeedSources(prefix string) *config.Sources {
	feeds := make(map[domain.Region]map[domain.Granularity]string, domain.RegionCount())
	for _, r := range domain.AllRegions() {
		feeds[r] = map[domain.Granularity]string{
			domain.GranularityWeekly:  FeedLocator(prefix, r, domain.GranularityWeekly),
			domain.GranularityMonthly: FeedLocator(prefix, r, domain.GranularityMonthly),
		}
	}
	return config.NewSources(domain.RegionKingston, feeds)
}

// WeeklyCSV renders a weekly feed with one row per end date. Average
// prices start at base and rise by 1,000 per row.
func WeeklyCSV(base float64, ends ...string) string {
	var b strings.Builder
	b.WriteString("Week,end_date,Avg Sale Price,Sales Volume,MOI,SP/LP\n")
	for i, end := range ends {
		fmt.Fprintf(&b, "Week %d,%s,\"$%.0f\",%d,2.1,98.5%%\n", i+1, end, base+float64(i)*1000, 10+i)
	}
	return b.String()
}

// MonthlyCSV renders a monthly feed. Each period is "YYYY,Month".
func MonthlyCSV(base float64, periods ...string) string {
	var b strings.Builder
	b.WriteString("Year,Month,Avg Sale Price,Sales\n")
	for i, p := range periods {
		fmt.Fprintf(&b, "%s,\"$%.0f\",%d\n", p, base+float64(i)*1000, 100+i)
	}
	return b.String()
}

// StaticFetcher serves tokenized CSV bodies by locator. Unknown locators
// fail with an error.
type StaticFetcher struct {
	mu    sync.Mutex
	feeds map[string]string
	calls []string
}

// NewStaticFetcher creates a fetcher over locator to CSV text
func NewStaticFetcher(feeds map[string]string) *StaticFetcher {
	return &StaticFetcher{feeds: feeds}
}

// UniformFetcher serves the same weekly and monthly bodies for every
// region configured by FeedSources(prefix).
func UniformFetcher(prefix, weekly, monthly string) *StaticFetcher {
	feeds := make(map[string]string, 2*domain.RegionCount())
	for _, r := range domain.AllRegions() {
		feeds[FeedLocator(prefix, r, domain.GranularityWeekly)] = weekly
		feeds[FeedLocator(prefix, r, domain.GranularityMonthly)] = monthly
	}
	return NewStaticFetcher(feeds)
}

func (f *StaticFetcher) Fetch(ctx context.Context, locator string) (ingest.Table, error) {
	if err := ctx.Err(); err != nil {
		return ingest.Table{}, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, locator)
	body, ok := f.feeds[locator]
	f.mu.Unlock()
	if !ok {
		return ingest.Table{}, fmt.Errorf("no fixture for %s", locator)
	}
	return ingest.Tokenize(body), nil
}

// Remove deletes the fixture for locator so fetching it fails
func (f *StaticFetcher) Remove(locator string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.feeds, locator)
}

// Calls returns the locators fetched so far, in call order
func (f *StaticFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
