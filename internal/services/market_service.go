package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jasonmurdy-collab/MarketPulse/internal/analytics"
	"github.com/jasonmurdy-collab/MarketPulse/internal/infrastructure"
	"github.com/jasonmurdy-collab/MarketPulse/internal/store"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// MarketQuery narrows a record listing
type MarketQuery struct {
	// Region limits results to one region when set
	Region domain.Region
	// Recent keeps only the trailing window (52 weeks or 24 months)
	Recent bool
}

// MarketService answers read queries against the current snapshot
type MarketService struct {
	store  *store.MarketStore
	logger *slog.Logger
}

// NewMarketService creates the read-side service
func NewMarketService(st *store.MarketStore, logger *slog.Logger) *MarketService {
	return &MarketService{store: st, logger: infrastructure.WithComponent(logger, "market_service")}
}

// Status returns the loading and error state of the current snapshot
func (s *MarketService) Status(ctx context.Context) domain.Status {
	return s.store.Snapshot().Status()
}

// Snapshot exposes the current snapshot
func (s *MarketService) Snapshot(ctx context.Context) domain.Snapshot {
	return s.store.Snapshot()
}

// Regions returns the region catalog
func (s *MarketService) Regions(ctx context.Context) []domain.RegionInfo {
	return domain.RegionCatalog()
}

// Weekly returns weekly records newest first
func (s *MarketService) Weekly(ctx context.Context, q MarketQuery) ([]domain.WeeklyRecord, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return query(s.store.Snapshot().Weekly, q, domain.GranularityWeekly), nil
}

// Monthly returns monthly records newest first
func (s *MarketService) Monthly(ctx context.Context, q MarketQuery) ([]domain.MonthlyRecord, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	return query(s.store.Snapshot().Monthly, q, domain.GranularityMonthly), nil
}

// LatestWeekly returns the newest weekly record of each region
func (s *MarketService) LatestWeekly(ctx context.Context) []domain.WeeklyRecord {
	return analytics.LatestPerRegion(analytics.SortNewestFirst(s.store.Snapshot().Weekly))
}

// LatestMonthly returns the newest monthly record of each region
func (s *MarketService) LatestMonthly(ctx context.Context) []domain.MonthlyRecord {
	return analytics.LatestPerRegion(analytics.SortNewestFirst(s.store.Snapshot().Monthly))
}

// RegionSummary compares a region's latest period with the one before it
func (s *MarketService) RegionSummary(ctx context.Context, region domain.Region, g domain.Granularity) (analytics.RegionSummary, error) {
	if !region.Valid() {
		return analytics.RegionSummary{}, fmt.Errorf("%w: %q", ErrInvalidRegion, region)
	}

	snap := s.store.Snapshot()
	var (
		summary analytics.RegionSummary
		ok      bool
	)
	switch g {
	case domain.GranularityWeekly:
		summary, ok = analytics.SummarizeRegion(analytics.SortNewestFirst(snap.Weekly), region, g)
	case domain.GranularityMonthly:
		summary, ok = analytics.SummarizeRegion(analytics.SortNewestFirst(snap.Monthly), region, g)
	default:
		return analytics.RegionSummary{}, fmt.Errorf("%w: %q", ErrInvalidGranularity, g)
	}
	if !ok {
		return analytics.RegionSummary{}, fmt.Errorf("%w for %s", ErrNoMarketData, region)
	}
	return summary, nil
}

func (q MarketQuery) validate() error {
	if q.Region != "" && !q.Region.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRegion, q.Region)
	}
	return nil
}

// query filters by region, then applies the recent window, then sorts
func query[T analytics.Periodic](records []T, q MarketQuery, g domain.Granularity) []T {
	if q.Region != "" {
		records = analytics.ForRegion(records, q.Region)
	}
	if q.Recent {
		records = analytics.RecentWindow(records, g.RecentWindow())
	}
	return analytics.SortNewestFirst(records)
}
