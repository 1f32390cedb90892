package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

func TestDirection(t *testing.T) {
	assert.Equal(t, TrendUp, Direction(f(2), f(1)))
	assert.Equal(t, TrendDown, Direction(f(1), f(2)))
	assert.Equal(t, TrendFlat, Direction(f(1), f(1)))
	assert.Equal(t, TrendUnknown, Direction(nil, f(1)))
	assert.Equal(t, TrendUnknown, Direction(f(1), nil))
}

func TestSummarizeRegion(t *testing.T) {
	vol := func(v int64) *int64 { return &v }
	records := SortNewestFirst([]domain.MonthlyRecord{
		{Region: domain.RegionKingston, Date: "2024-01-01", AvgPrice: f(500000), SalesVolume: vol(100), MonthsOfInventory: f(2)},
		{Region: domain.RegionKingston, Date: "2024-02-01", AvgPrice: f(550000), SalesVolume: vol(80), MonthsOfInventory: f(2)},
	})

	summary, ok := SummarizeRegion(records, domain.RegionKingston, domain.GranularityMonthly)

	require.True(t, ok)
	assert.Equal(t, "2024-02-01", summary.CurrentPeriod)
	assert.Equal(t, "2024-01-01", summary.PreviousPeriod)
	require.Len(t, summary.Metrics, 4)

	avg := summary.Metrics[0]
	assert.Equal(t, domain.MetricAvgPrice, avg.Metric)
	assert.Equal(t, "Avg Price", avg.Label)
	assert.InDelta(t, 10.0, avg.ChangePercent, 1e-9)
	assert.Equal(t, TrendUp, avg.Trend)

	sales := summary.Metrics[1]
	assert.InDelta(t, -20.0, sales.ChangePercent, 1e-9)
	assert.Equal(t, TrendDown, sales.Trend)

	assert.Equal(t, TrendFlat, summary.Metrics[2].Trend)
	assert.Equal(t, TrendUnknown, summary.Metrics[3].Trend)
	assert.Zero(t, summary.Metrics[3].ChangePercent)
}

func TestSummarizeRegion_SinglePeriod(t *testing.T) {
	records := []domain.WeeklyRecord{{Region: domain.RegionNapanee, WeekEndDate: "2024-01-07", AvgPrice: f(1)}}

	summary, ok := SummarizeRegion(records, domain.RegionNapanee, domain.GranularityWeekly)
	require.True(t, ok)
	assert.Empty(t, summary.PreviousPeriod)
	assert.Equal(t, TrendUnknown, summary.Metrics[0].Trend)

	_, ok = SummarizeRegion(records, domain.RegionKingston, domain.GranularityWeekly)
	assert.False(t, ok)
}
