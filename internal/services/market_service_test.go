package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonmurdy-collab/MarketPulse/internal/store"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

func fp(v float64) *float64 { return &v }

func seededStore(t *testing.T) *store.MarketStore {
	t.Helper()
	st := store.New()
	var weekly []domain.WeeklyRecord
	for i := 0; i < 60; i++ {
		end := fmt.Sprintf("2024-%02d-%02d", 1+i/28, 1+i%28)
		weekly = append(weekly, domain.WeeklyRecord{
			ID:          fmt.Sprintf("w-Kingston-%d", i),
			WeekEndDate: end,
			Region:      domain.RegionKingston,
			AvgPrice:    fp(float64(400000 + i*1000)),
		})
	}
	weekly = append(weekly, domain.WeeklyRecord{
		ID: "w-Napanee-0", WeekEndDate: "2024-03-01", Region: domain.RegionNapanee, AvgPrice: fp(300000),
	})
	monthly := []domain.MonthlyRecord{
		{ID: "m-Kingston-0", Date: "2024-09-01", Region: domain.RegionKingston, AvgPrice: fp(500000)},
		{ID: "m-Kingston-1", Date: "2024-10-01", Region: domain.RegionKingston, AvgPrice: fp(550000)},
		{ID: "m-Napanee-0", Date: "2024-10-01", Region: domain.RegionNapanee},
	}
	st.ReplacePriority(weekly, monthly)
	return st
}

func TestMarketService_Weekly(t *testing.T) {
	svc := NewMarketService(seededStore(t), discardLogger())
	ctx := context.Background()

	tests := []struct {
		name      string
		query     MarketQuery
		wantLen   int
		wantFirst string
		wantErr   error
	}{
		{name: "all records", query: MarketQuery{}, wantLen: 61, wantFirst: "w-Kingston-59"},
		{name: "region filter", query: MarketQuery{Region: domain.RegionNapanee}, wantLen: 1, wantFirst: "w-Napanee-0"},
		{name: "recent window", query: MarketQuery{Region: domain.RegionKingston, Recent: true}, wantLen: 52, wantFirst: "w-Kingston-59"},
		{name: "unknown region", query: MarketQuery{Region: "Ottawa"}, wantErr: ErrInvalidRegion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := svc.Weekly(ctx, tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, records, tt.wantLen)
			assert.Equal(t, tt.wantFirst, records[0].ID)
			for i := 1; i < len(records); i++ {
				assert.GreaterOrEqual(t, records[i-1].WeekEndDate, records[i].WeekEndDate)
			}
		})
	}
}

func TestMarketService_Monthly(t *testing.T) {
	svc := NewMarketService(seededStore(t), discardLogger())

	records, err := svc.Monthly(context.Background(), MarketQuery{Region: domain.RegionKingston})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-10-01", records[0].Date)
}

func TestMarketService_Latest(t *testing.T) {
	svc := NewMarketService(seededStore(t), discardLogger())
	ctx := context.Background()

	weekly := svc.LatestWeekly(ctx)
	require.Len(t, weekly, 2)
	assert.Equal(t, "w-Kingston-59", weekly[0].ID)
	assert.Equal(t, domain.RegionNapanee, weekly[1].Region)

	monthly := svc.LatestMonthly(ctx)
	require.Len(t, monthly, 2)
	for _, r := range monthly {
		assert.Equal(t, "2024-10-01", r.Date)
	}
}

func TestMarketService_RegionSummary(t *testing.T) {
	svc := NewMarketService(seededStore(t), discardLogger())
	ctx := context.Background()

	summary, err := svc.RegionSummary(ctx, domain.RegionKingston, domain.GranularityMonthly)
	require.NoError(t, err)
	assert.Equal(t, "2024-10-01", summary.CurrentPeriod)
	assert.Equal(t, "2024-09-01", summary.PreviousPeriod)
	require.NotEmpty(t, summary.Metrics)
	assert.Equal(t, domain.MetricAvgPrice, summary.Metrics[0].Metric)
	assert.InDelta(t, 10.0, summary.Metrics[0].ChangePercent, 1e-9)

	_, err = svc.RegionSummary(ctx, domain.RegionBrockville, domain.GranularityWeekly)
	assert.ErrorIs(t, err, ErrNoMarketData)

	_, err = svc.RegionSummary(ctx, "Ottawa", domain.GranularityWeekly)
	assert.ErrorIs(t, err, ErrInvalidRegion)

	_, err = svc.RegionSummary(ctx, domain.RegionKingston, "daily")
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestMarketService_Status(t *testing.T) {
	st := store.New()
	svc := NewMarketService(st, nil)

	status := svc.Status(context.Background())
	assert.True(t, status.Loading)
	assert.Zero(t, status.WeeklyCount)

	st.Fail(DegradedMessage)
	status = svc.Status(context.Background())
	assert.False(t, status.Loading)
	assert.Equal(t, DegradedMessage, status.Error)

	assert.Len(t, svc.Regions(context.Background()), domain.RegionCount())
}
