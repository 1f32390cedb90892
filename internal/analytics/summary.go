package analytics

import (
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// Trend is the direction of a metric between two periods.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendFlat    Trend = "flat"
	TrendUnknown Trend = "unknown"
)

// Direction compares current against previous.
func Direction(current, previous *float64) Trend {
	switch {
	case current == nil || previous == nil:
		return TrendUnknown
	case *current > *previous:
		return TrendUp
	case *current < *previous:
		return TrendDown
	default:
		return TrendFlat
	}
}

// MetricChange is one headline metric compared with the prior period.
type MetricChange struct {
	Metric        domain.MetricType `json:"metric"`
	Label         string            `json:"label"`
	Current       *float64          `json:"current"`
	Previous      *float64          `json:"previous"`
	ChangePercent float64           `json:"change_percent"`
	Trend         Trend             `json:"trend"`
}

// RegionSummary is the headline view of a region's latest period.
type RegionSummary struct {
	Region         domain.Region      `json:"region"`
	Granularity    domain.Granularity `json:"granularity"`
	CurrentPeriod  string             `json:"current_period"`
	PreviousPeriod string             `json:"previous_period,omitempty"`
	Metrics        []MetricChange     `json:"metrics"`
}

// Summarize compares the headline metrics of two consecutive periods. prev
// may be the zero value when there is no earlier period.
func Summarize(cur, prev domain.Metrics) []MetricChange {
	pairs := []struct {
		metric   domain.MetricType
		cur, prv *float64
	}{
		{domain.MetricAvgPrice, cur.AvgPrice, prev.AvgPrice},
		{domain.MetricSalesVolume, intAsFloat(cur.SalesVolume), intAsFloat(prev.SalesVolume)},
		{domain.MetricMOI, cur.MonthsOfInventory, prev.MonthsOfInventory},
		{domain.MetricSoldListRatio, cur.SoldToListRatio, prev.SoldToListRatio},
	}
	out := make([]MetricChange, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, MetricChange{
			Metric:        p.metric,
			Label:         domain.MetricLabels[p.metric],
			Current:       p.cur,
			Previous:      p.prv,
			ChangePercent: PercentChange(p.cur, p.prv),
			Trend:         Direction(p.cur, p.prv),
		})
	}
	return out
}

// metricsRecord is a periodic record exposing headline metrics.
type metricsRecord interface {
	Periodic
	Metrics() domain.Metrics
}

// SummarizeRegion builds the summary for region from newest first records.
// ok is false when the region has no records.
func SummarizeRegion[T metricsRecord](sorted []T, region domain.Region, g domain.Granularity) (RegionSummary, bool) {
	current, previous := CurrentAndPrevious(sorted, region)
	if current == nil {
		return RegionSummary{}, false
	}
	summary := RegionSummary{
		Region:        region,
		Granularity:   g,
		CurrentPeriod: (*current).PeriodKey(),
	}
	var prevMetrics domain.Metrics
	if previous != nil {
		summary.PreviousPeriod = (*previous).PeriodKey()
		prevMetrics = (*previous).Metrics()
	}
	summary.Metrics = Summarize((*current).Metrics(), prevMetrics)
	return summary, true
}

func intAsFloat(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
