package domain

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the reporting period of a feed.
type Granularity string

const (
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// Granularities lists both reporting periods.
func Granularities() []Granularity {
	return []Granularity{GranularityWeekly, GranularityMonthly}
}

// ParseGranularity accepts "weekly" or "monthly" in any case.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case GranularityWeekly:
		return GranularityWeekly, nil
	case GranularityMonthly:
		return GranularityMonthly, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// IDPrefix is the record identifier tag for the granularity.
func (g Granularity) IDPrefix() string {
	if g == GranularityMonthly {
		return "m"
	}
	return "w"
}

// RecentWindow is the number of distinct periods kept for trend display.
func (g Granularity) RecentWindow() int {
	if g == GranularityMonthly {
		return 24
	}
	return 52
}

// RawRow maps a trimmed header name to its trimmed cell value.
type RawRow map[string]string

// WeeklyRecord is one normalized row of a weekly feed.
// Numeric fields are nil when the feed carried no usable value.
type WeeklyRecord struct {
	ID                string   `json:"id" validate:"required"`
	WeekLabel         string   `json:"week_range"`
	WeekEndDate       string   `json:"week_end_date" validate:"required,datetime=2006-01-02"`
	Region            Region   `json:"region" validate:"required"`
	AvgPrice          *float64 `json:"avg_price"`
	MedPrice          *float64 `json:"med_price"`
	SalesVolume       *int64   `json:"sales_volume"`
	ActiveListings    *int64   `json:"active_listings"`
	MonthsOfInventory *float64 `json:"moi"`
	SoldToListRatio   *float64 `json:"sold_list_ratio"`
	AboveListPricePct *float64 `json:"above_list_price_pct,omitempty"`
}

// MonthlyRecord is one normalized row of a monthly feed.
type MonthlyRecord struct {
	ID                string   `json:"id" validate:"required"`
	Year              int      `json:"year" validate:"required"`
	Month             string   `json:"month" validate:"required"`
	Date              string   `json:"date" validate:"required,datetime=2006-01-02"`
	Region            Region   `json:"region" validate:"required"`
	AvgPrice          *float64 `json:"avg_price"`
	MedPrice          *float64 `json:"med_price"`
	SalesVolume       *int64   `json:"sales_volume"`
	ActiveListings    *int64   `json:"active_listings"`
	MonthsOfInventory *float64 `json:"moi"`
	SoldToListRatio   *float64 `json:"sold_list_ratio"`
}

// PeriodKey returns the ISO week end date.
func (r WeeklyRecord) PeriodKey() string { return r.WeekEndDate }

// RegionOf returns the record's region.
func (r WeeklyRecord) RegionOf() Region { return r.Region }

// Metrics exposes the headline metrics of the record.
func (r WeeklyRecord) Metrics() Metrics {
	return Metrics{
		AvgPrice:          r.AvgPrice,
		MedPrice:          r.MedPrice,
		SalesVolume:       r.SalesVolume,
		ActiveListings:    r.ActiveListings,
		MonthsOfInventory: r.MonthsOfInventory,
		SoldToListRatio:   r.SoldToListRatio,
	}
}

// PeriodKey returns the ISO first-of-month date.
func (r MonthlyRecord) PeriodKey() string { return r.Date }

// RegionOf returns the record's region.
func (r MonthlyRecord) RegionOf() Region { return r.Region }

// Metrics exposes the headline metrics of the record.
func (r MonthlyRecord) Metrics() Metrics {
	return Metrics{
		AvgPrice:          r.AvgPrice,
		MedPrice:          r.MedPrice,
		SalesVolume:       r.SalesVolume,
		ActiveListings:    r.ActiveListings,
		MonthsOfInventory: r.MonthsOfInventory,
		SoldToListRatio:   r.SoldToListRatio,
	}
}

// Metrics is the granularity independent view of a record.
type Metrics struct {
	AvgPrice          *float64
	MedPrice          *float64
	SalesVolume       *int64
	ActiveListings    *int64
	MonthsOfInventory *float64
	SoldToListRatio   *float64
}

// MetricType names a headline metric.
type MetricType string

const (
	MetricAvgPrice      MetricType = "avg_price"
	MetricSalesVolume   MetricType = "sales_volume"
	MetricMOI           MetricType = "moi"
	MetricSoldListRatio MetricType = "sold_list_ratio"
)

// MetricLabels are the short display labels for the headline metrics.
var MetricLabels = map[MetricType]string{
	MetricAvgPrice:      "Avg Price",
	MetricSalesVolume:   "Sales Vol",
	MetricMOI:           "Inventory (MOI)",
	MetricSoldListRatio: "SP/LP %",
}

// Phase reports how far an ingestion cycle has progressed.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePriority   Phase = "priority"
	PhaseBackground Phase = "background"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
)

// Snapshot is an immutable view of the ingested market data.
// Slices must not be modified by readers.
type Snapshot struct {
	Weekly    []WeeklyRecord  `json:"weekly"`
	Monthly   []MonthlyRecord `json:"monthly"`
	Loading   bool            `json:"loading"`
	Error     string          `json:"error,omitempty"`
	Phase     Phase           `json:"phase"`
	Version   uint64          `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Status is the snapshot without its record payload.
type Status struct {
	Loading      bool      `json:"loading"`
	Error        string    `json:"error,omitempty"`
	Phase        Phase     `json:"phase"`
	Version      uint64    `json:"version"`
	WeeklyCount  int       `json:"weekly_count"`
	MonthlyCount int       `json:"monthly_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Status summarizes the snapshot.
func (s Snapshot) Status() Status {
	return Status{
		Loading:      s.Loading,
		Error:        s.Error,
		Phase:        s.Phase,
		Version:      s.Version,
		WeeklyCount:  len(s.Weekly),
		MonthlyCount: len(s.Monthly),
		UpdatedAt:    s.UpdatedAt,
	}
}
