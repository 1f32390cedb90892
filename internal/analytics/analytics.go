// Package analytics derives comparison and trend views from normalized
// market records. All functions are pure and never modify their input.
package analytics

import (
	"sort"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// Periodic is implemented by both weekly and monthly records.
type Periodic interface {
	PeriodKey() string
	RegionOf() domain.Region
}

// PercentChange returns (current-previous)/previous*100. It returns 0 when
// either value is missing or previous is zero.
func PercentChange(current, previous *float64) float64 {
	if current == nil || previous == nil || *previous == 0 {
		return 0
	}
	return (*current - *previous) / *previous * 100
}

// SortNewestFirst returns a copy of records ordered by period, newest first.
// Records sharing a period keep their relative order.
func SortNewestFirst[T Periodic](records []T) []T {
	out := make([]T, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PeriodKey() > out[j].PeriodKey()
	})
	return out
}

// LatestPerRegion returns the first record seen for each region. The input
// must already be sorted newest first. Scanning stops once every region has
// been captured.
func LatestPerRegion[T Periodic](sorted []T) []T {
	total := domain.RegionCount()
	seen := make(map[domain.Region]struct{}, total)
	out := make([]T, 0, total)
	for _, r := range sorted {
		if len(seen) == total {
			break
		}
		region := r.RegionOf()
		if _, ok := seen[region]; ok {
			continue
		}
		seen[region] = struct{}{}
		out = append(out, r)
	}
	return out
}

// RecentWindow keeps the records whose period is among the n most recent
// distinct periods. Input order is preserved.
func RecentWindow[T Periodic](records []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	distinct := make(map[string]struct{})
	for _, r := range records {
		distinct[r.PeriodKey()] = struct{}{}
	}
	keys := make([]string, 0, len(distinct))
	for k := range distinct {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > n {
		keys = keys[len(keys)-n:]
	}
	keep := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		if _, ok := keep[r.PeriodKey()]; ok {
			out = append(out, r)
		}
	}
	return out
}

// ForRegion filters records to a single region, preserving order.
func ForRegion[T Periodic](records []T, region domain.Region) []T {
	out := make([]T, 0)
	for _, r := range records {
		if r.RegionOf() == region {
			out = append(out, r)
		}
	}
	return out
}

// CurrentAndPrevious returns the two newest records of region from a newest
// first slice. previous is nil when the region has a single record and both
// are nil when it has none.
func CurrentAndPrevious[T Periodic](sorted []T, region domain.Region) (current, previous *T) {
	for i := range sorted {
		if sorted[i].RegionOf() != region {
			continue
		}
		if current == nil {
			current = &sorted[i]
			continue
		}
		previous = &sorted[i]
		return current, previous
	}
	return current, previous
}
