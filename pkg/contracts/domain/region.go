package domain

import (
	"fmt"
	"strings"
)

// Region identifies one of the reporting areas covered by the market feeds.
type Region string

const (
	RegionKingston           Region = "Kingston"
	RegionPrinceEdwardCounty Region = "Prince Edward County"
	RegionFrontenac          Region = "Frontenac"
	RegionBelleville         Region = "Belleville"
	RegionHastings           Region = "Hastings"
	RegionBrockville         Region = "Brockville"
	RegionNapanee            Region = "Napanee"
	RegionSmithsFalls        Region = "Smiths Falls"
)

var allRegions = []Region{
	RegionKingston,
	RegionPrinceEdwardCounty,
	RegionFrontenac,
	RegionBelleville,
	RegionHastings,
	RegionBrockville,
	RegionNapanee,
	RegionSmithsFalls,
}

var regionColors = map[Region]string{
	RegionKingston:           "#3b82f6",
	RegionPrinceEdwardCounty: "#8b5cf6",
	RegionFrontenac:          "#10b981",
	RegionBelleville:         "#f59e0b",
	RegionHastings:           "#ef4444",
	RegionBrockville:         "#06b6d4",
	RegionNapanee:            "#db2777",
	RegionSmithsFalls:        "#84cc16",
}

// AllRegions returns every region in canonical display order.
func AllRegions() []Region {
	out := make([]Region, len(allRegions))
	copy(out, allRegions)
	return out
}

// RegionCount is the size of the closed region set.
func RegionCount() int {
	return len(allRegions)
}

// ParseRegion accepts a display name in any case or its slug form.
func ParseRegion(s string) (Region, error) {
	needle := strings.TrimSpace(s)
	for _, r := range allRegions {
		if strings.EqualFold(needle, string(r)) || strings.EqualFold(needle, r.Slug()) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region %q", s)
}

// Valid reports whether r is a member of the region set.
func (r Region) Valid() bool {
	_, ok := regionColors[r]
	return ok
}

// Slug returns the lower-case, dash separated form used in URLs.
func (r Region) Slug() string {
	return strings.ToLower(strings.ReplaceAll(string(r), " ", "-"))
}

// Color returns the chart colour associated with the region.
func (r Region) Color() string {
	return regionColors[r]
}

func (r Region) String() string {
	return string(r)
}

// RegionInfo is the public description of a region.
type RegionInfo struct {
	Name  Region `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

// RegionCatalog describes every region in display order.
func RegionCatalog() []RegionInfo {
	out := make([]RegionInfo, 0, len(allRegions))
	for _, r := range allRegions {
		out = append(out, RegionInfo{Name: r, Slug: r.Slug(), Color: r.Color()})
	}
	return out
}
