package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

func sourcesDoc(priority string, regions []domain.Region) string {
	var b strings.Builder
	fmt.Fprintf(&b, "priority_region: %s\nsources:\n", priority)
	for _, r := range regions {
		fmt.Fprintf(&b, "  - region: %s\n    weekly: https://feeds.example.com/%s/weekly.csv\n    monthly: file://data/%s-monthly.csv\n",
			r, r.Slug(), r.Slug())
	}
	return b.String()
}

func TestParseSources(t *testing.T) {
	src, err := ParseSources([]byte(sourcesDoc("kingston", domain.AllRegions())))
	require.NoError(t, err)

	assert.Equal(t, domain.RegionKingston, src.Priority)
	loc, err := src.Locator(domain.RegionSmithsFalls, domain.GranularityWeekly)
	require.NoError(t, err)
	assert.Equal(t, "https://feeds.example.com/smiths-falls/weekly.csv", loc)

	loc, err = src.Locator(domain.RegionKingston, domain.GranularityMonthly)
	require.NoError(t, err)
	assert.Equal(t, "file://data/kingston-monthly.csv", loc)

	background := src.Background()
	assert.Len(t, background, domain.RegionCount()-1)
	assert.NotContains(t, background, domain.RegionKingston)
}

func TestParseSources_Invalid(t *testing.T) {
	all := domain.AllRegions()
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown priority", doc: sourcesDoc("Toronto", all)},
		{name: "missing region", doc: sourcesDoc("Kingston", all[:len(all)-1])},
		{name: "duplicate region", doc: sourcesDoc("Kingston", append(all, domain.RegionNapanee))},
		{name: "unknown region", doc: sourcesDoc("Kingston", append(all[:len(all):len(all)], domain.Region("Ottawa")))},
		{name: "missing locator", doc: "priority_region: Kingston\nsources:\n  - region: Kingston\n    weekly: x.csv\n"},
		{name: "not yaml", doc: "priority_region: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSources([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sourcesDoc("Belleville", domain.AllRegions())), 0o600))

	src, err := LoadSources(path)
	require.NoError(t, err)
	assert.Equal(t, domain.RegionBelleville, src.Priority)

	_, err = LoadSources(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSources_LocatorMissing(t *testing.T) {
	src := NewSources(domain.RegionKingston, map[domain.Region]map[domain.Granularity]string{
		domain.RegionKingston: {domain.GranularityWeekly: "w.csv"},
	})

	_, err := src.Locator(domain.RegionKingston, domain.GranularityMonthly)
	assert.Error(t, err)
	_, err = src.Locator(domain.RegionNapanee, domain.GranularityWeekly)
	assert.Error(t, err)
}
