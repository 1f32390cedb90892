package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		input   string
		want    Region
		wantErr bool
	}{
		{input: "Kingston", want: RegionKingston},
		{input: "  kingston ", want: RegionKingston},
		{input: "PRINCE EDWARD COUNTY", want: RegionPrinceEdwardCounty},
		{input: "smiths-falls", want: RegionSmithsFalls},
		{input: "Ottawa", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRegion(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegions(t *testing.T) {
	regions := AllRegions()
	require.Len(t, regions, 8)
	assert.Equal(t, RegionKingston, regions[0])

	regions[0] = "Mutated"
	assert.Equal(t, RegionKingston, AllRegions()[0], "AllRegions returns a copy")

	catalog := RegionCatalog()
	require.Len(t, catalog, RegionCount())
	seen := map[string]bool{}
	for _, info := range catalog {
		assert.True(t, info.Name.Valid())
		assert.NotEmpty(t, info.Color)
		assert.False(t, seen[info.Color], "colours are distinct")
		seen[info.Color] = true
	}

	assert.Equal(t, "prince-edward-county", RegionPrinceEdwardCounty.Slug())
	assert.False(t, Region("Ottawa").Valid())
}

func TestGranularity(t *testing.T) {
	g, err := ParseGranularity(" Monthly ")
	require.NoError(t, err)
	assert.Equal(t, GranularityMonthly, g)

	_, err = ParseGranularity("daily")
	assert.Error(t, err)

	assert.Equal(t, "w", GranularityWeekly.IDPrefix())
	assert.Equal(t, "m", GranularityMonthly.IDPrefix())
	assert.Equal(t, 52, GranularityWeekly.RecentWindow())
	assert.Equal(t, 24, GranularityMonthly.RecentWindow())
}

func TestSnapshotStatus(t *testing.T) {
	snap := Snapshot{
		Weekly:  make([]WeeklyRecord, 3),
		Monthly: make([]MonthlyRecord, 1),
		Error:   "boom",
		Phase:   PhaseFailed,
		Version: 4,
	}
	status := snap.Status()
	assert.Equal(t, 3, status.WeeklyCount)
	assert.Equal(t, 1, status.MonthlyCount)
	assert.Equal(t, "boom", status.Error)
	assert.Equal(t, PhaseFailed, status.Phase)
	assert.Equal(t, uint64(4), status.Version)
}

func TestRunReport_FailedSources(t *testing.T) {
	report := RunReport{Sources: []SourceReport{
		{Region: RegionKingston, Records: 3},
		{Region: RegionNapanee, Error: "status 500"},
		{Region: RegionHastings, Error: "no usable rows"},
	}}
	assert.Equal(t, 2, report.FailedSources())
	assert.False(t, report.Sources[0].Failed())
}
