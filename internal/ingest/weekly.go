package ingest

import (
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

const missingLabel = "N/A"

// Weekly converts weekly feed rows into records. Rows without a parseable
// end date are dropped. Record ids use the row's position in rows, so a
// dropped row still consumes its index.
func (b *Builder) Weekly(rows []domain.RawRow, region domain.Region) ([]domain.WeeklyRecord, BuildStats) {
	stats := BuildStats{Rows: len(rows)}
	records := make([]domain.WeeklyRecord, 0, len(rows))

	for i, row := range rows {
		rawEnd, ok := b.aliases.Lookup(row, FieldEndDate)
		if !ok {
			stats.Dropped++
			b.logger.Debug("weekly row dropped", "region", region, "row", i, "reason", "missing end date")
			continue
		}
		end, ok := parseFeedDate(rawEnd)
		if !ok {
			stats.Dropped++
			b.logger.Debug("weekly row dropped", "region", region, "row", i, "reason", "invalid end date", "value", rawEnd)
			continue
		}

		records = append(records, domain.WeeklyRecord{
			ID:                recordID(domain.GranularityWeekly, region, i),
			WeekLabel:         b.weekLabel(row, rawEnd),
			WeekEndDate:       end.Format(isoDate),
			Region:            region,
			AvgPrice:          b.float(row, FieldAvgPrice),
			MedPrice:          b.float(row, FieldMedPrice),
			SalesVolume:       b.integer(row, FieldSalesVolume),
			ActiveListings:    b.integer(row, FieldActiveListings),
			MonthsOfInventory: b.float(row, FieldMonthsOfInventory),
			SoldToListRatio:   b.float(row, FieldSoldToListRatio),
			AboveListPricePct: b.float(row, FieldAboveListPct),
		})
	}

	stats.Built = len(records)
	return records, stats
}

// weekLabel prefers the published label, then "Mon D - Mon D" built from the
// start and end dates.
func (b *Builder) weekLabel(row domain.RawRow, rawEnd string) string {
	if label, ok := b.aliases.Lookup(row, FieldWeekLabel); ok {
		return label
	}
	rawStart, ok := b.aliases.Lookup(row, FieldStartDate)
	if !ok {
		return missingLabel
	}
	start, okStart := parseFeedDate(rawStart)
	end, okEnd := parseFeedDate(rawEnd)
	if !okStart || !okEnd {
		return missingLabel
	}
	return shortDate(start) + " - " + shortDate(end)
}
