package ingest

import (
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// Monthly converts monthly feed rows into records. A row needs a non-zero
// year and a recognizable month; anything else is dropped. The record date
// is the first of the month in UTC.
func (b *Builder) Monthly(rows []domain.RawRow, region domain.Region) ([]domain.MonthlyRecord, BuildStats) {
	stats := BuildStats{Rows: len(rows)}
	records := make([]domain.MonthlyRecord, 0, len(rows))

	for i, row := range rows {
		rawYear, _ := b.aliases.Lookup(row, FieldYear)
		year := CleanInt(rawYear)
		monthName, hasMonth := b.aliases.Lookup(row, FieldMonth)
		if year == nil || !hasMonth {
			stats.Dropped++
			b.logger.Debug("monthly row dropped", "region", region, "row", i, "reason", "missing year or month")
			continue
		}
		month, ok := parseMonth(monthName)
		if !ok || *year < 1 || *year > 9999 {
			stats.Dropped++
			b.logger.Debug("monthly row dropped", "region", region, "row", i, "reason", "unparseable period",
				"year", rawYear, "month", monthName)
			continue
		}

		records = append(records, domain.MonthlyRecord{
			ID:                recordID(domain.GranularityMonthly, region, i),
			Year:              int(*year),
			Month:             monthName,
			Date:              firstOfMonth(int(*year), month).Format(isoDate),
			Region:            region,
			AvgPrice:          b.float(row, FieldAvgPrice),
			MedPrice:          b.float(row, FieldMedPrice),
			SalesVolume:       b.integer(row, FieldSalesVolume),
			ActiveListings:    b.integer(row, FieldActiveListings),
			MonthsOfInventory: b.float(row, FieldMonthsOfInventory),
			SoldToListRatio:   b.float(row, FieldSoldToListRatio),
		})
	}

	stats.Built = len(records)
	return records, stats
}
