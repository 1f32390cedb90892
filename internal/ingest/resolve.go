package ingest

import (
	"strings"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// Field is a logical column understood by the record builders.
type Field string

const (
	FieldEndDate           Field = "end_date"
	FieldStartDate         Field = "start_date"
	FieldWeekLabel         Field = "week_label"
	FieldAvgPrice          Field = "avg_price"
	FieldMedPrice          Field = "med_price"
	FieldSalesVolume       Field = "sales_volume"
	FieldActiveListings    Field = "active_listings"
	FieldMonthsOfInventory Field = "moi"
	FieldSoldToListRatio   Field = "sold_list_ratio"
	FieldAboveListPct      Field = "above_list_price_pct"
	FieldYear              Field = "year"
	FieldMonth             Field = "month"
)

// AliasTable maps each logical field to the header spellings seen in the
// published feeds. Earlier aliases take precedence.
type AliasTable map[Field][]string

// DefaultAliases is the alias table shared by the weekly and monthly feeds.
var DefaultAliases = AliasTable{
	FieldEndDate:           {"end_date", "End Date"},
	FieldStartDate:         {"start_date", "Start Date"},
	FieldWeekLabel:         {"Week", "Week Range"},
	FieldAvgPrice:          {"Avg Sale Price", "Average Sale Price", "avg_sale_price"},
	FieldMedPrice:          {"Med Sale Price", "Median Sale Price", "med_sale_price"},
	FieldSalesVolume:       {"Sale Volume", "Volume", "sales_volume", "Sales", "Sales Volume"},
	FieldActiveListings:    {"Active Listings", "# Active Listings", "active_listings"},
	FieldMonthsOfInventory: {"MOI", "Months of Inventory", "moi"},
	FieldSoldToListRatio:   {"SP/LP", "Average SP/LP", "sp_lp_ratio"},
	FieldAboveListPct:      {"Above List Price %", "above_list_price_pct"},
	FieldYear:              {"Year"},
	FieldMonth:             {"Month"},
}

// Lookup resolves a logical field against row using the table's aliases.
func (t AliasTable) Lookup(row domain.RawRow, f Field) (string, bool) {
	return Resolve(row, t[f])
}

// Resolve returns the trimmed value of the first alias that is present in
// row and not blank.
func Resolve(row domain.RawRow, aliases []string) (string, bool) {
	for _, alias := range aliases {
		v, ok := row[alias]
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}
