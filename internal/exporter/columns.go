package exporter

import (
	"strconv"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

type valueKind int

const (
	kindText valueKind = iota
	kindCurrency
	kindInteger
	kindDecimal
	kindPercent
)

// column describes one exported field of record type T
type column[T any] struct {
	header string
	kind   valueKind
	text   func(T) string
	number func(T) *float64
	count  func(T) *int64
}

// raw returns the machine readable value, or nil when absent. XLSX cells are
// written from this value.
func (c column[T]) raw(r T) interface{} {
	switch {
	case c.number != nil:
		if v := c.number(r); v != nil {
			return *v
		}
		return nil
	case c.count != nil:
		if v := c.count(r); v != nil {
			return *v
		}
		return nil
	default:
		return c.text(r)
	}
}

func (c column[T]) rawString(r T) string {
	switch {
	case c.number != nil:
		return rawFloat(c.number(r))
	case c.count != nil:
		return rawInt(c.count(r))
	default:
		return c.text(r)
	}
}

func (c column[T]) display(r T, f *Formatter) string {
	switch c.kind {
	case kindCurrency:
		return f.Currency(c.number(r))
	case kindInteger:
		return f.Integer(c.count(r))
	case kindDecimal:
		return f.Decimal(c.number(r))
	case kindPercent:
		return f.Percent(c.number(r))
	default:
		return orNA(c.text(r))
	}
}

func headers[T any](cols []column[T]) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.header
	}
	return out
}

var weeklyColumns = []column[domain.WeeklyRecord]{
	{header: "id", text: func(r domain.WeeklyRecord) string { return r.ID }},
	{header: "region", text: func(r domain.WeeklyRecord) string { return string(r.Region) }},
	{header: "week_range", text: func(r domain.WeeklyRecord) string { return r.WeekLabel }},
	{header: "week_end_date", text: func(r domain.WeeklyRecord) string { return r.WeekEndDate }},
	{header: "avg_price", kind: kindCurrency, number: func(r domain.WeeklyRecord) *float64 { return r.AvgPrice }},
	{header: "med_price", kind: kindCurrency, number: func(r domain.WeeklyRecord) *float64 { return r.MedPrice }},
	{header: "sales_volume", kind: kindInteger, count: func(r domain.WeeklyRecord) *int64 { return r.SalesVolume }},
	{header: "active_listings", kind: kindInteger, count: func(r domain.WeeklyRecord) *int64 { return r.ActiveListings }},
	{header: "moi", kind: kindDecimal, number: func(r domain.WeeklyRecord) *float64 { return r.MonthsOfInventory }},
	{header: "sold_list_ratio", kind: kindPercent, number: func(r domain.WeeklyRecord) *float64 { return r.SoldToListRatio }},
	{header: "above_list_price_pct", kind: kindPercent, number: func(r domain.WeeklyRecord) *float64 { return r.AboveListPricePct }},
}

var monthlyColumns = []column[domain.MonthlyRecord]{
	{header: "id", text: func(r domain.MonthlyRecord) string { return r.ID }},
	{header: "region", text: func(r domain.MonthlyRecord) string { return string(r.Region) }},
	{header: "year", text: func(r domain.MonthlyRecord) string { return strconv.Itoa(r.Year) }},
	{header: "month", text: func(r domain.MonthlyRecord) string { return r.Month }},
	{header: "date", text: func(r domain.MonthlyRecord) string { return r.Date }},
	{header: "avg_price", kind: kindCurrency, number: func(r domain.MonthlyRecord) *float64 { return r.AvgPrice }},
	{header: "med_price", kind: kindCurrency, number: func(r domain.MonthlyRecord) *float64 { return r.MedPrice }},
	{header: "sales_volume", kind: kindInteger, count: func(r domain.MonthlyRecord) *int64 { return r.SalesVolume }},
	{header: "active_listings", kind: kindInteger, count: func(r domain.MonthlyRecord) *int64 { return r.ActiveListings }},
	{header: "moi", kind: kindDecimal, number: func(r domain.MonthlyRecord) *float64 { return r.MonthsOfInventory }},
	{header: "sold_list_ratio", kind: kindPercent, number: func(r domain.MonthlyRecord) *float64 { return r.SoldToListRatio }},
}
