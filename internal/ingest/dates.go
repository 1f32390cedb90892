package ingest

import (
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var endDateLayouts = []string{
	isoDate,
	"2006/01/02",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// parseFeedDate accepts the date spellings seen in the weekly feeds.
func parseFeedDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// shortDate renders a date as "Jan 2".
func shortDate(t time.Time) string {
	return t.Format("Jan 2")
}

// parseMonth accepts a full or abbreviated English month name in any case,
// or a month number.
func parseMonth(s string) (time.Month, bool) {
	s = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ".")))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	if len(s) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(strings.ToLower(m.String()), s) {
			return m, true
		}
	}
	return 0, false
}

// firstOfMonth returns the UTC date for day one of month in year.
func firstOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}
