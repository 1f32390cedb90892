package ingest

import (
	"errors"
	"regexp"
	"strconv"
)

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.\-]+`)
	floatPrefix   = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
	integerPrefix = regexp.MustCompile(`^-?\d+`)
)

// stripNonNumeric removes everything except digits, '.' and '-'.
func stripNonNumeric(raw string) string {
	return nonNumeric.ReplaceAllString(raw, "")
}

// CleanFloat coerces published cell text such as "$450,000" or "98.5%" into
// a number. It returns nil when the text is empty, has no leading numeric
// prefix once symbols are stripped, or evaluates to zero. Zero is treated as
// "no data" because the feeds publish 0 for unreported weeks.
func CleanFloat(raw string) *float64 {
	cleaned := stripNonNumeric(raw)
	if cleaned == "" {
		return nil
	}
	prefix := floatPrefix.FindString(cleaned)
	if prefix == "" {
		return nil
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || v == 0 {
		return nil
	}
	return &v
}

// CleanInt is the integer counterpart of CleanFloat. Any fractional part is
// truncated, so "12.9" yields 12. Values beyond the int64 range saturate at
// the nearest bound.
func CleanInt(raw string) *int64 {
	cleaned := stripNonNumeric(raw)
	if cleaned == "" {
		return nil
	}
	prefix := integerPrefix.FindString(cleaned)
	if prefix == "" {
		return nil
	}
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	if v == 0 {
		return nil
	}
	return &v
}
