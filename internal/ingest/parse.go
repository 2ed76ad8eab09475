package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/propworks/rentaudit/internal/canonical"
)

var monthFormats = []string{
	"Jan 2006",
	"January 2006",
	"2006-01",
	"01/2006",
	"2006/01",
}

var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 02, 2006",
	"January 02, 2006",
}

// ParseMonth parses common month notations ("Feb 2026", "2026-02", "02/2026")
// into a first-of-month UTC date. The first matching layout wins.
func ParseMonth(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range monthFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return canonical.MonthOf(t), true
		}
	}
	return time.Time{}, false
}

// ParseDate parses common date notations into a UTC date.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseCurrency parses currency strings such as "$1,234.56", "($1,234.56)",
// and "-$1,234.56" into dollars. Malformed input coerces to 0, matching the
// silent-degradation contract of the audit core.
func ParseCurrency(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		return -value
	}
	return value
}
