package anexo

import (
	"strings"
	"time"
)

// Display layouts used on the printed forms
const (
	DisplayDate     = "02/01/2006"
	DisplayDateTime = "02/01/2006 15:04"
)

var isoDateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseDateTime parses an ISO 8601 date-time with or without seconds or offset
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses an ISO 8601 calendar date
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders an ISO date as DD/MM/YYYY, or "" when it does not parse
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return t.Format(DisplayDate)
}

// FormatDateTime renders an ISO date-time as DD/MM/YYYY HH:MM, or ""
func FormatDateTime(s string) string {
	t, ok := ParseDateTime(s)
	if !ok {
		return ""
	}
	return t.Format(DisplayDateTime)
}

// DateOf returns the calendar day of t as UTC midnight, so days from
// different offsets compare as plain dates
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
