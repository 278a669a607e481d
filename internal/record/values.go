package record

import (
	"regexp"
	"strings"
	"time"
)

// ISO layouts used in records
const (
	ISODateTimeLayout = "2006-01-02T15:04"
	ISODateLayout     = "2006-01-02"
)

// Regional layouts accepted from captured text. Day comes first; a
// month-first date never parses.
var localDateTimeLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

const localDateLayout = "02/01/2006"

var nonDigits = regexp.MustCompile(`\D+`)

// DigitsOnly strips every non-digit character. A value with no digits at all
// is absent, never "0".
func DigitsOnly(s string) (string, bool) {
	d := nonDigits.ReplaceAllString(s, "")
	return d, d != ""
}

// ParseLocalDateTime parses a DD/MM/YYYY HH:MM[:SS] value
func ParseLocalDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range localDateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ISODateTime converts a DD/MM/YYYY HH:MM[:SS] value to YYYY-MM-DDTHH:MM
func ISODateTime(s string) (string, bool) {
	t, ok := ParseLocalDateTime(s)
	if !ok {
		return "", false
	}
	return t.Format(ISODateTimeLayout), true
}

// ISODate converts a DD/MM/YYYY value to YYYY-MM-DD
func ISODate(s string) (string, bool) {
	t, err := time.Parse(localDateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return t.Format(ISODateLayout), true
}

func digitsOrEmpty(s string) string {
	d, _ := DigitsOnly(s)
	return d
}

func isoDateTimeOrEmpty(s string) string {
	v, _ := ISODateTime(s)
	return v
}
