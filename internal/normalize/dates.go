package normalize

import (
	"strings"
	"time"
)

// ParseEDIDate parses a CCYYMMDD date value into a time.Time.
// Returns nil if the input is empty or unparseable.
func ParseEDIDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if len(s) < 8 {
		return nil
	}
	t, err := time.Parse("20060102", s[:8])
	if err != nil {
		return nil
	}
	return &t
}

// ParseEDIDateRange parses a date value under the given format qualifier.
// RD8 values are CCYYMMDD-CCYYMMDD ranges; the range start is returned.
// All other qualifiers are treated as plain CCYYMMDD.
func ParseEDIDateRange(s, formatQualifier string) *time.Time {
	if formatQualifier == "RD8" {
		if start, _, ok := strings.Cut(s, "-"); ok {
			return ParseEDIDate(start)
		}
	}
	return ParseEDIDate(s)
}
