package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmountCents parses an EDI monetary value ("250", "250.5", "-30.00")
// into int64 cents. Returns nil if the input is empty or unparseable.
// Fixed-point cents avoid float drift in reconciliation sums.
func ParseAmountCents(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return nil
	}
	var f int64
	switch {
	case len(frac) == 0:
	case len(frac) == 1:
		d, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return nil
		}
		f = d * 10
	default:
		d, err := strconv.ParseInt(frac[:2], 10, 64)
		if err != nil {
			return nil
		}
		f = d
	}
	c := w*100 + f
	if neg {
		c = -c
	}
	return &c
}

// ParseQuantity parses a unit/quantity value into a float64.
// Returns nil if empty or unparseable.
func ParseQuantity(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// CentsToDecimal renders int64 cents as a decimal string suitable for a
// NUMERIC(12,2) column, e.g. 25000 -> "250.00", -1550 -> "-15.50".
func CentsToDecimal(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// NullableCentsToDecimal is CentsToDecimal for optional amounts; nil maps to nil
// so pgx writes SQL NULL.
func NullableCentsToDecimal(c *int64) *string {
	if c == nil {
		return nil
	}
	s := CentsToDecimal(*c)
	return &s
}
