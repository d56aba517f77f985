package normalize

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]`)

// ClaimKey normalizes a claim identifier by uppercasing and stripping
// punctuation and whitespace. Returns "" for empty input.
func ClaimKey(v string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(strings.TrimSpace(v)), "")
}

// ClaimKeyCandidates generates deterministic candidate keys for resilient
// claim matching: the original token, its normalized form, and leading-zero
// trimmed variants. Payers routinely reformat control numbers in remits, so
// matching tries each candidate in order.
func ClaimKeyCandidates(v string) []string {
	key := strings.TrimSpace(v)
	if key == "" {
		return nil
	}

	candidates := []string{key}
	appendUnique := func(c string) {
		if c == "" {
			return
		}
		for _, existing := range candidates {
			if existing == c {
				return
			}
		}
		candidates = append(candidates, c)
	}

	appendUnique(ClaimKey(key))

	trimmed := strings.TrimLeft(key, "0")
	if trimmed != key {
		appendUnique(trimmed)
		appendUnique(ClaimKey(trimmed))
	}
	return candidates
}
