package edi

import "strings"

// Segment is one delimited record of a transaction, split into elements with
// the raw text retained for traceability. Tokenization never interprets
// segment meaning; malformed segments pass through to the mappers.
type Segment struct {
	ID       string
	Elements []string
	RawText  string
}

// Element returns the element at 1-based position idx ("CLM01" is idx 1),
// or "" when the segment is too short. Mappers rely on this for tolerant
// access to variable-length segments.
func (s Segment) Element(idx int) string {
	if idx < 1 || idx >= len(s.Elements) {
		return ""
	}
	return s.Elements[idx]
}

// Tokenize splits raw EDI content into an ordered segment sequence using the
// detected delimiters. Embedded CR/LF inside segments (common in files that
// wrap segments one per line) is stripped; empty segments are dropped.
func Tokenize(content string, d Delimiters) []Segment {
	raw := strings.Split(content, string(d.Segment))
	segments := make([]Segment, 0, len(raw))
	for _, seg := range raw {
		cleaned := strings.TrimSpace(seg)
		cleaned = strings.ReplaceAll(cleaned, "\n", "")
		cleaned = strings.ReplaceAll(cleaned, "\r", "")
		if cleaned == "" {
			continue
		}
		elements := strings.Split(cleaned, string(d.Element))
		segments = append(segments, Segment{
			ID:       elements[0],
			Elements: elements,
			RawText:  cleaned,
		})
	}
	return segments
}

// SplitComposite splits a composite element value on the detected component
// separator, with fallback separators for legacy files that effectively use
// ":" or ">" regardless of what the envelope declares.
func SplitComposite(value string, componentSep byte) []string {
	if value == "" {
		return nil
	}
	if componentSep != 0 && strings.IndexByte(value, componentSep) >= 0 {
		return strings.Split(value, string(componentSep))
	}
	if strings.Contains(value, ":") {
		return strings.Split(value, ":")
	}
	if strings.Contains(value, ">") {
		return strings.Split(value, ">")
	}
	return []string{value}
}
