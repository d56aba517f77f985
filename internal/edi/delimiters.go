package edi

import (
	"errors"
	"strings"
)

// Delimiters holds the separator set detected from an interchange envelope.
// X12 files declare their own separators positionally in the fixed-length ISA
// segment, so nothing here may be assumed ahead of detection.
type Delimiters struct {
	Segment    byte
	Element    byte
	Component  byte
	Repetition byte
}

// DefaultDelimiters is the conventional separator set used when the envelope
// declares blank separators.
var DefaultDelimiters = Delimiters{
	Segment:    '~',
	Element:    '*',
	Component:  ':',
	Repetition: '^',
}

// ErrNoEnvelope is returned when the content has no usable interchange
// envelope. This is the only content condition that fails an entire file.
var ErrNoEnvelope = errors.New("interchange envelope missing or truncated")

// isaFixedLength is the fixed byte length of an ISA segment: the element
// separator sits at ISA+3, the component separator at ISA+104, and the
// segment terminator at ISA+105.
const isaFixedLength = 106

// DetectDelimiters derives the separator set from the ISA interchange header.
// Returns ErrNoEnvelope when the ISA anchor is absent, the content is too
// short to carry a full envelope, or the declared separators are whitespace.
func DetectDelimiters(content string) (Delimiters, error) {
	isaPos := strings.Index(content, "ISA")
	if isaPos == -1 || len(content) < isaPos+isaFixedLength {
		return Delimiters{}, ErrNoEnvelope
	}

	d := Delimiters{
		Segment:    content[isaPos+105],
		Element:    content[isaPos+3],
		Component:  content[isaPos+104],
		Repetition: DefaultDelimiters.Repetition,
	}

	if isBlank(d.Element) || isBlank(d.Segment) {
		return Delimiters{}, ErrNoEnvelope
	}
	if isBlank(d.Component) {
		d.Component = DefaultDelimiters.Component
	}
	return d, nil
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == 0
}
