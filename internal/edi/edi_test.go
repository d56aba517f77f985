package edi

import (
	"strings"
	"testing"
)

// minimal valid ISA segment: 106 chars, element sep at 3, component at 104,
// terminator at 105.
func isaSegment(elem, comp, term byte) string {
	var b strings.Builder
	b.WriteString("ISA")
	b.WriteByte(elem)
	fields := []string{
		"00", "          ", "00", "          ",
		"ZZ", "SENDER         ", "ZZ", "RECEIVER       ",
		"250113", "0930", "^", "00501", "000000001", "0", "P",
	}
	b.WriteString(strings.Join(fields, string(elem)))
	b.WriteByte(elem)
	b.WriteByte(comp)
	b.WriteByte(term)
	return b.String()
}

func TestDetectDelimiters_Standard(t *testing.T) {
	content := isaSegment('*', ':', '~') + "GS*HC*A*B~ST*837*0001~"
	d, err := DetectDelimiters(content)
	if err != nil {
		t.Fatalf("DetectDelimiters: %v", err)
	}
	if d.Element != '*' || d.Component != ':' || d.Segment != '~' {
		t.Errorf("got elem=%q comp=%q seg=%q", d.Element, d.Component, d.Segment)
	}
}

func TestDetectDelimiters_NonStandard(t *testing.T) {
	content := isaSegment('|', '>', '!') + "GS|HC|A|B!"
	d, err := DetectDelimiters(content)
	if err != nil {
		t.Fatalf("DetectDelimiters: %v", err)
	}
	if d.Element != '|' {
		t.Errorf("element: got %q, want |", d.Element)
	}
	if d.Component != '>' {
		t.Errorf("component: got %q, want >", d.Component)
	}
	if d.Segment != '!' {
		t.Errorf("segment: got %q, want !", d.Segment)
	}
}

func TestDetectDelimiters_LeadingGarbage(t *testing.T) {
	content := "\xef\xbb\xbf\r\n" + isaSegment('*', ':', '~')
	d, err := DetectDelimiters(content)
	if err != nil {
		t.Fatalf("DetectDelimiters with leading bytes: %v", err)
	}
	if d.Element != '*' {
		t.Errorf("element: got %q", d.Element)
	}
}

func TestDetectDelimiters_MissingEnvelope(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"no_isa":      "GS*HC*A*B~ST*837*0001~",
		"truncated":   "ISA*00*        ",
		"blank_elems": strings.Repeat(" ", 200),
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DetectDelimiters(content); err == nil {
				t.Error("expected error for corrupt envelope")
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	content := "ISA*00*X~GS*HC*SENDER~ST*837*0001~~SE*3*0001~"
	segs := Tokenize(content, Delimiters{Segment: '~', Element: '*', Component: ':'})
	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4 (empty segment dropped)", len(segs))
	}
	if segs[1].ID != "GS" {
		t.Errorf("segment 1 id: got %q", segs[1].ID)
	}
	if got := segs[1].Element(2); got != "SENDER" {
		t.Errorf("GS02: got %q", got)
	}
	if got := segs[1].Element(9); got != "" {
		t.Errorf("out of range element: got %q, want empty", got)
	}
}

func TestTokenize_StripsNewlinesBetweenSegments(t *testing.T) {
	content := "ST*835*0001~\r\nBPR*I*100.00~\nTRN*1*EFT123~"
	segs := Tokenize(content, Delimiters{Segment: '~', Element: '*', Component: ':'})
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if segs[1].ID != "BPR" || segs[2].ID != "TRN" {
		t.Errorf("ids: %q %q", segs[1].ID, segs[2].ID)
	}
}

func TestSplitComposite(t *testing.T) {
	cases := []struct {
		in   string
		sep  byte
		want []string
	}{
		{"HC:99213:25", ':', []string{"HC", "99213", "25"}},
		{"HC>99213", ':', []string{"HC", "99213"}}, // '>' fallback
		{"11:B:1", ':', []string{"11", "B", "1"}},
		{"PLAIN", ':', []string{"PLAIN"}},
	}
	for _, tc := range cases {
		got := SplitComposite(tc.in, tc.sep)
		if len(got) != len(tc.want) {
			t.Errorf("SplitComposite(%q): got %v, want %v", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("SplitComposite(%q)[%d]: got %q, want %q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}
