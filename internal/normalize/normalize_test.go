package normalize

import (
	"testing"
	"time"
)

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		nil_ bool
	}{
		{"250", 25000, false},
		{"250.00", 25000, false},
		{"250.5", 25050, false},
		{"250.55", 25055, false},
		{"-30.00", -3000, false},
		{"-15.5", -1550, false},
		{"0", 0, false},
		{".75", 75, false},
		{"", 0, true},
		{"   ", 0, true},
		{"N/A", 0, true},
		{"12x.00", 0, true},
	}
	for _, tc := range cases {
		got := ParseAmountCents(tc.in)
		if tc.nil_ {
			if got != nil {
				t.Errorf("ParseAmountCents(%q): got %d, want nil", tc.in, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("ParseAmountCents(%q): got nil, want %d", tc.in, tc.want)
			continue
		}
		if *got != tc.want {
			t.Errorf("ParseAmountCents(%q): got %d, want %d", tc.in, *got, tc.want)
		}
	}
}

func TestCentsToDecimal(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{25000, "250.00"},
		{25055, "250.55"},
		{-1550, "-15.50"},
		{0, "0.00"},
		{5, "0.05"},
	}
	for _, tc := range cases {
		if got := CentsToDecimal(tc.in); got != tc.want {
			t.Errorf("CentsToDecimal(%d): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	for _, c := range []int64{0, 1, 99, 100, 12345, -12345, 999999999} {
		got := ParseAmountCents(CentsToDecimal(c))
		if got == nil || *got != c {
			t.Errorf("round trip %d failed: got %v", c, got)
		}
	}
}

func TestParseEDIDate(t *testing.T) {
	got := ParseEDIDate("20250113")
	if got == nil {
		t.Fatal("ParseEDIDate(20250113): got nil")
	}
	want := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, bad := range []string{"", "2025011", "20251340", "ABCDEFGH", "  "} {
		if ParseEDIDate(bad) != nil {
			t.Errorf("ParseEDIDate(%q): expected nil", bad)
		}
	}
}

func TestParseEDIDateRange(t *testing.T) {
	got := ParseEDIDateRange("20250101-20250131", "RD8")
	if got == nil {
		t.Fatal("RD8 range: got nil")
	}
	if got.Day() != 1 || got.Month() != time.January {
		t.Errorf("RD8 range start: got %v", got)
	}

	// Non-range qualifier parses the plain date.
	if got := ParseEDIDateRange("20250113", "D8"); got == nil {
		t.Error("D8 date: got nil")
	}
}

func TestClaimKey(t *testing.T) {
	cases := map[string]string{
		"abc-123":    "ABC123",
		" CLM 0042 ": "CLM0042",
		"x.y/z":      "XYZ",
		"":           "",
	}
	for in, want := range cases {
		if got := ClaimKey(in); got != want {
			t.Errorf("ClaimKey(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestClaimKeyCandidates(t *testing.T) {
	t.Run("leading_zeros", func(t *testing.T) {
		got := ClaimKeyCandidates("00123-A")
		want := []string{"00123-A", "00123A", "123-A", "123A"}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("candidate %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("already_normalized", func(t *testing.T) {
		got := ClaimKeyCandidates("CLM100")
		if len(got) != 1 || got[0] != "CLM100" {
			t.Errorf("got %v, want [CLM100] only", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := ClaimKeyCandidates("   "); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}

func TestContentHashStable(t *testing.T) {
	a := ContentHash([]byte("ISA*00*~"))
	b := ContentHash([]byte("ISA*00*~"))
	c := ContentHash([]byte("ISA*00*X~"))
	if a != b {
		t.Error("same content produced different hashes")
	}
	if a == c {
		t.Error("different content produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("hex sha256 length: got %d, want 64", len(a))
	}
}
