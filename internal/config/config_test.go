package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edipipe.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	c := Defaults()
	if c.LogFormat != "text" {
		t.Errorf("LogFormat: got %q", c.LogFormat)
	}
	if !c.Matching.EnableReferenceCrosswalk {
		t.Error("crosswalk should default on")
	}
	if c.Matching.ReconciliationToleranceCents != 1 {
		t.Errorf("tolerance: got %d", c.Matching.ReconciliationToleranceCents)
	}
	want := []string{"1K", "D9", "F8", "9A"}
	if len(c.Matching.ReferenceQualifierPriority) != len(want) {
		t.Fatalf("priority: got %v", c.Matching.ReferenceQualifierPriority)
	}
	for i, q := range want {
		if c.Matching.ReferenceQualifierPriority[i] != q {
			t.Errorf("priority[%d]: got %q, want %q", i, c.Matching.ReferenceQualifierPriority[i], q)
		}
	}
	if c.Gates.MaxParseFailRate != 5.0 || c.Gates.MaxInvalidDateRate != 2.0 || c.Gates.MaxUnmatchedRate != 10.0 {
		t.Errorf("gates: %+v", c.Gates)
	}
}

func TestLoadFromFile_Merge(t *testing.T) {
	path := writeConfig(t, `
matching:
  enable_reference_crosswalk: false
  reconciliation_tolerance_cents: 5
quality_gates:
  max_parse_fail_rate: 1.5
  max_invalid_date_rate: 2.0
  max_unmatched_835_rate: 25
`)
	c := Defaults()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Matching.EnableReferenceCrosswalk {
		t.Error("crosswalk should be disabled")
	}
	if c.Matching.ReconciliationToleranceCents != 5 {
		t.Errorf("tolerance: got %d", c.Matching.ReconciliationToleranceCents)
	}
	// Priority list absent from the file keeps the default.
	if len(c.Matching.ReferenceQualifierPriority) != 4 {
		t.Errorf("priority should keep defaults: %v", c.Matching.ReferenceQualifierPriority)
	}
	if c.Gates.MaxParseFailRate != 1.5 || c.Gates.MaxUnmatchedRate != 25 {
		t.Errorf("gates: %+v", c.Gates)
	}
}

func TestLoadFromFile_PriorityOverride(t *testing.T) {
	path := writeConfig(t, `
matching:
  reference_qualifier_priority: ["F8"]
  enable_reference_crosswalk: true
`)
	c := Defaults()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if len(c.Matching.ReferenceQualifierPriority) != 1 || c.Matching.ReferenceQualifierPriority[0] != "F8" {
		t.Errorf("priority: got %v", c.Matching.ReferenceQualifierPriority)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	cases := map[string]string{
		"negative_tolerance": `
matching:
  reconciliation_tolerance_cents: -1
`,
		"gate_over_100": `
quality_gates:
  max_parse_fail_rate: 150
`,
		"bad_yaml": "matching: [not a map",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			c := Defaults()
			if err := c.LoadFromFile(writeConfig(t, content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	c := Defaults()
	err := c.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config file") {
		t.Errorf("got %v", err)
	}
}

func TestValidate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "claims.edi")
	if err := os.WriteFile(file, []byte("ISA*"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Defaults()
	if err := c.Validate(); err == nil {
		t.Error("missing file path should fail")
	}

	c.FilePath = file
	c.FileType = "834"
	if err := c.Validate(); err == nil {
		t.Error("unsupported file type should fail")
	}

	for _, ft := range []string{"837P", "837I", "835"} {
		c.FileType = ft
		if err := c.Validate(); err != nil {
			t.Errorf("Validate(%s): %v", ft, err)
		}
	}

	if err := c.ValidateWithDSN(); err == nil {
		t.Error("empty DSN should fail")
	}
	c.DSN = "postgres://localhost:5432/edipipe"
	if err := c.ValidateWithDSN(); err != nil {
		t.Errorf("ValidateWithDSN: %v", err)
	}
}
