package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for an ediload run. A populated
// Config is immutable once a pipeline starts; every stage receives it
// explicitly so concurrent multi-file processing shares no ambient state.
type Config struct {
	DSN        string
	FilePath   string
	FileType   string // 837P, 837I, 835
	LogFormat  string // "text" or "json"
	OrgID      *int64
	Force      bool
	DryRun     bool
	StrictLoad bool

	Matching ParseContext `yaml:"matching"`
	Gates    QualityGates `yaml:"quality_gates"`
}

// ParseContext carries the payer-variance knobs threaded through parsing and
// matching: crosswalk qualifier priority, the secondary-crosswalk toggle,
// and the header/line reconciliation tolerance.
type ParseContext struct {
	ReferenceQualifierPriority   []string `yaml:"reference_qualifier_priority"`
	EnableReferenceCrosswalk     bool     `yaml:"enable_reference_crosswalk"`
	ReconciliationToleranceCents int64    `yaml:"reconciliation_tolerance_cents"`
}

// QualityGates holds batch-level thresholds, in percent.
type QualityGates struct {
	MaxParseFailRate   float64 `yaml:"max_parse_fail_rate"`
	MaxInvalidDateRate float64 `yaml:"max_invalid_date_rate"`
	MaxUnmatchedRate   float64 `yaml:"max_unmatched_835_rate"`
}

// Defaults returns the baseline configuration used when no config file is
// supplied.
func Defaults() Config {
	return Config{
		LogFormat: "text",
		Matching: ParseContext{
			ReferenceQualifierPriority:   []string{"1K", "D9", "F8", "9A"},
			EnableReferenceCrosswalk:     true,
			ReconciliationToleranceCents: 1,
		},
		Gates: QualityGates{
			MaxParseFailRate:   5.0,
			MaxInvalidDateRate: 2.0,
			MaxUnmatchedRate:   10.0,
		},
	}
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Matching ParseContext `yaml:"matching"`
	Gates    QualityGates `yaml:"quality_gates"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Absent sections keep their defaults.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	yc := yamlConfig{Matching: c.Matching, Gates: c.Gates}
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if len(yc.Matching.ReferenceQualifierPriority) == 0 {
		yc.Matching.ReferenceQualifierPriority = c.Matching.ReferenceQualifierPriority
	}
	c.Matching = yc.Matching
	c.Gates = yc.Gates
	return c.validate()
}

func (c *Config) validate() error {
	if c.Matching.ReconciliationToleranceCents < 0 {
		return fmt.Errorf("reconciliation_tolerance_cents must be >= 0")
	}
	for _, g := range []float64{c.Gates.MaxParseFailRate, c.Gates.MaxInvalidDateRate, c.Gates.MaxUnmatchedRate} {
		if g < 0 || g > 100 {
			return fmt.Errorf("quality gate thresholds must be percentages in [0,100]")
		}
	}
	return nil
}

// Validate checks required fields for a single-file run.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	switch c.FileType {
	case "837P", "837I", "835":
	default:
		return fmt.Errorf("--type must be 837P, 837I or 835")
	}
	return nil
}

// ValidateWithDSN checks both file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}
