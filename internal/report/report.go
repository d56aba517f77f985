// Package report aggregates per-file load summaries into a batch report and
// evaluates the operator-configured quality gates against it.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/model"
)

// FileResult is one file's outcome inside a batch.
type FileResult struct {
	FilePath     string `json:"file_path"`
	FileType     string `json:"file_type"`
	Status       string `json:"status"` // loaded | skipped | failed
	Error        string `json:"error,omitempty"`
	Records      int    `json:"records"`
	RecordErrors int    `json:"record_errors"`
	Warnings     int    `json:"warnings"`
	InvalidDates int    `json:"invalid_dates"`
	Unmatched    int    `json:"unmatched"`
	Payments     int    `json:"payments"`
	DurationMS   int64  `json:"duration_ms"`
}

// GateResult is one quality gate's evaluation.
type GateResult struct {
	Name      string  `json:"name"`
	Rate      float64 `json:"rate_pct"`
	Threshold float64 `json:"threshold_pct"`
	Passed    bool    `json:"passed"`
}

// BatchReport is the consolidated artifact written after a batch run.
type BatchReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Files       []FileResult `json:"files"`

	FilesTotal   int `json:"files_total"`
	FilesLoaded  int `json:"files_loaded"`
	FilesSkipped int `json:"files_skipped"`
	FilesFailed  int `json:"files_failed"`

	RecordsTotal int `json:"records_total"`
	RecordErrors int `json:"record_errors"`
	InvalidDates int `json:"invalid_dates"`
	Payments     int `json:"payments_total"`
	Unmatched    int `json:"payments_unmatched"`

	MatchCounts map[model.MatchStrategy]int `json:"match_counts"`

	Gates  []GateResult `json:"quality_gates"`
	Passed bool         `json:"passed"`
}

// Builder accumulates file results as a batch progresses.
type Builder struct {
	files       []FileResult
	matchCounts map[model.MatchStrategy]int
}

// Add records one file's outcome.
func (b *Builder) Add(r FileResult) {
	b.files = append(b.files, r)
}

// AddMatchCounts folds one file's strategy buckets into the batch totals.
func (b *Builder) AddMatchCounts(counts map[model.MatchStrategy]int) {
	if b.matchCounts == nil {
		b.matchCounts = map[model.MatchStrategy]int{}
	}
	for k, v := range counts {
		b.matchCounts[k] += v
	}
}

// Build totals the file results and evaluates the gates.
func (b *Builder) Build(gates config.QualityGates) *BatchReport {
	rep := &BatchReport{
		GeneratedAt: time.Now().UTC(),
		Files:       b.files,
		FilesTotal:  len(b.files),
		MatchCounts: map[model.MatchStrategy]int{},
	}
	for k, v := range b.matchCounts {
		rep.MatchCounts[k] = v
	}

	for _, f := range b.files {
		switch f.Status {
		case "loaded":
			rep.FilesLoaded++
		case "skipped":
			rep.FilesSkipped++
		default:
			rep.FilesFailed++
		}
		rep.RecordsTotal += f.Records
		rep.RecordErrors += f.RecordErrors
		rep.InvalidDates += f.InvalidDates
		rep.Payments += f.Payments
		rep.Unmatched += f.Unmatched
	}

	rep.Gates = []GateResult{
		gate("parse_file_fail_rate", rep.FilesFailed, rep.FilesTotal, gates.MaxParseFailRate),
		gate("invalid_date_rate", rep.InvalidDates, rep.RecordsTotal, gates.MaxInvalidDateRate),
		gate("unmatched_835_rate", rep.Unmatched, rep.Payments, gates.MaxUnmatchedRate),
	}

	rep.Passed = true
	for _, g := range rep.Gates {
		if !g.Passed {
			rep.Passed = false
		}
	}
	return rep
}

// gate computes a percentage rate over a denominator. An empty denominator
// always passes: no data is not a quality failure.
func gate(name string, numerator, denominator int, threshold float64) GateResult {
	var rate float64
	if denominator > 0 {
		rate = float64(numerator) / float64(denominator) * 100.0
	}
	return GateResult{
		Name:      name,
		Rate:      rate,
		Threshold: threshold,
		Passed:    rate <= threshold,
	}
}

// WriteJSON writes the report to path, or stdout when path is "-".
func (r *BatchReport) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
