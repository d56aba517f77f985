package model

import "time"

// LoadSummary captures metrics from a single file load run.
type LoadSummary struct {
	FilePath   string
	FileHash   string
	FileLogID  int64
	BatchID    string
	Skipped    bool
	SkipReason string

	RecordsParsed int
	RecordsLoaded int
	RecordErrors  int
	Warnings      int
	InvalidDates  int
	Unmatched     int

	MatchCounts    map[MatchStrategy]int
	Reconciliation ReconciliationTotals

	DurationParse time.Duration
	DurationLoad  time.Duration
	DurationTotal time.Duration
}

// ReconciliationTotals accumulates charge/paid/adjustment cents across a
// load for the operator-facing reconciliation summary.
type ReconciliationTotals struct {
	ChargeCents     int64
	PaidCents       int64
	AdjustmentCents int64
}
