package model

// Severity classifies every anomaly the pipeline encounters.
//
//   - SeverityFatal: structural corruption; the whole file is quarantined and
//     nothing canonical is committed for it.
//   - SeverityRecordError: one claim or payment failed normalization; the
//     record is skipped and the file continues.
//   - SeverityWarning: unknown qualifier/code or non-critical anomaly; the
//     record is still produced and annotated.
type Severity string

const (
	SeverityFatal       Severity = "fatal"
	SeverityRecordError Severity = "record_error"
	SeverityWarning     Severity = "warning"
)
