package model

// FileType identifies the transaction flavor of an ingested file.
type FileType string

const (
	FileType837P FileType = "837P"
	FileType837I FileType = "837I"
	FileType835  FileType = "835"
)

// ParsedFileEnvelope is the parser's complete output for one file: canonical
// records plus the contractual parse summary. Created once per ingestion run
// and immutable afterwards; the loader persists its summary to the audit log.
type ParsedFileEnvelope struct {
	FileName    string   `json:"file_name"`
	FileType    FileType `json:"file_type"`
	FileHash    string   `json:"file_hash"`
	RecordCount int      `json:"record_count"`

	Metadata FileMetadata `json:"metadata"`

	Claims   []*ClaimRecord   `json:"claims,omitempty"`
	Payments []*PaymentRecord `json:"payments,omitempty"`

	Summary ParseSummary `json:"parse_summary"`
}

// FileMetadata carries interchange/functional-group context extracted from
// the envelope segments (ISA, GS, ST).
type FileMetadata struct {
	SenderID       string `json:"sender_id,omitempty"`
	ReceiverID     string `json:"receiver_id,omitempty"`
	GroupType      string `json:"transaction_type,omitempty"`
	GroupSender    string `json:"gs_sender,omitempty"`
	GroupReceiver  string `json:"gs_receiver,omitempty"`
	TransactionSet string `json:"transaction_set,omitempty"`

	SegmentDelimiter   string `json:"segment_delimiter,omitempty"`
	ElementDelimiter   string `json:"element_delimiter,omitempty"`
	ComponentDelimiter string `json:"component_delimiter,omitempty"`
}

// ParseSummary aggregates every severity event observed while mapping one
// file. It is part of the contractual output, not a log side channel.
type ParseSummary struct {
	FatalErrors  int      `json:"fatal_errors"`
	RecordErrors int      `json:"record_errors"`
	Warnings     []string `json:"warnings"`

	UnknownDateQualifiers      []string `json:"unknown_dtp_qualifiers,omitempty"`
	UnknownReferenceQualifiers []string `json:"unknown_ref_qualifiers,omitempty"`
	UnknownDiagnosisQualifiers []string `json:"unknown_diagnosis_qualifiers,omitempty"`
	UnknownAdjustmentGroups    []string `json:"unknown_adjustment_groups,omitempty"`
	UnknownCARCCodes           []string `json:"unknown_carc_codes,omitempty"`
	UnknownClaimStatusCodes    []string `json:"unknown_clp_status_codes,omitempty"`

	InvalidDates        int `json:"invalid_dates"`
	UnmatchedCandidates int `json:"unmatched_candidates"`
}

// UnknownCodeCount is the total distinct unknown codes across all kinds.
func (s *ParseSummary) UnknownCodeCount() int {
	return len(s.UnknownDateQualifiers) +
		len(s.UnknownReferenceQualifiers) +
		len(s.UnknownDiagnosisQualifiers) +
		len(s.UnknownAdjustmentGroups) +
		len(s.UnknownCARCCodes) +
		len(s.UnknownClaimStatusCodes)
}

// WarningCount is the number of warning annotations recorded for the file.
func (s *ParseSummary) WarningCount() int {
	return len(s.Warnings)
}
