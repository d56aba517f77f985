package model

import "time"

// ClaimRecord is the canonical representation of one 837 claim. Every field
// outside the identity core is nullable; payer variance that does not map to
// a named field survives in Flex. The matching engine never mutates a
// ClaimRecord; payment/status fields are updated only by the 835 load path.
type ClaimRecord struct {
	ClaimID   string `json:"claim_id"`
	ClaimType string `json:"claim_type"` // professional | institutional
	FileName  string `json:"file_name"`
	FileType  string `json:"file_type"`

	TotalChargeCents *int64 `json:"total_charge_cents"`

	FacilityTypeCode       *string `json:"facility_type_code"`
	FacilityTypeDesc       *string `json:"facility_type_desc"`
	FacilityCodeQualifier  *string `json:"facility_code_qualifier"`
	FrequencyTypeCode      *string `json:"claim_frequency_type_code"`
	FrequencyTypeDesc      *string `json:"claim_frequency_type_desc"`
	AssignmentCode         *string `json:"assignment_code"`
	AssignmentDesc         *string `json:"assignment_desc"`
	BenefitsAssignment     *string `json:"benefits_assignment"`
	ReleaseOfInfoCode      *string `json:"release_of_info_code"`
	FilingIndicatorCode    *string `json:"claim_filing_indicator_code"`
	FilingIndicatorDesc    *string `json:"claim_filing_indicator_desc"`
	PayerResponsibility    *string `json:"payer_responsibility_code"`
	PayerResponsibilityDsc *string `json:"payer_responsibility_desc"`
	PayerID                *string `json:"payer_id"`
	PayerName              *string `json:"payer_name"`
	PriorAuthNumber        *string `json:"prior_auth_number"`
	OriginalClaimID        *string `json:"original_claim_id"`

	Lines      []ServiceLine    `json:"lines"`
	Diagnoses  []Diagnosis      `json:"diagnoses"`
	Dates      []DateEntry      `json:"dates"`
	Providers  []ProviderEntry  `json:"providers"`
	References []ReferenceEntry `json:"references"`

	Flex FlexPayload `json:"flex_payload"`
}

// ServiceLine is one SV1/SV2 service line attached to a claim.
type ServiceLine struct {
	LineNumber          int      `json:"line_number"`
	ProcedureCode       *string  `json:"procedure_code"`
	ProcedureQualifier  *string  `json:"procedure_qualifier"`
	Modifier1           *string  `json:"modifier_1"`
	Modifier2           *string  `json:"modifier_2"`
	Modifier3           *string  `json:"modifier_3"`
	Modifier4           *string  `json:"modifier_4"`
	RevenueCode         *string  `json:"revenue_code"`
	ChargeCents         *int64   `json:"charge_cents"`
	UnitCount           *float64 `json:"unit_count"`
	UnitMeasurementCode *string  `json:"unit_measurement_code"`
	PlaceOfServiceCode  *string  `json:"place_of_service_code"`
}

// Diagnosis is one HI composite entry.
type Diagnosis struct {
	DiagnosisCode  string        `json:"diagnosis_code"`
	DiagnosisType  DiagnosisType `json:"diagnosis_type"`
	CodeQualifier  string        `json:"code_qualifier"`
	SequenceNumber int           `json:"sequence_number"`
}

// DateEntry is one qualifier-keyed DTP/DTM date. LineNumber is zero for
// header-level dates. ParsedDate is nil when the raw value did not parse;
// the raw value is always retained.
type DateEntry struct {
	LineNumber      int        `json:"line_number,omitempty"`
	DateQualifier   string     `json:"date_qualifier"`
	QualifierDesc   *string    `json:"date_qualifier_desc"`
	FormatQualifier string     `json:"date_format_qualifier"`
	DateValue       string     `json:"date_value"`
	ParsedDate      *time.Time `json:"parsed_date"`
}

// ProviderEntry is one NM1-derived provider, keyed by entity code.
type ProviderEntry struct {
	Role            ProviderRole `json:"provider_role"`
	EntityCode      string       `json:"entity_identifier_code"`
	EntityTypeQual  *string      `json:"entity_type_qualifier"`
	LastOrOrgName   *string      `json:"last_or_org_name"`
	FirstName       *string      `json:"first_name"`
	MiddleName      *string      `json:"middle_name"`
	IDCodeQualifier *string      `json:"id_code_qualifier"`
	NPI             *string      `json:"npi"`
	TaxonomyCode    *string      `json:"taxonomy_code"`
}

// ReferenceEntry is one qualifier-keyed REF value. These double as the
// crosswalk source for 835 matching.
type ReferenceEntry struct {
	ReferenceQualifier string  `json:"reference_qualifier"`
	QualifierDesc      *string `json:"reference_qualifier_desc"`
	ReferenceValue     string  `json:"reference_value"`
}

// FlexPayload is the overflow container preserving raw data not yet promoted
// to a canonical field. Promotion is adding a named field plus a mapping
// rule, never a breaking schema change.
type FlexPayload struct {
	Segments []FlexSegment `json:"segments,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// FlexSegment captures one unmapped or partially mapped raw segment with its
// loop context.
type FlexSegment struct {
	SegmentID string   `json:"segment_id"`
	Elements  []string `json:"elements"`
	Loop      string   `json:"loop"`
	Note      string   `json:"note,omitempty"`
}

// AddWarning appends a warning annotation to the flex payload.
func (f *FlexPayload) AddWarning(msg string) {
	f.Warnings = append(f.Warnings, msg)
}

// AddSegment preserves a raw segment with its loop context.
func (f *FlexPayload) AddSegment(segID string, elements []string, loop, note string) {
	f.Segments = append(f.Segments, FlexSegment{
		SegmentID: segID,
		Elements:  elements,
		Loop:      loop,
		Note:      note,
	})
}
