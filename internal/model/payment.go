package model

import "time"

// PaymentRecord is the canonical representation of one 835 CLP loop.
// PatientControlNumber and PayerClaimControlNumber are always present in the
// output even when empty. ClaimHeaderID is set only by the matching engine,
// never by the mapper; nil means the payment is persisted unlinked.
type PaymentRecord struct {
	FileName string `json:"file_name"`

	PatientControlNumber    string `json:"patient_control_number"`
	PayerClaimControlNumber string `json:"payer_claim_control_number"`

	ClaimStatusCode *string `json:"claim_status_code"`
	ClaimStatusDesc *string `json:"claim_status_desc"`

	TotalChargeCents *int64 `json:"total_charge_cents"`
	PaidCents        *int64 `json:"paid_cents"`
	PatientRespCents *int64 `json:"patient_responsibility_cents"`

	FilingIndicatorCode *string    `json:"claim_filing_indicator_code"`
	PayerID             *string    `json:"payer_id"`
	PayerName           *string    `json:"payer_name"`
	CheckNumber         *string    `json:"check_number"`
	PaymentDate         *time.Time `json:"payment_date"`
	PaymentMethodCode   *string    `json:"payment_method_code"`
	StatementStart      *time.Time `json:"statement_start"`
	StatementEnd        *time.Time `json:"statement_end"`
	PatientLastName     *string    `json:"patient_last_name"`
	PatientFirstName    *string    `json:"patient_first_name"`

	Lines       []PaymentLine     `json:"service_lines"`
	Adjustments []AdjustmentEntry `json:"adjustments"`

	Flex FlexPayload `json:"flex_payload"`
}

// PaymentLine is one SVC service-level payment.
type PaymentLine struct {
	ProcedureCode *string  `json:"procedure_code"`
	Modifier1     *string  `json:"modifier_1"`
	ChargeCents   *int64   `json:"charge_cents"`
	PaidCents     *int64   `json:"paid_cents"`
	RevenueCode   *string  `json:"revenue_code"`
	UnitsPaid     *float64 `json:"units_paid"`

	Adjustments []AdjustmentEntry `json:"adjustments"`
}

// AdjustmentLevel distinguishes claim-level CAS segments from line-level ones.
type AdjustmentLevel string

const (
	AdjustmentLevelClaim AdjustmentLevel = "claim"
	AdjustmentLevelLine  AdjustmentLevel = "line"
)

// AdjustmentEntry is one expanded CAS triplet. A single CAS segment may carry
// multiple triplets; each becomes its own entry.
type AdjustmentEntry struct {
	GroupCode AdjustmentGroup `json:"adjustment_group_code"`
	GroupDesc *string         `json:"adjustment_group_desc"`
	CARCCode  string          `json:"carc_code"`
	CARCDesc  *string         `json:"carc_description"`
	Cents     *int64          `json:"adjustment_cents"`
	Quantity  *int            `json:"adjustment_quantity"`
	Level     AdjustmentLevel `json:"level"`
}
