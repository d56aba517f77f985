package model

// Code description tables for the qualifier values this pipeline promotes to
// canonical fields. Lookups always return ok=false for unknown codes rather
// than failing: the mapper records a warning and keeps the raw value in the
// flex payload.

// DiagnosisType is the closed set of canonical diagnosis classifications.
// Unmapped HI qualifiers collapse to DiagnosisOther.
type DiagnosisType string

const (
	DiagnosisPrincipal      DiagnosisType = "principal"
	DiagnosisAdmitting      DiagnosisType = "admitting"
	DiagnosisReasonForVisit DiagnosisType = "reason_for_visit"
	DiagnosisExternalCause  DiagnosisType = "external_cause"
	DiagnosisDRG            DiagnosisType = "drg"
	DiagnosisOther          DiagnosisType = "other"
)

var diagnosisTypeByQualifier = map[string]DiagnosisType{
	"ABK": DiagnosisPrincipal,
	"ABJ": DiagnosisPrincipal,
	"ABF": DiagnosisOther,
	"APR": DiagnosisReasonForVisit,
	"ABN": DiagnosisReasonForVisit,
	"BBR": DiagnosisAdmitting,
	"BBQ": DiagnosisOther,
	"BP":  DiagnosisExternalCause,
	"BG":  DiagnosisDRG,
	"DR":  DiagnosisDRG,
}

// DiagnosisTypeForQualifier maps an HI composite qualifier to its canonical
// type. ok=false means the qualifier was unknown and the caller should record
// a warning; the returned type is always DiagnosisOther in that case.
func DiagnosisTypeForQualifier(q string) (DiagnosisType, bool) {
	if t, ok := diagnosisTypeByQualifier[q]; ok {
		return t, true
	}
	return DiagnosisOther, false
}

// ProviderRole is the closed set of canonical provider roles keyed off NM1
// entity identifier codes.
type ProviderRole string

const (
	ProviderBilling         ProviderRole = "billing"
	ProviderAttending       ProviderRole = "attending"
	ProviderOperating       ProviderRole = "operating"
	ProviderRendering       ProviderRole = "rendering"
	ProviderServiceLocation ProviderRole = "service_location"
	ProviderReferring       ProviderRole = "referring"
	ProviderSupervising     ProviderRole = "supervising"
	ProviderOther           ProviderRole = "other"
)

var providerRoleByEntityCode = map[string]ProviderRole{
	"85": ProviderBilling,
	"71": ProviderAttending,
	"72": ProviderOperating,
	"82": ProviderRendering,
	"77": ProviderServiceLocation,
	"DN": ProviderReferring,
	"DQ": ProviderSupervising,
	"OB": ProviderOther,
}

// ProviderRoleForEntityCode maps an NM1 entity identifier code to a canonical
// role. Unknown codes collapse to ProviderOther with ok=false.
func ProviderRoleForEntityCode(code string) (ProviderRole, bool) {
	if r, ok := providerRoleByEntityCode[code]; ok {
		return r, true
	}
	return ProviderOther, false
}

// AdjustmentGroup is the closed set of CAS adjustment group codes.
type AdjustmentGroup string

const (
	AdjustmentContractual    AdjustmentGroup = "CO"
	AdjustmentPatientResp    AdjustmentGroup = "PR"
	AdjustmentOther          AdjustmentGroup = "OA"
	AdjustmentPayerInitiated AdjustmentGroup = "PI"
	AdjustmentCorrection     AdjustmentGroup = "CR"
)

var adjustmentGroupDesc = map[AdjustmentGroup]string{
	AdjustmentContractual:    "Contractual Obligation",
	AdjustmentPatientResp:    "Patient Responsibility",
	AdjustmentOther:          "Other Adjustment",
	AdjustmentPayerInitiated: "Payer Initiated Reduction",
	AdjustmentCorrection:     "Correction/Reversal",
}

// KnownAdjustmentGroup reports whether code is a recognized CAS group code.
// The CAS triplet scanner also uses this to detect where one group's
// triplets end and the next group begins.
func KnownAdjustmentGroup(code string) bool {
	_, ok := adjustmentGroupDesc[AdjustmentGroup(code)]
	return ok
}

// AdjustmentGroupDescription returns the human description for a group code.
func AdjustmentGroupDescription(code string) (string, bool) {
	d, ok := adjustmentGroupDesc[AdjustmentGroup(code)]
	return d, ok
}

var facilityTypeDesc = map[string]string{
	"11": "Office", "12": "Home", "13": "Critical Access Hospital",
	"14": "Skilled Nursing Facility", "18": "Psychiatric Hospital",
	"21": "Inpatient Hospital", "22": "Outpatient Hospital",
	"23": "Emergency Room", "24": "Ambulatory Surgical Center",
	"31": "Skilled Nursing Facility", "32": "Nursing Facility",
	"41": "Ambulance Land", "42": "Ambulance Air/Water",
	"51": "Psychiatric Inpatient", "61": "Inpatient Rehab",
	"71": "Public Health Clinic", "85": "Critical Access Hospital",
}

var frequencyTypeDesc = map[string]string{
	"1": "Original Claim", "5": "Late Charge Claim", "6": "Adjusted Claim",
	"7": "Corrected Claim", "8": "Void Claim",
}

var assignmentDesc = map[string]string{
	"A": "Assigned", "B": "Assignment Accepted on Lab Only", "C": "Not Assigned",
}

var filingIndicatorDesc = map[string]string{
	"11": "Other Non-Federal", "12": "PPO", "13": "POS", "14": "EPO",
	"15": "Indemnity", "16": "HMO Medicare Risk", "17": "DMO",
	"AM": "Auto Medical", "CI": "Commercial Insurance",
	"MA": "Medicare Part A", "MB": "Medicare Part B", "MC": "Medicaid",
	"CH": "CHAMPUS/TRICARE", "VA": "Veterans Affairs", "OF": "Other Federal",
	"WC": "Workers Compensation", "LI": "Liability Insurance",
	"BL": "BCBS", "FI": "Federal Employees", "HM": "HMO",
	"TV": "Title V", "ZZ": "Mutually Defined",
}

var payerResponsibilityDesc = map[string]string{
	"P": "Primary", "S": "Secondary", "T": "Tertiary",
}

var dateQualifierDesc = map[string]string{
	"434": "Statement Dates", "435": "Admission Date", "096": "Discharge Date",
	"232": "Statement Period Start", "233": "Statement Period End",
	"472": "Service Date", "473": "Prescription Date", "573": "Claim Paid Date",
	"439": "Accident Date", "454": "Initial Treatment Date",
	"431": "Onset of Symptoms",
	"036": "Expiration Date", "050": "Received Date", "405": "Production Date",
}

var referenceQualifierDesc = map[string]string{
	"D9": "Claim Identifier", "EA": "Medical Record Number",
	"F8": "Resubmission Original Reference", "G1": "Prior Authorization Number",
	"9A": "Repriced Claim Reference", "9B": "Referral Number",
	"1K": "Payer Claim Number",
}

var claimStatusDesc = map[string]string{
	"1":  "Processed as Primary",
	"2":  "Processed as Secondary",
	"3":  "Processed as Tertiary",
	"4":  "Denied",
	"19": "Processed as Primary, Forwarded to Additional Payer(s)",
	"20": "Processed as Secondary, Forwarded to Additional Payer(s)",
	"21": "Processed as Tertiary, Forwarded to Additional Payer(s)",
	"22": "Reversal of Previous Payment",
	"23": "Not Our Claim, Forwarded to Additional Payer(s)",
	"25": "Reject into payment cycle",
}

var paymentMethodDesc = map[string]string{
	"ACH": "Automated Clearing House",
	"CHK": "Check",
	"FWT": "Federal Wire Transfer",
	"NON": "Non-Payment Data",
}

var carcDesc = map[string]string{
	"1":   "Deductible Amount",
	"2":   "Coinsurance Amount",
	"3":   "Copayment Amount",
	"4":   "Procedure code inconsistent with modifier",
	"5":   "Procedure code inconsistent with place of service",
	"6":   "Procedure/revenue code inconsistent with diagnosis",
	"9":   "Services not authorized",
	"16":  "Claim lacks information needed for adjudication",
	"18":  "Exact duplicate claim/service",
	"22":  "Care may be covered by another payer",
	"23":  "Charges included in allowance for another service",
	"24":  "Charges covered under capitation",
	"26":  "Expenses incurred prior to coverage",
	"27":  "Expenses incurred after coverage",
	"29":  "Time limit for filing has expired",
	"31":  "Patient not eligible for service on date of service",
	"35":  "Lifetime benefit maximum has been reached",
	"39":  "Services denied at the time authorization was requested",
	"45":  "Charges exceed contracted/legislated fee arrangement",
	"49":  "Non-covered because it is a routine/preventive exam",
	"50":  "Non-covered services",
	"55":  "Procedure requires prior authorization",
	"96":  "Non-covered charge(s)",
	"97":  "Benefit not included in current contract/plan",
	"109": "Not covered by this payer/contractor",
	"119": "Benefit maximum for this time period has been reached",
	"167": "Diagnosis is not covered",
	"197": "Precertification/authorization/notification absent",
	"204": "Service not covered/authorized",
	"242": "Services not provided by designated provider",
	"252": "Service not on approved list",
	"A1":  "Claim/service denied (Claim PPS)",
	"A6":  "Prior hospitalization or 30-day transfer requirement not met",
	"B7":  "Provider not certified/eligible to be paid for this procedure",
	"B15": "Coverage not in effect at the time the service was provided",
}

// FacilityTypeDescription returns the place-of-service description for a
// CLM05-1 facility code.
func FacilityTypeDescription(code string) (string, bool) {
	d, ok := facilityTypeDesc[code]
	return d, ok
}

func FrequencyTypeDescription(code string) (string, bool) {
	d, ok := frequencyTypeDesc[code]
	return d, ok
}

func AssignmentDescription(code string) (string, bool) {
	d, ok := assignmentDesc[code]
	return d, ok
}

func FilingIndicatorDescription(code string) (string, bool) {
	d, ok := filingIndicatorDesc[code]
	return d, ok
}

func PayerResponsibilityDescription(code string) (string, bool) {
	d, ok := payerResponsibilityDesc[code]
	return d, ok
}

func DateQualifierDescription(code string) (string, bool) {
	d, ok := dateQualifierDesc[code]
	return d, ok
}

func ReferenceQualifierDescription(code string) (string, bool) {
	d, ok := referenceQualifierDesc[code]
	return d, ok
}

func ClaimStatusDescription(code string) (string, bool) {
	d, ok := claimStatusDesc[code]
	return d, ok
}

func PaymentMethodDescription(code string) (string, bool) {
	d, ok := paymentMethodDesc[code]
	return d, ok
}

func CARCDescription(code string) (string, bool) {
	d, ok := carcDesc[code]
	return d, ok
}
