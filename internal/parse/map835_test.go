package parse

import (
	"strings"
	"testing"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/model"
)

func edi835(segments ...string) []byte {
	parts := append([]string{
		"GS*HP*62308*RECEIVER*20250127*0900*2*X*005010X221A1",
		"ST*835*0002*005010X221A1",
		"BPR*I*1250.00*C*ACH*CCP*01*111000025*DA*987654*123456**01*111000025*DA*123456*20250127",
		"TRN*1*EFT20250127002*1234567890",
		"DTM*405*20250127",
		"N1*PR*BCBS OF TENNESSEE*PI*62308",
		"N1*PE*NASHVILLE PRIMARY CARE PLLC*XX*1234567890",
	}, segments...)
	parts = append(parts, "SE*20*0002", "GE*1*2", "IEA*1*000000001")
	return []byte(isaHeader + strings.Join(parts, "~") + "~")
}

func parse835(t *testing.T, segments ...string) *model.ParsedFileEnvelope {
	t.Helper()
	env, err := Content(edi835(segments...), "remit.edi", model.FileType835, config.Defaults().Matching)
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	return env
}

func TestMapPayments_HeaderContextStamped(t *testing.T) {
	env := parse835(t,
		"CLP*CLM1001*1*275*230.50*12.00*BL*623089001",
		"NM1*QC*1*JOHNSON*MARIA",
	)
	if len(env.Payments) != 1 {
		t.Fatalf("got %d payments, want 1", len(env.Payments))
	}
	p := env.Payments[0]

	if p.PatientControlNumber != "CLM1001" {
		t.Errorf("PatientControlNumber: got %q", p.PatientControlNumber)
	}
	if p.PayerClaimControlNumber != "623089001" {
		t.Errorf("PayerClaimControlNumber: got %q", p.PayerClaimControlNumber)
	}
	if p.PayerName == nil || *p.PayerName != "BCBS OF TENNESSEE" {
		t.Errorf("PayerName: got %v", p.PayerName)
	}
	if p.PayerID == nil || *p.PayerID != "62308" {
		t.Errorf("PayerID: got %v", p.PayerID)
	}
	if p.CheckNumber == nil || *p.CheckNumber != "EFT20250127002" {
		t.Errorf("CheckNumber: got %v", p.CheckNumber)
	}
	if p.PaymentMethodCode == nil || *p.PaymentMethodCode != "ACH" {
		t.Errorf("PaymentMethodCode: got %v", p.PaymentMethodCode)
	}
	if p.PaymentDate == nil || p.PaymentDate.Format("20060102") != "20250127" {
		t.Errorf("PaymentDate from BPR16: got %v", p.PaymentDate)
	}
	if p.ClaimStatusCode == nil || *p.ClaimStatusCode != "1" {
		t.Errorf("ClaimStatusCode: got %v", p.ClaimStatusCode)
	}
	if p.ClaimStatusDesc == nil || *p.ClaimStatusDesc != "Processed as Primary" {
		t.Errorf("ClaimStatusDesc: got %v", p.ClaimStatusDesc)
	}
	if p.TotalChargeCents == nil || *p.TotalChargeCents != 27500 {
		t.Errorf("TotalChargeCents: got %v", p.TotalChargeCents)
	}
	if p.PaidCents == nil || *p.PaidCents != 23050 {
		t.Errorf("PaidCents: got %v", p.PaidCents)
	}
	if p.PatientRespCents == nil || *p.PatientRespCents != 1200 {
		t.Errorf("PatientRespCents: got %v", p.PatientRespCents)
	}
	if p.PatientLastName == nil || *p.PatientLastName != "JOHNSON" {
		t.Errorf("PatientLastName: got %v", p.PatientLastName)
	}
}

func TestMapPayments_DatePreference(t *testing.T) {
	env := parse835(t,
		"CLP*CLM1*1*100*80*0*BL*C1",
		"DTM*232*20250110",
		"DTM*233*20250114",
		"DTM*573*20250201",
	)
	p := env.Payments[0]

	// DTM*573 overrides the BPR16 batch date.
	if p.PaymentDate == nil || p.PaymentDate.Format("20060102") != "20250201" {
		t.Errorf("PaymentDate: got %v, want 20250201", p.PaymentDate)
	}
	if p.StatementStart == nil || p.StatementStart.Format("20060102") != "20250110" {
		t.Errorf("StatementStart: got %v", p.StatementStart)
	}
	if p.StatementEnd == nil || p.StatementEnd.Format("20060102") != "20250114" {
		t.Errorf("StatementEnd: got %v", p.StatementEnd)
	}
}

func TestExpandCAS_MultiTriplet(t *testing.T) {
	env := parse835(t,
		"CLP*CLM1*1*100*70*20*BL*C1",
		"CAS*PR*1*12.00*1*2*8.00*1",
	)
	p := env.Payments[0]

	if len(p.Adjustments) != 2 {
		t.Fatalf("got %d adjustments, want 2", len(p.Adjustments))
	}
	a1, a2 := p.Adjustments[0], p.Adjustments[1]
	if a1.CARCCode != "1" || a1.Cents == nil || *a1.Cents != 1200 {
		t.Errorf("first triplet: %+v", a1)
	}
	if a1.Quantity == nil || *a1.Quantity != 1 {
		t.Errorf("first quantity: %v", a1.Quantity)
	}
	if a2.CARCCode != "2" || a2.Cents == nil || *a2.Cents != 800 {
		t.Errorf("second triplet: %+v", a2)
	}
	if a1.GroupCode != model.AdjustmentPatientResp {
		t.Errorf("group: got %q", a1.GroupCode)
	}
	if a1.Level != model.AdjustmentLevelClaim {
		t.Errorf("level: got %q", a1.Level)
	}
}

func TestExpandCAS_DefensiveBreakOnGroupCode(t *testing.T) {
	// A malformed CAS where a group code appears where a CARC is expected.
	// The scanner must stop rather than mis-expand.
	env := parse835(t,
		"CLP*CLM1*1*100*70*0*BL*C1",
		"CAS*CO*45*30.00*CO*97*10.00",
	)
	p := env.Payments[0]
	if len(p.Adjustments) != 1 {
		t.Fatalf("got %d adjustments, want 1 (break on group code)", len(p.Adjustments))
	}
	if p.Adjustments[0].CARCCode != "45" {
		t.Errorf("CARC: got %q", p.Adjustments[0].CARCCode)
	}
}

func TestMapPayments_LineLevelAdjustments(t *testing.T) {
	env := parse835(t,
		"CLP*CLM1*1*275*230*0*BL*C1",
		"CAS*CO*45*45.00",
		"SVC*HC:99214:25*175*150.00**1",
		"DTM*472*20250113",
		"CAS*CO*45*25.00",
		"SVC*HC:36415*100*80.50**2",
		"CAS*CO*45*19.50",
	)
	p := env.Payments[0]

	if len(p.Adjustments) != 1 {
		t.Fatalf("claim-level adjustments: got %d, want 1", len(p.Adjustments))
	}
	if len(p.Lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(p.Lines))
	}

	l1 := p.Lines[0]
	if l1.ProcedureCode == nil || *l1.ProcedureCode != "99214" {
		t.Errorf("line 1 procedure: got %v", l1.ProcedureCode)
	}
	if l1.Modifier1 == nil || *l1.Modifier1 != "25" {
		t.Errorf("line 1 modifier: got %v", l1.Modifier1)
	}
	if l1.PaidCents == nil || *l1.PaidCents != 15000 {
		t.Errorf("line 1 paid: got %v", l1.PaidCents)
	}
	if len(l1.Adjustments) != 1 || l1.Adjustments[0].Level != model.AdjustmentLevelLine {
		t.Errorf("line 1 adjustments: %+v", l1.Adjustments)
	}
	if len(p.Lines[1].Adjustments) != 1 {
		t.Errorf("line 2 adjustments: got %d, want 1", len(p.Lines[1].Adjustments))
	}
	if p.Lines[1].UnitsPaid == nil || *p.Lines[1].UnitsPaid != 2 {
		t.Errorf("line 2 units: got %v", p.Lines[1].UnitsPaid)
	}
}

func TestMapPayments_MultipleCLPs(t *testing.T) {
	env := parse835(t,
		"CLP*A1*1*100*80*0*BL*C1",
		"CLP*A2*4*200*0*0*BL*C2",
		"CAS*CO*197*200.00",
		"CLP*A3*2*300*150*30*CI*C3",
	)
	if len(env.Payments) != 3 {
		t.Fatalf("got %d payments, want 3", len(env.Payments))
	}
	if env.Payments[1].PatientControlNumber != "A2" {
		t.Errorf("payment 2: got %q", env.Payments[1].PatientControlNumber)
	}
	if len(env.Payments[1].Adjustments) != 1 {
		t.Errorf("payment 2 adjustments: got %d", len(env.Payments[1].Adjustments))
	}
	if len(env.Payments[0].Adjustments) != 0 {
		t.Errorf("payment 1 should have no adjustments")
	}
}

func TestMapPayments_UnknownCodesSurvive(t *testing.T) {
	env := parse835(t,
		"CLP*CLM1*99*100*0*0*BL*C1",
		"CAS*XX*999*100.00",
		"REF*CE*PLANCODE7",
	)
	p := env.Payments[0]

	if p.ClaimStatusCode == nil || *p.ClaimStatusCode != "99" {
		t.Errorf("unknown status code not retained: %v", p.ClaimStatusCode)
	}
	if p.ClaimStatusDesc != nil {
		t.Errorf("unknown status desc should be nil")
	}
	if len(p.Adjustments) != 1 {
		t.Fatalf("adjustment with unknown group/CARC dropped")
	}
	if p.Adjustments[0].GroupDesc != nil || p.Adjustments[0].CARCDesc != nil {
		t.Errorf("unknown code descriptions should be nil: %+v", p.Adjustments[0])
	}

	// The unmapped REF segment lands in the flex payload.
	foundREF := false
	for _, seg := range p.Flex.Segments {
		if seg.SegmentID == "REF" {
			foundREF = true
		}
	}
	if !foundREF {
		t.Error("unmapped REF segment missing from flex payload")
	}

	if len(env.Summary.UnknownClaimStatusCodes) != 1 {
		t.Errorf("unknown status codes: %v", env.Summary.UnknownClaimStatusCodes)
	}
	if len(env.Summary.UnknownAdjustmentGroups) != 1 {
		t.Errorf("unknown adjustment groups: %v", env.Summary.UnknownAdjustmentGroups)
	}
	if len(env.Summary.UnknownCARCCodes) != 1 {
		t.Errorf("unknown carc codes: %v", env.Summary.UnknownCARCCodes)
	}
}

func TestMapPayments_EmptyControlNumbersPresent(t *testing.T) {
	env := parse835(t,
		"CLP**1*100*80*0*BL*",
	)
	if len(env.Payments) != 1 {
		t.Fatalf("payment with empty keys must still be produced")
	}
	p := env.Payments[0]
	if p.PatientControlNumber != "" || p.PayerClaimControlNumber != "" {
		t.Errorf("control numbers: %q %q", p.PatientControlNumber, p.PayerClaimControlNumber)
	}
}
