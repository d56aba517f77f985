package parse

import (
	"strconv"
	"time"

	"github.com/marbhealth/edipipe/internal/edi"
	"github.com/marbhealth/edipipe/internal/model"
	"github.com/marbhealth/edipipe/internal/normalize"
)

var structural835 = map[string]struct{}{
	"ISA": {}, "GS": {}, "ST": {}, "LX": {}, "SE": {}, "GE": {}, "IEA": {},
	"N3": {}, "N4": {}, "PLB": {},
}

// mapPayments folds an 835 segment stream into PaymentRecords. CLP opens
// payment scope; CAS segments before the first SVC attach at claim level and
// after it at line level. Header context (payer N1*PR, BPR financials, TRN
// trace) is captured before the first CLP and stamped onto every payment.
func mapPayments(segments []edi.Segment, fileName string, delims edi.Delimiters, sb *summaryBuilder) []*model.PaymentRecord {
	var payments []*model.PaymentRecord
	var current *model.PaymentRecord
	var currentLine *model.PaymentLine

	var payerName, payerID, checkNumber, paymentMethod string
	var bprDate *time.Time

	for _, seg := range segments {
		switch {
		case seg.ID == "N1" && seg.Element(1) == "PR":
			payerName = seg.Element(2)
			payerID = seg.Element(4)

		case seg.ID == "BPR" && len(seg.Elements) >= 2:
			paymentMethod = seg.Element(4)
			if len(seg.Elements) >= 17 {
				bprDate = normalize.ParseEDIDate(seg.Element(16))
			}

		case seg.ID == "TRN" && len(seg.Elements) >= 3:
			checkNumber = seg.Element(2)

		case seg.ID == "CLP" && len(seg.Elements) >= 5:
			if current != nil {
				payments = append(payments, current)
			}
			current = mapPaymentHeader(seg, fileName, sb)
			current.PayerName = optStr(payerName)
			current.PayerID = optStr(payerID)
			current.CheckNumber = optStr(checkNumber)
			current.PaymentMethodCode = optStr(paymentMethod)
			if _, ok := model.PaymentMethodDescription(paymentMethod); !ok && paymentMethod != "" {
				current.Flex.AddWarning("unknown payment method code " + paymentMethod)
			}
			current.PaymentDate = bprDate
			currentLine = nil

		case seg.ID == "CAS" && current != nil && len(seg.Elements) >= 4:
			level := model.AdjustmentLevelClaim
			if currentLine != nil {
				level = model.AdjustmentLevelLine
			}
			entries := expandCASTriplets(seg, level, sb, &current.Flex)
			if currentLine != nil {
				currentLine.Adjustments = append(currentLine.Adjustments, entries...)
			} else {
				current.Adjustments = append(current.Adjustments, entries...)
			}

		case seg.ID == "SVC" && current != nil && len(seg.Elements) >= 4:
			current.Lines = append(current.Lines, mapPaymentLine(seg, delims))
			currentLine = &current.Lines[len(current.Lines)-1]

		case seg.ID == "DTM" && len(seg.Elements) >= 3:
			mapPaymentDate(seg, current, sb)

		case seg.ID == "NM1" && seg.Element(1) == "QC" && current != nil:
			current.PatientLastName = optStr(seg.Element(3))
			current.PatientFirstName = optStr(seg.Element(4))

		default:
			if current == nil {
				continue
			}
			if _, ok := structural835[seg.ID]; !ok {
				loop := "claim_payment"
				if currentLine != nil {
					loop = "service_payment"
				}
				current.Flex.AddSegment(seg.ID, seg.Elements, loop, "unmapped segment")
			}
		}
	}

	if current != nil {
		payments = append(payments, current)
	}
	return payments
}

func mapPaymentHeader(seg edi.Segment, fileName string, sb *summaryBuilder) *model.PaymentRecord {
	statusCode := seg.Element(2)
	statusDesc, known := model.ClaimStatusDescription(statusCode)
	if statusCode != "" && !known {
		sb.unknownClaimStatusCodes[statusCode] = struct{}{}
	}

	p := &model.PaymentRecord{
		FileName:                fileName,
		PatientControlNumber:    seg.Element(1),
		PayerClaimControlNumber: seg.Element(7),
		TotalChargeCents:        normalize.ParseAmountCents(seg.Element(3)),
		PaidCents:               normalize.ParseAmountCents(seg.Element(4)),
		PatientRespCents:        normalize.ParseAmountCents(seg.Element(5)),
		FilingIndicatorCode:     optStr(seg.Element(6)),
	}
	if statusCode != "" {
		p.ClaimStatusCode = &statusCode
		p.ClaimStatusDesc = descOrNil(statusDesc, known)
		if !known {
			p.Flex.AddWarning("unknown claim status code " + statusCode)
		}
	}
	return p
}

// mapPaymentDate applies DTM qualifiers inside CLP scope. The paid-date
// qualifiers (573, then 050) override the batch-level BPR date; 232/233 set
// the statement period. Header-level DTMs before the first CLP are ignored
// here because BPR16 already carries the batch payment date.
func mapPaymentDate(seg edi.Segment, current *model.PaymentRecord, sb *summaryBuilder) {
	if current == nil {
		return
	}
	qual := seg.Element(1)
	raw := seg.Element(2)
	parsed := normalize.ParseEDIDate(raw)
	if raw != "" && parsed == nil {
		sb.invalidDate()
	}

	switch qual {
	case "573", "050":
		if parsed != nil {
			current.PaymentDate = parsed
		}
	case "232":
		current.StatementStart = parsed
	case "233":
		current.StatementEnd = parsed
	}
}

func mapPaymentLine(seg edi.Segment, delims edi.Delimiters) model.PaymentLine {
	procParts := edi.SplitComposite(seg.Element(1), delims.Component)

	line := model.PaymentLine{
		ChargeCents: normalize.ParseAmountCents(seg.Element(2)),
		PaidCents:   normalize.ParseAmountCents(seg.Element(3)),
		RevenueCode: optStr(seg.Element(4)),
		UnitsPaid:   normalize.ParseQuantity(seg.Element(5)),
	}
	switch {
	case len(procParts) >= 2:
		line.ProcedureCode = optStr(procParts[1])
	case len(procParts) == 1:
		line.ProcedureCode = optStr(procParts[0])
	}
	if len(procParts) >= 3 {
		line.Modifier1 = optStr(procParts[2])
	}
	return line
}

// expandCASTriplets expands the repeated (reason, amount, quantity) triplets
// of a CAS segment into separate adjustment entries. The scanner breaks
// defensively when a malformed segment appears to start a new group mid-way.
func expandCASTriplets(seg edi.Segment, level model.AdjustmentLevel, sb *summaryBuilder, flex *model.FlexPayload) []model.AdjustmentEntry {
	groupCode := seg.Element(1)
	groupDesc, knownGroup := model.AdjustmentGroupDescription(groupCode)
	if groupCode != "" && !knownGroup {
		sb.unknownAdjustmentGroups[groupCode] = struct{}{}
		flex.AddWarning("unknown adjustment group " + groupCode)
	}

	var entries []model.AdjustmentEntry
	idx := 2
	for idx < len(seg.Elements) {
		carc := seg.Element(idx)
		if carc == "" {
			break
		}
		if model.KnownAdjustmentGroup(carc) && idx != 2 {
			break
		}

		var cents *int64
		if idx+1 < len(seg.Elements) {
			cents = normalize.ParseAmountCents(seg.Element(idx + 1))
		}

		var qty *int
		if idx+2 < len(seg.Elements) {
			token := seg.Element(idx + 2)
			if !model.KnownAdjustmentGroup(token) {
				if n, err := strconv.Atoi(token); err == nil {
					qty = &n
				}
				idx += 3
			} else {
				idx += 2
			}
		} else {
			idx += 2
		}

		carcDesc, knownCARC := model.CARCDescription(carc)
		if !knownCARC {
			sb.unknownCARCCodes[carc] = struct{}{}
		}

		entries = append(entries, model.AdjustmentEntry{
			GroupCode: model.AdjustmentGroup(groupCode),
			GroupDesc: descOrNil(groupDesc, knownGroup),
			CARCCode:  carc,
			CARCDesc:  descOrNil(carcDesc, knownCARC),
			Cents:     cents,
			Quantity:  qty,
			Level:     level,
		})
	}
	return entries
}
