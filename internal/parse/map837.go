package parse

import (
	"strconv"
	"strings"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/edi"
	"github.com/marbhealth/edipipe/internal/model"
	"github.com/marbhealth/edipipe/internal/normalize"
)

// Structural segments that carry no claim-scoped payload. Anything else that
// the mapper does not recognize inside a claim block lands in the flex
// payload instead of being dropped.
var structural837 = map[string]struct{}{
	"ISA": {}, "GS": {}, "ST": {}, "BHT": {}, "HL": {},
	"SE": {}, "GE": {}, "IEA": {},
}

// mapClaims folds an 837 segment stream into ClaimRecord trees. Claim blocks
// open at the subscriber hierarchical level (HL*n*n*22); within a block the
// CLM segment opens claim scope and header segments attach until the first
// LX, after which SV1 lines and line-level dates attach.
func mapClaims(segments []edi.Segment, fileName string, fileType model.FileType, delims edi.Delimiters, pctx config.ParseContext, sb *summaryBuilder, meta *model.FileMetadata) []*model.ClaimRecord {
	billing := extractFileMetadata(segments, meta)

	claimType := "professional"
	if fileType == model.FileType837I {
		claimType = "institutional"
	}

	var claims []*model.ClaimRecord
	for _, block := range claimBlocks(segments) {
		claim := extractClaim(block, fileName, fileType, claimType, delims, sb)
		if claim == nil {
			sb.recordError()
			continue
		}

		if billing != nil && !hasBillingProvider(claim.Providers) {
			claim.Providers = append([]model.ProviderEntry{*billing}, claim.Providers...)
		}

		checkReconciliation(claim, pctx.ReconciliationToleranceCents, sb)
		claims = append(claims, claim)
	}
	return claims
}

// claimBlocks splits the stream into blocks starting at each subscriber-level
// HL segment. Segments before the first block belong to the file envelope.
func claimBlocks(segments []edi.Segment) [][]edi.Segment {
	var blocks [][]edi.Segment
	var current []edi.Segment
	for _, seg := range segments {
		if seg.ID == "HL" && seg.Element(3) == "22" {
			if current != nil {
				blocks = append(blocks, current)
			}
			current = []edi.Segment{seg}
		} else if current != nil {
			current = append(current, seg)
		}
	}
	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks
}

// extractClaim maps one claim block. Returns nil when the block has no
// parseable CLM identity segment; the caller records that as a record_error
// and moves on.
func extractClaim(block []edi.Segment, fileName string, fileType model.FileType, claimType string, delims edi.Delimiters, sb *summaryBuilder) *model.ClaimRecord {
	claim := &model.ClaimRecord{
		ClaimType: claimType,
		FileName:  fileName,
		FileType:  string(fileType),
	}

	inHeader := true
	currentLine := 0
	sawCLM := false

	for _, seg := range block {
		switch {
		case seg.ID == "CLM" && len(seg.Elements) >= 3:
			id := seg.Element(1)
			if id == "" {
				sb.warn("claim block in %s has CLM segment with empty claim id", fileName)
				return nil
			}
			sawCLM = true
			claim.ClaimID = id
			claim.TotalChargeCents = normalize.ParseAmountCents(seg.Element(2))
			mapClaimLocation(claim, seg.Element(5), delims, sb)

			if code := seg.Element(7); code != "" {
				claim.AssignmentCode = &code
				claim.AssignmentDesc = descOrNil(model.AssignmentDescription(code))
			}
			claim.BenefitsAssignment = optStr(seg.Element(8))
			claim.ReleaseOfInfoCode = optStr(seg.Element(9))

		case seg.ID == "SBR":
			if code := seg.Element(1); code != "" {
				claim.PayerResponsibility = &code
				claim.PayerResponsibilityDsc = descOrNil(model.PayerResponsibilityDescription(code))
			}
			if code := seg.Element(9); code != "" {
				claim.FilingIndicatorCode = &code
				desc, ok := model.FilingIndicatorDescription(code)
				claim.FilingIndicatorDesc = descOrNil(desc, ok)
				if !ok {
					sb.warn("unknown filing indicator: %s", code)
					claim.Flex.AddWarning("unknown filing indicator " + code)
				}
			}

		case seg.ID == "NM1" && seg.Element(1) == "PR":
			claim.PayerName = optStr(seg.Element(3))
			claim.PayerID = optStr(seg.Element(9))

		case seg.ID == "NM1" && inHeader:
			claim.Providers = append(claim.Providers, mapProvider(seg, sb, &claim.Flex))

		case seg.ID == "PRV" && inHeader:
			attachTaxonomy(claim.Providers, seg.Element(3))

		case seg.ID == "DTP" && len(seg.Elements) >= 4:
			line := 0
			if !inHeader {
				line = currentLine
			}
			claim.Dates = append(claim.Dates, mapDate(seg, line, sb, &claim.Flex))

		case seg.ID == "HI" && inHeader:
			mapDiagnoses(claim, seg, delims, sb)

		case seg.ID == "REF" && inHeader && len(seg.Elements) >= 3:
			mapReference(claim, seg, sb)

		case seg.ID == "LX":
			inHeader = false
			if n, err := strconv.Atoi(seg.Element(1)); err == nil {
				currentLine = n
			} else {
				currentLine = len(claim.Lines) + 1
			}

		case seg.ID == "SV1" && currentLine > 0 && len(seg.Elements) >= 5:
			claim.Lines = append(claim.Lines, mapServiceLine(seg, currentLine, delims))

		case seg.ID == "SV2" && currentLine > 0 && len(seg.Elements) >= 2:
			claim.Lines = append(claim.Lines, mapInstitutionalLine(seg, currentLine, delims))

		default:
			if _, ok := structural837[seg.ID]; !ok {
				loop := "claim_header"
				if !inHeader {
					loop = "service_line"
				}
				claim.Flex.AddSegment(seg.ID, seg.Elements, loop, "unmapped segment")
			}
		}
	}

	if !sawCLM {
		return nil
	}
	return claim
}

// mapClaimLocation decodes the CLM05 composite: facility code, code
// qualifier, and claim frequency.
func mapClaimLocation(claim *model.ClaimRecord, composite string, delims edi.Delimiters, sb *summaryBuilder) {
	parts := edi.SplitComposite(composite, delims.Component)
	if len(parts) >= 1 && parts[0] != "" {
		claim.FacilityTypeCode = &parts[0]
		desc, ok := model.FacilityTypeDescription(parts[0])
		claim.FacilityTypeDesc = descOrNil(desc, ok)
		if !ok {
			sb.warn("unknown facility type code: %s", parts[0])
			claim.Flex.AddWarning("unknown facility type code " + parts[0])
		}
	}
	if len(parts) >= 2 {
		claim.FacilityCodeQualifier = optStr(parts[1])
	}
	if len(parts) >= 3 && parts[2] != "" {
		claim.FrequencyTypeCode = &parts[2]
		claim.FrequencyTypeDesc = descOrNil(model.FrequencyTypeDescription(parts[2]))
	}
}

func mapProvider(seg edi.Segment, sb *summaryBuilder, flex *model.FlexPayload) model.ProviderEntry {
	entityCode := seg.Element(1)
	role, known := model.ProviderRoleForEntityCode(entityCode)
	if !known {
		sb.warn("unknown provider entity code: %s", entityCode)
		flex.AddWarning("unknown provider entity code " + entityCode)
	}
	return model.ProviderEntry{
		Role:            role,
		EntityCode:      entityCode,
		EntityTypeQual:  optStr(seg.Element(2)),
		LastOrOrgName:   optStr(seg.Element(3)),
		FirstName:       optStr(seg.Element(4)),
		MiddleName:      optStr(seg.Element(5)),
		IDCodeQualifier: optStr(seg.Element(8)),
		NPI:             optStr(seg.Element(9)),
	}
}

// attachTaxonomy assigns a PRV taxonomy code to the first provider in scope
// that does not have one yet.
func attachTaxonomy(providers []model.ProviderEntry, taxonomy string) {
	if taxonomy == "" {
		return
	}
	for i := range providers {
		if providers[i].TaxonomyCode == nil {
			providers[i].TaxonomyCode = &taxonomy
			return
		}
	}
}

func mapDate(seg edi.Segment, lineNumber int, sb *summaryBuilder, flex *model.FlexPayload) model.DateEntry {
	qual := seg.Element(1)
	format := seg.Element(2)
	value := seg.Element(3)

	desc, ok := model.DateQualifierDescription(qual)
	if !ok {
		sb.unknownDateQualifiers[qual] = struct{}{}
		flex.AddWarning("unknown date qualifier " + qual)
	}

	parsed := normalize.ParseEDIDateRange(value, format)
	if value != "" && parsed == nil {
		sb.invalidDate()
	}

	return model.DateEntry{
		LineNumber:      lineNumber,
		DateQualifier:   qual,
		QualifierDesc:   descOrNil(desc, ok),
		FormatQualifier: format,
		DateValue:       value,
		ParsedDate:      parsed,
	}
}

// mapDiagnoses expands every composite element of an HI segment. Unknown
// qualifiers collapse to the "other" diagnosis type with a warning.
func mapDiagnoses(claim *model.ClaimRecord, seg edi.Segment, delims edi.Delimiters, sb *summaryBuilder) {
	for i := 1; i < len(seg.Elements); i++ {
		parts := edi.SplitComposite(seg.Elements[i], delims.Component)
		if len(parts) < 2 {
			continue
		}
		qualifier, code := parts[0], parts[1]
		dxType, known := model.DiagnosisTypeForQualifier(qualifier)
		if !known {
			sb.unknownDiagnosisQualifiers[qualifier] = struct{}{}
			claim.Flex.AddWarning("unknown diagnosis qualifier " + qualifier)
		}
		claim.Diagnoses = append(claim.Diagnoses, model.Diagnosis{
			DiagnosisCode:  code,
			DiagnosisType:  dxType,
			CodeQualifier:  qualifier,
			SequenceNumber: len(claim.Diagnoses) + 1,
		})
	}
}

func mapReference(claim *model.ClaimRecord, seg edi.Segment, sb *summaryBuilder) {
	qual := seg.Element(1)
	value := seg.Element(2)

	desc, ok := model.ReferenceQualifierDescription(qual)
	if !ok {
		sb.unknownReferenceQualifiers[qual] = struct{}{}
		claim.Flex.AddWarning("unknown reference qualifier " + qual)
	}

	claim.References = append(claim.References, model.ReferenceEntry{
		ReferenceQualifier: qual,
		QualifierDesc:      descOrNil(desc, ok),
		ReferenceValue:     value,
	})

	switch {
	case qual == "G1" && value != "":
		claim.PriorAuthNumber = &value
	case qual == "F8" && value != "":
		// Resubmissions carry the payer's original claim number here. It is
		// promoted for the 835 crosswalk and kept as a reference row too.
		claim.OriginalClaimID = &value
	}
}

func mapServiceLine(seg edi.Segment, lineNumber int, delims edi.Delimiters) model.ServiceLine {
	procParts := edi.SplitComposite(seg.Element(1), delims.Component)

	line := model.ServiceLine{
		LineNumber:          lineNumber,
		ChargeCents:         normalize.ParseAmountCents(seg.Element(2)),
		UnitMeasurementCode: optStr(seg.Element(3)),
		UnitCount:           normalize.ParseQuantity(seg.Element(4)),
		PlaceOfServiceCode:  optStr(seg.Element(5)),
	}
	if len(procParts) >= 1 {
		line.ProcedureQualifier = optStr(procParts[0])
	}
	if len(procParts) >= 2 {
		line.ProcedureCode = optStr(procParts[1])
	}
	mods := []**string{&line.Modifier1, &line.Modifier2, &line.Modifier3, &line.Modifier4}
	for i, target := range mods {
		if len(procParts) > i+2 {
			*target = optStr(procParts[i+2])
		}
	}
	return line
}

// mapInstitutionalLine maps an SV2 segment. Institutional lines key on the
// revenue code in SV2-1; the HCPCS composite in SV2-2 is optional.
func mapInstitutionalLine(seg edi.Segment, lineNumber int, delims edi.Delimiters) model.ServiceLine {
	line := model.ServiceLine{
		LineNumber:          lineNumber,
		RevenueCode:         optStr(seg.Element(1)),
		ChargeCents:         normalize.ParseAmountCents(seg.Element(3)),
		UnitMeasurementCode: optStr(seg.Element(4)),
		UnitCount:           normalize.ParseQuantity(seg.Element(5)),
	}
	procParts := edi.SplitComposite(seg.Element(2), delims.Component)
	if len(procParts) >= 1 {
		line.ProcedureQualifier = optStr(procParts[0])
	}
	if len(procParts) >= 2 {
		line.ProcedureCode = optStr(procParts[1])
	}
	mods := []**string{&line.Modifier1, &line.Modifier2, &line.Modifier3, &line.Modifier4}
	for i, target := range mods {
		if len(procParts) > i+2 {
			*target = optStr(procParts[i+2])
		}
	}
	return line
}

// extractFileMetadata pulls interchange/group context and the file-level
// billing provider (NM1*85 + PRV*BI) from segments outside claim blocks.
func extractFileMetadata(segments []edi.Segment, meta *model.FileMetadata) *model.ProviderEntry {
	var billing *model.ProviderEntry
	var billingTaxonomy *string
	inBlock := false

	for _, seg := range segments {
		if seg.ID == "HL" && seg.Element(3) == "22" {
			inBlock = true
		}
		switch seg.ID {
		case "ISA":
			if len(seg.Elements) >= 16 {
				meta.SenderID = strings.TrimSpace(seg.Element(6))
				meta.ReceiverID = strings.TrimSpace(seg.Element(8))
			}
		case "GS":
			meta.GroupType = seg.Element(1)
			meta.GroupSender = seg.Element(2)
			meta.GroupReceiver = seg.Element(3)
		case "ST":
			meta.TransactionSet = seg.Element(1)
		case "NM1":
			if !inBlock && seg.Element(1) == "85" && len(seg.Elements) >= 10 {
				billing = &model.ProviderEntry{
					Role:            model.ProviderBilling,
					EntityCode:      "85",
					EntityTypeQual:  optStr(seg.Element(2)),
					LastOrOrgName:   optStr(seg.Element(3)),
					FirstName:       optStr(seg.Element(4)),
					IDCodeQualifier: optStr(seg.Element(8)),
					NPI:             optStr(seg.Element(9)),
				}
			}
		case "PRV":
			// The 2000A loop places PRV before the NM1*85 it describes.
			if !inBlock && seg.Element(1) == "BI" {
				billingTaxonomy = optStr(seg.Element(3))
			}
		}
	}
	if billing != nil && billing.TaxonomyCode == nil {
		billing.TaxonomyCode = billingTaxonomy
	}
	return billing
}

func hasBillingProvider(providers []model.ProviderEntry) bool {
	for _, p := range providers {
		if p.Role == model.ProviderBilling {
			return true
		}
	}
	return false
}

// checkReconciliation compares the sum of line charges against the header
// total. A breach within tolerance is fine; outside it the claim is flagged
// with a warning, never rejected.
func checkReconciliation(claim *model.ClaimRecord, toleranceCents int64, sb *summaryBuilder) {
	if claim.TotalChargeCents == nil || len(claim.Lines) == 0 {
		return
	}
	var sum int64
	for _, line := range claim.Lines {
		if line.ChargeCents != nil {
			sum += *line.ChargeCents
		}
	}
	diff := sum - *claim.TotalChargeCents
	if diff < 0 {
		diff = -diff
	}
	if diff > toleranceCents {
		sb.warn("claim %s: line charges %s do not reconcile with header total %s",
			claim.ClaimID, normalize.CentsToDecimal(sum), normalize.CentsToDecimal(*claim.TotalChargeCents))
		claim.Flex.AddWarning("line charge sum does not reconcile with header total")
	}
}
