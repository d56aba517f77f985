package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/model"
	"github.com/marbhealth/edipipe/internal/normalize"
	embedsql "github.com/marbhealth/edipipe/internal/sql"
)

// Load837 persists claim records with natural-key idempotency. Each claim is
// its own transaction: a reload replaces the header in place and reinserts
// its children, so a partially failed file can be rerun safely.
func Load837(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config, env *model.ParsedFileEnvelope) (*loadStats, error) {
	stats := &loadStats{matchCounts: map[model.MatchStrategy]int{}}

	for _, claim := range env.Claims {
		if err := loadClaim(ctx, pool, cfg, env, claim); err != nil {
			return nil, fmt.Errorf("load claim %s: %w", claim.ClaimID, err)
		}
		stats.loaded++
		if claim.TotalChargeCents != nil {
			stats.totals.ChargeCents += *claim.TotalChargeCents
		}
	}

	log.Info().Int("claims", stats.loaded).Msg("claim load complete")
	return stats, nil
}

func loadClaim(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, env *model.ParsedFileEnvelope, claim *model.ClaimRecord) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	headerID, existed, err := upsertClaimHeader(ctx, tx, cfg, env, claim)
	if err != nil {
		return err
	}
	if existed {
		if _, err := tx.Exec(ctx, embedsql.DeleteClaimChildren, headerID); err != nil {
			return fmt.Errorf("clear children: %w", err)
		}
	}

	lineIDs, err := insertClaimLines(ctx, tx, headerID, claim.Lines)
	if err != nil {
		return err
	}
	if err := copyClaimChildren(ctx, tx, headerID, claim, lineIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// upsertClaimHeader resolves the claim's natural key and either updates the
// existing header row or inserts a new one. Returns the header id and
// whether the row pre-existed.
func upsertClaimHeader(ctx context.Context, tx pgx.Tx, cfg *config.Config, env *model.ParsedFileEnvelope, claim *model.ClaimRecord) (int64, bool, error) {
	flex, err := flexJSON(claim.Flex)
	if err != nil {
		return 0, false, fmt.Errorf("encode flex payload: %w", err)
	}

	priorAuthStatus := "none"
	if claim.PriorAuthNumber != nil {
		priorAuthStatus = "pending"
	}

	var existingID int64
	err = tx.QueryRow(ctx, embedsql.SelectClaimHeader,
		claim.ClaimID, claim.FileName, claim.FileType, cfg.OrgID,
	).Scan(&existingID)

	switch {
	case err == nil:
		_, err = tx.Exec(ctx, embedsql.UpdateClaimHeader,
			existingID,
			claim.ClaimType,
			"submitted",
			normalize.NullableCentsToDecimal(claim.TotalChargeCents),
			claim.FacilityTypeCode, claim.FacilityTypeDesc, claim.FacilityCodeQualifier,
			claim.FrequencyTypeCode, claim.FrequencyTypeDesc,
			claim.AssignmentCode, claim.AssignmentDesc,
			claim.BenefitsAssignment, claim.ReleaseOfInfoCode,
			claim.FilingIndicatorCode, claim.FilingIndicatorDesc,
			claim.PayerResponsibility, claim.PayerResponsibilityDsc,
			claim.PayerID, claim.PayerName,
			claim.PriorAuthNumber, priorAuthStatus,
			claim.OriginalClaimID,
			flex,
		)
		if err != nil {
			return 0, false, fmt.Errorf("update header: %w", err)
		}
		return existingID, true, nil

	case errors.Is(err, pgx.ErrNoRows):
		var id int64
		err = tx.QueryRow(ctx, embedsql.InsertClaimHeader,
			cfg.OrgID,
			claim.ClaimID, claim.ClaimType, claim.FileName, claim.FileType,
			"submitted",
			normalize.NullableCentsToDecimal(claim.TotalChargeCents),
			claim.FacilityTypeCode, claim.FacilityTypeDesc, claim.FacilityCodeQualifier,
			claim.FrequencyTypeCode, claim.FrequencyTypeDesc,
			claim.AssignmentCode, claim.AssignmentDesc,
			claim.BenefitsAssignment, claim.ReleaseOfInfoCode,
			claim.FilingIndicatorCode, claim.FilingIndicatorDesc,
			claim.PayerResponsibility, claim.PayerResponsibilityDsc,
			claim.PayerID, claim.PayerName,
			claim.PriorAuthNumber, priorAuthStatus,
			claim.OriginalClaimID,
			flex,
		).Scan(&id)
		if err != nil {
			return 0, false, fmt.Errorf("insert header: %w", err)
		}
		return id, false, nil

	default:
		return 0, false, fmt.Errorf("select header: %w", err)
	}
}

// insertClaimLines inserts service lines one at a time because line-level
// dates need the generated ids. Returns line_number → id.
func insertClaimLines(ctx context.Context, tx pgx.Tx, headerID int64, lines []model.ServiceLine) (map[int]int64, error) {
	lineIDs := make(map[int]int64, len(lines))
	for _, line := range lines {
		var id int64
		err := tx.QueryRow(ctx, embedsql.InsertClaimLine,
			headerID, line.LineNumber,
			line.ProcedureCode, line.ProcedureQualifier,
			line.Modifier1, line.Modifier2, line.Modifier3, line.Modifier4,
			line.RevenueCode,
			normalize.NullableCentsToDecimal(line.ChargeCents),
			line.UnitCount, line.UnitMeasurementCode, line.PlaceOfServiceCode,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert line %d: %w", line.LineNumber, err)
		}
		lineIDs[line.LineNumber] = id
	}
	return lineIDs, nil
}

// copyClaimChildren bulk-inserts diagnoses, dates, providers and references
// via COPY. None of these need generated ids back.
func copyClaimChildren(ctx context.Context, tx pgx.Tx, headerID int64, claim *model.ClaimRecord, lineIDs map[int]int64) error {
	if len(claim.Diagnoses) > 0 {
		rows := make([][]any, 0, len(claim.Diagnoses))
		for _, d := range claim.Diagnoses {
			rows = append(rows, []any{headerID, d.DiagnosisCode, string(d.DiagnosisType), d.CodeQualifier, d.SequenceNumber})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"claim_diagnoses"},
			[]string{"claim_header_id", "diagnosis_code", "diagnosis_type", "code_qualifier", "sequence_number"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copy diagnoses: %w", err)
		}
	}

	if len(claim.Dates) > 0 {
		rows := make([][]any, 0, len(claim.Dates))
		for _, d := range claim.Dates {
			var lineID *int64
			if d.LineNumber > 0 {
				if id, ok := lineIDs[d.LineNumber]; ok {
					lineID = &id
				}
			}
			rows = append(rows, []any{headerID, lineID, d.DateQualifier, d.QualifierDesc, d.FormatQualifier, d.DateValue, d.ParsedDate})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"claim_dates"},
			[]string{"claim_header_id", "claim_line_id", "date_qualifier", "date_qualifier_desc", "date_format_qualifier", "date_value", "parsed_date"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copy dates: %w", err)
		}
	}

	if len(claim.Providers) > 0 {
		rows := make([][]any, 0, len(claim.Providers))
		for _, p := range claim.Providers {
			rows = append(rows, []any{headerID, string(p.Role), p.EntityCode, p.EntityTypeQual, p.NPI, p.IDCodeQualifier, p.LastOrOrgName, p.FirstName, p.MiddleName, p.TaxonomyCode})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"claim_providers"},
			[]string{"claim_header_id", "provider_role", "entity_identifier_code", "entity_type_qualifier", "npi", "id_code_qualifier", "last_or_org_name", "first_name", "middle_name", "taxonomy_code"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copy providers: %w", err)
		}
	}

	if len(claim.References) > 0 {
		rows := make([][]any, 0, len(claim.References))
		for _, r := range claim.References {
			rows = append(rows, []any{headerID, r.ReferenceQualifier, r.QualifierDesc, r.ReferenceValue})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"claim_references"},
			[]string{"claim_header_id", "reference_qualifier", "reference_qualifier_desc", "reference_value"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copy references: %w", err)
		}
	}

	return nil
}

// flexJSON encodes a flex payload as a JSON string for the JSONB column.
// Returns nil when the payload is empty so the column stays NULL.
func flexJSON(f model.FlexPayload) (*string, error) {
	if len(f.Segments) == 0 && len(f.Warnings) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}
