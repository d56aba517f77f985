package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/match"
	"github.com/marbhealth/edipipe/internal/model"
	"github.com/marbhealth/edipipe/internal/normalize"
	embedsql "github.com/marbhealth/edipipe/internal/sql"
)

// pgClaimIndex backs the matching engine with the canonical store. All
// lookups are scoped to the run's org so tenants never cross-match.
type pgClaimIndex struct {
	pool  *pgxpool.Pool
	orgID *int64
}

func (x *pgClaimIndex) ByClaimID(ctx context.Context, candidate string) (*int64, error) {
	var id int64
	err := x.pool.QueryRow(ctx, embedsql.LookupClaimByID, candidate, x.orgID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (x *pgClaimIndex) ByOriginalClaimID(ctx context.Context, candidate string) (*int64, error) {
	var id int64
	err := x.pool.QueryRow(ctx, embedsql.LookupClaimByOriginalID, candidate, x.orgID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (x *pgClaimIndex) ByReference(ctx context.Context, qualifier, value string) ([]int64, error) {
	rows, err := x.pool.Query(ctx, embedsql.LookupClaimRefs, value, qualifier, x.orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ match.ClaimIndex = (*pgClaimIndex)(nil)

// Load835 persists payment records. Every payment row lands regardless of
// match outcome; a matched payment additionally updates its claim header's
// payment fields and status.
func Load835(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config, env *model.ParsedFileEnvelope) (*loadStats, error) {
	stats := &loadStats{matchCounts: map[model.MatchStrategy]int{}}
	engine := match.New(&pgClaimIndex{pool: pool, orgID: cfg.OrgID}, cfg.Matching)

	for _, payment := range env.Payments {
		res, err := engine.Match(ctx, payment)
		if err != nil {
			return nil, fmt.Errorf("match payment %q: %w", payment.PatientControlNumber, err)
		}
		stats.matchCounts[res.Strategy]++
		if !res.Matched() {
			stats.unmatched++
			log.Debug().
				Str("patient_control_number", payment.PatientControlNumber).
				Str("reason", res.ReasonCode).
				Msg("payment unmatched")
		}

		if err := loadPayment(ctx, pool, cfg, payment, res); err != nil {
			return nil, fmt.Errorf("load payment %q: %w", payment.PatientControlNumber, err)
		}

		stats.loaded++
		if payment.TotalChargeCents != nil {
			stats.totals.ChargeCents += *payment.TotalChargeCents
		}
		if payment.PaidCents != nil {
			stats.totals.PaidCents += *payment.PaidCents
		}
		for _, adj := range allAdjustments(payment) {
			if adj.Cents != nil {
				stats.totals.AdjustmentCents += *adj.Cents
			}
		}
	}

	log.Info().
		Int("payments", stats.loaded).
		Int("unmatched", stats.unmatched).
		Msg("payment load complete")
	return stats, nil
}

func loadPayment(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, p *model.PaymentRecord, res model.MatchResult) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	paymentID, existed, err := upsertPayment(ctx, tx, cfg, p, res)
	if err != nil {
		return err
	}
	if existed {
		if _, err := tx.Exec(ctx, embedsql.DeletePaymentChildren, paymentID); err != nil {
			return fmt.Errorf("clear payment children: %w", err)
		}
	}

	if err := insertPaymentChildren(ctx, tx, paymentID, p); err != nil {
		return err
	}

	if res.Matched() {
		_, err = tx.Exec(ctx, embedsql.UpdateClaimHeaderPayment,
			*res.ClaimHeaderID,
			normalize.NullableCentsToDecimal(p.PaidCents),
			normalize.NullableCentsToDecimal(p.PatientRespCents),
			headerStatus(p),
		)
		if err != nil {
			return fmt.Errorf("update claim header payment fields: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func upsertPayment(ctx context.Context, tx pgx.Tx, cfg *config.Config, p *model.PaymentRecord, res model.MatchResult) (int64, bool, error) {
	flex, err := flexJSON(p.Flex)
	if err != nil {
		return 0, false, fmt.Errorf("encode flex payload: %w", err)
	}
	strategy := string(res.Strategy)

	var existingID int64
	err = tx.QueryRow(ctx, embedsql.SelectClaimPayment,
		p.FileName, p.PatientControlNumber, p.CheckNumber, p.PaymentDate, cfg.OrgID,
	).Scan(&existingID)

	switch {
	case err == nil:
		_, err = tx.Exec(ctx, embedsql.UpdateClaimPayment,
			existingID,
			res.ClaimHeaderID,
			p.ClaimStatusCode, p.ClaimStatusDesc,
			normalize.NullableCentsToDecimal(p.TotalChargeCents),
			normalize.NullableCentsToDecimal(p.PaidCents),
			normalize.NullableCentsToDecimal(p.PatientRespCents),
			p.PayerID, p.PayerName,
			p.PaymentMethodCode, p.FilingIndicatorCode,
			p.StatementStart, p.StatementEnd,
			p.PatientLastName, p.PatientFirstName,
			optNull(p.PayerClaimControlNumber), strategy, res.ReasonCode,
			flex,
		)
		if err != nil {
			return 0, false, fmt.Errorf("update payment: %w", err)
		}
		return existingID, true, nil

	case errors.Is(err, pgx.ErrNoRows):
		var id int64
		err = tx.QueryRow(ctx, embedsql.InsertClaimPayment,
			res.ClaimHeaderID,
			cfg.OrgID,
			p.FileName, p.PatientControlNumber,
			p.ClaimStatusCode, p.ClaimStatusDesc,
			normalize.NullableCentsToDecimal(p.TotalChargeCents),
			normalize.NullableCentsToDecimal(p.PaidCents),
			normalize.NullableCentsToDecimal(p.PatientRespCents),
			p.PayerID, p.PayerName,
			p.CheckNumber, p.PaymentDate,
			p.PaymentMethodCode, p.FilingIndicatorCode,
			p.StatementStart, p.StatementEnd,
			p.PatientLastName, p.PatientFirstName,
			optNull(p.PayerClaimControlNumber), strategy, res.ReasonCode,
			flex,
		).Scan(&id)
		if err != nil {
			return 0, false, fmt.Errorf("insert payment: %w", err)
		}
		return id, false, nil

	default:
		return 0, false, fmt.Errorf("select payment: %w", err)
	}
}

// insertPaymentChildren writes service lines one at a time for their ids,
// then bulk-inserts all adjustments via COPY.
func insertPaymentChildren(ctx context.Context, tx pgx.Tx, paymentID int64, p *model.PaymentRecord) error {
	adjRows := make([][]any, 0, len(p.Adjustments))
	for _, adj := range p.Adjustments {
		adjRows = append(adjRows, adjustmentRow(paymentID, nil, adj))
	}

	for i := range p.Lines {
		line := &p.Lines[i]
		var lineID int64
		err := tx.QueryRow(ctx, embedsql.InsertClaimPaymentLine,
			paymentID,
			line.ProcedureCode, line.Modifier1,
			normalize.NullableCentsToDecimal(line.ChargeCents),
			normalize.NullableCentsToDecimal(line.PaidCents),
			line.RevenueCode, line.UnitsPaid,
		).Scan(&lineID)
		if err != nil {
			return fmt.Errorf("insert payment line %d: %w", i+1, err)
		}
		for _, adj := range line.Adjustments {
			adjRows = append(adjRows, adjustmentRow(paymentID, &lineID, adj))
		}
	}

	if len(adjRows) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"claim_adjustments"},
			[]string{"claim_payment_id", "claim_payment_line_id", "adjustment_group_code", "adjustment_group_desc", "carc_code", "carc_description", "adjustment_amount", "adjustment_quantity", "level"},
			pgx.CopyFromRows(adjRows),
		); err != nil {
			return fmt.Errorf("copy adjustments: %w", err)
		}
	}

	return nil
}

func adjustmentRow(paymentID int64, lineID *int64, adj model.AdjustmentEntry) []any {
	return []any{
		paymentID, lineID,
		string(adj.GroupCode), adj.GroupDesc,
		adj.CARCCode, adj.CARCDesc,
		normalize.NullableCentsToDecimal(adj.Cents),
		adj.Quantity,
		string(adj.Level),
	}
}

// allAdjustments flattens claim-level and line-level adjustments for
// reconciliation totals.
func allAdjustments(p *model.PaymentRecord) []model.AdjustmentEntry {
	out := make([]model.AdjustmentEntry, 0, len(p.Adjustments))
	out = append(out, p.Adjustments...)
	for _, line := range p.Lines {
		out = append(out, line.Adjustments...)
	}
	return out
}

// headerStatus derives the claim header status from the payment outcome:
// denied when the payer says so, paid when any money moved, partial
// otherwise (zero-pay without an explicit denial).
func headerStatus(p *model.PaymentRecord) string {
	if p.ClaimStatusCode != nil && *p.ClaimStatusCode == "4" {
		return "denied"
	}
	if p.PaidCents != nil && *p.PaidCents > 0 {
		return "paid"
	}
	return "partial"
}

// optNull maps an empty string to NULL for nullable text columns.
func optNull(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
