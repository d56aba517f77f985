package ingest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/marbhealth/edipipe/internal/sql"
)

// AuditReport summarizes natural-key health across the canonical tables.
type AuditReport struct {
	HeaderDupeGroups  int
	HeaderDupeRows    int
	PaymentDupeGroups int
	PaymentDupeRows   int
	Orphans           map[string]int64
}

// Clean reports whether uniqueness can be enforced without data loss.
func (r *AuditReport) Clean() bool {
	return r.HeaderDupeGroups == 0 && r.PaymentDupeGroups == 0
}

// OrphanCount is the total child rows with no parent across all tables.
func (r *AuditReport) OrphanCount() int64 {
	var n int64
	for _, c := range r.Orphans {
		n += c
	}
	return n
}

// Audit scans for natural-key duplicates and orphaned children. Read-only.
func Audit(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) (*AuditReport, error) {
	report := &AuditReport{Orphans: map[string]int64{}}

	rows, err := pool.Query(ctx, embedsql.AuditClaimHeaderDupes)
	if err != nil {
		return nil, fmt.Errorf("audit header dupes: %w", err)
	}
	for rows.Next() {
		var (
			claimID, fileName, fileType string
			orgKey                      int64
			dupes                       int
		)
		if err := rows.Scan(&claimID, &fileName, &fileType, &orgKey, &dupes); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan header dupes: %w", err)
		}
		report.HeaderDupeGroups++
		report.HeaderDupeRows += dupes
		log.Warn().
			Str("claim_id", claimID).
			Str("file_name", fileName).
			Int("rows", dupes).
			Msg("duplicate claim natural key")
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit header dupes: %w", err)
	}

	rows, err = pool.Query(ctx, embedsql.AuditClaimPaymentDupes)
	if err != nil {
		return nil, fmt.Errorf("audit payment dupes: %w", err)
	}
	for rows.Next() {
		var (
			fileName, pcn, checkKey string
			dateKey                 any
			dupes                   int
		)
		if err := rows.Scan(&fileName, &pcn, &checkKey, &dateKey, &dupes); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan payment dupes: %w", err)
		}
		report.PaymentDupeGroups++
		report.PaymentDupeRows += dupes
		log.Warn().
			Str("file_name", fileName).
			Str("patient_control_number", pcn).
			Int("rows", dupes).
			Msg("duplicate payment natural key")
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit payment dupes: %w", err)
	}

	rows, err = pool.Query(ctx, embedsql.AuditOrphans)
	if err != nil {
		return nil, fmt.Errorf("audit orphans: %w", err)
	}
	for rows.Next() {
		var (
			table string
			count int64
		)
		if err := rows.Scan(&table, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan orphans: %w", err)
		}
		if count > 0 {
			report.Orphans[table] = count
			log.Warn().Str("table", table).Int64("rows", count).Msg("orphaned child rows")
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit orphans: %w", err)
	}

	return report, nil
}

// EnforceUniqueness audits first and creates the natural-key unique indexes
// only when the data is clean. A dirty store is a skip with diagnostics, not
// a failure: the operator decides whether to run cleanup.
func EnforceUniqueness(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) (*AuditReport, bool, error) {
	report, err := Audit(ctx, pool, log)
	if err != nil {
		return nil, false, err
	}
	if !report.Clean() {
		log.Warn().
			Int("header_dupe_groups", report.HeaderDupeGroups).
			Int("payment_dupe_groups", report.PaymentDupeGroups).
			Msg("duplicates present, skipping uniqueness enforcement (run guard --cleanup first)")
		return report, false, nil
	}

	if _, err := pool.Exec(ctx, embedsql.EnforceClaimHeaderUnique); err != nil {
		return report, false, fmt.Errorf("create claim header unique index: %w", err)
	}
	if _, err := pool.Exec(ctx, embedsql.EnforceClaimPaymentUnique); err != nil {
		return report, false, fmt.Errorf("create claim payment unique index: %w", err)
	}

	log.Info().Msg("natural key uniqueness enforced")
	return report, true, nil
}

// CleanupDuplicates deletes all but the newest row in every duplicated
// natural-key group, in one transaction. Children cascade with their
// parents.
func CleanupDuplicates(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, embedsql.CleanupClaimHeaderDupes)
	if err != nil {
		return fmt.Errorf("cleanup header dupes: %w", err)
	}
	headerRemoved := tag.RowsAffected()

	tag, err = tx.Exec(ctx, embedsql.CleanupClaimPaymentDupes)
	if err != nil {
		return fmt.Errorf("cleanup payment dupes: %w", err)
	}
	paymentRemoved := tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cleanup: %w", err)
	}

	log.Info().
		Int64("headers_removed", headerRemoved).
		Int64("payments_removed", paymentRemoved).
		Msg("duplicate cleanup complete")
	return nil
}
