package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/model"
	"github.com/marbhealth/edipipe/internal/normalize"
	"github.com/marbhealth/edipipe/internal/parse"
	embedsql "github.com/marbhealth/edipipe/internal/sql"
)

// PreflightResult holds context resolved by the dedup gate.
type PreflightResult struct {
	// FileLogID is the audit ledger primary key for this file, inserted or
	// looked up by hash.
	FileLogID int64
	// BatchID is a freshly generated UUIDv4 identifying this ingestion run.
	BatchID uuid.UUID
	// AlreadyLoaded is true when the file's hash already exists in the ledger
	// and force mode is off.
	AlreadyLoaded bool
}

// Preflight runs the atomic check-and-insert against the file hash ledger.
// The INSERT ... ON CONFLICT DO NOTHING RETURNING id shape means two
// concurrent workers cannot both pass the gate for the same content.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config, env *model.ParsedFileEnvelope) (*PreflightResult, error) {
	batchID := uuid.New()

	var id int64
	err := pool.QueryRow(ctx, embedsql.RegisterFile,
		cfg.OrgID, env.FileName, string(env.FileType), env.FileHash, env.RecordCount,
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		// Hash already in the ledger.
		var (
			existingID int64
			fileName   string
			status     string
		)
		if err := pool.QueryRow(ctx, embedsql.SelectFileByHash, env.FileHash).
			Scan(&existingID, &fileName, &status); err != nil {
			return nil, fmt.Errorf("lookup existing file log: %w", err)
		}

		if !cfg.Force {
			return &PreflightResult{FileLogID: existingID, BatchID: batchID, AlreadyLoaded: true}, nil
		}

		log.Warn().
			Int64("file_log_id", existingID).
			Str("prior_status", status).
			Str("prior_file_name", fileName).
			Msg("force mode: reloading previously ingested file")
		if _, err := pool.Exec(ctx, embedsql.ResetFileStatus, existingID); err != nil {
			return nil, fmt.Errorf("reset file status: %w", err)
		}
		return &PreflightResult{FileLogID: existingID, BatchID: batchID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("register file: %w", err)
	}

	return &PreflightResult{FileLogID: id, BatchID: batchID}, nil
}

// Quarantine records a structurally corrupt file in the audit ledger. The
// file content is hashed here because no envelope exists for a fatal file.
func Quarantine(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, fatal *parse.FatalError) error {
	hash, err := normalize.FileHash(cfg.FilePath)
	if err != nil {
		return fmt.Errorf("hash quarantined file: %w", err)
	}
	var id int64
	if err := pool.QueryRow(ctx, embedsql.QuarantineFile,
		cfg.OrgID, fatal.FileName, cfg.FileType, hash, fatal.Reason,
	).Scan(&id); err != nil {
		return fmt.Errorf("record quarantine: %w", err)
	}
	return nil
}
