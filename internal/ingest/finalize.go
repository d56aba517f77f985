package ingest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marbhealth/edipipe/internal/model"
	embedsql "github.com/marbhealth/edipipe/internal/sql"
)

// Finalize writes the file's parse summary back to its audit ledger row.
// The ledger row is the per-file quality record operators query later.
func Finalize(ctx context.Context, pool *pgxpool.Pool, env *model.ParsedFileEnvelope, fileLogID int64, status, errMsg string, unmatched int) error {
	var errMsgParam *string
	if errMsg != "" {
		errMsgParam = &errMsg
	}

	_, err := pool.Exec(ctx, embedsql.FinalizeFile,
		fileLogID,
		status,
		nil, // fatal_reason: quarantine writes its own row
		errMsgParam,
		env.RecordCount,
		env.Summary.RecordErrors,
		env.Summary.WarningCount(),
		env.Summary.UnknownCodeCount(),
		unmatched,
	)
	if err != nil {
		return fmt.Errorf("finalize file log: %w", err)
	}
	return nil
}
