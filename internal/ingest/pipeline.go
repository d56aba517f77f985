// Package ingest drives the file-to-database pipeline: parse, dedup
// preflight, canonical load, and audit finalize. Loads are idempotent at the
// file level (hash gate) and at the record level (natural key upserts).
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/model"
	"github.com/marbhealth/edipipe/internal/parse"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full pipeline for one file: parse → preflight → load →
// finalize. A structurally corrupt file is quarantined in the audit log and
// returns a parse-phase error; an already-loaded file returns a skipped
// summary without touching canonical tables.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) (*model.LoadSummary, error) {
	totalStart := time.Now()

	// Phase 1: Parse
	log.Info().Str("file", cfg.FilePath).Str("type", cfg.FileType).Msg("parsing file")
	parseStart := time.Now()
	env, err := parse.File(cfg.FilePath, model.FileType(cfg.FileType), cfg.Matching)
	if err != nil {
		var fatal *parse.FatalError
		if errors.As(err, &fatal) {
			if qErr := Quarantine(ctx, pool, cfg, fatal); qErr != nil {
				log.Error().Err(qErr).Msg("quarantine record failed")
			}
		}
		return nil, &PipelineError{Phase: "parse", Err: err}
	}
	parseDur := time.Since(parseStart)

	log.Info().
		Int("records", env.RecordCount).
		Int("record_errors", env.Summary.RecordErrors).
		Int("warnings", env.Summary.WarningCount()).
		Dur("duration", parseDur).
		Msg("parse complete")

	// Phase 2: Preflight (dedup gate)
	pf, err := Preflight(ctx, pool, log, cfg, env)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Int64("file_log_id", pf.FileLogID).
			Str("file_hash", env.FileHash).
			Msg("file already ingested, skipping (use --force to reload)")
		return &model.LoadSummary{
			FilePath:      cfg.FilePath,
			FileHash:      env.FileHash,
			FileLogID:     pf.FileLogID,
			BatchID:       pf.BatchID.String(),
			Skipped:       true,
			SkipReason:    "file_hash already ingested",
			RecordsParsed: env.RecordCount,
			DurationParse: parseDur,
			DurationTotal: time.Since(totalStart),
		}, nil
	}

	// Phase 3: Load
	loadStart := time.Now()
	var stats *loadStats
	switch env.FileType {
	case model.FileType835:
		stats, err = Load835(ctx, pool, log, cfg, env)
	default:
		stats, err = Load837(ctx, pool, log, cfg, env)
	}
	if err != nil {
		if fErr := Finalize(ctx, pool, env, pf.FileLogID, "failed", err.Error(), 0); fErr != nil {
			log.Error().Err(fErr).Msg("finalize after load failure failed")
		}
		return nil, &PipelineError{Phase: "load", Err: err}
	}
	loadDur := time.Since(loadStart)

	// Phase 4: Finalize audit row
	if err := Finalize(ctx, pool, env, pf.FileLogID, "loaded", "", stats.unmatched); err != nil {
		return nil, &PipelineError{Phase: "finalize", Err: err}
	}

	summary := &model.LoadSummary{
		FilePath:       cfg.FilePath,
		FileHash:       env.FileHash,
		FileLogID:      pf.FileLogID,
		BatchID:        pf.BatchID.String(),
		RecordsParsed:  env.RecordCount,
		RecordsLoaded:  stats.loaded,
		RecordErrors:   env.Summary.RecordErrors,
		Warnings:       env.Summary.WarningCount(),
		InvalidDates:   env.Summary.InvalidDates,
		Unmatched:      stats.unmatched,
		MatchCounts:    stats.matchCounts,
		Reconciliation: stats.totals,
		DurationParse:  parseDur,
		DurationLoad:   loadDur,
		DurationTotal:  time.Since(totalStart),
	}

	log.Info().
		Int("records_loaded", summary.RecordsLoaded).
		Int("record_errors", summary.RecordErrors).
		Int("warnings", summary.Warnings).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("ingest pipeline complete")

	if cfg.StrictLoad && env.Summary.RecordErrors > 0 {
		return summary, &PipelineError{
			Phase: "load",
			Err:   fmt.Errorf("strict mode: %d record errors", env.Summary.RecordErrors),
		}
	}

	return summary, nil
}

// loadStats is the per-file outcome shared by both load paths.
type loadStats struct {
	loaded      int
	unmatched   int
	matchCounts map[model.MatchStrategy]int
	totals      model.ReconciliationTotals
}
