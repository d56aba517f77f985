package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marbhealth/edipipe/internal/db"
	"github.com/marbhealth/edipipe/internal/exitcode"
	"github.com/marbhealth/edipipe/internal/ingest"
	"github.com/marbhealth/edipipe/internal/logging"
	"github.com/marbhealth/edipipe/internal/model"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest one EDI file into the database",
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to EDI file (required)")
	f.StringVar(&cfg.FileType, "type", "", "File type: 837P, 837I or 835 (required)")
	f.BoolVar(&cfg.Force, "force", false, "Reload even if the file hash already exists")
	f.BoolVar(&cfg.StrictLoad, "strict", false, "Treat record-level errors as a failed load")
	_ = ingestCmd.MarkFlagRequired("file")
	_ = ingestCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := applyGlobalFlags(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := ingest.Run(ctx, pool, log, &cfg)
	if err != nil {
		var pe *ingest.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("ingest failed")
			switch pe.Phase {
			case "parse":
				os.Exit(exitcode.ValidationError)
			case "preflight":
				os.Exit(exitcode.ValidationError)
			default:
				os.Exit(exitcode.LoadError)
			}
		}
		log.Error().Err(err).Msg("ingest failed")
		os.Exit(exitcode.LoadError)
	}

	if summary.Skipped {
		fmt.Printf("Skipped: %s (%s)\n", summary.FilePath, summary.SkipReason)
		return nil
	}

	fmt.Printf("Ingest complete: %d records loaded, %d record errors, %d warnings (%.1fs)\n",
		summary.RecordsLoaded, summary.RecordErrors, summary.Warnings, summary.DurationTotal.Seconds())
	if cfg.FileType == string(model.FileType835) {
		for _, key := range model.MatchStrategyKeys {
			if n := summary.MatchCounts[key]; n > 0 {
				fmt.Printf("  matched via %-24s %d\n", string(key)+":", n)
			}
		}
	}
	return nil
}
