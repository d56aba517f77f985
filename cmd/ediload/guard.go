package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marbhealth/edipipe/internal/db"
	"github.com/marbhealth/edipipe/internal/exitcode"
	"github.com/marbhealth/edipipe/internal/ingest"
	"github.com/marbhealth/edipipe/internal/logging"
)

var (
	guardEnforce bool
	guardCleanup bool
)

var guardCmd = &cobra.Command{
	Use:   "guard",
	Short: "Audit natural-key health and optionally enforce uniqueness",
	Long:  "Scans canonical tables for natural-key duplicates and orphaned children. With --enforce, creates the unique indexes when the data is clean; with --cleanup, removes duplicates first (keeping the newest row per key).",
	RunE:  runGuard,
}

func init() {
	f := guardCmd.Flags()
	f.BoolVar(&guardEnforce, "enforce", false, "Create natural-key unique indexes when clean")
	f.BoolVar(&guardCleanup, "cleanup", false, "Delete duplicate rows before enforcing (keeps newest)")
	rootCmd.AddCommand(guardCmd)
}

func runGuard(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or DATABASE_URL is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	if guardCleanup {
		if err := ingest.CleanupDuplicates(ctx, pool, log); err != nil {
			log.Error().Err(err).Msg("cleanup failed")
			os.Exit(exitcode.LoadError)
		}
	}

	if guardEnforce {
		report, enforced, err := ingest.EnforceUniqueness(ctx, pool, log)
		if err != nil {
			log.Error().Err(err).Msg("enforcement failed")
			os.Exit(exitcode.LoadError)
		}
		printGuardReport(report)
		if enforced {
			fmt.Println("Uniqueness: ENFORCED")
		} else {
			fmt.Println("Uniqueness: SKIPPED (duplicates present, run with --cleanup)")
		}
		return nil
	}

	report, err := ingest.Audit(ctx, pool, log)
	if err != nil {
		log.Error().Err(err).Msg("audit failed")
		os.Exit(exitcode.LoadError)
	}
	printGuardReport(report)
	return nil
}

func printGuardReport(r *ingest.AuditReport) {
	fmt.Println("=== ediload guard ===")
	fmt.Printf("Claim header dupes:  %d groups / %d rows\n", r.HeaderDupeGroups, r.HeaderDupeRows)
	fmt.Printf("Claim payment dupes: %d groups / %d rows\n", r.PaymentDupeGroups, r.PaymentDupeRows)
	fmt.Printf("Orphaned child rows: %d\n", r.OrphanCount())
	for table, count := range r.Orphans {
		fmt.Printf("  %-22s %d\n", table+":", count)
	}
	if r.Clean() {
		fmt.Println("Natural keys: CLEAN")
	} else {
		fmt.Println("Natural keys: DIRTY")
	}
}
