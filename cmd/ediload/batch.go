package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marbhealth/edipipe/internal/db"
	"github.com/marbhealth/edipipe/internal/exitcode"
	"github.com/marbhealth/edipipe/internal/ingest"
	"github.com/marbhealth/edipipe/internal/logging"
	"github.com/marbhealth/edipipe/internal/model"
	"github.com/marbhealth/edipipe/internal/report"
)

var (
	batchDir    string
	batchReport string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Ingest a directory of EDI files and evaluate quality gates",
	Long:  "Processes every .edi/.txt/.835/.837 file in a directory (claims first, then remittances), writes a consolidated JSON report, and fails when any quality gate threshold is exceeded.",
	RunE:  runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchDir, "dir", "", "Directory of EDI files (required)")
	f.StringVar(&batchReport, "report", "-", "Report output path (- for stdout)")
	f.BoolVar(&cfg.Force, "force", false, "Reload files whose hash already exists")
	f.BoolVar(&cfg.StrictLoad, "strict", false, "Treat record-level errors as a failed load")
	_ = batchCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := applyGlobalFlags(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if cfg.DSN == "" {
		log.Error().Msg("--dsn or DATABASE_URL is required")
		os.Exit(exitcode.UsageError)
	}

	files, err := collectBatchFiles(batchDir)
	if err != nil {
		log.Error().Err(err).Msg("scan batch directory failed")
		os.Exit(exitcode.UsageError)
	}
	if len(files) == 0 {
		log.Error().Str("dir", batchDir).Msg("no EDI files found")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	var builder report.Builder
	for _, bf := range files {
		fileCfg := cfg
		fileCfg.FilePath = bf.path
		fileCfg.FileType = bf.fileType

		log.Info().Str("file", bf.path).Str("type", bf.fileType).Msg("batch: processing file")
		summary, err := ingest.Run(ctx, pool, log, &fileCfg)
		builder.Add(batchResult(bf, summary, err))
		if summary != nil {
			builder.AddMatchCounts(summary.MatchCounts)
		}
	}

	rep := builder.Build(cfg.Gates)
	if err := rep.WriteJSON(batchReport); err != nil {
		log.Error().Err(err).Msg("write batch report failed")
		os.Exit(exitcode.LoadError)
	}

	for _, g := range rep.Gates {
		status := "pass"
		if !g.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(os.Stderr, "gate %-22s %.2f%% (max %.2f%%) %s\n", g.Name, g.Rate, g.Threshold, status)
	}

	if !rep.Passed {
		log.Error().Msg("quality gates failed")
		os.Exit(exitcode.QualityGateFail)
	}
	return nil
}

// batchFile is one discovered input with its inferred transaction type.
type batchFile struct {
	path     string
	fileType string
}

// collectBatchFiles finds EDI inputs and orders claims before remittances so
// 835 matching sees the batch's own 837 claims.
func collectBatchFiles(dir string) ([]batchFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var claims, remits []batchFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ft := inferFileType(name)
		if ft == "" {
			continue
		}
		bf := batchFile{path: filepath.Join(dir, name), fileType: ft}
		if ft == string(model.FileType835) {
			remits = append(remits, bf)
		} else {
			claims = append(claims, bf)
		}
	}
	return append(claims, remits...), nil
}

// inferFileType maps a file name to a transaction type, or "" to skip. The
// convention matches clearinghouse delivery names: an 835/837 token in the
// name or extension wins; .edi/.txt without a token defaults to 837P.
func inferFileType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".835") || strings.Contains(lower, "835"):
		return string(model.FileType835)
	case strings.Contains(lower, "837i"):
		return string(model.FileType837I)
	case strings.HasSuffix(lower, ".837") || strings.Contains(lower, "837"):
		return string(model.FileType837P)
	case strings.HasSuffix(lower, ".edi") || strings.HasSuffix(lower, ".txt"):
		return string(model.FileType837P)
	default:
		return ""
	}
}

func batchResult(bf batchFile, summary *model.LoadSummary, err error) report.FileResult {
	res := report.FileResult{
		FilePath: bf.path,
		FileType: bf.fileType,
	}
	if err != nil {
		res.Status = "failed"
		res.Error = err.Error()
		if summary == nil {
			return res
		}
	}

	res.Records = summary.RecordsParsed
	res.RecordErrors = summary.RecordErrors
	res.Warnings = summary.Warnings
	res.InvalidDates = summary.InvalidDates
	res.Unmatched = summary.Unmatched
	res.DurationMS = summary.DurationTotal.Milliseconds()
	if bf.fileType == string(model.FileType835) {
		res.Payments = summary.RecordsLoaded
	}
	if err == nil {
		res.Status = "loaded"
		if summary.Skipped {
			res.Status = "skipped"
		}
	}
	return res
}
