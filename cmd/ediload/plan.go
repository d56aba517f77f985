package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marbhealth/edipipe/internal/exitcode"
	"github.com/marbhealth/edipipe/internal/logging"
	"github.com/marbhealth/edipipe/internal/model"
	"github.com/marbhealth/edipipe/internal/parse"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run parse and stats (no writes)",
	RunE:  runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to EDI file (required)")
	f.StringVar(&cfg.FileType, "type", "", "File type: 837P, 837I or 835 (required)")
	_ = planCmd.MarkFlagRequired("file")
	_ = planCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := applyGlobalFlags(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	env, err := parse.File(cfg.FilePath, model.FileType(cfg.FileType), cfg.Matching)
	if err != nil {
		log.Error().Err(err).Msg("parse failed")
		os.Exit(exitcode.ValidationError)
	}

	fmt.Println("=== ediload plan ===")
	fmt.Printf("File:        %s\n", cfg.FilePath)
	fmt.Printf("Type:        %s\n", env.FileType)
	fmt.Printf("SHA-256:     %s\n", env.FileHash)
	fmt.Printf("Delimiters:  segment=%q element=%q component=%q\n",
		env.Metadata.SegmentDelimiter, env.Metadata.ElementDelimiter, env.Metadata.ComponentDelimiter)
	if env.Metadata.SenderID != "" {
		fmt.Printf("Sender:      %s\n", env.Metadata.SenderID)
	}
	if env.Metadata.ReceiverID != "" {
		fmt.Printf("Receiver:    %s\n", env.Metadata.ReceiverID)
	}
	fmt.Printf("Records:     %d\n", env.RecordCount)
	fmt.Printf("Errors:      %d record errors, %d invalid dates\n",
		env.Summary.RecordErrors, env.Summary.InvalidDates)
	fmt.Printf("Warnings:    %d\n", env.Summary.WarningCount())
	if n := env.Summary.UnknownCodeCount(); n > 0 {
		fmt.Printf("Unknown codes (%d distinct):\n", n)
		printCodes("  dtp qualifiers", env.Summary.UnknownDateQualifiers)
		printCodes("  ref qualifiers", env.Summary.UnknownReferenceQualifiers)
		printCodes("  diagnosis quals", env.Summary.UnknownDiagnosisQualifiers)
		printCodes("  adjustment groups", env.Summary.UnknownAdjustmentGroups)
		printCodes("  carc codes", env.Summary.UnknownCARCCodes)
		printCodes("  clp status codes", env.Summary.UnknownClaimStatusCodes)
	}
	fmt.Println("Parse: OK")
	return nil
}

func printCodes(label string, codes []string) {
	if len(codes) == 0 {
		return
	}
	fmt.Printf("%-20s %v\n", label+":", codes)
}
