package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/exitcode"
)

var (
	cfg        = config.Defaults()
	configPath string
	orgIDFlag  int64
)

var rootCmd = &cobra.Command{
	Use:   "ediload",
	Short: "X12 EDI claim/remittance → Postgres loader",
	Long:  "Parses 837P/837I claim and 835 remittance files into a canonical Postgres schema with idempotent, audit-logged loads.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&configPath, "config", "", "Optional YAML config file (matching and quality gate settings)")
	pf.Int64Var(&orgIDFlag, "org-id", 0, "Tenant org id (0 means none)")
}

// applyGlobalFlags folds config-file and org-id settings into cfg. Called by
// each subcommand after flag parsing.
func applyGlobalFlags() error {
	if orgIDFlag != 0 {
		cfg.OrgID = &orgIDFlag
	}
	if configPath != "" {
		return cfg.LoadFromFile(configPath)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
