package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/extscan/internal/config"
	"github.com/dbsmedya/extscan/internal/logger"
	"github.com/dbsmedya/extscan/internal/scanner"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and check scan roots",
	Long: `Validate checks the configuration file and every profile in it, then
verifies that the configured roots can be scanned.

Checks performed:
  - Configuration syntax and field values
  - Extensions, concurrency and output settings of every profile
  - Root existence, type and readability

Example:
  extscan validate --config extscan.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.Info("Starting validation checks...")

	cmd.Printf("\n=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n", configName())
	cmd.Printf("Profiles found: %d\n\n", len(cfg.Profiles))

	// the global section is validated like an unnamed profile
	names := append([]string{""}, cfg.ListProfiles()...)
	sort.Strings(names[1:])

	hasErrors := false
	for _, name := range names {
		label := name
		if label == "" {
			label = "(global)"
		}
		cmd.Printf("--- Profile: %s ---\n", label)

		eff, err := cfg.Resolve(name, config.ScanOverrides{})
		if err != nil {
			cmd.Printf("❌ %v\n\n", err)
			hasErrors = true
			continue
		}
		if err := config.ValidateEffective(eff); err != nil {
			cmd.Printf("❌ %v\n\n", err)
			hasErrors = true
			continue
		}

		opts := scanOptions(eff)
		failed := 0
		for _, check := range scanner.Preflight(opts.Roots) {
			if !check.OK() {
				cmd.Printf("❌ %v\n", check.Err)
				failed++
			}
		}
		if failed == len(opts.Roots) {
			cmd.Printf("❌ No root can be scanned\n\n")
			hasErrors = true
			continue
		}
		if failed > 0 {
			cmd.Printf("⚠️  %d of %d root(s) will be skipped\n\n", failed, len(opts.Roots))
			continue
		}

		cmd.Printf("✅ All checks passed\n\n")
	}

	if hasErrors {
		return fmt.Errorf("validation failed for one or more profiles")
	}

	cmd.Println("=== Validation Complete ===")
	cmd.Println("✅ All profiles validated successfully")
	return nil
}
