package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/extscan/internal/config"
	"github.com/dbsmedya/extscan/internal/logger"
	"github.com/dbsmedya/extscan/internal/report"
	"github.com/dbsmedya/extscan/internal/scanner"
)

// Scan flags
var (
	scanProfile     string
	scanExtensions  []string
	scanConcurrency int
	scanWorkers     int
	scanFollow      bool
	scanNoIgnore    bool
	scanExclude     []string
	scanFormat      string
	scanNoSummary   bool
)

// errAllRootsFailed is returned when not a single root could be opened.
var errAllRootsFailed = errors.New("no root could be scanned")

var scanCmd = &cobra.Command{
	Use:   "scan [PATH...]",
	Short: "Find files by extension under one or more directories",
	Long: `Scan walks every PATH (the current directory when none is given) and lists
the files whose extension matches, sorted by path.

Matching is case-insensitive and looks at the last extension only, so
"ARCHIVE.RAR" matches rar while "backup.rar.bak" does not.

Example:
  extscan scan /srv/media /home
  extscan scan -e rar -e zip --follow-symlinks --format json .
  extscan scan --profile media`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanProfile, "profile", "p", "",
		"Profile name from configuration file")
	scanCmd.Flags().StringSliceVarP(&scanExtensions, "ext", "e", nil,
		"Extension to match, repeatable (default rar)")
	scanCmd.Flags().IntVarP(&scanConcurrency, "concurrency", "c", 0,
		"Maximum concurrent metadata reads (default 4 x CPUs)")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0,
		"Walker goroutines per root (default CPUs)")
	scanCmd.Flags().BoolVar(&scanFollow, "follow-symlinks", false,
		"Follow symbolic links")
	scanCmd.Flags().BoolVar(&scanNoIgnore, "no-ignore", false,
		"Do not honor ignore files")
	scanCmd.Flags().StringArrayVar(&scanExclude, "exclude", nil,
		"Additional gitignore-style pattern to exclude, repeatable")
	scanCmd.Flags().StringVar(&scanFormat, "format", "",
		"Output format (table, json, plain)")
	scanCmd.Flags().BoolVar(&scanNoSummary, "no-summary", false,
		"Do not print the summary")

	rootCmd.AddCommand(scanCmd)
}

func scanOverrides(args []string) config.ScanOverrides {
	return config.ScanOverrides{
		Roots:          args,
		Extensions:     scanExtensions,
		Concurrency:    scanConcurrency,
		Workers:        scanWorkers,
		FollowSymlinks: scanFollow,
		NoIgnore:       scanNoIgnore,
		Exclude:        scanExclude,
		Format:         scanFormat,
		NoSummary:      scanNoSummary,
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, eff, err := resolve(scanProfile, scanOverrides(args))
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	rep, err := report.New(report.Options{
		Format: eff.Report.Format,
		Color:  eff.Report.Color,
	})
	if err != nil {
		return err
	}

	s, err := scanner.New(scanOptions(eff), log)
	if err != nil {
		return err
	}

	ctx, stop := setupSignalHandler(cmd.Context(), func(sig os.Signal) {
		log.Warnw("Received signal, stopping scan", "signal", sig.String())
	})
	defer stop()

	result, scanErr := s.Scan(ctx)
	if result == nil {
		return scanErr
	}

	if err := rep.Render(cmd.OutOrStdout(), result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if eff.Report.Summary {
		// keep machine-readable output clean
		out := cmd.OutOrStdout()
		if rep.Format() == report.FormatJSON {
			out = cmd.ErrOrStderr()
		}
		if err := rep.RenderSummary(out, result); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if scanErr != nil {
		if errors.Is(scanErr, context.Canceled) {
			return fmt.Errorf("scan interrupted: %w", scanErr)
		}
		return scanErr
	}
	if result.AllRootsFailed() {
		return errAllRootsFailed
	}
	return nil
}
