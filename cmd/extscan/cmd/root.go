package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/extscan/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags shared by every command
var (
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "extscan",
	Short: "Concurrent file finder by extension",
	Long: `A fast CLI tool that walks one or more directory trees in parallel and
lists every file with a given extension (rar by default) together with its
size and modification time.

Features:
  - One pool of walker goroutines per root, all roots scanned concurrently
  - Bounded number of concurrent metadata reads
  - Honors .gitignore, .ignore, .git/info/exclude and global git excludes
  - Optional symlink following with cycle detection
  - Table, JSON and plain output`,
	Version:      Version,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("Path to configuration file (default %s if present)", config.DefaultConfigFile))

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// configName is how the active configuration is referred to in output.
func configName() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(config.DefaultConfigFile); err == nil {
		return config.DefaultConfigFile
	}
	return "built-in defaults"
}

// loadConfig reads and validates the configuration, with logging flags applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(logLevel, logFormat)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
