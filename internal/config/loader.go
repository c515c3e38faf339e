package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigFile is looked up in the working directory when no --config is given.
const DefaultConfigFile = "extscan.yaml"

// EnvPrefix prefixes environment overrides, e.g. EXTSCAN_SCAN_CONCURRENCY=8.
const EnvPrefix = "EXTSCAN"

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadOrDefault loads configPath when it is set. With an empty path it loads
// DefaultConfigFile if that file exists, and otherwise returns the defaults
// (still subject to environment overrides).
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath != "" {
		return Load(configPath)
	}

	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return Load(DefaultConfigFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", DefaultConfigFile, err)
	}

	return LoadFromViper(newViper())
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	return cfg, nil
}

// newViper returns a Viper instance that knows every scalar key, so EXTSCAN_*
// environment variables are picked up by Unmarshal even without a config file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("scan.roots", d.Scan.Roots)
	v.SetDefault("scan.extensions", d.Scan.Extensions)
	v.SetDefault("scan.concurrency", d.Scan.Concurrency)
	v.SetDefault("scan.workers", d.Scan.Workers)
	v.SetDefault("scan.follow_symlinks", d.Scan.FollowSymlinks)
	v.SetDefault("scan.progress_interval", d.Scan.ProgressInterval)
	v.SetDefault("ignore.enabled", d.Ignore.Enabled)
	v.SetDefault("ignore.git_ignore", d.Ignore.GitIgnore)
	v.SetDefault("ignore.dot_ignore", d.Ignore.DotIgnore)
	v.SetDefault("ignore.git_exclude", d.Ignore.GitExclude)
	v.SetDefault("ignore.git_global", d.Ignore.GitGlobal)
	v.SetDefault("ignore.parents", d.Ignore.Parents)
	v.SetDefault("ignore.require_git", d.Ignore.RequireGit)
	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("report.summary", d.Report.Summary)
	v.SetDefault("report.color", d.Report.Color)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	return v
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	for i, root := range cfg.Scan.Roots {
		cfg.Scan.Roots[i] = expandEnvVar(root)
	}
	for i, p := range cfg.Ignore.Patterns {
		cfg.Ignore.Patterns[i] = expandEnvVar(p)
	}

	for name, profile := range cfg.Profiles {
		for i, root := range profile.Roots {
			profile.Roots[i] = expandEnvVar(root)
		}
		cfg.Profiles[name] = profile
	}

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// GetProfile retrieves a specific profile by name.
func (c *Config) GetProfile(name string) (*ProfileConfig, error) {
	profile, exists := c.Profiles[name]
	if !exists {
		return nil, fmt.Errorf("profile %q not found in configuration", name)
	}
	return &profile, nil
}

// ListProfiles returns all profile names defined in the configuration.
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	return profiles
}

// ApplyOverrides applies CLI flag overrides to the global logging configuration.
// Only non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
}

// ScanOverrides carries scan flags given on the command line.
type ScanOverrides struct {
	Roots          []string
	Extensions     []string
	Concurrency    int
	Workers        int
	FollowSymlinks bool
	NoIgnore       bool
	Exclude        []string
	Format         string
	NoSummary      bool
}

// Effective is the resolved configuration for one scan run.
type Effective struct {
	Profile string
	Scan    ScanConfig
	Ignore  IgnoreConfig
	Report  ReportConfig
}

// Resolve combines the global settings, the named profile (if any) and CLI
// overrides, in that order of increasing precedence.
func (c *Config) Resolve(profileName string, o ScanOverrides) (*Effective, error) {
	eff := &Effective{
		Profile: profileName,
		Scan:    c.Scan,
		Ignore:  c.Ignore,
		Report:  c.Report,
	}

	if profileName != "" {
		profile, err := c.GetProfile(profileName)
		if err != nil {
			return nil, err
		}
		eff.Scan = profile.GetProfileScan(c.Scan)
		eff.Ignore = profile.GetProfileIgnore(c.Ignore)
	}

	if len(o.Roots) > 0 {
		eff.Scan.Roots = o.Roots
	}
	if len(o.Extensions) > 0 {
		eff.Scan.Extensions = o.Extensions
	}
	// zero means the flag was not given; negatives are left for validation to reject
	if o.Concurrency != 0 {
		eff.Scan.Concurrency = o.Concurrency
	}
	if o.Workers != 0 {
		eff.Scan.Workers = o.Workers
	}
	if o.FollowSymlinks {
		eff.Scan.FollowSymlinks = true
	}
	if o.NoIgnore {
		eff.Ignore.Enabled = false
	}
	if len(o.Exclude) > 0 {
		eff.Ignore.Patterns = append(append([]string(nil), eff.Ignore.Patterns...), o.Exclude...)
	}
	if o.Format != "" {
		eff.Report.Format = o.Format
	}
	if o.NoSummary {
		eff.Report.Summary = false
	}

	return eff, nil
}
