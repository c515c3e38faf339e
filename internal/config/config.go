// Package config provides configuration structures and loading for extscan.
package config

// Config represents the complete application configuration.
type Config struct {
	Scan     ScanConfig               `yaml:"scan" mapstructure:"scan"`
	Ignore   IgnoreConfig             `yaml:"ignore" mapstructure:"ignore"`
	Report   ReportConfig             `yaml:"report" mapstructure:"report"`
	Logging  LoggingConfig            `yaml:"logging" mapstructure:"logging"`
	Profiles map[string]ProfileConfig `yaml:"profiles" mapstructure:"profiles"`
}

// ScanConfig represents the scanner settings.
type ScanConfig struct {
	Roots            []string `yaml:"roots" mapstructure:"roots"`             // defaults to the current directory
	Extensions       []string `yaml:"extensions" mapstructure:"extensions"`   // without the leading dot
	Concurrency      int      `yaml:"concurrency" mapstructure:"concurrency"` // metadata fetches in flight; 0 = 4 x CPUs
	Workers          int      `yaml:"workers" mapstructure:"workers"`         // walker goroutines per root; 0 = CPUs
	FollowSymlinks   bool     `yaml:"follow_symlinks" mapstructure:"follow_symlinks"`
	ProgressInterval float64  `yaml:"progress_interval" mapstructure:"progress_interval"` // seconds; 0 disables
}

// IgnoreConfig selects the ignore-rule sources honored while walking.
type IgnoreConfig struct {
	Enabled    bool     `yaml:"enabled" mapstructure:"enabled"`
	GitIgnore  bool     `yaml:"git_ignore" mapstructure:"git_ignore"`
	DotIgnore  bool     `yaml:"dot_ignore" mapstructure:"dot_ignore"`
	GitExclude bool     `yaml:"git_exclude" mapstructure:"git_exclude"`
	GitGlobal  bool     `yaml:"git_global" mapstructure:"git_global"`
	Parents    bool     `yaml:"parents" mapstructure:"parents"`
	RequireGit bool     `yaml:"require_git" mapstructure:"require_git"`
	Patterns   []string `yaml:"patterns" mapstructure:"patterns"`
}

// ReportConfig represents output settings.
type ReportConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // table, json or plain
	Summary bool   `yaml:"summary" mapstructure:"summary"`
	Color   string `yaml:"color" mapstructure:"color"` // auto, always or never
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// ProfileConfig is a named scan preset. Unset fields fall back to the global
// scan section.
type ProfileConfig struct {
	Description    string   `yaml:"description" mapstructure:"description"`
	Roots          []string `yaml:"roots" mapstructure:"roots"`
	Extensions     []string `yaml:"extensions" mapstructure:"extensions"`
	Concurrency    int      `yaml:"concurrency" mapstructure:"concurrency"`
	Workers        int      `yaml:"workers" mapstructure:"workers"`
	FollowSymlinks *bool    `yaml:"follow_symlinks,omitempty" mapstructure:"follow_symlinks"`
	Exclude        []string `yaml:"exclude" mapstructure:"exclude"` // appended to ignore.patterns
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Roots:            []string{"."},
			Extensions:       []string{"rar"},
			Concurrency:      0,
			Workers:          0,
			FollowSymlinks:   false,
			ProgressInterval: 0,
		},
		Ignore: IgnoreConfig{
			Enabled:    true,
			GitIgnore:  true,
			DotIgnore:  true,
			GitExclude: true,
			GitGlobal:  true,
			Parents:    true,
			RequireGit: true,
		},
		Report: ReportConfig{
			Format:  "table",
			Summary: true,
			Color:   "auto",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}

// GetProfileScan returns the scan config for a profile by name, falling back to global if not set.
func (c *Config) GetProfileScan(name string) ScanConfig {
	profile, err := c.GetProfile(name)
	if err != nil {
		return c.Scan
	}
	return profile.GetProfileScan(c.Scan)
}

// GetProfileScan returns the scan config for a profile, falling back to global if not set.
func (p *ProfileConfig) GetProfileScan(global ScanConfig) ScanConfig {
	// Merge profile-specific with global defaults
	result := global
	if len(p.Roots) > 0 {
		result.Roots = append([]string(nil), p.Roots...)
	}
	if len(p.Extensions) > 0 {
		result.Extensions = append([]string(nil), p.Extensions...)
	}
	if p.Concurrency > 0 {
		result.Concurrency = p.Concurrency
	}
	if p.Workers > 0 {
		result.Workers = p.Workers
	}
	if p.FollowSymlinks != nil {
		result.FollowSymlinks = *p.FollowSymlinks
	}
	return result
}

// GetProfileIgnore returns the ignore config for a profile, with the profile's
// exclude patterns appended to the global ones.
func (p *ProfileConfig) GetProfileIgnore(global IgnoreConfig) IgnoreConfig {
	result := global
	if len(p.Exclude) > 0 {
		result.Patterns = append(append([]string(nil), global.Patterns...), p.Exclude...)
	}
	return result
}
