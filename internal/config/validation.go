package config

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/extscan/internal/filter"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	// Validate global scan settings
	if err := validateScan("scan", &c.Scan); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateIgnore(); err != nil {
		errors = append(errors, err...)
	}

	for name, profile := range c.Profiles {
		if err := c.validateProfile(name, &profile); err != nil {
			errors = append(errors, err...)
		}
	}

	if err := ValidateReport(&c.Report); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateEffective checks a resolved configuration before it is handed to the scanner.
func ValidateEffective(eff *Effective) error {
	var errors ValidationErrors

	if err := validateScan("scan", &eff.Scan); err != nil {
		errors = append(errors, err...)
	}
	if err := ValidateReport(&eff.Report); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func validateScan(prefix string, s *ScanConfig) ValidationErrors {
	var errors ValidationErrors

	for i, root := range s.Roots {
		if strings.TrimSpace(root) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s.roots[%d]", prefix, i),
				Message: "root path cannot be empty",
			})
		}
	}

	if _, err := filter.Normalize(s.Extensions); err != nil {
		errors = append(errors, ValidationError{
			Field:   prefix + ".extensions",
			Message: err.Error(),
		})
	}

	if s.Concurrency < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".concurrency",
			Message: "concurrency cannot be negative",
		})
	}

	if s.Workers < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".workers",
			Message: "workers cannot be negative",
		})
	}

	if s.ProgressInterval < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".progress_interval",
			Message: "progress_interval cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateIgnore() ValidationErrors {
	var errors ValidationErrors

	for i, p := range c.Ignore.Patterns {
		if strings.TrimSpace(p) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("ignore.patterns[%d]", i),
				Message: "pattern cannot be empty",
			})
		}
	}

	return errors
}

func (c *Config) validateProfile(name string, p *ProfileConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("profiles.%s", name)

	for i, root := range p.Roots {
		if strings.TrimSpace(root) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s.roots[%d]", prefix, i),
				Message: "root path cannot be empty",
			})
		}
	}

	if len(p.Extensions) > 0 {
		if _, err := filter.Normalize(p.Extensions); err != nil {
			errors = append(errors, ValidationError{
				Field:   prefix + ".extensions",
				Message: err.Error(),
			})
		}
	}

	if p.Concurrency < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".concurrency",
			Message: "concurrency cannot be negative",
		})
	}

	if p.Workers < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".workers",
			Message: "workers cannot be negative",
		})
	}

	return errors
}

// ValidateReport checks report settings.
func ValidateReport(r *ReportConfig) ValidationErrors {
	var errors ValidationErrors

	validFormats := map[string]bool{"table": true, "json": true, "plain": true, "": true}
	if !validFormats[r.Format] {
		errors = append(errors, ValidationError{
			Field:   "report.format",
			Message: "format must be 'table', 'json', or 'plain'",
		})
	}

	validColors := map[string]bool{"auto": true, "always": true, "never": true, "": true}
	if !validColors[r.Color] {
		errors = append(errors, ValidationError{
			Field:   "report.color",
			Message: "color must be 'auto', 'always', or 'never'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
