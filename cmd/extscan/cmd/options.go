package cmd

import (
	"time"

	"github.com/dbsmedya/extscan/internal/config"
	"github.com/dbsmedya/extscan/internal/ignore"
	"github.com/dbsmedya/extscan/internal/scanner"
)

// scanOptions turns a resolved configuration into normalized scanner options.
func scanOptions(eff *config.Effective) scanner.Options {
	return scanner.Options{
		Roots:          eff.Scan.Roots,
		Extensions:     eff.Scan.Extensions,
		Concurrency:    eff.Scan.Concurrency,
		Workers:        eff.Scan.Workers,
		FollowSymlinks: eff.Scan.FollowSymlinks,
		Ignore: ignore.Options{
			Enabled:    eff.Ignore.Enabled,
			GitIgnore:  eff.Ignore.GitIgnore,
			DotIgnore:  eff.Ignore.DotIgnore,
			GitExclude: eff.Ignore.GitExclude,
			GitGlobal:  eff.Ignore.GitGlobal,
			Parents:    eff.Ignore.Parents,
			RequireGit: eff.Ignore.RequireGit,
			Patterns:   eff.Ignore.Patterns,
		},
		ProgressInterval: time.Duration(eff.Scan.ProgressInterval * float64(time.Second)),
	}.Normalize()
}

// resolve loads the configuration and applies the profile and scan flags.
func resolve(profile string, o config.ScanOverrides) (*config.Config, *config.Effective, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	eff, err := cfg.Resolve(profile, o)
	if err != nil {
		return nil, nil, err
	}
	if err := config.ValidateEffective(eff); err != nil {
		return nil, nil, err
	}
	return cfg, eff, nil
}
