package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
scan:
  roots:
    - /data/archives
    - /mnt/backup
  extensions: [rar, zip]
  concurrency: 16
  workers: 4
  follow_symlinks: true
  progress_interval: 2.5

ignore:
  git_global: false
  require_git: false
  patterns:
    - "*.tmp"

report:
  format: json
  summary: false

profiles:
  nightly:
    description: Nightly backup volume
    roots: [/mnt/nightly]
    exclude: ["old/"]

logging:
  level: debug
  format: text
  output: stdout
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"/data/archives", "/mnt/backup"}, cfg.Scan.Roots)
	assert.Equal(t, []string{"rar", "zip"}, cfg.Scan.Extensions)
	assert.Equal(t, 16, cfg.Scan.Concurrency)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.True(t, cfg.Scan.FollowSymlinks)
	assert.Equal(t, 2.5, cfg.Scan.ProgressInterval)

	// untouched ignore keys keep their defaults
	assert.True(t, cfg.Ignore.Enabled)
	assert.True(t, cfg.Ignore.GitIgnore)
	assert.False(t, cfg.Ignore.GitGlobal)
	assert.True(t, cfg.Ignore.Parents)
	assert.False(t, cfg.Ignore.RequireGit)
	assert.Equal(t, []string{"*.tmp"}, cfg.Ignore.Patterns)

	assert.Equal(t, "json", cfg.Report.Format)
	assert.False(t, cfg.Report.Summary)

	require.Contains(t, cfg.Profiles, "nightly")
	assert.Equal(t, []string{"/mnt/nightly"}, cfg.Profiles["nightly"].Roots)
	assert.Equal(t, []string{"old/"}, cfg.Profiles["nightly"].Exclude)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Logging.Output)

	assert.NoError(t, cfg.Validate())
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("TEST_ARCHIVE_ROOT", "/srv/env-root")
	t.Setenv("TEST_LOG_DIR", "/var/log/extscan")

	configPath := filepath.Join(t.TempDir(), "test-env.yaml")
	configContent := `
scan:
  roots: ["${TEST_ARCHIVE_ROOT}", "$TEST_ARCHIVE_ROOT/sub", "${UNSET_VAR_FOR_TEST}"]
logging:
  output: ${TEST_LOG_DIR}/scan.log
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"/srv/env-root", "/srv/env-root/sub", "${UNSET_VAR_FOR_TEST}"}, cfg.Scan.Roots)
	assert.Equal(t, "/var/log/extscan/scan.log", cfg.Logging.Output)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("EXTSCAN_SCAN_CONCURRENCY", "7")
	t.Setenv("EXTSCAN_LOGGING_LEVEL", "error")

	configPath := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("scan:\n  workers: 2\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Scan.Concurrency)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("scan: [unclosed"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "x.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("scan:\n  extensions: [7z]\n"), 0644))

		cfg, err := LoadOrDefault(configPath)
		require.NoError(t, err)
		assert.Equal(t, []string{"7z"}, cfg.Scan.Extensions)
	})

	t.Run("explicit missing path fails", func(t *testing.T) {
		_, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("default file in working directory", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		require.NoError(t, os.WriteFile(DefaultConfigFile, []byte("scan:\n  workers: 9\n"), 0644))

		cfg, err := LoadOrDefault("")
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.Scan.Workers)
	})

	t.Run("no file yields defaults", func(t *testing.T) {
		chdir(t, t.TempDir())

		cfg, err := LoadOrDefault("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("EXTSCAN_TEST_HOME", "/home/archiver")

	tests := []struct {
		input string
		want  string
	}{
		{"${EXTSCAN_TEST_HOME}/downloads", "/home/archiver/downloads"},
		{"$EXTSCAN_TEST_HOME", "/home/archiver"},
		{"plain/path", "plain/path"},
		{"${NOT_SET_ANYWHERE_42}", "${NOT_SET_ANYWHERE_42}"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, expandEnvVar(tt.input), tt.input)
	}
}

func TestListProfiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles = map[string]ProfileConfig{
		"nightly": {},
		"media":   {},
	}

	names := cfg.ListProfiles()
	sort.Strings(names)
	assert.Equal(t, []string{"media", "nightly"}, names)

	_, err := cfg.GetProfile("weekly")
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()

	cfg.ApplyOverrides("", "")
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	cfg.ApplyOverrides("debug", "json")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestResolve(t *testing.T) {
	follow := true
	cfg := DefaultConfig()
	cfg.Ignore.Patterns = []string{"cache/"}
	cfg.Profiles = map[string]ProfileConfig{
		"media": {
			Roots:          []string{"/media"},
			Concurrency:    12,
			FollowSymlinks: &follow,
			Exclude:        []string{"thumbs/"},
		},
	}

	t.Run("globals only", func(t *testing.T) {
		eff, err := cfg.Resolve("", ScanOverrides{})
		require.NoError(t, err)
		assert.Equal(t, cfg.Scan, eff.Scan)
		assert.Equal(t, cfg.Ignore, eff.Ignore)
		assert.Equal(t, cfg.Report, eff.Report)
	})

	t.Run("profile", func(t *testing.T) {
		eff, err := cfg.Resolve("media", ScanOverrides{})
		require.NoError(t, err)
		assert.Equal(t, "media", eff.Profile)
		assert.Equal(t, []string{"/media"}, eff.Scan.Roots)
		assert.Equal(t, 12, eff.Scan.Concurrency)
		assert.True(t, eff.Scan.FollowSymlinks)
		assert.Equal(t, []string{"cache/", "thumbs/"}, eff.Ignore.Patterns)
	})

	t.Run("flags beat profile", func(t *testing.T) {
		eff, err := cfg.Resolve("media", ScanOverrides{
			Roots:       []string{"/tmp/x"},
			Extensions:  []string{"zip"},
			Concurrency: 2,
			Workers:     3,
			NoIgnore:    true,
			Exclude:     []string{"*.bak"},
			Format:      "plain",
			NoSummary:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"/tmp/x"}, eff.Scan.Roots)
		assert.Equal(t, []string{"zip"}, eff.Scan.Extensions)
		assert.Equal(t, 2, eff.Scan.Concurrency)
		assert.Equal(t, 3, eff.Scan.Workers)
		assert.False(t, eff.Ignore.Enabled)
		assert.Equal(t, []string{"cache/", "thumbs/", "*.bak"}, eff.Ignore.Patterns)
		assert.Equal(t, "plain", eff.Report.Format)
		assert.False(t, eff.Report.Summary)
	})

	t.Run("negative flags are kept", func(t *testing.T) {
		eff, err := cfg.Resolve("media", ScanOverrides{Concurrency: -5, Workers: -1})
		require.NoError(t, err)
		assert.Equal(t, -5, eff.Scan.Concurrency)
		assert.Equal(t, -1, eff.Scan.Workers)
		assert.Error(t, ValidateEffective(eff))
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := cfg.Resolve("nope", ScanOverrides{})
		assert.Error(t, err)
	})
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
