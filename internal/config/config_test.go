package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []string{"."}, cfg.Scan.Roots)
	assert.Equal(t, []string{"rar"}, cfg.Scan.Extensions)
	assert.Equal(t, 0, cfg.Scan.Concurrency)
	assert.False(t, cfg.Scan.FollowSymlinks)
	assert.True(t, cfg.Ignore.Enabled)
	assert.True(t, cfg.Ignore.GitIgnore)
	assert.True(t, cfg.Ignore.GitGlobal)
	assert.True(t, cfg.Ignore.Parents)
	assert.True(t, cfg.Ignore.RequireGit)
	assert.Equal(t, "table", cfg.Report.Format)
	assert.True(t, cfg.Report.Summary)
	assert.Equal(t, "stderr", cfg.Logging.Output)

	assert.NoError(t, cfg.Validate())
}

func TestProfileConfig_GetProfileScan(t *testing.T) {
	global := ScanConfig{
		Roots:       []string{"."},
		Extensions:  []string{"rar"},
		Concurrency: 8,
		Workers:     2,
	}
	follow := true

	tests := []struct {
		name    string
		profile ProfileConfig
		want    ScanConfig
	}{
		{
			name:    "empty profile inherits everything",
			profile: ProfileConfig{},
			want:    global,
		},
		{
			name: "profile overrides roots and extensions",
			profile: ProfileConfig{
				Roots:      []string{"/mnt/a", "/mnt/b"},
				Extensions: []string{"zip"},
			},
			want: ScanConfig{
				Roots:       []string{"/mnt/a", "/mnt/b"},
				Extensions:  []string{"zip"},
				Concurrency: 8,
				Workers:     2,
			},
		},
		{
			name: "profile overrides numbers and symlink policy",
			profile: ProfileConfig{
				Concurrency:    32,
				Workers:        6,
				FollowSymlinks: &follow,
			},
			want: ScanConfig{
				Roots:          []string{"."},
				Extensions:     []string{"rar"},
				Concurrency:    32,
				Workers:        6,
				FollowSymlinks: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.profile.GetProfileScan(global)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_GetProfileScan_UnknownFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scan.Concurrency = 3

	got := cfg.GetProfileScan("missing")
	assert.Equal(t, cfg.Scan, got)
}

func TestProfileConfig_GetProfileIgnore(t *testing.T) {
	global := IgnoreConfig{Enabled: true, Patterns: []string{"tmp/"}}

	p := ProfileConfig{Exclude: []string{"*.part1.rar"}}
	got := p.GetProfileIgnore(global)

	assert.Equal(t, []string{"tmp/", "*.part1.rar"}, got.Patterns)
	assert.Equal(t, []string{"tmp/"}, global.Patterns, "global patterns must not be modified")

	assert.Equal(t, global, (&ProfileConfig{}).GetProfileIgnore(global))
}
