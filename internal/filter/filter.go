// Package filter decides which discovered files qualify for a scan.
package filter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ExtensionFilter matches file names against a set of extensions, ignoring case.
// A name qualifies only when its final extension is one of the configured ones, so
// "x.rar" matches "rar" while "x.rar.bak" does not. A name made only of an extension
// (".rar") has no stem and never matches.
type ExtensionFilter struct {
	exts []string
}

// NewExtensionFilter builds a filter for the given extensions. Leading dots are
// optional ("rar" and ".rar" are equivalent).
func NewExtensionFilter(exts ...string) (*ExtensionFilter, error) {
	normalized, err := Normalize(exts)
	if err != nil {
		return nil, err
	}
	return &ExtensionFilter{exts: normalized}, nil
}

// Normalize strips leading dots, lower-cases and de-duplicates extensions while
// keeping their order.
func Normalize(exts []string) ([]string, error) {
	if len(exts) == 0 {
		return nil, fmt.Errorf("at least one extension is required")
	}

	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		n := strings.ToLower(strings.TrimLeft(strings.TrimSpace(e), "."))
		if n == "" {
			return nil, fmt.Errorf("invalid extension %q", e)
		}
		if strings.ContainsAny(n, `/\`) {
			return nil, fmt.Errorf("extension %q must not contain a path separator", e)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

// Match reports whether name (a base name or a full path) carries one of the
// filter's extensions.
func (f *ExtensionFilter) Match(name string) bool {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if len(ext) <= 1 || len(ext) == len(base) {
		return false
	}
	ext = ext[1:]
	for _, want := range f.exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// Extensions returns the normalized extensions.
func (f *ExtensionFilter) Extensions() []string {
	out := make([]string, len(f.exts))
	copy(out, f.exts)
	return out
}

// String renders the filter as a glob list, e.g. "*.rar, *.zip".
func (f *ExtensionFilter) String() string {
	globs := make([]string, len(f.exts))
	for i, e := range f.exts {
		globs[i] = "*." + e
	}
	return strings.Join(globs, ", ")
}
