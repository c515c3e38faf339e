// Package report sorts and renders scan results for people and for other tools.
package report

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gookit/color"

	"github.com/dbsmedya/extscan/internal/scanner"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatPlain = "plain"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// TimeLayout is how modification times are printed, in local time.
const TimeLayout = "2006-01-02 15:04:05"

// Placeholder stands in for a missing value.
const Placeholder = "-"

// Options configures a Reporter.
type Options struct {
	Format   string
	Color    string
	Location *time.Location // nil means time.Local
}

// Reporter renders results in one format.
type Reporter struct {
	format   string
	colorize bool
	loc      *time.Location
}

// New validates opts and returns a Reporter.
func New(opts Options) (*Reporter, error) {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = FormatTable
	}
	switch format {
	case FormatTable, FormatJSON, FormatPlain:
	default:
		return nil, fmt.Errorf("unknown format %q (want %s, %s or %s)", opts.Format, FormatTable, FormatJSON, FormatPlain)
	}

	var colorize bool
	switch strings.ToLower(opts.Color) {
	case ColorAuto, "":
		colorize = color.SupportColor()
	case ColorAlways:
		colorize = true
	case ColorNever:
		colorize = false
	default:
		return nil, fmt.Errorf("unknown color mode %q (want %s, %s or %s)", opts.Color, ColorAuto, ColorAlways, ColorNever)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return &Reporter{format: format, colorize: colorize, loc: loc}, nil
}

// Format returns the output format.
func (r *Reporter) Format() string {
	return r.format
}

// Render writes the files of result, sorted by path.
func (r *Reporter) Render(w io.Writer, result *scanner.Result) error {
	files := Sort(result.Files)

	switch r.format {
	case FormatJSON:
		return writeJSON(w, files)
	case FormatPlain:
		return writePlain(w, files)
	default:
		return r.writeTable(w, files)
	}
}

// Sort returns a copy of files ordered by path, ascending. Equal paths keep
// their relative order.
func Sort(files []scanner.DiscoveredFile) []scanner.DiscoveredFile {
	sorted := slices.Clone(files)
	slices.SortStableFunc(sorted, func(a, b scanner.DiscoveredFile) int {
		return strings.Compare(a.Path, b.Path)
	})
	return sorted
}

// FormatModified renders a modification time in loc, or the placeholder when absent.
func FormatModified(f scanner.DiscoveredFile, loc *time.Location) string {
	if !f.HasModified() {
		return Placeholder
	}
	return f.Modified.In(loc).Format(TimeLayout)
}

func (r *Reporter) paint(style color.Style, s string) string {
	if !r.colorize {
		return s
	}
	return fmt.Sprintf(color.FullColorTpl, style.String(), s)
}
