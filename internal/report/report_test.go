package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/extscan/internal/scanner"
)

// ============================================================================
// Test Helpers
// ============================================================================

var modTime = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func testResult(files ...scanner.DiscoveredFile) *scanner.Result {
	roots := orderedmap.NewOrderedMap[string, *scanner.RootStats]()
	roots.Set("/data", &scanner.RootStats{Root: "/data", Files: int64(len(files))})
	return &scanner.Result{Files: files, Roots: roots, Duration: 1500 * time.Millisecond}
}

func newReporter(t *testing.T, format string) *Reporter {
	t.Helper()
	r, err := New(Options{Format: format, Color: ColorNever, Location: time.UTC})
	require.NoError(t, err)
	return r
}

// ============================================================================
// Tests
// ============================================================================

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{name: "default is table", opts: Options{Color: ColorNever}, want: FormatTable},
		{name: "json upper case", opts: Options{Format: "JSON", Color: ColorNever}, want: FormatJSON},
		{name: "plain", opts: Options{Format: "plain"}, want: FormatPlain},
		{name: "unknown format", opts: Options{Format: "xml"}, wantErr: true},
		{name: "unknown color", opts: Options{Color: "sometimes"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Format())
		})
	}
}

func TestSort_ByPathStable(t *testing.T) {
	files := []scanner.DiscoveredFile{
		{Path: "/b/z.rar", Size: 1},
		{Path: "/a/x.rar", Size: 2},
		{Path: "/b/z.rar", Size: 3},
		{Path: "/a/B.rar", Size: 4},
	}

	sorted := Sort(files)

	var got []int64
	for _, f := range sorted {
		got = append(got, f.Size)
	}
	assert.Equal(t, []int64{4, 2, 1, 3}, got)
	assert.Equal(t, "/b/z.rar", files[0].Path, "input must not be reordered")
}

func TestFormatModified(t *testing.T) {
	assert.Equal(t, "2024-03-05 14:07:09", FormatModified(scanner.DiscoveredFile{Modified: modTime}, time.UTC))
	assert.Equal(t, Placeholder, FormatModified(scanner.DiscoveredFile{}, time.UTC))
}

func TestRender_Table(t *testing.T) {
	result := testResult(
		scanner.DiscoveredFile{Path: "B/z.RAR", Size: 20, Modified: modTime},
		scanner.DiscoveredFile{Path: "A/x.rar", Size: 10},
	)

	var buf bytes.Buffer
	require.NoError(t, newReporter(t, FormatTable).Render(&buf, result))

	want := strings.Join([]string{
		"┌─────────┬──────┬─────────────────────┐",
		"│ File    │ Size │ Modified            │",
		"╞═════════╪══════╪═════════════════════╡",
		"│ A/x.rar │ 10 B │ -                   │",
		"│ B/z.RAR │ 20 B │ 2024-03-05 14:07:09 │",
		"└─────────┴──────┴─────────────────────┘",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestRender_TableBinaryUnitsAndWideNames(t *testing.T) {
	result := testResult(
		scanner.DiscoveredFile{Path: "档案.rar", Size: 1536, Modified: modTime},
	)

	var buf bytes.Buffer
	require.NoError(t, newReporter(t, FormatTable).Render(&buf, result))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[3], "1.5 KiB")
	// wide runes occupy two columns, so every line has the same display width
	assert.Equal(t, len([]rune(lines[0])), len([]rune(lines[1])))
	assert.Equal(t, len([]rune(lines[1])), len([]rune(lines[3]))+2)
}

func TestRender_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newReporter(t, FormatTable).Render(&buf, testResult()))

	assert.Contains(t, buf.String(), "│ File │ Size │ Modified │")
	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
}

func TestRender_TableColoredHeader(t *testing.T) {
	r, err := New(Options{Color: ColorAlways, Location: time.UTC})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, testResult()))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestRender_JSON(t *testing.T) {
	result := testResult(
		scanner.DiscoveredFile{Path: "b.rar", Size: 20, Modified: modTime},
		scanner.DiscoveredFile{Path: "a.rar", Size: 10},
	)

	var buf bytes.Buffer
	require.NoError(t, newReporter(t, FormatJSON).Render(&buf, result))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "a.rar", got[0]["path"])
	assert.Equal(t, float64(10), got[0]["size"])
	assert.Nil(t, got[0]["modified"])
	assert.Equal(t, "2024-03-05T14:07:09Z", got[1]["modified"])
}

func TestRender_JSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newReporter(t, FormatJSON).Render(&buf, testResult()))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRender_Plain(t *testing.T) {
	result := testResult(
		scanner.DiscoveredFile{Path: "b.rar"},
		scanner.DiscoveredFile{Path: "a.rar"},
	)

	var buf bytes.Buffer
	require.NoError(t, newReporter(t, FormatPlain).Render(&buf, result))
	assert.Equal(t, "a.rar\nb.rar\n", buf.String())
}

func TestRenderSummary(t *testing.T) {
	roots := orderedmap.NewOrderedMap[string, *scanner.RootStats]()
	roots.Set("/ok", &scanner.RootStats{Root: "/ok", Files: 2, Skipped: 3, Ignored: 1})
	roots.Set("/gone", &scanner.RootStats{
		Root: "/gone",
		Err:  &scanner.RootError{Root: "/gone", Err: errors.New("no such file or directory")},
	})
	result := &scanner.Result{
		Files: []scanner.DiscoveredFile{
			{Path: "/ok/a.rar", Size: 1024},
			{Path: "/ok/b.rar", Size: 1024},
		},
		Roots:    roots,
		Duration: 42 * time.Millisecond,
	}

	var buf bytes.Buffer
	require.NoError(t, newReporter(t, FormatTable).RenderSummary(&buf, result))

	assert.Equal(t, strings.Join([]string{
		"Found 2 files (2.0 KiB) in 2 roots, 42ms",
		"note: /ok: 3 entries skipped because of errors",
		"warning: root /gone: no such file or directory",
		"",
	}, "\n"), buf.String())

	s := Summarize(result)
	assert.Equal(t, int64(3), s.Skipped)
	assert.Equal(t, int64(1), s.Ignored)
	assert.Len(t, s.FailedRoots, 1)
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 file", plural(1, "file"))
	assert.Equal(t, "0 files", plural(0, "file"))
	assert.Equal(t, "2 entries", plural(2, "entry"))
}
