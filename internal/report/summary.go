package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"

	"github.com/dbsmedya/extscan/internal/scanner"
)

var (
	warnStyle = color.Style{color.FgYellow, color.OpBold}
	noteStyle = color.Style{color.FgGray}
)

// Summary condenses a scan result.
type Summary struct {
	Files       int
	TotalSize   int64
	Roots       int
	FailedRoots []*scanner.RootStats
	Skipped     int64
	Ignored     int64
	Duration    time.Duration
}

// Summarize computes the summary of result.
func Summarize(result *scanner.Result) Summary {
	s := Summary{
		Files:       len(result.Files),
		TotalSize:   result.TotalSize(),
		Roots:       result.Roots.Len(),
		FailedRoots: result.FailedRoots(),
		Duration:    result.Duration,
	}
	for el := result.Roots.Front(); el != nil; el = el.Next() {
		s.Skipped += el.Value.Skipped
		s.Ignored += el.Value.Ignored
	}
	return s
}

// RenderSummary writes the totals, then one warning per root that could not be
// scanned and one note per root with skipped entries.
func (r *Reporter) RenderSummary(w io.Writer, result *scanner.Result) error {
	s := Summarize(result)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %s (%s) in %s, %s\n",
		plural(s.Files, "file"),
		humanize.IBytes(uint64(s.TotalSize)),
		plural(s.Roots, "root"),
		s.Duration.Round(time.Millisecond),
	)

	for el := result.Roots.Front(); el != nil; el = el.Next() {
		st := el.Value
		if st.Failed() {
			fmt.Fprintf(&b, "%s %v\n", r.paint(warnStyle, "warning:"), st.Err)
			continue
		}
		if st.Skipped > 0 {
			fmt.Fprintf(&b, "%s %s: %s skipped because of errors\n",
				r.paint(noteStyle, "note:"), st.Root, plural(int(st.Skipped), "entry"))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	if strings.HasSuffix(word, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(word, "y"))
	}
	return fmt.Sprintf("%d %ss", n, word)
}
