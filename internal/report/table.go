package report

import (
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/extscan/internal/scanner"
)

var tableHeader = []string{"File", "Size", "Modified"}

var headerStyle = color.Style{color.FgCyan, color.OpBold}

// box drawing pieces: left, junction, right, fill
type border struct {
	left, mid, right, fill string
}

var (
	borderTop    = border{"┌", "┬", "┐", "─"}
	borderHeader = border{"╞", "╪", "╡", "═"}
	borderBottom = border{"└", "┴", "┘", "─"}
)

// alignment per column: the size column is right aligned
var alignRight = []bool{false, true, false}

func (r *Reporter) writeTable(w io.Writer, files []scanner.DiscoveredFile) error {
	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{
			f.Path,
			humanize.IBytes(uint64(f.Size)),
			FormatModified(f, r.loc),
		}
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var b strings.Builder
	writeBorder(&b, borderTop, widths)
	r.writeRow(&b, tableHeader, widths, true)
	writeBorder(&b, borderHeader, widths)
	for _, row := range rows {
		r.writeRow(&b, row, widths, false)
	}
	writeBorder(&b, borderBottom, widths)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeBorder(b *strings.Builder, br border, widths []int) {
	b.WriteString(br.left)
	for i, w := range widths {
		if i > 0 {
			b.WriteString(br.mid)
		}
		b.WriteString(strings.Repeat(br.fill, w+2))
	}
	b.WriteString(br.right)
	b.WriteByte('\n')
}

func (r *Reporter) writeRow(b *strings.Builder, cells []string, widths []int, header bool) {
	b.WriteString("│")
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("│")
		}
		var padded string
		if alignRight[i] && !header {
			padded = runewidth.FillLeft(cell, widths[i])
		} else {
			padded = runewidth.FillRight(cell, widths[i])
		}
		if header {
			padded = r.paint(headerStyle, padded)
		}
		b.WriteString(" ")
		b.WriteString(padded)
		b.WriteString(" ")
	}
	b.WriteString("│\n")
}
