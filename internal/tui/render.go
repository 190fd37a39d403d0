package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/grid"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
)

// styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	cursorStyle  = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	lockedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	unsavedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const (
	minColWidth = 4
	maxColWidth = 30
)

type renderOpts struct {
	width    int
	height   int // data rows; 0 renders every row
	cx, cy   int
	cursor   bool
	scrollX  int
	scrollY  int
	editCell string // replaces the cursor cell while editing
	editing  bool
	keep     []int // row indices to render; nil renders all
}

// Render draws a view as a plain table for non-interactive output. keep selects rows by
// index; nil keeps every row.
func Render(v grid.View, keep []int) string {
	var b strings.Builder
	b.WriteString(statusLine(v))
	b.WriteString("\n")
	if len(v.Columns) == 0 {
		b.WriteString(dimStyle.Render(v.Empty))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(renderTable(v, renderOpts{keep: keep}))
	return b.String()
}

func statusLine(v grid.View) string {
	if v.Tone == grid.ToneWarn {
		return warnStyle.Render(v.Status)
	}
	return statusStyle.Render(v.Status)
}

func computeColWidths(v grid.View) []int {
	widths := make([]int, len(v.Columns))
	for i, name := range v.Columns {
		widths[i] = runewidth.StringWidth(name)
		if v.Locked[i] {
			widths[i]++ // room for the locked marker
		}
		if widths[i] < minColWidth {
			widths[i] = minColWidth
		}
	}
	// sample rows for width
	sampleEnd := len(v.Rows)
	if sampleEnd > 100 {
		sampleEnd = 100
	}
	for _, row := range v.Rows[:sampleEnd] {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
	}
	return widths
}

// visibleColRange returns the half-open range of columns that fit in width, starting at
// scrollX and always including the cursor column.
func visibleColRange(widths []int, width, scrollX, cx int) (int, int) {
	if width <= 0 {
		return 0, len(widths)
	}
	avail := width - 2
	start := scrollX
	if start >= len(widths) || start < 0 {
		start = 0
	}
	if cx < start {
		start = cx
	}
	used := 0
	end := start
	for end < len(widths) {
		w := widths[end] + 3 // padding + separator
		if used+w > avail && end > start {
			break
		}
		used += w
		end++
	}
	if cx >= end {
		end = cx + 1
		used = 0
		for i := end - 1; i >= 0; i-- {
			used += widths[i] + 3
			if used > avail {
				start = i + 1
				break
			}
			start = i
		}
	}
	return start, end
}

func alignCell(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, ".")
	}
	if values.Coerce(s).Kind() == values.KindNumber {
		// right-align numbers
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

func renderTable(v grid.View, o renderOpts) string {
	var b strings.Builder
	widths := computeColWidths(v)
	visStart, visEnd := visibleColRange(widths, o.width, o.scrollX, o.cx)

	// header
	for ci := visStart; ci < visEnd; ci++ {
		name := v.Columns[ci]
		if v.Locked[ci] {
			name += "*"
		}
		b.WriteString(headerStyle.Render(" " + alignCell(name, widths[ci]) + " "))
		if ci < visEnd-1 {
			b.WriteString(dimStyle.Render("│"))
		}
	}
	b.WriteString("\n")

	// separator
	for ci := visStart; ci < visEnd; ci++ {
		b.WriteString(dimStyle.Render(strings.Repeat("─", widths[ci]+2)))
		if ci < visEnd-1 {
			b.WriteString(dimStyle.Render("┼"))
		}
	}
	b.WriteString("\n")

	rows := o.keep
	if rows == nil {
		rows = make([]int, len(v.Rows))
		for i := range rows {
			rows[i] = i
		}
	}
	first, last := 0, len(rows)
	if o.height > 0 {
		first = o.scrollY
		if first > len(rows) {
			first = len(rows)
		}
		if first+o.height < last {
			last = first + o.height
		}
	}

	for _, ri := range rows[first:last] {
		row := v.Rows[ri]
		for ci := visStart; ci < visEnd; ci++ {
			display := row[ci]
			if o.editing && ri == o.cy && ci == o.cx {
				display = o.editCell
			}
			cell := " " + alignCell(display, widths[ci]) + " "

			switch {
			case o.cursor && ri == o.cy && ci == o.cx:
				b.WriteString(cursorStyle.Render(cell))
			case v.Locked[ci]:
				b.WriteString(lockedStyle.Render(cell))
			case v.Unsaved[ri][ci]:
				b.WriteString(unsavedStyle.Render(cell))
			default:
				b.WriteString(cell)
			}
			if ci < visEnd-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
