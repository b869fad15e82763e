package datatable

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

type borderChars struct {
	topLeft, topRight, bottomLeft, bottomRight string
	horizontal, vertical                       string
	topTee, bottomTee, leftTee, rightTee       string
	cross                                      string
}

var borderSets = map[BorderStyle]borderChars{
	BorderRounded: {
		topLeft: "╭", topRight: "╮", bottomLeft: "╰", bottomRight: "╯",
		horizontal: "─", vertical: "│",
		topTee: "┬", bottomTee: "┴", leftTee: "├", rightTee: "┤",
		cross: "┼",
	},
	BorderASCII: {
		topLeft: "+", topRight: "+", bottomLeft: "+", bottomRight: "+",
		horizontal: "-", vertical: "|",
		topTee: "+", bottomTee: "+", leftTee: "+", rightTee: "+",
		cross: "+",
	},
	BorderHeavy: {
		topLeft: "┏", topRight: "┓", bottomLeft: "┗", bottomRight: "┛",
		horizontal: "━", vertical: "┃",
		topTee: "┳", bottomTee: "┻", leftTee: "┣", rightTee: "┫",
		cross: "╋",
	},
	BorderDouble: {
		topLeft: "╔", topRight: "╗", bottomLeft: "╚", bottomRight: "╝",
		horizontal: "═", vertical: "║",
		topTee: "╦", bottomTee: "╩", leftTee: "╠", rightTee: "╣",
		cross: "╬",
	},
}

// textLayout is a grid prepared for fixed-width output.
type textLayout struct {
	header []string
	rows   [][]string
	footer []string
	groups []string
	widths []int
	aligns []Alignment
	styles []func(string) string
}

func layoutText(g *grid, cfg *writeConfig) *textLayout {
	rows := g.rows
	if len(rows) == 0 && g.placeholder != "" {
		rows = [][]string{{g.placeholder}}
	}
	numCols := colCount(g.header, rows, g.footer)
	l := &textLayout{
		header: g.header,
		rows:   rows,
		footer: g.footer,
		groups: g.groups,
		widths: computeWidths(numCols, g.header, rows, g.footer),
		aligns: extendAligns(cfg.aligns, numCols),
		styles: extendStyles(cfg.styles, numCols),
	}
	// Column widths from the schema cap the computed widths.
	for i, max := range g.maxWidths {
		if i < numCols && max > 0 && l.widths[i] > max {
			l.widths[i] = max
		}
	}
	return l
}

func writeText(w io.Writer, g *grid, cfg *writeConfig) error {
	l := layoutText(g, cfg)
	if len(l.widths) == 0 {
		return nil
	}
	var err error
	if cfg.border == BorderNone {
		err = l.renderPlain(w)
	} else {
		err = l.renderBordered(w, cfg.title, borderSets[cfg.border])
	}
	if err != nil {
		return err
	}
	if cfg.caption != "" {
		if _, err := fmt.Fprintln(w, cfg.caption); err != nil {
			return err
		}
	}
	return nil
}

func colCount(header []string, rows [][]string, footer []string) int {
	n := len(header)
	for _, row := range rows {
		if len(row) > n {
			n = len(row)
		}
	}
	if len(footer) > n {
		n = len(footer)
	}
	return n
}

func computeWidths(numCols int, lines ...any) []int {
	widths := make([]int, numCols)
	measure := func(cells []string) {
		for i, cell := range cells {
			if w := runewidth.StringWidth(cell); i < numCols && w > widths[i] {
				widths[i] = w
			}
		}
	}
	for _, l := range lines {
		switch v := l.(type) {
		case []string:
			measure(v)
		case [][]string:
			for _, row := range v {
				measure(row)
			}
		}
	}
	return widths
}

func extendAligns(aligns []Alignment, numCols int) []Alignment {
	if len(aligns) >= numCols {
		return aligns[:numCols]
	}
	extended := make([]Alignment, numCols)
	copy(extended, aligns)
	return extended
}

func extendStyles(styles []func(string) string, numCols int) []func(string) string {
	if len(styles) >= numCols {
		return styles[:numCols]
	}
	extended := make([]func(string) string, numCols)
	copy(extended, styles)
	return extended
}

// groupBreak reports whether row i starts a new group.
func (l *textLayout) groupBreak(i int) bool {
	return len(l.groups) > i && i > 0 && l.groups[i] != l.groups[i-1]
}

func (l *textLayout) cells(cells []string) []string {
	out := make([]string, len(l.widths))
	for i, width := range l.widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		formatted := formatTableCell(cell, width, l.aligns[i])
		if l.styles[i] != nil {
			formatted = l.styles[i](formatted)
		}
		out[i] = formatted
	}
	return out
}

// --- Plain table (BorderNone) ---

func (l *textLayout) renderPlain(w io.Writer) error {
	sep := make([]string, len(l.widths))
	for i, width := range l.widths {
		sep[i] = strings.Repeat("-", width)
	}
	sepLine := strings.Join(sep, "  ")
	line := func(cells []string) error {
		_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(l.cells(cells), "  "), " "))
		return err
	}

	if len(l.header) > 0 {
		if err := line(l.header); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, sepLine); err != nil {
			return err
		}
	}
	for i, row := range l.rows {
		if l.groupBreak(i) {
			if _, err := fmt.Fprintln(w, sepLine); err != nil {
				return err
			}
		}
		if err := line(row); err != nil {
			return err
		}
	}
	if len(l.footer) > 0 {
		if _, err := fmt.Fprintln(w, sepLine); err != nil {
			return err
		}
		if err := line(l.footer); err != nil {
			return err
		}
	}
	return nil
}

// --- Bordered table ---

func (l *textLayout) renderBordered(w io.Writer, title string, bc borderChars) error {
	divider := func() error {
		return drawHLine(w, l.widths, bc.leftTee, bc.horizontal, bc.cross, bc.rightTee)
	}
	row := func(cells []string) error {
		_, err := fmt.Fprintf(w, "%s %s %s\n", bc.vertical, strings.Join(l.cells(cells), " "+bc.vertical+" "), bc.vertical)
		return err
	}

	if title != "" {
		if err := drawHLine(w, l.widths, bc.topLeft, bc.horizontal, bc.horizontal, bc.topRight); err != nil {
			return err
		}
		inner := tableInnerWidth(l.widths) - 2
		if _, err := fmt.Fprintf(w, "%s %s %s\n", bc.vertical, alignCell(title, inner, AlignCenter), bc.vertical); err != nil {
			return err
		}
		if err := drawHLine(w, l.widths, bc.leftTee, bc.horizontal, bc.topTee, bc.rightTee); err != nil {
			return err
		}
	} else if err := drawHLine(w, l.widths, bc.topLeft, bc.horizontal, bc.topTee, bc.topRight); err != nil {
		return err
	}

	if len(l.header) > 0 {
		if err := row(l.header); err != nil {
			return err
		}
		if err := divider(); err != nil {
			return err
		}
	}
	for i, cells := range l.rows {
		if l.groupBreak(i) {
			if err := divider(); err != nil {
				return err
			}
		}
		if err := row(cells); err != nil {
			return err
		}
	}
	if len(l.footer) > 0 {
		if err := divider(); err != nil {
			return err
		}
		if err := row(l.footer); err != nil {
			return err
		}
	}
	return drawHLine(w, l.widths, bc.bottomLeft, bc.horizontal, bc.bottomTee, bc.bottomRight)
}

// tableInnerWidth returns the total character width between the outer
// vertical borders: each cell plus one space of padding on each side, and one
// separator between cells.
func tableInnerWidth(widths []int) int {
	n := 0
	for _, w := range widths {
		n += w + 2
	}
	if len(widths) > 1 {
		n += len(widths) - 1
	}
	return n
}

func drawHLine(w io.Writer, widths []int, left, fill, mid, right string) error {
	var sb strings.Builder
	sb.WriteString(left)
	for i, width := range widths {
		sb.WriteString(strings.Repeat(fill, width+2))
		if i < len(widths)-1 {
			sb.WriteString(mid)
		}
	}
	sb.WriteString(right)
	_, err := fmt.Fprintln(w, sb.String())
	return err
}

func formatTableCell(s string, width int, align Alignment) string {
	if width > 0 && runewidth.StringWidth(s) > width {
		if width <= 3 {
			s = runewidth.Truncate(s, width, "")
		} else {
			s = runewidth.Truncate(s, width, "...")
		}
	}
	return alignCell(s, width, align)
}

func alignCell(s string, width int, align Alignment) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
