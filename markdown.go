package datatable

import (
	"fmt"
	"io"
	"strings"
)

func writeMarkdown(w io.Writer, g *grid, cfg *writeConfig) error {
	rows := g.rows
	if len(rows) == 0 && g.placeholder != "" {
		rows = [][]string{{g.placeholder}}
	}
	numCols := colCount(g.header, rows, g.footer)
	if numCols == 0 {
		return nil
	}
	header := make([]string, numCols)
	for i := range header {
		header[i] = escapeMarkdown(g.label(i))
	}

	// Minimum width 3 leaves room for alignment markers.
	widths := computeWidths(numCols, header, escapeRows(rows), escapeRow(g.footer))
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}
	aligns := extendAligns(cfg.aligns, numCols)

	if err := writeMarkdownRow(w, header, widths, aligns); err != nil {
		return err
	}
	sep := make([]string, numCols)
	for i, width := range widths {
		switch aligns[i] {
		case AlignRight:
			sep[i] = strings.Repeat("-", width-1) + ":"
		case AlignCenter:
			sep[i] = ":" + strings.Repeat("-", width-2) + ":"
		default:
			sep[i] = strings.Repeat("-", width)
		}
	}
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | ")); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeMarkdownRow(w, escapeRow(row), widths, aligns); err != nil {
			return err
		}
	}
	// GFM has no footer syntax; the footer becomes a bold last row.
	if len(g.footer) > 0 {
		foot := make([]string, len(g.footer))
		for i, c := range escapeRow(g.footer) {
			if c != "" {
				foot[i] = "**" + c + "**"
			}
		}
		if err := writeMarkdownRow(w, foot, widths, aligns); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdownRow(w io.Writer, cells []string, widths []int, aligns []Alignment) error {
	padded := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded[i] = alignCell(cell, width, aligns[i])
	}
	_, err := fmt.Fprintf(w, "| %s |\n", strings.Join(padded, " | "))
	return err
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

func escapeMarkdown(s string) string { return markdownEscaper.Replace(s) }

func escapeRow(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = escapeMarkdown(c)
	}
	return out
}

func escapeRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = escapeRow(r)
	}
	return out
}
