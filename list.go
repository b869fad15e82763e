package datatable

import (
	"io"
	"strings"
)

// writeList writes the first visible column of each body row, one per line.
func writeList(w io.Writer, g *grid) error {
	if len(g.rows) == 0 {
		return nil
	}
	lines := make([]string, 0, len(g.rows))
	for _, row := range g.rows {
		if len(row) > 0 {
			lines = append(lines, row[0])
		} else {
			lines = append(lines, "")
		}
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
