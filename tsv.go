package datatable

import (
	"fmt"
	"io"
	"strings"
)

var tsvEscaper = strings.NewReplacer("\t", " ", "\n", " ", "\r", "")

func writeTSV(w io.Writer, g *grid) error {
	line := func(cells []string) error {
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = tsvEscaper.Replace(c)
		}
		_, err := fmt.Fprintln(w, strings.Join(out, "\t"))
		return err
	}
	if len(g.names) > 0 {
		if err := line(g.names); err != nil {
			return err
		}
	}
	for _, row := range g.rows {
		if err := line(row); err != nil {
			return err
		}
	}
	return nil
}
