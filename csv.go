package datatable

import (
	"encoding/csv"
	"io"
)

func writeCSV(w io.Writer, g *grid, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if len(g.names) > 0 {
		if err := cw.Write(g.names); err != nil {
			return err
		}
	}
	for _, row := range g.rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
