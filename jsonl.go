package datatable

import (
	"encoding/json"
	"io"
)

func writeJSONL(w io.Writer, g *grid) error {
	enc := json.NewEncoder(w)
	for _, row := range g.objects() {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
