package datatable

import (
	"fmt"
	"io"
	"text/template"
)

// RowView is the value a go-template format sees for each body row.
type RowView struct {
	// Position is the row's zero-based display position.
	Position int
	Key      string
	Group    string
	// Cells maps column keys to display text.
	Cells map[string]string
	// Values maps column keys to raw values.
	Values map[string]any
}

func writeGoTemplate(w io.Writer, tmplStr string, g *grid) error {
	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, err)
	}
	keys := g.dataKeys()
	for i, row := range g.rows {
		view := RowView{
			Position: i,
			Key:      g.rowKeys[i],
			Cells:    make(map[string]string, len(row)),
			Values:   make(map[string]any, len(row)),
		}
		if i < len(g.groups) {
			view.Group = g.groups[i]
		}
		for j, text := range row {
			view.Cells[keys[j]] = text
			view.Values[keys[j]] = g.values[i][j]
		}
		if err := tmpl.Execute(w, view); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
