package datatable

// grid is the flattened text view of a rendered table. Hidden slots are
// dropped so every line has one entry per visible column.
type grid struct {
	keys        []string
	header      []string
	names       []string
	maxWidths   []int
	rows        [][]string
	values      [][]any
	rowKeys     []string
	groups      []string
	footer      []string
	placeholder string
}

func extractGrid(n *Node) *grid {
	g := &grid{}
	if head := n.Section(KindHead); head != nil {
		for _, row := range head.Rows() {
			for _, c := range row.Cells() {
				if c.Hidden {
					continue
				}
				g.keys = append(g.keys, c.Key)
				g.header = append(g.header, headerText(c))
				g.names = append(g.names, c.TextContent())
				g.maxWidths = append(g.maxWidths, int(c.Width))
			}
			break
		}
	}

	grouped := false
	for _, row := range n.BodyRows() {
		cells := row.Cells()
		if row.IsPlaceholder() {
			g.placeholder = row.TextContent()
			continue
		}
		var texts []string
		var values []any
		var keys []string
		for _, c := range cells {
			if c.Hidden {
				continue
			}
			text := c.TextContent()
			texts = append(texts, text)
			if c.Value == nil && text != "" {
				values = append(values, text)
			} else {
				values = append(values, c.Value)
			}
			keys = append(keys, c.Key)
		}
		if g.keys == nil {
			g.keys = keys
		}
		g.rows = append(g.rows, texts)
		g.values = append(g.values, values)
		g.rowKeys = append(g.rowKeys, row.Key)
		group, ok := row.Attrs["data-group"]
		grouped = grouped || ok
		g.groups = append(g.groups, group)
	}
	if !grouped {
		g.groups = nil
	}

	if foot := n.Section(KindFoot); foot != nil {
		for _, row := range foot.Rows() {
			for _, c := range row.Cells() {
				if !c.Hidden {
					g.footer = append(g.footer, c.TextContent())
				}
			}
			break
		}
	}
	return g
}

func headerText(c *Node) string {
	s := c.TextContent()
	if c.Indicator != "" {
		s += " " + c.Indicator
	}
	return s
}

// label returns the header for column i, falling back to its key.
func (g *grid) label(i int) string {
	if i < len(g.header) && g.header[i] != "" {
		return g.header[i]
	}
	if i < len(g.keys) {
		return g.keys[i]
	}
	return ""
}

// dataKeys returns the column keys used for structured output.
func (g *grid) dataKeys() []string {
	n := len(g.keys)
	for _, r := range g.rows {
		if len(r) > n {
			n = len(r)
		}
	}
	keys := make([]string, n)
	copy(keys, g.keys)
	return keys
}

// objects returns the body rows as ordered key/value records.
func (g *grid) objects() []orderedRow {
	keys := g.dataKeys()
	out := make([]orderedRow, len(g.values))
	for i, vals := range g.values {
		out[i] = orderedRow{keys: keys[:len(vals)], values: vals}
	}
	return out
}
