package datatable

// Event describes a click on a table cell.
//
// Header and footer events carry Row -1 and the zero Data. For the row
// number column Key is [IndexKey] and Value is Row+1.
type Event[T any] struct {
	// Row is the record's position in the original collection.
	Row int
	// Column is the cell's slot position within its row.
	Column int
	Key    string
	Data   T
	Value  any
}

// headerClick reports the click to the caller's header callback when there is
// one. Otherwise it cycles the local sort for sortable data columns while the
// table is uncontrolled.
func (t *Table[T]) headerClick(p *Props[T], cols Columns, column int, key string) func(Interaction) {
	return func(ix Interaction) {
		ix.PreventDefault()
		if p.OnHeaderClick != nil {
			t.logger.Debug("header click reported", "column", column, "key", key)
			p.OnHeaderClick(Event[T]{Row: -1, Column: column, Key: key})
			return
		}
		if key == IndexKey || t.state.Controlled {
			return
		}
		col, ok := cols.Get(key)
		if !ok || !col.Sortable {
			return
		}
		prev := t.state.Sorting
		t.state = t.state.Cycle(key)
		t.logger.Debug("sort cycled", "key", key, "from", specString(prev), "to", specString(t.state.Sorting))
	}
}

func (t *Table[T]) footerClick(p *Props[T], column int, key string) func(Interaction) {
	return func(ix Interaction) {
		ix.PreventDefault()
		if p.OnFooterClick == nil {
			return
		}
		p.OnFooterClick(Event[T]{Row: -1, Column: column, Key: key})
	}
}

func (t *Table[T]) dataClick(p *Props[T], ev Event[T]) func(Interaction) {
	return func(ix Interaction) {
		ix.PreventDefault()
		if p.OnDataClick == nil {
			return
		}
		p.OnDataClick(ev)
	}
}

func specString(s *SortSpec) string {
	if s == nil {
		return "none"
	}
	return s.String()
}
