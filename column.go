package datatable

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Column describes one column of a table.
type Column struct {
	Key      string  `json:"key,omitempty" yaml:"key,omitempty"`
	Header   string  `json:"header" yaml:"header"`
	Footer   string  `json:"footer,omitempty" yaml:"footer,omitempty"`
	Width    float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Sortable bool    `json:"sortable" yaml:"sortable"`
	Hidden   bool    `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// ColumnDef is one schema entry value: a [Label] or a full [Column].
type ColumnDef interface {
	describe(key string) Column
}

// Label is a schema entry given as a bare header string. It yields a
// sortable, visible column with no footer or width.
type Label string

func (l Label) describe(key string) Column {
	return Column{Key: key, Header: string(l), Sortable: true}
}

func (c Column) describe(key string) Column {
	c.Key = key
	return c
}

// SchemaEntry binds a record key to its column definition.
type SchemaEntry struct {
	Key string
	Def ColumnDef
}

// Schema is an ordered column schema.
type Schema []SchemaEntry

// Labels builds a Schema from alternating key, label pairs. A trailing key
// without a label uses the key as its label.
func Labels(pairs ...string) Schema {
	s := make(Schema, 0, (len(pairs)+1)/2)
	for i := 0; i < len(pairs); i += 2 {
		label := pairs[i]
		if i+1 < len(pairs) {
			label = pairs[i+1]
		}
		s = append(s, SchemaEntry{Key: pairs[i], Def: Label(label)})
	}
	return s
}

// UnmarshalYAML decodes a mapping of key to either a scalar label or a
// descriptor mapping. Key order is preserved. A descriptor without a
// sortable field is sortable.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: schema must be a mapping, got %s", ErrInvalidSchema, kindName(node.Kind))
	}
	out := make(Schema, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			out = append(out, SchemaEntry{Key: key, Def: Label(val.Value)})
		case yaml.MappingNode:
			var raw struct {
				Header   string  `yaml:"header"`
				Footer   string  `yaml:"footer"`
				Width    float64 `yaml:"width"`
				Sortable *bool   `yaml:"sortable"`
				Hidden   bool    `yaml:"hidden"`
			}
			if err := val.Decode(&raw); err != nil {
				return fmt.Errorf("%w: column %q: %s", ErrInvalidSchema, key, err)
			}
			col := Column{
				Header:   raw.Header,
				Footer:   raw.Footer,
				Width:    raw.Width,
				Sortable: raw.Sortable == nil || *raw.Sortable,
				Hidden:   raw.Hidden,
			}
			if col.Header == "" {
				col.Header = key
			}
			out = append(out, SchemaEntry{Key: key, Def: col})
		default:
			return fmt.Errorf("%w: column %q must be a label or a mapping", ErrInvalidSchema, key)
		}
	}
	*s = out
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// Columns is a normalized, ordered list of column descriptors.
type Columns []Column

// Get returns the column with the given key.
func (cs Columns) Get(key string) (Column, bool) {
	for _, c := range cs {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Keys returns the column keys in order.
func (cs Columns) Keys() []string {
	keys := make([]string, len(cs))
	for i, c := range cs {
		keys[i] = c.Key
	}
	return keys
}

// VisibleCount returns the number of columns that are not hidden.
func (cs Columns) VisibleCount() int {
	n := 0
	for _, c := range cs {
		if !c.Hidden {
			n++
		}
	}
	return n
}

// HasFooter reports whether any visible column declares a footer label.
func (cs Columns) HasFooter() bool {
	for _, c := range cs {
		if !c.Hidden && c.Footer != "" {
			return true
		}
	}
	return false
}

// NormalizeColumns resolves the columns for data. With a schema, each entry
// becomes a descriptor. Without one, the keys of the first record are used,
// each labelled with its own name, sortable and visible.
func NormalizeColumns[T any](data []T, schema Schema, acc Accessor[T]) Columns {
	if schema != nil {
		cols := make(Columns, 0, len(schema))
		for _, e := range schema {
			if e.Def == nil {
				cols = append(cols, Label(e.Key).describe(e.Key))
				continue
			}
			cols = append(cols, e.Def.describe(e.Key))
		}
		return cols
	}
	if len(data) == 0 {
		return Columns{}
	}
	if acc == nil {
		acc = ReflectAccessor[T]{}
	}
	keys := acc.Keys(data[0])
	cols := make(Columns, len(keys))
	for i, k := range keys {
		cols[i] = Label(k).describe(k)
	}
	return cols
}
