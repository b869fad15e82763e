package datatable

import "strings"

// Kind identifies the role of a [Node].
type Kind int

const (
	KindText Kind = iota
	KindTable
	KindHead
	KindBody
	KindFoot
	KindRow
	KindHeaderCell
	KindCell
	KindFooterCell
)

var kindNames = [...]string{"text", "table", "head", "body", "foot", "row", "header-cell", "cell", "footer-cell"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsCell reports whether k is a header, body or footer cell.
func (k Kind) IsCell() bool {
	return k == KindHeaderCell || k == KindCell || k == KindFooterCell
}

// Interaction is the host's view of a user interaction. Click handlers call
// PreventDefault before doing anything else.
type Interaction interface {
	PreventDefault()
}

type nopInteraction struct{}

func (nopInteraction) PreventDefault() {}

// Node is one element of a rendered table tree.
type Node struct {
	Kind Kind
	// Key is the column key for cells and the row key for rows.
	Key string
	// Text is the literal content of text nodes and the label of cells.
	Text string
	// Value is the raw record value of body cells.
	Value any
	// Span is the number of columns a cell covers; zero means one.
	Span int
	// Width is the preferred width of header cells.
	Width float64
	// Sortable marks header cells whose click cycles the sort.
	Sortable bool
	// Order and Indicator mark the active sort column's header cell.
	Order     Order
	Indicator string
	// Hidden marks the empty slot left by a hidden column.
	Hidden bool
	// Placeholder marks the row that stands in for an empty body.
	Placeholder bool
	// Attrs carries renderer-defined attributes.
	Attrs    map[string]string
	Children []*Node
	OnClick  func(Interaction)
}

// Text returns a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Click invokes the node's click handler. It reports whether a handler ran.
// A nil ix is replaced with a no-op interaction.
func (n *Node) Click(ix Interaction) bool {
	if n == nil || n.OnClick == nil {
		return false
	}
	if ix == nil {
		ix = nopInteraction{}
	}
	n.OnClick(ix)
	return true
}

// Attr returns the named attribute, or "" when unset.
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.Attrs[name]
}

// SetAttr sets the named attribute.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// Walk visits n and its descendants depth first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node of the given kind and key.
func (n *Node) Find(kind Kind, key string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Kind == kind && c.Key == key {
			found = c
			return false
		}
		return true
	})
	return found
}

// Section returns the first node of the given kind.
func (n *Node) Section(kind Kind) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Kind == kind {
			found = c
			return false
		}
		return true
	})
	return found
}

// Rows returns the row nodes below n in document order.
func (n *Node) Rows() []*Node {
	return n.collect(func(k Kind) bool { return k == KindRow })
}

// BodyRows returns the rows of the body section.
func (n *Node) BodyRows() []*Node {
	return n.Section(KindBody).Rows()
}

// Cells returns the cell nodes of a row in order.
func (n *Node) Cells() []*Node {
	return n.collect(Kind.IsCell)
}

// collect gathers the outermost descendants whose kind matches.
func (n *Node) collect(match func(Kind) bool) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if match(c.Kind) {
			out = append(out, c)
			continue
		}
		out = append(out, c.collect(match)...)
	}
	return out
}

// FindCell returns the body cell at column key in the row with rowKey.
func (n *Node) FindCell(rowKey, key string) *Node {
	for _, row := range n.BodyRows() {
		if row.Key != rowKey {
			continue
		}
		for _, c := range row.Cells() {
			if c.Key == key {
				return c
			}
		}
	}
	return nil
}

// IsPlaceholder reports whether n is the row that stands in for an empty body.
func (n *Node) IsPlaceholder() bool {
	return n != nil && n.Placeholder
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.Walk(func(c *Node) bool {
		sb.WriteString(c.Text)
		return true
	})
	return sb.String()
}
