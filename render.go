package datatable

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// IndexKey is the column key of the synthetic row number column.
const IndexKey = "$index"

// IndexHeader labels the row number column.
const IndexHeader = "#"

const placeholderKey = "placeholder"

// Renderer turns a render context into output.
type Renderer[C, O any] interface {
	Render(ctx C) O
}

// RenderFunc adapts a function to the [Renderer] interface.
type RenderFunc[C, O any] func(ctx C) O

// Render calls f(ctx).
func (f RenderFunc[C, O]) Render(ctx C) O { return f(ctx) }

// CellContext is passed to the cell renderer.
type CellContext[T any] struct {
	Column int
	Key    string
	Data   T
	Row    int
	Value  any
	// OnClick is the data click handler. It is attached to the returned node
	// when the renderer leaves the node's handler unset.
	OnClick func(Interaction)
}

// RowContext is passed to the row key resolver and the row renderer. Key is
// empty while the key is being resolved.
type RowContext[T any] struct {
	Index int
	Key   string
	Cells []*Node
	Data  T
}

// HeadContext is passed to the head renderer.
type HeadContext struct {
	Columns Columns
	Sorting *SortSpec
	Indexed bool
	// ClickOverride is set when header clicks go to the caller instead of
	// cycling the sort.
	ClickOverride bool
	// Click returns the header click handler for the cell at column.
	Click func(column int, key string) func(Interaction)
}

// Mode tells the body renderer how the table is being assembled.
type Mode string

const (
	ModeTable    Mode = "table"
	ModeHeadless Mode = "headless"
)

// Host provides the wrapper nodes that frame a table.
type Host struct {
	Table func(children ...*Node) *Node
	Head  func(children ...*Node) *Node
	Body  func(children ...*Node) *Node
	Foot  func(children ...*Node) *Node
}

// DefaultHost wraps children in plain table, head, body and foot nodes.
var DefaultHost = Host{
	Table: section(KindTable),
	Head:  section(KindHead),
	Body:  section(KindBody),
	Foot:  section(KindFoot),
}

func section(kind Kind) func(children ...*Node) *Node {
	return func(children ...*Node) *Node {
		return &Node{Kind: kind, Children: children}
	}
}

// BodyContext is passed to the body renderer. Head and Foot are nil when the
// table has no head or foot.
type BodyContext struct {
	Host Host
	Head *Node
	Rows []*Node
	Foot *Node
	Mode Mode
}

// Props are the inputs of one render pass.
type Props[T any] struct {
	Data    []T
	Columns Schema
	GroupBy string
	Indexed bool
	// NoHeader omits the head section.
	NoHeader bool
	// Placeholder fills the body when there are no rows.
	Placeholder *Node
	// SortBy controls the sort. Supplying it once makes the table controlled
	// for the rest of its life.
	SortBy SortDirective

	// OnHeaderClick replaces sort cycling when set.
	OnHeaderClick func(Event[T])
	OnFooterClick func(Event[T])
	OnDataClick   func(Event[T])

	CellRenderer Renderer[CellContext[T], *Node]
	RowRenderer  Renderer[RowContext[T], *Node]
	HeadRenderer Renderer[HeadContext, *Node]
	BodyRenderer Renderer[BodyContext, *Node]
	RowKey       Renderer[RowContext[T], string]
}

// Option configures a [Table].
type Option[T any] func(*Table[T])

// WithAccessor sets the record field accessor.
func WithAccessor[T any](acc Accessor[T]) Option[T] {
	return func(t *Table[T]) { t.acc = acc }
}

// WithComparator sets the value comparator used for ordering.
func WithComparator[T any](c Comparator) Option[T] {
	return func(t *Table[T]) { t.compare = c }
}

// WithLogger sets the logger for debug tracing.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(t *Table[T]) { t.logger = l }
}

// Table renders records of type T and owns the local sort state between
// render passes. A Table must not be used from multiple goroutines at once.
type Table[T any] struct {
	acc     Accessor[T]
	compare Comparator
	logger  *slog.Logger
	orderer *Orderer[T]
	state   SortState
}

// New returns a Table with no active sort.
func New[T any](opts ...Option[T]) *Table[T] {
	t := &Table[T]{}
	for _, opt := range opts {
		opt(t)
	}
	if t.acc == nil {
		t.acc = ReflectAccessor[T]{}
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	t.orderer = NewOrderer(t.acc, t.compare)
	return t
}

// State returns the current sort state.
func (t *Table[T]) State() SortState { return t.state }

// Orderer returns the table's memoizing orderer.
func (t *Table[T]) Orderer() *Orderer[T] { return t.orderer }

// Render runs one render pass and returns the table tree.
func (t *Table[T]) Render(p Props[T]) *Node {
	prev := t.state
	t.state = DeriveState(p.SortBy, t.state)
	if t.state.Controlled && !prev.Controlled {
		t.logger.Debug("sort is now controlled", "sort", specString(t.state.Sorting))
	}

	cols := NormalizeColumns(p.Data, p.Columns, t.acc)
	cached := t.orderer.Cached(p.Data, p.GroupBy, t.state.Sorting)
	order := t.orderer.Order(p.Data, p.GroupBy, t.state.Sorting)
	t.logger.Debug("render",
		"rows", len(order),
		"columns", len(cols),
		"group_by", p.GroupBy,
		"sort", specString(t.state.Sorting),
		"order_cached", cached,
	)

	rp := &pass[T]{t: t, p: &p, cols: cols}

	var head *Node
	if !p.NoHeader {
		hr := p.HeadRenderer
		if hr == nil {
			hr = DefaultHeadRenderer
		}
		head = hr.Render(HeadContext{
			Columns:       cols,
			Sorting:       t.state.Sorting,
			Indexed:       p.Indexed,
			ClickOverride: p.OnHeaderClick != nil,
			Click: func(column int, key string) func(Interaction) {
				return t.headerClick(&p, cols, column, key)
			},
		})
	}

	mode := ModeTable
	if p.NoHeader {
		mode = ModeHeadless
	}
	br := p.BodyRenderer
	if br == nil {
		br = DefaultBodyRenderer
	}
	return br.Render(BodyContext{
		Host: DefaultHost,
		Head: head,
		Rows: rp.rows(order),
		Foot: rp.foot(),
		Mode: mode,
	})
}

// pass holds the per-render inputs shared by the row and foot builders.
type pass[T any] struct {
	t    *Table[T]
	p    *Props[T]
	cols Columns
}

func (r *pass[T]) slots() int {
	n := len(r.cols)
	if r.p.Indexed {
		n++
	}
	return n
}

func (r *pass[T]) rows(order []int) []*Node {
	p := r.p
	if len(order) == 0 {
		if p.Placeholder == nil {
			return nil
		}
		span := r.cols.VisibleCount()
		if p.Indexed {
			span++
		}
		return []*Node{{
			Kind:        KindRow,
			Key:         placeholderKey,
			Placeholder: true,
			Children: []*Node{{
				Kind:     KindCell,
				Span:     span,
				Children: []*Node{p.Placeholder},
			}},
		}}
	}

	cr := p.CellRenderer
	if cr == nil {
		cr = DefaultCellRenderer[T]()
	}
	rr := p.RowRenderer
	if rr == nil {
		rr = DefaultRowRenderer[T]()
	}
	kr := p.RowKey
	if kr == nil {
		kr = DefaultRowKey[T]()
	}

	rows := make([]*Node, 0, len(order))
	for _, i := range order {
		rec := p.Data[i]
		cells := make([]*Node, 0, r.slots())
		pos := 0
		if p.Indexed {
			cells = append(cells, r.cell(cr, pos, IndexKey, rec, i, i+1))
			pos++
		}
		for _, c := range r.cols {
			if c.Hidden {
				cells = append(cells, hiddenSlot(KindCell, c.Key))
			} else {
				cells = append(cells, r.cell(cr, pos, c.Key, rec, i, r.t.acc.Value(rec, c.Key)))
			}
			pos++
		}

		rc := RowContext[T]{Index: i, Cells: cells, Data: rec}
		rc.Key = kr.Render(rc)
		row := rr.Render(rc)
		if row == nil {
			continue
		}
		if row.Key == "" {
			row.Key = rc.Key
		}
		if p.GroupBy != "" {
			row.SetAttr("data-group", FormatValue(r.t.acc.Value(rec, p.GroupBy)))
		}
		rows = append(rows, row)
	}
	return rows
}

func (r *pass[T]) cell(cr Renderer[CellContext[T], *Node], column int, key string, rec T, row int, value any) *Node {
	ctx := CellContext[T]{
		Column: column,
		Key:    key,
		Data:   rec,
		Row:    row,
		Value:  value,
		OnClick: r.t.dataClick(r.p, Event[T]{
			Row:    row,
			Column: column,
			Key:    key,
			Data:   rec,
			Value:  value,
		}),
	}
	n := cr.Render(ctx)
	if n != nil && n.OnClick == nil {
		n.OnClick = ctx.OnClick
	}
	return n
}

func (r *pass[T]) foot() *Node {
	if !r.cols.HasFooter() {
		return nil
	}
	row := &Node{Kind: KindRow, Key: "foot"}
	pos := 0
	if r.p.Indexed {
		row.Children = append(row.Children, &Node{
			Kind:    KindFooterCell,
			Key:     IndexKey,
			OnClick: r.t.footerClick(r.p, pos, IndexKey),
		})
		pos++
	}
	for _, c := range r.cols {
		if c.Hidden {
			row.Children = append(row.Children, hiddenSlot(KindFooterCell, c.Key))
		} else {
			row.Children = append(row.Children, &Node{
				Kind:    KindFooterCell,
				Key:     c.Key,
				Text:    c.Footer,
				OnClick: r.t.footerClick(r.p, pos, c.Key),
			})
		}
		pos++
	}
	return row
}

func hiddenSlot(kind Kind, key string) *Node {
	return &Node{Kind: kind, Key: key, Hidden: true}
}

// DefaultHeadRenderer emits one header row: the row number header when the
// table is indexed, then a header cell per column. The active sort column
// carries its direction and indicator glyph.
var DefaultHeadRenderer Renderer[HeadContext, *Node] = RenderFunc[HeadContext, *Node](func(ctx HeadContext) *Node {
	click := ctx.Click
	if click == nil {
		click = func(int, string) func(Interaction) { return nil }
	}
	row := &Node{Kind: KindRow, Key: "head"}
	pos := 0
	if ctx.Indexed {
		row.Children = append(row.Children, &Node{
			Kind:    KindHeaderCell,
			Key:     IndexKey,
			Text:    IndexHeader,
			OnClick: click(pos, IndexKey),
		})
		pos++
	}
	for _, c := range ctx.Columns {
		if c.Hidden {
			row.Children = append(row.Children, hiddenSlot(KindHeaderCell, c.Key))
			pos++
			continue
		}
		cell := &Node{
			Kind:     KindHeaderCell,
			Key:      c.Key,
			Text:     c.Header,
			Width:    c.Width,
			Sortable: c.Sortable && !ctx.ClickOverride,
			OnClick:  click(pos, c.Key),
		}
		if ctx.Sorting != nil && ctx.Sorting.Column == c.Key {
			cell.Order = ctx.Sorting.Order
			cell.Indicator = ctx.Sorting.Order.Indicator()
		}
		row.Children = append(row.Children, cell)
		pos++
	}
	return row
})

// DefaultBodyRenderer frames the head, rows and foot with the host wrappers.
var DefaultBodyRenderer Renderer[BodyContext, *Node] = RenderFunc[BodyContext, *Node](func(ctx BodyContext) *Node {
	var children []*Node
	if ctx.Head != nil && ctx.Mode != ModeHeadless {
		children = append(children, ctx.Host.Head(ctx.Head))
	}
	children = append(children, ctx.Host.Body(ctx.Rows...))
	if ctx.Foot != nil {
		children = append(children, ctx.Host.Foot(ctx.Foot))
	}
	return ctx.Host.Table(children...)
})

// DefaultCellRenderer returns a renderer that shows the formatted value.
func DefaultCellRenderer[T any]() Renderer[CellContext[T], *Node] {
	return RenderFunc[CellContext[T], *Node](func(ctx CellContext[T]) *Node {
		return &Node{Kind: KindCell, Key: ctx.Key, Text: FormatValue(ctx.Value), Value: ctx.Value}
	})
}

// DefaultRowRenderer returns a renderer that wraps the cells in a row node.
func DefaultRowRenderer[T any]() Renderer[RowContext[T], *Node] {
	return RenderFunc[RowContext[T], *Node](func(ctx RowContext[T]) *Node {
		return &Node{Kind: KindRow, Key: ctx.Key, Children: ctx.Cells}
	})
}

// DefaultRowKey returns a resolver that keys rows by their record index.
func DefaultRowKey[T any]() Renderer[RowContext[T], string] {
	return RenderFunc[RowContext[T], string](func(ctx RowContext[T]) string {
		return strconv.Itoa(ctx.Index)
	})
}

// FormatValue renders a field value as cell text. Nil renders empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
