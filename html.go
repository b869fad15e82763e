package datatable

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Component returns a templ component that renders the table tree n as an
// HTML table. Hidden slots render as empty cells so columns stay aligned.
func Component(n *Node, opts ...WriteOption) templ.Component {
	cfg := newWriteConfig(opts)
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w, cfg: cfg}
		hw.node(n, 0, 0)
		return hw.err
	})
}

func writeHTML(w io.Writer, n *Node, cfg *writeConfig) error {
	hw := &htmlWriter{w: w, cfg: cfg}
	hw.node(n, 0, 0)
	return hw.err
}

// htmlWriter keeps the first write error and ignores later writes.
type htmlWriter struct {
	w   io.Writer
	cfg *writeConfig
	err error
}

func (hw *htmlWriter) printf(format string, args ...any) {
	if hw.err != nil {
		return
	}
	_, hw.err = fmt.Fprintf(hw.w, format, args...)
}

func (hw *htmlWriter) indent(depth int) string { return strings.Repeat("  ", depth) }

func (hw *htmlWriter) node(n *Node, depth, column int) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText:
		hw.printf("%s", templ.EscapeString(n.Text))
	case KindTable:
		hw.printf("%s<table%s>\n", hw.indent(depth), hw.attrs(n, nil))
		if hw.cfg.title != "" {
			hw.printf("%s<caption>%s</caption>\n", hw.indent(depth+1), templ.EscapeString(hw.cfg.title))
		}
		hw.children(n, depth+1)
		hw.printf("%s</table>\n", hw.indent(depth))
	case KindHead:
		hw.block("thead", n, depth)
	case KindBody:
		hw.block("tbody", n, depth)
	case KindFoot:
		hw.block("tfoot", n, depth)
	case KindRow:
		hw.printf("%s<tr%s>\n", hw.indent(depth), hw.attrs(n, [][2]string{{"data-key", n.Key}}))
		col := 0
		for _, c := range n.Children {
			hw.node(c, depth+1, col)
			span := 1
			if c != nil && c.Span > 1 {
				span = c.Span
			}
			col += span
		}
		hw.printf("%s</tr>\n", hw.indent(depth))
	case KindHeaderCell, KindCell, KindFooterCell:
		hw.cell(n, depth, column)
	default:
		hw.children(n, depth)
	}
}

func (hw *htmlWriter) block(tag string, n *Node, depth int) {
	hw.printf("%s<%s%s>\n", hw.indent(depth), tag, hw.attrs(n, nil))
	hw.children(n, depth+1)
	hw.printf("%s</%s>\n", hw.indent(depth), tag)
}

func (hw *htmlWriter) children(n *Node, depth int) {
	for _, c := range n.Children {
		hw.node(c, depth, 0)
	}
}

func (hw *htmlWriter) cell(n *Node, depth, column int) {
	tag := "td"
	if n.Kind == KindHeaderCell {
		tag = "th"
	}
	if n.Hidden {
		hw.printf("%s<%s></%s>\n", hw.indent(depth), tag, tag)
		return
	}

	var extra [][2]string
	if n.Key != "" {
		extra = append(extra, [2]string{"data-key", n.Key})
	}
	if n.Span > 1 {
		extra = append(extra, [2]string{"colspan", strconv.Itoa(n.Span)})
	}
	if n.Sortable {
		extra = append(extra, [2]string{"data-sortable", "true"})
	}
	if n.Order != "" {
		extra = append(extra, [2]string{"data-order", string(n.Order)})
	}
	var style []string
	if n.Width > 0 {
		style = append(style, "width: "+strconv.FormatFloat(n.Width, 'f', -1, 64)+"ch")
	}
	if column < len(hw.cfg.aligns) {
		switch hw.cfg.aligns[column] {
		case AlignRight:
			style = append(style, "text-align: right")
		case AlignCenter:
			style = append(style, "text-align: center")
		}
	}
	if len(style) > 0 {
		extra = append(extra, [2]string{"style", strings.Join(style, "; ")})
	}

	hw.printf("%s<%s%s>", hw.indent(depth), tag, hw.attrs(n, extra))
	href := ""
	if hw.cfg.href != nil {
		href = hw.cfg.href(n)
	}
	if href != "" {
		hw.printf(`<a href="%s">`, templ.EscapeString(href))
	}
	hw.printf("%s", templ.EscapeString(n.Text))
	for _, c := range n.Children {
		hw.node(c, 0, 0)
	}
	if n.Indicator != "" {
		hw.printf(" %s", templ.EscapeString(n.Indicator))
	}
	if href != "" {
		hw.printf("</a>")
	}
	hw.printf("</%s>\n", tag)
}

// attrs renders the extra attributes followed by the node's own, sorted by name.
func (hw *htmlWriter) attrs(n *Node, extra [][2]string) string {
	var sb strings.Builder
	for _, kv := range extra {
		if kv[1] == "" {
			continue
		}
		fmt.Fprintf(&sb, ` %s="%s"`, kv[0], templ.EscapeString(kv[1]))
	}
	for _, k := range slices.Sorted(maps.Keys(n.Attrs)) {
		fmt.Fprintf(&sb, ` %s="%s"`, templ.EscapeString(k), templ.EscapeString(n.Attrs[k]))
	}
	return sb.String()
}
