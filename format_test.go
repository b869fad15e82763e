package datatable_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bjaus/datatable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemTable(mods ...func(*datatable.Props[item])) *datatable.Node {
	p := datatable.Props[item]{
		Data:    items(),
		Columns: datatable.Labels("name", "Name", "qty", "Qty"),
	}
	for _, m := range mods {
		m(&p)
	}
	return datatable.New[item]().Render(p)
}

func marshal(t *testing.T, f datatable.Format, n *datatable.Node, opts ...datatable.WriteOption) string {
	t.Helper()
	b, err := datatable.Marshal(f, n, opts...)
	require.NoError(t, err)
	return string(b)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input   string
		want    datatable.Format
		wantErr require.ErrorAssertionFunc
	}{
		"table":       {input: "table", want: datatable.TextTable, wantErr: require.NoError},
		"plain":       {input: "plain", want: datatable.Plain, wantErr: require.NoError},
		"markdown":    {input: "markdown", want: datatable.Markdown, wantErr: require.NoError},
		"html":        {input: "html", want: datatable.HTML, wantErr: require.NoError},
		"csv":         {input: "csv", want: datatable.CSV, wantErr: require.NoError},
		"tsv":         {input: "tsv", want: datatable.TSV, wantErr: require.NoError},
		"json":        {input: "json", want: datatable.JSON, wantErr: require.NoError},
		"jsonl":       {input: "jsonl", want: datatable.JSONL, wantErr: require.NoError},
		"yaml":        {input: "yaml", want: datatable.YAML, wantErr: require.NoError},
		"go-template": {input: "go-template={{.Key}}", want: datatable.GoTemplate("{{.Key}}"), wantErr: require.NoError},
		"unknown":     {input: "xml", want: "", wantErr: require.Error},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := datatable.ParseFormat(tt.input)
			tt.wantErr(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormats(t *testing.T) {
	t.Parallel()
	got := datatable.Formats()
	assert.Equal(t, []datatable.Format{
		datatable.TextTable, datatable.Plain, datatable.Markdown, datatable.HTML,
		datatable.CSV, datatable.TSV, datatable.JSON, datatable.JSONL, datatable.YAML,
		datatable.List, datatable.Env,
	}, got)
	// Returned slice must be a copy.
	got[0] = "modified"
	assert.Equal(t, datatable.TextTable, datatable.Formats()[0])
	assert.Equal(t, "table", datatable.TextTable.String())
}

func TestParseBorder(t *testing.T) {
	t.Parallel()
	b, err := datatable.ParseBorder("Heavy")
	require.NoError(t, err)
	assert.Equal(t, datatable.BorderHeavy, b)

	_, err = datatable.ParseBorder("dotted")
	require.ErrorIs(t, err, datatable.ErrUnsupportedFormat)
}

// --- Text ---

func TestWriteTextRounded(t *testing.T) {
	t.Parallel()
	want := "" +
		"╭──────┬─────╮\n" +
		"│ Name │ Qty │\n" +
		"├──────┼─────┤\n" +
		"│ b    │ 3   │\n" +
		"│ a    │ 5   │\n" +
		"╰──────┴─────╯\n"
	assert.Equal(t, want, marshal(t, datatable.TextTable, itemTable()))
}

func TestWriteTextBorders(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		border datatable.BorderStyle
		want   []string
	}{
		"ascii":  {border: datatable.BorderASCII, want: []string{"+------+-----+", "| b    | 3   |"}},
		"heavy":  {border: datatable.BorderHeavy, want: []string{"┏", "┃", "╋", "┛"}},
		"double": {border: datatable.BorderDouble, want: []string{"╔", "║", "╬", "╝"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out := marshal(t, datatable.TextTable, itemTable(), datatable.WithBorder(tt.border))
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestWritePlain(t *testing.T) {
	t.Parallel()
	want := "Name  Qty\n----  ---\nb     3\na     5\n"
	assert.Equal(t, want, marshal(t, datatable.Plain, itemTable()))
	// Plain ignores the border option.
	assert.Equal(t, want, marshal(t, datatable.Plain, itemTable(), datatable.WithBorder(datatable.BorderDouble)))
	assert.Equal(t, want, marshal(t, datatable.TextTable, itemTable(), datatable.WithBorder(datatable.BorderNone)))
}

func TestWritePlainFooter(t *testing.T) {
	t.Parallel()
	n := itemTable(func(p *datatable.Props[item]) {
		p.Columns = datatable.Schema{
			{Key: "name", Def: datatable.Label("Name")},
			{Key: "qty", Def: datatable.Column{Header: "Qty", Footer: "8", Sortable: true}},
		}
	})
	want := "Name  Qty\n----  ---\nb     3\na     5\n----  ---\n      8\n"
	assert.Equal(t, want, marshal(t, datatable.Plain, n))
}

func TestWritePlainGroups(t *testing.T) {
	t.Parallel()
	n := datatable.New[member]().Render(datatable.Props[member]{
		Data:    []member{{Name: "c", Team: "red"}, {Name: "a", Team: "blue"}, {Name: "b", Team: "red"}},
		Columns: datatable.Labels("name", "Name", "team", "Team"),
		GroupBy: "team",
	})
	want := "Name  Team\n----  ----\na     blue\n----  ----\nc     red\nb     red\n"
	assert.Equal(t, want, marshal(t, datatable.Plain, n))
}

func TestWritePlainPlaceholder(t *testing.T) {
	t.Parallel()
	n := itemTable(func(p *datatable.Props[item]) {
		p.Data = nil
		p.Placeholder = datatable.Text("No rows")
	})
	assert.Equal(t, "Name     Qty\n-------  ---\nNo rows\n", marshal(t, datatable.Plain, n))
}

func TestWriteTextEmpty(t *testing.T) {
	t.Parallel()
	n := datatable.New[item]().Render(datatable.Props[item]{})
	assert.Empty(t, marshal(t, datatable.TextTable, n))
	assert.Empty(t, marshal(t, datatable.Markdown, n))
}

func TestWriteTextSortIndicator(t *testing.T) {
	t.Parallel()
	n := itemTable(func(p *datatable.Props[item]) { p.SortBy = datatable.SortKey("-qty") })
	out := marshal(t, datatable.Plain, n)
	assert.Contains(t, out, "Qty ▼")
	assert.Less(t, strings.Index(out, "\na "), strings.Index(out, "\nb "))
}

func TestWriteTextTitleAndCaption(t *testing.T) {
	t.Parallel()
	out := marshal(t, datatable.TextTable, itemTable(), datatable.WithTitle("People"), datatable.WithCaption("2 rows"))
	lines := strings.Split(out, "\n")
	assert.Equal(t, "╭────────────╮", lines[0])
	assert.Equal(t, "│   People   │", lines[1])
	assert.Equal(t, "├──────┬─────┤", lines[2])
	assert.True(t, strings.HasSuffix(out, "╯\n2 rows\n"))
}

func TestWriteTextTruncated(t *testing.T) {
	t.Parallel()
	n := datatable.New[item]().Render(datatable.Props[item]{
		Data: []item{{Name: "alphabet", Qty: 1}},
		Columns: datatable.Schema{
			{Key: "name", Def: datatable.Column{Header: "Name", Width: 4}},
			{Key: "qty", Def: datatable.Column{Header: "Q", Width: 1}},
		},
	})
	out := marshal(t, datatable.Plain, n)
	assert.Contains(t, out, "a...")
	assert.NotContains(t, out, "alphabet")
}

func TestWriteTextStylesAndAlignment(t *testing.T) {
	t.Parallel()
	bracket := func(s string) string { return "[" + s + "]" }
	out := marshal(t, datatable.Plain, itemTable(),
		datatable.WithStyles(bracket),
		datatable.WithAlignments(datatable.AlignRight),
	)
	assert.Contains(t, out, "[Name]")
	assert.Contains(t, out, "[   b]")
}

// --- Markdown ---

func TestWriteMarkdown(t *testing.T) {
	t.Parallel()
	want := "| Name | Qty |\n| ---- | --- |\n| b    | 3   |\n| a    | 5   |\n"
	assert.Equal(t, want, marshal(t, datatable.Markdown, itemTable()))
}

func TestWriteMarkdownAlignedAndEscaped(t *testing.T) {
	t.Parallel()
	n := datatable.New[item]().Render(datatable.Props[item]{
		Data:    []item{{Name: "a|b", Qty: 1}},
		Columns: datatable.Labels("name", "N", "qty", "Q"),
	})
	out := marshal(t, datatable.Markdown, n, datatable.WithAlignments(datatable.AlignCenter, datatable.AlignRight))
	assert.Contains(t, out, "| :--: | --: |")
	assert.Contains(t, out, `a\|b`)
}

func TestWriteMarkdownFooter(t *testing.T) {
	t.Parallel()
	n := itemTable(func(p *datatable.Props[item]) {
		p.Columns = datatable.Schema{
			{Key: "name", Def: datatable.Column{Header: "Name", Footer: "Total"}},
			{Key: "qty", Def: datatable.Label("Qty")},
		}
	})
	assert.Contains(t, marshal(t, datatable.Markdown, n), "| **Total** |     |\n")
}

// --- Delimited ---

func TestWriteCSV(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		node *datatable.Node
		want string
	}{
		"basic": {
			node: itemTable(),
			want: "Name,Qty\nb,3\na,5\n",
		},
		"sorted": {
			node: itemTable(func(p *datatable.Props[item]) { p.SortBy = datatable.SortKey("name") }),
			want: "Name,Qty\na,5\nb,3\n",
		},
		"indexed": {
			node: itemTable(func(p *datatable.Props[item]) { p.Indexed = true }),
			want: "#,Name,Qty\n1,b,3\n2,a,5\n",
		},
		"no header": {
			node: itemTable(func(p *datatable.Props[item]) { p.NoHeader = true }),
			want: "b,3\na,5\n",
		},
		"hidden column": {
			node: itemTable(func(p *datatable.Props[item]) {
				p.Columns = datatable.Schema{
					{Key: "name", Def: datatable.Column{Header: "Name", Hidden: true}},
					{Key: "qty", Def: datatable.Label("Qty")},
				}
			}),
			want: "Qty\n3\n5\n",
		},
		"placeholder excluded": {
			node: itemTable(func(p *datatable.Props[item]) {
				p.Data = nil
				p.Placeholder = datatable.Text("No rows")
			}),
			want: "Name,Qty\n",
		},
		"quoted": {
			node: datatable.New[item]().Render(datatable.Props[item]{Data: []item{{Name: "hello, world"}}}),
			want: "name,qty\n\"hello, world\",0\n",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, marshal(t, datatable.CSV, tt.node))
		})
	}
}

func TestWriteTSV(t *testing.T) {
	t.Parallel()
	n := datatable.New[item]().Render(datatable.Props[item]{
		Data:    []item{{Name: "tab\there", Qty: 1}},
		Columns: datatable.Labels("name", "Name", "qty", "Qty"),
	})
	assert.Equal(t, "Name\tQty\ntab here\t1\n", marshal(t, datatable.TSV, n))
}

// --- Structured ---

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	out := marshal(t, datatable.JSON, itemTable())
	assert.JSONEq(t, `[{"name":"b","qty":3},{"name":"a","qty":5}]`, out)
	assert.Less(t, strings.Index(out, `"name"`), strings.Index(out, `"qty"`))
	assert.Contains(t, out, "  {\n")
}

func TestWriteJSONPlaceholder(t *testing.T) {
	t.Parallel()
	n := itemTable(func(p *datatable.Props[item]) {
		p.Data = nil
		p.Placeholder = datatable.Text("No rows")
	})
	assert.Equal(t, "[]\n", marshal(t, datatable.JSON, n))
}

func TestWriteJSONL(t *testing.T) {
	t.Parallel()
	want := `{"name":"b","qty":3}` + "\n" + `{"name":"a","qty":5}` + "\n"
	assert.Equal(t, want, marshal(t, datatable.JSONL, itemTable()))
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()
	want := "- name: b\n  qty: 3\n- name: a\n  qty: 5\n"
	assert.Equal(t, want, marshal(t, datatable.YAML, itemTable()))
}

func TestWriteList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "b\na\n", marshal(t, datatable.List, itemTable()))
	assert.Empty(t, marshal(t, datatable.List, itemTable(func(p *datatable.Props[item]) {
		p.Data = nil
		p.Placeholder = datatable.Text("none")
	})))
}

func TestWriteEnv(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		props func(*datatable.Props[item])
		want  string
	}{
		"blocks per row": {
			want: "NAME=b\nQTY=3\n\nNAME=a\nQTY=5\n",
		},
		"quoted values": {
			props: func(p *datatable.Props[item]) { p.Data = []item{{Name: "two words", Qty: 1}} },
			want:  "NAME=\"two words\"\nQTY=1\n",
		},
		"index key": {
			props: func(p *datatable.Props[item]) {
				p.Data = p.Data[:1]
				p.Indexed = true
			},
			want: "_INDEX=1\nNAME=b\nQTY=3\n",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var mods []func(*datatable.Props[item])
			if tt.props != nil {
				mods = append(mods, tt.props)
			}
			assert.Equal(t, tt.want, marshal(t, datatable.Env, itemTable(mods...)))
		})
	}
}

func TestWriteGoTemplate(t *testing.T) {
	t.Parallel()
	n := itemTable(func(p *datatable.Props[item]) { p.SortBy = datatable.SortKey("name") })
	out := marshal(t, datatable.GoTemplate(`{{.Position}} {{.Key}}={{index .Cells "name"}}/{{index .Values "qty"}}`), n)
	assert.Equal(t, "0 1=a/5\n1 0=b/3\n", out)
}

func TestWriteGoTemplateGroups(t *testing.T) {
	t.Parallel()
	n := datatable.New[member]().Render(datatable.Props[member]{
		Data:    []member{{Name: "x", Team: "red"}},
		GroupBy: "team",
	})
	assert.Equal(t, "red\n", marshal(t, datatable.GoTemplate("{{.Group}}"), n))
}

// --- HTML ---

func TestWriteHTML(t *testing.T) {
	t.Parallel()
	n := itemTable(func(p *datatable.Props[item]) { p.SortBy = datatable.SortKey("name") })
	out := marshal(t, datatable.HTML, n, datatable.WithTitle("Stock"))
	assert.True(t, strings.HasPrefix(out, "<table>\n  <caption>Stock</caption>\n  <thead>\n"))
	assert.Contains(t, out, `<th data-key="name" data-sortable="true" data-order="ascending">Name ▲</th>`)
	assert.Contains(t, out, `<th data-key="qty" data-sortable="true">Qty</th>`)
	assert.Contains(t, out, `<tr data-key="1">`)
	assert.Contains(t, out, `<td data-key="qty">5</td>`)
	assert.True(t, strings.HasSuffix(out, "</table>\n"))
}

func TestWriteHTMLEscapesAndLinks(t *testing.T) {
	t.Parallel()
	n := datatable.New[item]().Render(datatable.Props[item]{
		Data:    []item{{Name: "<b>", Qty: 1}},
		Columns: datatable.Labels("name", "Name", "qty", "Qty"),
	})
	href := func(c *datatable.Node) string {
		if c.Kind == datatable.KindCell && c.Key == "name" {
			return "/cell?key=" + c.Key + "&x=1"
		}
		return ""
	}
	out := marshal(t, datatable.HTML, n, datatable.WithHref(href), datatable.WithAlignments(datatable.AlignLeft, datatable.AlignRight))
	assert.Contains(t, out, `<td data-key="name"><a href="/cell?key=name&amp;x=1">&lt;b&gt;</a></td>`)
	assert.Contains(t, out, `<td data-key="qty" style="text-align: right">1</td>`)
	assert.NotContains(t, out, "<b>")
}

func TestWriteHTMLPlaceholderAndHidden(t *testing.T) {
	t.Parallel()
	n := itemTable(func(p *datatable.Props[item]) {
		p.Data = nil
		p.Indexed = true
		p.Placeholder = datatable.Text("Nothing")
		p.Columns = datatable.Schema{
			{Key: "name", Def: datatable.Column{Header: "Name", Hidden: true}},
			{Key: "qty", Def: datatable.Column{Header: "Qty", Width: 6}},
		}
	})
	out := marshal(t, datatable.HTML, n)
	assert.Contains(t, out, `<td colspan="2">Nothing</td>`)
	assert.Contains(t, out, "<th></th>")
	assert.Contains(t, out, `<th data-key="qty" style="width: 6ch">Qty</th>`)
}

func TestComponent(t *testing.T) {
	t.Parallel()
	n := itemTable()
	var buf bytes.Buffer
	require.NoError(t, datatable.Component(n).Render(context.Background(), &buf))
	assert.Equal(t, marshal(t, datatable.HTML, n), buf.String())
}

// --- Errors ---

func TestWriteErrors(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.ErrorIs(t, datatable.Write(&buf, datatable.JSON, nil), datatable.ErrNotTable)
	require.ErrorIs(t, datatable.Write(&buf, datatable.Format("xml"), itemTable()), datatable.ErrUnsupportedFormat)
	require.ErrorIs(t, datatable.Write(&buf, datatable.GoTemplate("{{"), itemTable()), datatable.ErrInvalidTemplate)
	assert.Empty(t, buf.String())

	_, err := datatable.Marshal(datatable.HTML, nil)
	require.ErrorIs(t, err, datatable.ErrNotTable)
}

func TestWriteErrorPropagates(t *testing.T) {
	t.Parallel()
	all := append(datatable.Formats(), datatable.GoTemplate("{{.Key}}"))
	for _, f := range all {
		t.Run(f.String(), func(t *testing.T) {
			t.Parallel()
			err := datatable.Write(&errWriter{}, f, itemTable(), datatable.WithTitle("T"))
			require.Error(t, err)
		})
	}
}
