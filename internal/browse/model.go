// Package browse is an interactive terminal view of a record table.
//
// Column selection and header clicks drive the table's own sort cycle, so
// the terminal behaves like any other host of an uncontrolled table.
package browse

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bjaus/datatable"
	"github.com/bjaus/datatable/internal/source"
)

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Options configure the browser.
type Options struct {
	Schema      datatable.Schema
	GroupBy     string
	Indexed     bool
	NoHeader    bool
	Placeholder string
	// SortBy fixes the sort; header clicks then leave it unchanged.
	SortBy string
	Border datatable.BorderStyle
	Title  string
	Logger *slog.Logger
}

// Model is the bubbletea model for the browser.
type Model struct {
	table *datatable.Table[source.Row]
	rows  []source.Row
	opts  Options
	keys  KeyMap

	root    *datatable.Node
	columns []string
	rowKeys []string

	column int
	cursor int
	notice string
	width  int
}

// New returns a browser over rows.
func New(rows []source.Row, opts Options) Model {
	m := Model{
		table: datatable.New(datatable.WithLogger[source.Row](opts.Logger)),
		rows:  rows,
		opts:  opts,
		keys:  DefaultKeyMap(),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Left):
			if m.column > 0 {
				m.column--
			}
		case key.Matches(msg, m.keys.Right):
			if m.column < len(m.columns)-1 {
				m.column++
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rowKeys)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Sort):
			m.click(func(root *datatable.Node) *datatable.Node {
				return root.Find(datatable.KindHeaderCell, m.Selected())
			})
		case key.Matches(msg, m.keys.Cell):
			if m.cursor < len(m.rowKeys) {
				row := m.rowKeys[m.cursor]
				m.click(func(root *datatable.Node) *datatable.Node {
					return root.FindCell(row, m.Selected())
				})
			}
		case key.Matches(msg, m.keys.Footer):
			m.click(func(root *datatable.Node) *datatable.Node {
				return root.Find(datatable.KindFooterCell, m.Selected())
			})
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	styles := make([]func(string) string, len(m.columns))
	if m.column < len(styles) {
		styles[m.column] = selectedStyle.Render
	}
	out, err := datatable.Marshal(datatable.TextTable, m.root,
		datatable.WithBorder(m.opts.Border),
		datatable.WithTitle(m.opts.Title),
		datatable.WithStyles(styles...),
	)
	if err != nil {
		return "error: " + err.Error() + "\n"
	}

	var b strings.Builder
	b.Write(out)
	b.WriteString(statusStyle.Render(m.fit(m.Status())))
	b.WriteByte('\n')
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.fit(m.notice)))
		b.WriteByte('\n')
	}
	b.WriteString(helpStyle.Render(m.fit(m.help())))
	b.WriteByte('\n')
	return b.String()
}

// State returns the table's sort state.
func (m Model) State() datatable.SortState { return m.table.State() }

// Selected returns the key of the selected column.
func (m Model) Selected() string {
	if m.column < len(m.columns) {
		return m.columns[m.column]
	}
	return ""
}

// Cursor returns the display position of the row cursor.
func (m Model) Cursor() int { return m.cursor }

// Notice returns the message left by the last data or footer click.
func (m Model) Notice() string { return m.notice }

// Status describes the sort and the cursor position.
func (m Model) Status() string {
	s := m.table.State()
	status := "unsorted"
	if s.Sorting != nil {
		status = fmt.Sprintf("sorted by %s %s", s.Sorting.Column, s.Sorting.Order.Indicator())
	}
	if s.Controlled {
		status += " (fixed)"
	}
	if len(m.rowKeys) > 0 {
		status += fmt.Sprintf(" · row %d/%d", m.cursor+1, len(m.rowKeys))
	}
	return status
}

// click renders a fresh tree whose handlers report into m, clicks the node
// chosen by find and re-renders.
func (m *Model) click(find func(*datatable.Node) *datatable.Node) {
	if n := find(m.render()); n != nil && !n.Hidden {
		n.Click(nil)
	}
	m.refresh()
}

func (m *Model) render() *datatable.Node {
	p := datatable.Props[source.Row]{
		Data:     m.rows,
		Columns:  m.opts.Schema,
		GroupBy:  m.opts.GroupBy,
		Indexed:  m.opts.Indexed,
		NoHeader: m.opts.NoHeader,
		OnDataClick: func(ev datatable.Event[source.Row]) {
			m.notice = fmt.Sprintf("row %d, %s = %s", ev.Row+1, ev.Key, datatable.FormatValue(ev.Value))
		},
		OnFooterClick: func(ev datatable.Event[source.Row]) {
			m.notice = "footer " + ev.Key
		},
	}
	if m.opts.SortBy != "" {
		p.SortBy = datatable.SortKey(m.opts.SortBy)
	}
	if m.opts.Placeholder != "" {
		p.Placeholder = datatable.Text(m.opts.Placeholder)
	}
	return m.table.Render(p)
}

// refresh re-renders and recomputes the selectable columns and rows.
func (m *Model) refresh() {
	m.root = m.render()

	m.rowKeys = nil
	var first *datatable.Node
	for _, row := range m.root.BodyRows() {
		if row.IsPlaceholder() {
			continue
		}
		if first == nil {
			first = row
		}
		m.rowKeys = append(m.rowKeys, row.Key)
	}

	// Columns come from the header row, or the first body row without one.
	keyRow := first
	if head := m.root.Section(datatable.KindHead); head != nil && len(head.Rows()) > 0 {
		keyRow = head.Rows()[0]
	}
	m.columns = nil
	if keyRow != nil {
		for _, c := range keyRow.Cells() {
			if !c.Hidden {
				m.columns = append(m.columns, c.Key)
			}
		}
	}

	m.column = clamp(m.column, len(m.columns))
	m.cursor = clamp(m.cursor, len(m.rowKeys))
}

func (m Model) help() string {
	parts := make([]string, 0, len(m.keys.bindings()))
	for _, b := range m.keys.bindings() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

// fit truncates s to the window width once the size is known.
func (m Model) fit(s string) string {
	if m.width <= 0 {
		return s
	}
	return runewidth.Truncate(s, m.width, "…")
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
