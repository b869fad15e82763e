package browse

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the browser's key bindings.
type KeyMap struct {
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Sort   key.Binding
	Cell   key.Binding
	Footer key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns arrow and vi style bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "column"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "row"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "row"),
		),
		Sort: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter/space", "sort"),
		),
		Cell: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "click cell"),
		),
		Footer: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "click footer"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// bindings lists the bindings shown in the help line.
func (k KeyMap) bindings() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Sort, k.Cell, k.Footer, k.Quit}
}
