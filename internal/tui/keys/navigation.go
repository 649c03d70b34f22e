package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

type navigation struct {
	Next     key.Binding
	Previous key.Binding
	LineUp   key.Binding
	LineDown key.Binding
}

// Navigation returns key bindings for navigation.
var Navigation = navigation{
	Next: key.NewBinding(
		key.WithKeys("right", " ", "pgdown"),
		key.WithHelp("→", "next page"),
	),
	Previous: key.NewBinding(
		key.WithKeys("left", "pgup"),
		key.WithHelp("←", "previous page"),
	),
	LineUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	LineDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}
