package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

type global struct {
	Book      key.Binding
	Guestbook key.Binding
	Logs      key.Binding
	Music     key.Binding
	Escape    key.Binding
	Quit      key.Binding
	Help      key.Binding
}

var Global = global{
	Book: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "book"),
	),
	Guestbook: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "guestbook"),
	),
	Logs: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "logs"),
	),
	Music: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "music on/off"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}
