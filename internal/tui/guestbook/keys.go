package guestbook

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Compose key.Binding
	Submit  key.Binding
	Cancel  key.Binding
	Switch  key.Binding
	Reload  key.Binding
}

var localKeys = keyMap{
	Compose: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new message"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "post"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Switch: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch field"),
	),
	Reload: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reload"),
	),
}
