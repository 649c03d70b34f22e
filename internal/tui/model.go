package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ChildModel is a page within the top-level model.
type ChildModel interface {
	Init() tea.Cmd
	Update(tea.Msg) tea.Cmd
	View() string
}

// ModelTitle is a model that renders a title.
type ModelTitle interface {
	Title() string
}

// ModelStatus is a model that renders a status to the right of its title.
type ModelStatus interface {
	Status() string
}

// ModelHelpBindings is a model that has its own key bindings.
type ModelHelpBindings interface {
	HelpBindings() []key.Binding
}

// ModelCapturer is a model that may want to receive every key press, such as
// when the user is typing into a text field.
type ModelCapturer interface {
	Capturing() bool
}
