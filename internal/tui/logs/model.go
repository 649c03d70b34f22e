// Package logs renders the log messages emitted thus far.
package logs

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/resource"
	"github.com/leg100/flipbook/internal/tui"
	"github.com/leg100/flipbook/internal/tui/keys"
)

const timeFormat = "2006-01-02T15:04:05.000"

// Lister lists log messages.
type Lister interface {
	List() []logging.Message
}

type Model struct {
	logger   Lister
	messages []logging.Message
	viewport viewport.Model
}

func New(logger Lister) *Model {
	return &Model{
		logger:   logger,
		viewport: viewport.New(0, 0),
	}
}

func (m *Model) Init() tea.Cmd {
	m.messages = m.logger.List()
	m.refresh()
	return nil
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height
		m.refresh()
	case resource.Event[logging.Message]:
		if msg.Type == resource.CreatedEvent {
			m.messages = append(m.messages, msg.Payload)
			m.refresh()
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Navigation.LineUp):
			m.viewport.LineUp(1)
		case key.Matches(msg, keys.Navigation.LineDown):
			m.viewport.LineDown(1)
		}
	}
	return nil
}

func (m *Model) refresh() {
	slices.SortFunc(m.messages, logging.BySerialDesc)

	lines := make([]string, len(m.messages))
	for i, msg := range m.messages {
		lines[i] = renderMessage(msg)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func renderMessage(msg logging.Message) string {
	var levelColor lipgloss.TerminalColor
	switch msg.Level {
	case "ERROR":
		levelColor = tui.ErrorLogLevel
	case "WARN":
		levelColor = tui.WarnLogLevel
	case "DEBUG":
		levelColor = tui.DebugLogLevel
	case "INFO":
		levelColor = tui.InfoLogLevel
	}

	// combine message and attributes, separated by spaces, with each
	// attribute key/value joined with a '='
	var b strings.Builder
	b.WriteString(msg.Time.Format(timeFormat))
	b.WriteRune(' ')
	b.WriteString(tui.Bold.Foreground(levelColor).Width(6).Render(msg.Level))
	b.WriteString(msg.Message)
	for _, attr := range msg.Attributes {
		b.WriteRune(' ')
		b.WriteString(tui.Regular.Foreground(tui.LogRecordAttributeKey).Render(attr.Key + "="))
		b.WriteString(attr.Value)
	}
	return b.String()
}

func (m *Model) Title() string {
	return tui.Bold.Render("Logs")
}

func (m *Model) View() string {
	return m.viewport.View()
}

func (m *Model) HelpBindings() []key.Binding {
	return []key.Binding{keys.Navigation.LineUp, keys.Navigation.LineDown}
}
