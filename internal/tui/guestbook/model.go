// Package guestbook renders the guestbook: messages left by visitors and a
// form for leaving one.
package guestbook

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leg100/flipbook/internal/guestbook"
	"github.com/leg100/flipbook/internal/resource"
	"github.com/leg100/flipbook/internal/tui"
)

// requestTimeout bounds each call to the board.
const requestTimeout = 30 * time.Second

// composeHeight is the height of the form, including labels and margins.
const composeHeight = 10

type (
	loadedMsg struct {
		messages []guestbook.Message
		err      error
	}
	createdMsg struct {
		message guestbook.Message
		err     error
	}
)

type Model struct {
	board guestbook.Board

	messages []guestbook.Message
	loading  bool
	// err is a failure talking to the board, shown inline.
	err error

	viewport viewport.Model

	composing bool
	posting   bool
	author    textinput.Model
	body      textarea.Model

	now    func() time.Time
	width  int
	height int
}

func New(board guestbook.Board) *Model {
	author := textinput.New()
	author.Placeholder = "Your name"
	author.CharLimit = guestbook.MaxAuthorLength
	author.Prompt = ""

	body := textarea.New()
	body.Placeholder = "Leave a message..."
	body.CharLimit = guestbook.MaxBodyLength
	body.ShowLineNumbers = false
	body.SetHeight(4)

	return &Model{
		board:    board,
		loading:  true,
		viewport: viewport.New(0, 0),
		author:   author,
		body:     body,
		now:      time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msgs, err := m.board.List(ctx)
		return loadedMsg{messages: msgs, err: err}
	}
}

func (m *Model) create(draft guestbook.Draft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msg, err := m.board.Create(ctx, draft)
		return createdMsg{message: msg, err: err}
	}
}

// Capturing is true whilst the user is typing a message.
func (m *Model) Capturing() bool {
	return m.composing
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.author.Width = max(msg.Width-4, 0)
		m.body.SetWidth(max(msg.Width-2, 0))
		m.resize()
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.messages = msg.messages
		}
		m.refresh()
	case createdMsg:
		m.posting = false
		if msg.err != nil {
			// Keep the draft so the user can try again.
			m.err = msg.err
			return nil
		}
		m.err = nil
		m.add(msg.message)
		m.stopComposing()
		return tui.ReportInfo("posted message")
	case resource.Event[guestbook.Message]:
		if msg.Type == resource.CreatedEvent {
			m.add(msg.Payload)
		}
	case tea.KeyMsg:
		if m.composing {
			return m.updateCompose(msg)
		}
		switch {
		case key.Matches(msg, localKeys.Compose):
			return m.startComposing()
		case key.Matches(msg, localKeys.Reload):
			m.loading = true
			return m.load()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	default:
		if m.composing {
			// Blink messages
			var cmd tea.Cmd
			m.author, cmd = m.author.Update(msg)
			cmds = append(cmds, cmd)
			m.body, cmd = m.body.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateCompose(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, localKeys.Cancel):
		m.stopComposing()
		return nil
	case key.Matches(msg, localKeys.Switch):
		if m.author.Focused() {
			m.author.Blur()
			return m.body.Focus()
		}
		m.body.Blur()
		return m.author.Focus()
	case key.Matches(msg, localKeys.Submit):
		if m.posting {
			return nil
		}
		draft, err := guestbook.Draft{
			Author: m.author.Value(),
			Body:   m.body.Value(),
		}.Validate()
		if err != nil {
			m.err = err
			return nil
		}
		m.posting = true
		return m.create(draft)
	}
	var cmd tea.Cmd
	if m.author.Focused() {
		m.author, cmd = m.author.Update(msg)
	} else {
		m.body, cmd = m.body.Update(msg)
	}
	return cmd
}

func (m *Model) startComposing() tea.Cmd {
	m.composing = true
	m.err = nil
	m.resize()
	m.body.Blur()
	return m.author.Focus()
}

func (m *Model) stopComposing() {
	m.composing = false
	m.author.Reset()
	m.body.Reset()
	m.author.Blur()
	m.body.Blur()
	m.resize()
}

// add a message unless it is already listed, which happens when the board
// notifies subscribers of a message this model created.
func (m *Model) add(msg guestbook.Message) {
	if slices.ContainsFunc(m.messages, func(existing guestbook.Message) bool {
		return existing.ID == msg.ID
	}) {
		return
	}
	m.messages = append(m.messages, msg)
	m.refresh()
}

func (m *Model) resize() {
	height := m.height - 1
	if m.composing {
		height -= composeHeight
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(height, 0)
	m.refresh()
}

var (
	authorStyle = tui.Bold.Foreground(tui.Teal)
	timeStyle   = tui.Regular.Foreground(tui.Grey)
	errorStyle  = tui.Regular.Foreground(tui.Red)
	labelStyle  = tui.Bold.Foreground(tui.Accent)
	emptyStyle  = tui.Regular.Foreground(tui.Grey).Italic(true)
)

// refresh re-renders the messages into the viewport, newest first.
func (m *Model) refresh() {
	if len(m.messages) == 0 {
		m.viewport.SetContent(emptyStyle.Render("No messages yet. Press n to leave one."))
		return
	}
	now := m.now()
	bodyStyle := tui.Regular.Width(max(m.width-2, 1)).PaddingLeft(2)

	rendered := make([]string, 0, len(m.messages))
	for _, msg := range slices.Backward(m.messages) {
		rendered = append(rendered, lipgloss.JoinVertical(lipgloss.Left,
			authorStyle.Render(msg.Author)+" "+timeStyle.Render(tui.Ago(now, msg.CreatedAt)),
			bodyStyle.Render(msg.Body),
		))
	}
	m.viewport.SetContent(strings.Join(rendered, "\n\n"))
	m.viewport.GotoTop()
}

func (m *Model) Title() string {
	return tui.Bold.Render("Guestbook")
}

func (m *Model) HelpBindings() []key.Binding {
	if m.composing {
		return []key.Binding{localKeys.Submit, localKeys.Switch, localKeys.Cancel}
	}
	return []key.Binding{localKeys.Compose, localKeys.Reload}
}

func (m *Model) View() string {
	var statusLine string
	switch {
	case m.err != nil:
		statusLine = errorStyle.Render("Error: " + m.err.Error())
	case m.loading:
		statusLine = timeStyle.Render("Loading messages...")
	case m.posting:
		statusLine = timeStyle.Render("Posting...")
	}
	parts := []string{statusLine, m.viewport.View()}
	if m.composing {
		parts = append(parts,
			"",
			labelStyle.Render("Name"),
			"> "+m.author.View(),
			labelStyle.Render("Message"),
			m.body.View(),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
