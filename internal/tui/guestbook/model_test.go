package guestbook

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leg100/flipbook/internal/guestbook"
	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/resource"
	"github.com/leg100/flipbook/internal/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("board offline")

// brokenBoard fails every request.
type brokenBoard struct {
	guestbook.Board
}

func (brokenBoard) List(context.Context) ([]guestbook.Message, error) {
	return nil, errOffline
}

func (brokenBoard) Create(context.Context, guestbook.Draft) (guestbook.Message, error) {
	return guestbook.Message{}, errOffline
}

func setup(t *testing.T, board guestbook.Board) *Model {
	t.Helper()

	m := New(board)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m.Update(m.Init()())
	return m
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestModel_Empty(t *testing.T) {
	m := setup(t, guestbook.NewMemory(logging.Discard))

	assert.Contains(t, m.View(), "No messages yet")
}

func TestModel_Post(t *testing.T) {
	board := guestbook.NewMemory(logging.Discard)
	t.Cleanup(func() { board.Close() })
	m := setup(t, board)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	require.True(t, m.Capturing())

	typeText(m, "Alice")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "Merry Christmas!")

	cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	info := m.Update(cmd())
	require.NotNil(t, info)
	assert.Equal(t, tui.InfoMsg("posted message"), info())

	assert.False(t, m.Capturing())
	view := m.View()
	assert.Contains(t, view, "Alice")
	assert.Contains(t, view, "Merry Christmas!")

	msgs, err := board.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestModel_InvalidDraft(t *testing.T) {
	m := setup(t, guestbook.NewMemory(logging.Discard))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	typeText(m, "Alice")
	cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.True(t, m.Capturing())
	assert.Contains(t, m.View(), guestbook.ErrEmptyBody.Error())
}

func TestModel_BoardFailure(t *testing.T) {
	m := setup(t, brokenBoard{})

	assert.Contains(t, m.View(), "Error: board offline")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	typeText(m, "Bob")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "hello")
	cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m.Update(cmd())

	// inline error, draft retained, no retry
	assert.True(t, m.Capturing())
	assert.Equal(t, "Bob", m.author.Value())
	assert.Contains(t, m.View(), "Error: board offline")
}

func TestModel_SubscribedInserts(t *testing.T) {
	m := setup(t, guestbook.NewMemory(logging.Discard))

	msg := guestbook.Message{
		ID:        "msg-1",
		Author:    "Carol",
		Body:      "Lovely photos",
		CreatedAt: time.Now(),
	}
	m.Update(resource.NewEvent(resource.CreatedEvent, msg))
	m.Update(resource.NewEvent(resource.CreatedEvent, msg))

	assert.Len(t, m.messages, 1)
	assert.Contains(t, m.View(), "Lovely photos")
}
