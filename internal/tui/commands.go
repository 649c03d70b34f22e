package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// CmdHandler wraps a message in a command.
func CmdHandler(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// NavigateTo sends an instruction to navigate to a page of the given kind.
func NavigateTo(kind Kind) tea.Cmd {
	return CmdHandler(NavigationMsg{Page: kind})
}

func ReportError(err error, msg string, args ...any) tea.Cmd {
	return CmdHandler(NewErrorMsg(err, msg, args...))
}

func ReportInfo(msg string, args ...any) tea.Cmd {
	return CmdHandler(InfoMsg(fmt.Sprintf(msg, args...)))
}
