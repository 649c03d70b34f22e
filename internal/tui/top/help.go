package top

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/leg100/flipbook/internal/tui"
)

var (
	helpKeyStyle  = tui.Bold.Foreground(tui.Teal).Margin(0, 1, 0, 0)
	helpDescStyle = tui.Regular.Foreground(tui.Grey)
	helpSeparator = helpDescStyle.Render(" • ")

	longHelpHeadingStyle = tui.Bold.Foreground(tui.Accent).Margin(0, 3, 0, 0)
	longHelpKeyStyle     = helpKeyStyle
	longHelpDescStyle    = helpDescStyle.Margin(0, 3, 0, 0)
)

// shortHelpView renders help for key bindings on a single line, omitting
// bindings that would exceed the maximum width.
func shortHelpView(bindings []key.Binding, maxWidth int) string {
	var (
		b     strings.Builder
		width int
	)
	for _, kb := range bindings {
		item := helpKeyStyle.Render(kb.Help().Key) + helpDescStyle.Render(kb.Help().Desc)
		if width > 0 {
			item = helpSeparator + item
		}
		if width+lipgloss.Width(item) > maxWidth {
			break
		}
		b.WriteString(item)
		width += lipgloss.Width(item)
	}
	return b.String()
}

// helpSection is a headed column of key bindings in the full help.
type helpSection struct {
	heading  string
	bindings []key.Binding
}

// fullHelpView renders a column for each section of key bindings. Empty
// sections are skipped.
func fullHelpView(sections ...helpSection) string {
	columns := make([]string, 0, len(sections))
	for _, section := range sections {
		if len(section.bindings) == 0 {
			continue
		}
		keys := make([]string, len(section.bindings))
		descs := make([]string, len(section.bindings))
		for i, kb := range section.bindings {
			keys[i] = longHelpKeyStyle.Render(kb.Help().Key)
			descs[i] = longHelpDescStyle.Render(kb.Help().Desc)
		}
		columns = append(columns, lipgloss.JoinVertical(lipgloss.Top,
			longHelpHeadingStyle.Render(section.heading),
			lipgloss.JoinHorizontal(lipgloss.Left,
				strings.Join(keys, "\n"),
				strings.Join(descs, "\n"),
			),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, columns...)
}
