package tui

import "github.com/charmbracelet/lipgloss"

var (
	Regular        = lipgloss.NewStyle()
	Bold           = Regular.Bold(true)
	Padded         = Regular.Padding(0, 1)
	RoundedBorders = Regular.Border(lipgloss.RoundedBorder())

	// Badge is the rounded teal label used for the page counter and hint.
	Badge = Bold.
		Foreground(White).
		Background(Teal).
		Padding(0, 3)

	Width  = lipgloss.Width
	Height = lipgloss.Height
)
