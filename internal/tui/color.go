package tui

import "github.com/charmbracelet/lipgloss"

// The book's teal palette.
const (
	Base         = lipgloss.Color("#cef1f0")
	DarkerShade  = lipgloss.Color("#9ed4d3")
	LighterShade = lipgloss.Color("#e5f8f7")
	Accent       = lipgloss.Color("#7fc7c5")
	Teal         = lipgloss.Color("#2c7e7c")
)

const (
	Black      = lipgloss.Color("#000000")
	White      = lipgloss.Color("#ffffff")
	Red        = lipgloss.Color("#FF5353")
	Yellow     = lipgloss.Color("#DBBD70")
	Green      = lipgloss.Color("34")
	LightGreen = lipgloss.Color("86")
	Blue       = lipgloss.Color("63")
	Grey       = lipgloss.Color("#737373")
	LightGrey  = lipgloss.Color("245")
)

var (
	DebugLogLevel = Blue
	InfoLogLevel  = lipgloss.AdaptiveColor{Dark: string(LightGreen), Light: string(Green)}
	ErrorLogLevel = Red
	WarnLogLevel  = Yellow

	LogRecordAttributeKey = lipgloss.AdaptiveColor{Dark: string(LightGrey), Light: string(LightGrey)}

	HelpKey = lipgloss.AdaptiveColor{
		Dark:  "ff",
		Light: "",
	}
	HelpDesc = lipgloss.AdaptiveColor{
		Dark:  "248",
		Light: "246",
	}

	SparkleColor = lipgloss.AdaptiveColor{Dark: string(LighterShade), Light: string(Teal)}
)
