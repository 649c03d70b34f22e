package top

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/leg100/flipbook/internal/audio"
	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/resource"
	"github.com/leg100/flipbook/internal/tui"
	"github.com/leg100/flipbook/internal/tui/book"
	"github.com/leg100/flipbook/internal/tui/guestbook"
	"github.com/leg100/flipbook/internal/tui/keys"
	"github.com/leg100/flipbook/internal/tui/logs"
	"github.com/leg100/flipbook/internal/version"
)

// Player toggles background music.
type Player interface {
	Toggle() error
	Playing() bool
}

type model struct {
	pages    map[tui.Kind]tui.ChildModel
	current  tui.Kind
	previous tui.Kind

	player Player
	logger logging.Interface

	width  int
	height int

	showHelp bool

	showQuitPrompt bool
	quitPrompt     textinput.Model

	// Either an error or an informational message is rendered in the footer.
	err  error
	info string

	// playing mirrors the player, updated upon its status events.
	playing bool

	dump *os.File
}

func newModel(opts Options) (model, error) {
	var dump *os.File
	if opts.Debug {
		var err error
		dump, err = os.OpenFile("messages.log", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return model{}, err
		}
	}
	logger := logging.Interface(logging.Discard)
	if opts.Logger != nil {
		logger = opts.Logger
	}

	pages := map[tui.Kind]tui.ChildModel{
		tui.BookKind: book.New(book.Options{
			Session:      opts.Session,
			Title:        opts.Title,
			WindowRadius: opts.WindowRadius,
			HintDuration: opts.HintDuration,
		}),
	}
	if opts.Board != nil {
		pages[tui.GuestbookKind] = guestbook.New(opts.Board)
	}
	if opts.Logger != nil {
		pages[tui.LogsKind] = logs.New(opts.Logger)
	}

	m := model{
		pages:   pages,
		current: tui.BookKind,
		logger:  logger,
		dump:    dump,
	}
	if opts.Player != nil {
		m.player = opts.Player
		m.playing = opts.Player.Playing()
	}
	return m, nil
}

func (m model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.pages))
	for _, page := range m.pages {
		cmds = append(cmds, page.Init())
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.dump != nil {
		spew.Fdump(m.dump, msg)
	}

	if m.showQuitPrompt {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch {
			case key.Matches(msg, keys.Global.Quit):
				// pressing quit again quits the app
				return m, tea.Quit
			case key.Matches(msg, localKeys.Yes):
				// 'y' quits the app
				return m, tea.Quit
			default:
				// any other key closes the prompt and returns to the app
				m.showQuitPrompt = false
				m.info = "canceled quitting flipbook"
			}
			return m, nil
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// amend msg to account for header etc, and forward to all pages.
		msg = tea.WindowSizeMsg{
			Height: m.viewHeight(),
			Width:  m.width,
		}
		return m, m.updateAll(msg)
	case tea.KeyMsg:
		// Pressing any key makes any info/error message in the footer disappear
		m.info = ""
		m.err = nil

		if m.capturing() && msg.Type != tea.KeyCtrlC {
			// Send every key but ctrl-c to the page the user is typing into.
			return m, m.pages[m.current].Update(msg)
		}

		switch {
		case key.Matches(msg, keys.Global.Quit):
			// quitting, but not before prompting the user for confirmation.
			m.quitPrompt = textinput.New()
			m.quitPrompt.Prompt = ""
			m.quitPrompt.Focus()
			m.showQuitPrompt = true
			return m, textinput.Blink
		case key.Matches(msg, keys.Global.Escape):
			// <esc> closes help or goes back to last page
			if m.showHelp {
				m.showHelp = false
			} else {
				m.navigate(m.previous)
			}
		case key.Matches(msg, keys.Global.Help):
			// '?' toggles help
			m.showHelp = !m.showHelp
		case key.Matches(msg, keys.Global.Book):
			return m, tui.NavigateTo(tui.BookKind)
		case key.Matches(msg, keys.Global.Guestbook):
			return m, tui.NavigateTo(tui.GuestbookKind)
		case key.Matches(msg, keys.Global.Logs):
			return m, tui.NavigateTo(tui.LogsKind)
		case key.Matches(msg, keys.Global.Music):
			if m.player == nil {
				return m, tui.ReportInfo("no music configured")
			}
			if err := m.player.Toggle(); err != nil {
				return m, tui.ReportError(err, "toggling music")
			}
		default:
			// Send other keys to current page.
			return m, m.pages[m.current].Update(msg)
		}
	case tui.NavigationMsg:
		if _, ok := m.pages[msg.Page]; !ok {
			return m, tui.ReportInfo("%s not available", msg.Page)
		}
		m.navigate(msg.Page)
	case resource.Event[audio.Status]:
		m.playing = msg.Payload.Playing
	case tui.ErrorMsg:
		if msg.Error != nil {
			err := msg.Error
			msg := fmt.Sprintf(msg.Message, msg.Args...)

			// Both print error in footer as well as log it.
			m.err = fmt.Errorf("%s: %w", msg, err)
			m.logger.Error(msg, "error", err)
		}
	case tui.InfoMsg:
		m.info = string(msg)
	default:
		// Send remaining msg types to all pages
		return m, m.updateAll(msg)
	}
	return m, nil
}

func (m *model) navigate(kind tui.Kind) {
	if kind == m.current {
		return
	}
	m.previous = m.current
	m.current = kind
	m.showHelp = false
}

func (m model) capturing() bool {
	capturer, ok := m.pages[m.current].(tui.ModelCapturer)
	return ok && capturer.Capturing()
}

func (m model) updateAll(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.pages))
	for _, page := range m.pages {
		cmds = append(cmds, page.Update(msg))
	}
	return tea.Batch(cmds...)
}

var (
	// An open book.
	logo = strings.Join([]string{
		"╭───┬───╮",
		"│ ♥ │ ✿ │",
		"╰───┴───╯",
	}, "\n")
	renderedLogo = tui.Bold.
			Margin(0, 2, 0, 1).
			Foreground(tui.Teal).
			Render(logo)
	logoWidth = lipgloss.Width(renderedLogo)

	headerStyle          = tui.Regular.Background(tui.Base)
	headerHeight         = 3
	titleHeight          = 1
	horizontalRuleHeight = 1
	messageFooterHeight  = 1

	versionStyle = tui.Regular.Foreground(tui.Teal)
	musicOn      = tui.Bold.Foreground(tui.Teal).Render("♪ on")
	musicOff     = tui.Regular.Foreground(tui.Grey).Render("♪ off")
)

func (m model) View() string {
	var (
		content           string
		shortHelpBindings []key.Binding
		page              = m.pages[m.current]
	)

	var currentHelpBindings []key.Binding
	if bindings, ok := page.(tui.ModelHelpBindings); ok {
		currentHelpBindings = bindings.HelpBindings()
	}

	if m.showHelp {
		content = lipgloss.NewStyle().
			Margin(1).
			Render(fullHelpView(
				helpSection{heading: strings.ToUpper(m.current.String()), bindings: currentHelpBindings},
				helpSection{heading: "GENERAL", bindings: keys.KeyMapToSlice(keys.Global)},
			))
		shortHelpBindings = []key.Binding{
			key.NewBinding(
				key.WithKeys("?"),
				key.WithHelp("?", "close help"),
			),
		}
	} else if m.showQuitPrompt {
		content = lipgloss.NewStyle().
			Margin(0, 1).
			Render(fmt.Sprintf("Quit flipbook? (y/N): %s", m.quitPrompt.View()))
	} else {
		content = page.View()
		shortHelpBindings = append(
			currentHelpBindings,
			keys.KeyMapToSlice(keys.Global)...,
		)
	}

	// Render help bindings to the right of the logo, vertically centred.
	shortHelpWidth := max(m.width-logoWidth-2, 0)
	shortHelp := lipgloss.NewStyle().
		Width(shortHelpWidth).
		Height(headerHeight).
		AlignVertical(lipgloss.Center).
		Render(shortHelpView(shortHelpBindings, shortHelpWidth))

	// Render page title line
	var (
		pageTitle  string
		pageStatus string
	)
	if titled, ok := page.(tui.ModelTitle); ok {
		pageTitle = tui.Regular.Margin(0, 1).Render(titled.Title())
	}
	if statusable, ok := page.(tui.ModelStatus); ok {
		pageStatus = tui.Padded.Render(statusable.Status())
	}
	pageStatus = tui.Regular.
		Width(max(m.width-tui.Width(pageTitle), 0)).
		Align(lipgloss.Right).
		Render(pageStatus)
	pageTitleLine := lipgloss.JoinHorizontal(lipgloss.Left, pageTitle, pageStatus)

	// Global-level info goes in the bottom right corner in the footer.
	music := musicOff
	if m.playing {
		music = musicOn
	}
	metadata := lipgloss.JoinHorizontal(lipgloss.Left,
		tui.Padded.Render(music),
		tui.Padded.Inherit(versionStyle).Render(version.Version),
	)

	// Render any info/error message to be shown in the bottom left corner in
	// the footer, using whatever space is remaining to the left of the
	// metadata.
	var footerMsg string
	if m.err != nil {
		footerMsg = tui.Padded.
			Foreground(tui.Red).
			Render("Error: " + m.err.Error())
	} else if m.info != "" {
		footerMsg = tui.Padded.Render(m.info)
	}
	footerWidth := max(m.width-tui.Width(metadata), 0)

	return lipgloss.JoinVertical(
		lipgloss.Top,
		// header, i.e. the navbar
		headerStyle.
			Width(m.width).
			Height(headerHeight).
			Render(lipgloss.JoinHorizontal(lipgloss.Top, renderedLogo, shortHelp)),
		// title
		lipgloss.NewStyle().
			// Prohibit overflowing title wrapping to another line.
			MaxHeight(titleHeight).
			Inline(true).
			Width(m.width).
			Render(pageTitleLine),
		// horizontal rule
		strings.Repeat("─", m.width),
		// content
		lipgloss.NewStyle().
			Height(m.viewHeight()).
			MaxHeight(m.viewHeight()).
			Render(content),
		// horizontal rule
		strings.Repeat("─", m.width),
		// footer
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			tui.Regular.
				Inline(true).
				MaxWidth(footerWidth).
				Width(footerWidth).
				Render(footerMsg),
			metadata,
		),
	)
}

// viewHeight retrieves the height available beneath the header and title,
// and above the footer.
func (m model) viewHeight() int {
	return max(m.height-headerHeight-titleHeight-2*horizontalRuleHeight-messageFooterHeight, 0)
}
