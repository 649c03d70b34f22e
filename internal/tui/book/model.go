// Package book renders the pages of a book, one spread at a time.
package book

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leg100/flipbook/internal/album"
	"github.com/leg100/flipbook/internal/effects"
	"github.com/leg100/flipbook/internal/pagination"
	"github.com/leg100/flipbook/internal/preload"
	"github.com/leg100/flipbook/internal/resource"
	"github.com/leg100/flipbook/internal/session"
	"github.com/leg100/flipbook/internal/tui"
	"github.com/leg100/flipbook/internal/tui/keys"
)

const (
	// DefaultWindowRadius is the number of pages either side of the current
	// page kept rendered.
	DefaultWindowRadius = 2
	// DefaultHintDuration is how long the flipping hint is shown for.
	DefaultHintDuration = 4 * time.Second

	hint = "←/→ to flip"

	// Pages are 5 wide by 6 tall, and a cell is half as wide as it is tall.
	pageAspectWidth  = 5
	pageAspectHeight = 6

	// frameInterval is the time between frames of the sparkle animation.
	frameInterval = 50 * time.Millisecond

	// hint line above the spread, and a margin and the counter below it.
	chromeHeight = 3
	spreadGap    = 2
)

type (
	hintExpiredMsg struct{}
	sparkleMsg     struct{}
)

type Options struct {
	Session      *session.Session
	Title        string
	WindowRadius int
	HintDuration time.Duration
	// Rand seeds the sparkles; nil uses the global source.
	Rand *rand.Rand
}

type Model struct {
	session      *session.Session
	pages        []album.Page
	title        string
	radius       int
	hintDuration time.Duration
	rng          *rand.Rand

	state     pagination.State
	ready     bool
	showHint  bool
	spinner   spinner.Model
	particles []effects.Particle

	// rendered pages keyed by locator, only for pages within the window
	// surrounding the current page.
	rendered map[string]string

	width  int
	height int
}

func New(opts Options) *Model {
	if opts.WindowRadius < 0 {
		opts.WindowRadius = 0
	}
	if opts.HintDuration == 0 {
		opts.HintDuration = DefaultHintDuration
	}
	return &Model{
		session:      opts.Session,
		pages:        opts.Session.Pages(),
		title:        opts.Title,
		radius:       opts.WindowRadius,
		hintDuration: opts.HintDuration,
		rng:          opts.Rand,
		state:        opts.Session.Navigator.Current(),
		ready:        opts.Session.IsReady(),
		showHint:     true,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		rendered:     make(map[string]string),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.Tick(m.hintDuration, func(time.Time) tea.Msg {
			return hintExpiredMsg{}
		}),
	)
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Everything needs re-rendering at the new size.
		clear(m.rendered)
	case tea.KeyMsg:
		if !m.ready {
			return nil
		}
		switch {
		case key.Matches(msg, keys.Navigation.Next):
			m.session.Navigator.Advance()
		case key.Matches(msg, keys.Navigation.Previous):
			m.session.Navigator.Retreat()
		}
	case resource.Event[session.Status]:
		m.ready = msg.Payload.Ready
	case resource.Event[pagination.State]:
		m.state = msg.Payload
		switch msg.Type {
		case pagination.TransitionStarted:
			return m.burst()
		case pagination.TransitionSettled:
			m.particles = nil
			m.evict()
		}
	case resource.Event[preload.Resolution]:
		// An image has loaded; pages are only cached once loaded so there is
		// nothing to invalidate, the next view picks it up.
	case sparkleMsg:
		m.particles = effects.Step(m.particles, frameInterval.Seconds())
		if len(m.particles) > 0 {
			return sparkle()
		}
	case hintExpiredMsg:
		m.showHint = false
	case spinner.TickMsg:
		if m.ready {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}
	return nil
}

// burst emits sparkles from the centre of the page being flipped.
func (m *Model) burst() tea.Cmd {
	w, h := m.pageSize()
	animating := len(m.particles) > 0
	// Sparkles are drawn within the page's border.
	origin := effects.Point{X: float64(w-2) / 2, Y: float64(h-2) / 2}
	m.particles = append(m.particles, effects.Burst(origin, effects.DefaultParticles, m.rng)...)
	if animating {
		// already ticking
		return nil
	}
	return sparkle()
}

func sparkle() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return sparkleMsg{}
	})
}

// evict discards rendered pages that have fallen outside the window
// surrounding the current page.
func (m *Model) evict() {
	keep := make(map[string]bool)
	for _, p := range album.Visible(m.pages, m.state.Index, m.radius) {
		keep[p.Locator] = true
		if p.Back != "" {
			keep[p.Back] = true
		}
	}
	for loc := range m.rendered {
		if !keep[loc] {
			delete(m.rendered, loc)
		}
	}
}

func (m *Model) Title() string {
	return tui.Bold.Foreground(tui.Teal).Render(m.title)
}

// Status reports how many images have loaded.
func (m *Model) Status() string {
	completed := m.session.Preloader.Completed()
	var loaded int
	for _, p := range m.pages {
		if completed.Has(p.Locator) {
			loaded++
		}
	}
	return tui.Regular.Foreground(tui.Grey).Render(
		fmt.Sprintf("%d/%d images loaded", loaded, len(m.pages)),
	)
}

func (m *Model) HelpBindings() []key.Binding {
	return []key.Binding{
		keys.Navigation.Previous,
		keys.Navigation.Next,
	}
}

func (m *Model) View() string {
	if !m.ready {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading...",
		)
	}
	var hintLine string
	if m.showHint {
		hintLine = tui.Badge.Render(hint)
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, hintLine),
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.spread()),
		"",
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, tui.Badge.Render(m.counter())),
	)
}

// counter renders the current position within the book.
func (m *Model) counter() string {
	if m.state.Index == 0 {
		return "Cover"
	}
	return fmt.Sprintf("Page %d of %d", m.state.Index, len(m.pages))
}

// spread renders the current page and, if there is room, its back face
// alongside it.
func (m *Model) spread() string {
	w, h := m.pageSize()
	if w <= 0 || h <= 0 {
		return ""
	}
	current := m.pages[m.state.Index]
	if m.state.Transitioning {
		return m.renderSparkles(w, h)
	}
	front := m.renderPage(current.Locator, label(current.Index), w, h)
	if current.Back == "" || 2*w+spreadGap > m.width {
		return front
	}
	back := m.renderPage(current.Back, label(current.Index+1), w, h)
	return lipgloss.JoinHorizontal(lipgloss.Top, front, lipgloss.NewStyle().Width(spreadGap).Render(""), back)
}

// pageSize returns the size in cells of a single page.
func (m *Model) pageSize() (int, int) {
	h := m.height - chromeHeight
	w := h * 2 * pageAspectWidth / pageAspectHeight
	if w > m.width {
		w = m.width
		h = w * pageAspectHeight / (pageAspectWidth * 2)
	}
	return w, h
}

func (m *Model) renderPage(loc, label string, w, h int) string {
	if s, ok := m.rendered[loc]; ok {
		return s
	}
	resolved, ok := m.session.Preloader.Completed().Resolved(loc)
	if !ok {
		// Not cached because it is about to be replaced by the loaded image.
		return tui.RenderFrame(label, w, h)
	}
	if resolved == m.session.Preloader.Fallback() {
		// A placeholder carries its own label.
		if p, err := preload.ParsePlaceholder(resolved); err == nil && p.Text != "" {
			s := tui.RenderFrame(p.Text, w, h)
			m.rendered[loc] = s
			return s
		}
	}
	img, ok := m.session.Preloader.Cache().Get(resolved)
	if !ok {
		return tui.RenderFrame(label, w, h)
	}
	s := tui.RenderImage(img, w, h)
	m.rendered[loc] = s
	return s
}

func (m *Model) renderSparkles(w, h int) string {
	return tui.RoundedBorders.
		BorderForeground(tui.Accent).
		Foreground(tui.SparkleColor).
		Render(effects.Render(m.particles, w-2, h-2))
}

func label(index int) string {
	if index == 0 {
		return "Cover"
	}
	return fmt.Sprintf("Page %d", index)
}
