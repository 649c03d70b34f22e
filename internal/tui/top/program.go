package top

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/leg100/flipbook/internal/audio"
	"github.com/leg100/flipbook/internal/guestbook"
	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/resource"
	"github.com/leg100/flipbook/internal/session"
	"github.com/stretchr/testify/require"
)

// Options for starting the TUI.
type Options struct {
	Session *session.Session
	// Board is optional; without it there is no guestbook.
	Board  guestbook.Board
	Player *audio.Player
	Logger *logging.Logger

	Title        string
	WindowRadius int
	HintDuration time.Duration
	Debug        bool
}

// Start starts the TUI and blocks until the user exits.
func Start(opts Options) error {
	p, err := newProgram(opts)
	if err != nil {
		return err
	}
	defer p.cleanup()

	tp := tea.NewProgram(p.model,
		// Use the full size of the terminal with its "alternate screen buffer"
		tea.WithAltScreen(),
	)
	// Relay events in background
	go func() {
		for msg := range p.ch {
			tp.Send(msg)
		}
	}()
	p.start()

	// Blocks until user quits
	_, err = tp.Run()
	return err
}

// StartTest starts the TUI and returns a test model for testing purposes.
func StartTest(t *testing.T, opts Options, width, height int) *teatest.TestModel {
	p, err := newProgram(opts)
	require.NoError(t, err)

	tm := teatest.NewTestModel(t, p.model, teatest.WithInitialTermSize(width, height))
	t.Cleanup(func() {
		p.cleanup()
		tm.Quit()
	})

	// Relay events in background
	go func() {
		for msg := range p.ch {
			tm.Send(msg)
		}
	}()
	p.start()
	return tm
}

type program struct {
	model   tea.Model
	ch      chan tea.Msg
	start   func()
	cleanup func()
}

func newProgram(opts Options) (*program, error) {
	m, err := newModel(opts)
	if err != nil {
		return nil, err
	}
	// Relay resource events to TUI. Deliberately set up subscriptions *before*
	// any events are triggered, to ensure the TUI receives all messages.
	ch := make(chan tea.Msg)
	wg := sync.WaitGroup{} // sync closure of subscriptions

	ctx, cancel := context.WithCancel(context.Background())

	if opts.Logger != nil {
		relay(ctx, &wg, ch, opts.Logger.Subscribe(ctx))
	}
	relay(ctx, &wg, ch, opts.Session.SubscribeStatus(ctx))
	relay(ctx, &wg, ch, opts.Session.Navigator.Subscribe(ctx))
	relay(ctx, &wg, ch, opts.Session.Preloader.Subscribe(ctx))
	if opts.Board != nil {
		relay(ctx, &wg, ch, opts.Board.Subscribe(ctx))
	}
	if opts.Player != nil {
		relay(ctx, &wg, ch, opts.Player.Subscribe(ctx))
	}

	var once sync.Once
	return &program{
		model: m,
		ch:    ch,
		// start preloading the book once the TUI is listening.
		start: func() {
			opts.Session.Start(ctx)
		},
		// cleanup function to be invoked when program is terminated.
		cleanup: func() {
			once.Do(func() {
				cancel()
				// Wait for relays to finish before closing channel, to avoid
				// sends to a closed channel, which would result in a panic.
				wg.Wait()
				close(ch)
				if m.dump != nil {
					m.dump.Close()
				}
			})
		},
	}, nil
}

// relay forwards events from sub to ch until sub is closed or ctx is
// canceled.
func relay[T any](ctx context.Context, wg *sync.WaitGroup, ch chan<- tea.Msg, sub <-chan resource.Event[T]) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range sub {
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
}
