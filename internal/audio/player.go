// Package audio plays a book's background music by running an external
// player, such as `mpv --no-video music.mp3`.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/pubsub"
	"github.com/leg100/flipbook/internal/resource"
)

// Status is published whenever playback starts or stops.
type Status struct {
	Playing bool
}

// Player toggles playback of a single track. Pausing stops the player
// process; playing again starts the track afresh.
type Player struct {
	// Args is the player command and its arguments. With no args the player
	// only tracks whether it is playing.
	Args []string
	// Loop restarts the track whenever it ends by itself.
	Loop bool

	logger logging.Interface
	broker *pubsub.Broker[Status]

	mu      sync.Mutex
	playing bool
	cmd     *exec.Cmd
	exited  chan struct{}
}

func NewPlayer(args []string, loop bool, logger logging.Interface) *Player {
	return &Player{
		Args:   args,
		Loop:   loop,
		logger: logger,
		broker: pubsub.NewBroker[Status](logger),
	}
}

// Playing returns true if the track is playing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

// Subscribe to playback status changes.
func (p *Player) Subscribe(ctx context.Context) <-chan resource.Event[Status] {
	return p.broker.Subscribe(ctx)
}

// Toggle pauses the track if playing, otherwise plays it.
func (p *Player) Toggle() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		p.stop()
		p.setPlaying(false)
		return nil
	}
	if err := p.start(); err != nil {
		return err
	}
	p.setPlaying(true)
	return nil
}

func (p *Player) setPlaying(playing bool) {
	p.playing = playing
	p.logger.Debug("toggled music", "playing", playing)
	p.broker.Publish(resource.UpdatedEvent, Status{Playing: playing})
}

// start the player process; p.mu must be held.
func (p *Player) start() error {
	if len(p.Args) == 0 {
		return nil
	}
	cmd := exec.Command(p.Args[0], p.Args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting music player: %w", err)
	}
	exited := make(chan struct{})
	p.cmd, p.exited = cmd, exited

	go func() {
		err := cmd.Wait()
		close(exited)
		p.finished(cmd, err)
	}()
	return nil
}

// finished handles the player process exiting.
func (p *Player) finished(cmd *exec.Cmd, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != cmd {
		// stopped deliberately
		return
	}
	p.cmd, p.exited = nil, nil

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		p.logger.Error("music player failed", "error", err)
	}
	if p.Loop && err == nil {
		if err := p.start(); err == nil {
			return
		}
	}
	p.setPlaying(false)
}

// stop the player process and wait for it to exit; p.mu must be held.
func (p *Player) stop() {
	if p.cmd == nil {
		return
	}
	cmd, exited := p.cmd, p.exited
	p.cmd, p.exited = nil, nil
	_ = cmd.Process.Kill()

	// Release the lock whilst waiting, for finished to acquire it.
	p.mu.Unlock()
	<-exited
	p.mu.Lock()
}

// Close stops playback and closes subscriptions.
func (p *Player) Close() error {
	p.mu.Lock()
	p.stop()
	p.playing = false
	p.mu.Unlock()

	p.broker.Shutdown()
	return nil
}
