// Package pagination tracks the current page of a book and flips between
// pages, at most one flip at a time.
package pagination

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/pubsub"
	"github.com/leg100/flipbook/internal/resource"
)

// DefaultSettleDelay is the duration of a page flip.
const DefaultSettleDelay = 600 * time.Millisecond

var ErrNoPages = errors.New("navigator needs at least one page")

// Timer is a pending call scheduled by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc calls f in its own goroutine after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Options struct {
	// SettleDelay is how long a flip takes. Defaults to DefaultSettleDelay.
	SettleDelay time.Duration
	// AfterFunc schedules the end of a flip. Defaults to time.AfterFunc.
	AfterFunc AfterFunc
	Logger    logging.Interface
}

// Navigator is the pagination state machine. Advance and Retreat are
// rejected while a flip is in flight: requests are dropped rather than queued.
type Navigator struct {
	total     int
	delay     time.Duration
	afterFunc AfterFunc
	logger    logging.Interface

	mu      sync.Mutex
	state   State
	pending Timer
	closed  bool

	broker *pubsub.Broker[State]
}

func New(total int, opts Options) (*Navigator, error) {
	if total < 1 {
		return nil, ErrNoPages
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard
	}
	return &Navigator{
		total:     total,
		delay:     opts.SettleDelay,
		afterFunc: opts.AfterFunc,
		logger:    opts.Logger,
		broker:    pubsub.NewBroker[State](opts.Logger),
	}, nil
}

// Total returns the number of pages.
func (n *Navigator) Total() int {
	return n.total
}

// Current returns the current state.
func (n *Navigator) Current() State {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.state
}

// Subscribe to state changes. Every flip publishes a TransitionStarted event
// followed by a TransitionSettled event.
func (n *Navigator) Subscribe(ctx context.Context) <-chan resource.Event[State] {
	return n.broker.Subscribe(ctx)
}

// Advance flips forward one page. Returns false, doing nothing, if a flip is
// already in flight or the current page is the last.
func (n *Navigator) Advance() bool {
	return n.flip(Forward)
}

// Retreat flips back one page. Returns false, doing nothing, if a flip is
// already in flight or the current page is the first.
func (n *Navigator) Retreat() bool {
	return n.flip(Backward)
}

func (n *Navigator) flip(dir Direction) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed || n.state.Transitioning {
		return false
	}
	target := n.state.Index + dir.step()
	if target < 0 || target >= n.total {
		return false
	}
	n.state.Transitioning = true
	n.state.Direction = dir
	n.pending = n.afterFunc(n.delay, func() { n.settle(dir) })

	n.logger.Debug("flipping page", "from", n.state.Index, "to", target)
	n.broker.Publish(TransitionStarted, n.state)
	return true
}

func (n *Navigator) settle(dir Direction) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.state.Transitioning || n.state.Direction != dir {
		// Closed, or a stale timer.
		return
	}
	n.state = State{Index: n.state.Index + dir.step()}
	n.pending = nil

	n.broker.Publish(TransitionSettled, n.state)
}

// Close stops any flip in flight, leaving the navigator idle on the page it
// was flipping from, and closes all subscriptions. Subsequent flips are
// rejected.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	if n.pending != nil {
		n.pending.Stop()
		n.pending = nil
	}
	n.state.Transitioning = false
	n.state.Direction = None
	n.closed = true
	n.broker.Shutdown()
}
