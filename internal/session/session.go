// Package session ties together the state of one viewing of a book: its
// pages, the images preloaded so far and the page currently shown. Nothing is
// shared between sessions.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/leg100/flipbook/internal/album"
	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/pagination"
	"github.com/leg100/flipbook/internal/preload"
	"github.com/leg100/flipbook/internal/pubsub"
	"github.com/leg100/flipbook/internal/resource"
)

// ReadyEvent is published once the essential images have settled.
const ReadyEvent resource.EventType = "ready"

const DefaultPreloadRadius = 2

type Options struct {
	Pages     []album.Page
	Fetcher   preload.Fetcher
	Essential preload.EssentialSet
	// PreloadRadius is the number of pages either side of the current page
	// preloaded upon every flip.
	PreloadRadius int
	Fallback      string
	ChunkSize     int
	ChunkDelay    time.Duration
	SettleDelay   time.Duration
	// AfterFunc is passed to the navigator; tests use it to control when
	// flips settle.
	AfterFunc pagination.AfterFunc
	Logger    logging.Interface
}

// Status is published by a session when it becomes ready.
type Status struct {
	Ready bool
}

type Session struct {
	Navigator *pagination.Navigator
	Preloader *preload.Scheduler

	pages  []album.Page
	radius int
	logger logging.Interface

	essential preload.EssentialSet
	ready     chan struct{}
	broker    *pubsub.Broker[Status]

	cancel context.CancelFunc
	wg     sync.WaitGroup
	start  sync.Once
}

func New(opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Discard
	}
	if opts.PreloadRadius < 0 {
		opts.PreloadRadius = 0
	}
	nav, err := pagination.New(len(opts.Pages), pagination.Options{
		SettleDelay: opts.SettleDelay,
		AfterFunc:   opts.AfterFunc,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	scheduler := preload.NewScheduler(preload.Options{
		Fetcher:    opts.Fetcher,
		Fallback:   opts.Fallback,
		ChunkSize:  opts.ChunkSize,
		ChunkDelay: opts.ChunkDelay,
		Logger:     opts.Logger,
	})
	return &Session{
		Navigator: nav,
		Preloader: scheduler,
		pages:     opts.Pages,
		radius:    opts.PreloadRadius,
		logger:    opts.Logger,
		essential: opts.Essential,
		ready:     make(chan struct{}),
		broker:    pubsub.NewBroker[Status](opts.Logger),
	}, nil
}

// Pages returns the book's pages.
func (s *Session) Pages() []album.Page {
	return s.pages
}

// Ready is closed once the essential images have settled.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// IsReady returns true once the essential images have settled.
func (s *Session) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// SubscribeStatus subscribes to the session becoming ready.
func (s *Session) SubscribeStatus(ctx context.Context) <-chan resource.Event[Status] {
	return s.broker.Subscribe(ctx)
}

// Start preloads the essential images and, once they have settled, marks the
// session ready and preloads the rest in the background. Every flip
// preloads the neighbourhood of the page being flipped to, concurrently with
// the background preloading. Start returns immediately; calling it more than
// once has no effect.
func (s *Session) Start(ctx context.Context) {
	s.start.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)

		// Subscribe before spawning anything that can trigger a flip.
		flips := s.Navigator.Subscribe(ctx)
		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			s.preloadUponFlip(ctx, flips)
		}()
		go func() {
			defer s.wg.Done()
			s.Preloader.PreloadEssential(ctx, s.pages, s.essential)
			if ctx.Err() != nil {
				return
			}
			close(s.ready)
			s.logger.Info("book ready", "pages", len(s.pages))
			s.broker.Publish(ReadyEvent, Status{Ready: true})

			s.Preloader.PreloadRemaining(ctx, s.pages)
			if s.Preloader.Settled(s.pages) {
				s.logger.Info("preloaded all images", "pages", len(s.pages))
			}
		}()
	})
}

func (s *Session) preloadUponFlip(ctx context.Context, flips <-chan resource.Event[pagination.State]) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for event := range flips {
		if event.Type != pagination.TransitionStarted {
			continue
		}
		target := event.Payload.Target()
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Preloader.PreloadNeighborhood(ctx, s.pages, target, s.radius)
		}()
	}
}

// Close tears down the session, abandoning any preloading and any flip in
// flight, and waits for background work to finish.
func (s *Session) Close() {
	// Ensure a session that was never started cannot be started hereafter.
	s.start.Do(func() {})
	if s.cancel != nil {
		s.cancel()
	}
	s.Navigator.Close()
	s.wg.Wait()
	s.Preloader.Shutdown()
	s.broker.Shutdown()
}
