package session

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/leg100/flipbook/internal/album"
	"github.com/leg100/flipbook/internal/pagination"
	"github.com/leg100/flipbook/internal/preload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepper struct {
	mu sync.Mutex
	fs []func()
}

func (s *stepper) AfterFunc(_ time.Duration, f func()) pagination.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fs = append(s.fs, f)
	return time.NewTimer(time.Hour)
}

func (s *stepper) settle() {
	s.mu.Lock()
	fs := s.fs
	s.fs = nil
	s.mu.Unlock()

	for _, f := range fs {
		f()
	}
}

func imageFetcher(t *testing.T) preload.Fetcher {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, imaging.New(2, 2, color.White)))
	return preload.FetcherFunc(func(context.Context, string) ([]byte, error) {
		return buf.Bytes(), nil
	})
}

func newTestSession(t *testing.T, total int, opts Options) (*Session, *stepper) {
	t.Helper()

	pages, err := album.BuildPages(total, album.NewTemplate("images", "png"))
	require.NoError(t, err)

	clock := &stepper{}
	opts.Pages = pages
	opts.AfterFunc = clock.AfterFunc
	if opts.Fetcher == nil {
		opts.Fetcher = imageFetcher(t)
	}
	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, clock
}

func waitReady(t *testing.T, s *Session) {
	t.Helper()

	select {
	case <-s.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not become ready")
	}
}

func TestNew(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, pagination.ErrNoPages)
}

func TestSession_FlipToTheEnd(t *testing.T) {
	s, clock := newTestSession(t, 5, Options{Essential: preload.EssentialSet{Leading: 2}})
	s.Start(context.Background())
	waitReady(t, s)

	for i := 1; i <= 4; i++ {
		require.True(t, s.Navigator.Advance())
		clock.settle()
		require.Equal(t, i, s.Navigator.Current().Index)
	}
	assert.False(t, s.Navigator.Advance())
	assert.Equal(t, 4, s.Navigator.Current().Index)
}

func TestSession_ReadyWhenEverythingFails(t *testing.T) {
	failing := preload.FetcherFunc(func(context.Context, string) ([]byte, error) {
		return nil, errors.New("offline")
	})
	s, _ := newTestSession(t, 38, Options{
		Fetcher:   failing,
		Essential: preload.EssentialSet{Hero: 14, Leading: 4},
	})
	sub := s.SubscribeStatus(context.Background())

	assert.False(t, s.IsReady())
	s.Start(context.Background())
	waitReady(t, s)
	assert.True(t, s.IsReady())

	ev := <-sub
	assert.Equal(t, ReadyEvent, ev.Type)

	assert.Eventually(t, func() bool {
		return s.Preloader.Settled(s.Pages())
	}, 5*time.Second, 10*time.Millisecond)

	for _, p := range s.Pages() {
		resolved, _ := s.Preloader.Completed().Resolved(p.Locator)
		assert.Equal(t, preload.DefaultFallback, resolved)
	}
}

func TestSession_PreloadsNeighborhoodUponFlip(t *testing.T) {
	s, clock := newTestSession(t, 20, Options{
		Essential:     preload.EssentialSet{Leading: 1},
		PreloadRadius: 2,
		ChunkSize:     1,
		// Background preloading stalls after its first chunk.
		ChunkDelay: time.Hour,
	})
	s.Start(context.Background())
	waitReady(t, s)

	completed := s.Preloader.Completed()
	require.Eventually(t, func() bool {
		return completed.Has("/images/2.png")
	}, 5*time.Second, 10*time.Millisecond)
	assert.False(t, completed.Has("/images/4.png"))

	require.True(t, s.Navigator.Advance())

	// neighbourhood of page index 1: pages 1-4
	assert.Eventually(t, func() bool {
		return completed.HasAll("/images/3.png", "/images/4.png")
	}, 5*time.Second, 10*time.Millisecond)

	clock.settle()
	require.True(t, s.Navigator.Advance())
	assert.Eventually(t, func() bool {
		return completed.Has("/images/5.png")
	}, 5*time.Second, 10*time.Millisecond)
	assert.False(t, completed.Has("/images/7.png"))
}

func TestSession_Close(t *testing.T) {
	s, _ := newTestSession(t, 3, Options{})

	t.Run("before start", func(t *testing.T) {
		s.Close()
		s.Start(context.Background())
		assert.False(t, s.IsReady())
		assert.False(t, s.Navigator.Advance())
	})
}
