package preload

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
	"github.com/stretchr/testify/require"
)

// pngBytes returns a small encoded PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	err := png.Encode(&buf, imaging.New(4, 3, color.NRGBA{R: 0xff, A: 0xff}))
	require.NoError(t, err)
	return buf.Bytes()
}

// fakeFetcher serves a fixed image for every locator except those listed in
// failing, and records the number of fetches per locator as well as the peak
// number of concurrent fetches.
type fakeFetcher struct {
	image   []byte
	failing map[string]bool
	failAll bool
	delay   time.Duration

	mu       sync.Mutex
	calls    map[string]int
	inflight int
	peak     int
}

func newFakeFetcher(t *testing.T, failing ...string) *fakeFetcher {
	f := &fakeFetcher{
		image:   pngBytes(t),
		failing: make(map[string]bool),
		calls:   make(map[string]int),
	}
	for _, loc := range failing {
		f.failing[loc] = true
	}
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, loc string) ([]byte, error) {
	f.mu.Lock()
	f.calls[loc]++
	f.inflight++
	f.peak = max(f.peak, f.inflight)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.failAll || f.failing[loc] {
		return nil, errors.New("404 not found")
	}
	return f.image, nil
}

func (f *fakeFetcher) callsFor(loc string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[loc]
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeFetcher) peakConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.peak
}
