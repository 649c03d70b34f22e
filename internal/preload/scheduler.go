// Package preload loads page images ahead of them being shown, in priority
// order: an essential batch first, then the neighbourhood of the current page
// on every navigation, and everything else in the background in sequential
// chunks.
package preload

import (
	"context"
	"errors"
	"image"
	"slices"
	"sync"
	"time"

	"github.com/leg100/flipbook/internal/album"
	"github.com/leg100/flipbook/internal/logging"
	"github.com/leg100/flipbook/internal/pubsub"
	"github.com/leg100/flipbook/internal/resource"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultChunkSize = 5

// errCanceled is returned within a shared fetch whose context was canceled.
var errCanceled = errors.New("preload canceled")

// Resolution is published whenever a locator finishes loading.
type Resolution struct {
	// Requested is the locator that was preloaded.
	Requested string
	// Resolved is Requested if it loaded or the fallback locator if not.
	Resolved string
}

// Failed returns true if the requested image could not be loaded.
func (r Resolution) Failed() bool {
	return r.Requested != r.Resolved
}

type Options struct {
	Fetcher Fetcher
	// Fallback is the locator substituted for images that fail to load.
	Fallback string
	// ChunkSize is the number of images loaded concurrently by
	// PreloadRemaining.
	ChunkSize int
	// ChunkDelay is a pause between chunks.
	ChunkDelay time.Duration
	Logger     logging.Interface
}

// Scheduler preloads images. It is safe for concurrent use.
type Scheduler struct {
	fetcher    Fetcher
	fallback   string
	chunkSize  int
	chunkDelay time.Duration
	logger     logging.Interface

	set    *Set
	cache  *Cache
	flight singleflight.Group
	broker *pubsub.Broker[Resolution]

	fallbackOnce sync.Once
}

func NewScheduler(opts Options) *Scheduler {
	if opts.Fallback == "" {
		opts.Fallback = DefaultFallback
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard
	}
	return &Scheduler{
		fetcher:    opts.Fetcher,
		fallback:   opts.Fallback,
		chunkSize:  opts.ChunkSize,
		chunkDelay: opts.ChunkDelay,
		logger:     opts.Logger,
		set:        NewSet(),
		cache:      NewCache(),
		broker:     pubsub.NewBroker[Resolution](opts.Logger),
	}
}

// Completed returns the set of resolved locators.
func (s *Scheduler) Completed() *Set {
	return s.set
}

// Cache returns the decoded images, keyed by resolved locator.
func (s *Scheduler) Cache() *Cache {
	return s.cache
}

// Fallback returns the fallback locator.
func (s *Scheduler) Fallback() string {
	return s.fallback
}

// Subscribe to resolutions.
func (s *Scheduler) Subscribe(ctx context.Context) <-chan resource.Event[Resolution] {
	return s.broker.Subscribe(ctx)
}

// Shutdown closes all subscriptions.
func (s *Scheduler) Shutdown() {
	s.broker.Shutdown()
}

// PreloadOne loads the image at loc, returning loc if it loaded, or the
// fallback locator if it did not. A locator that has already been resolved is
// not fetched again, and concurrent calls for the same locator share a single
// fetch.
//
// If ctx is canceled before the fetch completes the fallback locator is
// returned but nothing is recorded, leaving loc to be preloaded again later.
func (s *Scheduler) PreloadOne(ctx context.Context, loc string) string {
	for {
		if resolved, ok := s.set.Resolved(loc); ok {
			return resolved
		}
		v, err, _ := s.flight.Do(loc, func() (any, error) {
			// Another caller may have resolved loc between the check above
			// and this call.
			if resolved, ok := s.set.Resolved(loc); ok {
				return resolved, nil
			}
			img, err := s.load(ctx, loc)
			if err != nil {
				if ctx.Err() != nil {
					s.logger.Debug("preload canceled", "locator", loc)
					return nil, errCanceled
				}
				s.logger.Warn("image failed to load; using fallback", "locator", loc, "error", err)
				s.fallbackOnce.Do(func() {
					s.cache.Put(s.fallback, fallbackImage(s.fallback))
				})
				s.record(loc, s.fallback)
				return s.fallback, nil
			}
			s.cache.Put(loc, img)
			s.record(loc, loc)
			return loc, nil
		})
		if err == nil {
			return v.(string)
		}
		if ctx.Err() != nil {
			return s.fallback
		}
		// Joined a fetch canceled by another caller's context; try again
		// with ours.
	}
}

func (s *Scheduler) load(ctx context.Context, loc string) (image.Image, error) {
	data, err := s.fetcher.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (s *Scheduler) record(requested, resolved string) {
	if s.set.Add(requested, resolved) {
		s.broker.Publish(resource.CreatedEvent, Resolution{
			Requested: requested,
			Resolved:  resolved,
		})
	}
}

// batch preloads locs concurrently, returning once all have settled.
func (s *Scheduler) batch(ctx context.Context, locs []string) {
	var g errgroup.Group
	for _, loc := range locs {
		g.Go(func() error {
			s.PreloadOne(ctx, loc)
			return nil
		})
	}
	// PreloadOne never fails
	_ = g.Wait()
}

// EssentialSet selects the pages loaded before the book is shown.
type EssentialSet struct {
	// Hero is the 1-based number of the page featured in the book's header.
	// Zero means no hero page.
	Hero int
	// Leading is the number of pages from the start of the book.
	Leading int
}

// Locators returns the locators of the essential pages: the cover, the hero
// page and the leading pages, without duplicates.
func (e EssentialSet) Locators(pages []album.Page) []string {
	if len(pages) == 0 {
		return nil
	}
	indices := []int{0}
	if e.Hero >= 1 && e.Hero <= len(pages) {
		indices = append(indices, e.Hero-1)
	}
	for i := 0; i < e.Leading && i < len(pages); i++ {
		indices = append(indices, i)
	}
	var (
		locs []string
		seen = make(map[int]bool, len(indices))
	)
	for _, i := range indices {
		if !seen[i] {
			seen[i] = true
			locs = append(locs, pages[i].Locator)
		}
	}
	return locs
}

// PreloadEssential preloads the essential pages in a single concurrent batch,
// returning once every one of them has settled, whether or not it loaded.
func (s *Scheduler) PreloadEssential(ctx context.Context, pages []album.Page, essential EssentialSet) {
	locs := essential.Locators(pages)
	s.logger.Debug("preloading essential images", "count", len(locs))
	s.batch(ctx, locs)
}

// PreloadRemaining preloads every page not yet resolved, in chunks. Each chunk
// settles before the next starts, which bounds the number of outstanding
// fetches to the chunk size.
func (s *Scheduler) PreloadRemaining(ctx context.Context, pages []album.Page) {
	var pending []string
	for _, p := range pages {
		if !s.set.Has(p.Locator) {
			pending = append(pending, p.Locator)
		}
	}
	for chunk := range slices.Chunk(pending, s.chunkSize) {
		if ctx.Err() != nil {
			return
		}
		s.batch(ctx, chunk)
		s.logger.Debug("preloaded chunk", "size", len(chunk), "completed", s.set.Len())
		if s.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.chunkDelay):
			}
		}
	}
}

// PreloadNeighborhood preloads the pages within radius of center that have
// not yet been resolved.
func (s *Scheduler) PreloadNeighborhood(ctx context.Context, pages []album.Page, center, radius int) {
	var locs []string
	for _, p := range album.Visible(pages, center, radius) {
		if !s.set.Has(p.Locator) {
			locs = append(locs, p.Locator)
		}
	}
	if len(locs) == 0 {
		return
	}
	s.batch(ctx, locs)
}

// Settled returns true once every page has been resolved.
func (s *Scheduler) Settled(pages []album.Page) bool {
	return s.set.HasAll(album.Locators(pages)...)
}
