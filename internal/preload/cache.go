package preload

import (
	"image"
	"sync"
)

// Cache holds decoded images by locator.
type Cache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

func NewCache() *Cache {
	return &Cache{images: make(map[string]image.Image)}
}

func (c *Cache) Put(locator string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.images[locator] = img
}

func (c *Cache) Get(locator string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	img, ok := c.images[locator]
	return img, ok
}
