package preload

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	set := NewSet()

	assert.True(t, set.Add("/1.jpg", "/1.jpg"))
	assert.True(t, set.Add("/2.jpg", DefaultFallback))

	t.Run("first resolution wins", func(t *testing.T) {
		assert.False(t, set.Add("/1.jpg", DefaultFallback))
		got, ok := set.Resolved("/1.jpg")
		assert.True(t, ok)
		assert.Equal(t, "/1.jpg", got)
	})

	t.Run("has requested and resolved locators", func(t *testing.T) {
		assert.True(t, set.Has("/1.jpg"))
		assert.True(t, set.Has("/2.jpg"))
		assert.True(t, set.Has(DefaultFallback))
		assert.False(t, set.Has("/3.jpg"))
	})

	t.Run("has all", func(t *testing.T) {
		assert.True(t, set.HasAll("/1.jpg", "/2.jpg"))
		assert.False(t, set.HasAll("/1.jpg", "/3.jpg"))
		// the fallback was never itself requested
		assert.False(t, set.HasAll(DefaultFallback))
	})

	assert.Equal(t, 2, set.Len())
}

func TestSet_ConcurrentInsertion(t *testing.T) {
	set := NewSet()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		added int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if set.Add("/1.jpg", "/1.jpg") {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, set.Len())
}
