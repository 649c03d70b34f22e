package preload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlaceholder(t *testing.T) {
	got, err := ParsePlaceholder(DefaultFallback)
	require.NoError(t, err)
	assert.Equal(t, Placeholder{Width: 800, Height: 600, Text: "Memory"}, got)

	for _, invalid := range []string{
		"/images/1.jpg",
		"/api/placeholder/800",
		"/api/placeholder/800/abc",
		"/api/placeholder/0/600",
		"/api/placeholder/800/999999",
	} {
		t.Run(invalid, func(t *testing.T) {
			_, err := ParsePlaceholder(invalid)
			assert.Error(t, err)
		})
	}
}

func TestPlaceholder_Image(t *testing.T) {
	img := Placeholder{Width: 40, Height: 20}.Image()
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	// framed: the corner differs from the centre
	assert.NotEqual(t, img.At(0, 0), img.At(20, 10))
}

func TestFallbackImage(t *testing.T) {
	// unparseable fallback locators still get an image
	img := fallbackImage("/missing.jpg")
	assert.Equal(t, 800, img.Bounds().Dx())
}

func TestDecode(t *testing.T) {
	img, err := decode(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dy())

	_, err = decode([]byte("hello"))
	assert.ErrorIs(t, err, ErrNotImage)
}
