package tui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
)

func TestRenderImage(t *testing.T) {
	img := imaging.New(40, 20, color.NRGBA{R: 0x2c, G: 0x7e, B: 0x7c, A: 0xff})

	got := RenderImage(img, 20, 10)

	assert.Equal(t, 20, lipgloss.Width(got))
	assert.Equal(t, 10, lipgloss.Height(got))
	assert.Contains(t, got, upperHalfBlock)
}

func TestRenderImage_Empty(t *testing.T) {
	assert.Equal(t, "", RenderImage(nil, 10, 10))
	assert.Equal(t, "", RenderImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)), 0, 10))
}

func TestRenderFrame(t *testing.T) {
	got := RenderFrame("Page 3", 20, 5)

	assert.Equal(t, 20, lipgloss.Width(got))
	assert.Equal(t, 5, lipgloss.Height(got))
	assert.True(t, strings.Contains(got, "Page 3"))
}

func TestHex(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#2c7e7c"), hex(color.NRGBA{R: 0x2c, G: 0x7e, B: 0x7c, A: 0xff}))
}
