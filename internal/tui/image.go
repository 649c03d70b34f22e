package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
)

// upperHalfBlock renders two pixels in one cell: the foreground colour is the
// upper pixel and the background colour the lower pixel.
const upperHalfBlock = "▀"

// RenderImage renders img scaled to fit within width by height cells,
// preserving its aspect ratio, and centred within that area.
func RenderImage(img image.Image, width, height int) string {
	if img == nil || width <= 0 || height <= 0 {
		return ""
	}
	// Each cell holds two rows of pixels.
	fitted := imaging.Fit(img, width, height*2, imaging.Lanczos)
	bounds := fitted.Bounds()

	var b strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		if y > bounds.Min.Y {
			b.WriteRune('\n')
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			style := Regular.Foreground(hex(fitted.At(x, y)))
			if y+1 < bounds.Max.Y {
				style = style.Background(hex(fitted.At(x, y+1)))
			}
			b.WriteString(style.Render(upperHalfBlock))
		}
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

// RenderFrame renders an empty frame of width by height cells surrounding a
// label, used whilst an image has yet to load.
func RenderFrame(label string, width, height int) string {
	if width < 2 || height < 2 {
		return ""
	}
	return RoundedBorders.
		BorderForeground(Accent).
		Foreground(Teal).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(label)
}

func hex(c color.Color) lipgloss.Color {
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", nrgba.R, nrgba.G, nrgba.B))
}
