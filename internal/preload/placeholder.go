package preload

import (
	"fmt"
	"image"
	"image/color"
	"net/url"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultFallback is the locator substituted for images that fail to load.
const DefaultFallback = "/api/placeholder/800/600?text=Memory"

const (
	placeholderPrefix = "/api/placeholder/"
	maxPlaceholderDim = 4096
)

var (
	placeholderBackground = color.NRGBA{R: 0x9e, G: 0xd4, B: 0xd3, A: 0xff}
	placeholderForeground = color.NRGBA{R: 0xe5, G: 0xf8, B: 0xf7, A: 0xff}
)

// Placeholder is a generated stand-in image, located by
// /api/placeholder/{width}/{height}?text={text}.
type Placeholder struct {
	Width  int
	Height int
	Text   string
}

// ParsePlaceholder parses a placeholder locator.
func ParsePlaceholder(locator string) (Placeholder, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return Placeholder{}, fmt.Errorf("parsing placeholder: %w", err)
	}
	dims, ok := strings.CutPrefix(u.Path, placeholderPrefix)
	if !ok {
		return Placeholder{}, fmt.Errorf("not a placeholder: %s", locator)
	}
	w, h, ok := strings.Cut(dims, "/")
	if !ok {
		return Placeholder{}, fmt.Errorf("placeholder missing height: %s", locator)
	}
	p := Placeholder{Text: u.Query().Get("text")}
	if p.Width, err = parseDim(w); err != nil {
		return Placeholder{}, err
	}
	if p.Height, err = parseDim(h); err != nil {
		return Placeholder{}, err
	}
	return p, nil
}

func parseDim(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid placeholder dimension: %w", err)
	}
	if n < 1 || n > maxPlaceholderDim {
		return 0, fmt.Errorf("placeholder dimension out of range: %d", n)
	}
	return n, nil
}

// Image generates the placeholder: a light panel framed in the book's
// accent colour.
func (p Placeholder) Image() image.Image {
	bg := imaging.New(p.Width, p.Height, placeholderBackground)
	border := max(min(p.Width, p.Height)/20, 1)
	inner := imaging.New(max(p.Width-2*border, 1), max(p.Height-2*border, 1), placeholderForeground)
	return imaging.PasteCenter(bg, inner)
}

// fallbackImage returns the image shown for the fallback locator.
func fallbackImage(locator string) image.Image {
	p, err := ParsePlaceholder(locator)
	if err != nil {
		p = Placeholder{Width: 800, Height: 600}
	}
	return p.Image()
}
