// Package album builds the ordered table of pages making up a photo book and
// derives which of them are close enough to the current page to be rendered.
package album

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Placeholder is substituted in a Template by the 1-based page number.
const Placeholder = "{n}"

var (
	ErrNoPages       = errors.New("a book needs at least one page")
	ErrNoPlaceholder = errors.New("template missing " + Placeholder + " placeholder")
)

// Template locates the image of each page, e.g. "/images/webp/{n}.webp".
type Template struct {
	pattern string
}

// NewTemplate constructs the template "/{dir}/{n}.{ext}".
func NewTemplate(dir, ext string) Template {
	dir = strings.Trim(path.Clean("/"+dir), "/")
	ext = strings.TrimPrefix(ext, ".")
	if dir == "" {
		return Template{pattern: "/" + Placeholder + "." + ext}
	}
	return Template{pattern: "/" + dir + "/" + Placeholder + "." + ext}
}

// ParseTemplate parses a template, which must contain exactly one {n}
// placeholder.
func ParseTemplate(s string) (Template, error) {
	switch strings.Count(s, Placeholder) {
	case 0:
		return Template{}, fmt.Errorf("%s: %w", s, ErrNoPlaceholder)
	case 1:
		return Template{pattern: s}, nil
	default:
		return Template{}, fmt.Errorf("%s: more than one %s placeholder", s, Placeholder)
	}
}

// Locator returns the locator of the image at 1-based position n.
func (t Template) Locator(n int) string {
	return strings.Replace(t.pattern, Placeholder, strconv.Itoa(n), 1)
}

func (t Template) String() string {
	return t.pattern
}

// Page is one flippable leaf of the book.
type Page struct {
	// Index is the 0-based position of the page in the book.
	Index int
	// Locator of the image on the page's front face.
	Locator string
	// Back is the locator of the image on the page's back face, which is
	// the front face of the next page. Empty for the last page.
	Back string
}

// Number returns the 1-based page number.
func (p Page) Number() int {
	return p.Index + 1
}

// BuildPages returns total pages, in order, with locators substituted from
// the template.
func BuildPages(total int, tmpl Template) ([]Page, error) {
	if total < 1 {
		return nil, ErrNoPages
	}
	pages := make([]Page, total)
	for i := range pages {
		pages[i] = Page{Index: i, Locator: tmpl.Locator(i + 1)}
		if i > 0 {
			pages[i-1].Back = pages[i].Locator
		}
	}
	return pages, nil
}

// Locators returns the front face locators of the pages.
func Locators(pages []Page) []string {
	locs := make([]string, len(pages))
	for i, p := range pages {
		locs[i] = p.Locator
	}
	return locs
}
