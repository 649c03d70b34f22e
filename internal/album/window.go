package album

import "slices"

// Visible returns the pages no further than radius pages away from current,
// i.e. the pages worth keeping rendered.
func Visible(pages []Page, current, radius int) []Page {
	if radius < 0 || len(pages) == 0 {
		return nil
	}
	lo, hi := Bounds(len(pages), current, radius)
	if lo > hi {
		return nil
	}
	return slices.Clone(pages[lo : hi+1])
}

// Bounds returns the closed window [center-radius, center+radius] clamped to
// [0, total-1]. An empty window is returned as lo > hi.
func Bounds(total, center, radius int) (lo, hi int) {
	lo = max(center-radius, 0)
	hi = min(center+radius, total-1)
	return lo, hi
}
