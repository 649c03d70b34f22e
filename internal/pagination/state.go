package pagination

import "github.com/leg100/flipbook/internal/resource"

const (
	// TransitionStarted is published when a page begins to flip.
	TransitionStarted resource.EventType = "transition-started"
	// TransitionSettled is published when a flip completes.
	TransitionSettled resource.EventType = "transition-settled"
)

// Direction of a page flip.
type Direction int

const (
	None Direction = iota
	Forward
	Backward
)

func (d Direction) String() string {
	return [...]string{"none", "forward", "backward"}[d]
}

// step is the change in page index a flip in the direction makes.
func (d Direction) step() int {
	switch d {
	case Forward:
		return 1
	case Backward:
		return -1
	default:
		return 0
	}
}

// State is the navigation state of a book: either idle on a page, or
// transitioning away from it in a direction.
type State struct {
	// Index of the current page. While transitioning this is the page being
	// flipped away from.
	Index         int
	Transitioning bool
	Direction     Direction
}

// Target returns the index of the page being flipped to, or the current
// index when idle.
func (s State) Target() int {
	if !s.Transitioning {
		return s.Index
	}
	return s.Index + s.Direction.step()
}
