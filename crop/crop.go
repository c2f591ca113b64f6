// Package crop implements the pointer gesture that draws a rectangular
// crop selection.
//
// A Gesture is armed by Toggle, follows one press-drag-release sequence
// and disarms itself on release. It is not safe for concurrent use.
package crop

import "github.com/gogpu/ggedit/canvas"

// State is the pointer state of a gesture.
type State uint8

// Gesture states.
const (
	Idle State = iota
	Dragging
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Gesture tracks a crop rectangle drawn by dragging.
type Gesture struct {
	armed  bool
	state  State
	origin canvas.Point
	size   canvas.Point
}

// Toggle arms a disarmed gesture. On an armed gesture it cancels any drag
// in progress and disarms. It returns the new armed state.
func (g *Gesture) Toggle() bool {
	if g.armed {
		g.Cancel()
		return false
	}
	g.armed = true
	return true
}

// Cancel disarms the gesture and drops any selection.
func (g *Gesture) Cancel() {
	*g = Gesture{}
}

// Armed reports whether the next Down starts a selection.
func (g *Gesture) Armed() bool { return g.armed }

// State returns the pointer state.
func (g *Gesture) State() State { return g.state }

// Down starts a selection at p. It is ignored unless the gesture is armed
// and idle, and reports whether a drag started.
func (g *Gesture) Down(p canvas.Point) bool {
	if !g.armed || g.state != Idle {
		return false
	}
	g.state = Dragging
	g.origin = p
	g.size = canvas.Point{}
	return true
}

// Move updates the selection size to p minus the origin. It is ignored
// unless dragging and reports whether the selection changed.
func (g *Gesture) Move(p canvas.Point) bool {
	if g.state != Dragging {
		return false
	}
	g.size = canvas.Pt(p.X-g.origin.X, p.Y-g.origin.Y)
	return true
}

// Up ends the drag at p and disarms. It returns the normalized selection
// and true, or false when no drag was in progress. The rectangle may be
// empty.
func (g *Gesture) Up(p canvas.Point) (canvas.Rect, bool) {
	if g.state != Dragging {
		return canvas.Rect{}, false
	}
	g.Move(p)
	r := g.Selection().Normalize()
	g.Cancel()
	return r, true
}

// Selection returns the live selection as drawn: origin plus signed size.
// Width and height are negative when dragging up or left.
func (g *Gesture) Selection() canvas.Rect {
	return canvas.Rect{X: g.origin.X, Y: g.origin.Y, W: g.size.X, H: g.size.Y}
}
