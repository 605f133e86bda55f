// Package gesture turns pointer and touch streams into drag offsets, taps
// and swipe decisions.
package gesture

import "lightbox/internal/geometry"

// SwipeDivisor sets the swipe threshold as a fraction of the viewport width.
const SwipeDivisor = 7

// State is the tracker state
type State int

const (
	Idle State = iota
	PressedNotDragging
	Dragging
)

// String returns a readable state name
func (s State) String() string {
	switch s {
	case PressedNotDragging:
		return "pressed"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Frame is the geometry snapshot a gesture is evaluated against.
type Frame struct {
	Media    geometry.Size // displayed media size at scale 1
	Viewport geometry.Size
	Scale    float64
}

// Nav describes the navigation context at release time.
type Nav struct {
	Current  int
	Count    int
	Infinite bool
}

// HasNext reports whether a forward navigation is possible
func (n Nav) HasNext() bool {
	return n.Current < n.Count || n.Infinite
}

// HasPrev reports whether a backward navigation is possible
func (n Nav) HasPrev() bool {
	return n.Current > 1 || n.Infinite
}

// Direction of a swipe
type Direction int

const (
	None Direction = iota
	Next
	Prev
)

// OutcomeKind classifies a release
type OutcomeKind int

const (
	// OutcomeNone is returned when no press was active
	OutcomeNone OutcomeKind = iota
	// OutcomeTap is a release without any movement
	OutcomeTap
	// OutcomeSwipe is a slidable drag that crossed the threshold
	OutcomeSwipe
	// OutcomeSettle is a slidable drag that missed the threshold
	OutcomeSettle
	// OutcomePan is a drag within zoomed media
	OutcomePan
)

// Outcome is the result of a release.
type Outcome struct {
	Kind      OutcomeKind
	Direction Direction
	// Offset is the cumulative drag offset at release; for swipes the
	// caller uses Offset.X to start the slide transition where the drag ended.
	Offset geometry.Vec
}

// Point is a pointer position in page coordinates
type Point struct {
	X, Y float64
}

// Tracker is the press/drag state machine. The pan offset itself belongs to
// the caller and is passed in and out.
type Tracker struct {
	state    State
	start    Point
	slidable bool
}

// State returns the current tracker state
func (t *Tracker) State() State {
	return t.state
}

// Slidable reports whether the current press drives slide navigation
func (t *Tracker) Slidable() bool {
	return t.slidable
}

// Active reports whether a press is in progress
func (t *Tracker) Active() bool {
	return t.state != Idle
}

// Press starts a gesture at p.
func (t *Tracker) Press(p Point, f Frame) {
	t.state = PressedNotDragging
	t.start = p
	t.slidable = f.Media.W*f.Scale <= f.Viewport.W
}

// PressTouches starts a gesture from a touch list. Only the first touch is
// read; an empty list is ignored and false is returned.
func (t *Tracker) PressTouches(touches []Point, f Frame) bool {
	if len(touches) == 0 {
		return false
	}
	t.Press(touches[0], f)
	return true
}

// Move feeds a pointer position and returns the updated offset.
// Any movement while pressed switches to Dragging.
func (t *Tracker) Move(p Point, f Frame, offset geometry.Vec) geometry.Vec {
	if t.state == Idle {
		return offset
	}

	// on a slidable frame horizontal movement drives the slider directly
	offset.X += p.X - t.start.X
	if !t.slidable {
		offset.X = geometry.ClampAxis(offset.X, f.Media.W, f.Viewport.W, f.Scale)
		if f.Media.H*f.Scale > f.Viewport.H {
			offset.Y += p.Y - t.start.Y
		}
		offset.Y = geometry.ClampAxis(offset.Y, f.Media.H, f.Viewport.H, f.Scale)
	}
	t.start = p
	t.state = Dragging
	return offset
}

// MoveTouches is Move for a touch list; empty lists are ignored.
func (t *Tracker) MoveTouches(touches []Point, f Frame, offset geometry.Vec) geometry.Vec {
	if len(touches) == 0 {
		return offset
	}
	return t.Move(touches[0], f, offset)
}

// Release ends the gesture and classifies it.
func (t *Tracker) Release(f Frame, nav Nav, offset geometry.Vec) Outcome {
	state := t.state
	t.state = Idle

	switch state {
	case Idle:
		return Outcome{Kind: OutcomeNone, Offset: offset}
	case PressedNotDragging:
		return Outcome{Kind: OutcomeTap, Offset: offset}
	}

	if !t.slidable {
		return Outcome{Kind: OutcomePan, Offset: offset}
	}

	threshold := f.Viewport.W / SwipeDivisor
	switch {
	case offset.X < -threshold && nav.HasNext():
		return Outcome{Kind: OutcomeSwipe, Direction: Next, Offset: offset}
	case offset.X > threshold && nav.HasPrev():
		return Outcome{Kind: OutcomeSwipe, Direction: Prev, Offset: offset}
	default:
		return Outcome{Kind: OutcomeSettle, Offset: offset}
	}
}

// Cancel drops any press without producing an outcome.
func (t *Tracker) Cancel() {
	t.state = Idle
}
