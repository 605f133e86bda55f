package lightbox

import (
	"strings"

	"github.com/tanema/gween/ease"

	"lightbox/internal/geometry"
	"lightbox/internal/gesture"
)

// Key is a logical key the overlay reacts to
type Key int

const (
	KeyBackspace Key = iota + 1
	KeyEscape
	KeySpace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyPlus
	KeyMinus
)

var keyNames = map[string]Key{
	"backspace": KeyBackspace,
	"escape":    KeyEscape,
	"space":     KeySpace,
	"left":      KeyLeft,
	"right":     KeyRight,
	"up":        KeyUp,
	"down":      KeyDown,
	"plus":      KeyPlus,
	"minus":     KeyMinus,
}

// ParseKey maps a key name such as "escape" to a Key
func ParseKey(name string) (Key, bool) {
	k, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// HandleKey applies a key press. Zoom keys and Backspace need the zoom
// controls, Escape the close control and Space an autoslide option. It
// reports whether the key was consumed.
func (c *Controller) HandleKey(k Key) bool {
	if !c.open {
		return false
	}
	zoom := c.opts["zoom-in"] != "false"

	switch k {
	case KeyBackspace:
		if zoom {
			c.Autofit()
		}
	case KeyEscape:
		if c.opts["close"] != "false" {
			c.Close()
		}
	case KeySpace:
		if c.cfg.autoslide {
			c.Play()
		}
	case KeyLeft:
		c.Prev()
	case KeyRight:
		c.Next()
	case KeyUp, KeyPlus:
		if zoom {
			c.ZoomIn()
		}
	case KeyDown, KeyMinus:
		if zoom {
			c.ZoomOut()
		}
	default:
		return false
	}
	return true
}

// Wheel zooms in for negative deltaY (scrolling up) and out for positive.
func (c *Controller) Wheel(deltaY float64) {
	if !c.open || c.opts["zoom-in"] == "false" {
		return
	}
	switch {
	case deltaY < 0:
		c.ZoomIn()
	case deltaY > 0:
		c.ZoomOut()
	}
}

// Resize records a new viewport size
func (c *Controller) Resize(viewport geometry.Size) {
	c.viewport = viewport
	if c.media != nil {
		c.updateMediaViewport()
		off := geometry.ClampPan(c.offset(), c.mediaSize, c.viewport, c.state.Scale)
		c.state.X, c.state.Y = off.X, off.Y
		c.media.PanX.Snap(off.X)
		c.media.PanY.Snap(off.Y)
	}
	c.updateFullscreenIndicator()
}

// Viewport returns the last recorded viewport size
func (c *Controller) Viewport() geometry.Size {
	return c.viewport
}

// MediaSize returns the displayed size of the current media at scale 1
func (c *Controller) MediaSize() geometry.Size {
	return c.mediaSize
}

func (c *Controller) frame() gesture.Frame {
	return gesture.Frame{Media: c.mediaSize, Viewport: c.viewport, Scale: c.state.Scale}
}

// PointerDown starts a drag or tap
func (c *Controller) PointerDown(p gesture.Point) {
	if !c.open {
		return
	}
	c.tracker.Press(p, c.frame())
}

// PointerMove drags the panel while pressed and keeps the menu awake
// otherwise
func (c *Controller) PointerMove(p gesture.Point) {
	if !c.open {
		return
	}
	if !c.tracker.Active() {
		c.autohide()
		return
	}
	c.setPan(c.tracker.Move(p, c.frame(), c.offset()))
	c.state.Dragging = c.tracker.State() == gesture.Dragging
}

// PointerUp ends the gesture
func (c *Controller) PointerUp() {
	c.release()
}

// PointerLeave ends the gesture like a release
func (c *Controller) PointerLeave() {
	c.release()
}

// TouchStart starts a gesture from the first touch point
func (c *Controller) TouchStart(touches []gesture.Point) {
	if !c.open {
		return
	}
	c.tracker.PressTouches(touches, c.frame())
}

// TouchMove follows the first touch point
func (c *Controller) TouchMove(touches []gesture.Point) {
	if !c.open {
		return
	}
	if !c.tracker.Active() {
		c.autohide()
		return
	}
	c.setPan(c.tracker.MoveTouches(touches, c.frame(), c.offset()))
	c.state.Dragging = c.tracker.State() == gesture.Dragging
}

// TouchEnd ends the gesture
func (c *Controller) TouchEnd() {
	c.release()
}

// setPan moves the panel 1:1 with the pointer
func (c *Controller) setPan(off geometry.Vec) {
	c.state.X, c.state.Y = off.X, off.Y
	if m := c.media; m != nil {
		m.PanX.Snap(off.X)
		m.PanY.Snap(off.Y)
	}
}

func (c *Controller) release() {
	if !c.tracker.Active() {
		return
	}
	cur := c.state.CurrentSlide
	out := c.tracker.Release(c.frame(), gesture.Nav{
		Current:  cur,
		Count:    len(c.anchors),
		Infinite: c.state.Infinite,
	}, c.offset())
	c.state.Dragging = false

	switch out.Kind {
	case gesture.OutcomeTap:
		c.Menu()
	case gesture.OutcomeSwipe:
		// continue the slide transition from where the drag ended
		if c.viewport.W > 0 {
			c.scene.Slider.Snap(geometry.SliderPosition(cur-1, out.Offset.X/c.viewport.W*100))
		}
		if out.Direction == gesture.Next {
			c.Next()
		} else {
			c.Prev()
		}
		c.settlePan()
	case gesture.OutcomeSettle:
		c.settlePan()
	}
}

// settlePan returns the panel to the origin after a slide drag
func (c *Controller) settlePan() {
	c.state.X = 0
	if m := c.media; m != nil {
		m.PanX.To(0, panelDuration, ease.OutQuad)
	}
}
