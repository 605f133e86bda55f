package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"lightbox/internal/gesture"
	"lightbox/internal/lightbox"
)

// Layout constants shared by hit testing and drawing
const (
	controlSize   = 44.0
	controlGap    = 4.0
	headerMargin  = 8.0
	arrowWidth    = 60.0
	arrowHeight   = 60.0
	buttonWidth   = 160.0
	buttonHeight  = 40.0
	footerPadding = 16.0
)

type rect struct {
	X, Y, W, H float64
}

func (r rect) contains(x, y float64) bool {
	return r.W > 0 && x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

type controlRect struct {
	Name string
	Rect rect
	On   bool
}

// sceneLayout holds the interactive regions of a frame. Empty rects are
// not shown.
type sceneLayout struct {
	Controls []controlRect
	Prev     rect
	Next     rect
	Button   rect
	Footer   bool
}

// computeLayout places the overlay chrome for a viewport of vw x vh.
// Header buttons run from the right edge in header order, so "close" is
// rightmost.
func computeLayout(scene *lightbox.Scene, vw, vh float64) sceneLayout {
	var l sceneLayout
	if scene == nil || !scene.Visible {
		return l
	}

	if scene.Menu {
		var visible []lightbox.ControlView
		for _, c := range scene.Header {
			if c.Visible {
				visible = append(visible, c)
			}
		}
		x := vw - headerMargin - controlSize
		for _, c := range visible {
			l.Controls = append(l.Controls, controlRect{
				Name: c.Name,
				Rect: rect{x, headerMargin, controlSize, controlSize},
				On:   c.On,
			})
			x -= controlSize + controlGap
		}

		if scene.PrevVisible {
			l.Prev = rect{0, vh/2 - arrowHeight/2, arrowWidth, arrowHeight}
		}
		if scene.NextVisible {
			l.Next = rect{vw - arrowWidth, vh/2 - arrowHeight/2, arrowWidth, arrowHeight}
		}
	}

	l.Footer = scene.Footer.Visible && (scene.Menu || scene.Footer.Pinned)
	if l.Footer && scene.Footer.Button != "" {
		l.Button = rect{vw - buttonWidth - 10, vh - buttonHeight - footerPadding, buttonWidth, buttonHeight}
	}
	return l
}

// hit returns what lies under (x, y): "control:<name>", "prev", "next",
// "button" or ""
func (l sceneLayout) hit(x, y float64) string {
	for _, c := range l.Controls {
		if c.Rect.contains(x, y) {
			return "control:" + c.Name
		}
	}
	switch {
	case l.Prev.contains(x, y):
		return "prev"
	case l.Next.contains(x, y):
		return "next"
	case l.Button.contains(x, y):
		return "button"
	}
	return ""
}

// InputHandler handles keyboard, mouse and touch input for one frame
type InputHandler struct {
	inputActions        InputActions
	pointer             PointerTarget
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager

	pressed    bool
	lastX      int
	lastY      int
	touchIDs   []ebiten.TouchID
	lastTouch  []gesture.Point
	wheelBound bool
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, pointer PointerTarget, km *KeybindingManager, mm *MousebindingManager) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		pointer:             pointer,
		keybindingManager:   km,
		mousebindingManager: mm,
		wheelBound:          mm.bindsWheel(),
	}
}

// HandleInput processes all input for the current frame
// Returns true if any input was processed, false otherwise
func (h *InputHandler) HandleInput() bool {
	inputProcessed := false

	for _, def := range actionDefinitions {
		if h.keybindingManager.ExecuteAction(def.Name, h.inputActions) {
			inputProcessed = true
		}
	}
	for _, def := range actionDefinitions {
		if h.mousebindingManager.ExecuteAction(def.Name, h.inputActions) {
			inputProcessed = true
		}
	}

	inputProcessed = h.handlePointer() || inputProcessed
	inputProcessed = h.handleTouches() || inputProcessed
	inputProcessed = h.handleWheel() || inputProcessed

	return inputProcessed
}

func (h *InputHandler) handlePointer() bool {
	if !h.mousebindingManager.settings.EnableMouse {
		return false
	}
	x, y := ebiten.CursorPosition()
	p := gesture.Point{X: float64(x), Y: float64(y)}
	vw, vh := h.pointer.GetViewport()
	inside := p.X >= 0 && p.Y >= 0 && p.X < vw && p.Y < vh
	moved := x != h.lastX || y != h.lastY
	h.lastX, h.lastY = x, y

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && currentModifiers().matches(false, false, false) {
		layout := computeLayout(h.pointer.GetScene(), vw, vh)
		switch target := layout.hit(p.X, p.Y); target {
		case "":
			h.pressed = true
			h.pointer.PointerDown(p)
		case "prev", "next":
			h.pointer.ClickArrow(target == "next")
		case "button":
			h.pointer.ClickButton()
		default:
			h.pointer.ClickControl(target[len("control:"):])
		}
		return true
	}

	if h.pressed {
		switch {
		case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
			h.pressed = false
			h.pointer.PointerUp()
			return true
		case !inside:
			h.pressed = false
			h.pointer.PointerLeave()
			return true
		}
	}

	if moved && inside {
		h.pointer.PointerMove(p)
		return h.pressed
	}
	return false
}

func (h *InputHandler) handleTouches() bool {
	h.touchIDs = ebiten.AppendTouchIDs(h.touchIDs[:0])
	if len(h.touchIDs) == 0 {
		if h.lastTouch != nil {
			h.lastTouch = nil
			h.pointer.TouchEnd()
			return true
		}
		return false
	}

	points := make([]gesture.Point, 0, len(h.touchIDs))
	for _, id := range h.touchIDs {
		x, y := ebiten.TouchPosition(id)
		points = append(points, gesture.Point{X: float64(x), Y: float64(y)})
	}

	if h.lastTouch == nil {
		h.lastTouch = points
		vw, vh := h.pointer.GetViewport()
		layout := computeLayout(h.pointer.GetScene(), vw, vh)
		switch target := layout.hit(points[0].X, points[0].Y); target {
		case "":
			h.pointer.TouchStart(points)
		case "prev", "next":
			h.pointer.ClickArrow(target == "next")
		case "button":
			h.pointer.ClickButton()
		default:
			h.pointer.ClickControl(target[len("control:"):])
		}
		return true
	}

	if points[0] != h.lastTouch[0] {
		h.lastTouch = points
		h.pointer.TouchMove(points)
		return true
	}
	return false
}

func (h *InputHandler) handleWheel() bool {
	if h.wheelBound || !h.mousebindingManager.settings.WheelZoom || !h.mousebindingManager.settings.EnableMouse {
		return false
	}
	_, dy := h.mousebindingManager.wheel()
	if dy == 0 {
		return false
	}
	// ebiten reports scrolling up as positive
	h.pointer.Wheel(-dy)
	return true
}
