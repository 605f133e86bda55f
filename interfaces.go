package main

import (
	"time"

	"lightbox/internal/gesture"
	"lightbox/internal/lightbox"
)

const (
	// Overlay message display duration
	overlayMessageDuration = 2 * time.Second
)

// RenderState provides read-only access to viewer state for the renderer
type RenderState interface {
	GetScene() *lightbox.Scene
	GetSlide() lightbox.Slide

	// UI state
	IsShowingHelp() bool
	IsShowingInfo() bool
	GetOverlayMessage() string
	GetOverlayMessageTime() time.Time

	// Display data
	GetInfoText() string
	GetFontSize() float64
	GetConfigStatus() ConfigLoadResult
	GetKeybindings() map[string][]string
	GetMousebindings() map[string][]string
}

// InputActions provides action methods for the input handler
type InputActions interface {
	// Application control
	Exit()
	ToggleHelp()
	ToggleInfo()

	// HandleKey passes a key to the gallery; it reports whether it was used
	HandleKey(k lightbox.Key) bool

	// Navigation
	JumpTo(slide int)
	Back()
	GetTotalSlidesCount() int

	// View
	ToggleFullscreen()
	ToggleTheme()
	ToggleMenu()
	Download()
	Filter(color lightbox.FilterColor)
	RestoreOriginal()

	// Messages
	ShowOverlayMessage(message string)
}

// PointerTarget receives pointer and wheel input in window coordinates
type PointerTarget interface {
	GetScene() *lightbox.Scene
	GetViewport() (float64, float64)
	PointerDown(p gesture.Point)
	PointerMove(p gesture.Point)
	PointerUp()
	PointerLeave()
	TouchStart(points []gesture.Point)
	TouchMove(points []gesture.Point)
	TouchEnd()
	Wheel(deltaY float64)
	ClickControl(name string)
	ClickButton()
	ClickArrow(forward bool)
}
