// Package lightbox implements the overlay gallery: slide lifecycle,
// navigation, autoplay, zoom and the gesture handling that drives them.
//
// A Controller is single threaded. Every method, including the callbacks
// passed to Loader and Filterer, must run on the goroutine that calls
// Update.
package lightbox

import (
	"log"
	"time"

	"github.com/google/uuid"

	"lightbox/internal/geometry"
	"lightbox/internal/gesture"
)

const (
	teardownDelay = 650 * time.Millisecond
	detachDelay   = 200 * time.Millisecond
	autohideDelay = 3000 * time.Millisecond
	autohideIdle  = 2950 * time.Millisecond
	defaultDelay  = 7 * time.Second // autoplay
)

// ViewState is the navigation and transform state of an open gallery
type ViewState struct {
	CurrentSlide int
	Scale        float64
	X, Y         float64
	Dragging     bool
	Playing      bool
	Infinite     bool
}

// Group holds gallery wide options and host callbacks
type Group struct {
	Options  Options
	Index    int
	Inline   bool
	OnShow   func(index int)
	OnChange func(index int, opts Options)
	OnClose  func()
	OnClick  func(index int, opts Options)
}

// slideConfig is the parsed form of the effective options of a slide
type slideConfig struct {
	theme     string
	class     string
	href      string
	autohide  Value
	infinite  bool
	inline    bool
	progress  bool
	autoslide bool
	preload   bool
	delay     time.Duration
	animation Animation
	fit       geometry.FitMode
}

type control struct {
	name    string
	handler func()
	custom  bool
}

// preloadSlot holds the single warm-up load for the next slide
type preloadSlot struct {
	src     string
	content Content
	pending bool
	gen     uint64
}

// Controller owns one overlay instance
type Controller struct {
	host  Host
	log   *log.Logger
	sched *Scheduler
	scene Scene
	id    string

	initialized bool
	open        bool
	lastUpdate  time.Time

	anchors []Anchor
	group   Group
	opts    Options
	cfg     slideConfig
	slide   Slide
	state   ViewState

	viewport  geometry.Size
	mediaSize geometry.Size
	tracker   gesture.Tracker

	gen       uint64
	media     *MediaView
	preload   preloadSlot
	teardowns map[*MediaView]*Timer

	playTimer    *Timer
	hideTimer    *Timer
	hideCooldown time.Time
	detachTimer  *Timer

	sliderAnimated bool
	toggleAutofit  bool
	toggleTheme    string
	spinner        bool
	preloadSeq     uint64

	controls []control
}

// New creates a controller for host. The instance id tags the history
// entries it pushes.
func New(host Host) *Controller {
	if host.Clock == nil {
		host.Clock = time.Now
	}
	if host.Logger == nil {
		host.Logger = log.Default()
	}
	if host.History == nil {
		host.History = NewMemoryHistory()
	}

	now := host.Clock()
	return &Controller{
		host:       host,
		log:        host.Logger,
		sched:      NewScheduler(now),
		id:         uuid.NewString(),
		lastUpdate: now,
		state:      ViewState{Scale: 1},
		teardowns:  make(map[*MediaView]*Timer),
	}
}

// ID returns the instance id
func (c *Controller) ID() string {
	return c.id
}

// Scene returns the retained model for the presentation layer
func (c *Controller) Scene() *Scene {
	return &c.scene
}

// State returns a copy of the view state
func (c *Controller) State() ViewState {
	return c.state
}

// IsOpen reports whether a gallery is shown
func (c *Controller) IsOpen() bool {
	return c.open
}

// Count returns the number of slides of the open gallery
func (c *Controller) Count() int {
	return len(c.anchors)
}

// Slide returns the resolved current slide
func (c *Controller) Slide() Slide {
	return c.slide
}

// Options returns a copy of the effective options of the current slide
func (c *Controller) Options() Options {
	return c.opts.Clone()
}

// Scheduler exposes the timer queue, mainly for hosts that need to defer
// work onto the same clock.
func (c *Controller) Scheduler() *Scheduler {
	return c.sched
}

// Update advances timers and animations to now. It must be called once per
// frame.
func (c *Controller) Update(now time.Time) {
	dt := now.Sub(c.lastUpdate)
	if dt < 0 {
		dt = 0
	}
	c.lastUpdate = now

	c.sched.Advance(now)
	c.scene.Update(float32(dt.Seconds()))
}

// Show opens the gallery at index (1-based). A zero index falls back to
// group.Index, then to the first slide. Showing an empty gallery does
// nothing.
func (c *Controller) Show(anchors []Anchor, group *Group, index int) {
	if group != nil {
		c.group = *group
		if index == 0 {
			index = group.Index
		}
	}
	if len(anchors) == 0 {
		c.debugf("Show called with empty gallery")
		return
	}
	c.anchors = anchors

	if !c.initialized {
		c.init()
	}
	if c.group.OnShow != nil {
		c.group.OnShow(index)
	}

	// a reopen within the dismiss transition keeps the widget attached
	if c.detachTimer.Stop() {
		c.detachTimer = nil
	}
	c.scene.Attached = true
	c.scene.Count = len(anchors)

	if index < 1 {
		index = 1
	}
	if index > len(anchors) {
		index = len(anchors)
	}
	c.state = ViewState{CurrentSlide: index, Scale: 1}
	c.sliderAnimated = false
	c.setupPage(true)
	c.updateFullscreenIndicator()
	c.showGallery()
}

func (c *Controller) init() {
	c.initialized = true
	c.controls = nil
	c.scene.Header = nil

	c.addControl("close", c.Close, false)
	if c.host.Fullscreen != nil {
		c.addControl("fullscreen", func() { c.logError(c.Fullscreen()) }, false)
	}
	c.addControl("autofit", c.Autofit, false)
	c.addControl("zoom-in", c.ZoomIn, false)
	c.addControl("zoom-out", c.ZoomOut, false)
	c.addControl("green", func() { c.logError(c.FilterColor(FilterGreen)) }, false)
	c.addControl("red", func() { c.logError(c.FilterColor(FilterRed)) }, false)
	c.addControl("normal", func() { c.logError(c.RestoreOriginal()) }, false)
	c.addControl("theme", c.ToggleTheme, false)
	c.addControl("play", c.Play, false)
	c.addControl("download", func() { c.logError(c.Download()) }, false)
}

func (c *Controller) showGallery() {
	if !c.open {
		c.host.History.Push(historyMarker(c.id, 1))
		c.host.History.Push(historyMarker(c.id, 2))
	}

	c.open = true
	c.scene.Visible = true
	c.scene.Inline = c.cfg.inline || c.group.Inline

	c.autohide()

	if c.cfg.autoslide {
		c.setPlaying(true, true)
		// slides that settled synchronously never armed the timer
		if c.media != nil && (c.media.Ready || c.media.Failed) {
			c.animateBar(true)
		}
	}
}

// Close dismisses the overlay. The widget stays attached for the dismiss
// transition and is detached afterwards unless reopened first.
func (c *Controller) Close() {
	c.close(false)
}

// HandlePopState reacts to a history navigation landing on state. It
// closes the overlay when state is one of its own markers.
func (c *Controller) HandlePopState(state string) {
	if c.open && isOwnMarker(c.id, state) {
		c.close(true)
	}
}

func (c *Controller) close(popped bool) {
	if !c.open {
		return
	}

	c.detachTimer = c.sched.AfterFunc(detachDelay, c.detach)

	c.scene.Visible = false
	if c.host.Fullscreen != nil {
		c.logError(c.SetFullscreen(false))
	}

	if popped {
		c.host.History.Go(-1)
	} else {
		c.host.History.Go(-2)
	}

	c.teardown()
}

// teardown resets everything tied to the open gallery; shared by close and
// Destroy
func (c *Controller) teardown() {
	c.open = false
	c.clearPreload()
	if c.state.Playing {
		c.setPlaying(false, false)
	}
	c.gen++
	if c.media != nil {
		c.checkout(c.media)
		c.media = nil
		c.scene.Current = nil
	}
	for m, t := range c.teardowns {
		t.Fire()
		delete(c.teardowns, m)
	}
	c.hideTimer.Stop()
	c.hideTimer = nil
	if c.toggleTheme != "" {
		c.ToggleTheme()
	}
	c.scene.Class = ""
	c.scene.Menu = false
	c.scene.Spinning = false
	c.scene.SpinnerError = false
	c.toggleAutofit = false
	c.tracker.Cancel()
	c.state = ViewState{CurrentSlide: c.state.CurrentSlide, Scale: 1}

	if c.group.OnClose != nil {
		c.group.OnClose()
	}
}

func (c *Controller) detach() {
	c.detachTimer = nil
	c.scene.Attached = false
	c.anchors = nil
	c.opts = nil
	c.group = Group{}
	c.slide = Slide{}
}

// Destroy tears down the open gallery, forces the pending detach and resets
// the controller to its initial state, controls included.
func (c *Controller) Destroy() {
	if c.initialized {
		c.scene.Visible = false
		c.scene.Inline = false
		if c.open {
			if c.host.Fullscreen != nil {
				c.logError(c.SetFullscreen(false))
			}
			c.teardown()
		}
	}

	if !c.detachTimer.Fire() {
		c.detach()
	}
	c.detachTimer = nil

	c.controls = nil
	c.initialized = false
	c.toggleTheme = ""
	c.preload = preloadSlot{}
	c.scene = Scene{}
	c.state = ViewState{Scale: 1}
	c.mediaSize = geometry.Size{}
	c.cfg = slideConfig{}
}

func (c *Controller) logError(err error) {
	if err != nil {
		c.log.Printf("Error: %v", err)
	}
}

func (c *Controller) debugf(format string, args ...any) {
	if c.host.Debug {
		c.log.Printf("DEBUG: "+format, args...)
	}
}
