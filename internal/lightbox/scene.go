package lightbox

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"lightbox/internal/geometry"
)

// Transition timings in seconds
const (
	slideDuration = float32(0.35)
	mediaDuration = float32(0.35)
	panelDuration = float32(0.2)
)

// Tween is an animated scene value. With transitions suspended it snaps,
// otherwise it eases towards its target as the scene is updated.
type Tween struct {
	Value  float64
	target float64
	tween  *gween.Tween
}

// Snap sets the value without animating
func (t *Tween) Snap(v float64) {
	t.Value = v
	t.target = v
	t.tween = nil
}

// To animates towards v over the given seconds
func (t *Tween) To(v float64, seconds float32, fn ease.TweenFunc) {
	if seconds <= 0 || v == t.Value {
		t.Snap(v)
		return
	}
	t.target = v
	t.tween = gween.New(float32(t.Value), float32(v), seconds, fn)
}

// Target returns the value the tween settles on
func (t *Tween) Target() float64 {
	return t.target
}

// Animating reports whether the tween is still running
func (t *Tween) Animating() bool {
	return t.tween != nil
}

func (t *Tween) update(dt float32) {
	if t.tween == nil {
		return
	}
	v, done := t.tween.Update(dt)
	t.Value = float64(v)
	if done {
		t.Snap(t.target)
	}
}

// MediaView is the retained state of one slide's media
type MediaView struct {
	Slide   int // 1-based index of the pane holding the media
	Kind    Kind
	Src     string // resolved source
	Content Content

	Opacity Tween
	Scale   Tween
	PanX    Tween
	PanY    Tween

	Fit     geometry.FitMode
	Autofit bool
	Class   string // custom animation class, cleared once animated in
	Visible bool
	Ready   bool
	Failed  bool

	original Content
	gen      uint64
	released bool
}

// Size returns the natural size of the displayed content
func (m *MediaView) Size() geometry.Size {
	if m == nil || m.Content == nil {
		return geometry.Size{}
	}
	return m.Content.Size()
}

// Filtered reports whether the displayed content is a filter result
func (m *MediaView) Filtered() bool {
	return m.Content != nil && m.Content != m.original
}

func (m *MediaView) update(dt float32) {
	m.Opacity.update(dt)
	m.Scale.update(dt)
	m.PanX.update(dt)
	m.PanY.update(dt)
}

// Footer is the caption area
type Footer struct {
	Visible     bool
	Title       string
	Description string
	Button      string
	HTML        bool
	// Pinned keeps the footer visible while the menu is hidden
	Pinned bool
}

// ControlView is a header button
type ControlView struct {
	Name    string
	Visible bool
	On      bool
	Custom  bool
}

// Scene is the retained model the presentation layer draws from. Only the
// controller writes it.
type Scene struct {
	Attached bool // widget is part of the page
	Visible  bool // "show" state; cleared immediately on close
	Inline   bool
	Menu     bool
	Theme    string
	Class    string

	Count    int
	Slider   Tween // position in slides, 0 is the first
	Current  *MediaView
	Outgoing []*MediaView

	Spinning     bool
	SpinnerError bool

	Progress        Tween // 0..1 towards the next autoplay tick
	ProgressVisible bool

	Footer      Footer
	Page        string
	PrevVisible bool
	NextVisible bool

	Header     []ControlView
	Fullscreen bool
}

// Update advances every running tween by dt seconds
func (s *Scene) Update(dt float32) {
	s.Slider.update(dt)
	s.Progress.update(dt)
	if s.Current != nil {
		s.Current.update(dt)
	}
	for _, m := range s.Outgoing {
		m.update(dt)
	}
}

// Animating reports whether any tween is still running
func (s *Scene) Animating() bool {
	if s.Slider.Animating() || s.Progress.Animating() {
		return true
	}
	views := append([]*MediaView{s.Current}, s.Outgoing...)
	for _, m := range views {
		if m == nil {
			continue
		}
		if m.Opacity.Animating() || m.Scale.Animating() || m.PanX.Animating() || m.PanY.Animating() {
			return true
		}
	}
	return false
}

// Control returns the header control called name
func (s *Scene) Control(name string) (ControlView, bool) {
	for _, c := range s.Header {
		if c.Name == name {
			return c, true
		}
	}
	return ControlView{}, false
}

func (s *Scene) control(name string) *ControlView {
	for i := range s.Header {
		if s.Header[i].Name == name {
			return &s.Header[i]
		}
	}
	return nil
}

func (s *Scene) removeOutgoing(m *MediaView) {
	for i, cur := range s.Outgoing {
		if cur == m {
			s.Outgoing = append(s.Outgoing[:i], s.Outgoing[i+1:]...)
			return
		}
	}
}
