package lightbox

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"lightbox/internal/geometry"
)

type filterCall struct {
	src   Content
	color FilterColor
	done  func(Content, error)
}

type fakeFilterer struct {
	calls []filterCall
}

func (f *fakeFilterer) Filter(src Content, color FilterColor, done func(Content, error)) {
	f.calls = append(f.calls, filterCall{src: src, color: color, done: done})
}

type recorder struct {
	got []string
	err error
}

func (r *recorder) Download(src string) error {
	r.got = append(r.got, src)
	return r.err
}

func (r *recorder) Open(url string) error {
	r.got = append(r.got, url)
	return r.err
}

func TestZoom(t *testing.T) {
	env := openGallery(t, nil)
	c := env.c

	c.ZoomIn()
	if got := c.State().Scale; math.Abs(got-1/geometry.ZoomFactor) > 1e-9 {
		t.Errorf("Expected one zoom step, got %v", got)
	}
	if target := c.Scene().Current.Scale.Target(); target != c.State().Scale {
		t.Errorf("Expected the media to tween to %v, got %v", c.State().Scale, target)
	}

	tests := []struct {
		factor   float64
		expected float64
	}{
		{0.5, 1},
		{3, 3},
		{100, geometry.MaxScale},
		{1, 1},
	}
	for _, tt := range tests {
		c.Zoom(tt.factor)
		if c.State().Scale != tt.expected {
			t.Errorf("Zoom(%v) = %v, want %v", tt.factor, c.State().Scale, tt.expected)
		}
	}
	if c.State().X != 0 || c.State().Y != 0 {
		t.Errorf("Expected no pan at scale 1, got %+v", c.State())
	}

	c.Zoom(geometry.MaxScale)
	c.ZoomIn()
	if c.State().Scale != geometry.MaxScale {
		t.Error("Zoom in past the maximum must be ignored")
	}
}

func TestAutofit(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.c
	c.Resize(geometry.Size{W: 1600, H: 1200})
	c.Show(anchors(2), nil, 1)
	env.loader.complete(t, "img1.jpg")

	if c.MediaSize() != (geometry.Size{W: 800, H: 600}) {
		t.Fatalf("Expected natural size, got %v", c.MediaSize())
	}

	c.Autofit()
	if c.MediaSize() != (geometry.Size{W: 1600, H: 1200}) || !c.Scene().Current.Autofit {
		t.Errorf("Expected autofit to fill the viewport, got %v", c.MediaSize())
	}

	c.ZoomIn()
	if c.Scene().Current.Autofit {
		t.Error("Zooming must leave autofit")
	}
	if c.MediaSize() != (geometry.Size{W: 800, H: 600}) {
		t.Errorf("Expected natural size after leaving autofit, got %v", c.MediaSize())
	}

	// while zoomed autofit only resets the zoom
	c.HandleKey(KeyBackspace)
	if c.State().Scale != 1 || c.Scene().Current.Autofit {
		t.Errorf("Expected a plain reset, got scale %v autofit %v", c.State().Scale, c.Scene().Current.Autofit)
	}
	c.HandleKey(KeyBackspace)
	if !c.Scene().Current.Autofit {
		t.Error("Expected autofit at scale 1")
	}
}

func TestFilterColor(t *testing.T) {
	filters := &Group{Options: Options{"green": "true", "red": "true", "normal": "true"}}

	t.Run("Unsupported", func(t *testing.T) {
		env := openGallery(t, filters)
		c := env.c

		if v, ok := c.Scene().Control("green"); !ok || v.Visible {
			t.Errorf("Expected a hidden green control, got %+v", v)
		}
		if c.ClickControl("green") {
			t.Error("Hidden controls must not run")
		}
		if err := c.FilterColor(FilterGreen); !errors.Is(err, ErrUnsupportedCapability) {
			t.Errorf("Expected ErrUnsupportedCapability, got %v", err)
		}
	})

	t.Run("ReplaceAndRestore", func(t *testing.T) {
		filterer := &fakeFilterer{}
		env := newTestEnv(t, func(h *Host) { h.Filterer = filterer })
		c := env.c
		c.Show(anchors(2), filters, 1)
		original := env.loader.complete(t, "img1.jpg")

		if v, _ := c.Scene().Control("red"); !v.Visible {
			t.Error("Expected the red control with a filterer")
		}
		if !c.ClickControl("green") {
			t.Fatal("Expected the green control to run")
		}
		if len(filterer.calls) != 1 || filterer.calls[0].color != FilterGreen || filterer.calls[0].src != original {
			t.Fatalf("Unexpected filter calls %+v", filterer.calls)
		}
		if !c.Scene().Spinning {
			t.Error("Expected the spinner while filtering")
		}

		result := &fakeContent{name: "green", w: 800, h: 600}
		filterer.calls[0].done(result, nil)
		m := c.Scene().Current
		if m.Content != result || !m.Filtered() || c.Scene().Spinning || !m.Visible {
			t.Error("Expected the filter result shown")
		}

		if err := c.RestoreOriginal(); err != nil {
			t.Fatalf("RestoreOriginal failed: %v", err)
		}
		if m.Content != original || m.Filtered() {
			t.Error("Expected the original back")
		}
		if !env.loader.wasReleased(result) || env.loader.wasReleased(original) {
			t.Errorf("Unexpected releases %v", env.loader.released)
		}
	})

	t.Run("Stale", func(t *testing.T) {
		filterer := &fakeFilterer{}
		env := newTestEnv(t, func(h *Host) { h.Filterer = filterer })
		c := env.c
		c.Show(anchors(2), nil, 1)
		env.loader.complete(t, "img1.jpg")

		if err := c.FilterColor(FilterRed); err != nil {
			t.Fatal(err)
		}
		c.Next()

		result := &fakeContent{name: "red"}
		filterer.calls[0].done(result, nil)
		if !env.loader.wasReleased(result) {
			t.Error("Expected a stale filter result to be released")
		}
		if c.Scene().Current.Content == result {
			t.Error("Stale filter result must not be shown")
		}
	})

	t.Run("NotReady", func(t *testing.T) {
		env := newTestEnv(t, func(h *Host) { h.Filterer = &fakeFilterer{} })
		env.c.Show(anchors(2), nil, 1)

		if err := env.c.FilterColor(FilterGreen); err == nil {
			t.Error("Expected an error while the image loads")
		}
	})
}

func TestFullscreen(t *testing.T) {
	active := false
	probe := FullscreenProbe{
		Name:     "window",
		Request:  func() error { active = true; return nil },
		Exit:     func() error { active = false; return nil },
		IsActive: func() bool { return active },
	}
	env := newTestEnv(t, func(h *Host) { h.Fullscreen = ProbeFullscreen([]FullscreenProbe{probe}) })
	c := env.c
	c.Show(anchors(2), nil, 1)

	if !c.ClickControl("fullscreen") || !active {
		t.Fatal("Expected the fullscreen control to request fullscreen")
	}
	if v, _ := c.Scene().Control("fullscreen"); !v.On || !c.Scene().Fullscreen {
		t.Error("Expected the fullscreen indicator on")
	}

	c.Close()
	if active || c.Scene().Fullscreen {
		t.Error("Expected close to leave fullscreen")
	}

	env = newTestEnv(t, nil)
	env.c.Show(anchors(2), nil, 1)
	if _, ok := env.c.Scene().Control("fullscreen"); ok {
		t.Error("No fullscreen control without support")
	}
	if err := env.c.Fullscreen(); !errors.Is(err, ErrUnsupportedCapability) {
		t.Errorf("Expected ErrUnsupportedCapability, got %v", err)
	}
}

func TestDownload(t *testing.T) {
	rec := &recorder{}
	env := newTestEnv(t, func(h *Host) { h.Downloader = rec })
	c := env.c

	if err := c.Download(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Expected ErrNotOpen, got %v", err)
	}

	c.Show([]Anchor{{Href: "a.jpg", Data: Options{"download": "true"}}}, nil, 1)
	if v, _ := c.Scene().Control("download"); !v.Visible {
		t.Error("Expected the download control")
	}
	if !c.ClickControl("download") || !reflect.DeepEqual(rec.got, []string{"a.jpg"}) {
		t.Errorf("Unexpected downloads %v", rec.got)
	}

	env = newTestEnv(t, nil)
	env.c.Show(anchors(1), nil, 1)
	if err := env.c.Download(); !errors.Is(err, ErrUnsupportedCapability) {
		t.Errorf("Expected ErrUnsupportedCapability, got %v", err)
	}
}

func TestClickButton(t *testing.T) {
	opener := &recorder{}
	env := newTestEnv(t, func(h *Host) { h.URLOpener = opener })
	c := env.c

	list := []Anchor{{Href: "a.jpg", Data: Options{"button": "Buy", "buttonHref": "https://example.com/a"}}}
	c.Show(list, nil, 1)
	c.ClickButton()
	if !reflect.DeepEqual(opener.got, []string{"https://example.com/a"}) {
		t.Errorf("Unexpected opened urls %v", opener.got)
	}

	var clicked []int
	c.Close()
	c.Show(list, &Group{OnClick: func(i int, opts Options) {
		clicked = append(clicked, i)
		if opts["button"] != "Buy" {
			t.Errorf("Expected slide options, got %v", opts)
		}
	}}, 1)
	c.ClickButton()
	if !reflect.DeepEqual(clicked, []int{1}) || len(opener.got) != 1 {
		t.Errorf("Expected the click handler to win, clicked %v opened %v", clicked, opener.got)
	}
}

func TestControls(t *testing.T) {
	env := openGallery(t, nil)
	c := env.c

	var names []string
	for _, v := range c.Scene().Header {
		names = append(names, v.Name)
	}
	expected := []string{"close", "autofit", "zoom-in", "zoom-out", "green", "red", "normal", "theme", "play", "download"}
	if !reflect.DeepEqual(names, expected) {
		t.Errorf("Unexpected header %v", names)
	}

	clicks := 0
	c.AddControl("share", func() { clicks++ })
	c.AddControl("share", func() { clicks += 10 })
	if len(c.Scene().Header) != len(expected)+1 {
		t.Errorf("Re-adding a control must replace it, header has %d", len(c.Scene().Header))
	}
	if !c.ClickControl("share") || clicks != 10 {
		t.Errorf("Expected the replaced handler to run, clicks %d", clicks)
	}

	c.RemoveControl("share")
	if c.ClickControl("share") {
		t.Error("Removed control still runs")
	}
	if _, ok := c.Scene().Control("share"); ok {
		t.Error("Removed control still in the header")
	}

	if !c.ClickControl("zoom-in") || c.State().Scale == 1 {
		t.Error("Expected the zoom-in control to zoom")
	}
	if !c.ClickControl("close") || c.IsOpen() {
		t.Error("Expected the close control to close")
	}
}

func TestControlVisibility(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.c
	c.Show([]Anchor{
		{Href: "a.jpg"},
		{Href: "b.jpg", Data: Options{"control": "zoom,theme"}},
	}, nil, 1)

	visible := func(name string) bool {
		v, _ := c.Scene().Control(name)
		return v.Visible
	}

	if !visible("close") || !visible("zoom-in") || visible("theme") || visible("play") {
		t.Error("Unexpected default control visibility")
	}
	if !c.Scene().NextVisible || c.Scene().PrevVisible {
		t.Error("Expected only the next arrow on the first slide")
	}

	c.Next()
	if visible("close") || !visible("zoom-out") || !visible("theme") {
		t.Error("Expected the whitelist of slide 2 to apply")
	}
	if c.Scene().PrevVisible || c.Scene().Page != "" {
		t.Error("Expected arrows and page hidden by the whitelist")
	}
}
