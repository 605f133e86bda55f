package lightbox

import (
	"fmt"

	"github.com/tanema/gween/ease"

	"lightbox/internal/geometry"
)

// ZoomIn scales the media up by one step
func (c *Controller) ZoomIn() {
	c.zoomStep(geometry.ZoomIn)
}

// ZoomOut scales the media down by one step, never below 1
func (c *Controller) ZoomOut() {
	c.zoomStep(geometry.ZoomOut)
}

func (c *Controller) zoomStep(dir geometry.ZoomDirection) {
	if !c.open || c.media == nil {
		return
	}
	if _, ok := geometry.ZoomStep(c.state.Scale, dir); !ok {
		return
	}

	c.disableAutoresizer()
	scale, offset, _ := geometry.Zoom(c.state.Scale, c.offset(), c.mediaSize, c.viewport, dir)
	c.applyZoom(scale, offset)
}

// Zoom sets the scale directly. Values are limited to 1..MaxScale and the
// pan offset is clamped for the new scale.
func (c *Controller) Zoom(factor float64) {
	if !c.open || c.media == nil {
		return
	}
	if factor < 1 {
		factor = 1
	}
	if factor > geometry.MaxScale {
		factor = geometry.MaxScale
	}

	offset := geometry.Vec{}
	if factor != 1 {
		offset = geometry.ClampPan(c.offset(), c.mediaSize, c.viewport, factor)
	}
	c.applyZoom(factor, offset)
}

func (c *Controller) applyZoom(scale float64, offset geometry.Vec) {
	c.state.Scale = scale
	c.state.X, c.state.Y = offset.X, offset.Y

	m := c.media
	m.Scale.To(scale, mediaDuration, ease.OutQuad)
	m.PanX.To(offset.X, panelDuration, ease.OutQuad)
	m.PanY.To(offset.Y, panelDuration, ease.OutQuad)
}

// Autofit toggles between the natural size and fitting the viewport. Any
// zoom and pan is reset.
func (c *Controller) Autofit() {
	if !c.open || c.media == nil {
		return
	}
	m := c.media

	c.toggleAutofit = c.state.Scale == 1 && !c.toggleAutofit
	m.Autofit = c.toggleAutofit

	c.state.Scale = 1
	c.state.X, c.state.Y = 0, 0
	m.Scale.Snap(1)
	m.PanX.Snap(0)
	m.PanY.Snap(0)
	c.updateMediaViewport()
}

func (c *Controller) disableAutoresizer() {
	if c.toggleAutofit {
		c.Autofit()
	}
}

func (c *Controller) offset() geometry.Vec {
	return geometry.Vec{X: c.state.X, Y: c.state.Y}
}

// Theme switches to the named theme; "" is the default theme
func (c *Controller) Theme(name string) {
	if c.toggleTheme != name {
		c.scene.Theme = name
		c.toggleTheme = name
	}
}

// ToggleTheme switches between the default theme and the slide's "theme"
// option (white if unset)
func (c *Controller) ToggleTheme() {
	name := ""
	if c.toggleTheme == "" {
		name = c.cfg.theme
		if name == "" {
			name = "white"
		}
	}
	c.Theme(name)
}

// Fullscreen toggles fullscreen mode
func (c *Controller) Fullscreen() error {
	fs := c.host.Fullscreen
	if fs == nil {
		return fmt.Errorf("fullscreen: %w", ErrUnsupportedCapability)
	}
	return c.SetFullscreen(!fs.IsActive())
}

// SetFullscreen enters or leaves fullscreen mode
func (c *Controller) SetFullscreen(on bool) error {
	fs := c.host.Fullscreen
	if fs == nil {
		return fmt.Errorf("fullscreen: %w", ErrUnsupportedCapability)
	}
	if on == fs.IsActive() {
		return nil
	}

	var err error
	if on {
		err = fs.Request()
	} else {
		err = fs.Exit()
	}
	c.updateFullscreenIndicator()
	if err != nil {
		return fmt.Errorf("fullscreen: %w", err)
	}
	return nil
}

func (c *Controller) updateFullscreenIndicator() {
	active := c.host.Fullscreen != nil && c.host.Fullscreen.IsActive()
	c.scene.Fullscreen = active
	if v := c.scene.control("fullscreen"); v != nil {
		v.On = active
	}
}

// Download hands the current source to the downloader
func (c *Controller) Download() error {
	if !c.open {
		return ErrNotOpen
	}
	if c.host.Downloader == nil {
		return fmt.Errorf("download: %w", ErrUnsupportedCapability)
	}
	if c.slide.Src == "" {
		return fmt.Errorf("download: slide %d has no source", c.state.CurrentSlide)
	}
	return c.host.Downloader.Download(c.slide.Src)
}

// ClickButton triggers the footer button: the group click handler if set,
// else the "buttonHref" link.
func (c *Controller) ClickButton() {
	if !c.open {
		return
	}
	if c.group.OnClick != nil {
		c.group.OnClick(c.state.CurrentSlide, c.opts.Clone())
		return
	}
	if c.cfg.href != "" && c.host.URLOpener != nil {
		c.logError(c.host.URLOpener.Open(c.cfg.href))
	}
}

// AddControl adds a header button that runs handler when clicked. Adding
// an existing name replaces its handler.
func (c *Controller) AddControl(name string, handler func()) {
	if !c.initialized {
		c.init()
	}
	c.addControl(name, handler, true)
}

func (c *Controller) addControl(name string, handler func(), custom bool) {
	for i := range c.controls {
		if c.controls[i].name == name {
			c.controls[i].handler = handler
			if v := c.scene.control(name); v != nil {
				v.Visible = true
			}
			return
		}
	}
	c.controls = append(c.controls, control{name: name, handler: handler, custom: custom})
	c.scene.Header = append(c.scene.Header, ControlView{Name: name, Visible: true, Custom: custom})
}

// RemoveControl removes a header button
func (c *Controller) RemoveControl(name string) {
	for i := range c.controls {
		if c.controls[i].name == name {
			c.controls = append(c.controls[:i], c.controls[i+1:]...)
			break
		}
	}
	for i := range c.scene.Header {
		if c.scene.Header[i].Name == name {
			c.scene.Header = append(c.scene.Header[:i], c.scene.Header[i+1:]...)
			break
		}
	}
}

// ClickControl runs the handler of a visible header button. It reports
// whether a handler ran.
func (c *Controller) ClickControl(name string) bool {
	if v := c.scene.control(name); v == nil || !v.Visible {
		return false
	}
	for _, ctl := range c.controls {
		if ctl.name == name && ctl.handler != nil {
			c.autohide()
			ctl.handler()
			return true
		}
	}
	return false
}

// FilterColor replaces the current image with a grayscale blend that keeps
// the given channel. The result arrives asynchronously; it is dropped if
// the slide changed in the meantime.
func (c *Controller) FilterColor(color FilterColor) error {
	if !c.open {
		return ErrNotOpen
	}
	if c.host.Filterer == nil {
		return fmt.Errorf("filter %s: %w", color, ErrUnsupportedCapability)
	}
	m := c.media
	if m == nil || !m.Ready || m.Kind != KindImage {
		return fmt.Errorf("filter %s: no image on slide %d", color, c.state.CurrentSlide)
	}

	c.scene.Spinning = true
	m.Visible = false
	gen := c.gen

	c.host.Filterer.Filter(m.original, color, func(result Content, err error) {
		if gen != c.gen || m != c.media || m.released {
			c.debugf("Discarding stale %s filter result", color)
			if result != nil {
				c.host.Loader.Release(result)
			}
			return
		}
		c.scene.Spinning = false
		m.Visible = true
		if err != nil {
			c.log.Printf("Error: Failed to filter %s: %v", c.slide.Src, err)
			return
		}
		c.replaceContent(m, result)
	})
	return nil
}

// RestoreOriginal drops any filter result and shows the loaded image again
func (c *Controller) RestoreOriginal() error {
	if !c.open {
		return ErrNotOpen
	}
	m := c.media
	if m == nil || !m.Ready {
		return fmt.Errorf("restore: no media on slide %d", c.state.CurrentSlide)
	}
	if m.Filtered() {
		c.replaceContent(m, m.original)
	}
	return nil
}

func (c *Controller) replaceContent(m *MediaView, content Content) {
	if m.Content != nil && m.Content != m.original && m.Content != content {
		c.host.Loader.Release(m.Content)
	}
	m.Content = content
	c.updateMediaViewport()
	c.reveal()
}
