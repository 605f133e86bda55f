package lightbox

import (
	"fmt"
	"time"

	"github.com/tanema/gween/ease"

	"lightbox/internal/geometry"
)

func boolValue(b bool) Value {
	if b {
		return True
	}
	return False
}

// applyOptions resolves the effective options of anchor
func (c *Controller) applyOptions(anchor Anchor) {
	opts := Merge(c.group.Options, anchor.Data)
	autoslide := ParseOption(opts, "autoslide", False)

	cfg := slideConfig{
		theme:     opts["theme"],
		class:     opts["class"],
		href:      opts["buttonHref"],
		autohide:  ParseOption(opts, "autohide", True),
		infinite:  ParseOption(opts, "infinite", False).On,
		inline:    ParseOption(opts, "inline", False).On,
		progress:  ParseOption(opts, "progress", True).On,
		autoslide: autoslide.On,
		preload:   ParseOption(opts, "preload", True).On,
		delay:     defaultDelay,
		animation: ParseAnimation(opts["animation"]),
		fit:       geometry.ParseFitMode(opts["fit"]),
	}
	if secs, ok := autoslide.Float(); ok && secs > 0 {
		cfg.delay = time.Duration(secs * float64(time.Second))
	}

	c.cfg = cfg
	c.state.Infinite = cfg.infinite
	if c.toggleTheme == "" && cfg.theme != "" {
		c.Theme(cfg.theme)
	}
	c.scene.Class = cfg.class
	c.scene.ProgressVisible = cfg.autoslide && cfg.progress

	ApplyControlWhitelist(opts)
	if c.host.Filterer == nil {
		opts["green"] = "false"
		opts["red"] = "false"
		opts["normal"] = "false"
	}
	c.opts = opts
}

// controlEnabled reports whether the built-in control name is visible for
// the current slide
func (c *Controller) controlEnabled(name string) bool {
	if name == "fullscreen" && c.host.Fullscreen == nil {
		return false
	}
	return ParseOption(c.opts, name, boolValue(ControlDefault(name))).On
}

// prepare resolves the current slide and queues the preload of the next
// one. It returns warm content for the current slide if the preload slot
// already holds it.
func (c *Controller) prepare(forward bool) Content {
	anchor := c.anchors[c.state.CurrentSlide-1]
	c.applyOptions(anchor)

	size := SourceSize(c.viewport, c.host.Environment)
	c.slide = Slide{
		Kind:  ParseKind(c.opts["media"]),
		Src:   SelectSource(anchor, c.opts, size),
		Title: ParseOption(c.opts, "title", StringValue(anchor.defaultTitle())).Str,
	}

	var warm Content
	if c.slide.Kind == KindImage {
		warm = c.takePreload(c.slide.Src)
	}
	c.clearPreload()

	if c.cfg.preload && forward && c.state.CurrentSlide < len(c.anchors) {
		next := c.anchors[c.state.CurrentSlide]
		if kind := next.Data["media"]; kind == "" || kind == "image" {
			c.preload.src = SelectSource(next, next.Data, size)
		}
	}

	for _, name := range Controls {
		if v := c.scene.control(name); v != nil {
			v.Visible = c.controlEnabled(name)
		}
	}
	return warm
}

// setupPage switches the panes to the current slide
func (c *Controller) setupPage(forward bool) {
	c.state.X, c.state.Y, c.state.Scale = 0, 0, 1

	if old := c.media; old != nil {
		c.media = nil
		c.scene.Current = nil
		if !old.Ready {
			// errored or still loading
			c.checkout(old)
		} else {
			c.scene.Outgoing = append(c.scene.Outgoing, old)
			c.teardowns[old] = c.sched.AfterFunc(teardownDelay, func() {
				delete(c.teardowns, old)
				if old != c.media {
					c.checkout(old)
				}
			})
			c.animateOut(old)
		}
	}

	c.gen++
	warm := c.prepare(forward)
	c.sliderTo(float64(c.state.CurrentSlide - 1))
	c.scene.SpinnerError = false
	c.startSlide(warm)

	if m := c.media; m != nil {
		m.PanX.Snap(0)
		m.PanY.Snap(0)
	}
	c.updateFooter()

	count := len(c.anchors)
	cur := c.state.CurrentSlide
	c.scene.PrevVisible = c.controlEnabled("prev") && (c.cfg.infinite || cur > 1)
	c.scene.NextVisible = c.controlEnabled("next") && (c.cfg.infinite || cur < count)
	c.scene.Page = ""
	if count > 1 && c.controlEnabled("page") {
		c.scene.Page = fmt.Sprintf("%d / %d", cur, count)
	}

	if c.group.OnChange != nil {
		c.group.OnChange(cur, c.opts.Clone())
	}
}

func (c *Controller) updateFooter() {
	title := c.slide.Title
	desc := ParseOption(c.opts, "description", False).Str
	button := ParseOption(c.opts, "button", False).Str

	if title == "" && desc == "" && button == "" {
		c.scene.Footer = Footer{}
	} else {
		c.scene.Footer = Footer{
			Visible:     true,
			Title:       title,
			Description: desc,
			Button:      button,
			HTML:        ParseOption(c.opts, "html", False).On,
			Pinned:      c.cfg.autohide.Str != "all",
		}
	}

	if !c.cfg.autohide.On {
		c.scene.Menu = true
	}
}

func (c *Controller) sliderTo(pos float64) {
	if c.sliderAnimated {
		c.scene.Slider.To(pos, slideDuration, ease.OutCubic)
	} else {
		c.scene.Slider.Snap(pos)
	}
}

// animateOut plays the exit transition of the outgoing media with the
// animation settings of the slide it belonged to
func (c *Controller) animateOut(m *MediaView) {
	anim := c.cfg.animation
	c.sliderAnimated = anim.Slide

	if anim.Fade {
		m.Opacity.To(0, mediaDuration, ease.OutQuad)
	}
	if anim.Scale {
		m.Scale.To(0.8, mediaDuration, ease.OutQuad)
	} else {
		m.Scale.To(1, mediaDuration, ease.OutQuad)
	}
	m.Class = anim.Custom
	m.PanX.To(0, panelDuration, ease.OutQuad)
	m.PanY.To(0, panelDuration, ease.OutQuad)
}

// startSlide creates or reuses the media of the current slide
func (c *Controller) startSlide(warm Content) {
	index := c.state.CurrentSlide

	// the pane may still hold its media from a moment ago; a gallery
	// shown over it can put another source at the same index
	for _, old := range c.scene.Outgoing {
		if old.Slide != index || old.released || old.Src != c.slide.Src || old.Kind != c.slide.Kind {
			continue
		}
		c.scene.removeOutgoing(old)
		if t, ok := c.teardowns[old]; ok {
			t.Stop()
			delete(c.teardowns, old)
		}
		old.gen = c.gen
		c.media = old
		c.scene.Current = old
		c.updateMediaViewport()
		c.reveal()
		return
	}

	m := &MediaView{
		Slide: index,
		Kind:  c.slide.Kind,
		Src:   c.slide.Src,
		Fit:   c.cfg.fit,
		gen:   c.gen,
	}
	m.Opacity.Snap(1)
	m.Scale.Snap(1)
	c.media = m
	c.scene.Current = m
	c.spinner = ParseOption(c.opts, "spinner", True).On

	if m.Kind == KindNode {
		c.startNode(m)
		return
	}

	c.toggleSpinner(true)
	m.Visible = !c.spinner

	if warm != nil {
		gen := c.gen
		c.debugf("Using preloaded %s", c.slide.Src)
		c.sched.AfterFunc(0, func() { c.mediaLoaded(m, gen, warm, nil) })
		return
	}

	c.load(LoadRequest{
		Kind:     m.Kind,
		Src:      c.slide.Src,
		Poster:   c.opts["poster"],
		Preload:  c.cfg.preload,
		Autoplay: ParseOption(c.opts, "autoplay", False).On,
		Muted:    ParseOption(c.opts, "muted", False).On,
		Controls: ParseOption(c.opts, "controls", True).On,
		Inline:   c.cfg.inline,
	}, m)
}

func (c *Controller) startNode(m *MediaView) {
	if c.host.Nodes == nil {
		c.failLoad(m, &MediaLoadError{Src: c.slide.Src, Kind: KindNode, Err: ErrUnsupportedCapability})
		return
	}
	node, ok := c.host.Nodes.ResolveNode(c.slide.Src)
	if !ok {
		c.failLoad(m, &MediaLoadError{Src: c.slide.Src, Kind: KindNode, Err: fmt.Errorf("node not found")})
		return
	}
	m.Content = node
	m.original = node
	m.Ready = true
	c.updateMediaViewport()
	c.reveal()
}

// load starts a media load. Completions that arrive while Load is still
// on the stack are deferred to the next scheduler tick.
func (c *Controller) load(req LoadRequest, m *MediaView) {
	gen := c.gen
	inCall := true
	c.host.Loader.Load(req, func(content Content, err error) {
		if inCall {
			c.sched.AfterFunc(0, func() { c.mediaLoaded(m, gen, content, err) })
			return
		}
		c.mediaLoaded(m, gen, content, err)
	})
	inCall = false
}

func (c *Controller) mediaLoaded(m *MediaView, gen uint64, content Content, err error) {
	if gen != c.gen || m != c.media || m.released {
		c.debugf("Discarding stale load for slide %d", m.Slide)
		if content != nil {
			c.host.Loader.Release(content)
		}
		return
	}

	c.toggleSpinner(false)
	if err != nil {
		c.failLoad(m, &MediaLoadError{Src: c.slide.Src, Kind: m.Kind, Err: err})
		return
	}

	m.Content = content
	m.original = content
	m.Ready = true
	c.updateMediaViewport()
	c.reveal()
}

func (c *Controller) failLoad(m *MediaView, err error) {
	m.Failed = true
	c.scene.SpinnerError = true
	c.toggleSpinner(false)
	c.log.Printf("Error: %v", err)
	c.settle()
}

// reveal runs the animate-in of the current media: the start state is set
// with transitions suspended, then the final state is tweened.
func (c *Controller) reveal() {
	m := c.media
	c.disableAutoresizer()
	m.Fit = c.cfg.fit

	anim := c.cfg.animation
	c.sliderAnimated = anim.Slide
	if anim.Fade {
		m.Opacity.Snap(0)
	}
	if anim.Scale {
		m.Scale.Snap(0.8)
	}

	m.Class = ""
	m.Opacity.To(1, mediaDuration, ease.OutQuad)
	m.Scale.To(c.state.Scale, mediaDuration, ease.OutQuad)
	m.Visible = true

	if c.preload.src != "" && !c.preload.pending && c.preload.content == nil {
		c.startPreload()
	}
	c.settle()
}

// settle re-arms autoplay once a slide is ready or failed
func (c *Controller) settle() {
	if c.cfg.autoslide || c.state.Playing {
		c.animateBar(c.state.Playing)
	}
}

func (c *Controller) toggleSpinner(on bool) {
	if c.spinner {
		c.scene.Spinning = on
	}
}

func (c *Controller) updateMediaViewport() {
	m := c.media
	if m == nil || m.Content == nil {
		c.mediaSize = geometry.Size{}
		return
	}
	mode := m.Fit
	if m.Autofit {
		mode = geometry.FitContain
	}
	c.mediaSize = geometry.FitSize(m.Size(), c.viewport, mode)
}

// checkout releases the media of a superseded slide. Nodes go back to
// their owner.
func (c *Controller) checkout(m *MediaView) {
	if m.released {
		return
	}
	m.released = true
	c.scene.removeOutgoing(m)
	if t, ok := c.teardowns[m]; ok {
		t.Stop()
		delete(c.teardowns, m)
	}

	if node, ok := m.original.(Node); ok && m.Kind == KindNode {
		node.Restore()
	} else {
		if m.Content != nil && m.Content != m.original {
			c.host.Loader.Release(m.Content)
		}
		if m.original != nil {
			c.host.Loader.Release(m.original)
		}
	}
	m.Content = nil
	m.original = nil
	m.Visible = false
}

func (c *Controller) startPreload() {
	c.preloadSeq++
	seq := c.preloadSeq
	src := c.preload.src
	c.preload.pending = true
	c.preload.gen = seq

	c.host.Loader.Load(LoadRequest{Kind: KindImage, Src: src, Warm: true}, func(content Content, err error) {
		if c.preload.gen != seq || c.preload.src != src {
			if content != nil {
				c.host.Loader.Release(content)
			}
			return
		}
		c.preload.pending = false
		if err != nil {
			c.debugf("Preload failed for %s: %v", src, err)
			return
		}
		c.preload.content = content
		c.debugf("Preloaded %s", src)
	})
}

func (c *Controller) takePreload(src string) Content {
	if c.preload.src != src || c.preload.content == nil {
		return nil
	}
	content := c.preload.content
	c.preload.content = nil
	return content
}

func (c *Controller) clearPreload() {
	if c.preload.content != nil {
		c.host.Loader.Release(c.preload.content)
	}
	c.preload = preloadSlot{}
}
