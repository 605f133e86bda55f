package lightbox

import (
	"time"

	"github.com/tanema/gween/ease"
)

// Next moves to the following slide. At the last slide it wraps in
// infinite mode, stops autoplay when playing and does nothing otherwise.
// It reports whether the slide changed.
func (c *Controller) Next() bool {
	if !c.open || len(c.anchors) < 2 {
		return false
	}

	switch {
	case c.state.CurrentSlide < len(c.anchors):
		return c.Goto(c.state.CurrentSlide + 1)
	case c.state.Infinite:
		// enter from the virtual slide before the first one
		c.scene.Slider.Snap(-1)
		return c.Goto(1)
	case c.state.Playing:
		c.setPlaying(false, false)
	}
	return false
}

// Prev moves to the preceding slide, wrapping to the last one in infinite
// mode. It reports whether the slide changed.
func (c *Controller) Prev() bool {
	if !c.open || len(c.anchors) < 2 {
		return false
	}

	switch {
	case c.state.CurrentSlide > 1:
		return c.Goto(c.state.CurrentSlide - 1)
	case c.state.Infinite:
		c.scene.Slider.Snap(float64(len(c.anchors)))
		return c.Goto(len(c.anchors))
	}
	return false
}

// Goto shows slide n (1-based). Going to the current slide does nothing.
// Out of range values are rejected, or wrapped in infinite mode.
func (c *Controller) Goto(n int) bool {
	if !c.open {
		return false
	}

	count := len(c.anchors)
	if n < 1 || n > count {
		if !c.state.Infinite {
			return false
		}
		n = ((n-1)%count+count)%count + 1
	}
	if n == c.state.CurrentSlide {
		return false
	}

	if c.state.Playing {
		c.playTimer.Stop()
		c.playTimer = nil
		c.animateBar(false)
	} else {
		c.autohide()
	}

	forward := n > c.state.CurrentSlide
	c.state.CurrentSlide = n
	c.setupPage(forward)
	return true
}

// Play toggles the slideshow
func (c *Controller) Play() {
	if c.open {
		c.setPlaying(!c.state.Playing, false)
	}
}

// SetPlaying starts or stops the slideshow
func (c *Controller) SetPlaying(on bool) {
	if c.open {
		c.setPlaying(on, false)
	}
}

func (c *Controller) setPlaying(on, skipAnimation bool) {
	if on == c.state.Playing {
		return
	}
	if c.state.Playing {
		c.playTimer.Stop()
		c.playTimer = nil
	}
	c.state.Playing = on
	if v := c.scene.control("play"); v != nil {
		v.On = on
	}
	if !skipAnimation {
		c.animateBar(on)
	}
}

// animateBar resets the progress bar and, when start is set, runs it
// alongside a fresh autoplay timer.
func (c *Controller) animateBar(start bool) {
	if c.cfg.progress {
		c.scene.Progress.Snap(0)
		if start {
			c.scene.Progress.To(1, float32(c.cfg.delay.Seconds()), ease.Linear)
		}
	}

	if start {
		c.playTimer.Stop()
		c.playTimer = c.sched.AfterFunc(c.cfg.delay, func() {
			c.playTimer = nil
			c.Next()
		})
	}
}

// autohide shows the menu and hides it again after a quiet period
func (c *Controller) autohide() {
	if !c.cfg.autohide.On {
		return
	}
	c.hideCooldown = c.sched.Now().Add(autohideIdle)
	if c.hideTimer == nil {
		c.scene.Menu = true
		c.scheduleHide(autohideDelay)
	}
}

func (c *Controller) scheduleHide(d time.Duration) {
	c.hideTimer = c.sched.AfterFunc(d, func() {
		now := c.sched.Now()
		if !now.Before(c.hideCooldown) {
			c.scene.Menu = false
			c.hideTimer = nil
		} else {
			c.scheduleHide(c.hideCooldown.Sub(now))
		}
	})
}

// Menu toggles the menu: hides it while shown, shows it with auto hide
// otherwise.
func (c *Controller) Menu() {
	if !c.open {
		return
	}
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
		c.scene.Menu = false
	} else {
		c.autohide()
	}
}
