package lightbox

// Fullscreen is the normalized fullscreen capability
type Fullscreen interface {
	Request() error
	Exit() error
	IsActive() bool
}

// FullscreenProbe is one candidate implementation. Probes are tried in
// order and the first available one is used for the lifetime of the
// controller.
type FullscreenProbe struct {
	Name      string
	Available func() bool
	Request   func() error
	Exit      func() error
	IsActive  func() bool
}

type probedFullscreen struct {
	probe FullscreenProbe
}

func (f *probedFullscreen) Request() error {
	return f.probe.Request()
}

func (f *probedFullscreen) Exit() error {
	return f.probe.Exit()
}

func (f *probedFullscreen) IsActive() bool {
	if f.probe.IsActive == nil {
		return false
	}
	return f.probe.IsActive()
}

// ProbeFullscreen resolves the probe table once. It returns nil when no
// probe is usable, in which case the fullscreen control is dropped.
func ProbeFullscreen(probes []FullscreenProbe) Fullscreen {
	for _, p := range probes {
		if p.Request == nil || p.Exit == nil {
			continue
		}
		if p.Available != nil && !p.Available() {
			continue
		}
		return &probedFullscreen{probe: p}
	}
	return nil
}

// FullscreenName returns the probe name behind f, or "" if f was not
// produced by ProbeFullscreen.
func FullscreenName(f Fullscreen) string {
	if p, ok := f.(*probedFullscreen); ok {
		return p.probe.Name
	}
	return ""
}
