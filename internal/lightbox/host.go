package lightbox

import (
	"log"
	"time"

	"lightbox/internal/geometry"
)

// Content is loaded media owned by the host (a decoded image, a video poster
// frame, a rendered text card).
type Content interface {
	Size() geometry.Size
}

// Node is embedded content borrowed from its owner for the lifetime of a
// slide
type Node interface {
	Content
	// Restore hands the node back to its owner
	Restore()
}

// LoadRequest describes one media load
type LoadRequest struct {
	Kind Kind
	Src  string
	// Warm marks a load into the preload slot. Its content is not
	// displayed until the slide it belongs to is reached.
	Warm bool

	// video attributes
	Poster   string
	Preload  bool
	Autoplay bool
	Muted    bool
	Controls bool
	Inline   bool
}

// Loader fetches and decodes media. done must be invoked exactly once and
// on the goroutine driving the Controller.
type Loader interface {
	Load(req LoadRequest, done func(Content, error))
	// Release drops content the controller no longer displays
	Release(c Content)
}

// FilterColor selects the channel kept by a color filter
type FilterColor string

const (
	FilterRed   FilterColor = "red"
	FilterGreen FilterColor = "green"
)

// Filterer runs the color filter off the UI loop. done follows the same
// delivery rules as Loader.
type Filterer interface {
	Filter(src Content, color FilterColor, done func(Content, error))
}

// NodeResolver looks up embedded nodes by reference
type NodeResolver interface {
	ResolveNode(ref string) (Node, bool)
}

// History is the navigation history the overlay pushes markers onto
type History interface {
	Push(state string)
	Go(delta int)
}

// Downloader saves the source behind the current slide
type Downloader interface {
	Download(src string) error
}

// URLOpener follows the footer button link
type URLOpener interface {
	Open(url string) error
}

// Environment carries the device hints used for source selection
type Environment struct {
	DevicePixelRatio float64
	Downlink         float64 // estimated bandwidth in Mbit/s, 0 if unknown
}

// Host bundles the collaborators of a Controller. Loader and History are
// required; the rest disable their features when nil.
type Host struct {
	Loader      Loader
	Filterer    Filterer
	Nodes       NodeResolver
	History     History
	Fullscreen  Fullscreen
	Downloader  Downloader
	URLOpener   URLOpener
	Environment Environment
	Clock       func() time.Time
	Logger      *log.Logger
	Debug       bool
}
