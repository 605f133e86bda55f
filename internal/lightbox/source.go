package lightbox

import (
	"math"
	"strconv"
	"strings"

	"lightbox/internal/geometry"
)

// Kind is the media kind of a slide
type Kind int

const (
	KindImage Kind = iota
	KindVideo
	KindNode
)

// ParseKind maps the "media" option to a Kind; anything unknown is an image.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video":
		return KindVideo
	case "node":
		return KindNode
	default:
		return KindImage
	}
}

// String returns the option spelling of the kind
func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindNode:
		return "node"
	default:
		return "image"
	}
}

// Anchor is one entry of a gallery as handed to Show.
type Anchor struct {
	Href  string
	Title string
	Alt   string
	Data  Options
}

// Slide is an anchor resolved against its effective options.
type Slide struct {
	Kind  Kind
	Src   string
	Title string
}

// downlinkPixels converts a downlink hint in Mbit/s into a pixel budget
const downlinkPixels = 1200

// SourceSize returns the pixel size sources are selected for: the larger
// viewport side times the device pixel ratio, capped by the downlink hint.
func SourceSize(viewport geometry.Size, env Environment) float64 {
	dpr := env.DevicePixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	size := math.Max(viewport.W, viewport.H) * dpr
	if env.Downlink > 0 && env.Downlink*downlinkPixels < size {
		size = env.Downlink * downlinkPixels
	}
	return size
}

// SelectSource picks the source URL for size. Candidates are "src-<N>"
// options; the smallest N not below size wins, else the largest N. Without
// candidates "src" is used, then the anchor href.
func SelectSource(anchor Anchor, opts Options, size float64) string {
	var (
		best, largest   string
		bestN, largestN int
	)

	for key, val := range opts {
		if val == "" || !strings.HasPrefix(key, "src-") {
			continue
		}
		n, err := strconv.Atoi(key[len("src-"):])
		if err != nil || n <= 0 {
			continue
		}
		if float64(n) >= size && (best == "" || n < bestN) {
			best, bestN = val, n
		}
		if n > largestN {
			largest, largestN = val, n
		}
	}

	switch {
	case best != "":
		return best
	case largest != "":
		return largest
	case opts["src"] != "":
		return opts["src"]
	default:
		return anchor.Href
	}
}

// defaultTitle is the title used when the "title" option is absent
func (a Anchor) defaultTitle() string {
	if a.Alt != "" {
		return a.Alt
	}
	return a.Title
}
