// Package geometry holds the pan/zoom math of the lightbox.
// Everything here is a pure function over explicit values.
package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// ZoomFactor is the multiplier applied by a single zoom-out step
	// (zoom-in divides by it).
	ZoomFactor = 0.65
	// MaxScale is the largest scale a zoom-in step may reach.
	MaxScale = 50.0

	// snapEpsilon absorbs float drift when stepping back to scale 1
	snapEpsilon = 1e-9
)

// ZoomDirection selects the zoom step direction
type ZoomDirection int

const (
	ZoomIn ZoomDirection = iota
	ZoomOut
)

// Size is a width/height pair in device pixels
type Size struct {
	W, H float64
}

// Vec is a 2D offset in device pixels
type Vec struct {
	X, Y float64
}

// IsZero reports whether both components are zero
func (v Vec) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Scale multiplies both components by f
func (v Vec) Scale(f float64) Vec {
	return Vec{v.X * f, v.Y * f}
}

// ClampAxis clamps a single pan component.
// If the scaled media fits the viewport the result is 0, otherwise the
// component is limited to ±(media*scale - viewport)/2.
func ClampAxis(offset, media, viewport, scale float64) float64 {
	scaled := media * scale
	if scaled <= viewport {
		return 0
	}
	limit := (scaled - viewport) / 2
	return math.Max(-limit, math.Min(limit, offset))
}

// ClampPan clamps both pan components against the media and viewport sizes.
func ClampPan(offset Vec, media, viewport Size, scale float64) Vec {
	return Vec{
		X: ClampAxis(offset.X, media.W, viewport.W, scale),
		Y: ClampAxis(offset.Y, media.H, viewport.H, scale),
	}
}

// ZoomStep computes the scale after one zoom step.
// A zoom-in past MaxScale is rejected (ok == false, scale unchanged).
// A zoom-out never goes below 1: once the stepped value drops under 1 the
// result is exactly 1.
func ZoomStep(scale float64, dir ZoomDirection) (float64, bool) {
	switch dir {
	case ZoomIn:
		next := scale / ZoomFactor
		if next > MaxScale {
			return scale, false
		}
		return next, true
	case ZoomOut:
		next := scale * ZoomFactor
		if next < 1 || math.Abs(next-1) < snapEpsilon {
			return 1, true
		}
		return next, true
	default:
		return scale, false
	}
}

// Zoom applies one zoom step to scale and pan offset together.
// The offset is scaled by the same ratio to keep the visually anchored point
// and then clamped for the new scale. At scale 1 the offset is always zero.
func Zoom(scale float64, offset Vec, media, viewport Size, dir ZoomDirection) (float64, Vec, bool) {
	next, ok := ZoomStep(scale, dir)
	if !ok {
		return scale, offset, false
	}
	if next == 1 {
		return 1, Vec{}, true
	}
	scaled := offset.Scale(next / scale)
	return next, ClampPan(scaled, media, viewport, next), true
}

// FitMode describes how media is sized inside the viewport before zoom.
type FitMode int

const (
	// FitScaleDown shows media at natural size, shrinking it to fit if needed
	FitScaleDown FitMode = iota
	// FitContain scales media up or down to fit entirely (autofit)
	FitContain
	// FitCover scales media to cover the viewport
	FitCover
	// FitFill stretches media to the viewport
	FitFill
	// FitNone always uses the natural size
	FitNone
)

// ParseFitMode maps the "fit" option to a FitMode.
// Unknown or empty values fall back to FitScaleDown.
func ParseFitMode(s string) FitMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contain":
		return FitContain
	case "cover":
		return FitCover
	case "fill":
		return FitFill
	case "none":
		return FitNone
	default:
		return FitScaleDown
	}
}

// String returns the option spelling of the mode
func (m FitMode) String() string {
	switch m {
	case FitContain:
		return "contain"
	case FitCover:
		return "cover"
	case FitFill:
		return "fill"
	case FitNone:
		return "none"
	default:
		return "scale-down"
	}
}

// FitSize returns the displayed (client) size of media with the given
// natural size inside the viewport.
func FitSize(natural, viewport Size, mode FitMode) Size {
	if natural.W <= 0 || natural.H <= 0 || viewport.W <= 0 || viewport.H <= 0 {
		return natural
	}
	contain := math.Min(viewport.W/natural.W, viewport.H/natural.H)

	switch mode {
	case FitContain:
		return Size{natural.W * contain, natural.H * contain}
	case FitCover:
		cover := math.Max(viewport.W/natural.W, viewport.H/natural.H)
		return Size{natural.W * cover, natural.H * cover}
	case FitFill:
		return viewport
	case FitNone:
		return natural
	default:
		if contain < 1 {
			return Size{natural.W * contain, natural.H * contain}
		}
		return natural
	}
}

// MediaTransform renders the media transform used by CSS based adapters.
func MediaTransform(scale float64) string {
	return "translate(-50%, -50%) scale(" + formatNumber(scale) + ")"
}

// PanelTransform renders the panel translation; empty at the origin so the
// stylesheet default applies.
func PanelTransform(x, y float64) string {
	if x == 0 && y == 0 {
		return ""
	}
	return fmt.Sprintf("translate(%spx, %spx)", formatNumber(x), formatNumber(y))
}

// SliderTransform renders the slider position for a zero-based slide index
// with an extra offset in percent of the viewport width.
func SliderTransform(index int, offsetPercent float64) string {
	return "translateX(" + formatNumber(float64(-index*100)+offsetPercent) + "%)"
}

// SliderPosition converts a zero-based slide index and a drag offset in
// percent into a position measured in slides.
func SliderPosition(index int, offsetPercent float64) float64 {
	return float64(index) - offsetPercent/100
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
