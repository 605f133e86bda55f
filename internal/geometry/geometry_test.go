package geometry

import (
	"math"
	"testing"
)

func TestClampAxis(t *testing.T) {
	tests := []struct {
		name     string
		offset   float64
		media    float64
		viewport float64
		scale    float64
		expected float64
	}{
		{"Fits viewport", 40, 500, 800, 1, 0},
		{"Exactly fits", 40, 400, 800, 2, 0},
		{"Within bounds", 50, 1000, 800, 1, 50},
		{"Clamped positive", 500, 1000, 800, 1, 100},
		{"Clamped negative", -500, 1000, 800, 1, -100},
		{"Scaled clamp", 900, 500, 800, 4, 600},
		{"Zero offset", 0, 1000, 800, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClampAxis(tt.offset, tt.media, tt.viewport, tt.scale)
			if result != tt.expected {
				t.Errorf("ClampAxis(%v, %v, %v, %v) = %v, want %v",
					tt.offset, tt.media, tt.viewport, tt.scale, result, tt.expected)
			}
		})
	}
}

func TestClampPanBounds(t *testing.T) {
	media := Size{640, 480}
	viewport := Size{800, 600}
	offsets := []Vec{{0, 0}, {1e6, -1e6}, {-37, 12}, {250.5, 999}}

	for scale := 1.0; scale <= 50; scale *= 1.3 {
		for _, off := range offsets {
			got := ClampPan(off, media, viewport, scale)

			limitX := (media.W*scale - viewport.W) / 2
			limitY := (media.H*scale - viewport.H) / 2

			if media.W*scale <= viewport.W {
				if got.X != 0 {
					t.Errorf("scale %.3f: expected X=0 when media fits, got %v", scale, got.X)
				}
			} else if math.Abs(got.X) > limitX {
				t.Errorf("scale %.3f: X=%v exceeds limit %v", scale, got.X, limitX)
			}

			if media.H*scale <= viewport.H {
				if got.Y != 0 {
					t.Errorf("scale %.3f: expected Y=0 when media fits, got %v", scale, got.Y)
				}
			} else if math.Abs(got.Y) > limitY {
				t.Errorf("scale %.3f: Y=%v exceeds limit %v", scale, got.Y, limitY)
			}
		}
	}
}

func TestZoomStep(t *testing.T) {
	t.Run("ZoomInDivides", func(t *testing.T) {
		got, ok := ZoomStep(1, ZoomIn)
		if !ok || got != 1/ZoomFactor {
			t.Errorf("Expected %v, got %v (ok=%v)", 1/ZoomFactor, got, ok)
		}
	})

	t.Run("ZoomInRejectedAboveMax", func(t *testing.T) {
		scale := 40.0 // 40/0.65 > 50
		got, ok := ZoomStep(scale, ZoomIn)
		if ok || got != scale {
			t.Errorf("Expected rejection with scale unchanged, got %v (ok=%v)", got, ok)
		}
	})

	t.Run("ZoomOutSnapsToOne", func(t *testing.T) {
		got, ok := ZoomStep(1.2, ZoomOut)
		if !ok || got != 1 {
			t.Errorf("Expected snap to 1, got %v (ok=%v)", got, ok)
		}
	})

	t.Run("ZoomOutAtOne", func(t *testing.T) {
		got, _ := ZoomStep(1, ZoomOut)
		if got != 1 {
			t.Errorf("Expected 1, got %v", got)
		}
	})
}

func TestZoomRoundTrip(t *testing.T) {
	for n := 1; n <= 12; n++ {
		scale := 1.0
		accepted := 0
		for i := 0; i < n; i++ {
			next, ok := ZoomStep(scale, ZoomIn)
			if ok {
				accepted++
			}
			scale = next
		}
		if scale > MaxScale {
			t.Fatalf("n=%d: scale %v exceeds max", n, scale)
		}
		for i := 0; i < n; i++ {
			scale, _ = ZoomStep(scale, ZoomOut)
		}
		if scale != 1 {
			t.Errorf("n=%d (accepted %d): expected exactly 1 after round trip, got %v", n, accepted, scale)
		}
	}
}

func TestZoomOffset(t *testing.T) {
	media := Size{1000, 1000}
	viewport := Size{800, 600}

	scale, off, ok := Zoom(2, Vec{100, 100}, media, viewport, ZoomIn)
	if !ok {
		t.Fatal("zoom in rejected")
	}
	want := Vec{100 / ZoomFactor, 100 / ZoomFactor}
	if math.Abs(off.X-want.X) > 1e-9 || math.Abs(off.Y-want.Y) > 1e-9 {
		t.Errorf("Expected offset %v, got %v", want, off)
	}

	// zoom back out to the floor resets the offset
	for scale > 1 {
		scale, off, _ = Zoom(scale, off, media, viewport, ZoomOut)
	}
	if !off.IsZero() {
		t.Errorf("Expected zero offset at scale 1, got %v", off)
	}
}

func TestZoomOutClampsOffset(t *testing.T) {
	media := Size{1000, 1000}
	viewport := Size{800, 800}

	// at scale 2 the x limit is 600; after zooming out to 1.3 it is 250
	scale, off, _ := Zoom(2, Vec{600, -600}, media, viewport, ZoomOut)
	limit := (media.W*scale - viewport.W) / 2
	if off.X > limit || off.Y < -limit {
		t.Errorf("offset %v exceeds limit %v at scale %v", off, limit, scale)
	}
}

func TestFitSize(t *testing.T) {
	viewport := Size{800, 600}

	tests := []struct {
		name     string
		natural  Size
		mode     FitMode
		expected Size
	}{
		{"Small scale-down keeps natural", Size{400, 300}, FitScaleDown, Size{400, 300}},
		{"Large scale-down shrinks", Size{1600, 1200}, FitScaleDown, Size{800, 600}},
		{"Contain upscales", Size{400, 300}, FitContain, Size{800, 600}},
		{"Cover fills", Size{400, 400}, FitCover, Size{800, 800}},
		{"Fill stretches", Size{100, 400}, FitFill, Size{800, 600}},
		{"None keeps natural", Size{1600, 1200}, FitNone, Size{1600, 1200}},
		{"Zero size", Size{0, 0}, FitContain, Size{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FitSize(tt.natural, viewport, tt.mode)
			if result != tt.expected {
				t.Errorf("FitSize(%v, %v) = %v, want %v", tt.natural, tt.mode, result, tt.expected)
			}
		})
	}
}

func TestParseFitMode(t *testing.T) {
	tests := []struct {
		input    string
		expected FitMode
	}{
		{"contain", FitContain},
		{"COVER", FitCover},
		{" fill ", FitFill},
		{"none", FitNone},
		{"", FitScaleDown},
		{"bogus", FitScaleDown},
	}

	for _, tt := range tests {
		if got := ParseFitMode(tt.input); got != tt.expected {
			t.Errorf("ParseFitMode(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestTransformStrings(t *testing.T) {
	if got := MediaTransform(0.8); got != "translate(-50%, -50%) scale(0.8)" {
		t.Errorf("MediaTransform: got %q", got)
	}
	if got := PanelTransform(0, 0); got != "" {
		t.Errorf("PanelTransform at origin: got %q", got)
	}
	if got := PanelTransform(12.5, -3); got != "translate(12.5px, -3px)" {
		t.Errorf("PanelTransform: got %q", got)
	}
	if got := SliderTransform(2, 15); got != "translateX(-185%)" {
		t.Errorf("SliderTransform: got %q", got)
	}
	if got := SliderPosition(2, 15); math.Abs(got-1.85) > 1e-12 {
		t.Errorf("SliderPosition: got %v", got)
	}
}
