package main

import (
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// MouseSettings contains mouse-specific configuration
type MouseSettings struct {
	WheelSensitivity float64 `yaml:"wheel_sensitivity" koanf:"wheel_sensitivity"`
	DoubleClickTime  int     `yaml:"double_click_time" koanf:"double_click_time"` // milliseconds
	EnableMouse      bool    `yaml:"enable_mouse" koanf:"enable_mouse"`
	WheelInverted    bool    `yaml:"wheel_inverted" koanf:"wheel_inverted"`
	WheelZoom        bool    `yaml:"wheel_zoom" koanf:"wheel_zoom"` // unbound wheel zooms the slide
}

// DoubleClickTracker tracks double-click state
type DoubleClickTracker struct {
	lastClickTime   time.Time
	lastClickButton ebiten.MouseButton
	clickCount      int
}

// MouseCombination represents a mouse action with optional modifiers
type MouseCombination struct {
	Button        ebiten.MouseButton
	IsWheel       bool
	WheelDeltaX   float64
	WheelDeltaY   float64
	IsDoubleClick bool
	Shift         bool
	Ctrl          bool
	Alt           bool
}

// MousebindingManager turns configured mouse strings into combinations and
// reports which actions fire in the current frame
type MousebindingManager struct {
	mousebindings      map[string][]string
	compiled           map[string][]MouseCombination
	settings           MouseSettings
	doubleClickTracker DoubleClickTracker
}

// NewMousebindingManager compiles the bindings once, skipping invalid ones
func NewMousebindingManager(mousebindings map[string][]string, settings MouseSettings) *MousebindingManager {
	buttons := getMouseMapping()
	compiled := make(map[string][]MouseCombination, len(mousebindings))
	for action, list := range mousebindings {
		for _, mouseStr := range list {
			if combo, ok := parseMouseCombination(mouseStr, buttons); ok {
				compiled[action] = append(compiled[action], combo)
			}
		}
	}
	return &MousebindingManager{
		mousebindings: mousebindings,
		compiled:      compiled,
		settings:      settings,
	}
}

// getMouseMapping returns a mapping from string mouse actions to Ebiten mouse buttons
func getMouseMapping() map[string]ebiten.MouseButton {
	return map[string]ebiten.MouseButton{
		"LeftClick":   ebiten.MouseButtonLeft,
		"RightClick":  ebiten.MouseButtonRight,
		"MiddleClick": ebiten.MouseButtonMiddle,
		"Back":        ebiten.MouseButton3, // side buttons
		"Forward":     ebiten.MouseButton4,
	}
}

// parseMouseCombination parses "Shift+LeftClick", "DoubleLeftClick" or
// "WheelUp"
func parseMouseCombination(mouseStr string, buttons map[string]ebiten.MouseButton) (MouseCombination, bool) {
	name, shift, ctrl, alt := splitModifiers(mouseStr)
	combination := MouseCombination{Shift: shift, Ctrl: ctrl, Alt: alt}

	switch {
	case strings.HasPrefix(name, "Wheel"):
		combination.IsWheel = true
		switch name {
		case "WheelUp":
			combination.WheelDeltaY = 1.0
		case "WheelDown":
			combination.WheelDeltaY = -1.0
		case "WheelLeft":
			combination.WheelDeltaX = -1.0
		case "WheelRight":
			combination.WheelDeltaX = 1.0
		default:
			return MouseCombination{}, false
		}
	case strings.HasPrefix(name, "Double"):
		button, exists := buttons[strings.TrimPrefix(name, "Double")]
		if !exists {
			return MouseCombination{}, false
		}
		combination.IsDoubleClick = true
		combination.Button = button
	default:
		button, exists := buttons[name]
		if !exists {
			return MouseCombination{}, false
		}
		combination.Button = button
	}

	return combination, true
}

// wheel returns the wheel delta of this frame after sensitivity and
// inversion
func (mm *MousebindingManager) wheel() (float64, float64) {
	x, y := ebiten.Wheel()
	if mm.settings.WheelInverted {
		y = -y
	}
	return x * mm.settings.WheelSensitivity, y * mm.settings.WheelSensitivity
}

func (mm *MousebindingManager) triggered(combination MouseCombination, mods modifiers) bool {
	if !mm.settings.EnableMouse {
		return false
	}
	if !mods.matches(combination.Shift, combination.Ctrl, combination.Alt) {
		return false
	}

	if combination.IsWheel {
		wheelX, wheelY := mm.wheel()
		if combination.WheelDeltaX != 0 {
			return combination.WheelDeltaX*wheelX > 0
		}
		return combination.WheelDeltaY*wheelY > 0
	}

	if combination.IsDoubleClick {
		return mm.checkDoubleClick(combination.Button)
	}

	return inpututil.IsMouseButtonJustPressed(combination.Button)
}

// checkDoubleClick checks if a double-click occurred for the given button
func (mm *MousebindingManager) checkDoubleClick(button ebiten.MouseButton) bool {
	if !inpututil.IsMouseButtonJustPressed(button) {
		return false
	}

	now := time.Now()
	window := time.Duration(mm.settings.DoubleClickTime) * time.Millisecond
	t := &mm.doubleClickTracker

	if t.lastClickButton == button && t.clickCount == 1 && now.Sub(t.lastClickTime) <= window {
		t.clickCount = 0
		t.lastClickTime = now
		return true
	}

	t.clickCount = 1
	t.lastClickButton = button
	t.lastClickTime = now
	return false
}

// CheckAction checks if any mouse binding for the given action is triggered
func (mm *MousebindingManager) CheckAction(action string) bool {
	mods := currentModifiers()
	for _, combination := range mm.compiled[action] {
		if mm.triggered(combination, mods) {
			return true
		}
	}
	return false
}

// ExecuteAction executes the given action using the InputActions interface
func (mm *MousebindingManager) ExecuteAction(action string, inputActions InputActions) bool {
	if !mm.CheckAction(action) {
		return false
	}
	return globalActionExecutor.ExecuteAction(action, inputActions)
}

// bindsWheel reports whether any binding uses the wheel, in which case the
// wheel no longer zooms the slide
func (mm *MousebindingManager) bindsWheel() bool {
	for _, list := range mm.compiled {
		for _, combination := range list {
			if combination.IsWheel {
				return true
			}
		}
	}
	return false
}

// GetMousebindings returns the current mouse bindings map (for display purposes)
func (mm *MousebindingManager) GetMousebindings() map[string][]string {
	return mm.mousebindings
}

// GetDefaultMouseSettings returns the default mouse settings
func GetDefaultMouseSettings() MouseSettings {
	return MouseSettings{
		WheelSensitivity: 1.0,
		DoubleClickTime:  300,
		EnableMouse:      true,
		WheelZoom:        true,
	}
}
