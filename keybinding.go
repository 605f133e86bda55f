package main

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeybindingManager resolves configured key strings into key combinations
// and reports which actions fire in the current frame
type KeybindingManager struct {
	keybindings map[string][]string
	compiled    map[string][]KeyCombination
}

// NewKeybindingManager compiles the bindings once. Unknown keys are skipped;
// the config loader has already reported them.
func NewKeybindingManager(keybindings map[string][]string) *KeybindingManager {
	keys := getKeyMapping()
	compiled := make(map[string][]KeyCombination, len(keybindings))
	for action, list := range keybindings {
		for _, keyStr := range list {
			if combo, ok := parseKeyCombination(keyStr, keys); ok {
				compiled[action] = append(compiled[action], combo)
			}
		}
	}
	return &KeybindingManager{keybindings: keybindings, compiled: compiled}
}

var namedKeys = map[string]ebiten.Key{
	"Space":      ebiten.KeySpace,
	"Backspace":  ebiten.KeyBackspace,
	"Enter":      ebiten.KeyEnter,
	"Escape":     ebiten.KeyEscape,
	"Tab":        ebiten.KeyTab,
	"Home":       ebiten.KeyHome,
	"End":        ebiten.KeyEnd,
	"PageUp":     ebiten.KeyPageUp,
	"PageDown":   ebiten.KeyPageDown,
	"ArrowUp":    ebiten.KeyArrowUp,
	"ArrowDown":  ebiten.KeyArrowDown,
	"ArrowLeft":  ebiten.KeyArrowLeft,
	"ArrowRight": ebiten.KeyArrowRight,
	"Comma":      ebiten.KeyComma,
	"Period":     ebiten.KeyPeriod,
	"Slash":      ebiten.KeySlash,
	"Semicolon":  ebiten.KeySemicolon,
	"Quote":      ebiten.KeyQuote,
	"Minus":      ebiten.KeyMinus,
	"Equal":      ebiten.KeyEqual,

	"NumpadEnter":    ebiten.KeyNumpadEnter,
	"NumpadAdd":      ebiten.KeyNumpadAdd,
	"NumpadSubtract": ebiten.KeyNumpadSubtract,
}

// getKeyMapping returns every key name accepted in bindings: KeyA..KeyZ,
// Key0..Key9, Numpad0..Numpad9 and the named keys
func getKeyMapping() map[string]ebiten.Key {
	m := make(map[string]ebiten.Key, len(namedKeys)+46)
	for i := 0; i < 26; i++ {
		m[fmt.Sprintf("Key%c", 'A'+i)] = ebiten.KeyA + ebiten.Key(i)
	}
	for i := 0; i < 10; i++ {
		m[fmt.Sprintf("Key%d", i)] = ebiten.Key0 + ebiten.Key(i)
		m[fmt.Sprintf("Numpad%d", i)] = ebiten.KeyNumpad0 + ebiten.Key(i)
	}
	for name, k := range namedKeys {
		m[name] = k
	}
	return m
}

// KeyCombination represents a key with optional modifiers
type KeyCombination struct {
	Key   ebiten.Key
	Shift bool
	Ctrl  bool
	Alt   bool
}

// modifiers holds the modifier state of the current frame
type modifiers struct {
	Shift, Ctrl, Alt bool
}

func currentModifiers() modifiers {
	return modifiers{
		Shift: ebiten.IsKeyPressed(ebiten.KeyShift),
		Ctrl:  ebiten.IsKeyPressed(ebiten.KeyControl),
		Alt:   ebiten.IsKeyPressed(ebiten.KeyAlt),
	}
}

// matches requires the exact modifier set, so "ArrowLeft" does not fire
// together with "Alt+ArrowLeft"
func (m modifiers) matches(shift, ctrl, alt bool) bool {
	return m.Shift == shift && m.Ctrl == ctrl && m.Alt == alt
}

// splitModifiers splits "Shift+Ctrl+KeyB" into its flags and "KeyB"
func splitModifiers(s string) (name string, shift, ctrl, alt bool) {
	parts := strings.Split(s, "+")
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(p) {
		case "shift":
			shift = true
		case "ctrl":
			ctrl = true
		case "alt":
			alt = true
		}
	}
	return parts[len(parts)-1], shift, ctrl, alt
}

func parseKeyCombination(keyStr string, keys map[string]ebiten.Key) (KeyCombination, bool) {
	name, shift, ctrl, alt := splitModifiers(keyStr)
	key, ok := keys[name]
	if !ok {
		return KeyCombination{}, false
	}
	return KeyCombination{Key: key, Shift: shift, Ctrl: ctrl, Alt: alt}, true
}

func (c KeyCombination) justPressed(mods modifiers) bool {
	return inpututil.IsKeyJustPressed(c.Key) && mods.matches(c.Shift, c.Ctrl, c.Alt)
}

// CheckAction reports whether any binding of action was pressed this frame
func (km *KeybindingManager) CheckAction(action string) bool {
	mods := currentModifiers()
	for _, combo := range km.compiled[action] {
		if combo.justPressed(mods) {
			return true
		}
	}
	return false
}

// ExecuteAction runs action when one of its keys was pressed
func (km *KeybindingManager) ExecuteAction(action string, inputActions InputActions) bool {
	if !km.CheckAction(action) {
		return false
	}
	return globalActionExecutor.ExecuteAction(action, inputActions)
}

// GetKeybindings returns the configured key strings (for the help overlay)
func (km *KeybindingManager) GetKeybindings() map[string][]string {
	return km.keybindings
}
