package main

import (
	"lightbox/internal/lightbox"
)

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description.
// Actions with a Key are routed through the gallery's own key handling so
// that its per-slide options (zoom, close, autoslide) still apply.
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string
	Key          string
}

var actionDefinitions = []ActionDefinition{
	{"exit", []string{"KeyQ"}, []string{}, "Quit application", ""},
	{"help", []string{"Shift+Slash"}, []string{"Alt+RightClick"}, "Show/hide help", ""},
	{"info", []string{"KeyI"}, []string{}, "Show/hide info display", ""},

	// Gallery keys
	{"autofit", []string{"Backspace"}, []string{"MiddleClick"}, "Toggle fit to window", "backspace"},
	{"close", []string{"Escape"}, []string{}, "Close the gallery", "escape"},
	{"play", []string{"Space"}, []string{}, "Start/stop the slideshow", "space"},
	{"prev", []string{"ArrowLeft"}, []string{}, "Previous slide", "left"},
	{"next", []string{"ArrowRight"}, []string{"Forward"}, "Next slide", "right"},
	{"zoom-in", []string{"ArrowUp", "Equal", "Shift+Equal", "NumpadAdd"}, []string{}, "Zoom in", "up"},
	{"zoom-out", []string{"ArrowDown", "Minus", "NumpadSubtract"}, []string{}, "Zoom out", "down"},

	{"first", []string{"Home"}, []string{}, "Jump to first slide", ""},
	{"last", []string{"End"}, []string{}, "Jump to last slide", ""},
	{"back", []string{"Alt+ArrowLeft"}, []string{"Back"}, "Go back in history", ""},
	{"fullscreen", []string{"KeyF", "Enter"}, []string{}, "Toggle fullscreen", ""},
	{"theme", []string{"KeyT"}, []string{}, "Toggle theme", ""},
	{"menu", []string{"KeyM"}, []string{"RightClick"}, "Show/hide controls", ""},
	{"download", []string{"KeyD"}, []string{}, "Download current slide", ""},
	{"green", []string{"KeyG"}, []string{}, "Green channel filter", ""},
	{"red", []string{"KeyR"}, []string{}, "Red channel filter", ""},
	{"normal", []string{"KeyN"}, []string{}, "Remove color filter", ""},
}

// ActionExecutor runs named actions against the viewer. Keyboard, mouse
// and the help overlay share it.
type ActionExecutor struct {
	keys map[string]lightbox.Key
}

// NewActionExecutor creates a new ActionExecutor instance
func NewActionExecutor() *ActionExecutor {
	keys := make(map[string]lightbox.Key)
	for _, def := range actionDefinitions {
		if def.Key == "" {
			continue
		}
		if k, ok := lightbox.ParseKey(def.Key); ok {
			keys[def.Name] = k
		}
	}
	return &ActionExecutor{keys: keys}
}

// ExecuteAction executes the given action. It reports whether the action
// was known and consumed.
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions) bool {
	if k, ok := ae.keys[action]; ok {
		return inputActions.HandleKey(k)
	}

	switch action {
	case "exit":
		inputActions.Exit()
	case "help":
		inputActions.ToggleHelp()
	case "info":
		inputActions.ToggleInfo()
	case "first":
		inputActions.JumpTo(1)
	case "last":
		if n := inputActions.GetTotalSlidesCount(); n > 0 {
			inputActions.JumpTo(n)
		}
	case "back":
		inputActions.Back()
	case "fullscreen":
		inputActions.ToggleFullscreen()
	case "theme":
		inputActions.ToggleTheme()
	case "menu":
		inputActions.ToggleMenu()
	case "download":
		inputActions.Download()
	case "green":
		inputActions.Filter(lightbox.FilterGreen)
	case "red":
		inputActions.Filter(lightbox.FilterRed)
	case "normal":
		inputActions.RestoreOriginal()
	default:
		return false
	}

	return true
}

// globalActionExecutor is the global instance of ActionExecutor used throughout the application
var globalActionExecutor = NewActionExecutor()

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = append([]string(nil), action.Keys...)
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		mousebindings[action.Name] = append([]string(nil), action.MouseActions...)
	}
	return mousebindings
}
