package lightbox

import (
	"strconv"
	"strings"
)

// Options carries per-anchor or per-group settings as plain strings,
// the same shape a data-* attribute set has.
type Options map[string]string

// Merge returns a new option set with group values overlaid by anchor
// values. Neither input is modified.
func Merge(group, anchor Options) Options {
	merged := make(Options, len(group)+len(anchor))
	for k, v := range group {
		merged[k] = v
	}
	for k, v := range anchor {
		merged[k] = v
	}
	return merged
}

// Clone returns a copy of o
func (o Options) Clone() Options {
	return Merge(nil, o)
}

// Value is the result of parsing an option. It is either off, on, or on
// with a string payload.
type Value struct {
	On  bool
	Str string
}

var (
	// False is an explicitly disabled option
	False = Value{}
	// True is an enabled option without payload
	True = Value{On: true}
)

// StringValue wraps s; an empty string is off.
func StringValue(s string) Value {
	return Value{On: s != "", Str: s}
}

// Bool returns the truthiness of the value
func (v Value) Bool() bool {
	return v.On
}

// String returns the payload, or "" for a bare boolean
func (v Value) String() string {
	return v.Str
}

// Float parses the payload as a number. ok is false for bare booleans and
// non-numeric payloads.
func (v Value) Float() (float64, bool) {
	if !v.On || v.Str == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseOption reads key from opts. The literal "false" turns the option off,
// any other non-empty value turns it on with that value, and an absent or
// empty value yields def.
func ParseOption(opts Options, key string, def Value) Value {
	raw, ok := opts[key]
	if !ok || raw == "" {
		return def
	}
	if raw == "false" {
		return False
	}
	return Value{On: true, Str: raw}
}

// Controls lists the built-in controls whose visibility is driven by
// options. fullscreen stays last; it is dropped when the host cannot go
// fullscreen.
var Controls = []string{
	"theme",
	"download",
	"play",
	"page",
	"close",
	"autofit",
	"zoom-in",
	"zoom-out",
	"prev",
	"next",
	"green",
	"red",
	"normal",
	"fullscreen",
}

var controlDefaults = map[string]bool{
	"page":       true,
	"close":      true,
	"autofit":    true,
	"zoom-in":    true,
	"zoom-out":   true,
	"prev":       true,
	"next":       true,
	"fullscreen": true,
}

// ControlDefault reports whether a built-in control is visible when no
// option mentions it.
func ControlDefault(name string) bool {
	return controlDefaults[name]
}

// ApplyControlWhitelist rewrites opts in place when a "control" option is
// present: every built-in control is switched off and the listed ones on.
// "zoom" expands to zoom-in and zoom-out.
func ApplyControlWhitelist(opts Options) {
	list := opts["control"]
	if list == "" {
		return
	}

	for _, name := range Controls {
		opts[name] = "false"
	}
	for _, item := range strings.Split(list, ",") {
		name := strings.TrimSpace(item)
		switch name {
		case "":
		case "zoom":
			opts["zoom-in"] = "true"
			opts["zoom-out"] = "true"
		default:
			opts[name] = "true"
		}
	}
}

// Animation selects the slide transition effects.
type Animation struct {
	Scale  bool
	Fade   bool
	Slide  bool
	Custom string // extra class applied before animating in
}

// ParseAnimation reads the "animation" option. An empty value enables
// scale, fade and slide; otherwise only the listed effects are enabled and
// an unknown name becomes the custom class (the last one wins).
func ParseAnimation(s string) Animation {
	if strings.TrimSpace(s) == "" {
		return Animation{Scale: true, Fade: true, Slide: true}
	}

	var a Animation
	for _, item := range strings.Split(s, ",") {
		switch name := strings.TrimSpace(item); name {
		case "scale":
			a.Scale = true
		case "fade":
			a.Fade = true
		case "slide":
			a.Slide = true
		case "":
		default:
			a.Custom = name
		}
	}
	return a
}
