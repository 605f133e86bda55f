package lightbox

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpen is returned by operations that need an open gallery
	ErrNotOpen = errors.New("lightbox is not open")
	// ErrUnsupportedCapability is returned when the host lacks a collaborator
	ErrUnsupportedCapability = errors.New("unsupported capability")
)

// MediaLoadError describes a failed image or video load. It is logged and
// reflected in the spinner error state, never returned to callers of the
// navigation API.
type MediaLoadError struct {
	Src  string
	Kind Kind
	Err  error
}

func (e *MediaLoadError) Error() string {
	return fmt.Sprintf("failed to load %s %s: %v", e.Kind, e.Src, e.Err)
}

func (e *MediaLoadError) Unwrap() error {
	return e.Err
}
