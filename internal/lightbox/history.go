package lightbox

import "strings"

// MemoryHistory is an in-process history stack for hosts without a browser.
// Entry 0 is the host page itself.
type MemoryHistory struct {
	entries []string
	index   int
}

// NewMemoryHistory creates a history positioned on the host page entry
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{entries: []string{""}}
}

// Push drops any forward entries and appends state
func (h *MemoryHistory) Push(state string) {
	h.entries = append(h.entries[:h.index+1], state)
	h.index++
}

// Go moves delta entries, clamped to the stack
func (h *MemoryHistory) Go(delta int) {
	h.index += delta
	if h.index < 0 {
		h.index = 0
	}
	if h.index >= len(h.entries) {
		h.index = len(h.entries) - 1
	}
}

// Back performs a user initiated back step and returns the state landed
// on. ok is false when already at the first entry.
func (h *MemoryHistory) Back() (string, bool) {
	if h.index == 0 {
		return "", false
	}
	h.index--
	return h.entries[h.index], true
}

// State returns the state of the current entry
func (h *MemoryHistory) State() string {
	return h.entries[h.index]
}

// Index returns the current position
func (h *MemoryHistory) Index() int {
	return h.index
}

// Len returns the number of entries
func (h *MemoryHistory) Len() int {
	return len(h.entries)
}

// historyMarker tags entry n pushed by instance id
func historyMarker(id string, n int) string {
	return id + "#" + string(rune('0'+n))
}

// isOwnMarker reports whether state was pushed by instance id
func isOwnMarker(id, state string) bool {
	return id != "" && strings.HasPrefix(state, id+"#")
}
