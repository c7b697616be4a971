package browser

import "errors"

// ErrNoHistory is returned by PopForBack when there is no page before
// the current one to go back to.
var ErrNoHistory = errors.New("no page to go back to")

// History is the back stack: URLs of pages the session has shown,
// most recent last. It is not safe for concurrent use; the session
// serializes access under its own lock.
type History struct {
	stack []string
}

// Push records url as the new current page.
func (h *History) Push(url string) {
	h.stack = append(h.stack, url)
}

// PopForBack discards the current entry and returns the one beneath
// it, which stays on the stack. It needs at least two entries: the
// current page and somewhere to go.
func (h *History) PopForBack() (string, error) {
	if len(h.stack) < 2 {
		return "", ErrNoHistory
	}
	h.stack = h.stack[:len(h.stack)-1]
	return h.stack[len(h.stack)-1], nil
}

// Drop removes the top entry without returning it. The session uses
// it before re-fetching a page that the fetch itself will push again.
func (h *History) Drop() {
	if len(h.stack) > 0 {
		h.stack = h.stack[:len(h.stack)-1]
	}
}

// BackEnabled reports whether PopForBack can succeed.
func (h *History) BackEnabled() bool {
	return len(h.stack) > 1
}

// Current returns the top entry, or "" when the stack is empty.
func (h *History) Current() string {
	if len(h.stack) == 0 {
		return ""
	}
	return h.stack[len(h.stack)-1]
}

// Depth returns the number of entries.
func (h *History) Depth() int {
	return len(h.stack)
}
