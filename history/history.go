// Package history tracks the browsing session's back/forward stacks.
package history

// Start is the uri a fresh session points at.
const Start = "about:blank"

// History holds the current uri plus the back and forward stacks.
type History struct {
	uri     string
	back    []string
	forward []string
}

// New returns a history positioned at about:blank.
func New() *History {
	return &History{uri: Start}
}

// URI returns the current uri.
func (h *History) URI() string {
	return h.uri
}

// SetURI overrides the current uri without touching the stacks.
func (h *History) SetURI(uri string) {
	h.uri = uri
}

// Append navigates to uri: the old current uri is pushed onto the back
// stack and the forward stack clears. Re-appending the current uri is a
// no-op, so a reload never pollutes the back stack.
func (h *History) Append(uri string) {
	if uri == h.uri {
		return
	}
	h.back = append(h.back, h.uri)
	h.uri = uri
	h.forward = nil
}

// Previous pops the back stack, moving the current uri onto the forward
// stack. It reports false when there is nowhere to go back to.
func (h *History) Previous() (string, bool) {
	n := len(h.back)
	if n == 0 {
		return "", false
	}
	prev := h.back[n-1]
	h.back = h.back[:n-1]
	h.forward = append(h.forward, h.uri)
	h.uri = prev
	return prev, true
}

// Next pops the forward stack, the mirror image of Previous.
func (h *History) Next() (string, bool) {
	n := len(h.forward)
	if n == 0 {
		return "", false
	}
	next := h.forward[n-1]
	h.forward = h.forward[:n-1]
	h.back = append(h.back, h.uri)
	h.uri = next
	return next, true
}

// HasPrevious reports whether the back stack is non-empty.
func (h *History) HasPrevious() bool {
	return len(h.back) > 0
}

// HasNext reports whether the forward stack is non-empty.
func (h *History) HasNext() bool {
	return len(h.forward) > 0
}
