package mcmc

import (
	"flareshield/domain/flare"
)

// History is a bounded, append-only chain of draws. Once full, each append evicts the oldest entry.
// It is not safe for concurrent use; the owning session serializes access.
type History struct {
	buf   []flare.Params
	start int
	size  int
}

// NewHistory creates a history holding at most capacity entries
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{buf: make([]flare.Params, capacity)}
}

// Append records a draw
func (h *History) Append(p flare.Params) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = p
		h.size++
		return
	}
	h.buf[h.start] = p
	h.start = (h.start + 1) % len(h.buf)
}

// Len is the number of retained draws
func (h *History) Len() int { return h.size }

// Cap is the window size
func (h *History) Cap() int { return len(h.buf) }

// At returns the i-th retained draw, oldest first
func (h *History) At(i int) flare.Params {
	return h.buf[(h.start+i)%len(h.buf)]
}

// Values copies the window, oldest first
func (h *History) Values() []flare.Params {
	out := make([]flare.Params, h.size)
	for i := range out {
		out[i] = h.At(i)
	}
	return out
}

// Tail copies the newest n draws, oldest first
func (h *History) Tail(n int) []flare.Params {
	if n <= 0 {
		return []flare.Params{}
	}
	if n > h.size {
		n = h.size
	}
	out := make([]flare.Params, n)
	offset := h.size - n
	for i := range out {
		out[i] = h.At(offset + i)
	}
	return out
}

// Last returns the newest draw
func (h *History) Last() (flare.Params, bool) {
	if h.size == 0 {
		return flare.Params{}, false
	}
	return h.At(h.size - 1), true
}

// Clear drops every draw, keeping capacity
func (h *History) Clear() {
	h.start = 0
	h.size = 0
}
