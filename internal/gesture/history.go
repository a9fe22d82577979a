package gesture

import "github.com/ayusman/airtype/internal/hand"

// DefaultHistorySize is the number of cursor positions kept per slot.
const DefaultHistorySize = 10

// History is a fixed-capacity ring buffer of cursor positions. Pushing onto
// a full buffer evicts the oldest position.
type History struct {
	buf   []hand.Point
	start int
	n     int
}

// NewHistory creates a history holding at most size positions.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{buf: make([]hand.Point, size)}
}

// Push appends p, evicting the oldest position when full.
func (h *History) Push(p hand.Point) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = p
		h.n++
		return
	}
	h.buf[h.start] = p
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of buffered positions.
func (h *History) Len() int {
	return h.n
}

// Cap returns the buffer capacity.
func (h *History) Cap() int {
	return len(h.buf)
}

// First returns the oldest buffered position.
func (h *History) First() (hand.Point, bool) {
	if h.n == 0 {
		return hand.Point{}, false
	}
	return h.buf[h.start], true
}

// Last returns the newest buffered position.
func (h *History) Last() (hand.Point, bool) {
	if h.n == 0 {
		return hand.Point{}, false
	}
	return h.buf[(h.start+h.n-1)%len(h.buf)], true
}

// Points returns the buffered positions, oldest first.
func (h *History) Points() []hand.Point {
	points := make([]hand.Point, h.n)
	for i := range h.n {
		points[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return points
}

// Clear drops every buffered position.
func (h *History) Clear() {
	h.start = 0
	h.n = 0
}
