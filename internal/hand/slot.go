// Package hand turns raw per-frame landmark detections into stable cursor
// positions and a pinch "click" signal, one tracker per hand slot.
package hand

import "math"

// Slot identifies one of the two fixed tracking channels.
type Slot int

const (
	Left Slot = iota
	Right
	NumSlots
)

// Slots lists every slot in evaluation order.
var Slots = [NumSlots]Slot{Left, Right}

func (s Slot) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// MarshalText encodes the slot by name.
func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Point is a position in frame pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// State is the per-frame output for one slot.
type State struct {
	Cursor   *Point `json:"cursor"`
	Clicking bool   `json:"clicking"`
}

// Active reports whether the slot has a cursor this frame.
func (s State) Active() bool {
	return s.Cursor != nil
}
