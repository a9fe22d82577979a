package hand

import (
	"log"

	"github.com/ayusman/airtype/internal/detector"
)

// Config holds the tracker settings shared by both slots.
type Config struct {
	FrameWidth     int
	FrameHeight    int
	Smoothing      float64
	PinchThreshold float64
}

// DefaultConfig returns the tracker defaults for a 1280x720 frame.
func DefaultConfig() Config {
	return Config{
		FrameWidth:     1280,
		FrameHeight:    720,
		Smoothing:      DefaultSmoothing,
		PinchThreshold: DefaultPinchThreshold,
	}
}

// Tracker derives a State for one slot from its HandFrame each tick.
type Tracker struct {
	width    float64
	height   float64
	smoother *Smoother
	pinch    *PinchDetector
}

// NewTracker creates a Tracker for one slot.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		width:    float64(cfg.FrameWidth),
		height:   float64(cfg.FrameHeight),
		smoother: NewSmoother(cfg.Smoothing),
		pinch:    NewPinchDetector(cfg.PinchThreshold),
	}
}

// Update converts a frame into a cursor position and click state.
// A missing or incomplete hand yields an empty State and resets smoothing.
func (t *Tracker) Update(frame detector.HandFrame) (state State) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("hand tracker recovered: %v", r)
			t.smoother.Reset()
			state = State{}
		}
	}()

	if !frame.Usable() {
		t.smoother.Reset()
		return State{}
	}

	tip := t.toPixels(frame.Landmarks[detector.IndexTip])
	thumb := t.toPixels(frame.Landmarks[detector.ThumbTip])

	cursor := t.smoother.Smooth(tip)
	return State{
		Cursor:   &cursor,
		Clicking: t.pinch.Pinching(cursor, thumb),
	}
}

// Reset clears the smoothing history.
func (t *Tracker) Reset() {
	t.smoother.Reset()
}

func (t *Tracker) toPixels(p detector.Point3D) Point {
	return Point{X: p.X * t.width, Y: p.Y * t.height}
}

// Pair holds one Tracker per slot.
type Pair [NumSlots]*Tracker

// NewPair creates trackers for both slots.
func NewPair(cfg Config) Pair {
	return Pair{NewTracker(cfg), NewTracker(cfg)}
}

// Update runs both trackers, left first.
func (p Pair) Update(left, right detector.HandFrame) [NumSlots]State {
	return [NumSlots]State{
		p[Left].Update(left),
		p[Right].Update(right),
	}
}
