// Package detector provides hand detection interfaces and types for air typing.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels reported by MediaPipe.
const (
	HandednessLeft  = "Left"
	HandednessRight = "Right"
)

// Point3D represents a landmark in normalized image coordinates.
// X and Y are in [0,1] relative to the frame; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand as reported by a Detector.
// Points holds NumLandmarks entries for a complete detection; detectors may
// report fewer, which consumers treat as an unusable hand.
type HandLandmarks struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Complete reports whether all NumLandmarks points are present.
func (h *HandLandmarks) Complete() bool {
	return h != nil && len(h.Points) >= NumLandmarks
}

// HandFrame is the per-tick input for one hand slot.
type HandFrame struct {
	Detected    bool      `json:"detected"`
	Landmarks   []Point3D `json:"landmarks,omitempty"`
	TimestampMs int64     `json:"timestamp_ms"`
}

// Usable reports whether the frame carries a detected hand with every
// landmark present.
func (f HandFrame) Usable() bool {
	return f.Detected && len(f.Landmarks) >= NumLandmarks
}

// SplitHands assigns detected hands to the left and right slots.
// Only the first hand reported for each side is used. Hands with an
// unknown handedness fill the first free slot, left before right.
func SplitHands(hands []HandLandmarks, timestampMs int64) (left, right HandFrame) {
	left.TimestampMs = timestampMs
	right.TimestampMs = timestampMs

	var unlabeled []HandLandmarks
	for _, h := range hands {
		switch h.Handedness {
		case HandednessLeft:
			if !left.Detected {
				left.Detected = true
				left.Landmarks = h.Points
			}
		case HandednessRight:
			if !right.Detected {
				right.Detected = true
				right.Landmarks = h.Points
			}
		default:
			unlabeled = append(unlabeled, h)
		}
	}

	for _, h := range unlabeled {
		switch {
		case !left.Detected:
			left.Detected = true
			left.Landmarks = h.Points
		case !right.Detected:
			right.Detected = true
			right.Landmarks = h.Points
		}
	}

	return left, right
}
