package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect once any queued
// results are exhausted.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Queue appends per-call results. Each Detect call consumes one entry
// before falling back to the hands set with SetHands.
func (m *MockDetector) Queue(results ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, results...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result, the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// newHand returns an empty hand with a full landmark slice.
func newHand(handedness string) HandLandmarks {
	return HandLandmarks{
		Points:     make([]Point3D, NumLandmarks),
		Handedness: handedness,
		Score:      0.95,
	}
}

// ThumbsUpLandmarks returns a preset HandLandmarks representing a thumbs up gesture.
// The thumb is extended upward while other fingers are curled.
func ThumbsUpLandmarks() HandLandmarks {
	landmarks := newHand(HandednessRight)

	// Wrist at origin
	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended upward (pointing up, Y decreases going up)
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.65, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	// Index finger curled (knuckles close together, tip near palm)
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	landmarks.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	// Middle finger curled
	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	landmarks.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	// Ring finger curled
	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	landmarks.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	// Pinky finger curled
	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := newHand(HandednessRight)

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// PeaceSignLandmarks returns a preset HandLandmarks with index and middle
// fingers raised and the rest curled.
func PeaceSignLandmarks() HandLandmarks {
	landmarks := FistLandmarks()

	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.57, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddlePIP] = Point3D{X: 0.49, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.48, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.47, Y: 0.30, Z: 0.0}

	return landmarks
}

// FistLandmarks returns a preset HandLandmarks with every finger curled,
// thumb included.
func FistLandmarks() HandLandmarks {
	landmarks := ThumbsUpLandmarks()

	// Thumb folded across the palm, tip below its MCP joint
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.70, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.72, Z: -0.02}
	landmarks.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.74, Z: -0.03}

	return landmarks
}

// PointingLandmarks returns a hand whose index fingertip sits at the given
// normalized position. With pinch set, the thumb tip touches the fingertip;
// otherwise it rests well away from it. Middle and ring fingers stay raised
// and the pinky curled, so the pose matches none of the command gestures.
func PointingLandmarks(handedness string, x, y float64, pinch bool) HandLandmarks {
	landmarks := newHand(handedness)

	landmarks.Points[Wrist] = Point3D{X: x, Y: y + 0.30}
	landmarks.Points[IndexMCP] = Point3D{X: x, Y: y + 0.15}
	landmarks.Points[IndexPIP] = Point3D{X: x, Y: y + 0.10}
	landmarks.Points[IndexDIP] = Point3D{X: x, Y: y + 0.05}
	landmarks.Points[IndexTip] = Point3D{X: x, Y: y}

	landmarks.Points[ThumbCMC] = Point3D{X: x + 0.06, Y: y + 0.27}
	landmarks.Points[ThumbMCP] = Point3D{X: x + 0.08, Y: y + 0.22}
	if pinch {
		landmarks.Points[ThumbIP] = Point3D{X: x + 0.04, Y: y + 0.08}
		landmarks.Points[ThumbTip] = Point3D{X: x + 0.005, Y: y + 0.005}
	} else {
		landmarks.Points[ThumbIP] = Point3D{X: x + 0.12, Y: y + 0.18}
		landmarks.Points[ThumbTip] = Point3D{X: x + 0.15, Y: y + 0.15}
	}

	landmarks.Points[MiddleMCP] = Point3D{X: x - 0.03, Y: y + 0.16}
	landmarks.Points[MiddlePIP] = Point3D{X: x - 0.03, Y: y + 0.11}
	landmarks.Points[MiddleDIP] = Point3D{X: x - 0.03, Y: y + 0.07}
	landmarks.Points[MiddleTip] = Point3D{X: x - 0.03, Y: y + 0.03}

	landmarks.Points[RingMCP] = Point3D{X: x - 0.06, Y: y + 0.17}
	landmarks.Points[RingPIP] = Point3D{X: x - 0.06, Y: y + 0.12}
	landmarks.Points[RingDIP] = Point3D{X: x - 0.06, Y: y + 0.08}
	landmarks.Points[RingTip] = Point3D{X: x - 0.06, Y: y + 0.05}

	landmarks.Points[PinkyMCP] = Point3D{X: x - 0.09, Y: y + 0.19}
	landmarks.Points[PinkyPIP] = Point3D{X: x - 0.09, Y: y + 0.17}
	landmarks.Points[PinkyDIP] = Point3D{X: x - 0.09, Y: y + 0.20}
	landmarks.Points[PinkyTip] = Point3D{X: x - 0.09, Y: y + 0.22}

	return landmarks
}
