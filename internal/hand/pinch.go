package hand

// DefaultPinchThreshold is the fingertip to thumb-tip distance, in pixels,
// below which a hand counts as clicking.
const DefaultPinchThreshold = 35.0

// PinchDetector turns a fingertip/thumb-tip distance into a click signal.
type PinchDetector struct {
	threshold float64
}

// NewPinchDetector creates a PinchDetector with the given pixel threshold.
func NewPinchDetector(threshold float64) *PinchDetector {
	return &PinchDetector{threshold: threshold}
}

// Pinching reports whether the two points are closer than the threshold.
func (p *PinchDetector) Pinching(fingertip, thumbTip Point) bool {
	return fingertip.Distance(thumbTip) < p.threshold
}

// SetThreshold changes the pinch threshold.
// Values less than or equal to 0 are ignored.
func (p *PinchDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	p.threshold = threshold
}

// Threshold returns the current pinch threshold in pixels.
func (p *PinchDetector) Threshold() float64 {
	return p.threshold
}
