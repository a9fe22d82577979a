package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion detection constants
const (
	// GaussianBlurSize is the blur kernel applied before differencing.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel intensity change counted as motion.
	DiffThreshold = 25
	// AnalysisWidth is the width frames are scaled down to before
	// comparison. Narrower frames are compared at their own size.
	AnalysisWidth = 320
)

// MotionDetector reports whether the scene changed between consecutive
// frames. The capture loop uses it to drop to an idle frame rate while
// nobody is typing.
type MotionDetector struct {
	mu          sync.Mutex
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage
// of pixels that must change, so 1.0 means 1% of the frame.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect compares frame with the previous one and returns whether motion
// was seen along with the percentage of changed pixels. The first frame
// after construction or Reset only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	small := gocv.NewMat()
	defer small.Close()
	if gray.Cols() > AnalysisWidth {
		h := gray.Rows() * AnalysisWidth / gray.Cols()
		gocv.Resize(gray, &small, image.Point{X: AnalysisWidth, Y: h}, 0, 0, gocv.InterpolationArea)
	} else {
		gray.CopyTo(&small)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(small, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized || blurred.Rows() != m.prevGray.Rows() || blurred.Cols() != m.prevGray.Cols() {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0

	blurred.CopyTo(&m.prevGray)

	return changed > m.threshold, changed
}

// Reset discards the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases resources used by the motion detector. It may be called
// more than once; a later Detect starts a new baseline.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
}

// SetThreshold sets the motion threshold percentage.
// Values less than or equal to 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}

// DefaultStillFrames is how many motionless frames Pacer waits for before
// dropping to the idle rate.
const DefaultStillFrames = 30

// Pacer picks the capture rate from recent motion: the target rate while
// anything moves, the idle rate after a run of still frames. An idle rate
// of 0 disables throttling.
type Pacer struct {
	target      int
	idle        int
	stillFrames int
	still       int
}

// NewPacer creates a Pacer. stillFrames <= 0 uses DefaultStillFrames.
func NewPacer(target, idle, stillFrames int) *Pacer {
	if stillFrames <= 0 {
		stillFrames = DefaultStillFrames
	}
	return &Pacer{target: target, idle: idle, stillFrames: stillFrames}
}

// Observe records whether the latest frame had motion and returns the
// rate to capture at next.
func (p *Pacer) Observe(motion bool) int {
	if motion {
		p.still = 0
		return p.target
	}
	if p.still < p.stillFrames {
		p.still++
	}
	return p.FPS()
}

// Wake forces the target rate, e.g. when a hand is in view.
func (p *Pacer) Wake() {
	p.still = 0
}

// FPS returns the current rate.
func (p *Pacer) FPS() int {
	if p.idle > 0 && p.still >= p.stillFrames {
		return p.idle
	}
	return p.target
}

// Idle reports whether the pacer has dropped to the idle rate.
func (p *Pacer) Idle() bool {
	return p.idle > 0 && p.still >= p.stillFrames
}
