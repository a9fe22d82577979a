package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
	}{
		{
			name:      "default threshold",
			threshold: 1.0,
		},
		{
			name:      "high threshold",
			threshold: 5.0,
		},
		{
			name:      "low threshold",
			threshold: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			if md == nil {
				t.Fatal("NewMotionDetector returned nil")
			}
			defer md.Close()

			if md.threshold != tt.threshold {
				t.Errorf("threshold = %f, want %f", md.threshold, tt.threshold)
			}

			if md.initialized {
				t.Error("motion detector should not be initialized initially")
			}
		})
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0) // 1% threshold
	defer md.Close()

	// Create two identical black frames
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()

	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	// First frame initializes the detector
	detected, changePercent := md.Detect(&frame1)
	if detected {
		t.Error("first frame should not detect motion")
	}
	if changePercent != 0 {
		t.Errorf("first frame changePercent = %f, want 0", changePercent)
	}

	// Second identical frame should not detect motion
	detected, changePercent = md.Detect(&frame2)
	if detected {
		t.Errorf("identical frames should not detect motion, changePercent = %f", changePercent)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0) // 1% threshold
	defer md.Close()

	// Create a black frame (all zeros)
	blackFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blackFrame.Close()

	// Create a white frame (all 255s)
	whiteFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer whiteFrame.Close()

	// Fill white frame with white pixels
	whiteFrame.SetTo(gocv.NewScalar(255, 255, 255, 0))

	// First frame initializes the detector
	detected, _ := md.Detect(&blackFrame)
	if detected {
		t.Error("first frame should not detect motion")
	}

	// Second frame is completely different, should detect motion
	detected, changePercent := md.Detect(&whiteFrame)
	if !detected {
		t.Errorf("black to white should detect motion, changePercent = %f", changePercent)
	}

	// Change percent should be high (close to 100% since all pixels changed)
	if changePercent < 50.0 {
		t.Errorf("changePercent = %f, expected > 50%% for black to white transition", changePercent)
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	// Create a frame and initialize the detector
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)

	if !md.initialized {
		t.Error("detector should be initialized after first Detect")
	}

	// Reset should clear state
	md.Reset()

	if md.initialized {
		t.Error("detector should not be initialized after Reset")
	}

	if !md.prevGray.Empty() {
		t.Error("prevGray should be empty after Reset")
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if md.threshold != 1.0 {
		t.Errorf("initial threshold = %f, want 1.0", md.threshold)
	}

	md.SetThreshold(5.0)
	if md.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0 after SetThreshold", md.threshold)
	}

	md.SetThreshold(0.5)
	if md.threshold != 0.5 {
		t.Errorf("threshold = %f, want 0.5 after SetThreshold", md.threshold)
	}
}

func TestMotionDetector_SetThreshold_Negative(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	// Setting negative threshold should be ignored
	md.SetThreshold(-1.0)
	if md.threshold != 1.0 {
		t.Errorf("negative threshold should be ignored, got %f, want 1.0", md.threshold)
	}
}

func TestMotionDetector_Close_Multiple(t *testing.T) {
	md := NewMotionDetector(1.0)

	// Close multiple times should not panic
	md.Close()
	md.Close()
}

func TestMotionDetector_Detect_AfterClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)
	md.Close()

	// Detect after close starts a new baseline
	detected, _ := md.Detect(&frame)
	if detected {
		t.Error("first frame after close should not detect motion")
	}
}

func TestMotionDetector_ThresholdBoundary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	// Test with high threshold to ensure small changes don't trigger
	md := NewMotionDetector(99.0) // Very high threshold
	defer md.Close()

	blackFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blackFrame.Close()

	whiteFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer whiteFrame.Close()
	whiteFrame.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&blackFrame)
	detected, changePercent := md.Detect(&whiteFrame)

	// Even with 100% change, 99% threshold might not trigger
	// depending on blur effects
	t.Logf("changePercent with black to white: %f, threshold: 99.0, detected: %v", changePercent, detected)
}

func TestMotionDetector_DownscalesWideFrames(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := gocv.NewMatWithSize(720, 1280, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)

	if md.prevGray.Cols() != AnalysisWidth {
		t.Errorf("baseline width = %d, want %d", md.prevGray.Cols(), AnalysisWidth)
	}
	if md.prevGray.Rows() != 180 {
		t.Errorf("baseline height = %d, want 180", md.prevGray.Rows())
	}
}

func TestMotionDetector_SizeChangeRebaselines(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	small := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer small.Close()
	other := gocv.NewMatWithSize(240, 200, gocv.MatTypeCV8UC3)
	defer other.Close()
	other.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&small)
	detected, changed := md.Detect(&other)
	if detected || changed != 0 {
		t.Errorf("a new frame size should only reset the baseline, got %v/%f", detected, changed)
	}
}

func TestPacer(t *testing.T) {
	p := NewPacer(60, 10, 3)

	if got := p.Observe(true); got != 60 {
		t.Errorf("moving FPS = %d, want 60", got)
	}

	for i := 0; i < 2; i++ {
		if got := p.Observe(false); got != 60 {
			t.Errorf("still frame %d FPS = %d, want 60 before the idle threshold", i, got)
		}
	}
	if got := p.Observe(false); got != 10 {
		t.Errorf("FPS after 3 still frames = %d, want 10", got)
	}
	if !p.Idle() {
		t.Error("pacer should be idle")
	}

	p.Wake()
	if p.FPS() != 60 || p.Idle() {
		t.Errorf("Wake should restore the target rate, got %d", p.FPS())
	}

	p.Observe(false)
	p.Observe(false)
	p.Observe(false)
	if got := p.Observe(true); got != 60 {
		t.Errorf("motion should restore the target rate, got %d", got)
	}
}

func TestPacer_NoIdleRate(t *testing.T) {
	p := NewPacer(30, 0, 0)

	for i := 0; i < DefaultStillFrames*2; i++ {
		p.Observe(false)
	}
	if p.FPS() != 30 || p.Idle() {
		t.Errorf("idle rate 0 should disable throttling, got %d", p.FPS())
	}
}
