package detector

import (
	"errors"
	"testing"
)

func TestSplitHands(t *testing.T) {
	t.Run("assigns hands by handedness", func(t *testing.T) {
		left := PointingLandmarks(HandednessLeft, 0.2, 0.5, false)
		right := PointingLandmarks(HandednessRight, 0.8, 0.5, true)

		l, r := SplitHands([]HandLandmarks{right, left}, 1234)

		if !l.Detected || !r.Detected {
			t.Fatalf("expected both slots detected, got left=%v right=%v", l.Detected, r.Detected)
		}
		if l.Landmarks[IndexTip].X != 0.2 {
			t.Errorf("left index tip X = %f, want 0.2", l.Landmarks[IndexTip].X)
		}
		if r.Landmarks[IndexTip].X != 0.8 {
			t.Errorf("right index tip X = %f, want 0.8", r.Landmarks[IndexTip].X)
		}
		if l.TimestampMs != 1234 || r.TimestampMs != 1234 {
			t.Errorf("timestamps = %d/%d, want 1234", l.TimestampMs, r.TimestampMs)
		}
	})

	t.Run("keeps only the first hand per side", func(t *testing.T) {
		first := PointingLandmarks(HandednessRight, 0.3, 0.5, false)
		second := PointingLandmarks(HandednessRight, 0.9, 0.5, false)

		l, r := SplitHands([]HandLandmarks{first, second}, 0)

		if l.Detected {
			t.Error("left slot should stay empty")
		}
		if r.Landmarks[IndexTip].X != 0.3 {
			t.Errorf("right index tip X = %f, want first hand 0.3", r.Landmarks[IndexTip].X)
		}
	})

	t.Run("unlabeled hands fill free slots left first", func(t *testing.T) {
		a := PointingLandmarks("", 0.1, 0.5, false)
		b := PointingLandmarks("", 0.6, 0.5, false)

		l, r := SplitHands([]HandLandmarks{a, b}, 0)

		if l.Landmarks[IndexTip].X != 0.1 {
			t.Errorf("left index tip X = %f, want 0.1", l.Landmarks[IndexTip].X)
		}
		if r.Landmarks[IndexTip].X != 0.6 {
			t.Errorf("right index tip X = %f, want 0.6", r.Landmarks[IndexTip].X)
		}
	})

	t.Run("no hands", func(t *testing.T) {
		l, r := SplitHands(nil, 0)
		if l.Detected || r.Detected {
			t.Error("expected no detections")
		}
	})
}

func TestHandFrame_Usable(t *testing.T) {
	tests := []struct {
		name  string
		frame HandFrame
		want  bool
	}{
		{"not detected", HandFrame{}, false},
		{"detected without landmarks", HandFrame{Detected: true}, false},
		{"short landmark list", HandFrame{Detected: true, Landmarks: make([]Point3D, 9)}, false},
		{"complete", HandFrame{Detected: true, Landmarks: make([]Point3D, NumLandmarks)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.Usable(); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJSONHand_ToHandLandmarks(t *testing.T) {
	t.Run("keeps short payloads short", func(t *testing.T) {
		h := jsonHand{Points: make([]jsonPoint, 5), Handedness: "Left"}
		lm := h.toHandLandmarks()
		if len(lm.Points) != 5 {
			t.Errorf("expected 5 points, got %d", len(lm.Points))
		}
		if lm.Complete() {
			t.Error("short hand should not be complete")
		}
	})

	t.Run("truncates extra points", func(t *testing.T) {
		h := jsonHand{Points: make([]jsonPoint, 30)}
		lm := h.toHandLandmarks()
		if len(lm.Points) != NumLandmarks {
			t.Errorf("expected %d points, got %d", NumLandmarks, len(lm.Points))
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{ThumbsUpLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("consumes queued results first", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{OpenPalmLandmarks()})
		mock.Queue(nil, []HandLandmarks{FistLandmarks(), FistLandmarks()})

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if len(first) != 0 || len(second) != 2 || len(third) != 1 {
			t.Errorf("got %d/%d/%d hands, want 0/2/1", len(first), len(second), len(third))
		}
		if mock.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands on error, got %v", hands)
		}
	})

	t.Run("fixtures are complete", func(t *testing.T) {
		fixtures := map[string]HandLandmarks{
			"thumbs up":  ThumbsUpLandmarks(),
			"open palm":  OpenPalmLandmarks(),
			"peace sign": PeaceSignLandmarks(),
			"fist":       FistLandmarks(),
			"pointing":   PointingLandmarks(HandednessLeft, 0.5, 0.5, true),
		}
		for name, f := range fixtures {
			if !f.Complete() {
				t.Errorf("%s fixture has %d points", name, len(f.Points))
			}
		}
	})
}
