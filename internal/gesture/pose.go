// Package gesture recognizes discrete hand gestures and rate-limits the
// commands they trigger.
package gesture

import "github.com/ayusman/airtype/internal/detector"

// Gesture names. They double as cooldown keys.
const (
	OpenPalm      = "open_palm"
	ThumbsUp      = "thumbs_up"
	PeaceSign     = "peace_sign"
	Fist          = "fist"
	Swipe         = "swipe"
	SwipeLeft     = "swipe_left"
	SwipeRight    = "swipe_right"
	HandsTogether = "hands_together"
)

// Finger indexes into fingerTips and fingerBases.
const (
	thumb = iota
	index
	middle
	ring
	pinky
	numFingers
)

var (
	fingerTips  = [numFingers]int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	fingerBases = [numFingers]int{detector.ThumbMCP, detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP}
)

// extended reports whether the finger tip is above its base joint on screen.
func extended(lm []detector.Point3D, finger int) bool {
	return lm[fingerTips[finger]].Y < lm[fingerBases[finger]].Y
}

// folded reports whether the finger tip is below its base joint on screen.
// A tip level with its base is neither extended nor folded.
func folded(lm []detector.Point3D, finger int) bool {
	return lm[fingerTips[finger]].Y > lm[fingerBases[finger]].Y
}

func valid(lm []detector.Point3D) bool {
	return len(lm) >= detector.NumLandmarks
}

// IsOpenPalm reports whether at least four of the five fingers are extended.
func IsOpenPalm(lm []detector.Point3D) bool {
	if !valid(lm) {
		return false
	}
	count := 0
	for f := range numFingers {
		if extended(lm, f) {
			count++
		}
	}
	return count >= 4
}

// IsThumbsUp reports whether the thumb is extended and at least three of the
// other fingers are folded.
func IsThumbsUp(lm []detector.Point3D) bool {
	if !valid(lm) || !extended(lm, thumb) {
		return false
	}
	return foldedFingers(lm) >= 3
}

// IsPeaceSign reports whether index and middle are extended while ring and
// pinky are folded.
func IsPeaceSign(lm []detector.Point3D) bool {
	if !valid(lm) {
		return false
	}
	return extended(lm, index) && extended(lm, middle) &&
		folded(lm, ring) && folded(lm, pinky)
}

// IsFist reports whether at least three of the four non-thumb fingers are
// folded.
func IsFist(lm []detector.Point3D) bool {
	if !valid(lm) {
		return false
	}
	return foldedFingers(lm) >= 3
}

func foldedFingers(lm []detector.Point3D) int {
	count := 0
	for f := index; f < numFingers; f++ {
		if folded(lm, f) {
			count++
		}
	}
	return count
}

// Pose returns the name of the first static pose the landmarks match, or an
// empty string.
func Pose(lm []detector.Point3D) string {
	switch {
	case IsPeaceSign(lm):
		return PeaceSign
	case IsThumbsUp(lm):
		return ThumbsUp
	case IsOpenPalm(lm):
		return OpenPalm
	case IsFist(lm):
		return Fist
	}
	return ""
}
