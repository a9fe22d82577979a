package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/airtype/internal/gesture"
	"github.com/ayusman/airtype/internal/hand"
	"github.com/ayusman/airtype/internal/keyboard"
	"github.com/ayusman/airtype/internal/stats"
)

// ErrInvalidSettings wraps every settings validation failure.
var ErrInvalidSettings = errors.New("invalid engine settings")

// Settings configures an Engine. Everything except the runtime toggles is
// fixed for the engine's lifetime.
type Settings struct {
	Hand     hand.Config
	Gestures gesture.Config

	Layouts  []keyboard.Layout
	Geometry keyboard.Geometry
	Layout   string

	StatsWindow time.Duration

	// Runtime toggles, changed later through Engine methods.
	AdvancedGestures bool
	SmartZones       bool

	// Clock is used when frames carry no timestamp. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultSettings returns settings for a 1280x720 camera with the built-in
// layouts.
func DefaultSettings() Settings {
	return Settings{
		Hand:             hand.DefaultConfig(),
		Gestures:         gesture.DefaultConfig(),
		Layouts:          keyboard.DefaultLayouts(),
		Geometry:         keyboard.DefaultGeometry(),
		Layout:           keyboard.LayoutQWERTY,
		StatsWindow:      stats.DefaultWindow,
		AdvancedGestures: true,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSettings, fmt.Sprintf(format, args...))
}

// Validate reports the first out-of-range value.
func (s Settings) Validate() error {
	switch {
	case s.Hand.FrameWidth <= 0 || s.Hand.FrameHeight <= 0:
		return invalid("frame size %dx%d must be positive", s.Hand.FrameWidth, s.Hand.FrameHeight)
	case s.Hand.Smoothing < 0 || s.Hand.Smoothing >= 1:
		return invalid("smoothing %v must be in [0,1)", s.Hand.Smoothing)
	case s.Hand.PinchThreshold <= 0:
		return invalid("pinch threshold %v must be positive", s.Hand.PinchThreshold)
	case s.Gestures.Cooldown < 0:
		return invalid("gesture cooldown %v must not be negative", s.Gestures.Cooldown)
	case s.Gestures.HistorySize <= 0:
		return invalid("gesture history size %d must be positive", s.Gestures.HistorySize)
	case s.Gestures.SwipeMinPoints <= 0 || s.Gestures.SwipeMinPoints > s.Gestures.HistorySize:
		return invalid("swipe needs %d points but history holds %d", s.Gestures.SwipeMinPoints, s.Gestures.HistorySize)
	case s.Gestures.SwipeThreshold <= 0:
		return invalid("swipe threshold %v must be positive", s.Gestures.SwipeThreshold)
	case s.Gestures.TogetherThreshold <= 0:
		return invalid("hands-together threshold %v must be positive", s.Gestures.TogetherThreshold)
	case s.StatsWindow <= 0:
		return invalid("stats window %v must be positive", s.StatsWindow)
	case len(s.Layouts) == 0:
		return invalid("no keyboard layouts")
	}

	found := s.Layout == ""
	for _, l := range s.Layouts {
		if err := l.Validate(); err != nil {
			return invalid("%v", err)
		}
		if l.Name == s.Layout {
			found = true
		}
	}
	if !found {
		return invalid("unknown default layout %q", s.Layout)
	}
	return nil
}
