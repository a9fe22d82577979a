package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ayusman/airtype/internal/gesture"
)

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate reports every out-of-range value.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		add("camera.width", "frame size %dx%d must be positive", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.TargetFPS <= 0 {
		add("camera.target_fps", "must be positive, got %d", c.Camera.TargetFPS)
	}
	if c.Camera.IdleFPS < 0 || c.Camera.IdleFPS > c.Camera.TargetFPS {
		add("camera.idle_fps", "must be between 0 and target_fps, got %d", c.Camera.IdleFPS)
	}
	if c.Camera.MotionThreshold < 0 || c.Camera.MotionThreshold > 100 {
		add("camera.motion_threshold", "must be a percentage between 0 and 100, got %g", c.Camera.MotionThreshold)
	}

	if c.Detector.MaxHands < 1 || c.Detector.MaxHands > 2 {
		add("detector.max_hands", "must be 1 or 2, got %d", c.Detector.MaxHands)
	}
	for field, v := range map[string]float64{
		"detector.min_detection_confidence": c.Detector.MinDetectionConf,
		"detector.min_presence_confidence":  c.Detector.MinPresenceConf,
		"detector.min_tracking_confidence":  c.Detector.MinTrackingConf,
	} {
		if v < 0 || v > 1 {
			add(field, "must be in [0,1], got %v", v)
		}
	}

	if c.Tracking.Smoothing < 0 || c.Tracking.Smoothing >= 1 {
		add("tracking.smoothing", "must be in [0,1), got %v", c.Tracking.Smoothing)
	}
	if c.Tracking.PinchThreshold <= 0 {
		add("tracking.pinch_threshold", "must be positive, got %v", c.Tracking.PinchThreshold)
	}

	if c.Gestures.CooldownSec < 0 {
		add("gestures.cooldown_sec", "must not be negative, got %v", c.Gestures.CooldownSec)
	}
	if c.Gestures.HistorySize <= 0 {
		add("gestures.history_size", "must be positive, got %d", c.Gestures.HistorySize)
	}
	if c.Gestures.SwipeMinPoints <= 0 || c.Gestures.SwipeMinPoints > c.Gestures.HistorySize {
		add("gestures.swipe_min_points", "must be between 1 and history_size, got %d", c.Gestures.SwipeMinPoints)
	}
	if c.Gestures.SwipeThreshold <= 0 {
		add("gestures.swipe_threshold", "must be positive, got %v", c.Gestures.SwipeThreshold)
	}
	if c.Gestures.TogetherThreshold <= 0 {
		add("gestures.together_threshold", "must be positive, got %v", c.Gestures.TogetherThreshold)
	}

	layouts := c.Layouts()
	names := make([]string, 0, len(layouts))
	for _, l := range layouts {
		if err := l.Validate(); err != nil {
			add("keyboard.layouts", "%v", err)
		}
		names = append(names, l.Name)
	}
	if !slices.Contains(names, c.Keyboard.Layout) {
		add("keyboard.layout", "unknown layout %q (have %s)", c.Keyboard.Layout, strings.Join(names, ", "))
	}
	if c.Keyboard.KeyWidth <= 0 || c.Keyboard.KeyHeight <= 0 {
		add("keyboard.key_width", "key size must be positive")
	}
	if c.Keyboard.Gap < 0 || c.Keyboard.RowSpacing < c.Keyboard.KeyHeight {
		add("keyboard.row_spacing", "keys must not overlap")
	}

	if c.Stats.WindowSec <= 0 {
		add("stats.window_sec", "must be positive, got %v", c.Stats.WindowSec)
	}

	if len(c.Themes.Names) == 0 {
		add("themes.names", "at least one theme is required")
	} else if !slices.Contains(c.Themes.Names, c.Themes.Default) {
		add("themes.default", "unknown theme %q", c.Themes.Default)
	}

	if c.Server.Addr == "" {
		add("server.addr", "is required")
	}
	if c.Storage.Dir == "" {
		add("storage.dir", "is required")
	}
	if c.Storage.AutosaveSec < 0 {
		add("storage.autosave_sec", "must not be negative, got %v", c.Storage.AutosaveSec)
	}

	if c.Plugins.TimeoutSec <= 0 {
		add("plugins.timeout_sec", "must be positive, got %v", c.Plugins.TimeoutSec)
	}

	for i, h := range c.Hooks {
		field := fmt.Sprintf("hooks[%d]", i)
		if !slices.Contains(gesture.Commands, gesture.Command(h.Command)) {
			add(field+".command", "unknown command %q", h.Command)
		}
		if h.Plugin == "" || h.Action == "" {
			add(field, "plugin and action are required")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
