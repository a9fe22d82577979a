// Package config loads airtype configuration from TOML, YAML or JSON files.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ayusman/airtype/internal/detector"
	"github.com/ayusman/airtype/internal/engine"
	"github.com/ayusman/airtype/internal/gesture"
	"github.com/ayusman/airtype/internal/hand"
	"github.com/ayusman/airtype/internal/keyboard"
)

// Config holds the complete application configuration.
type Config struct {
	Camera   CameraConfig   `toml:"camera" json:"camera" yaml:"camera"`
	Detector DetectorConfig `toml:"detector" json:"detector" yaml:"detector"`
	Tracking TrackingConfig `toml:"tracking" json:"tracking" yaml:"tracking"`
	Gestures GesturesConfig `toml:"gestures" json:"gestures" yaml:"gestures"`
	Keyboard KeyboardConfig `toml:"keyboard" json:"keyboard" yaml:"keyboard"`
	Stats    StatsConfig    `toml:"stats" json:"stats" yaml:"stats"`
	Themes   ThemesConfig   `toml:"themes" json:"themes" yaml:"themes"`
	Server   ServerConfig   `toml:"server" json:"server" yaml:"server"`
	Storage  StorageConfig  `toml:"storage" json:"storage" yaml:"storage"`
	Plugins  PluginsConfig  `toml:"plugins" json:"plugins" yaml:"plugins"`
	Hooks    []HookConfig   `toml:"hooks" json:"hooks" yaml:"hooks"`
}

// CameraConfig selects and paces the capture device.
type CameraConfig struct {
	DeviceID int  `toml:"device_id" json:"device_id" yaml:"device_id"`
	Width    int  `toml:"width" json:"width" yaml:"width"`
	Height   int  `toml:"height" json:"height" yaml:"height"`
	Mirror   bool `toml:"mirror" json:"mirror" yaml:"mirror"`

	// TargetFPS is the frame rate while hands are moving; IdleFPS is used
	// once the motion detector sees a still scene.
	TargetFPS       int     `toml:"target_fps" json:"target_fps" yaml:"target_fps"`
	IdleFPS         int     `toml:"idle_fps" json:"idle_fps" yaml:"idle_fps"`
	MotionThreshold float64 `toml:"motion_threshold" json:"motion_threshold" yaml:"motion_threshold"`
}

// DetectorConfig configures the MediaPipe hand landmark service.
type DetectorConfig struct {
	ScriptPath       string  `toml:"script_path" json:"script_path" yaml:"script_path"`
	MaxHands         int     `toml:"max_hands" json:"max_hands" yaml:"max_hands"`
	MinDetectionConf float64 `toml:"min_detection_confidence" json:"min_detection_confidence" yaml:"min_detection_confidence"`
	MinPresenceConf  float64 `toml:"min_presence_confidence" json:"min_presence_confidence" yaml:"min_presence_confidence"`
	MinTrackingConf  float64 `toml:"min_tracking_confidence" json:"min_tracking_confidence" yaml:"min_tracking_confidence"`
	FallbackToMock   bool    `toml:"fallback_to_mock" json:"fallback_to_mock" yaml:"fallback_to_mock"`
}

// TrackingConfig tunes cursor smoothing and pinch detection.
type TrackingConfig struct {
	Smoothing      float64 `toml:"smoothing" json:"smoothing" yaml:"smoothing"`
	PinchThreshold float64 `toml:"pinch_threshold" json:"pinch_threshold" yaml:"pinch_threshold"`
}

// GesturesConfig tunes the command gestures.
type GesturesConfig struct {
	Enabled           bool    `toml:"enabled" json:"enabled" yaml:"enabled"`
	CooldownSec       float64 `toml:"cooldown_sec" json:"cooldown_sec" yaml:"cooldown_sec"`
	HistorySize       int     `toml:"history_size" json:"history_size" yaml:"history_size"`
	SwipeMinPoints    int     `toml:"swipe_min_points" json:"swipe_min_points" yaml:"swipe_min_points"`
	SwipeThreshold    float64 `toml:"swipe_threshold" json:"swipe_threshold" yaml:"swipe_threshold"`
	TogetherThreshold float64 `toml:"together_threshold" json:"together_threshold" yaml:"together_threshold"`
}

// KeyboardConfig describes layouts and key placement.
type KeyboardConfig struct {
	Layout     string `toml:"layout" json:"layout" yaml:"layout"`
	SmartZones bool   `toml:"smart_zones" json:"smart_zones" yaml:"smart_zones"`

	// Layouts adds or replaces named layouts. The built-in QWERTY and
	// AZERTY tables are always available.
	Layouts map[string][][]string `toml:"layouts" json:"layouts" yaml:"layouts"`

	OriginX        float64 `toml:"origin_x" json:"origin_x" yaml:"origin_x"`
	OriginY        float64 `toml:"origin_y" json:"origin_y" yaml:"origin_y"`
	RowSpacing     float64 `toml:"row_spacing" json:"row_spacing" yaml:"row_spacing"`
	Gap            float64 `toml:"gap" json:"gap" yaml:"gap"`
	KeyWidth       float64 `toml:"key_width" json:"key_width" yaml:"key_width"`
	KeyHeight      float64 `toml:"key_height" json:"key_height" yaml:"key_height"`
	SpaceWidth     float64 `toml:"space_width" json:"space_width" yaml:"space_width"`
	BackspaceWidth float64 `toml:"backspace_width" json:"backspace_width" yaml:"backspace_width"`
	ShiftWidth     float64 `toml:"shift_width" json:"shift_width" yaml:"shift_width"`
	EnterWidth     float64 `toml:"enter_width" json:"enter_width" yaml:"enter_width"`
}

// StatsConfig tunes the typing statistics.
type StatsConfig struct {
	WindowSec float64 `toml:"window_sec" json:"window_sec" yaml:"window_sec"`
}

// ThemesConfig lists the renderer themes cycled by the swipe gesture.
type ThemesConfig struct {
	Default string   `toml:"default" json:"default" yaml:"default"`
	Names   []string `toml:"names" json:"names" yaml:"names"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" json:"addr" yaml:"addr"`

	// StaticDir serves a renderer from disk when set.
	StaticDir string `toml:"static_dir" json:"static_dir" yaml:"static_dir"`
}

// StorageConfig configures persistence.
type StorageConfig struct {
	Dir            string  `toml:"dir" json:"dir" yaml:"dir"`
	AutosaveSec    float64 `toml:"autosave_sec" json:"autosave_sec" yaml:"autosave_sec"`
	RestoreText    bool    `toml:"restore_text" json:"restore_text" yaml:"restore_text"`
	SaveKeystrokes bool    `toml:"save_keystrokes" json:"save_keystrokes" yaml:"save_keystrokes"`
}

// PluginsConfig locates hook plugins.
type PluginsConfig struct {
	Dir        string  `toml:"dir" json:"dir" yaml:"dir"`
	TimeoutSec float64 `toml:"timeout_sec" json:"timeout_sec" yaml:"timeout_sec"`
}

// HookConfig runs a plugin action when a gesture command fires.
type HookConfig struct {
	Command string `toml:"command" json:"command" yaml:"command"`
	Plugin  string `toml:"plugin" json:"plugin" yaml:"plugin"`
	Action  string `toml:"action" json:"action" yaml:"action"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	geom := keyboard.DefaultGeometry()
	det := detector.DefaultConfig()
	gest := gesture.DefaultConfig()

	return &Config{
		Camera: CameraConfig{
			Width:           1280,
			Height:          720,
			Mirror:          true,
			TargetFPS:       60,
			IdleFPS:         10,
			MotionThreshold: 1.0,
		},
		Detector: DetectorConfig{
			MaxHands:         det.MaxHands,
			MinDetectionConf: det.MinConfidence,
			MinPresenceConf:  det.MinPresenceConf,
			MinTrackingConf:  det.MinTrackingConf,
			FallbackToMock:   true,
		},
		Tracking: TrackingConfig{
			Smoothing:      hand.DefaultSmoothing,
			PinchThreshold: hand.DefaultPinchThreshold,
		},
		Gestures: GesturesConfig{
			Enabled:           true,
			CooldownSec:       gest.Cooldown.Seconds(),
			HistorySize:       gest.HistorySize,
			SwipeMinPoints:    gest.SwipeMinPoints,
			SwipeThreshold:    gest.SwipeThreshold,
			TogetherThreshold: gest.TogetherThreshold,
		},
		Keyboard: KeyboardConfig{
			Layout:         keyboard.LayoutQWERTY,
			OriginX:        geom.OriginX,
			OriginY:        geom.OriginY,
			RowSpacing:     geom.RowSpacing,
			Gap:            geom.Gap,
			KeyWidth:       geom.KeyWidth,
			KeyHeight:      geom.KeyHeight,
			SpaceWidth:     geom.SpaceWidth,
			BackspaceWidth: geom.BackspaceWidth,
			ShiftWidth:     geom.ShiftWidth,
			EnterWidth:     geom.EnterWidth,
		},
		Stats: StatsConfig{
			WindowSec: 60,
		},
		Themes: ThemesConfig{
			Default: "simple_dark",
			Names:   []string{"simple_dark", "neon", "ocean", "high_contrast"},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			Dir:            filepath.Join(homeDir(), ".airtype"),
			AutosaveSec:    30,
			RestoreText:    true,
			SaveKeystrokes: true,
		},
		Plugins: PluginsConfig{
			Dir:        filepath.Join(homeDir(), ".airtype", "plugins"),
			TimeoutSec: 5,
		},
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// ConfigPath returns the default configuration file location.
func ConfigPath() string {
	return filepath.Join(homeDir(), ".airtype", "config.toml")
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(ExpandPath(c.Storage.Dir), "airtype.db")
}

// AutosaveInterval returns the autosave period; zero disables autosave.
func (c *Config) AutosaveInterval() time.Duration {
	return seconds(c.Storage.AutosaveSec)
}

// PluginDir returns the expanded plugin directory.
func (c *Config) PluginDir() string {
	return ExpandPath(c.Plugins.Dir)
}

// PluginTimeout returns the per-run plugin time limit.
func (c *Config) PluginTimeout() time.Duration {
	return seconds(c.Plugins.TimeoutSec)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Layouts returns the built-in layouts merged with the configured ones,
// built-ins first.
func (c *Config) Layouts() []keyboard.Layout {
	layouts := keyboard.DefaultLayouts()
	for _, custom := range keyboard.LayoutsFromTable(c.Keyboard.Layouts) {
		replaced := false
		for i := range layouts {
			if layouts[i].Name == custom.Name {
				layouts[i] = custom
				replaced = true
			}
		}
		if !replaced {
			layouts = append(layouts, custom)
		}
	}
	return layouts
}

// Geometry returns the key placement.
func (c *Config) Geometry() keyboard.Geometry {
	k := c.Keyboard
	return keyboard.Geometry{
		OriginX:        k.OriginX,
		OriginY:        k.OriginY,
		RowSpacing:     k.RowSpacing,
		Gap:            k.Gap,
		KeyWidth:       k.KeyWidth,
		KeyHeight:      k.KeyHeight,
		SpaceWidth:     k.SpaceWidth,
		BackspaceWidth: k.BackspaceWidth,
		ShiftWidth:     k.ShiftWidth,
		EnterWidth:     k.EnterWidth,
	}
}

// DetectorSettings returns the detector settings.
func (c *Config) DetectorSettings() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinDetectionConf,
		MinPresenceConf: c.Detector.MinPresenceConf,
		MinTrackingConf: c.Detector.MinTrackingConf,
		ScriptPath:      ExpandPath(c.Detector.ScriptPath),
	}
}

// EngineSettings converts the configuration into engine settings.
func (c *Config) EngineSettings() engine.Settings {
	return engine.Settings{
		Hand: hand.Config{
			FrameWidth:     c.Camera.Width,
			FrameHeight:    c.Camera.Height,
			Smoothing:      c.Tracking.Smoothing,
			PinchThreshold: c.Tracking.PinchThreshold,
		},
		Gestures: gesture.Config{
			HistorySize:       c.Gestures.HistorySize,
			SwipeMinPoints:    c.Gestures.SwipeMinPoints,
			SwipeThreshold:    c.Gestures.SwipeThreshold,
			TogetherThreshold: c.Gestures.TogetherThreshold,
			Cooldown:          seconds(c.Gestures.CooldownSec),
		},
		Layouts:          c.Layouts(),
		Geometry:         c.Geometry(),
		Layout:           c.Keyboard.Layout,
		StatsWindow:      seconds(c.Stats.WindowSec),
		AdvancedGestures: c.Gestures.Enabled,
		SmartZones:       c.Keyboard.SmartZones,
	}
}
