package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/airtype/internal/engine"
	"github.com/ayusman/airtype/internal/keyboard"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1280, cfg.Camera.Width)
	assert.Equal(t, 720, cfg.Camera.Height)
	assert.Equal(t, 60, cfg.Camera.TargetFPS)
	assert.Equal(t, 0.7, cfg.Tracking.Smoothing)
	assert.Equal(t, 35.0, cfg.Tracking.PinchThreshold)
	assert.Equal(t, 1.0, cfg.Gestures.CooldownSec)
	assert.Equal(t, keyboard.LayoutQWERTY, cfg.Keyboard.Layout)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval())
	assert.Contains(t, cfg.DatabasePath(), ".airtype")
	assert.Equal(t, 5*time.Second, cfg.PluginTimeout())
	assert.True(t, strings.HasSuffix(cfg.PluginDir(), filepath.Join(".airtype", "plugins")))
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()
	assert.True(t, strings.HasSuffix(path, filepath.Join(".airtype", "config.toml")), path)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "data"), ExpandPath("~/data"))
	assert.Equal(t, "/tmp/x", ExpandPath("/tmp/x"))
}

func TestEngineSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gestures.CooldownSec = 2.5
	cfg.Keyboard.SmartZones = true

	s := cfg.EngineSettings()

	require.NoError(t, s.Validate())
	assert.Equal(t, 2500*time.Millisecond, s.Gestures.Cooldown)
	assert.Equal(t, time.Minute, s.StatsWindow)
	assert.True(t, s.SmartZones)
	assert.True(t, s.AdvancedGestures)
	assert.Equal(t, keyboard.DefaultGeometry(), s.Geometry)

	_, err := engine.New(s)
	assert.NoError(t, err)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `
[tracking]
pinch_threshold = 40.0

[keyboard]
layout = "AZERTY"

[[hooks]]
command = "save"
plugin = "clipboard"
action = "copy"
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `
tracking:
  pinch_threshold: 40
keyboard:
  layout: AZERTY
hooks:
  - command: save
    plugin: clipboard
    action: copy
`,
		},
		{
			name: "json",
			file: "config.json",
			content: `{
  "tracking": {"pinch_threshold": 40},
  "keyboard": {"layout": "AZERTY"},
  "hooks": [{"command": "save", "plugin": "clipboard", "action": "copy"}]
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewLoader(writeFile(t, tt.file, tt.content)).Load()
			require.NoError(t, err)

			assert.Equal(t, 40.0, cfg.Tracking.PinchThreshold)
			assert.Equal(t, keyboard.LayoutAZERTY, cfg.Keyboard.Layout)
			// Unset values keep their defaults.
			assert.Equal(t, 0.7, cfg.Tracking.Smoothing)
			require.Len(t, cfg.Hooks, 1)
			assert.Equal(t, HookConfig{Command: "save", Plugin: "clipboard", Action: "copy"}, cfg.Hooks[0])
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.toml")).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Keyboard, cfg.Keyboard)
}

func TestLoad_DecodeError(t *testing.T) {
	_, err := NewLoader(writeFile(t, "broken.toml", "[tracking\nsmoothing = ")).Load()
	assert.ErrorContains(t, err, "decode TOML")
}

func TestLoad_CustomLayout(t *testing.T) {
	path := writeFile(t, "config.toml", `
[keyboard]
layout = "MINI"

[keyboard.layouts]
MINI = [["A", "B", "<-"], [" "]]
`)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	names := make([]string, 0)
	for _, l := range cfg.Layouts() {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{keyboard.LayoutQWERTY, keyboard.LayoutAZERTY, "MINI"}, names)

	e, err := engine.New(cfg.EngineSettings())
	require.NoError(t, err)
	assert.Equal(t, "MINI", e.Layout())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		field  string
		modify func(*Config)
	}{
		{"camera.width", func(c *Config) { c.Camera.Width = 0 }},
		{"camera.target_fps", func(c *Config) { c.Camera.TargetFPS = 0 }},
		{"camera.idle_fps", func(c *Config) { c.Camera.IdleFPS = 120 }},
		{"detector.max_hands", func(c *Config) { c.Detector.MaxHands = 3 }},
		{"detector.min_tracking_confidence", func(c *Config) { c.Detector.MinTrackingConf = 1.5 }},
		{"tracking.smoothing", func(c *Config) { c.Tracking.Smoothing = 1 }},
		{"tracking.pinch_threshold", func(c *Config) { c.Tracking.PinchThreshold = -1 }},
		{"gestures.cooldown_sec", func(c *Config) { c.Gestures.CooldownSec = -1 }},
		{"gestures.history_size", func(c *Config) { c.Gestures.HistorySize = 0 }},
		{"gestures.swipe_min_points", func(c *Config) { c.Gestures.SwipeMinPoints = 11 }},
		{"gestures.swipe_threshold", func(c *Config) { c.Gestures.SwipeThreshold = 0 }},
		{"gestures.together_threshold", func(c *Config) { c.Gestures.TogetherThreshold = 0 }},
		{"keyboard.layout", func(c *Config) { c.Keyboard.Layout = "DVORAK" }},
		{"keyboard.layouts", func(c *Config) { c.Keyboard.Layouts = map[string][][]string{"EMPTY": {}} }},
		{"keyboard.key_width", func(c *Config) { c.Keyboard.KeyWidth = 0 }},
		{"keyboard.row_spacing", func(c *Config) { c.Keyboard.RowSpacing = 10 }},
		{"stats.window_sec", func(c *Config) { c.Stats.WindowSec = 0 }},
		{"themes.names", func(c *Config) { c.Themes.Names = nil }},
		{"themes.default", func(c *Config) { c.Themes.Default = "plaid" }},
		{"server.addr", func(c *Config) { c.Server.Addr = "" }},
		{"storage.dir", func(c *Config) { c.Storage.Dir = "" }},
		{"storage.autosave_sec", func(c *Config) { c.Storage.AutosaveSec = -5 }},
		{"plugins.timeout_sec", func(c *Config) { c.Plugins.TimeoutSec = 0 }},
		{"camera.motion_threshold", func(c *Config) { c.Camera.MotionThreshold = 150 }},
		{"hooks[0].command", func(c *Config) { c.Hooks = []HookConfig{{Command: "explode", Plugin: "p", Action: "a"}} }},
		{"hooks[0]", func(c *Config) { c.Hooks = []HookConfig{{Command: "save"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			fields := make([]string, 0, len(verrs))
			for _, v := range verrs {
				fields = append(fields, v.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Keyboard.Layout = keyboard.LayoutAZERTY
			cfg.Themes.Default = "neon"
			cfg.Hooks = []HookConfig{{Command: "save", Plugin: "clipboard", Action: "copy"}}
			path := filepath.Join(t.TempDir(), "nested", "config"+ext)

			require.NoError(t, Save(cfg, path))
			loaded, err := NewLoader(path).Load()
			require.NoError(t, err)

			assert.Equal(t, cfg.Keyboard.Layout, loaded.Keyboard.Layout)
			assert.Equal(t, cfg.Themes, loaded.Themes)
			assert.Equal(t, cfg.Hooks, loaded.Hooks)
			assert.Equal(t, cfg.Camera, loaded.Camera)
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	loader, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)
	assert.NotNil(t, loader.Config())

	_, created, err = LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestLoader_Watch(t *testing.T) {
	path := writeFile(t, "config.toml", "[keyboard]\nsmart_zones = false\n")
	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)

	changed := make(chan *Config, 1)
	loader.OnChange(func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	require.NoError(t, loader.Watch())
	defer loader.Close()

	require.NoError(t, os.WriteFile(path, []byte("[keyboard]\nsmart_zones = true\n"), 0600))

	select {
	case cfg := <-changed:
		assert.True(t, cfg.Keyboard.SmartZones)
		assert.True(t, loader.Config().Keyboard.SmartZones)
	case err := <-loader.Errors():
		t.Fatalf("reload error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestLoader_WatchRejectsInvalid(t *testing.T) {
	path := writeFile(t, "config.toml", "")
	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	require.NoError(t, loader.Watch())
	defer loader.Close()

	require.NoError(t, os.WriteFile(path, []byte("[tracking]\nsmoothing = 2.0\n"), 0600))

	select {
	case err := <-loader.Errors():
		assert.ErrorContains(t, err, "tracking.smoothing")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for validation error")
	}
	assert.Equal(t, 0.7, loader.Config().Tracking.Smoothing)
}
