// Package app runs air typing end to end: camera frames go through the hand
// detector into the engine, and the results are persisted, broadcast and
// handed to command hooks.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/ayusman/airtype/internal/capture"
	"github.com/ayusman/airtype/internal/config"
	"github.com/ayusman/airtype/internal/detector"
	"github.com/ayusman/airtype/internal/engine"
	"github.com/ayusman/airtype/internal/gesture"
	"github.com/ayusman/airtype/internal/plugin"
	"github.com/ayusman/airtype/internal/store"
	"gocv.io/x/gocv"
)

// ErrNoFrame is returned by Snapshot before the first frame is captured.
var ErrNoFrame = errors.New("no frame captured yet")

// Config holds the collaborators of an App. Only Settings is consulted
// when the others are nil.
type Config struct {
	Settings *config.Config
	Store    *store.Store
	Camera   capture.Camera
	Detector detector.Detector
	Plugins  *plugin.Manager
	Clock    func() time.Time
}

// App owns the engine and the frame loop. Every exported method is safe
// for concurrent use.
type App struct {
	mu       sync.Mutex
	settings *config.Config
	store    *store.Store
	engine   *engine.Engine
	clock    func() time.Time

	camera   capture.Camera
	motion   *capture.MotionDetector
	pacer    *capture.Pacer
	detector detector.Detector
	plugins  *plugin.Manager
	hooks    *hookRunner

	themes      []string
	theme       string
	session     *store.Session
	pending     []store.Keystroke
	dirty       bool
	lastCommand gesture.Command
	last        engine.Output
	subscribers []func(engine.Output)

	frameMu sync.Mutex
	frame   *gocv.Mat

	ctx    context.Context
	cancel context.CancelFunc
	stopCh chan struct{}
	doneCh chan struct{}
}

// New builds an App. It fails only when the settings cannot produce an
// engine or no detector is available.
func New(cfg Config) (*App, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	es := settings.EngineSettings()
	es.Clock = clock
	eng, err := engine.New(es)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	det := cfg.Detector
	if det == nil {
		det, err = NewDetector(settings)
		if err != nil {
			return nil, err
		}
	}

	camera := cfg.Camera
	if camera == nil {
		camera = capture.NewCamera(capture.Options{
			DeviceID: settings.Camera.DeviceID,
			Width:    settings.Camera.Width,
			Height:   settings.Camera.Height,
			FPS:      settings.Camera.TargetFPS,
			Mirror:   settings.Camera.Mirror,
		})
	}

	plugins := cfg.Plugins
	if plugins == nil {
		plugins = plugin.NewManager(settings.PluginDir())
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		settings: settings,
		store:    cfg.Store,
		engine:   eng,
		clock:    clock,
		camera:   camera,
		motion:   capture.NewMotionDetector(settings.Camera.MotionThreshold),
		pacer:    capture.NewPacer(settings.Camera.TargetFPS, settings.Camera.IdleFPS, 0),
		detector: det,
		plugins:  plugins,
		hooks:    newHookRunner(cfg.Store, plugins, plugin.NewExecutor(settings.PluginTimeout()), settings.Hooks),
		ctx:      ctx,
		cancel:   cancel,
	}
	a.setThemes(settings.Themes)
	return a, nil
}

// NewDetector returns the MediaPipe detector, or the mock detector when
// MediaPipe is unavailable and the fallback is enabled.
func NewDetector(settings *config.Config) (detector.Detector, error) {
	mp, err := detector.NewMediaPipeDetector(settings.DetectorSettings())
	if err == nil {
		log.Println("Using MediaPipe hand detection")
		return mp, nil
	}
	if !settings.Detector.FallbackToMock {
		return nil, fmt.Errorf("mediapipe detector: %w", err)
	}
	log.Printf("MediaPipe not available (%v), using mock detector", err)
	return detector.NewMockDetector(), nil
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.plugins.Discover()
}

// Start opens the camera and begins the frame loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(a.pacer.FPS())

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Typing pipeline started")
	return nil
}

// Stop halts the frame loop, waits for running hooks and saves unsaved
// text.
func (a *App) Stop() {
	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.hooks.Wait()

	a.mu.Lock()
	if a.dirty {
		if err := a.saveLocked(); err != nil {
			log.Printf("Final save failed: %v", err)
		}
	}
	a.mu.Unlock()

	log.Println("Typing pipeline stopped")
}

// Running reports whether the frame loop is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopCh != nil
}

// Close stops the app and releases the detector and frame buffers.
func (a *App) Close() error {
	a.Stop()
	a.cancel()
	a.hooks.Wait()

	a.motion.Close()
	a.frameMu.Lock()
	if a.frame != nil {
		a.frame.Close()
		a.frame = nil
	}
	a.frameMu.Unlock()

	return a.detector.Close()
}

// Subscribe registers fn to receive every engine output. Callbacks run on
// the frame loop goroutine and must not block.
func (a *App) Subscribe(fn func(engine.Output)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subscribers = append(a.subscribers, fn)
}

// Snapshot returns a copy of the latest camera frame. The caller closes it.
func (a *App) Snapshot() (*gocv.Mat, error) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	if a.frame == nil || a.frame.Empty() {
		return nil, ErrNoFrame
	}
	clone := a.frame.Clone()
	return &clone, nil
}

func (a *App) keepFrame(frame *gocv.Mat) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	if a.frame == nil {
		m := gocv.NewMat()
		a.frame = &m
	}
	frame.CopyTo(a.frame)
}

// LastOutput returns the output of the most recent tick.
func (a *App) LastOutput() engine.Output {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// LastCommand returns the most recent gesture command, or CommandNone.
func (a *App) LastCommand() gesture.Command {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastCommand
}

// Paused reports whether typing is paused.
func (a *App) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Paused()
}

// SetPaused pauses or resumes typing.
func (a *App) SetPaused(paused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.SetPaused(paused)
	log.Printf("Typing paused: %v", paused)
}

// TogglePause flips the paused state and returns the new value.
func (a *App) TogglePause() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	paused := a.engine.TogglePause()
	log.Printf("Typing paused: %v", paused)
	return paused
}

// Layout returns the active layout name.
func (a *App) Layout() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Layout()
}

// Layouts returns the configured layout names.
func (a *App) Layouts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Layouts()
}

// NextLayout switches to the next layout and persists the choice.
func (a *App) NextLayout() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := a.engine.NextLayout()
	log.Printf("Layout changed to %s", name)
	a.persistSetting(store.SettingLayout, name)
	return name
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.plugins
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// ApplyConfig applies a reloaded configuration. Only runtime toggles,
// themes, hooks and the motion threshold take effect; camera, geometry
// and tracking settings need a restart.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.settings
	if cfg.Keyboard.Layout != prev.Keyboard.Layout {
		if !a.engine.ChangeLayout(cfg.Keyboard.Layout) {
			log.Printf("Reloaded layout %q is unknown, keeping %s", cfg.Keyboard.Layout, a.engine.Layout())
		}
	}
	a.engine.SetAdvancedGestures(cfg.Gestures.Enabled)
	a.engine.SetSmartZones(cfg.Keyboard.SmartZones)
	a.motion.SetThreshold(cfg.Camera.MotionThreshold)
	a.hooks.SetConfigured(cfg.Hooks)

	current := a.theme
	a.setThemes(cfg.Themes)
	if slices.Contains(a.themes, current) {
		a.theme = current
	}

	a.settings = cfg
	log.Println("Configuration reloaded")
}
