package app

import (
	"log"
	"time"

	"github.com/ayusman/airtype/internal/detector"
	"github.com/ayusman/airtype/internal/engine"
	"github.com/ayusman/airtype/internal/gesture"
	"github.com/ayusman/airtype/internal/store"
)

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

// runPipeline is the frame loop. It reads a frame, feeds motion to the
// pacer, runs hand detection and ticks the engine. The capture rate drops
// to the idle rate after a run of still, handless frames and returns to
// the target rate on the next motion.
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	fps := a.pacer.FPS()
	ticker := time.NewTicker(frameInterval(fps))
	defer ticker.Stop()

	var autosave <-chan time.Time
	if interval := a.settings.AutosaveInterval(); interval > 0 && a.store != nil {
		t := time.NewTicker(interval)
		defer t.Stop()
		autosave = t.C
	}

	for {
		select {
		case <-stop:
			return
		case <-autosave:
			a.autosave()
		case <-ticker.C:
			next := a.step()
			if next == fps {
				continue
			}
			if a.pacer.Idle() {
				log.Printf("No motion, switching to %d FPS", next)
			} else {
				log.Printf("Motion detected, switching to %d FPS", next)
			}
			fps = next
			a.camera.SetFPS(fps)
			ticker.Reset(frameInterval(fps))
		}
	}
}

// step processes one camera frame and returns the rate for the next one.
func (a *App) step() (fps int) {
	fps = a.pacer.FPS()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in frame loop: %v", r)
		}
	}()

	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Printf("Error reading frame: %v", err)
		return fps
	}
	defer frame.Close()

	a.keepFrame(frame)

	motion, _ := a.motion.Detect(frame)
	if !motion && a.pacer.Idle() {
		return a.pacer.Observe(false)
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		hands = nil
	}

	a.Process(hands, a.clock().UnixMilli())
	return a.pacer.Observe(motion || len(hands) > 0)
}

// Process runs one engine tick on detected hands, handles any command it
// fires and notifies subscribers.
func (a *App) Process(hands []detector.HandLandmarks, timestampMs int64) engine.Output {
	a.mu.Lock()
	before := a.engine.Text()
	out := a.engine.Tick(engine.InputFromHands(hands, timestampMs))

	for _, c := range out.Commits {
		if c.Char == "" {
			continue
		}
		a.dirty = true
		if a.store != nil && a.settings.Storage.SaveKeystrokes {
			a.pending = append(a.pending, store.Keystroke{Token: c.Char, TypedAt: a.clock()})
		}
	}

	if out.Command != nil {
		a.handleCommand(out.Command.Command, before)
	}
	a.last = out
	subscribers := append(([]func(engine.Output))(nil), a.subscribers...)
	a.mu.Unlock()

	for _, fn := range subscribers {
		fn(out)
	}
	return out
}

// handleCommand runs the app side of a gesture command and starts its
// hooks. before is the text as it was before the tick, so a clear hook
// still sees what was cleared. Called with a.mu held.
func (a *App) handleCommand(cmd gesture.Command, before string) {
	a.lastCommand = cmd
	text := a.engine.Text()

	switch cmd {
	case gesture.CommandSave:
		if err := a.saveLocked(); err != nil {
			log.Printf("Save failed: %v", err)
		} else if a.session != nil {
			log.Printf("Saved session %s", a.session.ID)
		}
	case gesture.CommandCycleTheme:
		a.cycleThemeLocked()
	case gesture.CommandPause:
		log.Printf("Typing paused: %v", a.engine.Paused())
	case gesture.CommandClear:
		a.dirty = true
		text = before
		log.Println("Text cleared")
	}

	if n := a.hooks.Fire(a.ctx, cmd, text); n > 0 {
		log.Printf("Started %d hook(s) for %s", n, cmd)
	}
}
