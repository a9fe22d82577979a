// Package engine runs one tick of air typing: hand tracking, the virtual
// keyboard, gesture commands and typing statistics.
package engine

import (
	"time"

	"github.com/ayusman/airtype/internal/detector"
	"github.com/ayusman/airtype/internal/gesture"
	"github.com/ayusman/airtype/internal/hand"
	"github.com/ayusman/airtype/internal/keyboard"
	"github.com/ayusman/airtype/internal/stats"
)

// Input is the detector output for one tick.
type Input struct {
	Left  detector.HandFrame
	Right detector.HandFrame
}

// InputFromHands assigns raw detections to slots.
func InputFromHands(hands []detector.HandLandmarks, timestampMs int64) Input {
	left, right := detector.SplitHands(hands, timestampMs)
	return Input{Left: left, Right: right}
}

func (in Input) timestamp() int64 {
	return max(in.Left.TimestampMs, in.Right.TimestampMs)
}

// HandOutput is the per-slot render state.
type HandOutput struct {
	Slot     hand.Slot     `json:"slot"`
	Cursor   *hand.Point   `json:"cursor"`
	Clicking bool          `json:"clicking"`
	Zone     keyboard.Zone `json:"zone,omitempty"`
	Pose     string        `json:"pose,omitempty"`
}

// Output is everything a renderer needs after one tick.
type Output struct {
	TimestampMs int64                     `json:"timestamp_ms"`
	Paused      bool                      `json:"paused"`
	Layout      string                    `json:"layout"`
	Shift       bool                      `json:"shift"`
	Keys        []keyboard.KeyState       `json:"keys"`
	Hands       [hand.NumSlots]HandOutput `json:"hands"`
	Text        string                    `json:"text"`
	Commits     []keyboard.Commit         `json:"commits,omitempty"`
	Typed       string                    `json:"typed,omitempty"`
	Chars       []string                  `json:"chars,omitempty"`
	Stats       stats.Snapshot            `json:"stats"`
	Command     *gesture.Event            `json:"command,omitempty"`
}

// Engine owns the per-session input state. It is driven from a single
// goroutine and is not safe for concurrent use.
type Engine struct {
	settings   Settings
	trackers   hand.Pair
	keyboard   *keyboard.Keyboard
	classifier *gesture.Classifier
	stats      *stats.Aggregator

	paused           bool
	advancedGestures bool
	smartZones       bool

	now     time.Time
	origin  time.Time
	firstTs int64
	lastTs  int64
}

// New validates settings and builds an engine.
func New(settings Settings) (*Engine, error) {
	if settings.Clock == nil {
		settings.Clock = time.Now
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	kb, err := keyboard.New(settings.Layouts, settings.Geometry, settings.Layout)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		settings:         settings,
		trackers:         hand.NewPair(settings.Hand),
		keyboard:         kb,
		advancedGestures: settings.AdvancedGestures,
		smartZones:       settings.SmartZones,
		now:              settings.Clock(),
	}
	e.classifier = gesture.NewClassifier(settings.Gestures, e.clock)
	e.stats = stats.New(settings.StatsWindow, e.clock)
	return e, nil
}

func (e *Engine) clock() time.Time {
	return e.now
}

// advance moves the engine clock. Frame timestamps are applied as offsets
// from the first stamped frame; frames without one read the wall clock.
// Timestamps that go backwards leave the clock where it is.
func (e *Engine) advance(ts int64) {
	if ts <= 0 {
		e.now = e.settings.Clock()
		return
	}
	if e.firstTs == 0 {
		e.firstTs = ts
		e.origin = e.settings.Clock()
	}
	if ts < e.lastTs {
		return
	}
	e.lastTs = ts
	e.now = e.origin.Add(time.Duration(ts-e.firstTs) * time.Millisecond)
}

// Tick processes one frame.
func (e *Engine) Tick(in Input) Output {
	e.advance(in.timestamp())

	states := e.trackers.Update(in.Left, in.Right)

	kbStates := states
	if e.paused {
		kbStates = [hand.NumSlots]hand.State{}
	}
	res := e.keyboard.Update(kbStates[hand.Left], kbStates[hand.Right])
	for _, c := range res.Commits {
		if c.Char != "" {
			e.stats.Track(c.Char)
		}
	}

	var cmd *gesture.Event
	if e.advancedGestures {
		if ev, ok := e.classifier.Evaluate(gestureInput(in, states), gesture.Options{TogetherOnly: e.paused}); ok {
			e.apply(ev.Command)
			cmd = &ev
		}
	}

	out := Output{
		TimestampMs: in.timestamp(),
		Paused:      e.paused,
		Layout:      e.keyboard.LayoutName(),
		Shift:       e.keyboard.ShiftActive(),
		Keys:        e.keyboard.KeyStates(),
		Text:        e.keyboard.Text(),
		Commits:     res.Commits,
		Stats:       e.stats.Snapshot(),
		Command:     cmd,
	}
	out.Typed, _ = res.First()
	out.Chars = res.Chars()
	for _, slot := range hand.Slots {
		out.Hands[slot] = HandOutput{
			Slot:     slot,
			Cursor:   states[slot].Cursor,
			Clicking: states[slot].Clicking,
		}
		if e.smartZones && states[slot].Cursor != nil {
			out.Hands[slot].Zone = e.keyboard.Zone(*states[slot].Cursor)
		}
	}
	if e.advancedGestures {
		for slot, frame := range [hand.NumSlots]detector.HandFrame{in.Left, in.Right} {
			if frame.Usable() {
				out.Hands[slot].Pose = gesture.Pose(frame.Landmarks)
			}
		}
	}
	return out
}

func gestureInput(in Input, states [hand.NumSlots]hand.State) gesture.Input {
	var g gesture.Input
	for slot, frame := range [hand.NumSlots]detector.HandFrame{in.Left, in.Right} {
		if frame.Usable() {
			g.Landmarks[slot] = frame.Landmarks
		}
		g.Cursors[slot] = states[slot].Cursor
	}
	return g
}

// apply runs the commands the engine owns. Save and cycle-theme are left
// to the caller.
func (e *Engine) apply(cmd gesture.Command) {
	switch cmd {
	case gesture.CommandPause:
		e.paused = !e.paused
	case gesture.CommandClear:
		e.keyboard.ClearText()
	}
}

// Paused reports whether typing is paused.
func (e *Engine) Paused() bool { return e.paused }

// SetPaused pauses or resumes typing.
func (e *Engine) SetPaused(paused bool) { e.paused = paused }

// TogglePause flips the paused state and returns the new value.
func (e *Engine) TogglePause() bool {
	e.paused = !e.paused
	return e.paused
}

// AdvancedGestures reports whether gesture commands are enabled.
func (e *Engine) AdvancedGestures() bool { return e.advancedGestures }

// SetAdvancedGestures enables or disables gesture commands.
func (e *Engine) SetAdvancedGestures(enabled bool) { e.advancedGestures = enabled }

// SmartZones reports whether per-hand zones are reported.
func (e *Engine) SmartZones() bool { return e.smartZones }

// SetSmartZones enables or disables per-hand zone reporting.
func (e *Engine) SetSmartZones(enabled bool) { e.smartZones = enabled }

// ChangeLayout switches the keyboard layout. Unknown names return false.
func (e *Engine) ChangeLayout(name string) bool {
	return e.keyboard.ChangeLayout(name)
}

// NextLayout switches to the next configured layout.
func (e *Engine) NextLayout() string {
	return e.keyboard.NextLayout()
}

// Layout returns the active layout name.
func (e *Engine) Layout() string {
	return e.keyboard.LayoutName()
}

// Layouts returns the configured layout names.
func (e *Engine) Layouts() []string {
	return e.keyboard.Layouts()
}

// Text returns the typed text.
func (e *Engine) Text() string {
	return e.keyboard.Text()
}

// SetText replaces the typed text.
func (e *Engine) SetText(text string) {
	e.keyboard.SetText(text)
}

// ClearText empties the typed text.
func (e *Engine) ClearText() {
	e.keyboard.ClearText()
}

// ResetStats starts a new statistics session. Typed text is kept.
func (e *Engine) ResetStats() {
	e.stats.Reset()
}

// Stats returns the current statistics.
func (e *Engine) Stats() stats.Snapshot {
	return e.stats.Snapshot()
}

// Keystrokes returns the keystrokes logged within the last d.
func (e *Engine) Keystrokes(d time.Duration) []stats.Keystroke {
	return e.stats.History(d)
}

// Settings returns the settings the engine was built with.
func (e *Engine) Settings() Settings {
	return e.settings
}
