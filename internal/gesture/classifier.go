package gesture

import (
	"log"
	"time"

	"github.com/ayusman/airtype/internal/detector"
	"github.com/ayusman/airtype/internal/hand"
)

// Command is an application action triggered by a gesture.
type Command string

const (
	CommandNone       Command = ""
	CommandClear      Command = "clear"
	CommandSave       Command = "save"
	CommandCycleTheme Command = "cycle-theme"
	CommandPause      Command = "pause"
)

// Commands lists every command a gesture can trigger.
var Commands = []Command{CommandClear, CommandSave, CommandCycleTheme, CommandPause}

// Config holds classifier thresholds.
type Config struct {
	HistorySize       int
	SwipeMinPoints    int
	SwipeThreshold    float64
	TogetherThreshold float64
	Cooldown          time.Duration
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		HistorySize:       DefaultHistorySize,
		SwipeMinPoints:    5,
		SwipeThreshold:    150,
		TogetherThreshold: 100,
		Cooldown:          DefaultCooldown,
	}
}

// Input is one tick of classifier input. Landmarks is nil for a slot
// without a usable hand; Cursors holds the smoothed cursor positions.
type Input struct {
	Landmarks [hand.NumSlots][]detector.Point3D
	Cursors   [hand.NumSlots]*hand.Point
}

// Event is a command that passed its cooldown.
type Event struct {
	Command Command   `json:"command"`
	Gesture string    `json:"gesture"`
	Slot    hand.Slot `json:"slot"`
}

// Options restrict a single Evaluate pass.
type Options struct {
	// TogetherOnly skips everything but hands-together.
	TogetherOnly bool
}

// rule maps a per-hand gesture to a command. The gesture name is returned
// so directional gestures can report which way they went.
type rule struct {
	cooldown string
	command  Command
	match    func(c *Classifier, slot hand.Slot, lm []detector.Point3D) (string, bool)
}

var handRules = []rule{
	{
		cooldown: PeaceSign,
		command:  CommandClear,
		match: func(_ *Classifier, _ hand.Slot, lm []detector.Point3D) (string, bool) {
			return PeaceSign, IsPeaceSign(lm)
		},
	},
	{
		cooldown: ThumbsUp,
		command:  CommandSave,
		match: func(_ *Classifier, _ hand.Slot, lm []detector.Point3D) (string, bool) {
			return ThumbsUp, IsThumbsUp(lm)
		},
	},
	{
		cooldown: Swipe,
		command:  CommandCycleTheme,
		match: func(c *Classifier, slot hand.Slot, _ []detector.Point3D) (string, bool) {
			dir := c.Swipe(slot)
			return dir, dir != ""
		},
	},
}

// Classifier evaluates gestures against the current tick and a per-slot
// motion history, and gates the resulting commands through a CooldownGate.
type Classifier struct {
	cfg     Config
	gate    *CooldownGate
	history [hand.NumSlots]*History
}

// NewClassifier creates a classifier. A nil clock uses time.Now.
func NewClassifier(cfg Config, clock func() time.Time) *Classifier {
	c := &Classifier{
		cfg:  cfg,
		gate: NewCooldownGate(cfg.Cooldown, clock),
	}
	for _, slot := range hand.Slots {
		c.history[slot] = NewHistory(cfg.HistorySize)
	}
	return c
}

// Gate returns the classifier's cooldown gate.
func (c *Classifier) Gate() *CooldownGate {
	return c.gate
}

// History returns the motion history of slot.
func (c *Classifier) History(slot hand.Slot) *History {
	return c.history[slot]
}

// Observe records the cursor of every detected slot in its history.
func (c *Classifier) Observe(in Input) {
	for _, slot := range hand.Slots {
		if in.Landmarks[slot] != nil && in.Cursors[slot] != nil {
			c.history[slot].Push(*in.Cursors[slot])
		}
	}
}

// Swipe returns SwipeLeft or SwipeRight when the slot's history moved
// horizontally further than the swipe threshold, or an empty string.
func (c *Classifier) Swipe(slot hand.Slot) string {
	h := c.history[slot]
	if h.Len() < c.cfg.SwipeMinPoints {
		return ""
	}
	first, _ := h.First()
	last, _ := h.Last()

	dx := last.X - first.X
	switch {
	case dx > c.cfg.SwipeThreshold:
		return SwipeRight
	case dx < -c.cfg.SwipeThreshold:
		return SwipeLeft
	}
	return ""
}

// HandsTogether reports whether both cursors are present and closer than
// the proximity threshold.
func (c *Classifier) HandsTogether(left, right *hand.Point) bool {
	if left == nil || right == nil {
		return false
	}
	return left.Distance(*right) < c.cfg.TogetherThreshold
}

// Evaluate updates the motion history and returns at most one command.
// Hands are checked in slot order, each against peace sign, thumbs-up and
// swipe; hands-together is checked last. Candidates refused by the
// cooldown gate are skipped.
func (c *Classifier) Evaluate(in Input, opts Options) (ev Event, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Gesture evaluation failed: %v", r)
			ev, ok = Event{}, false
		}
	}()

	c.Observe(in)

	if !opts.TogetherOnly {
		for _, slot := range hand.Slots {
			lm := in.Landmarks[slot]
			if !valid(lm) {
				continue
			}
			for _, r := range handRules {
				name, matched := r.match(c, slot, lm)
				if !matched || !c.gate.CanTrigger(r.cooldown) {
					continue
				}
				if r.cooldown == Swipe {
					c.history[slot].Clear()
				}
				return Event{Command: r.command, Gesture: name, Slot: slot}, true
			}
		}
	}

	if in.Landmarks[hand.Left] != nil && in.Landmarks[hand.Right] != nil &&
		c.HandsTogether(in.Cursors[hand.Left], in.Cursors[hand.Right]) &&
		c.gate.CanTrigger(HandsTogether) {
		return Event{Command: CommandPause, Gesture: HandsTogether, Slot: hand.Left}, true
	}
	return Event{}, false
}
