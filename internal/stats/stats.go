// Package stats aggregates typing statistics over a keystroke log.
package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/airtype/internal/keyboard"
)

// DefaultWindow is the sliding window used for words per minute.
const DefaultWindow = 60 * time.Second

// charsPerWord is the conventional word length for WPM.
const charsPerWord = 5

// Clock returns the current time.
type Clock func() time.Time

// Keystroke is one logged key commit.
type Keystroke struct {
	Time  time.Time `json:"time"`
	Token string    `json:"token"`
}

// Snapshot is a point-in-time summary of the session.
type Snapshot struct {
	WPM              float64       `json:"wpm"`
	Accuracy         float64       `json:"accuracy"`
	Elapsed          time.Duration `json:"elapsed"`
	ElapsedFormatted string        `json:"elapsed_formatted"`
	Chars            int           `json:"chars"`
	Words            int           `json:"words"`
	Backspaces       int           `json:"backspaces"`
	Keystrokes       int           `json:"keystrokes"`
}

// Aggregator is an append-only keystroke log with running counters.
// It is safe for concurrent use.
type Aggregator struct {
	mu     sync.Mutex
	window time.Duration
	now    Clock

	start      time.Time
	log        []Keystroke
	chars      int
	words      int
	backspaces int
}

// New creates an aggregator. A zero window uses DefaultWindow and a nil
// clock uses time.Now.
func New(window time.Duration, clock Clock) *Aggregator {
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = time.Now
	}
	return &Aggregator{
		window: window,
		now:    clock,
		start:  clock(),
	}
}

// isBackspace accepts both the keyboard token and the short "<-" form.
func isBackspace(token string) bool {
	return token == keyboard.TokenBackspace || token == "<-"
}

// Track logs a committed token. Backspaces are counted separately from
// characters and every space counts as a word.
func (a *Aggregator) Track(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.log = append(a.log, Keystroke{Time: a.now(), Token: token})

	if isBackspace(token) {
		a.backspaces++
		return
	}
	a.chars++
	if token == " " {
		a.words++
	}
}

// WPM returns words per minute over the sliding window.
func (a *Aggregator) WPM() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.wpm(a.now())
}

func (a *Aggregator) wpm(now time.Time) float64 {
	recent := a.since(now, a.window)
	if len(recent) == 0 {
		return 0
	}

	chars := 0
	for _, k := range recent {
		if !isBackspace(k.Token) {
			chars++
		}
	}

	elapsed := now.Sub(recent[0].Time)
	if elapsed < time.Second {
		return 0
	}
	words := float64(chars) / charsPerWord
	return words / elapsed.Minutes()
}

// Accuracy returns the share of keystrokes that were not backspaces, as a
// percentage. An empty log is 100% accurate.
func (a *Aggregator) Accuracy() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accuracy()
}

func (a *Aggregator) accuracy() float64 {
	total := len(a.log)
	if total == 0 {
		return 100
	}
	acc := float64(total-a.backspaces) / float64(total) * 100
	return max(0, min(100, acc))
}

// Elapsed returns the session duration.
func (a *Aggregator) Elapsed() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now().Sub(a.start)
}

// ElapsedFormatted returns the session duration as MM:SS.
func (a *Aggregator) ElapsedFormatted() string {
	return FormatElapsed(a.Elapsed())
}

// FormatElapsed formats d as MM:SS, truncating to whole seconds.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// History returns the keystrokes logged within the last d.
func (a *Aggregator) History(d time.Duration) []Keystroke {
	a.mu.Lock()
	defer a.mu.Unlock()
	recent := a.since(a.now(), d)
	return append([]Keystroke(nil), recent...)
}

// since returns the suffix of the log no older than d. The log is in
// time order, so the suffix starts at the first recent entry.
func (a *Aggregator) since(now time.Time, d time.Duration) []Keystroke {
	for i, k := range a.log {
		if now.Sub(k.Time) <= d {
			return a.log[i:]
		}
	}
	return nil
}

// Snapshot returns every statistic at once.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	elapsed := now.Sub(a.start)
	return Snapshot{
		WPM:              a.wpm(now),
		Accuracy:         a.accuracy(),
		Elapsed:          elapsed,
		ElapsedFormatted: FormatElapsed(elapsed),
		Chars:            a.chars,
		Words:            a.words,
		Backspaces:       a.backspaces,
		Keystrokes:       len(a.log),
	}
}

// Reset clears the log and counters and restarts the session clock.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.start = a.now()
	a.log = nil
	a.chars = 0
	a.words = 0
	a.backspaces = 0
}

// Start returns when the session began.
func (a *Aggregator) Start() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.start
}
