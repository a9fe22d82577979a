package stats

import (
	"math"
	"testing"
	"time"

	"github.com/ayusman/airtype/internal/keyboard"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestAggregator() (*Aggregator, *testClock) {
	clock := &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return New(DefaultWindow, clock.Now), clock
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregator_WPM(t *testing.T) {
	agg, clock := newTestAggregator()
	for _, c := range []string{"h", "e", "l", "l", "o", " "} {
		agg.Track(c)
	}

	clock.Advance(6 * time.Second)

	if got := agg.WPM(); !approx(got, 12) {
		t.Errorf("WPM() = %v, want 12", got)
	}
}

func TestAggregator_WPMUnderOneSecond(t *testing.T) {
	agg, clock := newTestAggregator()
	agg.Track("a")
	clock.Advance(999 * time.Millisecond)

	if got := agg.WPM(); got != 0 {
		t.Errorf("WPM() = %v under one second, want 0", got)
	}
}

func TestAggregator_WPMEmpty(t *testing.T) {
	agg, _ := newTestAggregator()
	if got := agg.WPM(); got != 0 {
		t.Errorf("WPM() = %v, want 0", got)
	}
}

func TestAggregator_WPMWindow(t *testing.T) {
	agg, clock := newTestAggregator()
	agg.Track("a")
	agg.Track("b")

	clock.Advance(90 * time.Second)
	for range 5 {
		agg.Track("c")
	}
	clock.Advance(30 * time.Second)

	// Only the five recent keystrokes fall in the window: 1 word in 0.5 min.
	if got := agg.WPM(); !approx(got, 2) {
		t.Errorf("WPM() = %v, want 2", got)
	}

	clock.Advance(31 * time.Second)
	if got := agg.WPM(); got != 0 {
		t.Errorf("WPM() = %v after everything aged out, want 0", got)
	}
}

func TestAggregator_BackspacesExcludedFromWPM(t *testing.T) {
	agg, clock := newTestAggregator()
	for range 5 {
		agg.Track("x")
	}
	for range 5 {
		agg.Track(keyboard.TokenBackspace)
	}
	clock.Advance(60 * time.Second)

	if got := agg.WPM(); !approx(got, 1) {
		t.Errorf("WPM() = %v, want 1", got)
	}
}

func TestAggregator_Accuracy(t *testing.T) {
	t.Run("empty log", func(t *testing.T) {
		agg, _ := newTestAggregator()
		if got := agg.Accuracy(); got != 100 {
			t.Errorf("Accuracy() = %v, want 100", got)
		}
	})

	t.Run("two backspaces in ten", func(t *testing.T) {
		agg, _ := newTestAggregator()
		for range 8 {
			agg.Track("a")
		}
		agg.Track(keyboard.TokenBackspace)
		agg.Track("<-")

		if got := agg.Accuracy(); !approx(got, 80) {
			t.Errorf("Accuracy() = %v, want 80", got)
		}
	})

	t.Run("only backspaces", func(t *testing.T) {
		agg, _ := newTestAggregator()
		agg.Track(keyboard.TokenBackspace)
		if got := agg.Accuracy(); got != 0 {
			t.Errorf("Accuracy() = %v, want 0", got)
		}
	})
}

func TestAggregator_Snapshot(t *testing.T) {
	agg, clock := newTestAggregator()
	for _, c := range []string{"h", "i", " ", "y", "o", keyboard.TokenBackspace, " "} {
		agg.Track(c)
	}
	clock.Advance(75 * time.Second)

	snap := agg.Snapshot()

	if snap.Chars != 6 || snap.Words != 2 || snap.Backspaces != 1 || snap.Keystrokes != 7 {
		t.Errorf("counters = %d chars, %d words, %d backspaces, %d keystrokes, want 6, 2, 1, 7",
			snap.Chars, snap.Words, snap.Backspaces, snap.Keystrokes)
	}
	if snap.Elapsed != 75*time.Second || snap.ElapsedFormatted != "01:15" {
		t.Errorf("Elapsed = %v (%q), want 75s (01:15)", snap.Elapsed, snap.ElapsedFormatted)
	}
	if snap.WPM != 0 {
		t.Errorf("WPM = %v, keystrokes are older than the window", snap.WPM)
	}
	if !approx(snap.Accuracy, 600.0/7) {
		t.Errorf("Accuracy = %v, want %v", snap.Accuracy, 600.0/7)
	}
}

func TestAggregator_Reset(t *testing.T) {
	agg, clock := newTestAggregator()
	agg.Track("a")
	agg.Track(keyboard.TokenBackspace)
	clock.Advance(10 * time.Second)

	agg.Reset()

	snap := agg.Snapshot()
	if snap.Keystrokes != 0 || snap.Chars != 0 || snap.Backspaces != 0 || snap.Elapsed != 0 {
		t.Errorf("Snapshot() = %+v after reset", snap)
	}
	if !agg.Start().Equal(clock.Now()) {
		t.Errorf("Start() = %v, want %v", agg.Start(), clock.Now())
	}
	if snap.Accuracy != 100 {
		t.Errorf("Accuracy = %v after reset, want 100", snap.Accuracy)
	}
}

func TestAggregator_History(t *testing.T) {
	agg, clock := newTestAggregator()
	agg.Track("a")
	clock.Advance(20 * time.Second)
	agg.Track("b")
	agg.Track("c")
	clock.Advance(5 * time.Second)

	recent := agg.History(10 * time.Second)

	if len(recent) != 2 || recent[0].Token != "b" || recent[1].Token != "c" {
		t.Errorf("History(10s) = %+v, want b, c", recent)
	}
	if got := len(agg.History(time.Minute)); got != 3 {
		t.Errorf("len(History(1m)) = %d, want 3", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{59*time.Second + 900*time.Millisecond, "00:59"},
		{61 * time.Second, "01:01"},
		{42*time.Minute + 7*time.Second, "42:07"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	agg := New(0, nil)
	if agg.window != DefaultWindow {
		t.Errorf("window = %v, want %v", agg.window, DefaultWindow)
	}
	if d := time.Since(agg.Start()); d < 0 || d > time.Second {
		t.Errorf("Start() = %v, want about now", agg.Start())
	}
}
