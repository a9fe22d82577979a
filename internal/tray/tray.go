// Package tray provides the system tray menu for airtype.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu: pause toggle, layout switch, last command
// display, a link to the renderer and quit.
type Tray struct {
	onToggle   func(paused bool)
	onLayout   func() string
	onSettings func()
	onQuit     func()
	paused     bool
	layout     string
	mu         sync.RWMutex

	menuToggle      *systray.MenuItem
	menuLayout      *systray.MenuItem
	menuLastCommand *systray.MenuItem
}

// New creates a Tray showing layout, with typing active.
func New(layout string) *Tray {
	return &Tray{layout: layout}
}

// OnToggle sets the callback run when typing is paused or resumed.
func (t *Tray) OnToggle(fn func(paused bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnLayout sets the callback run when the layout item is clicked. It
// returns the layout now active.
func (t *Tray) OnLayout(fn func() string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onLayout = fn
}

// OnSettings sets the callback run when the open item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback run when quit is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("airtype")
	systray.SetTooltip("airtype air keyboard")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.paused), "Pause or resume typing")
	t.menuLayout = systray.AddMenuItem(layoutTitle(t.layout), "Switch keyboard layout")
	systray.AddSeparator()

	t.menuLastCommand = systray.AddMenuItem("Last: none", "Last gesture command")
	t.menuLastCommand.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open airtype...", "Open the keyboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit airtype")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuLayout.ClickedCh:
				t.handleLayout()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(paused bool) string {
	if paused {
		return "○ Paused"
	}
	return "● Typing"
}

func layoutTitle(layout string) string {
	return "Layout: " + layout
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.paused = !t.paused
	paused := t.paused
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(paused))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Outside the lock so the callback may call back into the tray.
	if callback != nil {
		callback(paused)
	}
}

func (t *Tray) handleLayout() {
	t.mu.RLock()
	callback := t.onLayout
	t.mu.RUnlock()

	if callback == nil {
		return
	}
	t.SetLayout(callback())
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetPaused updates the toggle when typing is paused elsewhere, e.g. by
// the hands-together gesture.
func (t *Tray) SetPaused(paused bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.paused = paused
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(paused))
	}
}

// SetLayout updates the layout item.
func (t *Tray) SetLayout(layout string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.layout = layout
	if t.menuLayout != nil {
		t.menuLayout.SetTitle(layoutTitle(layout))
	}
}

// SetLastCommand updates the last command display.
func (t *Tray) SetLastCommand(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastCommand != nil {
		if name == "" {
			t.menuLastCommand.SetTitle("Last: none")
		} else {
			t.menuLastCommand.SetTitle("Last: " + name)
		}
	}
}

// Paused returns the paused state shown in the menu.
func (t *Tray) Paused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

// Layout returns the layout shown in the menu.
func (t *Tray) Layout() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.layout
}
