package app

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"

	"github.com/ayusman/airtype/internal/config"
	"github.com/ayusman/airtype/internal/server/api"
	"github.com/ayusman/airtype/internal/stats"
	"github.com/ayusman/airtype/internal/store"
)

func (a *App) setThemes(cfg config.ThemesConfig) {
	a.themes = slices.Clone(cfg.Names)
	switch {
	case cfg.Default != "" && slices.Contains(a.themes, cfg.Default):
		a.theme = cfg.Default
	case cfg.Default != "":
		a.themes = append([]string{cfg.Default}, a.themes...)
		a.theme = cfg.Default
	case len(a.themes) > 0:
		a.theme = a.themes[0]
	default:
		a.theme = ""
	}
}

// Theme returns the current renderer theme.
func (a *App) Theme() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.theme
}

// CycleTheme moves to the next theme and returns it.
func (a *App) CycleTheme() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cycleThemeLocked()
}

func (a *App) cycleThemeLocked() string {
	if len(a.themes) == 0 {
		return a.theme
	}
	i := slices.Index(a.themes, a.theme)
	a.theme = a.themes[(i+1)%len(a.themes)]
	log.Printf("Theme changed to %s", a.theme)
	a.persistSetting(store.SettingTheme, a.theme)
	return a.theme
}

// persistSetting stores one setting, logging failures. Called with a.mu held.
func (a *App) persistSetting(key, value string) {
	if a.store == nil {
		return
	}
	if err := a.store.Settings().Set(key, value); err != nil {
		log.Printf("Failed to save setting %s: %v", key, err)
	}
}

// Restore applies the stored layout, theme and toggles and, when enabled,
// loads the text of the most recent session. Restored text starts a new
// session on the next save.
func (a *App) Restore() error {
	if a.store == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	saved, err := a.store.Settings().All()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if layout, ok := saved[store.SettingLayout]; ok && !a.engine.ChangeLayout(layout) {
		log.Printf("Stored layout %q is unknown, keeping %s", layout, a.engine.Layout())
	}
	if theme, ok := saved[store.SettingTheme]; ok && slices.Contains(a.themes, theme) {
		a.theme = theme
	}
	if v, ok := saved[store.SettingAdvancedGestures]; ok {
		if enabled, err := strconv.ParseBool(v); err == nil {
			a.engine.SetAdvancedGestures(enabled)
		}
	}
	if v, ok := saved[store.SettingSmartZones]; ok {
		if enabled, err := strconv.ParseBool(v); err == nil {
			a.engine.SetSmartZones(enabled)
		}
	}

	if !a.settings.Storage.RestoreText {
		return nil
	}

	latest, err := a.store.Sessions().Latest()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load latest session: %w", err)
	}
	a.engine.SetText(latest.Text)
	log.Printf("Restored %d characters from session %s", len([]rune(latest.Text)), latest.ID)
	return nil
}

// Save writes the current text, statistics and pending keystrokes to the
// active session, creating it on first save.
func (a *App) Save() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveLocked()
}

func (a *App) saveLocked() error {
	if a.store == nil {
		return nil
	}

	snap := a.engine.Stats()
	if a.session == nil {
		a.session = &store.Session{}
	}
	sess := a.session
	sess.Text = a.engine.Text()
	sess.Layout = a.engine.Layout()
	sess.Theme = a.theme
	sess.Chars = snap.Chars
	sess.Words = snap.Words
	sess.Backspaces = snap.Backspaces
	sess.Keystrokes = snap.Keystrokes
	sess.WPM = snap.WPM
	sess.Accuracy = snap.Accuracy

	sessions := a.store.Sessions()
	switch {
	case sess.ID == "":
		if err := sessions.Create(sess); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	default:
		err := sessions.Update(sess)
		if errors.Is(err, store.ErrNotFound) {
			// Deleted through the API while typing; start over.
			sess.ID = ""
			err = sessions.Create(sess)
		}
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
	}

	if len(a.pending) > 0 {
		if err := a.store.Keystrokes().Append(sess.ID, a.pending); err != nil {
			return fmt.Errorf("append keystrokes: %w", err)
		}
		a.pending = nil
	}

	a.dirty = false
	return nil
}

// autosave saves when anything changed since the last save.
func (a *App) autosave() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.dirty {
		return
	}
	if err := a.saveLocked(); err != nil {
		log.Printf("Autosave failed: %v", err)
	}
}

// SessionID returns the ID of the active session, or "" before the first
// save.
func (a *App) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ""
	}
	return a.session.ID
}

// RuntimeSettings returns the user-changeable settings.
func (a *App) RuntimeSettings() api.RuntimeSettings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runtimeSettingsLocked()
}

func (a *App) runtimeSettingsLocked() api.RuntimeSettings {
	return api.RuntimeSettings{
		Layout:           a.engine.Layout(),
		Layouts:          a.engine.Layouts(),
		Theme:            a.theme,
		Themes:           slices.Clone(a.themes),
		Paused:           a.engine.Paused(),
		AdvancedGestures: a.engine.AdvancedGestures(),
		SmartZones:       a.engine.SmartZones(),
	}
}

// UpdateSettings applies the non-nil fields of u. Unknown layouts and
// themes are rejected before anything changes.
func (a *App) UpdateSettings(u api.SettingsUpdate) (api.RuntimeSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if u.Layout != nil && !slices.Contains(a.engine.Layouts(), *u.Layout) {
		return a.runtimeSettingsLocked(), fmt.Errorf("%w: unknown layout %q", api.ErrInvalidSetting, *u.Layout)
	}
	if u.Theme != nil && !slices.Contains(a.themes, *u.Theme) {
		return a.runtimeSettingsLocked(), fmt.Errorf("%w: unknown theme %q", api.ErrInvalidSetting, *u.Theme)
	}

	if u.Layout != nil {
		a.engine.ChangeLayout(*u.Layout)
		a.persistSetting(store.SettingLayout, *u.Layout)
	}
	if u.Theme != nil {
		a.theme = *u.Theme
		a.persistSetting(store.SettingTheme, *u.Theme)
	}
	if u.Paused != nil {
		a.engine.SetPaused(*u.Paused)
	}
	if u.AdvancedGestures != nil {
		a.engine.SetAdvancedGestures(*u.AdvancedGestures)
		a.persistSetting(store.SettingAdvancedGestures, strconv.FormatBool(*u.AdvancedGestures))
	}
	if u.SmartZones != nil {
		a.engine.SetSmartZones(*u.SmartZones)
		a.persistSetting(store.SettingSmartZones, strconv.FormatBool(*u.SmartZones))
	}

	return a.runtimeSettingsLocked(), nil
}

// Text returns the typed text.
func (a *App) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Text()
}

// ClearText empties the typed text.
func (a *App) ClearText() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.ClearText()
	a.dirty = true
}

// Stats returns the current typing statistics.
func (a *App) Stats() stats.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Stats()
}
