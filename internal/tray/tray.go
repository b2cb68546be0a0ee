// Package tray provides a macOS menu bar interface for Wavecam.
package tray

import (
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/wavecam/internal/gesture"
)

// Tray is the menu bar item. It also acts as a gesture.Sink so the last
// recognized gesture shows up in the menu.
type Tray struct {
	onToggle     func(enabled bool)
	onSkinFilter func(enabled bool)
	onSettings   func()
	onQuit       func()
	enabled      bool
	skinFilter   bool
	last         gesture.Direction
	lastAt       time.Time
	now          func() time.Time
	mu           sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuSkinFilter  *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray with recognition enabled and the skin filter off.
func New() *Tray {
	return &Tray{
		enabled: true,
		now:     time.Now,
	}
}

// OnToggle sets the callback invoked when recognition is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSkinFilter sets the callback invoked when the skin filter is switched.
func (t *Tray) OnSkinFilter(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSkinFilter = fn
}

// OnSettings sets the callback invoked by the settings menu item.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback invoked by the quit menu item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// SetEnabled sets the displayed recognition state without firing OnToggle.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	t.refresh()
}

// SetSkinFilter sets the displayed skin filter state without firing
// OnSkinFilter.
func (t *Tray) SetSkinFilter(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.skinFilter = enabled
	t.refresh()
}

// Run starts the menu bar loop. It blocks until Quit is called and must
// run on the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the menu bar loop.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Wavecam")
	systray.SetTooltip("Wavecam motion gestures")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture recognition")
	t.menuSkinFilter = systray.AddMenuItem(skinTitle(t.skinFilter), "Only count skin-coloured motion")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem(lastTitle(t.last), "Last detected gesture")
	t.menuLastGesture.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Wavecam")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuSkinFilter.ClickedCh:
				t.handleSkinFilter()
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

// refresh copies state into the menu items. Callers hold t.mu.
func (t *Tray) refresh() {
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(t.enabled))
	}
	if t.menuSkinFilter != nil {
		t.menuSkinFilter.SetTitle(skinTitle(t.skinFilter))
	}
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(lastTitle(t.last))
	}
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.refresh()
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSkinFilter() {
	t.mu.Lock()
	t.skinFilter = !t.skinFilter
	enabled := t.skinFilter
	t.refresh()
	callback := t.onSkinFilter
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
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

// Emit records ev as the last gesture.
func (t *Tray) Emit(ev gesture.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = ev.Direction
	t.lastAt = t.now()
	t.refresh()
}

// LastGesture returns the most recent gesture and when it arrived.
// The direction is empty until the first gesture.
func (t *Tray) LastGesture() (gesture.Direction, time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.lastAt
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SkinFilter returns the current skin filter state.
func (t *Tray) SkinFilter() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.skinFilter
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func skinTitle(enabled bool) string {
	if enabled {
		return "✓ Skin Filter"
	}
	return "  Skin Filter"
}

func lastTitle(d gesture.Direction) string {
	if d == "" {
		return "Last: none"
	}
	return "Last: " + string(d)
}
