// Package tray provides the system tray menu: a Start item that opens the
// intro gate, live gesture and mode labels, and Quit.
package tray

import (
	"context"
	"sync"
	"time"

	"github.com/getlantern/systray"
)

// RefreshInterval is how often Watch updates the status labels.
const RefreshInterval = 250 * time.Millisecond

// StatusFunc reports the current gesture and mode labels.
type StatusFunc func() (gesture, mode string)

// Tray represents the system tray application.
type Tray struct {
	onStart func()
	onQuit  func()
	started bool
	gesture string
	mode    string
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuStart   *systray.MenuItem
	menuGesture *systray.MenuItem
	menuMode    *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{
		gesture: "none",
		mode:    "TREE",
	}
}

// OnStart sets the callback invoked when the Start item is clicked.
func (t *Tray) OnStart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStart = fn
}

// OnQuit sets the callback invoked when the Quit item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Register installs the tray without taking over the main loop; the
// renderer keeps the main thread.
func (t *Tray) Register() {
	systray.Register(t.onReady, t.onExit)
}

// Run starts the system tray application and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Close removes the tray icon.
func (t *Tray) Close() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("noel")
	systray.SetTooltip("noel gesture Christmas tree")

	t.mu.Lock()
	t.menuStart = systray.AddMenuItem("Start", "Leave the intro screen")
	if t.started {
		t.menuStart.Disable()
	}
	systray.AddSeparator()

	t.menuGesture = systray.AddMenuItem(gestureTitle(t.gesture), "Last detected gesture")
	t.menuGesture.Disable()
	t.menuMode = systray.AddMenuItem(modeTitle(t.mode), "Current formation")
	t.menuMode.Disable()
	systray.AddSeparator()

	menuStart := t.menuStart
	t.mu.Unlock()

	menuQuit := systray.AddMenuItem("Quit", "Quit noel")

	go func() {
		for {
			select {
			case <-menuStart.ClickedCh:
				t.handleStart()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func gestureTitle(name string) string {
	return "Gesture: " + name
}

func modeTitle(name string) string {
	return "Mode: " + name
}

// handleStart handles the Start menu item click.
func (t *Tray) handleStart() {
	t.mu.Lock()
	t.started = true
	if t.menuStart != nil {
		t.menuStart.Disable()
	}
	callback := t.onStart
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback()
	}
}

// handleQuit handles the Quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetStarted marks the gate open, for starts from other paths.
func (t *Tray) SetStarted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = true
	if t.menuStart != nil {
		t.menuStart.Disable()
	}
}

// SetStatus updates the gesture and mode labels.
func (t *Tray) SetStatus(gesture, mode string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gesture == "" {
		gesture = "none"
	}
	if gesture != t.gesture && t.menuGesture != nil {
		t.menuGesture.SetTitle(gestureTitle(gesture))
	}
	if mode != t.mode && t.menuMode != nil {
		t.menuMode.SetTitle(modeTitle(mode))
	}
	t.gesture = gesture
	t.mode = mode
}

// Status returns the labels last set.
func (t *Tray) Status() (gesture, mode string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gesture, t.mode
}

// Started reports whether Start was clicked or SetStarted was called.
func (t *Tray) Started() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.started
}

// Watch updates the labels from status until ctx is cancelled. It refreshes
// as soon as updated fires and every interval otherwise, since the mode can
// change without a new gesture. A nil updated channel means polling only.
func (t *Tray) Watch(ctx context.Context, interval time.Duration, updated <-chan struct{}, status StatusFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-updated:
		case <-ticker.C:
		}
		t.SetStatus(status())
	}
}
