// Package tray provides a system tray with menu and quit controls for
// motionpoke.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onMenu func()
	onQuit func()
	mode   string
	mu     sync.RWMutex

	// Menu items stored for later updates
	menuMode *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{
		mode: "main",
	}
}

// OnMenu sets the callback function to be called when "Back to menu" is clicked.
func (t *Tray) OnMenu(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMenu = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main
// goroutine on some platforms.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("motionpoke")
	systray.SetTooltip("motionpoke motion menu")

	t.mu.Lock()
	t.menuMode = systray.AddMenuItem(modeTitle(t.mode), "Current menu mode")
	t.menuMode.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuBack := systray.AddMenuItem("Back to menu", "Return to the main menu and reset motion baseline")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit motionpoke")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuBack.ClickedCh:
				t.handleMenu()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func (t *Tray) handleMenu() {
	t.mu.RLock()
	callback := t.onMenu
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit only signals the owner; the tray itself is closed by Quit
// once the render loop has released the camera.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetMode updates the mode line in the menu.
func (t *Tray) SetMode(mode string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mode = mode
	if t.menuMode != nil {
		t.menuMode.SetTitle(modeTitle(mode))
	}
}

// Mode returns the last mode set.
func (t *Tray) Mode() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode
}

func modeTitle(mode string) string {
	if mode == "" {
		mode = "none"
	}
	return "Mode: " + mode
}
