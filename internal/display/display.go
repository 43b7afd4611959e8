// Package display presents composed frames and reports key presses.
package display

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/motionpoke/internal/config"
)

// Key is a loop control command.
type Key int

const (
	KeyNone Key = iota
	// KeyMenu returns to the main menu and re-captures the baseline.
	KeyMenu
	// KeyQuit ends the session.
	KeyQuit
)

func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyMenu:
		return "menu"
	case KeyQuit:
		return "quit"
	default:
		return fmt.Sprintf("key(%d)", int(k))
	}
}

// KeyFromRune maps a typed character to a Key.
func KeyFromRune(r rune) Key {
	switch r {
	case 'm', 'M':
		return KeyMenu
	case 'q', 'Q':
		return KeyQuit
	default:
		return KeyNone
	}
}

// HUD is the loop state shown alongside or instead of the frame.
type HUD struct {
	Mode      string
	Labels    []string
	Hits      []int
	Threshold int
	Centroid  *image.Point
	FPS       float64
}

// Display is a presentation surface with key input.
type Display interface {
	// Present shows one composed frame.
	Present(frame gocv.Mat, hud HUD) error
	// PollKey returns the most recent key without blocking.
	PollKey() Key
	// Close releases the surface.
	Close() error
}

// New returns the display selected by cfg.Kind.
func New(cfg config.Display) (Display, error) {
	switch cfg.Kind {
	case config.DisplayWindow:
		return NewWindow(cfg.Title), nil
	case config.DisplayTerminal:
		return NewTerminalScreen()
	case config.DisplayNone:
		return NewHeadless(), nil
	default:
		return nil, fmt.Errorf("unknown display kind %q", cfg.Kind)
	}
}

// withInputs merges an extra key source into a Display.
type withInputs struct {
	Display
	keys <-chan Key
}

// WithInputs returns d with keys from extra taking precedence over the
// display's own keys. A nil channel returns d unchanged.
func WithInputs(d Display, extra <-chan Key) Display {
	if extra == nil {
		return d
	}
	return &withInputs{Display: d, keys: extra}
}

func (w *withInputs) PollKey() Key {
	select {
	case k := <-w.keys:
		if k != KeyNone {
			return k
		}
	default:
	}
	return w.Display.PollKey()
}
