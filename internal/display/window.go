package display

import (
	"gocv.io/x/gocv"
)

// Window shows frames in an OpenCV HighGUI window.
type Window struct {
	win *gocv.Window
	key Key
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Present shows frame and pumps the window event loop for one
// millisecond, remembering any key pressed.
func (w *Window) Present(frame gocv.Mat, _ HUD) error {
	w.win.IMShow(frame)
	if code := w.win.WaitKey(1); code >= 0 {
		if k := KeyFromCode(code); k != KeyNone {
			w.key = k
		}
	}
	return nil
}

// PollKey returns and clears the last key.
func (w *Window) PollKey() Key {
	k := w.key
	w.key = KeyNone
	return k
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

// KeyFromCode maps a HighGUI key code to a Key. Esc quits.
func KeyFromCode(code int) Key {
	code &= 0xFF
	if code == 27 {
		return KeyQuit
	}
	return KeyFromRune(rune(code))
}
