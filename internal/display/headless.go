package display

import (
	"time"

	"gocv.io/x/gocv"
)

// Headless discards frames. The loop is stopped with a signal.
type Headless struct {
	pace time.Duration
}

// NewHeadless creates a Headless display that paces the loop like a one
// millisecond window wait.
func NewHeadless() *Headless {
	return &Headless{pace: time.Millisecond}
}

// Present drops the frame and waits out the pace.
func (h *Headless) Present(gocv.Mat, HUD) error {
	time.Sleep(h.pace)
	return nil
}

// PollKey always returns KeyNone.
func (h *Headless) PollKey() Key { return KeyNone }

// Close is a no-op.
func (h *Headless) Close() error { return nil }
