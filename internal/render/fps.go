package render

import "time"

// FPSCounter measures loop throughput over windows of a fixed number of
// cycles.
type FPSCounter struct {
	every  int
	start  time.Time
	frames int
}

// NewFPSCounter creates a counter that reports every n cycles, starting
// its first window at now.
func NewFPSCounter(n int, now time.Time) *FPSCounter {
	if n <= 0 {
		n = 1
	}
	return &FPSCounter{every: n, start: now}
}

// Tick records one cycle. When the window is full it returns the rate over
// the window and its frame count, then starts a new window at now.
func (c *FPSCounter) Tick(now time.Time) (fps float64, frames int, ok bool) {
	c.frames++
	if c.frames < c.every {
		return 0, 0, false
	}

	frames = c.frames
	if elapsed := now.Sub(c.start).Seconds(); elapsed > 0 {
		fps = float64(frames) / elapsed
	}

	c.frames = 0
	c.start = now
	return fps, frames, true
}
