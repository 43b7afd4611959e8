package menu

import (
	"image"

	"github.com/golang/glog"
)

// Settings configures hit counting.
type Settings struct {
	// HitThreshold is exceeded, not reached: a box fires on hit
	// HitThreshold+1.
	HitThreshold int
	// ResetOnMiss zeroes a counter on every cycle its box is not hit, so
	// only strictly consecutive hits count.
	ResetOnMiss bool
}

// Event describes a fired binding.
type Event struct {
	Fired   bool
	Binding Binding
	From    Mode
	To      Mode
}

// Engine is the menu state machine. It is not safe for concurrent use;
// the render loop owns it.
type Engine struct {
	layout   Layout
	settings Settings

	mode Mode
	hits []int
}

// NewEngine creates an Engine in Main mode with zero counters.
func NewEngine(layout Layout, settings Settings) *Engine {
	e := &Engine{layout: layout, settings: settings}
	e.enter(Main)
	return e
}

// Mode returns the active mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Bindings returns the bindings of the active mode.
func (e *Engine) Bindings() []Binding {
	return e.layout.Bindings(e.mode)
}

// Hits returns a copy of the counters, indexed like Bindings.
func (e *Engine) Hits() []int {
	out := make([]int, len(e.hits))
	copy(out, e.hits)
	return out
}

// HitThreshold returns the configured threshold.
func (e *Engine) HitThreshold() int {
	return e.settings.HitThreshold
}

// PhotoWindow returns the capture region of the layout.
func (e *Engine) PhotoWindow() image.Rectangle {
	return e.layout.PhotoWindow
}

// Step feeds one cycle's centroid, nil meaning no motion. At most one
// binding fires per cycle; the first box in layout order wins.
func (e *Engine) Step(centroid *image.Point) Event {
	bindings := e.Bindings()

	for i, b := range bindings {
		if centroid == nil || !b.Box.Contains(*centroid) {
			if e.settings.ResetOnMiss {
				e.hits[i] = 0
			}
			continue
		}

		e.hits[i]++
		if e.hits[i] <= e.settings.HitThreshold {
			continue
		}

		return e.fire(b)
	}

	return Event{From: e.mode, To: e.mode}
}

// Reset forces Main mode with all counters zeroed.
func (e *Engine) Reset() {
	e.enter(Main)
}

func (e *Engine) fire(b Binding) Event {
	ev := Event{Fired: true, Binding: b, From: e.mode}

	switch b.Action {
	case ActionGoto, ActionCapture:
		e.enter(b.Target)
	default:
		e.zero()
	}
	ev.To = e.mode

	glog.Infof("menu: %s %s in %s -> %s", b.Box.Label, b.Action, ev.From, ev.To)
	return ev
}

// enter switches mode and zeroes the counters of the new mode.
func (e *Engine) enter(mode Mode) {
	e.mode = mode
	e.hits = make([]int, len(e.layout.Bindings(mode)))
}

func (e *Engine) zero() {
	clear(e.hits)
}
