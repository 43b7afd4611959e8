package menu

import "image"

// Place returns where a token of size token is drawn for a requested top
// left corner pos. The result always lies within [0, frame.X) x
// [0, frame.Y) as long as the token fits in the frame; config.Validate
// rejects tokens that do not. An oversized token is pinned to the origin.
func Place(pos, token, frame image.Point) image.Rectangle {
	x := clamp(pos.X, 0, frame.X-token.X)
	y := clamp(pos.Y, 0, frame.Y-token.Y)
	return image.Rect(x, y, x+token.X, y+token.Y)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return max(lo, min(v, hi))
}

// Tracker remembers where the token should be drawn in Play. It follows
// the top left corner of the latest motion box and keeps that position on
// cycles without motion.
type Tracker struct {
	pos  image.Point
	seen bool
}

// Observe records a new motion box origin.
func (t *Tracker) Observe(origin image.Point) {
	t.pos = origin
	t.seen = true
}

// Forget returns the tracker to the centred starting position.
func (t *Tracker) Forget() {
	*t = Tracker{}
}

// Position returns the requested top left corner for a token. Before any
// motion the token is centred in the frame.
func (t *Tracker) Position(token, frame image.Point) image.Point {
	if !t.seen {
		return image.Pt((frame.X-token.X)/2, (frame.Y-token.Y)/2)
	}
	return t.pos
}
