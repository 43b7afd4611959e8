// Package testdata builds synthetic frames for tests.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Default frame size used by tests.
const (
	Width  = 640
	Height = 480
)

// Background is the gray level of a uniform test frame.
const Background = 40

// Uniform returns a BGR frame filled with one gray level.
func Uniform(width, height int, level uint8) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(float64(level), float64(level), float64(level), 0))
	return &mat
}

// WithRects returns a uniform BGR frame with white filled rectangles.
func WithRects(width, height int, rects ...image.Rectangle) *gocv.Mat {
	mat := Uniform(width, height, Background)
	for _, r := range rects {
		gocv.Rectangle(mat, r, color.RGBA{255, 255, 255, 0}, -1)
	}
	return mat
}

// RectAt returns a w x h rectangle centered on c.
func RectAt(c image.Point, w, h int) image.Rectangle {
	tl := image.Pt(c.X-w/2, c.Y-h/2)
	return image.Rectangle{Min: tl, Max: tl.Add(image.Pt(w, h))}
}

// Gray returns a single channel frame with one gray level.
func Gray(width, height int, level uint8) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC1)
	mat.SetTo(gocv.NewScalar(float64(level), 0, 0, 0))
	return &mat
}

// GrayWithRects returns a single channel frame with white rectangles.
func GrayWithRects(width, height int, rects ...image.Rectangle) *gocv.Mat {
	mat := Gray(width, height, Background)
	for _, r := range rects {
		region := mat.Region(r)
		region.SetTo(gocv.NewScalar(255, 0, 0, 0))
		region.Close()
	}
	return mat
}

// MotionSequence returns a static frame followed by n frames that each
// show a rectangle around center, toggled on and off so every consecutive
// pair differs at that spot.
func MotionSequence(center image.Point, size, n int) []*gocv.Mat {
	frames := []*gocv.Mat{Uniform(Width, Height, Background)}
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			frames = append(frames, WithRects(Width, Height, RectAt(center, size, size)))
		} else {
			frames = append(frames, Uniform(Width, Height, Background))
		}
	}
	return frames
}

// CloseAll releases frames.
func CloseAll(frames []*gocv.Mat) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}
