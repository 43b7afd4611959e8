// Package render composes the overlays drawn on each frame.
package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/motionpoke/internal/capture"
	"github.com/ayusman/motionpoke/internal/menu"
	"github.com/ayusman/motionpoke/internal/token"
)

// Overlay colors.
var (
	BorderColor = color.RGBA{G: 255}
	TextColor   = color.RGBA{B: 255}
	HitColor    = color.RGBA{R: 255}
	MotionColor = color.RGBA{G: 255}
	PhotoColor  = color.RGBA{B: 255}
)

// Indicator kinds for the motion marker.
const (
	IndicatorCircle    = "circle"
	IndicatorRectangle = "rectangle"
)

// Style holds the drawing sizes.
type Style struct {
	Indicator        string
	CircleSize       int
	CircleLine       int
	MotionCircleLine int
	LineWidth        int
	PhotoLineWidth   int
	FontScale        float64
}

// DefaultStyle returns the stock drawing sizes.
func DefaultStyle() Style {
	return Style{
		Indicator:        IndicatorCircle,
		CircleSize:       8,
		CircleLine:       2,
		MotionCircleLine: 4,
		LineWidth:        2,
		PhotoLineWidth:   2,
		FontScale:        0.5,
	}
}

// Scene is everything drawn on one frame.
type Scene struct {
	Mode     menu.Mode
	Bindings []menu.Binding
	Motion   *capture.MotionResult
	// PhotoWindow is outlined in EditSetup.
	PhotoWindow image.Rectangle
	// Token is drawn at TokenRect in Play.
	Token     *token.Token
	TokenRect image.Rectangle
}

// Overlay draws scenes onto frames.
type Overlay struct {
	style Style
}

// NewOverlay creates an Overlay.
func NewOverlay(style Style) *Overlay {
	return &Overlay{style: style}
}

// Draw renders s onto frame, a BGR Mat.
func (o *Overlay) Draw(frame *gocv.Mat, s Scene) {
	if s.Mode != menu.Play && s.Motion != nil {
		o.drawMotion(frame, s.Motion)
	}

	for _, b := range s.Bindings {
		o.drawBox(frame, b.Box, s.Motion)
	}

	switch s.Mode {
	case menu.EditSetup:
		if !s.PhotoWindow.Empty() {
			gocv.Rectangle(frame, s.PhotoWindow, PhotoColor, o.style.PhotoLineWidth)
		}
	case menu.Play:
		if s.Token != nil {
			o.drawToken(frame, s.Token, s.TokenRect)
		}
	}
}

func (o *Overlay) drawMotion(frame *gocv.Mat, m *capture.MotionResult) {
	switch o.style.Indicator {
	case IndicatorRectangle:
		gocv.Rectangle(frame, m.Box, MotionColor, o.style.MotionCircleLine)
	default:
		gocv.Circle(frame, m.Centroid, o.style.CircleSize, MotionColor, o.style.MotionCircleLine)
	}
}

// drawBox draws the border and caption, plus the hit marker when the
// motion centroid is inside the box.
func (o *Overlay) drawBox(frame *gocv.Mat, b menu.Box, m *capture.MotionResult) {
	gocv.Rectangle(frame, b.Rect(), BorderColor, o.style.LineWidth)
	gocv.PutText(frame, b.Label, b.CaptionOrigin(), gocv.FontHersheySimplex, o.style.FontScale, TextColor, o.style.LineWidth)

	if m != nil && b.Contains(m.Centroid) {
		gocv.Circle(frame, m.Centroid, o.style.CircleSize, HitColor, o.style.CircleLine)
	}
}

// drawToken copies the token into rect. Parts outside the frame are
// skipped.
func (o *Overlay) drawToken(frame *gocv.Mat, t *token.Token, rect image.Rectangle) {
	src := t.Mat()
	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	dst := rect.Intersect(bounds)
	if dst.Empty() || src.Type() != frame.Type() {
		return
	}

	// Matching sub-rectangle of the token when rect was clipped.
	srcRect := dst.Sub(rect.Min)
	if srcRect.Max.X > src.Cols() || srcRect.Max.Y > src.Rows() {
		return
	}

	from := src.Region(srcRect)
	defer from.Close()
	to := frame.Region(dst)
	defer to.Close()
	from.CopyTo(&to)
}

// Upscale resizes frame in place by an integer factor. Factors of one or
// less leave it unchanged.
func Upscale(frame *gocv.Mat, factor int) {
	if factor <= 1 || frame.Empty() {
		return
	}

	big := gocv.NewMat()
	size := image.Pt(frame.Cols()*factor, frame.Rows()*factor)
	gocv.Resize(*frame, &big, size, 0, 0, gocv.InterpolationLinear)
	frame.Close()
	*frame = big
}
