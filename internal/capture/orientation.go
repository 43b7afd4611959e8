package capture

import (
	"gocv.io/x/gocv"
)

// Orientation is the fixed transform applied to every captured frame.
type Orientation struct {
	// Rotation in degrees clockwise: 0, 90, 180 or 270.
	Rotation int
	HFlip    bool
	VFlip    bool
}

// IsIdentity reports whether Apply would leave frames unchanged.
func (o Orientation) IsIdentity() bool {
	return o.Rotation%360 == 0 && !o.HFlip && !o.VFlip
}

// flipCode maps the flip flags to the OpenCV flip code.
// The second result is false when no flip is needed.
func (o Orientation) flipCode() (int, bool) {
	switch {
	case o.HFlip && o.VFlip:
		return -1, true
	case o.HFlip:
		return 1, true
	case o.VFlip:
		return 0, true
	default:
		return 0, false
	}
}

// Apply rotates then flips src in place, replacing the Mat it points to.
func (o Orientation) Apply(src *gocv.Mat) {
	if src == nil || src.Empty() || o.IsIdentity() {
		return
	}

	if code, ok := rotateCode(o.Rotation); ok {
		dst := gocv.NewMat()
		gocv.Rotate(*src, &dst, code)
		src.Close()
		*src = dst
	}

	if code, ok := o.flipCode(); ok {
		dst := gocv.NewMat()
		gocv.Flip(*src, &dst, code)
		src.Close()
		*src = dst
	}
}

func rotateCode(degrees int) (gocv.RotateFlag, bool) {
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return gocv.Rotate90Clockwise, true
	case 180:
		return gocv.Rotate180Clockwise, true
	case 270:
		return gocv.Rotate90CounterClockwise, true
	default:
		return 0, false
	}
}
