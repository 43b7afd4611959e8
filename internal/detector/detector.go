// Package detector extracts connected regions of changed pixels from a
// binary motion mask. The backend is chosen once at startup.
package detector

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrUnknownBackend is returned by New for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown detector backend")

// ErrMaskType is returned when the mask is not a single channel 8-bit image.
var ErrMaskType = errors.New("mask must be CV_8UC1")

// Backend names accepted by New.
const (
	BackendOpenCV = "opencv"
	BackendLabel  = "label"
)

// Region is one connected area of changed pixels.
type Region struct {
	// Rect is the axis aligned bounding rectangle.
	Rect image.Rectangle
	// Area is the enclosed area in square pixels.
	Area float64
}

// Center returns the center of the bounding rectangle.
func (r Region) Center() image.Point {
	return image.Pt(r.Rect.Min.X+r.Rect.Dx()/2, r.Rect.Min.Y+r.Rect.Dy()/2)
}

// Detector defines the interface for contour extraction implementations.
type Detector interface {
	// Detect returns the external regions of a binary mask. Region order is
	// deterministic for identical input. Returns an empty slice if the mask
	// has no set pixels.
	Detect(mask gocv.Mat) ([]Region, error)

	// Name returns the backend name.
	Name() string

	// Close releases any resources held by the backend.
	Close() error
}

// New returns the backend registered under name.
func New(name string) (Detector, error) {
	switch name {
	case BackendOpenCV, "":
		return NewContourDetector(), nil
	case BackendLabel:
		return NewLabelDetector(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}
