package detector

import (
	"gocv.io/x/gocv"
)

// ContourDetector implements Detector with OpenCV external contours.
type ContourDetector struct{}

// NewContourDetector creates a new OpenCV contour detector.
func NewContourDetector() *ContourDetector {
	return &ContourDetector{}
}

// Name returns the backend name.
func (d *ContourDetector) Name() string {
	return BackendOpenCV
}

// Close is a no-op; contours are allocated per call.
func (d *ContourDetector) Close() error {
	return nil
}

// Detect finds external contours and reports their bounding rectangles and
// polygon areas.
func (d *ContourDetector) Detect(mask gocv.Mat) ([]Region, error) {
	if mask.Empty() {
		return nil, nil
	}
	if mask.Type() != gocv.MatTypeCV8UC1 {
		return nil, ErrMaskType
	}

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		regions = append(regions, Region{
			Rect: gocv.BoundingRect(c),
			Area: gocv.ContourArea(c),
		})
	}
	return regions, nil
}
