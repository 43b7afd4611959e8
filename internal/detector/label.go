package detector

import (
	"image"

	"gocv.io/x/gocv"
)

// LabelDetector implements Detector with OpenCV's 8-connected component
// labelling. Area is the pixel count of each component, so it runs
// slightly larger than the polygon area of a contour.
type LabelDetector struct {
	labels    gocv.Mat
	stats     gocv.Mat
	centroids gocv.Mat
}

// NewLabelDetector creates a new labelling detector.
func NewLabelDetector() *LabelDetector {
	return &LabelDetector{
		labels:    gocv.NewMat(),
		stats:     gocv.NewMat(),
		centroids: gocv.NewMat(),
	}
}

// Name returns the backend name.
func (d *LabelDetector) Name() string {
	return BackendLabel
}

// Detect labels the mask. Non-zero pixels are set. Regions are returned
// in label order; the background label 0 is skipped.
func (d *LabelDetector) Detect(mask gocv.Mat) ([]Region, error) {
	if mask.Empty() {
		return nil, nil
	}
	if mask.Type() != gocv.MatTypeCV8UC1 {
		return nil, ErrMaskType
	}

	n := gocv.ConnectedComponentsWithStats(mask, &d.labels, &d.stats, &d.centroids)

	var regions []Region
	for i := 1; i < n; i++ {
		x := int(d.stats.GetIntAt(i, int(gocv.CC_STAT_LEFT)))
		y := int(d.stats.GetIntAt(i, int(gocv.CC_STAT_TOP)))
		w := int(d.stats.GetIntAt(i, int(gocv.CC_STAT_WIDTH)))
		h := int(d.stats.GetIntAt(i, int(gocv.CC_STAT_HEIGHT)))
		area := d.stats.GetIntAt(i, int(gocv.CC_STAT_AREA))

		regions = append(regions, Region{
			Rect: image.Rect(x, y, x+w, y+h),
			Area: float64(area),
		})
	}
	return regions, nil
}

// Close releases the labelling buffers.
func (d *LabelDetector) Close() error {
	d.labels.Close()
	d.stats.Close()
	return d.centroids.Close()
}
