package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/golang/glog"
	"gocv.io/x/gocv"

	"github.com/ayusman/motionpoke/internal/detector"
)

// Motion detection defaults
const (
	// DefaultBlurSize is the kernel size for the box blur (10x10)
	DefaultBlurSize = 10
	// DefaultDiffThreshold is the binary threshold for difference detection
	DefaultDiffThreshold = 25
	// DefaultMinArea is the contour area floor in square pixels
	DefaultMinArea = 1000
)

var (
	// ErrInsufficientFrames is returned when no baseline frame is available.
	ErrInsufficientFrames = errors.New("insufficient frames for motion baseline")

	// ErrFrameMismatch is returned when the two frames differ in size or type.
	ErrFrameMismatch = errors.New("frame size mismatch")
)

// MotionSettings configures a MotionDetector.
type MotionSettings struct {
	Threshold float64
	BlurSize  int
	MinArea   float64
}

// DefaultMotionSettings returns the stock motion settings.
func DefaultMotionSettings() MotionSettings {
	return MotionSettings{
		Threshold: DefaultDiffThreshold,
		BlurSize:  DefaultBlurSize,
		MinArea:   DefaultMinArea,
	}
}

// MotionResult describes the dominant moving region of one frame pair.
type MotionResult struct {
	// Centroid is the center of Box, not the area weighted centroid.
	Centroid     image.Point
	Box          image.Rectangle
	Area         float64
	ContourCount int
}

// MotionDetector finds the largest moving region between two grayscale
// frames using frame differencing.
type MotionDetector struct {
	settings MotionSettings
	regions  detector.Detector

	diff    gocv.Mat
	blurred gocv.Mat
	mask    gocv.Mat
}

// NewMotionDetector creates a MotionDetector that extracts regions with d.
func NewMotionDetector(settings MotionSettings, d detector.Detector) *MotionDetector {
	if settings.BlurSize <= 0 {
		settings.BlurSize = DefaultBlurSize
	}
	if settings.Threshold <= 0 {
		settings.Threshold = DefaultDiffThreshold
	}

	return &MotionDetector{
		settings: settings,
		regions:  d,
		diff:     gocv.NewMat(),
		blurred:  gocv.NewMat(),
		mask:     gocv.NewMat(),
	}
}

// Detect compares prev and cur and returns the largest region whose area
// strictly exceeds the minimum area, or nil when there is none.
//
// Algorithm:
// 1. Absolute difference of the two frames
// 2. Box blur (BlurSize x BlurSize) to suppress sensor noise
// 3. Binary threshold at Threshold
// 4. External regions of the mask
// 5. Keep the largest region above MinArea
func (m *MotionDetector) Detect(prev, cur gocv.Mat) (*MotionResult, error) {
	if prev.Empty() || cur.Empty() {
		return nil, ErrInsufficientFrames
	}
	if prev.Rows() != cur.Rows() || prev.Cols() != cur.Cols() || prev.Type() != cur.Type() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrFrameMismatch, prev.Cols(), prev.Rows(), cur.Cols(), cur.Rows())
	}
	if cur.Channels() != 1 {
		return nil, fmt.Errorf("%w: expected grayscale, got %d channels", ErrFrameMismatch, cur.Channels())
	}

	k := m.settings.BlurSize
	gocv.AbsDiff(prev, cur, &m.diff)
	gocv.Blur(m.diff, &m.blurred, image.Pt(k, k))
	gocv.Threshold(m.blurred, &m.mask, float32(m.settings.Threshold), 255, gocv.ThresholdBinary)

	regions, err := m.regions.Detect(m.mask)
	if err != nil {
		return nil, fmt.Errorf("%s regions: %w", m.regions.Name(), err)
	}

	best, ok := Largest(regions, m.settings.MinArea)
	if !ok {
		return nil, nil
	}

	result := &MotionResult{
		Centroid:     best.Center(),
		Box:          best.Rect,
		Area:         best.Area,
		ContourCount: len(regions),
	}
	glog.V(1).Infof("Motion at %d,%d(%d,%d) C=%d A:%dx%d=%.0f SqPx",
		result.Centroid.X, result.Centroid.Y, result.Box.Min.X, result.Box.Min.Y,
		result.ContourCount, result.Box.Dx(), result.Box.Dy(), result.Area)

	return result, nil
}

// Close releases the scratch buffers.
func (m *MotionDetector) Close() {
	m.diff.Close()
	m.blurred.Close()
	m.mask.Close()
}

// Largest returns the region with the greatest area strictly above
// minArea. On equal areas the earlier region wins.
func Largest(regions []detector.Region, minArea float64) (detector.Region, bool) {
	var best detector.Region
	found := false
	for _, r := range regions {
		if r.Area <= minArea {
			continue
		}
		if !found || r.Area > best.Area {
			best = r
			found = true
		}
	}
	return best, found
}

// Gray returns a single channel copy of frame. The caller owns the result.
func Gray(frame gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Empty() {
		return gray
	}

	if frame.Channels() > 1 {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	return gray
}
