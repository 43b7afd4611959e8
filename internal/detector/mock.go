package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	regions []Region
	err     error
	calls   int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetRegions sets the regions that will be returned by Detect.
func (m *MockDetector) SetRegions(regions []Region) {
	m.regions = regions
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Name returns "mock".
func (m *MockDetector) Name() string {
	return "mock"
}

// Close is a no-op.
func (m *MockDetector) Close() error {
	return nil
}

// Detect returns the pre-configured regions or error.
func (m *MockDetector) Detect(mask gocv.Mat) ([]Region, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.regions, nil
}
