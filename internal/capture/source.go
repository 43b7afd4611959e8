package capture

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/golang/glog"
	"gocv.io/x/gocv"
)

// SourceStats counts acquisition loop activity.
type SourceStats struct {
	Captured int64
	Dropped  int64
	Failures int64
}

// Source runs a background acquisition loop over a Camera and exposes the
// most recent frame without blocking.
//
// The latest frame lives in a one element channel. The acquisition
// goroutine is the only writer and overwrites an unread frame. The
// foreground loop is the only reader and owns the frame it received until
// its next Read.
type Source struct {
	cam         Camera
	orientation Orientation
	maxFailures int

	slot    chan *gocv.Mat
	current *gocv.Mat
	done    chan struct{}

	started atomic.Bool
	stopped atomic.Bool

	captured atomic.Int64
	dropped  atomic.Int64
	failures atomic.Int64
}

// NewSource creates a Source. maxFailures is the number of consecutive
// capture failures after which the loop gives up; 0 means never.
func NewSource(cam Camera, orientation Orientation, maxFailures int) *Source {
	return &Source{
		cam:         cam,
		orientation: orientation,
		maxFailures: maxFailures,
		slot:        make(chan *gocv.Mat, 1),
		done:        make(chan struct{}),
	}
}

// Start opens the camera and launches the acquisition loop.
func (s *Source) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	if err := s.cam.Open(); err != nil {
		close(s.done)
		if errors.Is(err, ErrDeviceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	glog.Infof("camera opened, fps=%d", s.cam.FPS())

	go s.run()
	return nil
}

// Read returns the most recent frame, or nil before the first frame
// arrives. It never blocks. The returned Mat stays valid until the next
// Read or Close and must not be closed by the caller.
func (s *Source) Read() *gocv.Mat {
	select {
	case frame := <-s.slot:
		if s.current != nil {
			s.current.Close()
		}
		s.current = frame
	default:
	}
	return s.current
}

// Stop asks the acquisition loop to finish. The camera is released once
// the loop observes the flag; wait on Done for that.
func (s *Source) Stop() {
	s.stopped.Store(true)
}

// Done is closed after the camera has been released.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// Close stops the loop, waits for the camera release and frees any frames
// still held by the source.
func (s *Source) Close() {
	s.Stop()
	if s.started.Load() {
		<-s.done
	}

	select {
	case frame := <-s.slot:
		frame.Close()
	default:
	}
	if s.current != nil {
		s.current.Close()
		s.current = nil
	}
}

// Stats returns a snapshot of the loop counters.
func (s *Source) Stats() SourceStats {
	return SourceStats{
		Captured: s.captured.Load(),
		Dropped:  s.dropped.Load(),
		Failures: s.failures.Load(),
	}
}

func (s *Source) run() {
	defer close(s.done)
	defer func() {
		if err := s.cam.Close(); err != nil {
			glog.Warningf("close camera: %v", err)
		}
		glog.Infof("camera released")
	}()

	consecutive := 0
	for !s.stopped.Load() {
		frame, err := s.cam.ReadFrame()
		if err != nil {
			s.failures.Add(1)
			if errors.Is(err, ErrCameraNotOpen) {
				glog.Errorf("acquisition stopped: %v", err)
				return
			}
			consecutive++
			if s.maxFailures > 0 && consecutive >= s.maxFailures {
				glog.Errorf("acquisition stopped after %d consecutive failures: %v", consecutive, err)
				return
			}
			glog.Warningf("capture: %v", err)
			continue
		}
		consecutive = 0

		s.orientation.Apply(frame)
		s.publish(frame)
	}
}

// publish overwrites the slot with frame, closing any unread frame.
func (s *Source) publish(frame *gocv.Mat) {
	s.captured.Add(1)
	select {
	case s.slot <- frame:
		return
	default:
	}

	select {
	case old := <-s.slot:
		old.Close()
		s.dropped.Add(1)
	default:
	}
	s.slot <- frame
}
