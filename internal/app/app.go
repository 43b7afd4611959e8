// Package app runs the motion menu: it owns the session state and drives
// the render loop over the capture, menu, render and display packages.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/golang/glog"
	"gocv.io/x/gocv"

	"github.com/ayusman/motionpoke/internal/capture"
	"github.com/ayusman/motionpoke/internal/config"
	"github.com/ayusman/motionpoke/internal/detector"
	"github.com/ayusman/motionpoke/internal/display"
	"github.com/ayusman/motionpoke/internal/menu"
	"github.com/ayusman/motionpoke/internal/render"
	"github.com/ayusman/motionpoke/internal/sound"
	"github.com/ayusman/motionpoke/internal/token"
)

// Reasons recorded when a session ends.
const (
	EndQuitKey   = "quit-key"
	EndQuitMenu  = "quit-menu"
	EndInterrupt = "interrupt"
	EndError     = "error"
)

// Options holds the collaborators of an App. Nil fields get the
// production implementation built from the configuration.
type Options struct {
	// Camera is reopened by every session.
	Camera   capture.Camera
	Detector detector.Detector
	Display  display.Display
	Journal  Journal
	Chime    *sound.Chime
	// OnMode is called after every mode change.
	OnMode func(menu.Mode)
}

// App is the render loop with its outer retry.
type App struct {
	config  config.Config
	opts    Options
	overlay *render.Overlay
	layout  menu.Layout

	// token survives session retries; a capture replaces it.
	token *token.Token

	attempt int
	s       *session
}

// session is the mutable state of one run of the render loop. Only the
// foreground loop touches it.
type session struct {
	id       string
	source   *capture.Source
	motion   *capture.MotionDetector
	engine   *menu.Engine
	tracker  menu.Tracker
	fps      *render.FPSCounter
	baseline gocv.Mat
	lastFPS  float64
	ended    bool
}

// New creates an App. The default token is loaded here so a missing asset
// fails before the camera is touched.
func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if opts.Detector == nil {
		d, err := detector.New(cfg.Motion.Backend)
		if err != nil {
			return nil, err
		}
		opts.Detector = d
	}
	if opts.Display == nil {
		d, err := display.New(cfg.Display)
		if err != nil {
			return nil, err
		}
		opts.Display = d
	}
	if opts.Journal == nil {
		opts.Journal = NopJournal{}
	}
	if opts.Chime == nil {
		opts.Chime = sound.New(false)
	}

	tokenSize := image.Pt(cfg.Token.Width, cfg.Token.Height)
	tok, err := token.Load(cfg.Token.DefaultPath, tokenSize)
	if err != nil {
		return nil, err
	}
	glog.Infof("token %s loaded, %v", cfg.Token.DefaultPath, tok.Size())

	frame := image.Pt(cfg.Camera.FrameWidth(), cfg.Camera.FrameHeight())
	layout := menu.DefaultLayout(
		image.Pt(cfg.Menu.BoxWidth, cfg.Menu.BoxHeight),
		frame,
		image.Pt(cfg.Token.PhotoWidth, cfg.Token.PhotoHeight),
	)

	style := render.Style{
		Indicator:        cfg.Render.Indicator,
		CircleSize:       cfg.Render.CircleSize,
		CircleLine:       cfg.Render.CircleLine,
		MotionCircleLine: cfg.Render.MotionCircleLine,
		LineWidth:        cfg.Menu.LineWidth,
		PhotoLineWidth:   cfg.Token.PhotoLineWidth,
		FontScale:        cfg.Render.FontScale,
	}

	return &App{
		config:  cfg,
		opts:    opts,
		overlay: render.NewOverlay(style),
		layout:  layout,
		token:   tok,
	}, nil
}

// Run performs sessions until one ends normally. A session that cannot
// establish a motion baseline is retried up to App.MaxRetries times; any
// other error aborts. Cancelling ctx ends the current session cleanly.
func (a *App) Run(ctx context.Context) error {
	attempts := 1 + a.config.App.MaxRetries

	var err error
	for i := 0; i < attempts; i++ {
		err = a.runSession(ctx)
		if !errors.Is(err, capture.ErrInsufficientFrames) {
			break
		}
		glog.Warningf("session %d: %v", a.attempt, err)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) runSession(ctx context.Context) error {
	if err := a.Begin(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			a.End(EndInterrupt)
			return nil
		default:
		}

		more, err := a.Step()
		if err != nil {
			a.End(EndError)
			return err
		}
		if !more {
			return nil
		}
	}
}

// Begin opens the camera, waits for the warm-up and captures the motion
// baseline. Without a first frame it returns ErrInsufficientFrames.
func (a *App) Begin(ctx context.Context) error {
	if a.s != nil && !a.s.ended {
		return errors.New("session already running")
	}
	a.attempt++

	cam := a.opts.Camera
	if cam == nil {
		cam = capture.NewCamera(capture.Settings{
			Device: a.config.Camera.DeviceID(),
			Width:  a.config.Camera.Width,
			Height: a.config.Camera.Height,
			FPS:    a.config.Camera.FPS,
		})
	}
	orientation := capture.Orientation{
		Rotation: a.config.Camera.Rotation,
		HFlip:    a.config.Camera.HFlip,
		VFlip:    a.config.Camera.VFlip,
	}

	source := capture.NewSource(cam, orientation, a.config.Camera.MaxCaptureFailures)
	if err := source.Start(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		source.Close()
		return ctx.Err()
	case <-time.After(a.config.Camera.Warmup):
	}

	frame := source.Read()
	if frame == nil || frame.Empty() {
		source.Close()
		return fmt.Errorf("%w: no frame after %v warm-up", capture.ErrInsufficientFrames, a.config.Camera.Warmup)
	}

	settings := capture.MotionSettings{
		Threshold: a.config.Motion.Threshold,
		BlurSize:  a.config.Motion.BlurSize,
		MinArea:   a.config.Motion.MinArea,
	}
	s := &session{
		source:   source,
		motion:   capture.NewMotionDetector(settings, a.opts.Detector),
		engine:   menu.NewEngine(a.layout, menu.Settings{HitThreshold: a.config.Menu.HitThreshold, ResetOnMiss: a.config.Menu.ResetOnMiss}),
		fps:      render.NewFPSCounter(a.config.Render.FPSEvery, time.Now()),
		baseline: capture.Gray(*frame),
	}

	id, err := a.opts.Journal.Begin(a.attempt, a.config.Camera.Device, a.opts.Detector.Name())
	if err != nil {
		glog.Warningf("journal: begin session: %v", err)
	}
	s.id = id

	a.s = s
	glog.Infof("session %d started, %dx%d, backend %s", a.attempt, frame.Cols(), frame.Rows(), a.opts.Detector.Name())
	a.notifyMode()
	return nil
}

// End releases the camera first, then the session buffers. It is safe to
// call more than once.
func (a *App) End(reason string) {
	s := a.s
	if s == nil || s.ended {
		return
	}
	s.ended = true

	s.source.Close()
	s.motion.Close()
	s.baseline.Close()

	stats := s.source.Stats()
	glog.Infof("session %d ended (%s): captured %d, dropped %d, failures %d",
		a.attempt, reason, stats.Captured, stats.Dropped, stats.Failures)

	if s.id != "" {
		if err := a.opts.Journal.End(s.id, reason); err != nil {
			glog.Warningf("journal: end session: %v", err)
		}
	}
}

// Close ends any running session and releases the token and the
// detector backend.
func (a *App) Close() error {
	a.End(EndInterrupt)
	if a.token != nil {
		a.token.Close()
		a.token = nil
	}
	if a.opts.Detector != nil {
		err := a.opts.Detector.Close()
		a.opts.Detector = nil
		return err
	}
	return nil
}

// Mode returns the active menu mode, Main before the first session.
func (a *App) Mode() menu.Mode {
	if a.s == nil {
		return menu.Main
	}
	return a.s.engine.Mode()
}

// Hits returns a copy of the active mode's hit counters.
func (a *App) Hits() []int {
	if a.s == nil {
		return nil
	}
	return a.s.engine.Hits()
}

// Token returns the current game token.
func (a *App) Token() *token.Token {
	return a.token
}

// Attempt returns the number of sessions begun so far.
func (a *App) Attempt() int {
	return a.attempt
}

func (a *App) notifyMode() {
	if a.opts.OnMode != nil {
		a.opts.OnMode(a.Mode())
	}
}
