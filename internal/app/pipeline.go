package app

import (
	"errors"
	"image"
	"time"

	"github.com/golang/glog"
	"gocv.io/x/gocv"

	"github.com/ayusman/motionpoke/internal/capture"
	"github.com/ayusman/motionpoke/internal/display"
	"github.com/ayusman/motionpoke/internal/menu"
	"github.com/ayusman/motionpoke/internal/render"
	"github.com/ayusman/motionpoke/internal/sound"
	"github.com/ayusman/motionpoke/internal/token"
)

// ErrNoSession is returned by Step outside Begin/End.
var ErrNoSession = errors.New("no session running")

// Step runs one cycle of the render loop and reports whether the loop
// should continue. On false the session has already been ended.
//
// Cycle:
// 1. FPS accounting, reported every Render.FPSEvery cycles
// 2. Latest frame from the source
// 3. Motion against the previous cycle's grayscale frame
// 4. Menu engine update, firing at most one binding
// 5. Overlays drawn on a copy of the frame
// 6. Optional integer upscale
// 7. Present and poll a key
func (a *App) Step() (bool, error) {
	s := a.s
	if s == nil || s.ended {
		return false, ErrNoSession
	}

	if fps, frames, ok := s.fps.Tick(time.Now()); ok {
		s.lastFPS = fps
		if a.config.Render.Verbose {
			glog.Infof("Processing at %.1f fps last %d frames", fps, frames)
		}
		if s.id != "" {
			if err := a.opts.Journal.FPS(s.id, fps, frames); err != nil {
				glog.Warningf("journal: fps: %v", err)
			}
		}
	}

	frame := s.source.Read()
	if frame == nil || frame.Empty() {
		a.End(EndError)
		return false, capture.ErrInsufficientFrames
	}

	gray := capture.Gray(*frame)
	result, err := s.motion.Detect(s.baseline, gray)
	s.baseline.Close()
	s.baseline = gray
	if err != nil {
		return false, err
	}

	var centroid *image.Point
	if result != nil {
		centroid = &result.Centroid
		s.tracker.Observe(result.Box.Min)
	}

	ev := s.engine.Step(centroid)
	if ev.Fired {
		if !a.fired(*frame, ev) {
			a.End(EndQuitMenu)
			return false, nil
		}
	}

	if err := a.present(*frame, result); err != nil {
		return false, err
	}

	switch a.opts.Display.PollKey() {
	case display.KeyQuit:
		a.opts.Chime.Play(sound.CueQuit)
		a.End(EndQuitKey)
		return false, nil
	case display.KeyMenu:
		a.resetToMenu(*frame)
	}

	return true, nil
}

// fired handles a fired binding and reports whether the loop continues.
func (a *App) fired(frame gocv.Mat, ev menu.Event) bool {
	s := a.s
	if s.id != "" {
		if err := a.opts.Journal.Transition(s.id, ev); err != nil {
			glog.Warningf("journal: transition: %v", err)
		}
	}

	switch ev.Binding.Action {
	case menu.ActionQuit:
		a.opts.Chime.Play(sound.CueQuit)
		return false
	case menu.ActionCapture:
		a.capture(frame)
		a.opts.Chime.Play(sound.CueCapture)
	default:
		a.opts.Chime.Play(sound.CueSelect)
	}

	a.notifyMode()
	return true
}

// capture replaces the token with the photo window of the clean frame.
// A failed save is logged and the new token is kept.
func (a *App) capture(frame gocv.Mat) {
	s := a.s
	rect := s.engine.PhotoWindow().Inset(a.config.Token.PhotoLineWidth)
	size := image.Pt(a.config.Token.Width, a.config.Token.Height)

	tok, err := token.Capture(frame, rect, size)
	if err != nil {
		glog.Warningf("capture token: %v", err)
		return
	}
	if a.token != nil {
		a.token.Close()
	}
	a.token = tok

	path := a.config.Token.SavePath
	saveErr := tok.Save(path)
	if saveErr != nil {
		glog.Warningf("save token: %v", saveErr)
	} else {
		glog.Infof("token captured from %v, saved to %s", rect, path)
	}

	if s.id != "" {
		if err := a.opts.Journal.Capture(s.id, path, rect.Size(), saveErr); err != nil {
			glog.Warningf("journal: capture: %v", err)
		}
	}
}

// present composes the overlays on a copy of frame and shows it.
func (a *App) present(frame gocv.Mat, result *capture.MotionResult) error {
	s := a.s
	mode := s.engine.Mode()
	size := image.Pt(frame.Cols(), frame.Rows())

	scene := render.Scene{
		Mode:        mode,
		Bindings:    s.engine.Bindings(),
		Motion:      result,
		PhotoWindow: s.engine.PhotoWindow(),
	}
	if mode == menu.Play && a.token != nil {
		ts := a.token.Size()
		scene.Token = a.token
		scene.TokenRect = menu.Place(s.tracker.Position(ts, size), ts, size)
	}

	composed := frame.Clone()
	defer composed.Close()

	a.overlay.Draw(&composed, scene)
	render.Upscale(&composed, a.config.Render.WindowScale)

	return a.opts.Display.Present(composed, a.hud(result))
}

func (a *App) hud(result *capture.MotionResult) display.HUD {
	s := a.s
	bindings := s.engine.Bindings()
	labels := make([]string, len(bindings))
	for i, b := range bindings {
		labels[i] = b.Box.Label
	}

	h := display.HUD{
		Mode:      s.engine.Mode().String(),
		Labels:    labels,
		Hits:      s.engine.Hits(),
		Threshold: s.engine.HitThreshold(),
		FPS:       s.lastFPS,
	}
	if result != nil {
		c := result.Centroid
		h.Centroid = &c
	}
	return h
}

// resetToMenu returns to Main with zero counters and re-captures the
// motion baseline from frame.
func (a *App) resetToMenu(frame gocv.Mat) {
	s := a.s
	s.engine.Reset()
	s.tracker.Forget()

	s.baseline.Close()
	s.baseline = capture.Gray(frame)

	glog.Infof("menu key: back to %s, baseline re-captured", s.engine.Mode())
	a.notifyMode()
}
