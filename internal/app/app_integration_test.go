package app

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/motionpoke/internal/capture"
	"github.com/ayusman/motionpoke/internal/config"
	"github.com/ayusman/motionpoke/internal/detector"
	"github.com/ayusman/motionpoke/internal/display"
	"github.com/ayusman/motionpoke/internal/menu"
	"github.com/ayusman/motionpoke/internal/store"
	"github.com/ayusman/motionpoke/internal/token"
	"github.com/ayusman/motionpoke/testdata"
	"gocv.io/x/gocv"
)

// Box centres of the stock layout.
var (
	setupCenter     = image.Pt(110, 47)
	playCenter      = image.Pt(320, 47)
	quitCenter      = image.Pt(530, 47)
	backCenter      = image.Pt(320, 47)
	takePhotoCenter = image.Pt(530, 257)
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Camera.Warmup = 50 * time.Millisecond
	cfg.Camera.HFlip = false
	cfg.Token.DefaultPath = filepath.Join("..", "..", "assets", "token.png")
	cfg.Token.SavePath = filepath.Join(t.TempDir(), "capture.png")
	cfg.Display.Kind = config.DisplayNone
	return cfg
}

type harness struct {
	app     *App
	camera  *capture.MockCamera
	regions *detector.MockDetector
	display *display.Mock
	frames  []*gocv.Mat
}

func newHarness(t *testing.T, cfg config.Config, opts Options) *harness {
	t.Helper()

	h := &harness{
		frames:  []*gocv.Mat{testdata.Uniform(testdata.Width, testdata.Height, testdata.Background)},
		regions: detector.NewMockDetector(),
		display: display.NewMock(),
	}
	h.camera = capture.NewMockCamera(h.frames, true)
	h.camera.SetDelay(2 * time.Millisecond)

	if opts.Camera == nil {
		opts.Camera = h.camera
	}
	if opts.Detector == nil {
		opts.Detector = h.regions
	}
	opts.Display = h.display

	a, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.app = a

	t.Cleanup(func() {
		a.Close()
		testdata.CloseAll(h.frames)
	})
	return h
}

// motionAt makes every cycle report a region centred on c.
func (h *harness) motionAt(c image.Point) {
	h.regions.SetRegions([]detector.Region{{Rect: testdata.RectAt(c, 40, 40), Area: 1600}})
}

func (h *harness) begin(t *testing.T) {
	t.Helper()
	if err := h.app.Begin(context.Background()); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
}

func (h *harness) steps(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		more, err := h.app.Step()
		if err != nil {
			t.Fatalf("Step() %d error = %v", i, err)
		}
		if !more {
			t.Fatalf("Step() %d ended the loop", i)
		}
	}
}

func allZero(hits []int) bool {
	for _, h := range hits {
		if h != 0 {
			return false
		}
	}
	return true
}

func TestApp_StaticFeedNoHits(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	contours, err := detector.New(detector.BackendOpenCV)
	if err != nil {
		t.Fatalf("detector.New() error = %v", err)
	}
	h := newHarness(t, cfg, Options{Detector: contours})
	h.begin(t)

	h.steps(t, 50)

	if h.app.Mode() != menu.Main {
		t.Errorf("Mode() = %v, want main", h.app.Mode())
	}
	for i, hud := range h.display.Presented() {
		if !allZero(hud.Hits) {
			t.Fatalf("cycle %d hits = %v, want all zero", i, hud.Hits)
		}
		if hud.Centroid != nil {
			t.Fatalf("cycle %d reported motion at %v", i, *hud.Centroid)
		}
	}
	if n := len(h.display.Presented()); n != 50 {
		t.Errorf("presented %d frames, want 50", n)
	}
}

func TestApp_QuitThenBack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	h := newHarness(t, cfg, Options{})
	h.begin(t)
	threshold := cfg.Menu.HitThreshold

	h.motionAt(quitCenter)
	h.steps(t, threshold)
	if h.app.Mode() != menu.Main {
		t.Fatalf("Mode() after %d hits = %v, want main", threshold, h.app.Mode())
	}
	h.steps(t, 1)
	if h.app.Mode() != menu.ExitConfirm {
		t.Fatalf("Mode() = %v, want exit", h.app.Mode())
	}

	h.motionAt(backCenter)
	h.steps(t, threshold+1)
	if h.app.Mode() != menu.Main {
		t.Fatalf("Mode() = %v, want main", h.app.Mode())
	}
	if !allZero(h.app.Hits()) {
		t.Errorf("Hits() = %v, want all zero", h.app.Hits())
	}
}

func TestApp_QuitBoxEndsLoop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	h := newHarness(t, cfg, Options{})
	h.begin(t)

	h.motionAt(quitCenter)
	h.steps(t, cfg.Menu.HitThreshold+1)

	// Same spot is the confirming QUIT box in ExitConfirm.
	h.steps(t, cfg.Menu.HitThreshold)
	more, err := h.app.Step()
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if more {
		t.Fatal("Step() should end the loop on confirmed quit")
	}

	if opened, closed := h.camera.Opens(); opened != 1 || closed != 1 {
		t.Errorf("camera opened %d closed %d, want 1 and 1", opened, closed)
	}
	if _, err := h.app.Step(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Step() after end error = %v, want ErrNoSession", err)
	}
}

func TestApp_CaptureToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	h := newHarness(t, cfg, Options{})
	h.begin(t)
	before := h.app.Token()

	h.motionAt(setupCenter)
	h.steps(t, cfg.Menu.HitThreshold+1)
	if h.app.Mode() != menu.EditSetup {
		t.Fatalf("Mode() = %v, want setup", h.app.Mode())
	}

	h.motionAt(takePhotoCenter)
	h.steps(t, cfg.Menu.HitThreshold+1)
	if h.app.Mode() != menu.Play {
		t.Fatalf("Mode() = %v, want play", h.app.Mode())
	}

	if h.app.Token() == before {
		t.Fatal("token should be replaced by the capture")
	}
	if got := h.app.Token().Size(); got != image.Pt(cfg.Token.Width, cfg.Token.Height) {
		t.Errorf("token size = %v, want %dx%d", got, cfg.Token.Width, cfg.Token.Height)
	}

	f, err := os.Open(cfg.Token.SavePath)
	if err != nil {
		t.Fatalf("saved capture missing: %v", err)
	}
	defer f.Close()
	saved, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("saved capture not a PNG: %v", err)
	}
	inset := cfg.Token.PhotoWidth - 2*cfg.Token.PhotoLineWidth
	if saved.Width != inset || saved.Height != inset {
		t.Errorf("saved size = %dx%d, want %dx%d", saved.Width, saved.Height, inset, inset)
	}
}

func TestApp_CaptureSaveFailureKeepsToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	cfg.Token.SavePath = filepath.Join(blocker, "capture.png")

	h := newHarness(t, cfg, Options{})
	h.begin(t)
	before := h.app.Token()

	h.motionAt(setupCenter)
	h.steps(t, cfg.Menu.HitThreshold+1)
	h.motionAt(takePhotoCenter)
	h.steps(t, cfg.Menu.HitThreshold+1)

	if h.app.Mode() != menu.Play {
		t.Fatalf("Mode() = %v, want play", h.app.Mode())
	}
	if h.app.Token() == before {
		t.Error("token should be replaced even when saving fails")
	}
}

func TestApp_MenuKeyResets(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	h := newHarness(t, cfg, Options{})
	h.begin(t)

	h.motionAt(playCenter)
	h.steps(t, cfg.Menu.HitThreshold+1)
	if h.app.Mode() != menu.Play {
		t.Fatalf("Mode() = %v, want play", h.app.Mode())
	}

	h.regions.SetRegions(nil)
	h.display.KeyAfter(cfg.Menu.HitThreshold+2, display.KeyMenu)
	h.steps(t, 1)

	if h.app.Mode() != menu.Main {
		t.Errorf("Mode() after menu key = %v, want main", h.app.Mode())
	}
	if !allZero(h.app.Hits()) {
		t.Errorf("Hits() = %v, want all zero", h.app.Hits())
	}
}

func TestApp_QuitKeyEndsRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	h := newHarness(t, cfg, Options{})
	h.display.KeyAfter(3, display.KeyQuit)

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n := len(h.display.Presented()); n != 3 {
		t.Errorf("presented %d frames, want 3", n)
	}
	if opened, closed := h.camera.Opens(); opened != 1 || closed != 1 {
		t.Errorf("camera opened %d closed %d, want 1 and 1", opened, closed)
	}
}

func TestApp_RetriesWithoutBaseline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	cfg.Camera.MaxCaptureFailures = 5
	empty := capture.NewMockCamera(nil, false)
	empty.SetDelay(2 * time.Millisecond)
	h := newHarness(t, cfg, Options{Camera: empty})

	err := h.app.Run(context.Background())
	if !errors.Is(err, capture.ErrInsufficientFrames) {
		t.Fatalf("Run() error = %v, want ErrInsufficientFrames", err)
	}
	if h.app.Attempt() != 1+cfg.App.MaxRetries {
		t.Errorf("Attempt() = %d, want %d", h.app.Attempt(), 1+cfg.App.MaxRetries)
	}
	if opened, closed := empty.Opens(); opened != 2 || closed != 2 {
		t.Errorf("camera opened %d closed %d, want 2 and 2", opened, closed)
	}
}

func TestApp_DeviceUnavailableAborts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	h := newHarness(t, cfg, Options{})
	h.camera.SetOpenError(errors.New("device busy"))

	err := h.app.Run(context.Background())
	if !errors.Is(err, capture.ErrDeviceUnavailable) {
		t.Fatalf("Run() error = %v, want ErrDeviceUnavailable", err)
	}
	if h.app.Attempt() != 1 {
		t.Errorf("Attempt() = %d, want 1", h.app.Attempt())
	}
}

func TestApp_CancelledContext(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	cfg.Camera.Warmup = time.Second
	h := newHarness(t, cfg, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.app.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v, want nil on interrupt", err)
	}
	if opened, closed := h.camera.Opens(); opened != closed {
		t.Errorf("camera opened %d closed %d, want released", opened, closed)
	}
}

func TestApp_Upscale(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg := testConfig(t)
	cfg.Render.WindowScale = 2
	h := newHarness(t, cfg, Options{})
	h.begin(t)
	h.steps(t, 1)

	w, hgt := h.display.FrameSize(0)
	if w != 2*testdata.Width || hgt != 2*testdata.Height {
		t.Errorf("presented %dx%d, want %dx%d", w, hgt, 2*testdata.Width, 2*testdata.Height)
	}
}

func TestApp_ModeCallback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	var modes []menu.Mode
	cfg := testConfig(t)
	h := newHarness(t, cfg, Options{OnMode: func(m menu.Mode) { modes = append(modes, m) }})
	h.begin(t)

	h.motionAt(setupCenter)
	h.steps(t, cfg.Menu.HitThreshold+1)
	h.motionAt(backCenter)
	h.steps(t, cfg.Menu.HitThreshold+1)

	want := []menu.Mode{menu.Main, menu.EditSetup, menu.Main}
	if len(modes) != len(want) {
		t.Fatalf("modes = %v, want %v", modes, want)
	}
	for i := range want {
		if modes[i] != want[i] {
			t.Errorf("modes[%d] = %v, want %v", i, modes[i], want[i])
		}
	}
}

func TestApp_JournalRecordsSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	cfg := testConfig(t)
	cfg.Render.FPSEvery = 5
	h := newHarness(t, cfg, Options{Journal: NewStoreJournal(s)})
	h.display.KeyAfter(cfg.Menu.HitThreshold+3, display.KeyQuit)
	h.motionAt(playCenter)

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	sessions, err := s.Sessions().List()
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	if sessions[0].EndReason != EndQuitKey {
		t.Errorf("EndReason = %q, want %q", sessions[0].EndReason, EndQuitKey)
	}
	if sessions[0].Backend != "mock" {
		t.Errorf("Backend = %q, want mock", sessions[0].Backend)
	}

	transitions, err := s.Transitions().ListBySession(sessions[0].ID)
	if err != nil {
		t.Fatalf("list transitions: %v", err)
	}
	if len(transitions) != 1 || transitions[0].ToMode != "play" {
		t.Errorf("transitions = %+v, want one into play", transitions)
	}

	avg, err := s.FPS().Average(sessions[0].ID)
	if err != nil {
		t.Fatalf("fps average: %v", err)
	}
	if avg <= 0 {
		t.Errorf("fps average = %v, want positive", avg)
	}
}

func TestNew_MissingTokenAsset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Token.DefaultPath = filepath.Join(t.TempDir(), "missing.png")

	_, err := New(cfg, Options{Detector: detector.NewMockDetector(), Display: display.NewMock()})
	if !errors.Is(err, token.ErrAssetLoad) {
		t.Errorf("New() error = %v, want ErrAssetLoad", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Motion.Backend = "magic"

	_, err := New(cfg, Options{Display: display.NewMock()})
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("New() error = %v, want ErrInvalid", err)
	}
}
