// Package config holds the immutable runtime configuration for motionpoke.
package config

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"time"

	"gopkg.in/ini.v1"

	"github.com/ayusman/motionpoke/internal/menu"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Camera holds capture device settings. The frame after rotation must hold
// the menu boxes (630x295 for the stock 200x75 boxes), so a 90 or 270
// degree rotation needs a camera mode at least 295 wide and 630 high.
type Camera struct {
	// Device is a camera index ("0") or a capture pipeline / file path.
	Device             string        `ini:"device"`
	Width              int           `ini:"width"`
	Height             int           `ini:"height"`
	FPS                int           `ini:"fps"`
	Rotation           int           `ini:"rotation"`
	HFlip              bool          `ini:"hflip"`
	VFlip              bool          `ini:"vflip"`
	Warmup             time.Duration `ini:"warmup"`
	MaxCaptureFailures int           `ini:"max_capture_failures"`
}

// Motion holds the frame differencing settings.
type Motion struct {
	Threshold float64 `ini:"threshold"`
	BlurSize  int     `ini:"blur_size"`
	MinArea   float64 `ini:"min_area"`
	Backend   string  `ini:"backend"`
}

// Menu holds menu box geometry and hit counting settings.
type Menu struct {
	HitThreshold int  `ini:"hit_threshold"`
	BoxWidth     int  `ini:"box_width"`
	BoxHeight    int  `ini:"box_height"`
	LineWidth    int  `ini:"line_width"`
	ResetOnMiss  bool `ini:"reset_on_miss"`
}

// Token holds the game token asset settings.
type Token struct {
	DefaultPath    string `ini:"default_path"`
	SavePath       string `ini:"save_path"`
	Width          int    `ini:"width"`
	Height         int    `ini:"height"`
	PhotoWidth     int    `ini:"photo_width"`
	PhotoHeight    int    `ini:"photo_height"`
	PhotoLineWidth int    `ini:"photo_line_width"`
}

// Render holds overlay and reporting settings.
type Render struct {
	WindowScale      int     `ini:"window_scale"`
	Indicator        string  `ini:"indicator"`
	CircleSize       int     `ini:"circle_size"`
	CircleLine       int     `ini:"circle_line"`
	MotionCircleLine int     `ini:"motion_circle_line"`
	FontScale        float64 `ini:"font_scale"`
	FPSEvery         int     `ini:"fps_every"`
	Verbose          bool    `ini:"verbose"`
}

// Display selects the presentation surface.
type Display struct {
	Kind  string `ini:"kind"`
	Title string `ini:"title"`
}

// Tray toggles the system tray.
type Tray struct {
	Enabled bool `ini:"enabled"`
}

// Sound toggles the transition chime.
type Sound struct {
	Enabled bool `ini:"enabled"`
}

// Journal configures the optional SQLite session journal.
// An empty path disables it.
type Journal struct {
	Path string `ini:"path"`
}

// App holds session level settings.
type App struct {
	MaxRetries int `ini:"max_retries"`
}

// Config is the complete configuration. It is passed by value into
// constructors and never mutated after Load returns.
type Config struct {
	Camera  Camera
	Motion  Motion
	Menu    Menu
	Token   Token
	Render  Render
	Display Display
	Tray    Tray
	Sound   Sound
	Journal Journal
	App     App
}

// Indicator kinds.
const (
	IndicatorCircle    = "circle"
	IndicatorRectangle = "rectangle"
)

// Display kinds.
const (
	DisplayWindow   = "window"
	DisplayTerminal = "terminal"
	DisplayNone     = "none"
)

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Camera: Camera{
			Device:             "0",
			Width:              640,
			Height:             480,
			FPS:                30,
			HFlip:              true,
			Warmup:             2 * time.Second,
			MaxCaptureFailures: 30,
		},
		Motion: Motion{
			Threshold: 25,
			BlurSize:  10,
			MinArea:   1000,
			Backend:   "opencv",
		},
		Menu: Menu{
			HitThreshold: 8,
			BoxWidth:     200,
			BoxHeight:    75,
			LineWidth:    2,
		},
		Token: Token{
			DefaultPath:    "assets/token.png",
			SavePath:       "token-capture.png",
			Width:          100,
			Height:         100,
			PhotoWidth:     150,
			PhotoHeight:    150,
			PhotoLineWidth: 2,
		},
		Render: Render{
			WindowScale:      1,
			Indicator:        IndicatorCircle,
			CircleSize:       8,
			CircleLine:       2,
			MotionCircleLine: 4,
			FontScale:        0.5,
			FPSEvery:         1000,
			Verbose:          true,
		},
		Display: Display{
			Kind:  DisplayWindow,
			Title: "motionpoke q=quit m=menu",
		},
		App: App{
			MaxRetries: 1,
		},
	}
}

// Load reads an INI file on top of the defaults. An empty path returns
// Default() unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}

	sections := []struct {
		name string
		dst  any
	}{
		{"camera", &cfg.Camera},
		{"motion", &cfg.Motion},
		{"menu", &cfg.Menu},
		{"token", &cfg.Token},
		{"render", &cfg.Render},
		{"display", &cfg.Display},
		{"tray", &cfg.Tray},
		{"sound", &cfg.Sound},
		{"journal", &cfg.Journal},
		{"app", &cfg.App},
	}
	for _, s := range sections {
		if !f.HasSection(s.name) {
			continue
		}
		if err := f.Section(s.name).MapTo(s.dst); err != nil {
			return cfg, fmt.Errorf("parse section [%s]: %w", s.name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"camera.width", c.Camera.Width},
		{"camera.height", c.Camera.Height},
		{"camera.fps", c.Camera.FPS},
		{"motion.blur_size", c.Motion.BlurSize},
		{"menu.box_width", c.Menu.BoxWidth},
		{"menu.box_height", c.Menu.BoxHeight},
		{"token.width", c.Token.Width},
		{"token.height", c.Token.Height},
		{"token.photo_width", c.Token.PhotoWidth},
		{"token.photo_height", c.Token.PhotoHeight},
		{"render.window_scale", c.Render.WindowScale},
		{"render.fps_every", c.Render.FPSEvery},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, p.name, p.value)
		}
	}

	if c.Menu.HitThreshold < 0 {
		return fmt.Errorf("%w: menu.hit_threshold must not be negative", ErrInvalid)
	}
	if c.Motion.Threshold <= 0 || c.Motion.Threshold >= 255 {
		return fmt.Errorf("%w: motion.threshold must be in (0, 255), got %v", ErrInvalid, c.Motion.Threshold)
	}
	if c.Motion.MinArea < 0 {
		return fmt.Errorf("%w: motion.min_area must not be negative", ErrInvalid)
	}
	if c.App.MaxRetries < 0 {
		return fmt.Errorf("%w: app.max_retries must not be negative", ErrInvalid)
	}
	if c.Token.PhotoWidth <= 2*c.Token.PhotoLineWidth || c.Token.PhotoHeight <= 2*c.Token.PhotoLineWidth {
		return fmt.Errorf("%w: photo window smaller than its border", ErrInvalid)
	}
	if c.Token.PhotoWidth > c.Camera.FrameWidth() || c.Token.PhotoHeight > c.Camera.FrameHeight() {
		return fmt.Errorf("%w: photo window larger than the frame", ErrInvalid)
	}
	if c.Token.Width > c.Camera.FrameWidth() || c.Token.Height > c.Camera.FrameHeight() {
		return fmt.Errorf("%w: token %dx%d larger than the %dx%d frame", ErrInvalid,
			c.Token.Width, c.Token.Height, c.Camera.FrameWidth(), c.Camera.FrameHeight())
	}
	ext := menu.Extent(image.Pt(c.Menu.BoxWidth, c.Menu.BoxHeight))
	if ext.X > c.Camera.FrameWidth() || ext.Y > c.Camera.FrameHeight() {
		return fmt.Errorf("%w: menu boxes need a %dx%d frame, got %dx%d", ErrInvalid,
			ext.X, ext.Y, c.Camera.FrameWidth(), c.Camera.FrameHeight())
	}

	switch c.Camera.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("%w: camera.rotation must be 0, 90, 180 or 270, got %d", ErrInvalid, c.Camera.Rotation)
	}
	switch c.Motion.Backend {
	case "opencv", "label":
	default:
		return fmt.Errorf("%w: unknown motion.backend %q", ErrInvalid, c.Motion.Backend)
	}
	switch c.Render.Indicator {
	case IndicatorCircle, IndicatorRectangle:
	default:
		return fmt.Errorf("%w: unknown render.indicator %q", ErrInvalid, c.Render.Indicator)
	}
	switch c.Display.Kind {
	case DisplayWindow, DisplayTerminal, DisplayNone:
	default:
		return fmt.Errorf("%w: unknown display.kind %q", ErrInvalid, c.Display.Kind)
	}

	return nil
}

// FrameWidth returns the frame width after rotation.
func (c Camera) FrameWidth() int {
	if c.Rotation == 90 || c.Rotation == 270 {
		return c.Height
	}
	return c.Width
}

// FrameHeight returns the frame height after rotation.
func (c Camera) FrameHeight() int {
	if c.Rotation == 90 || c.Rotation == 270 {
		return c.Width
	}
	return c.Height
}

// DeviceID returns the device as an integer index when it parses as one,
// otherwise the raw string. gocv accepts both.
func (c Camera) DeviceID() any {
	if id, err := strconv.Atoi(c.Device); err == nil {
		return id
	}
	return c.Device
}
