// Package sound plays short audible cues on menu activity.
package sound

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Cue identifies a sound.
type Cue int

const (
	// CueSelect plays when a menu box fires.
	CueSelect Cue = iota
	// CueCapture plays when a new token is captured.
	CueCapture
	// CueQuit plays when the session ends from the menu.
	CueQuit
)

func (c Cue) String() string {
	switch c {
	case CueSelect:
		return "select"
	case CueCapture:
		return "capture"
	case CueQuit:
		return "quit"
	default:
		return fmt.Sprintf("cue(%d)", int(c))
	}
}

// Chime plays cues through the default audio device. A disabled Chime
// ignores every call.
type Chime struct {
	mu          sync.Mutex
	enabled     bool
	mixer       *beep.Mixer
	initialized bool
}

// New creates a Chime. Audio is not touched until Init.
func New(enabled bool) *Chime {
	return &Chime{
		enabled: enabled,
		mixer:   &beep.Mixer{},
	}
}

// Init opens the speaker.
func (c *Chime) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || c.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Play queues cue on the mixer.
func (c *Chime) Play(cue Cue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}

	s := Streamer(cue, sampleRate)
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// Close stops all sounds and releases the speaker.
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}

	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	c.initialized = false
}

// Streamer builds the finite sample stream for cue.
func Streamer(cue Cue, sr beep.SampleRate) beep.Streamer {
	var s beep.Streamer
	switch cue {
	case CueCapture:
		s = beep.Seq(
			NewTone(sr, 1320, 40*time.Millisecond),
			beep.Silence(sr.N(30*time.Millisecond)),
			NewTone(sr, 1320, 40*time.Millisecond),
		)
	case CueQuit:
		s = beep.Seq(
			NewTone(sr, 660, 90*time.Millisecond),
			NewTone(sr, 440, 140*time.Millisecond),
		)
	default:
		s = beep.Seq(
			NewTone(sr, 660, 70*time.Millisecond),
			NewTone(sr, 880, 90*time.Millisecond),
		)
	}

	return &effects.Volume{Streamer: s, Base: 2, Volume: -1}
}

// Tone is a sine tone of fixed length with a short linear attack and
// release.
type Tone struct {
	sr    beep.SampleRate
	freq  float64
	pos   int
	total int
	ramp  int
}

// NewTone creates a tone of freq Hz lasting d.
func NewTone(sr beep.SampleRate, freq float64, d time.Duration) *Tone {
	total := sr.N(d)
	return &Tone{
		sr:    sr,
		freq:  freq,
		total: total,
		ramp:  max(1, min(sr.N(5*time.Millisecond), total/2)),
	}
}

func (g *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	if g.pos >= g.total {
		return 0, false
	}

	for i := range samples {
		if g.pos >= g.total {
			return i, true
		}
		t := float64(g.pos) / float64(g.sr)

		env := 1.0
		if g.pos < g.ramp {
			env = float64(g.pos) / float64(g.ramp)
		} else if rest := g.total - g.pos; rest < g.ramp {
			env = float64(rest) / float64(g.ramp)
		}

		v := 0.4 * env * math.Sin(2*math.Pi*g.freq*t)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *Tone) Err() error {
	return nil
}
