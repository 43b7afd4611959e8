package display

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"gocv.io/x/gocv"
)

const barWidth = 20

// Terminal renders the HUD as text with tcell, for boards without a
// desktop session. Frames are not drawn.
type Terminal struct {
	screen tcell.Screen
	keys   chan Key
	done   chan struct{}
}

// NewTerminalScreen initialises the controlling terminal.
func NewTerminalScreen() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return NewTerminal(screen), nil
}

// NewTerminal wraps an initialised screen and starts reading its events.
func NewTerminal(screen tcell.Screen) *Terminal {
	t := &Terminal{
		screen: screen,
		keys:   make(chan Key, 16),
		done:   make(chan struct{}),
	}
	go t.readEvents()
	return t
}

func (t *Terminal) readEvents() {
	defer close(t.done)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}

		var k Key
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				k = KeyQuit
			case tcell.KeyRune:
				k = KeyFromRune(ev.Rune())
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}

		if k == KeyNone {
			continue
		}
		select {
		case t.keys <- k:
		default:
		}
	}
}

// Present draws the HUD.
func (t *Terminal) Present(_ gocv.Mat, hud HUD) error {
	t.screen.Clear()

	title := tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	normal := tcell.StyleDefault
	hit := tcell.StyleDefault.Foreground(tcell.ColorRed)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	row := 0
	t.drawText(0, row, title, fmt.Sprintf("motionpoke  mode: %-6s fps: %.1f", hud.Mode, hud.FPS))
	row += 2

	for i, label := range hud.Labels {
		n := 0
		if i < len(hud.Hits) {
			n = hud.Hits[i]
		}
		style := normal
		if n > 0 {
			style = hit
		}
		t.drawText(0, row, style, fmt.Sprintf("[%-10s] %s %d/%d", label, bar(n, hud.Threshold), n, hud.Threshold))
		row++
	}
	if len(hud.Labels) == 0 {
		t.drawText(0, row, dim, "(no menu boxes)")
		row++
	}
	row++

	if hud.Centroid != nil {
		t.drawText(0, row, normal, fmt.Sprintf("motion at %d,%d", hud.Centroid.X, hud.Centroid.Y))
	} else {
		t.drawText(0, row, dim, "no motion")
	}
	row += 2

	t.drawText(0, row, dim, "q quit  m menu")
	t.screen.Show()
	return nil
}

// bar renders n of threshold+1 hits as a fixed width gauge.
func bar(n, threshold int) string {
	total := threshold + 1
	filled := 0
	if total > 0 {
		filled = min(barWidth, n*barWidth/total)
	}
	return strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
}

func (t *Terminal) drawText(x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}

// PollKey returns the next pending key, if any.
func (t *Terminal) PollKey() Key {
	select {
	case k := <-t.keys:
		return k
	default:
		return KeyNone
	}
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	t.screen.Fini()
	<-t.done
	return nil
}
