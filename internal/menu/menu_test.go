package menu

import (
	"image"
	"testing"
)

func defaultLayout() Layout {
	return DefaultLayout(image.Pt(200, 75), image.Pt(640, 480), image.Pt(150, 150))
}

func TestBox_Contains(t *testing.T) {
	b := Box{X: 220, Y: 10, Width: 200, Height: 75}

	tests := []struct {
		name string
		p    image.Point
		want bool
	}{
		{"center", image.Pt(320, 47), true},
		{"just inside top left", image.Pt(221, 11), true},
		{"just inside bottom right", image.Pt(419, 84), true},
		{"left edge", image.Pt(220, 47), false},
		{"right edge", image.Pt(420, 47), false},
		{"top edge", image.Pt(320, 10), false},
		{"bottom edge", image.Pt(320, 85), false},
		{"corner", image.Pt(220, 10), false},
		{"outside", image.Pt(100, 300), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBox_Geometry(t *testing.T) {
	b := Box{X: 430, Y: 220, Width: 200, Height: 75, Label: LabelTakePhoto}

	if got := b.Rect(); got != image.Rect(430, 220, 630, 295) {
		t.Errorf("Rect() = %v", got)
	}
	if got := b.CaptionOrigin(); got != image.Pt(480, 257) {
		t.Errorf("CaptionOrigin() = %v, want (480,257)", got)
	}
}

func TestDefaultLayout(t *testing.T) {
	l := defaultLayout()

	tests := []struct {
		mode   Mode
		labels []string
	}{
		{Main, []string{LabelSetup, LabelPlay, LabelQuit}},
		{ExitConfirm, []string{LabelQuit, LabelBack}},
		{EditSetup, []string{LabelBack, LabelTakePhoto}},
		{Play, nil},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			bindings := l.Bindings(tt.mode)
			if len(bindings) != len(tt.labels) {
				t.Fatalf("got %d bindings, want %d", len(bindings), len(tt.labels))
			}
			for i, b := range bindings {
				if b.Box.Label != tt.labels[i] {
					t.Errorf("binding %d label = %q, want %q", i, b.Box.Label, tt.labels[i])
				}
			}

			// Boxes within one mode never overlap.
			for i := range bindings {
				for j := i + 1; j < len(bindings); j++ {
					if bindings[i].Box.Rect().Overlaps(bindings[j].Box.Rect()) {
						t.Errorf("%s and %s overlap", bindings[i].Box.Label, bindings[j].Box.Label)
					}
				}
			}
		})
	}

	if l.PhotoWindow != image.Rect(245, 165, 395, 315) {
		t.Errorf("PhotoWindow = %v, want centred 150x150", l.PhotoWindow)
	}
}

func TestExtent(t *testing.T) {
	if got := Extent(image.Pt(200, 75)); got != image.Pt(630, 295) {
		t.Errorf("Extent(200x75) = %v, want (630,295)", got)
	}
	// 480 wide is what a 640x480 camera gives after a quarter turn.
	if got := Extent(image.Pt(200, 75)); got.X <= 480 {
		t.Errorf("Extent(200x75).X = %d, expected the stock layout not to fit 480 wide", got.X)
	}
	if got := Extent(image.Pt(100, 40)); got != image.Pt(530, 260) {
		t.Errorf("Extent(100x40) = %v, want (530,260)", got)
	}
}

func TestModeAndAction_String(t *testing.T) {
	modes := map[Mode]string{Main: "main", EditSetup: "setup", ExitConfirm: "exit", Play: "play", Mode(9): "mode(9)"}
	for m, want := range modes {
		if m.String() != want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(m), m.String(), want)
		}
	}

	actions := map[Action]string{ActionNone: "none", ActionGoto: "goto", ActionCapture: "capture", ActionQuit: "quit"}
	for a, want := range actions {
		if a.String() != want {
			t.Errorf("Action(%d).String() = %q, want %q", int(a), a.String(), want)
		}
	}
}
