// Package menu implements the motion driven menu state machine.
package menu

import (
	"fmt"
	"image"
)

// Mode is the active menu screen. Exactly one is active at a time.
type Mode int

const (
	Main Mode = iota
	EditSetup
	ExitConfirm
	Play
)

func (m Mode) String() string {
	switch m {
	case Main:
		return "main"
	case EditSetup:
		return "setup"
	case ExitConfirm:
		return "exit"
	case Play:
		return "play"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Action is what a box does once its hit counter crosses the threshold.
type Action int

const (
	ActionNone Action = iota
	// ActionGoto switches to the binding's target mode.
	ActionGoto
	// ActionCapture takes the photo window as the new token, then switches
	// to the target mode.
	ActionCapture
	// ActionQuit ends the render loop. The mode is left unchanged.
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionGoto:
		return "goto"
	case ActionCapture:
		return "capture"
	case ActionQuit:
		return "quit"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Box is an immutable screen region with a caption.
type Box struct {
	X, Y          int
	Width, Height int
	Label         string
}

// Rect returns the box as a rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Contains reports whether p lies strictly inside the box. Points on any
// edge are outside.
func (b Box) Contains(p image.Point) bool {
	return p.X > b.X && p.X < b.X+b.Width && p.Y > b.Y && p.Y < b.Y+b.Height
}

// CaptionOrigin is where the label text starts.
func (b Box) CaptionOrigin() image.Point {
	return image.Pt(b.X+b.Width/4, b.Y+b.Height/2)
}

// Binding ties a box to the action it fires.
type Binding struct {
	Box    Box
	Action Action
	Target Mode
}

// Layout is the transition table: the bindings shown in each mode plus
// the photo window used by the capture action.
type Layout struct {
	Modes       map[Mode][]Binding
	PhotoWindow image.Rectangle
}

// Bindings returns the bindings of mode in draw order.
func (l Layout) Bindings(mode Mode) []Binding {
	return l.Modes[mode]
}

// Box captions.
const (
	LabelSetup     = "SETUP"
	LabelPlay      = "PLAY"
	LabelQuit      = "QUIT"
	LabelBack      = "BACK"
	LabelTakePhoto = "TAKE PHOTO"
)

// Extent returns the smallest frame size that holds every box of the
// stock layout for boxes of the given size.
func Extent(boxSize image.Point) image.Point {
	var ext image.Point
	for _, bindings := range DefaultLayout(boxSize, image.Point{}, image.Point{}).Modes {
		for _, b := range bindings {
			r := b.Box.Rect()
			ext.X = max(ext.X, r.Max.X)
			ext.Y = max(ext.Y, r.Max.Y)
		}
	}
	return ext
}

// DefaultLayout builds the stock layout for boxes of the given size. The
// photo window of photo size is centred in frame.
func DefaultLayout(boxSize, frame, photo image.Point) Layout {
	box := func(x, y int, label string) Box {
		return Box{X: x, Y: y, Width: boxSize.X, Height: boxSize.Y, Label: label}
	}

	origin := image.Pt((frame.X-photo.X)/2, (frame.Y-photo.Y)/2)

	return Layout{
		Modes: map[Mode][]Binding{
			Main: {
				{Box: box(10, 10, LabelSetup), Action: ActionGoto, Target: EditSetup},
				{Box: box(220, 10, LabelPlay), Action: ActionGoto, Target: Play},
				{Box: box(430, 10, LabelQuit), Action: ActionGoto, Target: ExitConfirm},
			},
			ExitConfirm: {
				{Box: box(430, 10, LabelQuit), Action: ActionQuit, Target: ExitConfirm},
				{Box: box(220, 10, LabelBack), Action: ActionGoto, Target: Main},
			},
			EditSetup: {
				{Box: box(220, 10, LabelBack), Action: ActionGoto, Target: Main},
				{Box: box(430, 220, LabelTakePhoto), Action: ActionCapture, Target: Play},
			},
			Play: nil,
		},
		PhotoWindow: image.Rectangle{Min: origin, Max: origin.Add(photo)},
	}
}
