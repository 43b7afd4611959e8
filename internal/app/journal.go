package app

import (
	"image"

	"github.com/ayusman/motionpoke/internal/menu"
	"github.com/ayusman/motionpoke/internal/store"
)

// Journal records session activity. Failures are logged by the caller and
// never end a session.
type Journal interface {
	Begin(attempt int, device, backend string) (string, error)
	End(sessionID, reason string) error
	Transition(sessionID string, ev menu.Event) error
	Capture(sessionID, path string, size image.Point, saveErr error) error
	FPS(sessionID string, fps float64, frames int) error
}

// NopJournal discards everything.
type NopJournal struct{}

func (NopJournal) Begin(int, string, string) (string, error)        { return "", nil }
func (NopJournal) End(string, string) error                         { return nil }
func (NopJournal) Transition(string, menu.Event) error              { return nil }
func (NopJournal) Capture(string, string, image.Point, error) error { return nil }
func (NopJournal) FPS(string, float64, int) error                   { return nil }

// StoreJournal writes the journal to a SQLite store.
type StoreJournal struct {
	store *store.Store
}

// NewStoreJournal creates a Journal backed by s.
func NewStoreJournal(s *store.Store) *StoreJournal {
	return &StoreJournal{store: s}
}

func (j *StoreJournal) Begin(attempt int, device, backend string) (string, error) {
	s := &store.Session{Attempt: attempt, Device: device, Backend: backend}
	if err := j.store.Sessions().Start(s); err != nil {
		return "", err
	}
	return s.ID, nil
}

func (j *StoreJournal) End(sessionID, reason string) error {
	return j.store.Sessions().End(sessionID, reason)
}

func (j *StoreJournal) Transition(sessionID string, ev menu.Event) error {
	return j.store.Transitions().Record(&store.Transition{
		SessionID: sessionID,
		FromMode:  ev.From.String(),
		ToMode:    ev.To.String(),
		Label:     ev.Binding.Box.Label,
		Action:    ev.Binding.Action.String(),
	})
}

func (j *StoreJournal) Capture(sessionID, path string, size image.Point, saveErr error) error {
	c := &store.Capture{
		SessionID: sessionID,
		Path:      path,
		Width:     size.X,
		Height:    size.Y,
		Saved:     saveErr == nil,
	}
	if saveErr != nil {
		c.Error = saveErr.Error()
	}
	return j.store.Captures().Record(c)
}

func (j *StoreJournal) FPS(sessionID string, fps float64, frames int) error {
	return j.store.FPS().Record(&store.FPSSample{SessionID: sessionID, FPS: fps, Frames: frames})
}
