package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Capture is one token photo.
type Capture struct {
	ID        string
	SessionID string
	Path      string
	Width     int
	Height    int
	Saved     bool
	Error     string
	CreatedAt time.Time
}

// CaptureRepository records token captures.
type CaptureRepository struct {
	db *sql.DB
}

// Captures returns the capture repository for this store.
func (s *Store) Captures() *CaptureRepository {
	return &CaptureRepository{db: s.db}
}

// Record inserts a capture. An empty ID is filled with a new UUID.
func (r *CaptureRepository) Record(c *Capture) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now()

	saved := 0
	if c.Saved {
		saved = 1
	}

	_, err := r.db.Exec(
		`INSERT INTO captures (id, session_id, path, width, height, saved, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SessionID, c.Path, c.Width, c.Height, saved, c.Error, c.CreatedAt,
	)
	return err
}

// ListBySession retrieves the captures of a session in order.
func (r *CaptureRepository) ListBySession(sessionID string) ([]*Capture, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, path, width, height, saved, error, created_at
		 FROM captures WHERE session_id = ? ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []*Capture
	for rows.Next() {
		c := &Capture{}
		var saved int
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Path, &c.Width, &c.Height, &saved, &c.Error, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Saved = saved != 0
		captures = append(captures, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return captures, nil
}
