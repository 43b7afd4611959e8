package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one run of the render loop.
type Session struct {
	ID        string
	Attempt   int
	Device    string
	Backend   string
	StartedAt time.Time
	EndedAt   *time.Time
	EndReason string
}

// SessionRepository records sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start inserts a new session. An empty ID is filled with a new UUID.
func (r *SessionRepository) Start(s *Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.StartedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, attempt, device, backend, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Attempt, s.Device, s.Backend, s.StartedAt,
	)
	return err
}

// End marks a session finished with the given reason.
func (r *SessionRepository) End(id, reason string) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, end_reason = ? WHERE id = ?`,
		time.Now(), reason, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, attempt, device, backend, started_at, ended_at, end_reason
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.Attempt, &s.Device, &s.Backend, &s.StartedAt, &ended, &s.EndReason)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if ended.Valid {
		s.EndedAt = &ended.Time
	}
	return s, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, attempt, device, backend, started_at, ended_at, end_reason
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s := &Session{}
		var ended sql.NullTime

		if err := rows.Scan(&s.ID, &s.Attempt, &s.Device, &s.Backend, &s.StartedAt, &ended, &s.EndReason); err != nil {
			return nil, err
		}

		if ended.Valid {
			s.EndedAt = &ended.Time
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
