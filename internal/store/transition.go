package store

import (
	"database/sql"
	"time"
)

// Transition is one fired menu box.
type Transition struct {
	ID        int64
	SessionID string
	FromMode  string
	ToMode    string
	Label     string
	Action    string
	CreatedAt time.Time
}

// TransitionRepository records menu transitions.
type TransitionRepository struct {
	db *sql.DB
}

// Transitions returns the transition repository for this store.
func (s *Store) Transitions() *TransitionRepository {
	return &TransitionRepository{db: s.db}
}

// Record inserts a transition.
func (r *TransitionRepository) Record(t *Transition) error {
	t.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO transitions (session_id, from_mode, to_mode, label, action, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.SessionID, t.FromMode, t.ToMode, t.Label, t.Action, t.CreatedAt,
	)
	if err != nil {
		return err
	}

	t.ID, err = result.LastInsertId()
	return err
}

// ListBySession retrieves the transitions of a session in order.
func (r *TransitionRepository) ListBySession(sessionID string) ([]*Transition, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, from_mode, to_mode, label, action, created_at
		 FROM transitions WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []*Transition
	for rows.Next() {
		t := &Transition{}
		if err := rows.Scan(&t.ID, &t.SessionID, &t.FromMode, &t.ToMode, &t.Label, &t.Action, &t.CreatedAt); err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transitions, nil
}
