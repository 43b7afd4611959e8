package store

import (
	"database/sql"
	"time"
)

// FPSSample is one throughput report.
type FPSSample struct {
	ID        int64
	SessionID string
	FPS       float64
	Frames    int
	CreatedAt time.Time
}

// FPSRepository records throughput reports.
type FPSRepository struct {
	db *sql.DB
}

// FPS returns the throughput repository for this store.
func (s *Store) FPS() *FPSRepository {
	return &FPSRepository{db: s.db}
}

// Record inserts a sample.
func (r *FPSRepository) Record(f *FPSSample) error {
	f.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO fps_samples (session_id, fps, frames, created_at) VALUES (?, ?, ?, ?)`,
		f.SessionID, f.FPS, f.Frames, f.CreatedAt,
	)
	if err != nil {
		return err
	}

	f.ID, err = result.LastInsertId()
	return err
}

// Average returns the mean reported rate of a session, or 0 without
// samples.
func (r *FPSRepository) Average(sessionID string) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRow(
		`SELECT AVG(fps) FROM fps_samples WHERE session_id = ?`,
		sessionID,
	).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}
