package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertWorkout inserts or replaces one raw workout document.
func (s *Store) UpsertWorkout(w *Workout) error {
	_, err := s.db.Exec(`
		INSERT INTO workouts (workout_id, raw_json, synced_at)
		VALUES (?, ?, ?)
		ON CONFLICT (workout_id)
		DO UPDATE SET raw_json = excluded.raw_json, synced_at = excluded.synced_at`,
		w.WorkoutID, string(w.RawJSON), w.SyncedAt.Format(time.RFC3339))
	return err
}

// GetWorkout retrieves one workout document by id.
func (s *Store) GetWorkout(workoutID string) (*Workout, error) {
	row := s.db.QueryRow(`
		SELECT workout_id, raw_json, synced_at FROM workouts WHERE workout_id = ?`,
		workoutID)

	w, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	return w, err
}

// ListWorkouts retrieves all workout documents.
func (s *Store) ListWorkouts() ([]Workout, error) {
	rows, err := s.db.Query(`SELECT workout_id, raw_json, synced_at FROM workouts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// CountWorkouts returns the total number of stored workouts.
func (s *Store) CountWorkouts() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM workouts`).Scan(&count)
	return count, err
}

func scanWorkout(row rowScanner) (*Workout, error) {
	var w Workout
	var rawJSON, syncedAt string
	if err := row.Scan(&w.WorkoutID, &rawJSON, &syncedAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, syncedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing synced_at %q: %w", syncedAt, err)
	}
	w.RawJSON = []byte(rawJSON)
	w.SyncedAt = t
	return &w, nil
}
