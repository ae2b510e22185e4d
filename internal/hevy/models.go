package hevy

import (
	"encoding/json"
	"time"
)

// Workout is a logged strength workout.
type Workout struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Exercises []Exercise `json:"exercises"`

	// Raw is the untouched document as the platform sent it, for callers
	// that persist payloads verbatim.
	Raw json.RawMessage `json:"-"`
}

// Exercise is one movement within a workout, with its sets in order.
type Exercise struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
	Sets  []Set  `json:"sets"`
}

// Set is a single logged set. WeightKg and Reps are pointers because
// bodyweight and duration-only sets carry no value for them.
type Set struct {
	Type     string   `json:"type"` // "normal", "warmup", "failure", "dropset"
	WeightKg *float64 `json:"weight_kg"`
	Reps     *int     `json:"reps"`
}

// workoutsPage is the paged response envelope. Workouts are decoded in two
// steps so each parsed workout keeps its raw document.
type workoutsPage struct {
	Page      int               `json:"page"`
	PageCount int               `json:"page_count"`
	Workouts  []json.RawMessage `json:"workouts"`
}
