package store

import "time"

// Auth represents OAuth tokens for platform API access
type Auth struct {
	UserID       int64     `db:"user_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// ActivityRecord is one raw payload variant for one platform activity.
// Records sharing an ActivityID are fragments of the same logical activity;
// EndpointName tags which variant (summary, details, hr_zones, exercise_sets)
// the RawJSON document holds.
type ActivityRecord struct {
	ActivityID   int64     `db:"activity_id"`
	EndpointName string    `db:"endpoint_name"`
	RawJSON      []byte    `db:"raw_json"`
	SyncedAt     time.Time `db:"synced_at"`
}

// Workout is one raw workout document from the set-logging platform.
type Workout struct {
	WorkoutID string    `db:"workout_id"`
	RawJSON   []byte    `db:"raw_json"`
	SyncedAt  time.Time `db:"synced_at"`
}

// EndpointSummary is the payload variant holding the activity summary fields.
const EndpointSummary = "summary"

// EndpointDetails is the payload variant holding per-sample telemetry.
const EndpointDetails = "details"
