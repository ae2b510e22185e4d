package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitlake/internal/garmin"
	"fitlake/internal/hevy"
	"fitlake/internal/store"
)

// SyncService pulls raw payloads from both platforms into the lake.
type SyncService struct {
	garmin *garmin.Client
	hevy   *hevy.Client
	store  *store.Store
}

// NewSyncService creates a new sync service. Either client may be nil when
// that platform isn't configured; its phase is skipped.
func NewSyncService(garminClient *garmin.Client, hevyClient *hevy.Client, st *store.Store) *SyncService {
	return &SyncService{
		garmin: garminClient,
		hevy:   hevyClient,
		store:  st,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase     string // "activities", "details", "workouts"
	Total     int
	Completed int
	Current   string
	Error     error
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	ActivitiesStored  int
	DetailsFetched    int
	WorkoutsStored    int
	Errors            []error
}

// detailBatchSize caps how many details documents one sync fetches, to
// stay well inside the platform's request budget.
const detailBatchSize = 50

// SyncAll performs a full sync: activity summaries -> details -> workouts.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	if s.garmin != nil {
		if err := s.syncActivities(ctx, progress, result); err != nil {
			return result, fmt.Errorf("syncing activities: %w", err)
		}
		if err := s.syncDetails(ctx, progress, result); err != nil {
			return result, fmt.Errorf("syncing details: %w", err)
		}
	}

	if s.hevy != nil {
		if err := s.syncWorkouts(ctx, progress, result); err != nil {
			return result, fmt.Errorf("syncing workouts: %w", err)
		}
	}

	return result, nil
}

// syncActivities fetches all activity summaries and stores the raw
// documents keyed by activity id.
func (s *SyncService) syncActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	if progress != nil {
		progress <- SyncProgress{Phase: "activities"}
	}

	raws, err := s.garmin.GetAllActivities(ctx, func(fetched int) {
		if progress != nil {
			progress <- SyncProgress{Phase: "activities", Total: fetched}
		}
	})
	if err != nil {
		return fmt.Errorf("fetching activities: %w", err)
	}
	result.ActivitiesFetched = len(raws)

	now := time.Now().UTC()
	for _, raw := range raws {
		summary, err := garmin.ParseSummary(raw)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("skipping unparsable summary: %w", err))
			continue
		}
		rec := &store.ActivityRecord{
			ActivityID:   summary.ActivityID,
			EndpointName: store.EndpointSummary,
			RawJSON:      raw,
			SyncedAt:     now,
		}
		if err := s.store.UpsertActivityRecord(rec); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", summary.ActivityID, err))
			continue
		}
		result.ActivitiesStored++
	}

	if progress != nil {
		progress <- SyncProgress{
			Phase:     "activities",
			Total:     result.ActivitiesFetched,
			Completed: result.ActivitiesStored,
		}
	}

	s.store.SetSyncState("last_activity_sync", time.Now().Format(time.RFC3339))

	return nil
}

// syncDetails fetches details documents for activities that don't have one
// yet, up to the batch cap.
func (s *SyncService) syncDetails(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	summaries, err := s.store.ListRecordsByEndpoint(store.EndpointSummary)
	if err != nil {
		return fmt.Errorf("listing summary records: %w", err)
	}

	var missing []int64
	for _, rec := range summaries {
		_, err := s.store.GetActivityRecord(rec.ActivityID, store.EndpointDetails)
		if errors.Is(err, store.ErrRecordNotFound) {
			missing = append(missing, rec.ActivityID)
			if len(missing) == detailBatchSize {
				break
			}
		} else if err != nil {
			return fmt.Errorf("checking details for %d: %w", rec.ActivityID, err)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "details", Total: len(missing)}
	}

	for i, activityID := range missing {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:     "details",
				Total:     len(missing),
				Completed: i,
				Current:   fmt.Sprintf("activity %d", activityID),
			}
		}

		raw, err := s.garmin.GetActivityDetails(ctx, activityID)
		if err != nil {
			// Some activities have no telemetry; keep going.
			result.Errors = append(result.Errors, fmt.Errorf("details for %d: %w", activityID, err))
			continue
		}

		rec := &store.ActivityRecord{
			ActivityID:   activityID,
			EndpointName: store.EndpointDetails,
			RawJSON:      raw,
			SyncedAt:     time.Now().UTC(),
		}
		if err := s.store.UpsertActivityRecord(rec); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing details for %d: %w", activityID, err))
			continue
		}
		result.DetailsFetched++
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "details", Total: len(missing), Completed: len(missing)}
	}

	return nil
}

// syncWorkouts fetches every workout document from the set logger.
func (s *SyncService) syncWorkouts(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	if progress != nil {
		progress <- SyncProgress{Phase: "workouts"}
	}

	workouts, err := s.hevy.GetAllWorkouts(ctx, func(fetched int) {
		if progress != nil {
			progress <- SyncProgress{Phase: "workouts", Total: fetched, Completed: fetched}
		}
	})
	if err != nil {
		return fmt.Errorf("fetching workouts: %w", err)
	}

	now := time.Now().UTC()
	for _, w := range workouts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.store.UpsertWorkout(&store.Workout{
			WorkoutID: w.ID,
			RawJSON:   w.Raw,
			SyncedAt:  now,
		}); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing workout %s: %w", w.ID, err))
			continue
		}
		result.WorkoutsStored++
	}

	s.store.SetSyncState("last_workout_sync", time.Now().Format(time.RFC3339))

	return nil
}

// WorkoutCount reports how many workout documents the lake already holds.
func (s *SyncService) WorkoutCount() (int, error) {
	return s.store.CountWorkouts()
}

// RateLimitStatus returns the activity platform's current rate limit
// status, or zeros when no client is configured.
func (s *SyncService) RateLimitStatus() (minuteRemaining, dailyRemaining int) {
	if s.garmin == nil {
		return 0, 0
	}
	return s.garmin.RateLimitStatus()
}
