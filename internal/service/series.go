package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"fitlake/internal/garmin"
	"fitlake/internal/hevy"
	"fitlake/internal/series"
	"fitlake/internal/store"
)

// SeriesService reconstructs time series from stored raw documents.
type SeriesService struct {
	store *store.Store
}

// NewSeriesService creates a series service
func NewSeriesService(st *store.Store) *SeriesService {
	return &SeriesService{store: st}
}

// DecodeActivitySeries decodes the elapsed-time telemetry for an activity.
// Fails with store.ErrRecordNotFound when no details document exists.
func (s *SeriesService) DecodeActivitySeries(ctx context.Context, activityID int64) ([]series.TimeSeriesPoint, error) {
	details, err := s.loadDetails(activityID)
	if err != nil {
		return nil, err
	}
	return series.DecodeElapsed(details), nil
}

// DecodeActivityPath decodes the decimated GPS path for an activity.
func (s *SeriesService) DecodeActivityPath(ctx context.Context, activityID int64) ([]series.GeoPoint, error) {
	details, err := s.loadDetails(activityID)
	if err != nil {
		return nil, err
	}
	return series.DecodeGeo(details), nil
}

// SynthesizeWorkoutTimeline estimates a set/rest timeline for a stored
// workout from its known total duration and ordered set list.
func (s *SeriesService) SynthesizeWorkoutTimeline(ctx context.Context, workoutID string) ([]series.TimelineSegment, error) {
	stored, err := s.store.GetWorkout(workoutID)
	if err != nil {
		return nil, fmt.Errorf("loading workout: %w", err)
	}

	var w hevy.Workout
	if err := json.Unmarshal(stored.RawJSON, &w); err != nil {
		return nil, fmt.Errorf("decoding workout document: %w", err)
	}

	var sets []series.PlannedSet
	for _, exercise := range w.Exercises {
		for si, set := range exercise.Sets {
			sets = append(sets, series.PlannedSet{
				Exercise: exercise.Title,
				SetType:  set.Type,
				SetIndex: si,
			})
		}
	}

	total := w.EndTime.Sub(w.StartTime).Seconds()
	return series.Synthesize(sets, total), nil
}

// HeartRateCurve flattens decoded points into a plottable heart rate
// series, skipping samples without a reading.
func HeartRateCurve(points []series.TimeSeriesPoint) []float64 {
	var curve []float64
	for _, p := range points {
		if p.HeartRate != nil {
			curve = append(curve, *p.HeartRate)
		}
	}
	return curve
}

// ActivityInfo is the list-view shape for activities with telemetry.
type ActivityInfo struct {
	ActivityID int64
	Name       string
	TypeKey    string
	Start      time.Time
}

// ListDecodableActivities lists activities that have a details document,
// most recent first.
func (s *SeriesService) ListDecodableActivities(ctx context.Context) ([]ActivityInfo, error) {
	records, err := s.store.ListRecordsByEndpoint(store.EndpointDetails)
	if err != nil {
		return nil, fmt.Errorf("listing details records: %w", err)
	}

	infos := make([]ActivityInfo, 0, len(records))
	for _, rec := range records {
		info := ActivityInfo{
			ActivityID: rec.ActivityID,
			Name:       fmt.Sprintf("activity %d", rec.ActivityID),
		}
		if summaryRec, err := s.store.GetActivityRecord(rec.ActivityID, store.EndpointSummary); err == nil {
			if summary, err := garmin.ParseSummary(summaryRec.RawJSON); err == nil {
				info.Name = summary.ActivityName
				info.TypeKey = summary.ActivityType.TypeKey
				if start, err := summary.StartTime(); err == nil {
					info.Start = start
				}
			}
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Start.After(infos[j].Start) })
	return infos, nil
}

// WorkoutInfo is the list-view shape for stored workouts.
type WorkoutInfo struct {
	WorkoutID   string
	Title       string
	Start       time.Time
	DurationSec float64
}

// ListWorkoutInfos lists stored workouts, most recent first. Documents
// that fail to parse are skipped.
func (s *SeriesService) ListWorkoutInfos(ctx context.Context) ([]WorkoutInfo, error) {
	stored, err := s.store.ListWorkouts()
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}

	infos := make([]WorkoutInfo, 0, len(stored))
	for _, rec := range stored {
		var w hevy.Workout
		if err := json.Unmarshal(rec.RawJSON, &w); err != nil {
			continue
		}
		infos = append(infos, WorkoutInfo{
			WorkoutID:   rec.WorkoutID,
			Title:       w.Title,
			Start:       w.StartTime,
			DurationSec: w.EndTime.Sub(w.StartTime).Seconds(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Start.After(infos[j].Start) })
	return infos, nil
}

func (s *SeriesService) loadDetails(activityID int64) (*garmin.Details, error) {
	rec, err := s.store.GetActivityRecord(activityID, store.EndpointDetails)
	if err != nil {
		return nil, fmt.Errorf("loading details record: %w", err)
	}
	details, err := garmin.ParseDetails(rec.RawJSON)
	if err != nil {
		return nil, err
	}
	return details, nil
}
