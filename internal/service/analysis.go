package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"fitlake/internal/hevy"
	"fitlake/internal/outlier"
	"fitlake/internal/store"
)

// AnalysisService derives outlier reports from the raw workout documents.
// Sets are extracted fresh on every run; the documents stay the source of
// truth.
type AnalysisService struct {
	store *store.Store
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(st *store.Store) *AnalysisService {
	return &AnalysisService{store: st}
}

// FindOutliers analyzes set history per exercise and returns the exercises
// with at least one finding, worst first. A non-empty exerciseName narrows
// the analysis to that exercise.
func (s *AnalysisService) FindOutliers(ctx context.Context, exerciseName string) ([]*outlier.Report, error) {
	setsByExercise, err := s.extractSets(ctx)
	if err != nil {
		return nil, err
	}

	if exerciseName != "" {
		sets, ok := setsByExercise[exerciseName]
		if !ok {
			return nil, nil
		}
		setsByExercise = map[string][]outlier.SetRecord{exerciseName: sets}
	}

	return outlier.AnalyzeAll(setsByExercise), nil
}

// ExerciseNames lists every exercise seen in the lake, alphabetically.
func (s *AnalysisService) ExerciseNames(ctx context.Context) ([]string, error) {
	setsByExercise, err := s.extractSets(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(setsByExercise))
	for name := range setsByExercise {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// extractSets flattens the stored workout documents into per-exercise set
// histories ordered by workout start time, then exercise index, then set
// index. Documents that fail to parse are skipped.
func (s *AnalysisService) extractSets(ctx context.Context) (map[string][]outlier.SetRecord, error) {
	stored, err := s.store.ListWorkouts()
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}

	workouts := make([]hevy.Workout, 0, len(stored))
	for _, w := range stored {
		var parsed hevy.Workout
		if err := json.Unmarshal(w.RawJSON, &parsed); err != nil {
			continue
		}
		if parsed.ID == "" {
			parsed.ID = w.WorkoutID
		}
		workouts = append(workouts, parsed)
	}

	sort.Slice(workouts, func(i, j int) bool {
		return workouts[i].StartTime.Before(workouts[j].StartTime)
	})

	setsByExercise := make(map[string][]outlier.SetRecord)
	for _, w := range workouts {
		for ei, exercise := range w.Exercises {
			for si, set := range exercise.Sets {
				rec := outlier.SetRecord{
					WorkoutID:     w.ID,
					ExerciseIndex: ei,
					SetIndex:      si,
					Date:          w.StartTime,
					SetType:       set.Type,
				}
				if set.WeightKg != nil {
					rec.Weight = *set.WeightKg
				}
				if set.Reps != nil {
					rec.Reps = *set.Reps
				}
				setsByExercise[exercise.Title] = append(setsByExercise[exercise.Title], rec)
			}
		}
	}

	return setsByExercise, nil
}
