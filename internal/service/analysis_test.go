package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"fitlake/internal/store"
)

func seedWorkout(t *testing.T, st *store.Store, id string, doc string) {
	t.Helper()
	if err := st.UpsertWorkout(&store.Workout{
		WorkoutID: id,
		RawJSON:   []byte(doc),
		SyncedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}
}

// benchWorkout builds a workout document with the given bench press
// weights as normal sets.
func benchWorkout(id, start string, weights []float64) string {
	sets := ""
	for i, w := range weights {
		if i > 0 {
			sets += ","
		}
		sets += fmt.Sprintf(`{"type":"normal","weight_kg":%v,"reps":8}`, w)
	}
	return fmt.Sprintf(`{
		"id": %q,
		"title": "Push Day",
		"start_time": %q,
		"end_time": "2026-03-01T19:00:00Z",
		"exercises": [{"title": "Bench Press", "sets": [%s]}]
	}`, id, start, sets)
}

func TestFindOutliers(t *testing.T) {
	st := newTestStore(t)
	// Two sessions; the second contains an extra-digit entry.
	seedWorkout(t, st, "w1", benchWorkout("w1", "2026-02-20T18:00:00Z", []float64{60, 60, 60, 60, 60, 60}))
	seedWorkout(t, st, "w2", benchWorkout("w2", "2026-02-27T18:00:00Z", []float64{60, 600, 60, 60, 60, 60}))

	svc := NewAnalysisService(st)
	reports, err := svc.FindOutliers(context.Background(), "")
	if err != nil {
		t.Fatalf("FindOutliers: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}

	r := reports[0]
	if r.Exercise != "Bench Press" {
		t.Errorf("exercise = %q", r.Exercise)
	}
	if r.OutlierCount() != 1 {
		t.Fatalf("got %d findings, want 1", r.OutlierCount())
	}

	f := r.Findings[0]
	if f.Set.WorkoutID != "w2" || f.Set.SetIndex != 1 {
		t.Errorf("flagged set = (%s, %d), want (w2, 1)", f.Set.WorkoutID, f.Set.SetIndex)
	}
	if f.SuggestedValue != 60 {
		t.Errorf("suggested = %v, want 60", f.SuggestedValue)
	}
}

func TestFindOutliers_ExerciseFilter(t *testing.T) {
	st := newTestStore(t)
	seedWorkout(t, st, "w1", benchWorkout("w1", "2026-02-20T18:00:00Z", []float64{60, 600, 60, 60, 60, 60, 60, 60, 60, 60, 60, 60}))

	svc := NewAnalysisService(st)

	reports, err := svc.FindOutliers(context.Background(), "Squat")
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 0 {
		t.Errorf("unknown exercise should produce no reports, got %d", len(reports))
	}

	reports, err = svc.FindOutliers(context.Background(), "Bench Press")
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Errorf("named exercise should produce its report, got %d", len(reports))
	}
}

func TestExerciseNames(t *testing.T) {
	st := newTestStore(t)
	seedWorkout(t, st, "w1", `{
		"id": "w1",
		"start_time": "2026-02-20T18:00:00Z",
		"end_time": "2026-02-20T19:00:00Z",
		"exercises": [
			{"title": "Squat", "sets": [{"type":"normal","weight_kg":100,"reps":5}]},
			{"title": "Bench Press", "sets": [{"type":"normal","weight_kg":60,"reps":8}]}
		]
	}`)

	svc := NewAnalysisService(st)
	names, err := svc.ExerciseNames(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "Bench Press" || names[1] != "Squat" {
		t.Errorf("names = %v, want alphabetical [Bench Press, Squat]", names)
	}
}

func TestSynthesizeWorkoutTimeline(t *testing.T) {
	st := newTestStore(t)
	seedWorkout(t, st, "w1", `{
		"id": "w1",
		"start_time": "2026-02-20T18:00:00Z",
		"end_time": "2026-02-20T18:30:00Z",
		"exercises": [
			{"title": "Squat", "sets": [
				{"type":"warmup","weight_kg":60,"reps":5},
				{"type":"normal","weight_kg":100,"reps":5}
			]},
			{"title": "Bench Press", "sets": [{"type":"normal","weight_kg":60,"reps":8}]}
		]
	}`)

	svc := NewSeriesService(st)
	segments, err := svc.SynthesizeWorkoutTimeline(context.Background(), "w1")
	if err != nil {
		t.Fatalf("SynthesizeWorkoutTimeline: %v", err)
	}
	if len(segments) == 0 {
		t.Fatal("expected segments")
	}

	last := segments[len(segments)-1]
	if end := last.StartSec + last.DurationSec; math.Abs(end-1800) > 1 {
		t.Errorf("timeline ends at %v, want 1800", end)
	}
}

func TestDecodeActivitySeries(t *testing.T) {
	st := newTestStore(t)
	seedDetail(t, st, 5, store.EndpointSummary)
	if err := st.UpsertActivityRecord(&store.ActivityRecord{
		ActivityID:   5,
		EndpointName: store.EndpointDetails,
		RawJSON: []byte(`{
			"activityId": 5,
			"metricDescriptors": [
				{"metricsIndex": 0, "key": "directTimestamp"},
				{"metricsIndex": 1, "key": "directHeartRate"}
			],
			"activityDetailMetrics": [
				{"metrics": [0, 120]},
				{"metrics": [1000, 125]}
			]
		}`),
		SyncedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}

	svc := NewSeriesService(st)
	points, err := svc.DecodeActivitySeries(context.Background(), 5)
	if err != nil {
		t.Fatalf("DecodeActivitySeries: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}

	curve := HeartRateCurve(points)
	if len(curve) != 2 || curve[1] != 125 {
		t.Errorf("hr curve = %v", curve)
	}
}

func TestWorkoutCount(t *testing.T) {
	st := newTestStore(t)
	svc := NewSyncService(nil, nil, st)

	n, err := svc.WorkoutCount()
	if err != nil {
		t.Fatalf("WorkoutCount: %v", err)
	}
	if n != 0 {
		t.Fatalf("empty lake count = %d, want 0", n)
	}

	seedWorkout(t, st, "w1", benchWorkout("w1", "2026-02-20T18:00:00Z", []float64{60}))
	seedWorkout(t, st, "w2", benchWorkout("w2", "2026-02-27T18:00:00Z", []float64{62.5}))

	n, err = svc.WorkoutCount()
	if err != nil {
		t.Fatalf("WorkoutCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}
