package outlier

import (
	"strings"
	"testing"
	"time"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd length", []float64{4, 1, 3}, 3},
		{"even length", []float64{4, 1, 3, 2}, 2.5},
		{"empty", nil, 0},
		{"single", []float64{7}, 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Median(tc.values); got != tc.want {
				t.Errorf("Median(%v) = %v, want %v", tc.values, got, tc.want)
			}
		})
	}
}

// history builds a time-ordered run of normal sets with the given weights,
// all at the given rep count.
func history(weights []float64, reps int) []SetRecord {
	base := time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC)
	sets := make([]SetRecord, len(weights))
	for i, w := range weights {
		sets[i] = SetRecord{
			WorkoutID: "w1",
			SetIndex:  i,
			Date:      base.Add(time.Duration(i) * 3 * time.Minute),
			Weight:    w,
			Reps:      reps,
			SetType:   SetTypeNormal,
		}
	}
	return sets
}

func TestAnalyze_ExtraDigitWeight(t *testing.T) {
	weights := []float64{10, 10, 10, 10, 10, 10, 100, 10, 10, 10, 10, 10}
	report := Analyze("Bench Press", history(weights, 8))
	if report == nil {
		t.Fatal("expected a report")
	}
	if report.OutlierCount() != 1 {
		t.Fatalf("got %d findings, want 1: %+v", report.OutlierCount(), report.Findings)
	}

	f := report.Findings[0]
	if f.Flag != FlagWeightHigh {
		t.Errorf("flag = %q, want weight_high", f.Flag)
	}
	if f.SuggestedValue != 10.0 {
		t.Errorf("suggested = %v, want 10.0 (weight/10)", f.SuggestedValue)
	}
	if f.LocalMedianWeight == nil || *f.LocalMedianWeight != 10.0 {
		t.Errorf("local median = %v, want 10.0", f.LocalMedianWeight)
	}
	if !strings.Contains(f.Reason, "extra digit") {
		t.Errorf("reason %q should name the extra-digit cause", f.Reason)
	}
}

func TestAnalyze_PoundsEnteredAsKilograms(t *testing.T) {
	weights := []float64{45.3, 45.3, 45.3, 45.3, 45.3, 45.3, 100, 45.3, 45.3, 45.3, 45.3, 45.3}
	report := Analyze("Squat", history(weights, 5))
	if report == nil || report.OutlierCount() != 1 {
		t.Fatalf("expected exactly one finding, got %+v", report)
	}

	f := report.Findings[0]
	if f.Flag != FlagWeightHigh {
		t.Errorf("flag = %q, want weight_high", f.Flag)
	}
	// 100 / 2.205 = 45.35..., rounded to one decimal.
	if f.SuggestedValue != 45.4 {
		t.Errorf("suggested = %v, want 45.4", f.SuggestedValue)
	}
	if !strings.Contains(f.Reason, "pounds entered as kilograms") {
		t.Errorf("reason %q should name the unit-conversion cause", f.Reason)
	}
}

func TestAnalyze_RatioThreeIsStrict(t *testing.T) {
	// Local median 10: a set at exactly 30 (ratio 3.0) is clean, 30.1 is not.
	clean := []float64{10, 10, 10, 10, 10, 10, 30, 10, 10, 10, 10, 10}
	if report := Analyze("Row", history(clean, 8)); report.OutlierCount() != 0 {
		t.Errorf("ratio 3.0 must not be flagged, got %+v", report.Findings)
	}

	flagged := []float64{10, 10, 10, 10, 10, 10, 30.1, 10, 10, 10, 10, 10}
	report := Analyze("Row", history(flagged, 8))
	if report.OutlierCount() != 1 {
		t.Fatalf("ratio 3.01 must be flagged, got %d findings", report.OutlierCount())
	}
	// Outside every cause band the suggestion falls back to the local median.
	if report.Findings[0].SuggestedValue != 10.0 {
		t.Errorf("suggested = %v, want local median 10.0", report.Findings[0].SuggestedValue)
	}
}

func TestAnalyze_MinNeighborGuard(t *testing.T) {
	// Five sets means at most four neighbors each: no local medians, no
	// weight flags, even for an absurd value.
	weights := []float64{10, 10, 1000, 10, 10}
	report := Analyze("Deadlift", history(weights, 5))
	if report == nil {
		t.Fatal("expected a report")
	}
	if report.OutlierCount() != 0 {
		t.Errorf("no set should be flagged with too few neighbors, got %+v", report.Findings)
	}
	for i, p := range report.Chart {
		if p.LocalMedian != nil {
			t.Errorf("chart point %d has local median %v, want nil", i, *p.LocalMedian)
		}
	}
}

func TestAnalyze_RepOutlier(t *testing.T) {
	sets := history([]float64{50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50, 50}, 8)
	sets[6].Reps = 80 // ratio 10 vs the global median 8

	report := Analyze("Curl", sets)
	if report.OutlierCount() != 1 {
		t.Fatalf("got %d findings, want 1", report.OutlierCount())
	}
	f := report.Findings[0]
	if f.Flag != FlagRepsHigh {
		t.Errorf("flag = %q, want reps_high", f.Flag)
	}
	if f.SuggestedValue != 8 {
		t.Errorf("suggested = %v, want 8 (reps/10)", f.SuggestedValue)
	}
}

func TestAnalyze_RepCheckNeedsTenSets(t *testing.T) {
	sets := history([]float64{50, 50, 50, 50, 50, 50, 50, 50, 50}, 8)
	sets[4].Reps = 80

	report := Analyze("Curl", sets)
	if report.OutlierCount() != 0 {
		t.Errorf("rep check needs at least 10 sets, got %+v", report.Findings)
	}
}

func TestAnalyze_WeightFlagSuppressesRepFlag(t *testing.T) {
	sets := history([]float64{10, 10, 10, 10, 10, 10, 100, 10, 10, 10, 10, 10}, 8)
	sets[6].Reps = 80 // also 10x the rep median

	report := Analyze("Press", sets)
	if report.OutlierCount() != 1 {
		t.Fatalf("one underlying entry error must yield one finding, got %d", report.OutlierCount())
	}
	if report.Findings[0].Flag != FlagWeightHigh {
		t.Errorf("flag = %q, want the weight flag to win", report.Findings[0].Flag)
	}
}

func TestAnalyze_WarmupSetsExcluded(t *testing.T) {
	sets := history([]float64{10, 10, 10, 10, 10, 10, 100, 10, 10, 10, 10, 10}, 8)
	sets[6].SetType = SetTypeWarmup

	report := Analyze("Bench Press", sets)
	if report.TotalSets != 11 {
		t.Errorf("total sets = %d, want 11 normal sets", report.TotalSets)
	}
	if report.OutlierCount() != 0 {
		t.Errorf("warmup sets must not participate, got %+v", report.Findings)
	}
}

func TestAnalyze_NoNormalSets(t *testing.T) {
	sets := history([]float64{10, 10}, 5)
	for i := range sets {
		sets[i].SetType = SetTypeWarmup
	}
	if report := Analyze("Stretch", sets); report != nil {
		t.Errorf("exercise with no normal sets should be skipped, got %+v", report)
	}
}

func TestAnalyzeAll(t *testing.T) {
	dirty := history([]float64{10, 10, 10, 10, 10, 10, 100, 10, 10, 10, 10, 10}, 8)
	clean := history([]float64{60, 60, 60, 60, 60, 60, 60, 60}, 5)

	reports := AnalyzeAll(map[string][]SetRecord{
		"Bench Press": dirty,
		"Squat":       clean,
	})

	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1 (clean exercises omitted)", len(reports))
	}
	if reports[0].Exercise != "Bench Press" {
		t.Errorf("report exercise = %q", reports[0].Exercise)
	}
}
