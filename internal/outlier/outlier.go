package outlier

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Set types as logged by the workout platform.
const (
	SetTypeNormal = "normal"
	SetTypeWarmup = "warmup"
)

// Tuning constants. The window radius and neighbor floor reflect roughly
// one training session's worth of sets on each side; the ratio bands target
// specific common data-entry mistakes and are heuristics, not derivations.
const (
	windowRadius = 10
	minNeighbors = 5

	weightRatioLimit   = 3.0
	repRatioLimit      = 5.0
	minSetsForRepCheck = 10

	digitBandLow  = 8.0
	digitBandHigh = 12.0

	lbsAsKgBandLow  = 1.8
	lbsAsKgBandHigh = 2.8

	kgAsLbsBandLow  = 0.35
	kgAsLbsBandHigh = 0.55

	lbsPerKg = 2.205
)

// SetRecord is one performed set, extracted fresh from the raw workout
// documents on every analysis run. The composite (WorkoutID, ExerciseIndex,
// SetIndex) identifies it; there is no independent set identity.
type SetRecord struct {
	WorkoutID     string
	ExerciseIndex int
	SetIndex      int
	Date          time.Time
	Weight        float64 // kg
	Reps          int
	SetType       string
}

// Flag classifies an anomaly.
type Flag string

const (
	FlagWeightHigh Flag = "weight_high"
	FlagWeightLow  Flag = "weight_low"
	FlagRepsHigh   Flag = "reps_high"
)

// Finding is one flagged set with the evidence behind the flag.
type Finding struct {
	Set               SetRecord
	Flag              Flag
	LocalMedianWeight *float64
	GlobalMedianReps  float64
	SuggestedValue    float64
	Reason            string
}

// ChartPoint is one normal set with its local baseline, for plotting the
// exercise history with outliers marked.
type ChartPoint struct {
	Date        time.Time
	Weight      float64
	LocalMedian *float64
	IsOutlier   bool
}

// Report summarizes one exercise's outlier analysis.
type Report struct {
	Exercise         string
	TotalSets        int
	GlobalMedianReps float64
	Findings         []Finding
	Chart            []ChartPoint
}

// OutlierCount returns the number of flagged sets.
func (r *Report) OutlierCount() int {
	return len(r.Findings)
}

// Analyze scans one exercise's full set history, time-ordered, and flags
// weight and rep anomalies. Only normal sets participate; an exercise with
// no normal sets yields nil. The computation is a pure batch pass with no
// state between runs.
func Analyze(exercise string, sets []SetRecord) *Report {
	normal := make([]SetRecord, 0, len(sets))
	for _, s := range sets {
		if s.SetType == SetTypeNormal {
			normal = append(normal, s)
		}
	}
	if len(normal) == 0 {
		return nil
	}

	weights := make([]float64, len(normal))
	for i, s := range normal {
		weights[i] = s.Weight
	}

	var positiveReps []float64
	for _, s := range normal {
		if s.Reps > 0 {
			positiveReps = append(positiveReps, float64(s.Reps))
		}
	}
	globalMedianReps := Median(positiveReps)

	report := &Report{
		Exercise:         exercise,
		TotalSets:        len(normal),
		GlobalMedianReps: round1(globalMedianReps),
	}

	for i, s := range normal {
		lm := localMedian(weights, i)

		flagged := false
		if lm != nil && *lm > 0 && s.Weight > 0 {
			if f, ok := weightFinding(s, *lm); ok {
				f.GlobalMedianReps = report.GlobalMedianReps
				report.Findings = append(report.Findings, f)
				flagged = true
			}
		}

		// A weight flag already explains the row; a second rep flag for
		// the same entry error would just duplicate it.
		if !flagged && len(normal) >= minSetsForRepCheck && globalMedianReps > 0 && s.Reps > 0 {
			if f, ok := repFinding(s, globalMedianReps); ok {
				f.LocalMedianWeight = lm
				report.Findings = append(report.Findings, f)
				flagged = true
			}
		}

		report.Chart = append(report.Chart, ChartPoint{
			Date:        s.Date,
			Weight:      s.Weight,
			LocalMedian: lm,
			IsOutlier:   flagged,
		})
	}

	return report
}

// AnalyzeAll runs Analyze per exercise and returns only exercises with at
// least one finding, sorted by descending outlier count.
func AnalyzeAll(setsByExercise map[string][]SetRecord) []*Report {
	var reports []*Report
	for exercise, sets := range setsByExercise {
		r := Analyze(exercise, sets)
		if r == nil || r.OutlierCount() == 0 {
			continue
		}
		reports = append(reports, r)
	}

	sort.Slice(reports, func(i, j int) bool {
		if reports[i].OutlierCount() != reports[j].OutlierCount() {
			return reports[i].OutlierCount() > reports[j].OutlierCount()
		}
		return reports[i].Exercise < reports[j].Exercise
	})

	return reports
}

// localMedian computes the median of strictly-positive neighbor weights in
// the window [i-windowRadius, i+windowRadius], excluding position i.
// Returns nil when fewer than minNeighbors qualify: too few neighbors makes
// any ratio statistically meaningless.
func localMedian(weights []float64, i int) *float64 {
	lo := i - windowRadius
	if lo < 0 {
		lo = 0
	}
	hi := i + windowRadius
	if hi > len(weights)-1 {
		hi = len(weights) - 1
	}

	var neighbors []float64
	for j := lo; j <= hi; j++ {
		if j == i {
			continue
		}
		if weights[j] > 0 {
			neighbors = append(neighbors, weights[j])
		}
	}
	if len(neighbors) < minNeighbors {
		return nil
	}

	m := Median(neighbors)
	return &m
}

// weightFinding tests one set's weight against its local median. A set is
// flagged when the ratio is extreme (strictly above 3x or below 1/3x) or
// when it lands in one of the known entry-error bands, which also name the
// likely cause. First matching band wins.
func weightFinding(s SetRecord, lm float64) (Finding, bool) {
	ratio := s.Weight / lm

	var suggested float64
	var reason string
	switch {
	case ratio >= digitBandLow && ratio <= digitBandHigh:
		suggested = s.Weight / 10
		reason = fmt.Sprintf("weight %.1fkg is ~%.1fx the local median %.1fkg; looks like an extra digit", s.Weight, ratio, lm)
	case ratio >= lbsAsKgBandLow && ratio <= lbsAsKgBandHigh:
		suggested = s.Weight / lbsPerKg
		reason = fmt.Sprintf("weight %.1fkg is ~%.1fx the local median %.1fkg; looks like pounds entered as kilograms", s.Weight, ratio, lm)
	case ratio >= kgAsLbsBandLow && ratio <= kgAsLbsBandHigh:
		suggested = s.Weight * lbsPerKg
		reason = fmt.Sprintf("weight %.1fkg is ~%.2fx the local median %.1fkg; looks like kilograms entered as pounds", s.Weight, ratio, lm)
	case ratio > weightRatioLimit || ratio < 1/weightRatioLimit:
		suggested = lm
		reason = fmt.Sprintf("weight %.1fkg is far from the local median %.1fkg", s.Weight, lm)
	default:
		return Finding{}, false
	}

	flag := FlagWeightLow
	if ratio > 1 {
		flag = FlagWeightHigh
	}

	rounded := round1(lm)
	return Finding{
		Set:               s,
		Flag:              flag,
		LocalMedianWeight: &rounded,
		SuggestedValue:    round1(suggested),
		Reason:            reason,
	}, true
}

// repFinding tests one set's rep count against the exercise's global
// median.
func repFinding(s SetRecord, globalMedian float64) (Finding, bool) {
	ratio := float64(s.Reps) / globalMedian
	if ratio <= repRatioLimit {
		return Finding{}, false
	}

	var suggested float64
	var reason string
	if ratio >= digitBandLow && ratio <= digitBandHigh {
		suggested = math.Round(float64(s.Reps) / 10)
		reason = fmt.Sprintf("%d reps is ~%.1fx the usual %.1f; looks like an extra digit", s.Reps, ratio, globalMedian)
	} else {
		suggested = globalMedian
		reason = fmt.Sprintf("%d reps is far above the usual %.1f", s.Reps, globalMedian)
	}

	return Finding{
		Set:              s,
		Flag:             FlagRepsHigh,
		GlobalMedianReps: round1(globalMedian),
		SuggestedValue:   round1(suggested),
		Reason:           reason,
	}, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
