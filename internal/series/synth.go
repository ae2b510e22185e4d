package series

// Nominal per-segment durations, in seconds. Warmup sets run lighter and
// shorter than working sets. An exercise change gets the larger rest: the
// standard inter-set rest plus extra time to move between stations.
const (
	nominalSetSeconds          = 40.0
	nominalWarmupSetSeconds    = 25.0
	nominalInterSetRestSeconds = 25.0
	nominalExerciseRestSeconds = 60.0
)

// SegmentKind tags a synthesized segment. Everything this file emits is an
// estimate, never a measurement, and callers must be able to tell.
type SegmentKind string

const (
	SegmentActive SegmentKind = "ACTIVE"
	SegmentWarmup SegmentKind = "WARMUP"
	SegmentRest   SegmentKind = "REST"
)

// PlannedSet is the input shape for timeline synthesis: one performed set
// with its exercise identity and type, in session order.
type PlannedSet struct {
	Exercise string
	SetType  string // "warmup" tags the segment WARMUP
	SetIndex int
}

// TimelineSegment is one synthesized slice of the session.
type TimelineSegment struct {
	Kind        SegmentKind
	Exercise    string
	SetIndex    int
	StartSec    float64
	DurationSec float64
}

// Synthesize reconstructs an approximate set/rest timeline for a session
// that has a known total duration but no direct telemetry. Nominal
// durations are summed across the session and a single uniform scale
// factor stretches every segment so the timeline's total exactly matches
// the true duration.
func Synthesize(sets []PlannedSet, totalDurationSec float64) []TimelineSegment {
	if len(sets) == 0 || totalDurationSec <= 0 {
		return nil
	}

	var segments []TimelineSegment
	for i, set := range sets {
		if i > 0 {
			rest := nominalInterSetRestSeconds
			if set.Exercise != sets[i-1].Exercise {
				rest = nominalExerciseRestSeconds
			}
			segments = append(segments, TimelineSegment{
				Kind:        SegmentRest,
				Exercise:    set.Exercise,
				SetIndex:    -1,
				DurationSec: rest,
			})
		}

		kind, duration := SegmentActive, nominalSetSeconds
		if set.SetType == "warmup" {
			kind, duration = SegmentWarmup, nominalWarmupSetSeconds
		}
		segments = append(segments, TimelineSegment{
			Kind:        kind,
			Exercise:    set.Exercise,
			SetIndex:    set.SetIndex,
			DurationSec: duration,
		})
	}

	var nominalTotal float64
	for _, seg := range segments {
		nominalTotal += seg.DurationSec
	}

	scale := totalDurationSec / nominalTotal
	var cursor float64
	for i := range segments {
		segments[i].StartSec = cursor
		segments[i].DurationSec *= scale
		cursor += segments[i].DurationSec
	}

	return segments
}
