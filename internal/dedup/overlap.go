package dedup

import (
	"sort"
	"time"
)

// MinIntervalDuration is the floor applied to an activity's duration when
// building its interval. Near-zero-duration records (GPS glitches, manual
// stops) would otherwise never overlap anything.
const MinIntervalDuration = 60 * time.Second

// Candidate is the summary view of one activity that duplicate detection
// works over.
type Candidate struct {
	ActivityID int64
	Name       string
	TypeKey    string
	Start      time.Time
	Duration   float64 // seconds

	// DetailCount is the number of non-summary payload variants stored for
	// this activity, a data-richness signal for picking a merge survivor.
	DetailCount int
}

// Interval returns the candidate's time interval with the duration floor
// applied.
func (c Candidate) Interval() (start, end time.Time) {
	d := time.Duration(c.Duration * float64(time.Second))
	if d < MinIntervalDuration {
		d = MinIntervalDuration
	}
	return c.Start, c.Start.Add(d)
}

// Pair is two candidates whose intervals overlap. A always has the lower
// activity id.
type Pair struct {
	A Candidate
	B Candidate
}

// Overlaps reports whether the two candidates' intervals intersect.
func Overlaps(a, b Candidate) bool {
	aStart, aEnd := a.Interval()
	bStart, bEnd := b.Interval()
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FindDuplicates finds every pair of candidates whose intervals overlap.
// Each overlapping pair appears exactly once with the lower id first,
// regardless of input order. Pairs are sorted with the most recent
// conflicts first. No candidates means no pairs, not an error.
//
// The scan is O(n²) over summaries, which is fine at the scale of a
// personal activity history.
func FindDuplicates(candidates []Candidate) []Pair {
	var pairs []Pair
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			if a.ActivityID == b.ActivityID {
				continue
			}
			if !Overlaps(a, b) {
				continue
			}
			if a.ActivityID > b.ActivityID {
				a, b = b, a
			}
			pairs = append(pairs, Pair{A: a, B: b})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		si, sj := pairStart(pairs[i]), pairStart(pairs[j])
		if !si.Equal(sj) {
			return si.After(sj)
		}
		return pairs[i].A.ActivityID < pairs[j].A.ActivityID
	})

	return pairs
}

// pairStart is the more recent of the two sides' start times.
func pairStart(p Pair) time.Time {
	if p.B.Start.After(p.A.Start) {
		return p.B.Start
	}
	return p.A.Start
}

// RicherSide returns the side ("A" or "B") holding more non-summary
// records, preferring A on a tie. Callers use this to preselect a merge
// survivor; it is a heuristic, not a guarantee.
func (p Pair) RicherSide() Side {
	if p.B.DetailCount > p.A.DetailCount {
		return SideB
	}
	return SideA
}
