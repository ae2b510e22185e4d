package dedup

import (
	"testing"
	"time"
)

func mkCandidate(id int64, start time.Time, durationSec float64) Candidate {
	return Candidate{ActivityID: id, Start: start, Duration: durationSec}
}

func TestFindDuplicates_OrderingAndSymmetry(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	a := mkCandidate(200, base, 1800)
	b := mkCandidate(100, base.Add(10*time.Minute), 1800)

	// The same pair must come out identically regardless of input order.
	for _, input := range [][]Candidate{{a, b}, {b, a}} {
		pairs := FindDuplicates(input)
		if len(pairs) != 1 {
			t.Fatalf("got %d pairs, want 1", len(pairs))
		}
		if pairs[0].A.ActivityID != 100 || pairs[0].B.ActivityID != 200 {
			t.Errorf("pair ids = (%d, %d), want lower id first (100, 200)",
				pairs[0].A.ActivityID, pairs[0].B.ActivityID)
		}
	}
}

func TestFindDuplicates_SortedByDescendingStart(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	candidates := []Candidate{
		mkCandidate(1, base, 1800),
		mkCandidate(2, base.Add(5*time.Minute), 1800),
		mkCandidate(3, base.Add(48*time.Hour), 1800),
		mkCandidate(4, base.Add(48*time.Hour+time.Minute), 1800),
	}

	pairs := FindDuplicates(candidates)
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	// The more recent conflict (ids 3/4) comes first.
	if pairs[0].A.ActivityID != 3 {
		t.Errorf("first pair A id = %d, want 3", pairs[0].A.ActivityID)
	}
	if pairs[1].A.ActivityID != 1 {
		t.Errorf("second pair A id = %d, want 1", pairs[1].A.ActivityID)
	}
}

func TestFindDuplicates_SixtySecondFloor(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	// Both report zero duration but start 30s apart: the floor makes
	// them overlap.
	a := mkCandidate(1, base, 0)
	b := mkCandidate(2, base.Add(30*time.Second), 0)

	pairs := FindDuplicates([]Candidate{a, b})
	if len(pairs) != 1 {
		t.Fatalf("zero-duration activities 30s apart should overlap, got %d pairs", len(pairs))
	}

	// 90s apart they no longer overlap.
	c := mkCandidate(3, base.Add(90*time.Second), 0)
	pairs = FindDuplicates([]Candidate{a, c})
	if len(pairs) != 0 {
		t.Fatalf("zero-duration activities 90s apart should not overlap, got %d pairs", len(pairs))
	}
}

func TestFindDuplicates_Disjoint(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	candidates := []Candidate{
		mkCandidate(1, base, 600),
		mkCandidate(2, base.Add(time.Hour), 600),
	}
	if pairs := FindDuplicates(candidates); len(pairs) != 0 {
		t.Errorf("disjoint intervals produced %d pairs", len(pairs))
	}
}

func TestFindDuplicates_Empty(t *testing.T) {
	if pairs := FindDuplicates(nil); len(pairs) != 0 {
		t.Errorf("no candidates should produce no pairs, got %d", len(pairs))
	}
}

func TestRicherSide(t *testing.T) {
	p := Pair{
		A: Candidate{ActivityID: 1, DetailCount: 1},
		B: Candidate{ActivityID: 2, DetailCount: 3},
	}
	if p.RicherSide() != SideB {
		t.Error("side with more detail records should be preselected")
	}

	// Tie prefers A.
	p.A.DetailCount = 3
	if p.RicherSide() != SideA {
		t.Error("tie should prefer side A")
	}
}
