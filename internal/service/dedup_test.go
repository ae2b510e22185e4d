package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"fitlake/internal/dedup"
	"fitlake/internal/store"
)

// fakeDeleter records remote delete and rename calls and returns scripted
// outcomes.
type fakeDeleter struct {
	calls []int64
	err   error
	block bool

	renames   []renameCall
	renameErr error
}

type renameCall struct {
	activityID int64
	name       string
}

func (f *fakeDeleter) DeleteActivity(ctx context.Context, activityID int64) error {
	f.calls = append(f.calls, activityID)
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakeDeleter) SetActivityName(ctx context.Context, activityID int64, name string) error {
	f.renames = append(f.renames, renameCall{activityID: activityID, name: name})
	return f.renameErr
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenTest()
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedSummary(t *testing.T, st *store.Store, id int64, name, startLocal string, duration float64) {
	t.Helper()
	doc := fmt.Sprintf(`{"activityId":%d,"activityName":%q,"startTimeLocal":%q,"duration":%v,"calories":100,"activityType":{"typeId":1,"typeKey":"running"}}`,
		id, name, startLocal, duration)
	rec := &store.ActivityRecord{
		ActivityID:   id,
		EndpointName: store.EndpointSummary,
		RawJSON:      []byte(doc),
		SyncedAt:     time.Now().UTC(),
	}
	if err := st.UpsertActivityRecord(rec); err != nil {
		t.Fatal(err)
	}
}

func seedDetail(t *testing.T, st *store.Store, id int64, endpoint string) {
	t.Helper()
	rec := &store.ActivityRecord{
		ActivityID:   id,
		EndpointName: endpoint,
		RawJSON:      []byte(`{}`),
		SyncedAt:     time.Now().UTC(),
	}
	if err := st.UpsertActivityRecord(rec); err != nil {
		t.Fatal(err)
	}
}

func TestFindDuplicates(t *testing.T) {
	st := newTestStore(t)
	seedSummary(t, st, 100, "Run A", "2026-03-01 08:00:00", 1800)
	seedSummary(t, st, 200, "Run B", "2026-03-01 08:10:00", 1800)
	seedSummary(t, st, 300, "Evening Ride", "2026-03-05 19:00:00", 3600)
	seedDetail(t, st, 200, store.EndpointDetails)
	seedDetail(t, st, 200, "hr_zones")

	svc := NewDedupService(st, nil, time.Second)
	pairs, err := svc.FindDuplicates(context.Background())
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}

	p := pairs[0]
	if p.A.ActivityID != 100 || p.B.ActivityID != 200 {
		t.Errorf("pair = (%d, %d), want (100, 200)", p.A.ActivityID, p.B.ActivityID)
	}
	if p.B.DetailCount != 2 {
		t.Errorf("B detail count = %d, want 2", p.B.DetailCount)
	}
	if p.RicherSide() != dedup.SideB {
		t.Error("side B holds the detail records and should be preselected")
	}
}

func TestResolveMerge(t *testing.T) {
	st := newTestStore(t)
	seedSummary(t, st, 100, "Run A", "2026-03-01 08:00:00", 1800)
	seedSummary(t, st, 200, "Run B", "2026-03-01 08:10:00", 1750)
	seedDetail(t, st, 100, store.EndpointDetails)

	remote := &fakeDeleter{}
	svc := NewDedupService(st, remote, time.Second)

	// Survivor 200 (side B) takes the name from side A.
	outcome, err := svc.ResolveMerge(context.Background(), 200, 100, dedup.Decision{
		dedup.FieldName: dedup.SideA,
	})
	if err != nil {
		t.Fatalf("ResolveMerge: %v", err)
	}

	if !outcome.SurvivorUpdated || !outcome.LoserDeletedLocally || !outcome.LoserDeletedRemotely {
		t.Errorf("outcome = %+v, want full success", outcome)
	}
	if outcome.RemoteError != "" {
		t.Errorf("remote error = %q, want none", outcome.RemoteError)
	}
	if len(remote.calls) != 1 || remote.calls[0] != 100 {
		t.Errorf("remote delete calls = %v, want [100]", remote.calls)
	}

	// The survivor took the loser's name, so the platform record gets it too.
	if !outcome.SurvivorRenamedRemotely {
		t.Error("merged name should be pushed to the platform")
	}
	want := renameCall{activityID: 200, name: "Run A"}
	if len(remote.renames) != 1 || remote.renames[0] != want {
		t.Errorf("remote renames = %v, want [%v]", remote.renames, want)
	}

	// Survivor carries the merged name.
	rec, err := st.GetActivityRecord(200, store.EndpointSummary)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(rec.RawJSON, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["activityName"] != "Run A" {
		t.Errorf("merged name = %v, want Run A", doc["activityName"])
	}

	// Loser's records are gone locally.
	if records, _ := st.GetActivityRecords(100); len(records) != 0 {
		t.Errorf("loser still has %d records", len(records))
	}
}

func TestResolveMerge_RemoteFailureIsData(t *testing.T) {
	st := newTestStore(t)
	seedSummary(t, st, 1, "A", "2026-03-01 08:00:00", 600)
	seedSummary(t, st, 2, "B", "2026-03-01 08:05:00", 600)

	remote := &fakeDeleter{err: errors.New("platform says no")}
	svc := NewDedupService(st, remote, time.Second)

	outcome, err := svc.ResolveMerge(context.Background(), 1, 2, dedup.Decision{})
	if err != nil {
		t.Fatalf("remote failure must not fail the merge: %v", err)
	}
	if !outcome.SurvivorUpdated || !outcome.LoserDeletedLocally {
		t.Errorf("local outcome = %+v, want success", outcome)
	}
	if outcome.LoserDeletedRemotely {
		t.Error("remote deletion should be reported as failed")
	}
	if outcome.RemoteError == "" {
		t.Error("remote error should be captured")
	}
	if len(remote.renames) != 0 {
		t.Errorf("no name was merged, but renames = %v", remote.renames)
	}
}

func TestResolveMerge_RenameFailureIsData(t *testing.T) {
	st := newTestStore(t)
	seedSummary(t, st, 1, "Lunch Walk", "2026-03-01 08:00:00", 600)
	seedSummary(t, st, 2, "Untitled", "2026-03-01 08:05:00", 600)

	remote := &fakeDeleter{renameErr: errors.New("rename rejected")}
	svc := NewDedupService(st, remote, time.Second)

	outcome, err := svc.ResolveMerge(context.Background(), 2, 1, dedup.Decision{
		dedup.FieldName: dedup.SideA,
	})
	if err != nil {
		t.Fatalf("rename failure must not fail the merge: %v", err)
	}
	if !outcome.LoserDeletedRemotely {
		t.Error("deletion succeeded and should be reported as such")
	}
	if outcome.SurvivorRenamedRemotely {
		t.Error("failed rename must not be reported as success")
	}
	if outcome.RemoteError == "" {
		t.Error("rename failure should be captured as the remote error")
	}
}

func TestResolveMerge_RemoteTimeout(t *testing.T) {
	st := newTestStore(t)
	seedSummary(t, st, 1, "A", "2026-03-01 08:00:00", 600)
	seedSummary(t, st, 2, "B", "2026-03-01 08:05:00", 600)

	remote := &fakeDeleter{block: true}
	svc := NewDedupService(st, remote, 10*time.Millisecond)

	outcome, err := svc.ResolveMerge(context.Background(), 1, 2, dedup.Decision{})
	if err != nil {
		t.Fatalf("remote timeout must not fail the merge: %v", err)
	}
	if outcome.LoserDeletedRemotely {
		t.Error("timed-out remote deletion must not be reported as success")
	}
	if outcome.RemoteError == "" {
		t.Error("timeout should be captured as the remote error")
	}
}

func TestResolveMerge_Preconditions(t *testing.T) {
	st := newTestStore(t)
	seedSummary(t, st, 1, "A", "2026-03-01 08:00:00", 600)
	svc := NewDedupService(st, &fakeDeleter{}, time.Second)
	ctx := context.Background()

	cases := []struct {
		name     string
		survivor int64
		loser    int64
		decision dedup.Decision
	}{
		{"same ids", 1, 1, dedup.Decision{}},
		{"zero survivor", 0, 1, dedup.Decision{}},
		{"zero loser", 1, 0, dedup.Decision{}},
		{"unknown field", 1, 2, dedup.Decision{"elevation": dedup.SideA}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ResolveMerge(ctx, tc.survivor, tc.loser, tc.decision)
			if !errors.Is(err, ErrInvalidMerge) {
				t.Errorf("err = %v, want ErrInvalidMerge", err)
			}
		})
	}

	// Precondition failures must not mutate anything.
	if records, _ := st.GetActivityRecords(1); len(records) != 1 {
		t.Errorf("activity 1 has %d records after rejected merges, want 1", len(records))
	}
}

func TestResolveMerge_SurvivorNotFound(t *testing.T) {
	st := newTestStore(t)
	seedSummary(t, st, 2, "B", "2026-03-01 08:05:00", 600)
	svc := NewDedupService(st, &fakeDeleter{}, time.Second)

	_, err := svc.ResolveMerge(context.Background(), 1, 2, dedup.Decision{})
	if !errors.Is(err, store.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}

	// The loser must remain untouched.
	if _, err := st.GetActivityRecord(2, store.EndpointSummary); err != nil {
		t.Errorf("loser summary should still exist: %v", err)
	}
}
