package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitlake/internal/dedup"
	"fitlake/internal/garmin"
	"fitlake/internal/store"
)

// ErrInvalidMerge is returned for malformed merge requests: equal or unset
// ids, or a decision naming unknown fields. Rejected before any mutation.
var ErrInvalidMerge = errors.New("invalid merge request")

// RemoteDeleter deletes an activity on the source platform. The platform's
// outcome is independent of local bookkeeping.
type RemoteDeleter interface {
	DeleteActivity(ctx context.Context, activityID int64) error
}

// RemoteRenamer pushes a merged name to the surviving platform record.
// Detected by assertion on the deleter; a remote without rename support
// just skips the propagation.
type RemoteRenamer interface {
	SetActivityName(ctx context.Context, activityID int64, name string) error
}

// DedupService finds duplicate activities in the lake and resolves merges.
type DedupService struct {
	store         *store.Store
	remote        RemoteDeleter
	remoteTimeout time.Duration
}

// NewDedupService creates a dedup service. remote may be nil when no
// platform client is configured; merges then only touch the local lake.
func NewDedupService(st *store.Store, remote RemoteDeleter, remoteTimeout time.Duration) *DedupService {
	return &DedupService{
		store:         st,
		remote:        remote,
		remoteTimeout: remoteTimeout,
	}
}

// FindDuplicates scans every summary document in the lake for overlapping
// activity pairs. Summary documents that fail boundary parsing are skipped
// rather than failing the whole scan.
func (s *DedupService) FindDuplicates(ctx context.Context) ([]dedup.Pair, error) {
	records, err := s.store.ListRecordsByEndpoint(store.EndpointSummary)
	if err != nil {
		return nil, fmt.Errorf("listing summary records: %w", err)
	}

	candidates := make([]dedup.Candidate, 0, len(records))
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		summary, err := garmin.ParseSummary(rec.RawJSON)
		if err != nil {
			continue
		}
		start, err := summary.StartTime()
		if err != nil {
			continue
		}
		candidates = append(candidates, dedup.Candidate{
			ActivityID: summary.ActivityID,
			Name:       summary.ActivityName,
			TypeKey:    summary.ActivityType.TypeKey,
			Start:      start,
			Duration:   summary.Duration,
		})
		ids = append(ids, summary.ActivityID)
	}

	counts, err := s.store.CountDetailRecords(ids)
	if err != nil {
		return nil, fmt.Errorf("counting detail records: %w", err)
	}
	for i := range candidates {
		candidates[i].DetailCount = counts[candidates[i].ActivityID]
	}

	return dedup.FindDuplicates(candidates), nil
}

// MergeOutcome reports what a merge actually did. The remote deletion may
// fail independently of local state; callers need both outcomes, so remote
// failure is carried here rather than returned as an error.
type MergeOutcome struct {
	SurvivorUpdated bool
	// SurvivorRenamedRemotely is set when the decision took the name from
	// the loser and the new name was pushed to the platform.
	SurvivorRenamedRemotely bool
	LoserDeletedLocally     bool
	LoserDeletedRemotely    bool
	RemoteError             string
}

// ResolveMerge applies a merge decision onto the survivor's summary
// document, deletes the loser's records locally, then attempts the remote
// deletion under a bounded timeout. Precondition violations fail with
// ErrInvalidMerge before anything is mutated; a missing survivor summary
// fails with store.ErrRecordNotFound.
//
// Decision sides are resolved against id order: side A is always the lower
// activity id, matching how pairs are presented.
func (s *DedupService) ResolveMerge(ctx context.Context, survivorID, loserID int64, decision dedup.Decision) (*MergeOutcome, error) {
	if survivorID == 0 || loserID == 0 {
		return nil, fmt.Errorf("%w: both activity ids must be set", ErrInvalidMerge)
	}
	if survivorID == loserID {
		return nil, fmt.Errorf("%w: survivor and loser are the same activity", ErrInvalidMerge)
	}
	if err := decision.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMerge, err)
	}

	survivorRec, err := s.store.GetActivityRecord(survivorID, store.EndpointSummary)
	if err != nil {
		return nil, fmt.Errorf("loading survivor summary: %w", err)
	}
	loserRec, err := s.store.GetActivityRecord(loserID, store.EndpointSummary)
	if err != nil {
		return nil, fmt.Errorf("loading loser summary: %w", err)
	}

	survivorSide := dedup.SideA
	if survivorID > loserID {
		survivorSide = dedup.SideB
	}

	merged, err := dedup.ApplyDecision(survivorRec.RawJSON, loserRec.RawJSON, decision, survivorSide)
	if err != nil {
		return nil, fmt.Errorf("applying merge decision: %w", err)
	}

	outcome := &MergeOutcome{}

	if err := s.store.UpdateActivityRecordJSON(survivorID, store.EndpointSummary, merged); err != nil {
		return nil, fmt.Errorf("persisting merged summary: %w", err)
	}
	outcome.SurvivorUpdated = true

	deleted, err := s.store.DeleteActivityRecords(loserID)
	if err != nil {
		return nil, fmt.Errorf("deleting loser records: %w", err)
	}
	outcome.LoserDeletedLocally = deleted > 0

	// When the merge took the loser's name, the surviving platform record
	// still carries the old one; propagate the merged name.
	renameTo := ""
	if side, ok := decision[dedup.FieldName]; ok && side != survivorSide {
		if summary, err := garmin.ParseSummary(merged); err == nil && summary.ActivityName != "" {
			renameTo = summary.ActivityName
		}
	}

	// Local state is already consistent; the platform's own deletion and
	// rename are best-effort and their failure is data, not an error.
	if s.remote != nil {
		deleteCtx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		err := s.remote.DeleteActivity(deleteCtx, loserID)
		cancel()
		if err != nil {
			outcome.RemoteError = err.Error()
		} else {
			outcome.LoserDeletedRemotely = true
		}

		if renamer, ok := s.remote.(RemoteRenamer); ok && renameTo != "" {
			renameCtx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
			err := renamer.SetActivityName(renameCtx, survivorID, renameTo)
			cancel()
			if err != nil {
				if outcome.RemoteError == "" {
					outcome.RemoteError = err.Error()
				}
			} else {
				outcome.SurvivorRenamedRemotely = true
			}
		}
	}

	return outcome, nil
}
