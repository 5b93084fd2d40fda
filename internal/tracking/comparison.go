package tracking

import (
	"context"
	"errors"
	"fmt"

	"dermatrack/internal/api"
	"dermatrack/pkg/domain"
)

// ErrInvalidSnapshotOrder is returned when the "previous" snapshot does
// not have a strictly smaller order than the "current" one. The pair is
// never silently swapped; passing them reversed is a caller error and
// fails before any network call.
var ErrInvalidSnapshotOrder = errors.New("previous snapshot must precede current snapshot")

// ErrSnapshotNotFound is returned when a named snapshot does not belong
// to the tracking.
var ErrSnapshotNotFound = errors.New("snapshot does not belong to tracking")

// Compare asks the service to compare two snapshots of one tracking.
// Both snapshots must belong to the tracking and previousID must have a
// strictly smaller server-assigned order than currentID. The remote call
// uses the extended analysis timeout. On success the tracking's cached
// detail is invalidated so the new comparison heads its history.
//
// A high-risk or significant-change result is a signal for the
// presentation layer only; the tracking's status is never transitioned
// here.
func (s *Store) Compare(ctx context.Context, trackingID, previousID, currentID string) (domain.LesionComparison, error) {
	detail, err := s.Get(ctx, trackingID)
	if err != nil {
		return domain.LesionComparison{}, fmt.Errorf("load tracking: %w", err)
	}
	prev, ok := findSnapshot(detail.Snapshots, previousID)
	if !ok {
		return domain.LesionComparison{}, fmt.Errorf("previous %s: %w", previousID, ErrSnapshotNotFound)
	}
	cur, ok := findSnapshot(detail.Snapshots, currentID)
	if !ok {
		return domain.LesionComparison{}, fmt.Errorf("current %s: %w", currentID, ErrSnapshotNotFound)
	}
	if prev.SnapshotOrder >= cur.SnapshotOrder {
		return domain.LesionComparison{}, ErrInvalidSnapshotOrder
	}

	cmp, err := s.service.RequestComparison(ctx, trackingID, api.ComparisonRequest{
		PreviousSnapshotID: previousID,
		CurrentSnapshotID:  currentID,
	})
	if err != nil {
		return domain.LesionComparison{}, err
	}
	s.invalidate(trackingID)
	return cmp, nil
}

// GetComparison fetches one stored comparison.
func (s *Store) GetComparison(ctx context.Context, trackingID, comparisonID string) (domain.LesionComparison, error) {
	return s.service.GetComparison(ctx, trackingID, comparisonID)
}

// UrgentSignal reports whether a comparison result warrants prompting
// the user to mark the tracking urgent. It is advisory only.
func UrgentSignal(cmp domain.LesionComparison) bool {
	if cmp.RiskLevel == domain.RiskHigh {
		return true
	}
	switch cmp.OverallProgression {
	case domain.ProgressionWorsened, domain.ProgressionSignificantChange:
		return true
	default:
		return false
	}
}

func findSnapshot(snapshots []domain.LesionSnapshot, id string) (domain.LesionSnapshot, bool) {
	for _, snap := range snapshots {
		if snap.ID == id {
			return snap, true
		}
	}
	return domain.LesionSnapshot{}, false
}
