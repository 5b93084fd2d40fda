package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"dermatrack/internal/api"
	"dermatrack/pkg/domain"
)

type fakeService struct {
	createCalls     int
	listCalls       int
	getCalls        int
	updateCalls     int
	deleteCalls     int
	appendCalls     int
	comparisonCalls int

	detail     domain.TrackingDetail
	nextOrder  int
	comparison domain.LesionComparison
	compareErr error
	lastUpdate api.UpdateTrackingRequest
}

func (s *fakeService) CreateTracking(_ context.Context, req api.CreateTrackingRequest) (domain.LesionTracking, error) {
	s.createCalls++
	return domain.LesionTracking{ID: "t-1", Name: req.Name, BodyLocation: req.BodyLocation, Status: domain.StatusMonitoring}, nil
}

func (s *fakeService) ListTrackings(context.Context) ([]domain.LesionTracking, error) {
	s.listCalls++
	return []domain.LesionTracking{s.detail.Tracking}, nil
}

func (s *fakeService) GetTracking(_ context.Context, id string) (domain.TrackingDetail, error) {
	s.getCalls++
	if id != s.detail.Tracking.ID {
		return domain.TrackingDetail{}, &api.APIError{Status: 404, Message: "not found"}
	}
	return s.detail, nil
}

func (s *fakeService) UpdateTracking(_ context.Context, id string, req api.UpdateTrackingRequest) (domain.LesionTracking, error) {
	s.updateCalls++
	s.lastUpdate = req
	tr := s.detail.Tracking
	if req.Name != nil {
		tr.Name = *req.Name
	}
	if req.Status != nil {
		tr.Status = *req.Status
	}
	s.detail.Tracking = tr
	return tr, nil
}

func (s *fakeService) DeleteTracking(_ context.Context, id string) error {
	s.deleteCalls++
	return nil
}

func (s *fakeService) AppendSnapshot(_ context.Context, trackingID string, req api.AppendSnapshotRequest) (domain.LesionSnapshot, error) {
	s.appendCalls++
	s.nextOrder++
	snap := domain.LesionSnapshot{
		ID:            "s-new",
		TrackingID:    trackingID,
		CaseID:        req.CaseID,
		ImageURLs:     req.ImageURLs,
		SnapshotOrder: s.nextOrder,
		CreatedAt:     time.Now().UTC(),
	}
	s.detail.Snapshots = append(s.detail.Snapshots, snap)
	s.detail.Tracking.SnapshotCount++
	return snap, nil
}

func (s *fakeService) RequestComparison(_ context.Context, trackingID string, req api.ComparisonRequest) (domain.LesionComparison, error) {
	s.comparisonCalls++
	if s.compareErr != nil {
		return domain.LesionComparison{}, s.compareErr
	}
	cmp := s.comparison
	cmp.TrackingID = trackingID
	cmp.PreviousSnapshotID = req.PreviousSnapshotID
	cmp.CurrentSnapshotID = req.CurrentSnapshotID
	return cmp, nil
}

func (s *fakeService) GetComparison(_ context.Context, _, comparisonID string) (domain.LesionComparison, error) {
	return s.comparison, nil
}

func newFakeService() *fakeService {
	return &fakeService{
		detail: domain.TrackingDetail{
			Tracking: domain.LesionTracking{ID: "t-1", Name: "shoulder mole", Status: domain.StatusMonitoring, SnapshotCount: 3},
			Snapshots: []domain.LesionSnapshot{
				{ID: "s-2", TrackingID: "t-1", SnapshotOrder: 2},
				{ID: "s-1", TrackingID: "t-1", SnapshotOrder: 1},
				{ID: "s-3", TrackingID: "t-1", SnapshotOrder: 3},
			},
			Comparisons: []domain.LesionComparison{
				{ID: "c-12", TrackingID: "t-1", PreviousSnapshotID: "s-1", CurrentSnapshotID: "s-2"},
				{ID: "c-23", TrackingID: "t-1", PreviousSnapshotID: "s-2", CurrentSnapshotID: "s-3"},
			},
		},
		nextOrder: 3,
	}
}

func TestCreateRequiresName(t *testing.T) {
	service := newFakeService()
	store := New(service, 0)

	_, err := store.Create(context.Background(), "   ", "left shoulder", "")
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("err = %v, want ErrNameRequired", err)
	}
	if service.createCalls != 0 {
		t.Fatal("validation failure must not reach the network")
	}
}

func TestGetOrdersSnapshotsAndComparisons(t *testing.T) {
	service := newFakeService()
	store := New(service, 0)

	detail, err := store.Get(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i, want := range []int{1, 2, 3} {
		if detail.Snapshots[i].SnapshotOrder != want {
			t.Fatalf("snapshot %d order = %d, want %d", i, detail.Snapshots[i].SnapshotOrder, want)
		}
	}
	// Most recent comparison first: the one whose current snapshot has
	// the highest order.
	if detail.Comparisons[0].ID != "c-23" || detail.Comparisons[1].ID != "c-12" {
		t.Fatalf("comparisons = %+v, want c-23 before c-12", detail.Comparisons)
	}
}

func TestAppendSnapshotUsesServerOrderAndInvalidates(t *testing.T) {
	service := newFakeService()
	store := New(service, 0)
	ctx := context.Background()

	if _, err := store.Get(ctx, "t-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	snap, err := store.AppendSnapshot(ctx, "t-1", api.AppendSnapshotRequest{ImageURLs: []string{"u4"}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if snap.SnapshotOrder != 4 {
		t.Fatalf("order = %d, want server-assigned 4", snap.SnapshotOrder)
	}

	detail, err := store.Get(ctx, "t-1")
	if err != nil {
		t.Fatalf("get after append: %v", err)
	}
	if service.getCalls != 2 {
		t.Fatalf("getCalls = %d, want 2 (detail cache invalidated)", service.getCalls)
	}
	if detail.Tracking.SnapshotCount != 4 {
		t.Fatalf("snapshotCount = %d, want 4", detail.Tracking.SnapshotCount)
	}
}

func TestUpdateValidatesStatus(t *testing.T) {
	service := newFakeService()
	store := New(service, 0)
	bogus := domain.TrackingStatus("archived")

	_, err := store.Update(context.Background(), "t-1", api.UpdateTrackingRequest{Status: &bogus})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if service.updateCalls != 0 {
		t.Fatal("invalid status must not reach the network")
	}
}

func TestUpdateStatusExplicitUserAction(t *testing.T) {
	service := newFakeService()
	store := New(service, 0)
	urgent := domain.StatusUrgent

	tr, err := store.Update(context.Background(), "t-1", api.UpdateTrackingRequest{Status: &urgent})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if tr.Status != domain.StatusUrgent {
		t.Fatalf("status = %q, want urgent", tr.Status)
	}
}

func TestDeleteInvalidatesCaches(t *testing.T) {
	service := newFakeService()
	store := New(service, 0)
	ctx := context.Background()

	if _, err := store.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := store.Delete(ctx, "t-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.List(ctx); err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if service.listCalls != 2 {
		t.Fatalf("listCalls = %d, want 2", service.listCalls)
	}
	if service.deleteCalls != 1 {
		t.Fatalf("deleteCalls = %d, want 1", service.deleteCalls)
	}
}
