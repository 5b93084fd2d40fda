// Package tracking owns the longitudinal lesion model on the client:
// trackings, their snapshots, and AI comparisons between snapshots.
//
// Snapshot order is server-assigned; the client only ever reads it from
// create-snapshot responses, so concurrent appends from another device
// stay correct. Like the case store, all reads go through a TTL cache
// that is invalidated on every write.
package tracking

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"dermatrack/internal/api"
	"dermatrack/pkg/domain"
)

const defaultTTL = 30 * time.Second

const listKey = "trackings"

// ErrNameRequired is returned when creating a tracking without a name.
// Validation happens before any network call.
var ErrNameRequired = errors.New("tracking name is required")

// ErrInvalidStatus is returned for an unknown tracking status value.
var ErrInvalidStatus = errors.New("invalid tracking status")

// Service is the slice of the API the store drives.
type Service interface {
	CreateTracking(ctx context.Context, req api.CreateTrackingRequest) (domain.LesionTracking, error)
	ListTrackings(ctx context.Context) ([]domain.LesionTracking, error)
	GetTracking(ctx context.Context, id string) (domain.TrackingDetail, error)
	UpdateTracking(ctx context.Context, id string, req api.UpdateTrackingRequest) (domain.LesionTracking, error)
	DeleteTracking(ctx context.Context, id string) error
	AppendSnapshot(ctx context.Context, trackingID string, req api.AppendSnapshotRequest) (domain.LesionSnapshot, error)
	RequestComparison(ctx context.Context, trackingID string, req api.ComparisonRequest) (domain.LesionComparison, error)
	GetComparison(ctx context.Context, trackingID, comparisonID string) (domain.LesionComparison, error)
}

// Store caches tracking reads and invalidates on every write.
type Store struct {
	service Service
	cache   *cache.Cache
	group   singleflight.Group
}

// New builds a Store with the given cache TTL (0 means the default).
func New(service Service, ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = defaultTTL
	}
	return &Store{
		service: service,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Create starts tracking a lesion. Name must be non-empty; seedCaseID
// optionally points at the case whose first image seeds the tracking.
func (s *Store) Create(ctx context.Context, name, bodyLocation, seedCaseID string) (domain.LesionTracking, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.LesionTracking{}, ErrNameRequired
	}
	tr, err := s.service.CreateTracking(ctx, api.CreateTrackingRequest{
		Name:         name,
		BodyLocation: bodyLocation,
		SeedCaseID:   seedCaseID,
	})
	if err != nil {
		return domain.LesionTracking{}, err
	}
	s.cache.Delete(listKey)
	return tr, nil
}

// List returns all trackings, serving from cache when fresh.
func (s *Store) List(ctx context.Context) ([]domain.LesionTracking, error) {
	if cached, found := s.cache.Get(listKey); found {
		return cached.([]domain.LesionTracking), nil
	}
	v, err, _ := s.group.Do(listKey, func() (any, error) {
		items, err := s.service.ListTrackings(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(listKey, items, cache.DefaultExpiration)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.LesionTracking), nil
}

// Get returns one tracking with its full history: snapshots ascending by
// snapshot order, comparisons most recent first.
func (s *Store) Get(ctx context.Context, id string) (domain.TrackingDetail, error) {
	key := detailKey(id)
	if cached, found := s.cache.Get(key); found {
		return cached.(domain.TrackingDetail), nil
	}
	detail, err := s.service.GetTracking(ctx, id)
	if err != nil {
		return domain.TrackingDetail{}, err
	}
	normalizeDetail(&detail)
	s.cache.Set(key, detail, cache.DefaultExpiration)
	return detail, nil
}

// AppendSnapshot adds one observation. The returned snapshot carries the
// server-assigned order; the client never computes it.
func (s *Store) AppendSnapshot(ctx context.Context, trackingID string, req api.AppendSnapshotRequest) (domain.LesionSnapshot, error) {
	snap, err := s.service.AppendSnapshot(ctx, trackingID, req)
	if err != nil {
		return domain.LesionSnapshot{}, err
	}
	s.invalidate(trackingID)
	return snap, nil
}

// Update edits tracking metadata. Status, when set, must be one of the
// known values; status never changes as a side effect of anything else.
func (s *Store) Update(ctx context.Context, id string, req api.UpdateTrackingRequest) (domain.LesionTracking, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return domain.LesionTracking{}, ErrNameRequired
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.StatusMonitoring, domain.StatusResolved, domain.StatusUrgent:
		default:
			return domain.LesionTracking{}, ErrInvalidStatus
		}
	}
	tr, err := s.service.UpdateTracking(ctx, id, req)
	if err != nil {
		return domain.LesionTracking{}, err
	}
	s.invalidate(id)
	return tr, nil
}

// Delete removes a tracking; the server cascades to its snapshots and
// comparisons. Cases referenced by snapshots are untouched.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.service.DeleteTracking(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *Store) invalidate(id string) {
	s.cache.Delete(detailKey(id))
	s.cache.Delete(listKey)
}

func detailKey(id string) string {
	return "tracking:" + id
}

// normalizeDetail enforces the presentation ordering regardless of how
// the server serialized the history.
func normalizeDetail(detail *domain.TrackingDetail) {
	sort.Slice(detail.Snapshots, func(i, j int) bool {
		return detail.Snapshots[i].SnapshotOrder < detail.Snapshots[j].SnapshotOrder
	})
	orderOf := make(map[string]int, len(detail.Snapshots))
	for _, snap := range detail.Snapshots {
		orderOf[snap.ID] = snap.SnapshotOrder
	}
	sort.Slice(detail.Comparisons, func(i, j int) bool {
		oi, oj := orderOf[detail.Comparisons[i].CurrentSnapshotID], orderOf[detail.Comparisons[j].CurrentSnapshotID]
		if oi != oj {
			return oi > oj
		}
		return detail.Comparisons[i].CreatedAt.After(detail.Comparisons[j].CreatedAt)
	})
}
