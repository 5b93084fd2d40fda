// Package casestore is the client-side read cache over the service's
// case records.
//
// The remote service is the sole source of truth: every mutation issues
// the write and then invalidates, never merges. Reads go through a short
// TTL cache so repeated list renders do not refetch.
package casestore

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"dermatrack/internal/api"
	"dermatrack/pkg/domain"
)

const defaultTTL = 30 * time.Second

const listKey = "cases"

// Service is the slice of the API the store reads and writes through.
type Service interface {
	ListCases(ctx context.Context) ([]domain.Case, error)
	GetCase(ctx context.Context, id string) (domain.Case, error)
	DeleteCase(ctx context.Context, id string) error
	UpdateCase(ctx context.Context, id string, req api.UpdateCaseRequest) (domain.Case, error)
}

// Store caches case reads and invalidates on every write.
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

// List returns all cases, serving from cache when fresh. Concurrent
// fills for the same key share one request.
func (s *Store) List(ctx context.Context) ([]domain.Case, error) {
	if cached, found := s.cache.Get(listKey); found {
		return cached.([]domain.Case), nil
	}
	v, err, _ := s.group.Do(listKey, func() (any, error) {
		cases, err := s.service.ListCases(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(listKey, cases, cache.DefaultExpiration)
		return cases, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Case), nil
}

// Get returns one case by id.
func (s *Store) Get(ctx context.Context, id string) (domain.Case, error) {
	key := caseKey(id)
	if cached, found := s.cache.Get(key); found {
		return cached.(domain.Case), nil
	}
	cs, err := s.service.GetCase(ctx, id)
	if err != nil {
		return domain.Case{}, err
	}
	s.cache.Set(key, cs, cache.DefaultExpiration)
	return cs, nil
}

// Delete removes a case permanently and drops both the entry and the
// list from cache.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.service.DeleteCase(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(caseKey(id))
	s.cache.Delete(listKey)
	return nil
}

// SetClinicianDiagnosis records the clinician-entered diagnosis and
// notes for a case.
func (s *Store) SetClinicianDiagnosis(ctx context.Context, id, diagnosis, notes string) (domain.Case, error) {
	return s.update(ctx, id, api.UpdateCaseRequest{
		ClinicianDiagnosis: &diagnosis,
		ClinicianNotes:     &notes,
	})
}

// SetFavorite flips the favorite flag.
func (s *Store) SetFavorite(ctx context.Context, id string, favorite bool) (domain.Case, error) {
	return s.update(ctx, id, api.UpdateCaseRequest{Favorite: &favorite})
}

// SetNotes replaces the free-text user notes.
func (s *Store) SetNotes(ctx context.Context, id, notes string) (domain.Case, error) {
	return s.update(ctx, id, api.UpdateCaseRequest{Notes: &notes})
}

func (s *Store) update(ctx context.Context, id string, req api.UpdateCaseRequest) (domain.Case, error) {
	cs, err := s.service.UpdateCase(ctx, id, req)
	if err != nil {
		return domain.Case{}, err
	}
	s.cache.Delete(caseKey(id))
	s.cache.Delete(listKey)
	return cs, nil
}

// InvalidateList drops the cached case list; callers that create cases
// outside this store use it so the next List reflects server state.
func (s *Store) InvalidateList() {
	s.cache.Delete(listKey)
}

func caseKey(id string) string {
	return "case:" + id
}
