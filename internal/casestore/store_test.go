package casestore

import (
	"context"
	"errors"
	"testing"

	"dermatrack/internal/api"
	"dermatrack/pkg/domain"
)

type fakeService struct {
	listCalls   int
	getCalls    int
	deleteCalls int
	updateCalls int
	cases       map[string]domain.Case
	lastUpdate  api.UpdateCaseRequest
}

func newFakeService(cases ...domain.Case) *fakeService {
	m := make(map[string]domain.Case, len(cases))
	for _, cs := range cases {
		m[cs.ID] = cs
	}
	return &fakeService{cases: m}
}

func (s *fakeService) ListCases(context.Context) ([]domain.Case, error) {
	s.listCalls++
	out := make([]domain.Case, 0, len(s.cases))
	for _, cs := range s.cases {
		out = append(out, cs)
	}
	return out, nil
}

func (s *fakeService) GetCase(_ context.Context, id string) (domain.Case, error) {
	s.getCalls++
	cs, ok := s.cases[id]
	if !ok {
		return domain.Case{}, &api.APIError{Status: 404, Message: "not found"}
	}
	return cs, nil
}

func (s *fakeService) DeleteCase(_ context.Context, id string) error {
	s.deleteCalls++
	delete(s.cases, id)
	return nil
}

func (s *fakeService) UpdateCase(_ context.Context, id string, req api.UpdateCaseRequest) (domain.Case, error) {
	s.updateCalls++
	s.lastUpdate = req
	cs, ok := s.cases[id]
	if !ok {
		return domain.Case{}, &api.APIError{Status: 404, Message: "not found"}
	}
	if req.Favorite != nil {
		cs.Favorite = *req.Favorite
	}
	if req.Notes != nil {
		cs.Notes = *req.Notes
	}
	if req.ClinicianDiagnosis != nil {
		cs.ClinicianDiagnosis = *req.ClinicianDiagnosis
	}
	if req.ClinicianNotes != nil {
		cs.ClinicianNotes = *req.ClinicianNotes
	}
	s.cases[id] = cs
	return cs, nil
}

func TestListServedFromCache(t *testing.T) {
	service := newFakeService(domain.Case{ID: "case-1"})
	store := New(service, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.List(ctx); err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
	}
	if service.listCalls != 1 {
		t.Fatalf("listCalls = %d, want 1 (cache should serve repeats)", service.listCalls)
	}
}

func TestMutationInvalidatesCaches(t *testing.T) {
	service := newFakeService(domain.Case{ID: "case-1"})
	store := New(service, 0)
	ctx := context.Background()

	if _, err := store.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := store.Get(ctx, "case-1"); err != nil {
		t.Fatalf("get: %v", err)
	}

	cs, err := store.SetFavorite(ctx, "case-1", true)
	if err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if !cs.Favorite {
		t.Fatal("favorite flag not set")
	}

	// Both reads must hit the server again after the write.
	if _, err := store.Get(ctx, "case-1"); err != nil {
		t.Fatalf("get after write: %v", err)
	}
	if _, err := store.List(ctx); err != nil {
		t.Fatalf("list after write: %v", err)
	}
	if service.getCalls != 2 {
		t.Fatalf("getCalls = %d, want 2", service.getCalls)
	}
	if service.listCalls != 2 {
		t.Fatalf("listCalls = %d, want 2", service.listCalls)
	}
}

func TestClinicianDiagnosisLeavesOtherFieldsUnset(t *testing.T) {
	service := newFakeService(domain.Case{ID: "case-1", Notes: "keep me"})
	store := New(service, 0)

	cs, err := store.SetClinicianDiagnosis(context.Background(), "case-1", "benign nevus", "re-check in 6 months")
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if cs.ClinicianDiagnosis != "benign nevus" || cs.ClinicianNotes != "re-check in 6 months" {
		t.Fatalf("case = %+v", cs)
	}
	if cs.Notes != "keep me" {
		t.Fatal("user notes must not be touched by a clinician update")
	}
	if service.lastUpdate.Notes != nil || service.lastUpdate.Favorite != nil {
		t.Fatalf("update request included unrelated fields: %+v", service.lastUpdate)
	}
}

func TestDeleteInvalidatesEntryAndList(t *testing.T) {
	service := newFakeService(domain.Case{ID: "case-1"}, domain.Case{ID: "case-2"})
	store := New(service, 0)
	ctx := context.Background()

	if _, err := store.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := store.Get(ctx, "case-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := store.Delete(ctx, "case-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var apiErr *api.APIError
	if _, err := store.Get(ctx, "case-1"); !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("get deleted case = %v, want 404 from server (not cache)", err)
	}
	cases, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(cases) != 1 || cases[0].ID != "case-2" {
		t.Fatalf("cases = %+v, want only case-2", cases)
	}
}
