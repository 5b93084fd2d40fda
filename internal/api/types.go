package api

import "dermatrack/pkg/domain"

// PatientForm is the input for patient creation.
type PatientForm struct {
	LesionLocations    []string `json:"lesionLocations"`
	Symptoms           []string `json:"symptoms"`
	AdditionalSymptoms string   `json:"additionalSymptoms,omitempty"`
	SymptomDuration    string   `json:"symptomDuration,omitempty"`
	MedicalHistory     []string `json:"medicalHistory,omitempty"`
}

// UploadImageRequest carries one base64-encoded image.
type UploadImageRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"` // base64
}

type uploadImageResponse struct {
	URL string `json:"url"`
}

// SubmitCaseRequest is the assembled analysis payload. TrackingCapable
// marks the request as coming from a client that supports lesion
// tracking, which the server uses to shape the response.
type SubmitCaseRequest struct {
	PatientID       string   `json:"patientId"`
	ImageURLs       []string `json:"imageUrls"`
	Symptoms        []string `json:"symptoms,omitempty"`
	Language        string   `json:"language"`
	TrackingCapable bool     `json:"trackingCapable"`
}

// UpdateCaseRequest mutates post-creation case fields. Nil pointers mean
// "leave unchanged".
type UpdateCaseRequest struct {
	ClinicianDiagnosis *string `json:"clinicianDiagnosis,omitempty"`
	ClinicianNotes     *string `json:"clinicianNotes,omitempty"`
	Notes              *string `json:"notes,omitempty"`
	Favorite           *bool   `json:"favorite,omitempty"`
}

// CreateTrackingRequest starts a new tracking, optionally seeded from an
// existing case.
type CreateTrackingRequest struct {
	Name         string `json:"name"`
	BodyLocation string `json:"bodyLocation,omitempty"`
	SeedCaseID   string `json:"seedCaseId,omitempty"`
}

// UpdateTrackingRequest edits tracking metadata. Nil pointers mean
// "leave unchanged".
type UpdateTrackingRequest struct {
	Name         *string                `json:"name,omitempty"`
	BodyLocation *string                `json:"bodyLocation,omitempty"`
	Status       *domain.TrackingStatus `json:"status,omitempty"`
}

// AppendSnapshotRequest adds one observation to a tracking.
type AppendSnapshotRequest struct {
	CaseID    string   `json:"caseId,omitempty"`
	ImageURLs []string `json:"imageUrls"`
	Notes     string   `json:"notes,omitempty"`
}

// ComparisonRequest names the ordered snapshot pair to compare.
type ComparisonRequest struct {
	PreviousSnapshotID string `json:"previousSnapshotId"`
	CurrentSnapshotID  string `json:"currentSnapshotId"`
}

type listCasesResponse struct {
	Items []domain.Case `json:"items"`
	Count int           `json:"count"`
}

type listTrackingsResponse struct {
	Items []domain.LesionTracking `json:"items"`
	Count int                     `json:"count"`
}
