package domain

import "time"

type TrackingStatus string

const (
	StatusMonitoring TrackingStatus = "monitoring"
	StatusResolved   TrackingStatus = "resolved"
	StatusUrgent     TrackingStatus = "urgent"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskElevated RiskLevel = "elevated"
	RiskHigh     RiskLevel = "high"
)

type Progression string

const (
	ProgressionStable            Progression = "stable"
	ProgressionImproved          Progression = "improved"
	ProgressionWorsened          Progression = "worsened"
	ProgressionSignificantChange Progression = "significant_change"
)

// Patient is the demographic and symptom bundle created once per case
// submission. It is never mutated after creation.
type Patient struct {
	ID                 string    `json:"id"`
	LesionLocations    []string  `json:"lesionLocations"`
	Symptoms           []string  `json:"symptoms"`
	AdditionalSymptoms string    `json:"additionalSymptoms,omitempty"`
	SymptomDuration    string    `json:"symptomDuration,omitempty"`
	MedicalHistory     []string  `json:"medicalHistory,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Diagnosis is one ranked entry in a provider's analysis result.
type Diagnosis struct {
	Name            string   `json:"name"`
	Confidence      float64  `json:"confidence"` // 0-100
	Description     string   `json:"description,omitempty"`
	KeyFeatures     []string `json:"keyFeatures,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ProviderAnalysis is the ranked diagnosis list one AI provider produced.
type ProviderAnalysis struct {
	Provider  string      `json:"provider"`
	Diagnoses []Diagnosis `json:"diagnoses"`
}

// Case is one complete diagnostic submission. Images and the patient
// reference are immutable after creation; only clinician fields, user
// notes, and the favorite flag may change later.
type Case struct {
	ID                 string             `json:"id"`
	CaseID             string             `json:"caseId"`
	PatientID          string             `json:"patientId"`
	ImageURLs          []string           `json:"imageUrls"`
	SubmittedAt        time.Time          `json:"submittedAt"`
	Analyses           []ProviderAnalysis `json:"analyses,omitempty"`
	ClinicianDiagnosis string             `json:"clinicianDiagnosis,omitempty"`
	ClinicianNotes     string             `json:"clinicianNotes,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	Favorite           bool               `json:"favorite,omitempty"`
}

// LesionTracking is the longitudinal record of one physical lesion.
// Status is advisory metadata written on explicit user action only; a
// worrying comparison result prompts the user but never transitions it.
type LesionTracking struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"ownerId"`
	Name          string         `json:"name"`
	BodyLocation  string         `json:"bodyLocation,omitempty"`
	Status        TrackingStatus `json:"status"`
	SnapshotCount int            `json:"snapshotCount"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// LesionSnapshot is one dated observation of a tracked lesion.
// SnapshotOrder is assigned by the server and reflects insertion order;
// it is never reused or reordered and is the join key comparisons use.
type LesionSnapshot struct {
	ID            string    `json:"id"`
	TrackingID    string    `json:"trackingId"`
	CaseID        string    `json:"caseId,omitempty"`
	ImageURLs     []string  `json:"imageUrls"`
	Notes         string    `json:"notes,omitempty"`
	SnapshotOrder int       `json:"snapshotOrder"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AttributeChanges describes per-attribute differences between two
// snapshots. An empty field means no material change in that attribute.
type AttributeChanges struct {
	Size    string `json:"size,omitempty"`
	Color   string `json:"color,omitempty"`
	Border  string `json:"border,omitempty"`
	Texture string `json:"texture,omitempty"`
}

// LesionComparison is an AI-produced diff between two snapshots of the
// same tracking. Immutable once created.
type LesionComparison struct {
	ID                 string           `json:"id"`
	TrackingID         string           `json:"trackingId"`
	PreviousSnapshotID string           `json:"previousSnapshotId"`
	CurrentSnapshotID  string           `json:"currentSnapshotId"`
	RiskLevel          RiskLevel        `json:"riskLevel"`
	OverallProgression Progression      `json:"overallProgression"`
	Changes            AttributeChanges `json:"changes"`
	Summary            string           `json:"summary"`
	DetailedAnalysis   string           `json:"detailedAnalysis,omitempty"`
	Recommendations    []string         `json:"recommendations,omitempty"`
	ElapsedTimeLabel   string           `json:"elapsedTimeLabel,omitempty"`
	AnalysisDurationMS int64            `json:"analysisDurationMs,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}

// TrackingDetail bundles a tracking with its ordered history: snapshots
// ascending by snapshotOrder, comparisons most recent first.
type TrackingDetail struct {
	Tracking    LesionTracking     `json:"tracking"`
	Snapshots   []LesionSnapshot   `json:"snapshots"`
	Comparisons []LesionComparison `json:"comparisons"`
}
