// Package journal keeps a local record of submission attempts.
//
// The journal is bookkeeping only: it is written at each phase boundary
// of a submission so an interrupted or failed run can be inspected later
// (including durable URLs of images uploaded before an abort). It is
// never consulted for correctness; the remote service stays the sole
// source of truth.
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dermatrack/internal/util"
)

const (
	PhasePatient  = "patient"
	PhaseUpload   = "upload"
	PhaseAnalysis = "analysis"
	PhaseDone     = "done"
	PhaseFailed   = "failed"
)

// SubmissionRecord is one row per case submission attempt.
type SubmissionRecord struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Phase        string         `json:"phase"`
	ImageCount   int            `json:"imageCount"`
	UploadedURLs datatypes.JSON `json:"uploadedUrls,omitempty"`
	Attempts     datatypes.JSON `json:"attempts,omitempty"` // image index -> attempt count
	FailureKind  string         `json:"failureKind,omitempty"`
	FailureMsg   string         `json:"failureMsg,omitempty"`
	CaseID       string         `json:"caseId,omitempty"`
	StartedAt    time.Time      `json:"startedAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Journal persists submission records in a local SQLite database.
type Journal struct {
	db *gorm.DB
}

// Open opens (or creates) the journal database and runs migrations.
func Open(path string) (*Journal, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if err := db.AutoMigrate(&SubmissionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Begin records the start of a submission and returns its journal id.
func (j *Journal) Begin(imageCount int) (string, error) {
	now := time.Now().UTC()
	rec := SubmissionRecord{
		ID:         util.NewID(),
		Phase:      PhasePatient,
		ImageCount: imageCount,
		StartedAt:  now,
		UpdatedAt:  now,
	}
	if err := j.db.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("journal begin: %w", err)
	}
	return rec.ID, nil
}

// SetPhase advances a record to the named phase.
func (j *Journal) SetPhase(id, phase string) error {
	return j.update(id, map[string]any{"phase": phase})
}

// RecordUpload stores the durable URL and attempt count for one image.
func (j *Journal) RecordUpload(id string, index, attempts int, url string) error {
	rec, err := j.get(id)
	if err != nil {
		return err
	}
	urls := decodeStrings(rec.UploadedURLs)
	urls = append(urls, url)
	counts := decodeCounts(rec.Attempts)
	counts[fmt.Sprintf("%d", index)] = attempts
	urlsJSON, _ := json.Marshal(urls)
	countsJSON, _ := json.Marshal(counts)
	return j.update(id, map[string]any{
		"phase":         PhaseUpload,
		"uploaded_urls": datatypes.JSON(urlsJSON),
		"attempts":      datatypes.JSON(countsJSON),
	})
}

// Complete marks a submission as done and links the resulting case.
func (j *Journal) Complete(id, caseID string) error {
	return j.update(id, map[string]any{"phase": PhaseDone, "case_id": caseID})
}

// Fail marks a submission as failed with its machine-readable kind.
func (j *Journal) Fail(id, kind, msg string) error {
	return j.update(id, map[string]any{
		"phase":        PhaseFailed,
		"failure_kind": kind,
		"failure_msg":  msg,
	})
}

// Recent returns the newest records, most recent first.
func (j *Journal) Recent(limit int) ([]SubmissionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []SubmissionRecord
	if err := j.db.Order("started_at DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("journal recent: %w", err)
	}
	return recs, nil
}

func (j *Journal) get(id string) (SubmissionRecord, error) {
	var rec SubmissionRecord
	if err := j.db.First(&rec, "id = ?", id).Error; err != nil {
		return SubmissionRecord{}, fmt.Errorf("journal get: %w", err)
	}
	return rec, nil
}

func (j *Journal) update(id string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := j.db.Model(&SubmissionRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("journal update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("journal update: record %s not found", id)
	}
	return nil
}

func decodeStrings(raw datatypes.JSON) []string {
	var out []string
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func decodeCounts(raw datatypes.JSON) map[string]int {
	out := map[string]int{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}
