// Package submit composes patient creation, image upload, and AI
// analysis into one logical case submission.
//
// The three phases run strictly in order: the analysis payload needs the
// patient id and every durable image URL, and sequential uploads keep
// error attribution per image unambiguous. If any phase after patient
// creation fails, no case is created and nothing partial becomes visible
// to the caller.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dermatrack/internal/api"
	"dermatrack/internal/upload"
	"dermatrack/pkg/domain"
)

// FailureKind is the stable machine-readable classification of a
// submission failure. Presentation maps kinds to localized messages.
type FailureKind string

const (
	KindPatientCreationFailed FailureKind = "patient_creation_failed"
	KindUploadFailed          FailureKind = "upload_failed"
	KindNoImagesUploaded      FailureKind = "no_images_uploaded"
	KindAnalysisTimeout       FailureKind = "analysis_timeout"
	KindAnalysisFailed        FailureKind = "analysis_failed"
)

// Error identifies which submission phase failed.
type Error struct {
	Kind       FailureKind
	ImageIndex int // meaningful only when Kind is KindUploadFailed
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindUploadFailed {
		return fmt.Sprintf("submission failed (%s, image %d): %v", e.Kind, e.ImageIndex, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("submission failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("submission failed (%s)", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Service is the slice of the API the orchestrator drives.
type Service interface {
	CreatePatient(ctx context.Context, form api.PatientForm) (domain.Patient, error)
	SubmitCase(ctx context.Context, req api.SubmitCaseRequest) (domain.Case, error)
}

// ImageUploader pushes local images to durable storage, reporting each
// successful upload through the observer.
type ImageUploader interface {
	UploadAll(ctx context.Context, paths []string, each func(index, attempts int, url string)) ([]string, error)
}

// Recorder persists in-flight submission bookkeeping. All methods are
// best-effort; a recorder failure never fails a submission.
type Recorder interface {
	Begin(imageCount int) (string, error)
	SetPhase(id, phase string) error
	RecordUpload(id string, index, attempts int, url string) error
	Complete(id, caseID string) error
	Fail(id, kind, msg string) error
}

// Orchestrator runs one case submission end to end.
type Orchestrator struct {
	service  Service
	uploader ImageUploader
	recorder Recorder
	language string

	// InvalidateCases, when set, is called after a successful
	// submission so cached case lists reflect the new case.
	InvalidateCases func()
}

// New builds an Orchestrator. recorder may be nil.
func New(service Service, uploader ImageUploader, recorder Recorder, language string) *Orchestrator {
	return &Orchestrator{
		service:  service,
		uploader: uploader,
		recorder: recorder,
		language: language,
	}
}

// Submit creates the patient, uploads every image in order, and sends
// the assembled payload for analysis. It returns the fully analyzed case
// or a phase-attributed *Error.
func (o *Orchestrator) Submit(ctx context.Context, form api.PatientForm, imagePaths []string) (domain.Case, error) {
	if len(imagePaths) == 0 {
		return domain.Case{}, &Error{Kind: KindNoImagesUploaded}
	}

	journalID := o.begin(len(imagePaths))

	patient, err := o.service.CreatePatient(ctx, form)
	if err != nil {
		return domain.Case{}, o.fail(journalID, &Error{Kind: KindPatientCreationFailed, Err: err})
	}

	o.setPhase(journalID, phaseUpload)
	urls, err := o.uploader.UploadAll(ctx, imagePaths, func(index, attempts int, url string) {
		o.recordUpload(journalID, index, attempts, url)
	})
	if err != nil {
		var uploadErr *upload.UploadError
		if errors.As(err, &uploadErr) {
			return domain.Case{}, o.fail(journalID, &Error{Kind: KindUploadFailed, ImageIndex: uploadErr.Index, Err: err})
		}
		return domain.Case{}, o.fail(journalID, &Error{Kind: KindUploadFailed, Err: err})
	}
	if len(urls) == 0 {
		return domain.Case{}, o.fail(journalID, &Error{Kind: KindNoImagesUploaded})
	}

	o.setPhase(journalID, phaseAnalysis)
	cs, err := o.service.SubmitCase(ctx, api.SubmitCaseRequest{
		PatientID:       patient.ID,
		ImageURLs:       urls,
		Symptoms:        form.Symptoms,
		Language:        o.language,
		TrackingCapable: true,
	})
	if err != nil {
		if api.IsTimeout(err) {
			return domain.Case{}, o.fail(journalID, &Error{Kind: KindAnalysisTimeout, Err: err})
		}
		return domain.Case{}, o.fail(journalID, &Error{Kind: KindAnalysisFailed, Err: err})
	}

	o.complete(journalID, cs.ID)
	if o.InvalidateCases != nil {
		o.InvalidateCases()
	}
	return cs, nil
}

const (
	phaseUpload   = "upload"
	phaseAnalysis = "analysis"
)

func (o *Orchestrator) begin(imageCount int) string {
	if o.recorder == nil {
		return ""
	}
	id, err := o.recorder.Begin(imageCount)
	if err != nil {
		slog.Warn("journal begin failed", "err", err)
		return ""
	}
	return id
}

func (o *Orchestrator) setPhase(journalID, phase string) {
	if o.recorder == nil || journalID == "" {
		return
	}
	if err := o.recorder.SetPhase(journalID, phase); err != nil {
		slog.Warn("journal phase update failed", "phase", phase, "err", err)
	}
}

func (o *Orchestrator) recordUpload(journalID string, index, attempts int, url string) {
	if o.recorder == nil || journalID == "" {
		return
	}
	if err := o.recorder.RecordUpload(journalID, index, attempts, url); err != nil {
		slog.Warn("journal upload record failed", "index", index, "err", err)
	}
}

func (o *Orchestrator) complete(journalID, caseID string) {
	if o.recorder == nil || journalID == "" {
		return
	}
	if err := o.recorder.Complete(journalID, caseID); err != nil {
		slog.Warn("journal complete failed", "err", err)
	}
}

func (o *Orchestrator) fail(journalID string, serr *Error) *Error {
	if o.recorder != nil && journalID != "" {
		msg := ""
		if serr.Err != nil {
			msg = serr.Err.Error()
		}
		if err := o.recorder.Fail(journalID, string(serr.Kind), msg); err != nil {
			slog.Warn("journal fail update failed", "err", err)
		}
	}
	return serr
}
