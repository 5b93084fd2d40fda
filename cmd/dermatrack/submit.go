package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dermatrack/internal/api"
	"dermatrack/internal/submit"
)

func newSubmitCmd(a **app) *cobra.Command {
	var (
		images     []string
		locations  []string
		symptoms   []string
		additional string
		duration   string
		history    []string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit lesion images and case data for AI analysis",
		Long: `Submit creates the patient record, uploads every image in order, and
sends the assembled case for analysis. Analysis may take one to two
minutes; the command waits for the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := api.PatientForm{
				LesionLocations:    locations,
				Symptoms:           symptoms,
				AdditionalSymptoms: additional,
				SymptomDuration:    duration,
				MedicalHistory:     history,
			}
			cs, err := (*a).submitter.Submit(cmd.Context(), form, images)
			if err != nil {
				return describeSubmitError(err)
			}
			return printJSON(cs)
		},
	}
	cmd.Flags().StringArrayVarP(&images, "image", "i", nil, "path to a lesion image (repeatable, uploaded in order)")
	cmd.Flags().StringArrayVarP(&locations, "location", "l", nil, "lesion body location (repeatable)")
	cmd.Flags().StringArrayVarP(&symptoms, "symptom", "s", nil, "observed symptom (repeatable)")
	cmd.Flags().StringVar(&additional, "additional", "", "free-text additional symptoms")
	cmd.Flags().StringVar(&duration, "duration", "", "how long symptoms have been present")
	cmd.Flags().StringArrayVar(&history, "history", nil, "medical history tag (repeatable)")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

// describeSubmitError maps each failure kind to a message that names the
// failed phase instead of a generic error.
func describeSubmitError(err error) error {
	var serr *submit.Error
	if !errors.As(err, &serr) {
		return err
	}
	switch serr.Kind {
	case submit.KindPatientCreationFailed:
		return fmt.Errorf("could not create the patient record: %w", serr.Err)
	case submit.KindUploadFailed:
		return fmt.Errorf("image %d failed to upload; the case was not created: %w", serr.ImageIndex, serr.Err)
	case submit.KindNoImagesUploaded:
		return errors.New("no images to submit; provide at least one --image")
	case submit.KindAnalysisTimeout:
		return errors.New("analysis timed out; the case was not created — try again")
	case submit.KindAnalysisFailed:
		return fmt.Errorf("analysis failed: %w", serr.Err)
	default:
		return err
	}
}
