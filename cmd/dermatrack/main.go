// Command dermatrack is the command-line client for the DermaTrack
// skin-lesion diagnostic service: submit cases for AI analysis, manage
// stored cases, and follow tracked lesions across visits.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dermatrack/internal/api"
	"dermatrack/internal/casestore"
	"dermatrack/internal/config"
	"dermatrack/internal/journal"
	"dermatrack/internal/session"
	"dermatrack/internal/submit"
	"dermatrack/internal/tracking"
	"dermatrack/internal/upload"
	"dermatrack/internal/util"
	"dermatrack/pkg/storage"
)

const tokenExpiryWarning = time.Hour

type app struct {
	cfg       config.FileConfig
	client    *api.Client
	uploader  *upload.Uploader
	cases     *casestore.Store
	trackings *tracking.Store
	journal   *journal.Journal
	submitter *submit.Orchestrator
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	util.InitLogger(cfg.LogLevel)

	if cfg.AuthToken != "" && session.ExpiresWithin(cfg.AuthToken, tokenExpiryWarning) {
		slog.Warn("auth token expires soon; refresh it to avoid failing calls")
	}

	client := api.NewClient(api.Config{
		BaseURL:         cfg.APIBaseURL,
		AuthToken:       cfg.AuthToken,
		RequestTimeout:  cfg.RequestTimeout(),
		AnalysisTimeout: cfg.AnalysisTimeout(),
	})

	var uploader *upload.Uploader
	switch cfg.UploadBackend {
	case "s3":
		store, err := storage.NewMinioStore(storage.Config{
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			UseSSL:        cfg.S3UseSSL,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		uploader = upload.NewObjectStoreUploader(store)
	default:
		uploader = upload.NewAPIUploader(client)
	}
	uploader.MaxBytes = cfg.MaxImageBytes

	jnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		// The journal is bookkeeping only; a broken local DB must not
		// block submissions.
		slog.Warn("journal unavailable", "path", cfg.JournalPath, "err", err)
		jnl = nil
	}

	cases := casestore.New(client, 0)
	trackings := tracking.New(client, 0)

	var recorder submit.Recorder
	if jnl != nil {
		recorder = jnl
	}
	submitter := submit.New(client, uploader, recorder, cfg.Language)
	submitter.InvalidateCases = cases.InvalidateList

	return &app{
		cfg:       cfg,
		client:    client,
		uploader:  uploader,
		cases:     cases,
		trackings: trackings,
		journal:   jnl,
		submitter: submitter,
	}, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	var cfgPath string
	var a *app

	root := &cobra.Command{
		Use:           "dermatrack",
		Short:         "Client for the DermaTrack skin-lesion diagnostic service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(cfgPath)
			return err
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.ConfigPath, "path to config file")

	root.AddCommand(
		newSubmitCmd(&a),
		newCasesCmd(&a),
		newTrackCmd(&a),
		newCompareCmd(&a),
		newJournalCmd(&a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
