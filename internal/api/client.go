// Package api is the HTTP client for the DermaTrack diagnostic service.
//
// Two timeout classes apply: ordinary CRUD calls use the short default
// deadline, while case analysis and snapshot comparison use a separate
// extended deadline because the server fans out to multiple AI providers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dermatrack/pkg/domain"
)

// Client calls the DermaTrack service over HTTP.
type Client struct {
	baseURL        string
	authToken      string
	httpClient     *http.Client
	analysisClient *http.Client
}

// APIError represents a service error response.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Config holds client construction parameters.
type Config struct {
	BaseURL         string
	AuthToken       string
	RequestTimeout  time.Duration
	AnalysisTimeout time.Duration
}

// NewClient constructs a service client with both timeout classes.
func NewClient(cfg Config) *Client {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.AnalysisTimeout == 0 {
		cfg.AnalysisTimeout = 120 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		authToken:      strings.TrimSpace(cfg.AuthToken),
		httpClient:     &http.Client{Timeout: cfg.RequestTimeout},
		analysisClient: &http.Client{Timeout: cfg.AnalysisTimeout},
	}
}

// IsTransient reports whether err is a transport-level failure (the
// request never produced a server response). Errors the server itself
// returned are APIError values and are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// IsTimeout reports whether err is a client-side deadline expiry.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// CreatePatient registers the per-submission patient bundle.
func (c *Client) CreatePatient(ctx context.Context, form PatientForm) (domain.Patient, error) {
	var patient domain.Patient
	if err := c.post(ctx, c.httpClient, "/patients", form, &patient); err != nil {
		return domain.Patient{}, err
	}
	return patient, nil
}

// UploadImage sends one encoded image and returns its durable URL.
func (c *Client) UploadImage(ctx context.Context, req UploadImageRequest) (string, error) {
	var resp uploadImageResponse
	if err := c.post(ctx, c.httpClient, "/images", req, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("upload response missing url")
	}
	return resp.URL, nil
}

// SubmitCase sends the assembled case for AI analysis. This call uses the
// extended timeout; server-side analysis may take one to two minutes.
func (c *Client) SubmitCase(ctx context.Context, req SubmitCaseRequest) (domain.Case, error) {
	var cs domain.Case
	if err := c.post(ctx, c.analysisClient, "/cases", req, &cs); err != nil {
		return domain.Case{}, err
	}
	return cs, nil
}

// ListCases returns all cases for the authenticated user.
func (c *Client) ListCases(ctx context.Context) ([]domain.Case, error) {
	var resp listCasesResponse
	if err := c.get(ctx, "/cases", &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetCase fetches one case by id.
func (c *Client) GetCase(ctx context.Context, id string) (domain.Case, error) {
	var cs domain.Case
	if err := c.get(ctx, "/cases/"+url.PathEscape(id), &cs); err != nil {
		return domain.Case{}, err
	}
	return cs, nil
}

// DeleteCase removes a case permanently.
func (c *Client) DeleteCase(ctx context.Context, id string) error {
	return c.delete(ctx, "/cases/"+url.PathEscape(id))
}

// UpdateCase mutates the post-creation fields of a case (clinician
// diagnosis/notes, user notes, favorite flag). Unset fields are left
// untouched server-side.
func (c *Client) UpdateCase(ctx context.Context, id string, req UpdateCaseRequest) (domain.Case, error) {
	var cs domain.Case
	if err := c.patch(ctx, "/cases/"+url.PathEscape(id), req, &cs); err != nil {
		return domain.Case{}, err
	}
	return cs, nil
}

// CreateTracking starts a longitudinal record for one lesion.
func (c *Client) CreateTracking(ctx context.Context, req CreateTrackingRequest) (domain.LesionTracking, error) {
	var tr domain.LesionTracking
	if err := c.post(ctx, c.httpClient, "/trackings", req, &tr); err != nil {
		return domain.LesionTracking{}, err
	}
	return tr, nil
}

// ListTrackings returns all trackings for the authenticated user.
func (c *Client) ListTrackings(ctx context.Context) ([]domain.LesionTracking, error) {
	var resp listTrackingsResponse
	if err := c.get(ctx, "/trackings", &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetTracking fetches a tracking with its full snapshot and comparison
// history.
func (c *Client) GetTracking(ctx context.Context, id string) (domain.TrackingDetail, error) {
	var detail domain.TrackingDetail
	if err := c.get(ctx, "/trackings/"+url.PathEscape(id), &detail); err != nil {
		return domain.TrackingDetail{}, err
	}
	return detail, nil
}

// UpdateTracking edits name, body location, or status.
func (c *Client) UpdateTracking(ctx context.Context, id string, req UpdateTrackingRequest) (domain.LesionTracking, error) {
	var tr domain.LesionTracking
	if err := c.patch(ctx, "/trackings/"+url.PathEscape(id), req, &tr); err != nil {
		return domain.LesionTracking{}, err
	}
	return tr, nil
}

// DeleteTracking removes a tracking and, server-side, all of its
// snapshots and comparisons.
func (c *Client) DeleteTracking(ctx context.Context, id string) error {
	return c.delete(ctx, "/trackings/"+url.PathEscape(id))
}

// AppendSnapshot adds one observation to a tracking. The snapshot order
// in the response is server-assigned and is the only authoritative value.
func (c *Client) AppendSnapshot(ctx context.Context, trackingID string, req AppendSnapshotRequest) (domain.LesionSnapshot, error) {
	var snap domain.LesionSnapshot
	path := "/trackings/" + url.PathEscape(trackingID) + "/snapshots"
	if err := c.post(ctx, c.httpClient, path, req, &snap); err != nil {
		return domain.LesionSnapshot{}, err
	}
	return snap, nil
}

// RequestComparison asks the service to compare two snapshots of the
// same tracking. Uses the extended timeout.
func (c *Client) RequestComparison(ctx context.Context, trackingID string, req ComparisonRequest) (domain.LesionComparison, error) {
	var cmp domain.LesionComparison
	path := "/trackings/" + url.PathEscape(trackingID) + "/comparisons"
	if err := c.post(ctx, c.analysisClient, path, req, &cmp); err != nil {
		return domain.LesionComparison{}, err
	}
	return cmp, nil
}

// GetComparison fetches one comparison by id.
func (c *Client) GetComparison(ctx context.Context, trackingID, comparisonID string) (domain.LesionComparison, error) {
	var cmp domain.LesionComparison
	path := "/trackings/" + url.PathEscape(trackingID) + "/comparisons/" + url.PathEscape(comparisonID)
	if err := c.get(ctx, path, &cmp); err != nil {
		return domain.LesionComparison{}, err
	}
	return cmp, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(c.httpClient, req, out)
}

func (c *Client) post(ctx context.Context, client *http.Client, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(client, req, out)
}

func (c *Client) patch(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(c.httpClient, req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(c.httpClient, req, nil)
}

func (c *Client) do(client *http.Client, req *http.Request, out any) error {
	c.addAuthHeader(req)
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Code: strings.TrimSpace(errResp.Code)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

func (c *Client) addAuthHeader(req *http.Request) {
	if c.authToken == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}
