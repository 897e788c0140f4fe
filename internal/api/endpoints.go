package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CommitRequest carries the identity of a commit being registered.
type CommitRequest struct {
	CommitSHA         string `json:"commitid"`
	ParentSHA         string `json:"parent_commit_id,omitempty"`
	PullRequestNumber string `json:"pullid,omitempty"`
	Branch            string `json:"branch,omitempty"`
}

// UploadRequest carries the metadata of an upload-slot request.
type UploadRequest struct {
	CIURL     string            `json:"ci_url,omitempty"`
	Flags     []string          `json:"flags,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	Name      string            `json:"name,omitempty"`
	JobCode   string            `json:"job_code,omitempty"`
	CIService string            `json:"ci_service,omitempty"`
}

// UploadTicket is the backend-issued handle for one blob upload. The
// pre-signed PutURL has a bounded validity window; consume it once.
type UploadTicket struct {
	ExternalID string `json:"external_id"`
	PutURL     string `json:"raw_upload_location"`
}

func uploadPrefix(service, encodedSlug string) string {
	return fmt.Sprintf("/upload/%s/%s", service, encodedSlug)
}

// CreateCommit registers a commit record. Safe to repeat: the backend
// is idempotent on commit identity.
func (c *Client) CreateCommit(ctx context.Context, service, slug string, req CommitRequest) (Result, error) {
	encoded, err := EncodeSlug(slug)
	if err != nil {
		return Result{}, err
	}
	path := uploadPrefix(service, encoded) + "/commits"
	return c.PostJSON(ctx, path, req, nil, c.Auth())
}

// CreateReport registers a report keyed by (commit, report code).
// Safe to repeat.
func (c *Client) CreateReport(ctx context.Context, service, slug, commitSHA, reportCode string) (Result, error) {
	encoded, err := EncodeSlug(slug)
	if err != nil {
		return Result{}, err
	}
	path := fmt.Sprintf("%s/commits/%s/reports", uploadPrefix(service, encoded), commitSHA)
	return c.PostJSON(ctx, path, map[string]string{"code": reportCode}, nil, c.Auth())
}

// RequestUpload asks for an upload slot and returns the ticket with
// the pre-signed blob URL.
func (c *Client) RequestUpload(ctx context.Context, service, slug, commitSHA, reportCode string, req UploadRequest) (UploadTicket, Result, error) {
	encoded, err := EncodeSlug(slug)
	if err != nil {
		return UploadTicket{}, Result{}, err
	}
	path := fmt.Sprintf("%s/commits/%s/reports/%s/uploads",
		uploadPrefix(service, encoded), commitSHA, reportCode)
	var ticket UploadTicket
	res, err := c.PostJSON(ctx, path, req, &ticket, c.Auth())
	if err != nil {
		return UploadTicket{}, res, err
	}
	if ticket.PutURL == "" {
		return UploadTicket{}, res, fmt.Errorf("%w: upload response carried no storage URL", ErrBackendRefused)
	}
	return ticket, res, nil
}

// UploadComplete signals that no further uploads will arrive for the
// commit, unblocking backend notifications.
func (c *Client) UploadComplete(ctx context.Context, service, slug, commitSHA string) (Result, error) {
	encoded, err := EncodeSlug(slug)
	if err != nil {
		return Result{}, err
	}
	path := fmt.Sprintf("%s/commits/%s/upload-complete", uploadPrefix(service, encoded), commitSHA)
	return c.PostJSON(ctx, path, map[string]any{}, nil, c.Auth())
}

// EmptyUpload tells the backend all changed files are ignored, so it
// should pass or fail checks without waiting for coverage.
func (c *Client) EmptyUpload(ctx context.Context, service, slug, commitSHA string, force bool) (Result, error) {
	encoded, err := EncodeSlug(slug)
	if err != nil {
		return Result{}, err
	}
	path := fmt.Sprintf("%s/commits/%s/empty-upload", uploadPrefix(service, encoded), commitSHA)
	return c.PostJSON(ctx, path, map[string]bool{"should_force": force}, nil, c.Auth())
}

// TransplantReport copies the reports of fromSHA onto commitSHA.
func (c *Client) TransplantReport(ctx context.Context, service, slug, commitSHA, fromSHA string) (Result, error) {
	encoded, err := EncodeSlug(slug)
	if err != nil {
		return Result{}, err
	}
	path := fmt.Sprintf("%s/commits/%s/transplant", uploadPrefix(service, encoded), commitSHA)
	return c.PostJSON(ctx, path, map[string]string{"from_sha": fromSHA}, nil, c.Auth())
}

// BasePicking records a user-chosen base commit for a pull request.
func (c *Client) BasePicking(ctx context.Context, service, slug, pr, baseSHA string) (Result, error) {
	path := fmt.Sprintf("/api/v1/%s/%s/pulls/%s", service, slug, pr)
	body := map[string]string{"user_provided_base_sha": baseSHA}
	return c.PutJSON(ctx, path, body, nil, c.Auth())
}

// CreateReportResults asks the backend to start computing results for
// a report.
func (c *Client) CreateReportResults(ctx context.Context, service, slug, commitSHA, reportCode string) (Result, error) {
	encoded, err := EncodeSlug(slug)
	if err != nil {
		return Result{}, err
	}
	path := fmt.Sprintf("%s/commits/%s/reports/%s/results",
		uploadPrefix(service, encoded), commitSHA, reportCode)
	return c.PostJSON(ctx, path, nil, nil, c.Auth())
}

// ReportResultsState is the lifecycle of an asynchronous backend
// computation.
type ReportResultsState string

const (
	StatePending    ReportResultsState = "pending"
	StateProcessing ReportResultsState = "processing"
	StateFinished   ReportResultsState = "finished"
	StateError      ReportResultsState = "error"
)

// ReportResults is the polled answer of the report-results endpoint.
type ReportResults struct {
	State  ReportResultsState `json:"state"`
	Result json.RawMessage    `json:"result"`
}

// GetReportResults fetches the current state of a report computation.
func (c *Client) GetReportResults(ctx context.Context, service, slug, commitSHA, reportCode string) (ReportResults, Result, error) {
	encoded, err := EncodeSlug(slug)
	if err != nil {
		return ReportResults{}, Result{}, err
	}
	path := fmt.Sprintf("%s/commits/%s/reports/%s/results",
		uploadPrefix(service, encoded), commitSHA, reportCode)
	var rr ReportResults
	res, err := c.GetJSON(ctx, path, &rr, c.Auth())
	rr.State = ReportResultsState(strings.ToLower(string(rr.State)))
	return rr, res, err
}

// PollReportResults polls GetReportResults until the computation
// finishes or errors, or either cap is hit. Both a request-count cap
// and a wall-clock cap are enforced; hitting them is not fatal, the
// last observed answer is returned with ok=false.
func (c *Client) PollReportResults(ctx context.Context, service, slug, commitSHA, reportCode string, maxAttempts int, maxWait, interval time.Duration) (ReportResults, Result, bool, error) {
	deadline := time.Now().Add(maxWait)
	var (
		rr  ReportResults
		res Result
		err error
	)
	for attempt := 0; attempt < maxAttempts && time.Now().Before(deadline); attempt++ {
		rr, res, err = c.GetReportResults(ctx, service, slug, commitSHA, reportCode)
		if err != nil {
			return rr, res, false, err
		}
		switch rr.State {
		case StateFinished:
			return rr, res, true, nil
		case StateError:
			return rr, res, false, nil
		}
		select {
		case <-ctx.Done():
			return rr, res, false, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		case <-time.After(interval):
		}
	}
	return rr, res, false, nil
}

// LegacyUpload requests an upload slot from the v4 endpoint, which
// answers with a two-line text body: result URL then put URL.
func (c *Client) LegacyUpload(ctx context.Context, params map[string]string) (resultURL, putURL string, res Result, err error) {
	query := url.Values{}
	for k, v := range params {
		if v != "" {
			query.Set(k, v)
		}
	}
	path := "/upload/v4"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	mods := []RequestModifier{SetHeader("X-Upload-Token", c.token)}
	res, err = c.do(ctx, http.MethodPost, c.baseURL+path, nil, mods)
	if err != nil {
		return "", "", res, err
	}
	lines := strings.SplitN(strings.TrimSpace(res.Text), "\n", 2)
	if len(lines) != 2 {
		return "", "", res, fmt.Errorf("%w: malformed v4 response", ErrBackendRefused)
	}
	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1]), res, nil
}
