// Package labelanalysis asks the backend which test labels need to
// run for a diff between two commits, polling until the computation
// settles. When the backend cannot answer in time, the caller falls
// back to running every requested label.
package labelanalysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
)

const pollInterval = 5 * time.Second

// Request identifies the diff and the candidate labels.
type Request struct {
	BaseCommit      string   `json:"base_commit"`
	HeadCommit      string   `json:"head_commit"`
	RequestedLabels []string `json:"requested_labels,omitempty"`
}

// Result partitions the requested labels. AbsentLabels are the tests
// that must run.
type Result struct {
	AbsentLabels        []string `json:"absent_labels"`
	PresentDiffLabels   []string `json:"present_diff_labels"`
	PresentReportLabels []string `json:"present_report_labels"`
	GlobalLevelLabels   []string `json:"global_level_labels"`
}

type analysisState struct {
	State  string  `json:"state"`
	Result *Result `json:"result"`
	Errors []struct {
		Code string `json:"error_code"`
	} `json:"errors"`
}

// Analyzer talks to the label analysis endpoints with the Repotoken
// credential scheme.
type Analyzer struct {
	Client  *api.Client
	Token   string
	MaxWait time.Duration
	// Interval between polls; defaults to 5s.
	Interval time.Duration
	Logger   *zap.Logger
}

func (a *Analyzer) auth() api.RequestModifier {
	return api.SetHeader("Authorization", "Repotoken "+a.Token)
}

// Run submits the request and polls for the answer. The bool reports
// whether the backend produced a usable result; when false and err is
// nil the caller should fall back to FallbackResult.
func (a *Analyzer) Run(ctx context.Context, req Request) (*Result, bool, error) {
	var created struct {
		ExternalID string `json:"external_id"`
	}
	_, err := a.Client.PostJSON(ctx, "/labels/labels-analysis", req, &created, a.auth())
	if err != nil {
		return nil, false, fmt.Errorf("requesting label analysis: %w", err)
	}
	a.Logger.Info("label analysis requested", zap.String("external_id", created.ExternalID))

	deadline := time.Now().Add(a.MaxWait)
	for a.MaxWait <= 0 || time.Now().Before(deadline) {
		var st analysisState
		_, err := a.Client.GetJSON(ctx, "/labels/labels-analysis/"+created.ExternalID, &st, a.auth())
		if err != nil {
			return nil, false, fmt.Errorf("polling label analysis: %w", err)
		}
		switch st.State {
		case "finished":
			if st.Result == nil {
				return nil, false, nil
			}
			return st.Result, true, nil
		case "error":
			for _, e := range st.Errors {
				a.Logger.Warn("label analysis failed", zap.String("code", e.Code))
			}
			return nil, false, nil
		}
		interval := a.Interval
		if interval <= 0 {
			interval = pollInterval
		}
		select {
		case <-ctx.Done():
			return nil, false, fmt.Errorf("%w: %v", api.ErrCancelled, ctx.Err())
		case <-time.After(interval):
		}
	}
	a.Logger.Warn("label analysis timed out", zap.Duration("max_wait", a.MaxWait))
	return nil, false, nil
}

// FallbackResult treats every requested label as needing to run.
func FallbackResult(requested []string) *Result {
	if requested == nil {
		requested = []string{}
	}
	return &Result{
		AbsentLabels:        requested,
		PresentDiffLabels:   []string{},
		PresentReportLabels: []string{},
		GlobalLevelLabels:   []string{},
	}
}
